package ws

const (
	// client - server
	MsgSelect = "select"
	MsgStart  = "start"
	MsgCommit = "commit"
	MsgLeave  = "leave"
	MsgPing   = "ping"

	// server - client (tick, phase, result, clip and error come from service events)
	MsgReady    = "ready"
	MsgState    = "state"
	MsgPong     = "pong"
	MsgReplaced = "replaced"
	MsgError    = "error"
)
