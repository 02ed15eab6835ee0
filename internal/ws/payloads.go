package ws

import "clipit_tycoon/internal/service"

// client → server
type ClientMessage struct {
	Type     string `json:"type"`
	Streamer string `json:"streamer,omitempty"`
}

// server → client
type StateMessage struct {
	Type  string            `json:"type"`
	State service.StateView `json:"state"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Refused bool   `json:"refused,omitempty"`
}

type typeOnly struct {
	Type string `json:"type"`
}
