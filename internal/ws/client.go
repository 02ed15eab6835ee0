package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"clipit_tycoon/internal/game"
	"clipit_tycoon/internal/logger"
	"clipit_tycoon/internal/metrics"
	"clipit_tycoon/internal/service"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 256
)

type Client struct {
	PlayerID string
	Conn     *websocket.Conn
	Send     chan []byte

	Hub     *Hub
	Session *service.Session

	Done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, hub *Hub, sess *service.Session) *Client {
	return &Client{
		PlayerID: sess.PlayerID,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		Hub:      hub,
		Session:  sess,
		Done:     make(chan struct{}),
	}
}

// Run serves the connection until it is closed
func (c *Client) Run() {
	if prev := c.Hub.Register(c); prev != nil {
		prev.enqueue(typeOnly{Type: MsgReplaced})
		prev.Close()
	}

	go c.writePump()
	c.enqueue(typeOnly{Type: MsgReady})

	unsubscribe := c.Session.Subscribe(c.onEvent)
	defer unsubscribe()
	c.sendState()

	c.readPump()
}

// Close stops both pumps; safe to call more than once
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.Done)
	})
}

func (c *Client) onEvent(e service.Event) {
	c.enqueue(e)
	if e.Type == service.EventClip {
		c.sendState()
	}
}

func (c *Client) sendState() {
	c.enqueue(StateMessage{Type: MsgState, State: c.Session.View()})
}

// enqueue never blocks the game: when the buffer is full the message is dropped
func (c *Client) enqueue(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.ForPlayer(c.PlayerID).Error("ws marshal failed", "error", err)
		return
	}
	select {
	case <-c.Done:
	case c.Send <- data:
	default:
		logger.ForPlayer(c.PlayerID).Warn("ws send buffer full, message dropped")
	}
}

//read
func (c *Client) readPump() {
	defer c.disconnect()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.ForPlayer(c.PlayerID).Debug("ws read error", "error", err)
			}
			return
		}
		c.HandleMessage(raw)
	}
}

// HandleMessage dispatches one client command to the session
func (c *Client) HandleMessage(raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.enqueue(ErrorMessage{Type: MsgError, Error: "invalid message"})
		return
	}

	ctx := context.Background()
	var err error
	switch msg.Type {
	case MsgSelect:
		_, err = c.Session.SelectStreamer(ctx, msg.Streamer)
	case MsgStart:
		err = c.Session.StartRound(ctx)
	case MsgCommit:
		_, err = c.Session.Commit(ctx)
	case MsgLeave:
		c.Session.Leave()
		c.sendState()
	case MsgPing:
		c.enqueue(typeOnly{Type: MsgPong})
	case MsgState:
		c.sendState()
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}

	if err != nil {
		refused := isRefusal(err)
		if refused {
			metrics.RefusalsTotal.WithLabelValues("ws_" + msg.Type).Inc()
		}
		c.enqueue(ErrorMessage{Type: MsgError, Error: err.Error(), Refused: refused})
	}
}

func isRefusal(err error) bool {
	for _, target := range []error{
		game.ErrOnCooldown, game.ErrNotIdle, game.ErrNotRunning, game.ErrRoundClosed,
		service.ErrNoStreamer,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.ForPlayer(c.PlayerID).Debug("ws write error", "error", err)
				c.Close()
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}

		case <-c.Done:
			// flush what is already queued (replaced notice), then close
			for {
				select {
				case msg := <-c.Send:
					c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
				default:
					c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

//disconnect
func (c *Client) disconnect() {
	// leaving the page discards a running round; a replaced tab must not touch the new one
	if c.Hub.OnDisconnect(c) {
		c.Session.Leave()
	}
	c.Close()
	_ = c.Conn.Close()
}
