package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"clipit_tycoon/internal/game"
	"clipit_tycoon/internal/logger"

	"github.com/gorilla/websocket"
)

// Plays one mini-game round against a running server: guest login,
// streamer selection, then commits as soon as the marker enters the zone.
func main() {
	addr := flag.String("addr", "localhost:8080", "server host:port")
	streamer := flag.String("streamer", "xqc", "streamer id")
	timeout := flag.Duration("timeout", 30*time.Second, "give up after")
	flag.Parse()

	token, err := guestLogin(*addr)
	if err != nil {
		logger.Fatal("auth failed", "error", err)
	}

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws/minigame", RawQuery: "token=" + url.QueryEscape(token)}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Fatal("dial failed", "url", u.String(), "error", err)
	}
	defer conn.Close()

	send := func(v any) {
		if err := conn.WriteJSON(v); err != nil {
			logger.Fatal("write failed", "error", err)
		}
	}
	send(map[string]string{"type": "select", "streamer": *streamer})

	deadline := time.Now().Add(*timeout)
	started, committed := false, false
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		var msg struct {
			Type     string         `json:"type"`
			Snapshot *game.Snapshot `json:"snapshot"`
			Outcome  *game.Outcome  `json:"outcome"`
			Error    string         `json:"error"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			logger.Fatal("read failed", "error", err)
		}

		switch msg.Type {
		case "phase":
			if msg.Snapshot.Phase == game.PhaseIdle && !started {
				started = true
				send(map[string]string{"type": "start"})
			}
		case "tick":
			if !committed && msg.Snapshot.Zone.Contains(msg.Snapshot.Position) {
				committed = true
				send(map[string]string{"type": "commit"})
			}
		case "result":
			fmt.Printf("hit=%v position=%.0f zone=[%.0f,%.0f] quality=%s\n",
				msg.Outcome.Hit, msg.Outcome.Position, msg.Outcome.Zone.Start, msg.Outcome.Zone.End, msg.Outcome.Quality)
			if !msg.Outcome.Hit {
				os.Exit(0)
			}
		case "clip":
			fmt.Println("clip stored")
			return
		case "error":
			logger.Fatal("server error", "error", msg.Error)
		}
	}
	logger.Fatal("timed out")
}

func guestLogin(addr string) (string, error) {
	resp, err := http.Post("http://"+addr+"/api/v1/auth", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Token, nil
}
