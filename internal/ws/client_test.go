package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clipit_tycoon/internal/game"
	"clipit_tycoon/internal/random"
	"clipit_tycoon/internal/repository"
	"clipit_tycoon/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type wsHarness struct {
	srv   *httptest.Server
	sched *game.ManualScheduler
	hub   *Hub
	games *service.GameService
}

// zones are always [40, 55], so 23 ticks put the marker at 46
func newWSHarness(t *testing.T) *wsHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service.InitJWT("ws-secret", time.Hour)

	clock := game.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	sched := game.NewManualScheduler(clock)
	games := service.NewGameService(repository.NewMemoryStateRepository(), game.DefaultSettings(),
		service.WithClock(clock),
		service.WithScheduler(sched),
		service.WithRandom(&random.Scripted{FallbackFloat: 0.5}),
	)
	hub := NewHub()

	r := gin.New()
	r.GET("/ws/minigame", HandleWS(hub, games, ""))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &wsHarness{srv: srv, sched: sched, hub: hub, games: games}
}

func (h *wsHarness) dial(t *testing.T, playerID string) *websocket.Conn {
	t.Helper()
	token, err := service.GenerateJWT(playerID)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws/minigame?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type received struct {
	Type     string          `json:"type"`
	Snapshot *game.Snapshot  `json:"snapshot"`
	Outcome  *game.Outcome   `json:"outcome"`
	State    json.RawMessage `json:"state"`
	Error    string          `json:"error"`
	Refused  bool            `json:"refused"`
}

// readUntil reads messages until one of type typ arrives; the skipped ones are returned too
func readUntil(t *testing.T, conn *websocket.Conn, typ string) (received, []received) {
	t.Helper()
	var skipped []received
	for {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		var msg received
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("bad message %s: %v", raw, err)
		}
		if msg.Type == typ {
			return msg, skipped
		}
		skipped = append(skipped, msg)
	}
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestMinigameOverWebsocket(t *testing.T) {
	h := newWSHarness(t)
	conn := h.dial(t, "ws-player")

	readUntil(t, conn, MsgReady)
	readUntil(t, conn, MsgState)

	send(t, conn, ClientMessage{Type: MsgSelect, Streamer: "kaicenat"})
	phase, _ := readUntil(t, conn, service.EventPhase)
	if phase.Snapshot == nil || phase.Snapshot.Phase != game.PhaseIdle || phase.Snapshot.StreamerID != "kaicenat" {
		t.Fatalf("unexpected phase %+v", phase.Snapshot)
	}

	send(t, conn, ClientMessage{Type: MsgStart})
	phase, _ = readUntil(t, conn, service.EventPhase)
	if phase.Snapshot.Phase != game.PhaseRunning {
		t.Fatalf("phase = %s; want running", phase.Snapshot.Phase)
	}

	h.sched.Advance(23 * game.DefaultSettings().TickInterval)

	send(t, conn, ClientMessage{Type: MsgCommit})
	result, skipped := readUntil(t, conn, service.EventResult)
	if result.Outcome == nil || !result.Outcome.Hit || result.Outcome.Position != 46 {
		t.Fatalf("unexpected outcome %+v", result.Outcome)
	}
	ticks := 0
	for _, m := range skipped {
		if m.Type == service.EventTick {
			ticks++
		}
	}
	if ticks != 23 {
		t.Fatalf("got %d ticks; want 23", ticks)
	}

	h.sched.Advance(game.DefaultSettings().ResultDelay)
	readUntil(t, conn, service.EventClip)
	state, _ := readUntil(t, conn, MsgState)
	if !strings.Contains(string(state.State), `"clipsCreated":1`) {
		t.Fatalf("state not updated: %s", state.State)
	}
}

func TestRefusalsAreReported(t *testing.T) {
	h := newWSHarness(t)
	conn := h.dial(t, "ws-refusals")
	readUntil(t, conn, MsgState)

	send(t, conn, ClientMessage{Type: MsgStart})
	msg, _ := readUntil(t, conn, MsgError)
	if !msg.Refused {
		t.Fatalf("start without streamer not reported as refusal: %+v", msg)
	}

	send(t, conn, ClientMessage{Type: "dance"})
	msg, _ = readUntil(t, conn, MsgError)
	if msg.Refused || !strings.Contains(msg.Error, "dance") {
		t.Fatalf("unexpected error %+v", msg)
	}

	send(t, conn, ClientMessage{Type: MsgPing})
	readUntil(t, conn, MsgPong)
}

func TestSecondConnectionReplacesFirst(t *testing.T) {
	h := newWSHarness(t)
	first := h.dial(t, "ws-tabs")
	readUntil(t, first, MsgState)

	second := h.dial(t, "ws-tabs")
	readUntil(t, second, MsgState)
	readUntil(t, first, MsgReplaced)

	if h.hub.Count() != 1 {
		t.Fatalf("hub count = %d; want 1", h.hub.Count())
	}

	send(t, second, ClientMessage{Type: MsgSelect, Streamer: "xqc"})
	readUntil(t, second, service.EventPhase)
}

func TestHandshakeRequiresToken(t *testing.T) {
	h := newWSHarness(t)
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws/minigame"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("dial without token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", resp)
	}

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=garbage", nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token accepted: %v", err)
	}
}
