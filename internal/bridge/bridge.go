// Package bridge exposes a running ScriptRuntime over a WebSocket, the
// external event driver an athlete's phone or watch would actually speak
// to. It mirrors the message/response shape the teacher's WebUI test
// fixture exercises (tests/integration/websocket/websocket_test_fixed.go):
// a {type, data} envelope in, a {type, display, error} envelope out.
package bridge

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SergeiGolos/wod-wiki-runtime/internal/runtime"
)

// InMessage is one external event a client sends — "tick", "next",
// "reps:update", "pause", "resume", or any other name a behavior has
// registered a handler for.
type InMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// OutMessage is what a client receives after every handled event: the
// kind of message, the current display stack (on success and on failure),
// and an error string (on failure).
type OutMessage struct {
	Type    string             `json:"type"`
	Display []runtime.DisplayItem `json:"display,omitempty"`
	Error   string             `json:"error,omitempty"`
	Done    bool               `json:"done,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Server serves one ScriptRuntime over a single long-lived WebSocket
// connection per client, translating inbound JSON events into
// ScriptRuntime.Handle calls and pushing the resulting display snapshot
// back out.
type Server struct {
	rt     *runtime.ScriptRuntime
	logger *slog.Logger

	mu   sync.Mutex
	http *http.Server
}

// NewServer builds a Server for rt, listening on addr when Start is
// called.
func NewServer(rt *runtime.ScriptRuntime, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{rt: rt, logger: logger}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.http = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start blocks serving until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("bridge listening", "addr", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	return s.http.Close()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.writeDisplay(conn, "connected")

	for {
		var in InMessage
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Error("websocket read failed", "error", err)
			}
			return
		}

		s.mu.Lock()
		handleErr := s.dispatch(in)
		done := s.rt.IsComplete()
		writeErr := s.writeResult(conn, handleErr, done)
		s.mu.Unlock()

		if writeErr != nil {
			s.logger.Error("websocket write failed", "error", writeErr)
			return
		}
		if done {
			return
		}
	}
}

func (s *Server) dispatch(in InMessage) error {
	var data any
	if len(in.Data) > 0 {
		if err := json.Unmarshal(in.Data, &data); err != nil {
			return err
		}
	}
	return s.rt.Handle(in.Type, data)
}

func (s *Server) writeResult(conn *websocket.Conn, err error, done bool) error {
	out := OutMessage{Type: "state", Display: s.rt.Display(), Done: done}
	if err != nil {
		out.Type = "error"
		out.Error = err.Error()
	}
	return conn.WriteJSON(out)
}

func (s *Server) writeDisplay(conn *websocket.Conn, msgType string) {
	out := OutMessage{Type: msgType, Display: s.rt.Display(), Done: s.rt.IsComplete()}
	if err := conn.WriteJSON(out); err != nil {
		s.logger.Error("websocket write failed", "error", err)
	}
}

// TickLoop emits a "tick" event every interval until stop is closed,
// driving countdown/count-up TimerBehaviors the way a wall clock would.
// Intended to run in its own goroutine alongside Server.Start.
func TickLoop(rt *runtime.ScriptRuntime, interval time.Duration, stop <-chan struct{}, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := rt.Handle("tick", nil); err != nil {
				logger.Error("tick handling failed", "error", err)
			}
		}
	}
}
