// Package ws exposes the engine over HTTP and WebSockets: a JSON control
// channel, a msgpack preview stream, a paint feed and diagnostics.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/coreman2200/funtimes-aurora/internal/app"
	"github.com/coreman2200/funtimes-aurora/internal/led"
)

// Frame is one preview message on /frames, msgpack encoded.
type Frame struct {
	T      int64  `msgpack:"t"`
	Seq    uint64 `msgpack:"seq"`
	Width  int    `msgpack:"w"`
	Height int    `msgpack:"h"`
	RGB    []byte `msgpack:"rgb"`
}

type State struct {
	Core *app.Core
	// Output reports worker counters; nil when no worker runs.
	Output func() led.Stats
	// Driver names the active output link for /health.
	Driver string

	mu        sync.RWMutex
	startTime time.Time
	clients   map[*websocket.Conn]bool
	up        websocket.Upgrader
}

func NewState(core *app.Core) *State {
	return &State{
		Core:      core,
		startTime: time.Now(),
		clients:   map[*websocket.Conn]bool{},
		up:        websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Routes registers every handler on mux.
func (s *State) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/frames", s.HandleFramesWS)
	mux.HandleFunc("/paint", s.HandlePaintWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"uptime_s": time.Since(s.startTime).Seconds(),
		"manager":  s.Core.Mgr.Status(),
		"draw_ms":  s.Core.Mgr.DrawMS(),
		"seq":      s.Core.Ch.Seq(),
		"playlist": s.Core.Seq.Status(),
		"driver":   s.Driver,
	}
	if s.Output != nil {
		resp["output"] = s.Output()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		var reply Reply
		if err := json.Unmarshal(data, &cmd); err != nil {
			reply = Reply{Error: "bad command: " + err.Error()}
		} else {
			reply = s.Dispatch(cmd)
		}
		b, _ := json.Marshal(reply)
		conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandlePaintWS takes binary messages of exactly width*height*3 bytes and
// uses the latest as the paint mode frame.
func (s *State) HandlePaintWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		if err := s.Core.SetPaint(data); err != nil {
			log.Debug().Err(err).Msg("paint frame rejected")
		}
	}
}

func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	events, cancel := s.Core.Diag.Subscribe()
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	defer func() {
		cancel()
		conn.Close()
	}()

	for _, d := range s.Core.Diag.Recent() {
		b, _ := json.Marshal(d)
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
	for {
		select {
		case <-closed:
			return
		case d, ok := <-events:
			if !ok {
				return
			}
			b, _ := json.Marshal(d)
			conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}

// RunPreview polls the frame channel at fps and broadcasts frames that
// changed since the last broadcast.
func (s *State) RunPreview(ctx context.Context, fps int) {
	if fps <= 0 {
		fps = 20
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	w, h := s.Core.Mgr.Size()
	buf := make([]byte, s.Core.Ch.Size())
	var last uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		seq := s.Core.Ch.ReadInto(buf)
		if seq == last {
			continue
		}
		last = seq
		s.broadcastFrame(Frame{T: time.Now().UnixNano(), Seq: seq, Width: w, Height: h, RGB: buf})
	}
}

func (s *State) broadcastFrame(f Frame) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.clients) == 0 {
		return
	}
	b, err := msgpack.Marshal(&f)
	if err != nil {
		log.Warn().Err(err).Msg("encode frame")
		return
	}
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.BinaryMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}
