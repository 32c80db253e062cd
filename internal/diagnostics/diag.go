package diagnostics

import (
	"sync"
	"time"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Time           time.Time      `json:"time"`
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Hub keeps the most recent diagnostics and fans new ones out to
// subscribers. Slow subscribers drop events rather than block Push.
type Hub struct {
	mu     sync.Mutex
	recent []Diagnostic
	limit  int
	subs   map[chan Diagnostic]struct{}
}

func NewHub(limit int) *Hub {
	if limit <= 0 {
		limit = 64
	}
	return &Hub{limit: limit, subs: map[chan Diagnostic]struct{}{}}
}

func (h *Hub) Push(d Diagnostic) {
	if d.Time.IsZero() {
		d.Time = time.Now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recent = append(h.recent, d)
	if len(h.recent) > h.limit {
		h.recent = h.recent[len(h.recent)-h.limit:]
	}
	for c := range h.subs {
		select {
		case c <- d:
		default:
		}
	}
}

// Recent returns a copy of the retained diagnostics, oldest first.
func (h *Hub) Recent() []Diagnostic {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Diagnostic(nil), h.recent...)
}

// Subscribe returns a channel of new diagnostics and a cancel func.
func (h *Hub) Subscribe() (<-chan Diagnostic, func()) {
	c := make(chan Diagnostic, 16)
	h.mu.Lock()
	h.subs[c] = struct{}{}
	h.mu.Unlock()
	return c, func() {
		h.mu.Lock()
		if _, ok := h.subs[c]; ok {
			delete(h.subs, c)
			close(c)
		}
		h.mu.Unlock()
	}
}
