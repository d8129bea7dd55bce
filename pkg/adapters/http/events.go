package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/mrsim/pkg/domain"
)

// Message is one server-sent event.
type Message struct {
	Type  domain.EventType
	RunID string
	Data  string
}

// StreamManager fans run lifecycle events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan Message]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{subscribers: make(map[chan Message]struct{})}
}

// Subscribe registers a subscriber. The returned func unsubscribes and
// closes the channel.
func (sm *StreamManager) Subscribe() (<-chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 16)
	sm.subscribers[ch] = struct{}{}
	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Subscribers returns the number of active subscribers.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast sends msg to every subscriber without blocking.
func (sm *StreamManager) Broadcast(msg Message) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: client buffer full, dropping message", "type", msg.Type, "run", msg.RunID)
		}
	}
}

func (sm *StreamManager) publish(base domain.EventBase, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("SSE: event encode failed", "error", err)
		return
	}
	sm.Broadcast(Message{Type: base.Type, RunID: base.RunID, Data: string(data)})
}

// Hooks returns lifecycle hooks that publish every event.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, e *domain.RunEvent) { sm.publish(e.EventBase, e) },
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			out := struct {
				*domain.RunEvent
				Error string `json:"error,omitempty"`
			}{RunEvent: e}
			if e.Err != nil {
				out.Error = e.Err.Error()
			}
			sm.publish(e.EventBase, out)
		},
		OnSystemDone: func(_ context.Context, e *domain.SystemEvent) { sm.publish(e.EventBase, e) },
		OnDiagnostic: func(_ context.Context, e *domain.DiagnosticEvent) { sm.publish(e.EventBase, e) },
	}
}

// SubscribeEvents handles GET /events. The optional type parameter is a
// comma-separated list of event types to keep; run keeps one run.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	types := map[domain.EventType]bool{}
	if raw := r.URL.Query().Get("type"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			types[domain.EventType(strings.TrimSpace(t))] = true
		}
	}
	run := r.URL.Query().Get("run")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(types) > 0 && !types[msg.Type] {
				continue
			}
			if run != "" && msg.RunID != run {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, msg.Data)
			flusher.Flush()
		}
	}
}
