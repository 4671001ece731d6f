package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/sheetpilot/internal/logging"
	"github.com/aretw0/sheetpilot/pkg/domain"
)

// Event types pushed to websocket subscribers.
const (
	EventReply   = "reply"
	EventOutcome = "outcome"
)

// Event is one update of a session.
type Event struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Text      string          `json:"text,omitempty"`
	Outcome   *domain.Outcome `json:"outcome,omitempty"`
}

// StreamManager fans session events out to live websocket connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- []byte]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- []byte]struct{}),
		logger:      logging.NewNop(),
	}
}

// Subscribe registers a channel for sessionID. The returned function
// unregisters and closes it.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan []byte, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan []byte, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- []byte]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
			close(ch)
		})
	}
}

// Publish sends e to every subscriber of its session.
func (sm *StreamManager) Publish(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		sm.logger.Error("event encode failed", "error", err)
		return
	}
	sm.Broadcast(e.SessionID, payload)
}

// Broadcast sends msg to every subscriber of sessionID. Slow clients lose messages.
func (sm *StreamManager) Broadcast(sessionID string, msg []byte) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("stream: client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// Subscribers returns how many connections listen to sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}
