package http

import (
	"net/http"

	"github.com/aretw0/sheetpilot/pkg/runner"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ChatSocket handles GET /ws. Every text frame is a chat message for the
// session; every event of the session, including the replies, is written back
// as a JSON text frame.
func (s *Server) ChatSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.logger.InfoContext(r.Context(), "websocket connected", "session_id", sessionID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range events {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.logger.Debug("websocket write failed", "session_id", sessionID, "error", err)
				return
			}
		}
	}()

	ctx := r.Context()
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.DebugContext(ctx, "websocket read ended", "session_id", sessionID, "error", err)
			}
			break
		}
		if kind != websocket.TextMessage {
			continue
		}
		text, err := runner.SanitizeMessage(string(data))
		if err != nil {
			s.logger.DebugContext(ctx, "websocket message rejected", "session_id", sessionID, "error", err)
			continue
		}
		reply := s.Agent.ProcessUserMessage(ctx, sessionID, text)
		s.Streams.Publish(Event{Type: EventReply, SessionID: sessionID, Text: reply.Text})
	}

	cancel()
	<-done
}
