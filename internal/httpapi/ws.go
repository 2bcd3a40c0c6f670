package httpapi

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ndrozd/mirra/internal/twin"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The HTTP endpoints are open to any origin; the live chat socket
	// follows the same policy.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleChatWS carries the same exchange as POST /api/chat over a
// websocket: one inbound JSON frame per message, one reply frame per
// exchange. Frames are processed sequentially; there is no token
// streaming.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	s.metrics.ActiveWSConnections.Inc()
	defer s.metrics.ActiveWSConnections.Dec()

	conn.SetReadLimit(1 << 20)

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("chat ws %s read ended: %v", connID, err)
			}
			return
		}

		reply, err := s.chat.Send(r.Context(), req.Message, req.ConversationID)

		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err != nil {
			message := genericServerError
			if errors.Is(err, twin.ErrEmptyMessage) {
				message = "Message is required"
			} else {
				log.Printf("chat ws %s exchange failed: %v", connID, err)
			}
			if writeErr := conn.WriteJSON(errorResponse{Error: message}); writeErr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}
