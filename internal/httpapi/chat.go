package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/ndrozd/mirra/internal/twin"
)

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID int64  `json:"conversationId"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.metrics.ChatRequests.WithLabelValues("bad_request").Inc()
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reply, err := s.chat.Send(r.Context(), req.Message, req.ConversationID)
	if err != nil {
		if errors.Is(err, twin.ErrEmptyMessage) {
			s.metrics.ChatRequests.WithLabelValues("bad_request").Inc()
			respondError(w, http.StatusBadRequest, "Message is required")
			return
		}
		log.Printf("chat exchange failed: %v", err)
		s.metrics.ChatRequests.WithLabelValues("error").Inc()
		respondError(w, http.StatusInternalServerError, genericServerError)
		return
	}

	s.metrics.ChatRequests.WithLabelValues("ok").Inc()
	respondJSON(w, http.StatusOK, reply)
}
