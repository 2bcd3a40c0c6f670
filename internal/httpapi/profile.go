package httpapi

import (
	"log"
	"net/http"

	"github.com/ndrozd/mirra/internal/twin"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	overview, err := s.profile.Overview(r.Context())
	if err != nil {
		log.Printf("profile overview failed: %v", err)
		respondError(w, http.StatusInternalServerError, genericServerError)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var edit twin.ProfileEdit
	if err := decodeJSON(r, &edit); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.profile.ApplyEdit(r.Context(), edit); err != nil {
		log.Printf("profile edit failed: %v", err)
		respondError(w, http.StatusInternalServerError, genericServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type profileActionRequest struct {
	Action string `json:"action"`

	// add_knowledge fields
	Category   string `json:"category"`
	Topic      string `json:"topic"`
	Content    string `json:"content"`
	Importance int    `json:"importance"`

	// add_preference fields
	Item      string `json:"item"`
	Type      string `json:"type"`
	Intensity int    `json:"intensity"`
	Notes     string `json:"notes"`
}

func (s *Server) handlePostProfile(w http.ResponseWriter, r *http.Request) {
	var req profileActionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var err error
	switch req.Action {
	case "add_knowledge":
		err = s.profile.AddKnowledge(r.Context(), twin.KnowledgeEntry{
			Category:   req.Category,
			Topic:      req.Topic,
			Content:    req.Content,
			Importance: req.Importance,
		})
	case "add_preference":
		err = s.profile.AddPreference(r.Context(), twin.Preference{
			Category:  req.Category,
			Item:      req.Item,
			Type:      req.Type,
			Intensity: req.Intensity,
			Notes:     req.Notes,
		})
	default:
		respondError(w, http.StatusBadRequest, "unknown action")
		return
	}

	if err != nil {
		log.Printf("profile action %q failed: %v", req.Action, err)
		respondError(w, http.StatusInternalServerError, genericServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
