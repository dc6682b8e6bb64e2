package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexidrill/lexidrill/internal/models"
	"github.com/lexidrill/lexidrill/internal/repository"
	"github.com/lexidrill/lexidrill/internal/services"
)

func (s *Server) handleListWords(w http.ResponseWriter, r *http.Request) {
	filter := repository.WordFilter{
		TopicID: r.URL.Query().Get("topic_id"),
		Status:  models.WordStatus(r.URL.Query().Get("status")),
		Tag:     r.URL.Query().Get("tag"),
	}

	words, err := s.VocabService.ListWords(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, words)
}

func (s *Server) handleCreateWord(w http.ResponseWriter, r *http.Request) {
	var req services.CreateWordRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	word, err := s.VocabService.CreateWord(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, word)
}

func (s *Server) handleDeleteWord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.VocabService.DeleteWord(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
