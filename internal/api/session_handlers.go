package api

import (
	"net/http"

	"github.com/lexidrill/lexidrill/internal/logger"
	"github.com/lexidrill/lexidrill/internal/review"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var cfg review.Config
	if err := decodeJSON(r, &cfg); err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.ReviewService.StartSession(r.Context(), cfg)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.ReviewService.CurrentSession(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating  string `json:"rating"`
		Skipped bool   `json:"skipped"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	log := logger.FromContext(r.Context())
	log.Debug("submitting rating: rating=%s, skipped=%v", req.Rating, req.Skipped)

	outcome, err := s.ReviewService.SubmitRating(r.Context(), req.Rating, req.Skipped)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleRevealAnswer(w http.ResponseWriter, r *http.Request) {
	if err := s.ReviewService.RevealAnswer(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ReviewService.EndSession(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
