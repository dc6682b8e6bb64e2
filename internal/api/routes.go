package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/health", s.handleHealth)

	r.Get("/topics", s.handleListTopics)
	r.Post("/topics", s.handleCreateTopic)
	r.Delete("/topics/{id}", s.handleDeleteTopic)

	r.Get("/words", s.handleListWords)
	r.Post("/words", s.handleCreateWord)
	r.Delete("/words/{id}", s.handleDeleteWord)

	r.Post("/sessions", s.handleStartSession)
	r.Get("/sessions/current", s.handleCurrentSession)
	r.Post("/sessions/current/rating", s.handleSubmitRating)
	r.Post("/sessions/current/reveal", s.handleRevealAnswer)
	r.Post("/sessions/current/end", s.handleEndSession)

	r.Get("/snapshot", s.handleExportSnapshot)
	r.Post("/snapshot", s.handleImportSnapshot)
	r.Post("/import/words", s.handleImportWordList)

	return r
}
