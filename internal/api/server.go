package api

import (
	"encoding/json"
	"net/http"

	"github.com/lexidrill/lexidrill/internal/errors"
	"github.com/lexidrill/lexidrill/internal/importer"
	"github.com/lexidrill/lexidrill/internal/services"
)

// Server holds the service dependencies of the HTTP layer.
type Server struct {
	VocabService    services.VocabService
	ReviewService   services.ReviewService
	SnapshotService services.SnapshotService
	Importer        *importer.Importer
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}
