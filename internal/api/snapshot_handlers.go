package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/lexidrill/lexidrill/internal/errors"
	"github.com/lexidrill/lexidrill/internal/importer"
	"github.com/lexidrill/lexidrill/internal/logger"
	"github.com/lexidrill/lexidrill/internal/models"
)

func (s *Server) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.SnapshotService.Export(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	policy := models.MergePolicy(r.URL.Query().Get("policy"))
	if policy == "" {
		policy = models.MergeUnion
	}

	var snap models.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		handleError(w, r, err)
		return
	}

	summary, err := s.SnapshotService.Import(r.Context(), snap, policy)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

const maxImportUploadBytes = 16 << 20

func (s *Server) handleImportWordList(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if err := r.ParseMultipartForm(maxImportUploadBytes); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("missing file field"))
		return
	}
	defer file.Close()

	cfg := importer.DefaultConfig()
	if topic := r.FormValue("default_topic"); topic != "" {
		cfg.DefaultTopic = topic
	}
	if sheet := r.FormValue("sheet"); sheet != "" {
		cfg.SheetName = sheet
	}

	var result *importer.Result
	switch ext := strings.ToLower(filepath.Ext(header.Filename)); ext {
	case ".csv":
		result, err = s.Importer.ImportCSV(r.Context(), file, cfg)
	case ".xlsx":
		result, err = s.Importer.ImportXLSX(r.Context(), file, cfg)
	default:
		handleError(w, r, errors.NewBadRequestError("unsupported file type: "+ext))
		return
	}
	if err != nil {
		log.Error("word list import failed: %v", err)
		handleError(w, r, errors.NewBadRequestError(err.Error()))
		return
	}

	log.Info("word list imported: file=%s, created=%d, updated=%d", header.Filename, result.Created, result.Updated)
	respondJSON(w, http.StatusOK, result)
}
