package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
	"github.com/DonaldPG/pytaaa-web/internal/ingest"
	"github.com/DonaldPG/pytaaa-web/pkg/config"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
)

// IngestHandler triggers ingestion runs over the API
type IngestHandler struct {
	service *ingest.Service
	fetcher *ingest.Fetcher
	cfg     *config.Config
	logger  *logger.Logger
}

// NewIngestHandler creates a new ingest handler. fetcher may be nil
// when remote ingestion is not configured.
func NewIngestHandler(service *ingest.Service, fetcher *ingest.Fetcher, cfg *config.Config, log *logger.Logger) *IngestHandler {
	return &IngestHandler{service: service, fetcher: fetcher, cfg: cfg, logger: log}
}

// IngestRequest describes an API-triggered ingestion
type IngestRequest struct {
	Model       string `json:"model"`
	IndexType   string `json:"index_type"`
	Description string `json:"description"`
	IsMeta      bool   `json:"is_meta"`
	Overwrite   bool   `json:"overwrite"`
	DataDir     string `json:"data_dir"`
	RemoteURL   string `json:"remote_url"`
}

// Trigger runs an ingestion for one model
// POST /api/v1/ingest
func (h *IngestHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Model == "" {
		respondError(w, http.StatusBadRequest, "Missing 'model'")
		return
	}

	indexType := contracts.IndexType(req.IndexType)
	if req.IndexType == "" {
		indexType = contracts.IndexNasdaq100
	}
	if !indexType.Valid() {
		respondError(w, http.StatusBadRequest, "Invalid 'index_type' (valid: NASDAQ_100, SP_500)")
		return
	}

	dataDir := req.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(h.cfg.Ingest.DataDir, req.Model)
	}

	if req.RemoteURL != "" {
		if h.fetcher == nil {
			respondError(w, http.StatusBadRequest, "Remote ingestion is not configured")
			return
		}
		if _, err := h.fetcher.FetchDataFiles(r.Context(), req.RemoteURL, dataDir); err != nil {
			h.logger.WithError(err).Error("Failed to fetch remote data files")
			respondError(w, http.StatusBadGateway, "Failed to fetch remote data files")
			return
		}
	}

	summary, err := h.service.Run(r.Context(), ingest.Options{
		DataDir:     dataDir,
		ModelName:   req.Model,
		IndexType:   indexType,
		Description: req.Description,
		IsMeta:      req.IsMeta,
		Overwrite:   req.Overwrite,
	})
	if err != nil {
		h.logger.WithError(err).WithField("model", req.Model).Error("Ingest failed")
		respondError(w, http.StatusInternalServerError, "Ingest failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"summary": summary,
	})
}
