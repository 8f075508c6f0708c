package handlers

import (
	"errors"
	"net/http"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
	"github.com/DonaldPG/pytaaa-web/internal/store"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
)

// PortfolioHandler handles portfolio snapshot and holdings endpoints
type PortfolioHandler struct {
	snapshots contracts.SnapshotRepository
	logger    *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(snapshots contracts.SnapshotRepository, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{snapshots: snapshots, logger: log}
}

// Holdings returns a model's most recent snapshot with holdings
// GET /api/v1/models/{id}/holdings
func (h *PortfolioHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	id, ok := modelID(w, r)
	if !ok {
		return
	}

	snapshot, err := h.snapshots.GetLatest(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No holdings for model")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve holdings")
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// HoldingsByDate returns a model's snapshot for a specific date
// GET /api/v1/models/{id}/holdings/{date}
func (h *PortfolioHandler) HoldingsByDate(w http.ResponseWriter, r *http.Request) {
	id, ok := modelID(w, r)
	if !ok {
		return
	}
	date, ok := pathDate(w, r)
	if !ok {
		return
	}

	snapshot, err := h.snapshots.GetByDate(r.Context(), id, date)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No holdings for date")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get snapshot by date")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve holdings")
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// Snapshots returns a model's snapshot dates, newest first
// GET /api/v1/models/{id}/snapshots
func (h *PortfolioHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	id, ok := modelID(w, r)
	if !ok {
		return
	}

	dates, err := h.snapshots.ListDates(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list snapshot dates")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve snapshots")
		return
	}

	formatted := make([]string, len(dates))
	for i, d := range dates {
		formatted[i] = d.Format("2006-01-02")
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"model_id": id,
		"dates":    formatted,
		"count":    len(formatted),
	})
}
