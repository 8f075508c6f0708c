// Package handlers implements the REST endpoints of the API. Each
// handler struct groups the endpoints of one resource and depends on
// the contracts interfaces only, never on concrete repositories.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
	"github.com/DonaldPG/pytaaa-web/internal/store"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
)

// defaultSeriesDays bounds equity curve queries when the client does
// not pass an explicit window
const defaultSeriesDays = 365

// ModelHandler handles trading model endpoints
type ModelHandler struct {
	models      contracts.ModelRepository
	performance contracts.PerformanceRepository
	logger      *logger.Logger
}

// NewModelHandler creates a new model handler
func NewModelHandler(models contracts.ModelRepository, performance contracts.PerformanceRepository, log *logger.Logger) *ModelHandler {
	return &ModelHandler{models: models, performance: performance, logger: log}
}

// List returns every model with its latest traded value, meta first
// GET /api/v1/models
func (h *ModelHandler) List(w http.ResponseWriter, r *http.Request) {
	models, err := h.models.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list models")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve models")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"models": models,
		"count":  len(models),
	})
}

// Get returns one model by ID
// GET /api/v1/models/{id}
func (h *ModelHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := modelID(w, r)
	if !ok {
		return
	}

	model, err := h.models.GetByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Model not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get model")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve model")
		return
	}

	respondJSON(w, http.StatusOK, model)
}

// PerformancePoint is one point of an equity curve response
type PerformancePoint struct {
	Date        string   `json:"date"`
	BaseValue   float64  `json:"base_value"`
	TradedValue float64  `json:"traded_value"`
	DailyReturn *float64 `json:"daily_return,omitempty"`
}

// Performance returns a model's equity curve
// GET /api/v1/models/{id}/performance?days=365
func (h *ModelHandler) Performance(w http.ResponseWriter, r *http.Request) {
	id, ok := modelID(w, r)
	if !ok {
		return
	}

	days, ok := queryDays(w, r, defaultSeriesDays)
	if !ok {
		return
	}

	metrics, err := h.performance.GetSeries(r.Context(), id, days)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get performance series")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve performance")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"model_id": id,
		"days":     days,
		"series":   performancePoints(metrics),
		"count":    len(metrics),
	})
}

// Compare returns the equity curves of every model side by side
// GET /api/v1/models/compare?days=365
func (h *ModelHandler) Compare(w http.ResponseWriter, r *http.Request) {
	days, ok := queryDays(w, r, defaultSeriesDays)
	if !ok {
		return
	}

	models, err := h.models.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list models")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve models")
		return
	}

	curves := make(map[string][]PerformancePoint, len(models))
	for _, m := range models {
		metrics, err := h.performance.GetSeries(r.Context(), m.ID, days)
		if err != nil {
			h.logger.WithError(err).WithField("model", m.Name).Error("Failed to get performance series")
			respondError(w, http.StatusInternalServerError, "Failed to retrieve performance")
			return
		}
		curves[m.Name] = performancePoints(metrics)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"days":   days,
		"models": curves,
	})
}

func performancePoints(metrics []contracts.PerformanceMetric) []PerformancePoint {
	points := make([]PerformancePoint, len(metrics))
	for i, m := range metrics {
		points[i] = PerformancePoint{
			Date:        m.Date.Format("2006-01-02"),
			BaseValue:   m.BaseValue,
			TradedValue: m.TradedValue,
			DailyReturn: m.DailyReturn,
		}
	}
	return points
}

// Shared helpers

// modelID extracts and validates the {id} path variable. On failure a
// 400 has already been written.
func modelID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid model ID")
		return uuid.Nil, false
	}
	return id, true
}

// queryDays parses the optional days query parameter. Zero means the
// full history.
func queryDays(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return fallback, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		respondError(w, http.StatusBadRequest, "Invalid 'days' parameter")
		return 0, false
	}
	return days, true
}

// pathDate parses the {date} path variable as YYYY-MM-DD
func pathDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", mux.Vars(r)["date"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (expected YYYY-MM-DD)")
		return time.Time{}, false
	}
	return date, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
