package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
)

// BacktestHandler handles backtest value series endpoints
type BacktestHandler struct {
	backtests contracts.BacktestRepository
	logger    *logger.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(backtests contracts.BacktestRepository, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{backtests: backtests, logger: log}
}

// BacktestResponsePoint is one row of a backtest series response
type BacktestResponsePoint struct {
	Date          string  `json:"date"`
	BuyHoldValue  float64 `json:"buy_hold_value"`
	TradedValue   float64 `json:"traded_value"`
	NewHighs      int     `json:"new_highs"`
	NewLows       int     `json:"new_lows"`
	SelectedModel string  `json:"selected_model,omitempty"`
}

// Series returns a model's backtest value series
// GET /api/v1/models/{id}/backtest?days=0
func (h *BacktestHandler) Series(w http.ResponseWriter, r *http.Request) {
	id, ok := modelID(w, r)
	if !ok {
		return
	}

	// Backtests span decades, default to the full history
	days, ok := queryDays(w, r, 0)
	if !ok {
		return
	}

	points, err := h.backtests.GetSeries(r.Context(), id, days)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get backtest series")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve backtest")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"model_id": id,
		"days":     days,
		"series":   backtestPoints(points),
		"count":    len(points),
	})
}

// Compare returns backtest series for several models side by side
// GET /api/v1/models/backtest/compare?model_ids=a,b&days=0
func (h *BacktestHandler) Compare(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("model_ids")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "Missing 'model_ids' parameter")
		return
	}

	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid model ID in 'model_ids'")
			return
		}
		ids = append(ids, id)
	}

	days, ok := queryDays(w, r, 0)
	if !ok {
		return
	}

	series := make(map[string][]BacktestResponsePoint, len(ids))
	for _, id := range ids {
		points, err := h.backtests.GetSeries(r.Context(), id, days)
		if err != nil {
			h.logger.WithError(err).WithField("model_id", id).Error("Failed to get backtest series")
			respondError(w, http.StatusInternalServerError, "Failed to retrieve backtest")
			return
		}
		series[id.String()] = backtestPoints(points)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"days":   days,
		"models": series,
	})
}

func backtestPoints(points []contracts.BacktestPoint) []BacktestResponsePoint {
	out := make([]BacktestResponsePoint, len(points))
	for i, p := range points {
		out[i] = BacktestResponsePoint{
			Date:          p.Date.Format("2006-01-02"),
			BuyHoldValue:  p.BuyHoldValue,
			TradedValue:   p.TradedValue,
			NewHighs:      p.NewHighs,
			NewLows:       p.NewLows,
			SelectedModel: p.SelectedModel,
		}
	}
	return out
}
