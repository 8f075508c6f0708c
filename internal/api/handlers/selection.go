package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
	"github.com/DonaldPG/pytaaa-web/internal/selection"
	"github.com/DonaldPG/pytaaa-web/internal/store"
	"github.com/DonaldPG/pytaaa-web/pkg/config"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
	"github.com/DonaldPG/pytaaa-web/pkg/redis"
)

const defaultSampleRate = 10

// SelectionHandler replays the model selection engine over the stored
// backtest history
type SelectionHandler struct {
	backtests contracts.BacktestRepository
	cache     *redis.Cache
	logger    *logger.Logger
}

// NewSelectionHandler creates a new selection handler. cache may be nil
// when Redis is disabled.
func NewSelectionHandler(backtests contracts.BacktestRepository, cache *redis.Cache, log *logger.Logger) *SelectionHandler {
	return &SelectionHandler{backtests: backtests, cache: cache, logger: log}
}

// SelectionEntry is one replayed selection decision
type SelectionEntry struct {
	Date          string             `json:"date"`
	SelectedModel string             `json:"selected_model"`
	Confidence    float64            `json:"confidence"`
	AllRanks      map[string]float64 `json:"all_ranks"`
}

// SelectionHistoryResponse is the full replay result
type SelectionHistoryResponse struct {
	LookbackPeriods []int            `json:"lookback_periods"`
	SampleRate      int              `json:"sample_rate"`
	Selections      []SelectionEntry `json:"selections"`
	Count           int              `json:"count"`
}

// History replays the selector over the sampled union of backtest dates
// GET /api/v1/models/selection/history?lookbacks=55,157,174&sample_rate=10
func (h *SelectionHandler) History(w http.ResponseWriter, r *http.Request) {
	cfg := selection.DefaultConfig()

	lookbacksParam := r.URL.Query().Get("lookbacks")
	if lookbacksParam != "" {
		lookbacks, err := config.ParseLookbacks(lookbacksParam)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'lookbacks' parameter")
			return
		}
		cfg.LookbackPeriods = lookbacks
	}

	sampleRate := defaultSampleRate
	if raw := r.URL.Query().Get("sample_rate"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Invalid 'sample_rate' parameter")
			return
		}
		sampleRate = n
	}

	selector, err := selection.NewSelector(cfg)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	latest, err := h.backtests.LatestDate(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		respondJSON(w, http.StatusOK, SelectionHistoryResponse{
			LookbackPeriods: cfg.LookbackPeriods,
			SampleRate:      sampleRate,
			Selections:      []SelectionEntry{},
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest backtest date")
		respondError(w, http.StatusInternalServerError, "Failed to compute selection history")
		return
	}

	cacheKey := redis.SelectionHistoryKey(lookbacksParam, sampleRate, latest.Format("2006-01-02"))
	if h.cache != nil {
		var cached SelectionHistoryResponse
		if hit, err := h.cache.Get(r.Context(), cacheKey, &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	data, err := h.backtests.ValueSeriesByModel(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load backtest series")
		respondError(w, http.StatusInternalServerError, "Failed to compute selection history")
		return
	}

	resp := replaySelections(selector, data, sampleRate)
	resp.LookbackPeriods = cfg.LookbackPeriods
	resp.SampleRate = sampleRate

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), cacheKey, resp, redis.TTLMedium); err != nil {
			h.logger.WithError(err).Warn("Failed to cache selection history")
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// replaySelections runs the selector on every sample-rate-th date of
// the unioned, ascending date set.
func replaySelections(selector *selection.Selector, data map[string]contracts.ValueSeries, sampleRate int) SelectionHistoryResponse {
	dateSet := make(map[time.Time]struct{})
	for _, series := range data {
		for _, p := range series {
			dateSet[p.Date] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	selections := []SelectionEntry{}
	for i := 0; i < len(dates); i += sampleRate {
		result := selector.SelectBestModel(data, dates[i])
		selections = append(selections, SelectionEntry{
			Date:          dates[i].Format("2006-01-02"),
			SelectedModel: result.SelectedModel,
			Confidence:    result.Confidence,
			AllRanks:      result.AllRanks,
		})
	}

	return SelectionHistoryResponse{
		Selections: selections,
		Count:      len(selections),
	}
}
