package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
	"github.com/DonaldPG/pytaaa-web/internal/store"
	"github.com/DonaldPG/pytaaa-web/pkg/config"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{LogLevel: "error", LogFormat: "json"})
}

// Stub repositories

type stubModels struct {
	models []contracts.ModelWithLatest
	err    error
}

func (s *stubModels) CreateOrGet(_ context.Context, _ *contracts.TradingModel) error { return s.err }

func (s *stubModels) GetByID(_ context.Context, id uuid.UUID) (*contracts.TradingModel, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, m := range s.models {
		if m.ID == id {
			model := m.TradingModel
			return &model, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *stubModels) GetByName(_ context.Context, name string) (*contracts.TradingModel, error) {
	for _, m := range s.models {
		if m.Name == name {
			model := m.TradingModel
			return &model, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *stubModels) List(_ context.Context) ([]contracts.ModelWithLatest, error) {
	return s.models, s.err
}

type stubPerformance struct {
	series map[uuid.UUID][]contracts.PerformanceMetric
	err    error
}

func (s *stubPerformance) SaveBatch(_ context.Context, _ []contracts.PerformanceMetric) error {
	return s.err
}

func (s *stubPerformance) GetSeries(_ context.Context, modelID uuid.UUID, _ int) ([]contracts.PerformanceMetric, error) {
	return s.series[modelID], s.err
}

func (s *stubPerformance) DeleteByModel(_ context.Context, _ uuid.UUID) error { return s.err }

type stubSnapshots struct {
	latest *contracts.PortfolioSnapshot
	dates  []time.Time
	err    error
}

func (s *stubSnapshots) Save(_ context.Context, _ *contracts.PortfolioSnapshot) error { return s.err }

func (s *stubSnapshots) GetLatest(_ context.Context, _ uuid.UUID) (*contracts.PortfolioSnapshot, error) {
	if s.latest == nil {
		return nil, store.ErrNotFound
	}
	return s.latest, s.err
}

func (s *stubSnapshots) GetByDate(_ context.Context, _ uuid.UUID, date time.Time) (*contracts.PortfolioSnapshot, error) {
	if s.latest == nil || !s.latest.Date.Equal(date) {
		return nil, store.ErrNotFound
	}
	return s.latest, s.err
}

func (s *stubSnapshots) ListDates(_ context.Context, _ uuid.UUID) ([]time.Time, error) {
	return s.dates, s.err
}

func (s *stubSnapshots) DeleteByModel(_ context.Context, _ uuid.UUID) error { return s.err }

type stubBacktests struct {
	series map[uuid.UUID][]contracts.BacktestPoint
	byName map[string]contracts.ValueSeries
	latest time.Time
	err    error
}

func (s *stubBacktests) SaveBatch(_ context.Context, _ []contracts.BacktestPoint) error {
	return s.err
}

func (s *stubBacktests) GetSeries(_ context.Context, modelID uuid.UUID, _ int) ([]contracts.BacktestPoint, error) {
	return s.series[modelID], s.err
}

func (s *stubBacktests) ValueSeriesByModel(_ context.Context) (map[string]contracts.ValueSeries, error) {
	return s.byName, s.err
}

func (s *stubBacktests) LatestDate(_ context.Context) (time.Time, error) {
	if s.latest.IsZero() {
		return time.Time{}, store.ErrNotFound
	}
	return s.latest, s.err
}

func (s *stubBacktests) DeleteByModel(_ context.Context, _ uuid.UUID) error { return s.err }

// Request helpers

func doRequest(h http.HandlerFunc, method, target string, vars map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// Model endpoints

func TestModelList(t *testing.T) {
	latest := 10100.0
	models := &stubModels{models: []contracts.ModelWithLatest{
		{
			TradingModel: contracts.TradingModel{
				ID: uuid.New(), Name: "naz100_meta", IndexType: contracts.IndexNasdaq100, IsMeta: true,
			},
			LatestValue: &latest,
		},
		{
			TradingModel: contracts.TradingModel{
				ID: uuid.New(), Name: "naz100_pine", IndexType: contracts.IndexNasdaq100,
			},
		},
	}}
	h := NewModelHandler(models, &stubPerformance{}, testLogger())

	rec := doRequest(h.List, http.MethodGet, "/api/v1/models", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["count"])
}

func TestModelGet_NotFound(t *testing.T) {
	h := NewModelHandler(&stubModels{}, &stubPerformance{}, testLogger())

	rec := doRequest(h.Get, http.MethodGet, "/api/v1/models/"+uuid.NewString(),
		map[string]string{"id": uuid.NewString()})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestModelGet_InvalidID(t *testing.T) {
	h := NewModelHandler(&stubModels{}, &stubPerformance{}, testLogger())

	rec := doRequest(h.Get, http.MethodGet, "/api/v1/models/not-a-uuid",
		map[string]string{"id": "not-a-uuid"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModelPerformance(t *testing.T) {
	id := uuid.New()
	perf := &stubPerformance{series: map[uuid.UUID][]contracts.PerformanceMetric{
		id: {
			{ModelID: id, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), BaseValue: 10000, TradedValue: 10000},
			{ModelID: id, Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), BaseValue: 10100, TradedValue: 10150},
		},
	}}
	h := NewModelHandler(&stubModels{}, perf, testLogger())

	rec := doRequest(h.Performance, http.MethodGet, "/api/v1/models/x/performance?days=30",
		map[string]string{"id": id.String()})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(30), body["days"])
	assert.Equal(t, float64(2), body["count"])

	series := body["series"].([]interface{})
	first := series[0].(map[string]interface{})
	assert.Equal(t, "2024-01-02", first["date"])
	assert.Equal(t, 10000.0, first["traded_value"])
}

func TestModelPerformance_InvalidDays(t *testing.T) {
	h := NewModelHandler(&stubModels{}, &stubPerformance{}, testLogger())

	rec := doRequest(h.Performance, http.MethodGet, "/api/v1/models/x/performance?days=soon",
		map[string]string{"id": uuid.NewString()})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Portfolio endpoints

func TestPortfolioHoldings_NotFound(t *testing.T) {
	h := NewPortfolioHandler(&stubSnapshots{}, testLogger())

	rec := doRequest(h.Holdings, http.MethodGet, "/api/v1/models/x/holdings",
		map[string]string{"id": uuid.NewString()})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPortfolioHoldingsByDate(t *testing.T) {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	snap := &contracts.PortfolioSnapshot{
		ID: uuid.New(), ModelID: uuid.New(), Date: date, TotalValue: 4000,
		Holdings: []contracts.PortfolioHolding{
			{Ticker: "AAPL", Shares: 10, PurchasePrice: 150, CurrentPrice: 150, Weight: 0.375},
		},
	}
	h := NewPortfolioHandler(&stubSnapshots{latest: snap}, testLogger())

	rec := doRequest(h.HoldingsByDate, http.MethodGet, "/api/v1/models/x/holdings/2024-01-02",
		map[string]string{"id": snap.ModelID.String(), "date": "2024-01-02"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 4000.0, body["total_value"])
}

func TestPortfolioHoldingsByDate_BadDate(t *testing.T) {
	h := NewPortfolioHandler(&stubSnapshots{}, testLogger())

	rec := doRequest(h.HoldingsByDate, http.MethodGet, "/api/v1/models/x/holdings/tomorrow",
		map[string]string{"id": uuid.NewString(), "date": "tomorrow"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPortfolioSnapshots(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	h := NewPortfolioHandler(&stubSnapshots{dates: dates}, testLogger())

	rec := doRequest(h.Snapshots, http.MethodGet, "/api/v1/models/x/snapshots",
		map[string]string{"id": uuid.NewString()})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, []interface{}{"2024-01-09", "2024-01-02"}, body["dates"])
}

// Backtest endpoints

func TestBacktestSeries(t *testing.T) {
	id := uuid.New()
	backtests := &stubBacktests{series: map[uuid.UUID][]contracts.BacktestPoint{
		id: {
			{ModelID: id, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), BuyHoldValue: 10000, TradedValue: 10000, NewHighs: 25, NewLows: 5},
		},
	}}
	h := NewBacktestHandler(backtests, testLogger())

	rec := doRequest(h.Series, http.MethodGet, "/api/v1/models/x/backtest",
		map[string]string{"id": id.String()})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])
}

func TestBacktestCompare_MissingIDs(t *testing.T) {
	h := NewBacktestHandler(&stubBacktests{}, testLogger())

	rec := doRequest(h.Compare, http.MethodGet, "/api/v1/models/backtest/compare", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBacktestCompare(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	backtests := &stubBacktests{series: map[uuid.UUID][]contracts.BacktestPoint{
		a: {{ModelID: a, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), TradedValue: 10000}},
		b: {{ModelID: b, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), TradedValue: 9000}},
	}}
	h := NewBacktestHandler(backtests, testLogger())

	rec := doRequest(h.Compare, http.MethodGet,
		"/api/v1/models/backtest/compare?model_ids="+a.String()+","+b.String(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	models := body["models"].(map[string]interface{})
	assert.Len(t, models, 2)
}
