package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
	"github.com/DonaldPG/pytaaa-web/internal/selection"
)

func dailySeries(start time.Time, first, step float64, n int) contracts.ValueSeries {
	series := make(contracts.ValueSeries, n)
	for i := 0; i < n; i++ {
		series[i] = contracts.ValuePoint{
			Date:  start.AddDate(0, 0, i),
			Value: first + step*float64(i),
		}
	}
	return series
}

func TestSelectionHistory(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	backtests := &stubBacktests{
		byName: map[string]contracts.ValueSeries{
			"riser":  dailySeries(start, 100, 1, 60),
			"faller": dailySeries(start, 100, -1, 60),
		},
		latest: start.AddDate(0, 0, 59),
	}
	h := NewSelectionHandler(backtests, nil, testLogger())

	rec := doRequest(h.History, http.MethodGet,
		"/api/v1/models/selection/history?lookbacks=30&sample_rate=10", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, []interface{}{float64(30)}, body["lookback_periods"])
	assert.Equal(t, float64(10), body["sample_rate"])

	selections := body["selections"].([]interface{})
	// 60 union dates sampled every 10th
	require.Len(t, selections, 6)

	// Early dates have too little history and fall back to cash
	first := selections[0].(map[string]interface{})
	assert.Equal(t, selection.CashModel, first["selected_model"])

	// Once the window fills the riser dominates
	last := selections[len(selections)-1].(map[string]interface{})
	assert.Equal(t, "riser", last["selected_model"])
	assert.Greater(t, last["confidence"].(float64), 0.0)
}

func TestSelectionHistory_NoData(t *testing.T) {
	h := NewSelectionHandler(&stubBacktests{}, nil, testLogger())

	rec := doRequest(h.History, http.MethodGet, "/api/v1/models/selection/history", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["count"])
	assert.Empty(t, body["selections"])
}

func TestSelectionHistory_InvalidLookbacks(t *testing.T) {
	h := NewSelectionHandler(&stubBacktests{}, nil, testLogger())

	rec := doRequest(h.History, http.MethodGet,
		"/api/v1/models/selection/history?lookbacks=30,bogus", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectionHistory_InvalidSampleRate(t *testing.T) {
	h := NewSelectionHandler(&stubBacktests{}, nil, testLogger())

	rec := doRequest(h.History, http.MethodGet,
		"/api/v1/models/selection/history?sample_rate=0", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
