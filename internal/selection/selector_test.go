package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// series builds a daily ValueSeries starting at day(0)
func series(values ...float64) contracts.ValueSeries {
	s := make(contracts.ValueSeries, len(values))
	for i, v := range values {
		s[i] = contracts.ValuePoint{Date: day(i), Value: v}
	}
	return s
}

// linear builds n daily values starting at start, changing by step per day
func linear(start, step float64, n int) contracts.ValueSeries {
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = start + step*float64(i)
	}
	return series(values...)
}

func mustSelector(t *testing.T, lookbacks ...int) *Selector {
	t.Helper()
	cfg := DefaultConfig()
	if len(lookbacks) > 0 {
		cfg.LookbackPeriods = lookbacks
	}
	sel, err := NewSelector(cfg)
	require.NoError(t, err)
	return sel
}

func TestConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
	})

	t.Run("empty lookbacks rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LookbackPeriods = nil
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive lookback rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LookbackPeriods = []int{55, 0}
		assert.Error(t, cfg.Validate())
	})

	t.Run("weights must sum to one", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MetricWeights[MetricAnnualReturn] = 0.5
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown or missing metric rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		delete(cfg.MetricWeights, MetricCalmarRatio)
		cfg.MetricWeights["information_ratio"] = 0.15
		assert.Error(t, cfg.Validate())
	})
}

func TestSelectBestModel_EmptyData(t *testing.T) {
	got := mustSelector(t).SelectBestModel(nil, day(30))

	assert.Equal(t, CashModel, got.SelectedModel)
	assert.Zero(t, got.Confidence)
	assert.Empty(t, got.AllRanks)
}

func TestSelectBestModel_InsufficientData(t *testing.T) {
	data := map[string]contracts.ValueSeries{
		"naz100_pine": series(100), // single point, never qualifies
	}

	got := mustSelector(t).SelectBestModel(data, day(30))

	assert.Equal(t, CashModel, got.SelectedModel)
	assert.Zero(t, got.Confidence)
	assert.Empty(t, got.AllRanks)
}

// All data older than every lookback window also yields the sentinel.
func TestSelectBestModel_StaleData(t *testing.T) {
	data := map[string]contracts.ValueSeries{
		"naz100_pine": linear(100, 1, 30),
	}

	got := mustSelector(t, 30).SelectBestModel(data, day(400))

	assert.Equal(t, CashModel, got.SelectedModel)
	assert.Empty(t, got.AllRanks)
}

// Steady riser vs steady faller over a single 30-day window: the riser
// must win with positive confidence.
func TestSelectBestModel_RiserBeatsFaller(t *testing.T) {
	data := map[string]contracts.ValueSeries{
		"A": linear(100, 1, 30),  // 100, 101, ... 129
		"B": linear(100, -1, 30), // 100, 99, ... 71
	}

	got := mustSelector(t, 30).SelectBestModel(data, day(29))

	assert.Equal(t, "A", got.SelectedModel)
	assert.Greater(t, got.Confidence, 0.0)
	require.Len(t, got.AllRanks, 2)
	assert.Less(t, got.AllRanks["A"], got.AllRanks["B"])
}

func TestSelectBestModel_SingleModelZeroConfidence(t *testing.T) {
	data := map[string]contracts.ValueSeries{
		"A": linear(100, 1, 30),
	}

	got := mustSelector(t, 30).SelectBestModel(data, day(29))

	assert.Equal(t, "A", got.SelectedModel)
	assert.Zero(t, got.Confidence)
	require.Len(t, got.AllRanks, 1)
	assert.InDelta(t, 1.0, got.AllRanks["A"], 1e-12)
}

// The window filter is inclusive on both ends.
func TestSelectBestModel_WindowBoundsInclusive(t *testing.T) {
	// Exactly two points: one on the cutoff date, one on the target date.
	data := map[string]contracts.ValueSeries{
		"A": {
			{Date: day(0), Value: 100},
			{Date: day(10), Value: 110},
		},
	}

	got := mustSelector(t, 10).SelectBestModel(data, day(10))

	assert.Equal(t, "A", got.SelectedModel)
}

// Aggregate ranks divide by the number of windows that produced any
// ranking, not by how many windows each model individually appeared in.
func TestSelectBestModel_WindowCountDenominator(t *testing.T) {
	// "retired" stopped producing values at day 15, so it misses the
	// 10-day window entirely but dominates the 30-day window.
	data := map[string]contracts.ValueSeries{
		"retired": linear(100, 2, 16),    // rising, ends at day 15
		"active":  linear(100, -0.5, 30), // declining, current
	}

	got := mustSelector(t, 10, 30).SelectBestModel(data, day(29))

	require.Len(t, got.AllRanks, 2)
	// Both windows produced rankings, so every summed rank divides by 2:
	// retired = rank 1 in one window / 2 = 0.5, active = (1 + 2) / 2.
	assert.InDelta(t, 0.5, got.AllRanks["retired"], 1e-12)
	assert.InDelta(t, 1.5, got.AllRanks["active"], 1e-12)
	// The missing window is not penalized, so retired still wins.
	assert.Equal(t, "retired", got.SelectedModel)
}

// Lookback windows subtract calendar days from the target date, and
// metrics annualize over the realized point count inside the window.
func TestSelectBestModel_SparseSeriesUsesRealizedDays(t *testing.T) {
	// Weekly observations inside a 30-day window: 5 points qualify.
	sparse := contracts.ValueSeries{
		{Date: day(0), Value: 100},
		{Date: day(7), Value: 104},
		{Date: day(14), Value: 108},
		{Date: day(21), Value: 112},
		{Date: day(28), Value: 116},
	}
	dense := linear(100, -0.5, 29)

	data := map[string]contracts.ValueSeries{
		"sparse": sparse,
		"dense":  dense,
	}

	got := mustSelector(t, 30).SelectBestModel(data, day(28))

	assert.Equal(t, "sparse", got.SelectedModel)
	assert.Greater(t, got.Confidence, 0.0)
}

// Identical inputs always produce identical output, whatever the map
// iteration order happens to be.
func TestSelectBestModel_Deterministic(t *testing.T) {
	data := map[string]contracts.ValueSeries{
		"A": linear(100, 1, 40),
		"B": linear(100, 0.5, 40),
		"C": linear(100, -0.25, 40),
		"D": linear(100, 0.75, 40),
	}

	sel := mustSelector(t, 10, 20, 40)
	first := sel.SelectBestModel(data, day(39))
	for i := 0; i < 20; i++ {
		again := sel.SelectBestModel(data, day(39))
		assert.Equal(t, first, again)
	}
}

func TestNewSelector_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LookbackPeriods = []int{}
	_, err := NewSelector(cfg)
	assert.Error(t, err)
}
