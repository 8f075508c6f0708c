package selection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnualReturn(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		days   int
		want   float64
	}{
		{"empty series", nil, 10, 0.0},
		{"single point", []float64{100}, 10, 0.0},
		{"zero days", []float64{100, 110}, 0, 0.0},
		{"negative days", []float64{100, 110}, -5, 0.0},
		{"zero start value", []float64{0, 110}, 10, 0.0},
		{"negative start value", []float64{-100, 110}, 10, 0.0},
		{"flat series", []float64{100, 100, 100}, 3, 0.0},
		{
			// 10% over a full year of trading days stays 10%
			"one year",
			[]float64{100, 110},
			252,
			0.10,
		},
		{
			// 10% over half a year compounds to (1.1)^2 - 1
			"half year",
			[]float64{100, 110},
			126,
			math.Pow(1.1, 2) - 1,
		},
		{
			"losing year",
			[]float64{100, 90},
			252,
			-0.10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnnualReturn(tt.values, tt.days)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestDailyReturns(t *testing.T) {
	t.Run("short series yields no returns", func(t *testing.T) {
		assert.Nil(t, DailyReturns(nil))
		assert.Nil(t, DailyReturns([]float64{100}))
	})

	t.Run("pairwise returns", func(t *testing.T) {
		got := DailyReturns([]float64{100, 110, 99})
		assert.Len(t, got, 2)
		assert.InDelta(t, 0.10, got[0], 1e-12)
		assert.InDelta(t, -0.10, got[1], 1e-12)
	})

	t.Run("non-positive previous value emits zero, not a gap", func(t *testing.T) {
		got := DailyReturns([]float64{100, 0, 50, 100})
		assert.Equal(t, []float64{-1.0, 0.0, 1.0}, got)
	})
}

func TestSharpeRatio(t *testing.T) {
	t.Run("degenerate inputs return zero", func(t *testing.T) {
		assert.Zero(t, SharpeRatio(nil, 0.0))
		assert.Zero(t, SharpeRatio([]float64{100}, 0.0))
		// Constant returns have zero deviation
		assert.Zero(t, SharpeRatio([]float64{100, 110, 121}, 0.0))
	})

	t.Run("positive drift beats negative drift", func(t *testing.T) {
		up := SharpeRatio([]float64{100, 101, 103, 104, 107}, 0.0)
		down := SharpeRatio([]float64{100, 99, 97, 96, 93}, 0.0)
		assert.Greater(t, up, 0.0)
		assert.Less(t, down, 0.0)
	})

	t.Run("population deviation with zero risk-free", func(t *testing.T) {
		values := []float64{100, 110, 99}
		returns := []float64{0.10, -0.10}
		_ = returns
		mean := 0.0
		variance := (0.10*0.10 + 0.10*0.10) / 2.0
		want := (mean / math.Sqrt(variance)) * math.Sqrt(252)

		assert.InDelta(t, want, SharpeRatio(values, 0.0), 1e-12)
	})

	t.Run("risk-free rate compounds down to daily", func(t *testing.T) {
		values := []float64{100, 101, 103, 104, 107}
		withRF := SharpeRatio(values, 0.05)
		withoutRF := SharpeRatio(values, 0.0)
		assert.Less(t, withRF, withoutRF)
	})
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty series", nil, 0.0},
		{"single point", []float64{100}, 0.0},
		{"monotonic rise", []float64{100, 110, 120}, 0.0},
		{"full collapse", []float64{100, 50}, 0.5},
		{"peak then trough", []float64{100, 80, 120, 90}, 0.25},
		{"recovery does not erase drawdown", []float64{100, 60, 100}, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MaxDrawdown(tt.values), 1e-12)
		})
	}
}

// Prefixing the series with values that stay below the later running
// peak and never exceed the existing max drawdown must not change the
// result.
func TestMaxDrawdown_PrefixInvariance(t *testing.T) {
	base := []float64{100, 80, 120, 90}
	want := MaxDrawdown(base)

	prefixed := append([]float64{95, 98}, base...)
	assert.InDelta(t, want, MaxDrawdown(prefixed), 1e-12)
}

func TestSortinoRatio(t *testing.T) {
	t.Run("degenerate inputs return zero", func(t *testing.T) {
		assert.Zero(t, SortinoRatio(nil, 0.0))
		assert.Zero(t, SortinoRatio([]float64{100}, 0.0))
	})

	t.Run("no downside returns zero", func(t *testing.T) {
		// Strictly rising series has no return below a 0% threshold
		assert.Zero(t, SortinoRatio([]float64{100, 101, 102, 103}, 0.0))
	})

	t.Run("variance divides by total count, not downside count", func(t *testing.T) {
		values := []float64{100, 110, 99}
		returns := []float64{0.10, -0.10}
		mean := 0.0
		// One downside return, but divided by len(returns) == 2
		downsideVar := (0.10 * 0.10) / float64(len(returns))
		want := (mean / math.Sqrt(downsideVar)) * math.Sqrt(252)

		assert.InDelta(t, want, SortinoRatio(values, 0.0), 1e-12)
	})

	t.Run("steady decline is negative", func(t *testing.T) {
		assert.Less(t, SortinoRatio([]float64{100, 98, 96, 94}, 0.0), 0.0)
	})
}

func TestCalmarRatio(t *testing.T) {
	t.Run("zero drawdown returns exactly zero", func(t *testing.T) {
		got := CalmarRatio([]float64{100, 110, 120}, 30)
		assert.Equal(t, 0.0, got)
		assert.False(t, math.IsInf(got, 0))
	})

	t.Run("short series returns zero", func(t *testing.T) {
		assert.Zero(t, CalmarRatio(nil, 30))
		assert.Zero(t, CalmarRatio([]float64{100}, 30))
	})

	t.Run("annual return over drawdown", func(t *testing.T) {
		values := []float64{100, 80, 110}
		want := AnnualReturn(values, 252) / MaxDrawdown(values)
		assert.InDelta(t, want, CalmarRatio(values, 252), 1e-12)
	})
}

func TestAllMetrics(t *testing.T) {
	t.Run("exact key set", func(t *testing.T) {
		metrics := AllMetrics([]float64{100, 105, 103, 110}, 4)

		assert.Len(t, metrics, 5)
		for _, name := range metricNames {
			assert.Contains(t, metrics, name)
		}
	})

	t.Run("degenerate input never panics and degrades to zero", func(t *testing.T) {
		for _, values := range [][]float64{nil, {}, {100}, {0, 0}, {-5, -6}} {
			metrics := AllMetrics(values, 0)
			for name, v := range metrics {
				assert.Zerof(t, v, "metric %s", name)
			}
		}
	})
}
