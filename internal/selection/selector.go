package selection

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
)

// CashModel is the sentinel returned when no model has enough data to
// be ranked in any lookback window: hold cash instead of picking blind.
const CashModel = "cash"

// minWindowPoints is the minimum observations a model needs inside a
// lookback window to be scored for that window.
const minWindowPoints = 2

// Config is the selection engine configuration. It is a plain value
// passed at construction so independent configurations can run
// concurrently without shared state.
type Config struct {
	// LookbackPeriods are trailing windows in trading days, evaluated
	// in order.
	LookbackPeriods []int

	// MetricWeights maps each of the five metric names to its weight
	// in the composite rank. Weights sum to 1.0.
	MetricWeights map[string]float64
}

// DefaultConfig returns the historical meta-model configuration.
func DefaultConfig() Config {
	return Config{
		LookbackPeriods: []int{55, 157, 174},
		MetricWeights: map[string]float64{
			MetricAnnualReturn: 0.25,
			MetricSharpeRatio:  0.25,
			MetricMaxDrawdown:  0.20,
			MetricSortinoRatio: 0.15,
			MetricCalmarRatio:  0.15,
		},
	}
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if len(c.LookbackPeriods) == 0 {
		return fmt.Errorf("at least one lookback period is required")
	}
	for _, l := range c.LookbackPeriods {
		if l <= 0 {
			return fmt.Errorf("lookback period must be positive, got %d", l)
		}
	}

	if len(c.MetricWeights) != len(metricNames) {
		return fmt.Errorf("metric weights must have exactly %d entries, got %d",
			len(metricNames), len(c.MetricWeights))
	}
	var sum float64
	for _, metric := range metricNames {
		w, ok := c.MetricWeights[metric]
		if !ok {
			return fmt.Errorf("missing weight for metric %q", metric)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("metric weights must sum to 1.0, got %.6f", sum)
	}

	return nil
}

// Result is the outcome of one selection computation. AllRanks holds
// each model's composite rank averaged across lookback windows; lower
// is better. Confidence is the gap between the best and second-best
// aggregate rank (0 when fewer than two models were ranked).
type Result struct {
	SelectedModel string             `json:"selected_model"`
	Confidence    float64            `json:"confidence"`
	AllRanks      map[string]float64 `json:"all_ranks"`
}

// Selector decides which model a meta-model should have been following
// at a given date. It is stateless: every call only touches its own
// local data, so a single Selector may be used from many goroutines.
type Selector struct {
	cfg    Config
	ranker *Ranker
}

// NewSelector creates a selector from a validated config.
func NewSelector(cfg Config) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid selection config: %w", err)
	}
	return &Selector{
		cfg:    cfg,
		ranker: NewRanker(cfg.MetricWeights),
	}, nil
}

// SelectBestModel picks the best model for targetDate from each model's
// historical value series.
//
// For every lookback window the series is filtered to
// [targetDate - lookback days, targetDate] inclusive; models with fewer
// than two points in the window are excluded from that window (not
// penalized). Metrics are annualized over the realized point count, not
// the nominal window length. Window rank maps are then summed per model
// and divided by the number of windows that produced any ranking at
// all. The denominator is the same for every model, even one absent
// from some windows, which under-weights missing windows; kept for
// parity with historical selections.
func (s *Selector) SelectBestModel(backtestData map[string]contracts.ValueSeries, targetDate time.Time) Result {
	var windowRanks []map[string]float64

	for _, lookbackDays := range s.cfg.LookbackPeriods {
		cutoff := targetDate.AddDate(0, 0, -lookbackDays)

		modelMetrics := make(map[string]MetricSet)
		for name, series := range backtestData {
			window := series.Between(cutoff, targetDate)
			if len(window) < minWindowPoints {
				// Not enough data for this lookback period
				continue
			}

			actualDays := len(window)
			modelMetrics[name] = AllMetrics(window.Values(), actualDays)
		}

		if len(modelMetrics) == 0 {
			continue
		}

		windowRanks = append(windowRanks, s.ranker.RankModels(modelMetrics))
	}

	if len(windowRanks) == 0 {
		// No model qualified anywhere: default to holding cash.
		return Result{
			SelectedModel: CashModel,
			Confidence:    0.0,
			AllRanks:      map[string]float64{},
		}
	}

	finalRanks := make(map[string]float64)
	for _, ranks := range windowRanks {
		for name, rank := range ranks {
			finalRanks[name] += rank
		}
	}
	for name := range finalRanks {
		finalRanks[name] /= float64(len(windowRanks))
	}

	type ranked struct {
		name string
		rank float64
	}
	sorted := make([]ranked, 0, len(finalRanks))
	for name, rank := range finalRanks {
		sorted = append(sorted, ranked{name: name, rank: rank})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].rank != sorted[j].rank {
			return sorted[i].rank < sorted[j].rank
		}
		return sorted[i].name < sorted[j].name
	})

	confidence := 0.0
	if len(sorted) > 1 {
		confidence = sorted[1].rank - sorted[0].rank
	}

	return Result{
		SelectedModel: sorted[0].name,
		Confidence:    confidence,
		AllRanks:      finalRanks,
	}
}

// Config returns the selector's configuration.
func (s *Selector) Config() Config {
	return s.cfg
}
