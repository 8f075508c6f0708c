package selection

import "math"

// Metric names as they appear in MetricSet keys and weight configs.
const (
	MetricAnnualReturn = "annual_return"
	MetricSharpeRatio  = "sharpe_ratio"
	MetricMaxDrawdown  = "max_drawdown"
	MetricSortinoRatio = "sortino_ratio"
	MetricCalmarRatio  = "calmar_ratio"
)

// metricNames fixes the evaluation order of the five metrics.
var metricNames = []string{
	MetricAnnualReturn,
	MetricSharpeRatio,
	MetricMaxDrawdown,
	MetricSortinoRatio,
	MetricCalmarRatio,
}

// tradingDaysPerYear is the annualization convention used throughout.
const tradingDaysPerYear = 252.0

// MetricSet maps metric name to value for one model over one window.
type MetricSet map[string]float64

// AnnualReturn computes the annualized return of a value series over the
// given number of trading days. Returns 0 for series shorter than two
// points, non-positive day counts, or a non-positive starting value.
func AnnualReturn(values []float64, days int) float64 {
	if len(values) < 2 || days <= 0 {
		return 0.0
	}

	startValue := values[0]
	endValue := values[len(values)-1]

	if startValue <= 0 {
		return 0.0
	}

	totalReturn := (endValue - startValue) / startValue
	years := float64(days) / tradingDaysPerYear

	return math.Pow(1.0+totalReturn, 1.0/years) - 1.0
}

// DailyReturns computes simple pairwise returns. A step whose previous
// value is non-positive contributes 0 instead of being skipped, so the
// result always has len(values)-1 entries.
func DailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] > 0 {
			returns = append(returns, (values[i]-values[i-1])/values[i-1])
		} else {
			returns = append(returns, 0.0)
		}
	}
	return returns
}

// SharpeRatio computes the annualized Sharpe ratio of a value series.
// Standard deviation is population (denominator N). Returns 0 when there
// are no returns or the deviation is exactly zero.
func SharpeRatio(values []float64, riskFreeRate float64) float64 {
	returns := DailyReturns(values)
	if len(returns) == 0 {
		return 0.0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns))
	stdDev := math.Sqrt(variance)

	if stdDev == 0 {
		return 0.0
	}

	dailyRF := dailyRiskFree(riskFreeRate)
	return ((mean - dailyRF) / stdDev) * math.Sqrt(tradingDaysPerYear)
}

// MaxDrawdown computes the maximum peak-to-trough decline as a
// non-negative fraction. Returns 0 for an empty series.
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	peak := values[0]
	maxDD := 0.0

	for _, value := range values {
		if value > peak {
			peak = value
		}

		if peak > 0 {
			drawdown := (peak - value) / peak
			if drawdown > maxDD {
				maxDD = drawdown
			}
		}
	}

	return maxDD
}

// SortinoRatio computes the annualized Sortino ratio. The downside
// deviation only sums returns strictly below the daily risk-free rate,
// but the variance divides by the TOTAL return count, not the downside
// count. This deviates from the conventional Sortino definition and is
// kept deliberately for parity with the historical selection results.
// Returns 0 when no return falls below the threshold or the resulting
// deviation is zero.
func SortinoRatio(values []float64, riskFreeRate float64) float64 {
	returns := DailyReturns(values)
	if len(returns) == 0 {
		return 0.0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))
	dailyRF := dailyRiskFree(riskFreeRate)

	var downsideVariance float64
	downsideCount := 0
	for _, r := range returns {
		if r < dailyRF {
			diff := r - dailyRF
			downsideVariance += diff * diff
			downsideCount++
		}
	}

	if downsideCount == 0 {
		// No downside volatility
		return 0.0
	}

	downsideVariance /= float64(len(returns))
	downsideDev := math.Sqrt(downsideVariance)

	if downsideDev == 0 {
		return 0.0
	}

	return ((mean - dailyRF) / downsideDev) * math.Sqrt(tradingDaysPerYear)
}

// CalmarRatio computes annual return divided by max drawdown.
// Returns 0 when the drawdown is exactly zero.
func CalmarRatio(values []float64, days int) float64 {
	maxDD := MaxDrawdown(values)
	if maxDD == 0 {
		return 0.0
	}
	return AnnualReturn(values, days) / maxDD
}

// AllMetrics computes the full five-metric set for one model. Risk-free
// rate is zero, matching the historical meta-model configuration.
func AllMetrics(values []float64, days int) MetricSet {
	return MetricSet{
		MetricAnnualReturn: AnnualReturn(values, days),
		MetricSharpeRatio:  SharpeRatio(values, 0.0),
		MetricMaxDrawdown:  MaxDrawdown(values),
		MetricSortinoRatio: SortinoRatio(values, 0.0),
		MetricCalmarRatio:  CalmarRatio(values, days),
	}
}

// dailyRiskFree compounds an annual risk-free rate down to one trading day
func dailyRiskFree(annualRate float64) float64 {
	return math.Pow(1.0+annualRate, 1.0/tradingDaysPerYear) - 1.0
}
