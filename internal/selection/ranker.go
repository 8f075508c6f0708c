package selection

import "sort"

// Ranker cross-sectionally ranks models per metric and aggregates the
// per-metric ranks into a weighted composite (lower is better).
type Ranker struct {
	weights map[string]float64
}

// NewRanker creates a ranker with the given metric weights. The weights
// must contain exactly the five metric names; use Config.Validate to
// check before construction.
func NewRanker(weights map[string]float64) *Ranker {
	return &Ranker{weights: weights}
}

// RankModels assigns each model a composite rank from its metrics.
//
// For each metric, models are sorted best-first (ascending for
// max_drawdown, descending otherwise) and given ranks 1..N by position.
// Equal metric values are broken by model name so the ranking does not
// depend on map iteration order. The composite is the weight-summed rank
// across all five metrics. An empty input yields an empty map.
func (r *Ranker) RankModels(modelMetrics map[string]MetricSet) map[string]float64 {
	if len(modelMetrics) == 0 {
		return map[string]float64{}
	}

	names := make([]string, 0, len(modelMetrics))
	for name := range modelMetrics {
		names = append(names, name)
	}
	sort.Strings(names)

	type entry struct {
		name  string
		value float64
	}

	metricRanks := make(map[string]map[string]int, len(names))
	for _, name := range names {
		metricRanks[name] = make(map[string]int, len(metricNames))
	}

	for _, metric := range metricNames {
		entries := make([]entry, 0, len(names))
		for _, name := range names {
			entries = append(entries, entry{name: name, value: modelMetrics[name][metric]})
		}

		if metric == MetricMaxDrawdown {
			// Lower drawdown is better
			sort.SliceStable(entries, func(i, j int) bool {
				return entries[i].value < entries[j].value
			})
		} else {
			// Higher is better
			sort.SliceStable(entries, func(i, j int) bool {
				return entries[i].value > entries[j].value
			})
		}

		for i, e := range entries {
			metricRanks[e.name][metric] = i + 1
		}
	}

	composite := make(map[string]float64, len(names))
	for _, name := range names {
		var weighted float64
		for _, metric := range metricNames {
			weighted += float64(metricRanks[name][metric]) * r.weights[metric]
		}
		composite[name] = weighted
	}

	return composite
}
