package telemetry

import (
	"math"
	"sort"
	"strings"
)

// rollupPrefixes are the metric namespaces included in mean/std rollups.
var rollupPrefixes = []string{
	"curriculum/",
	"executor/",
	"frontier/",
	"judge/",
	"rollout/",
	"loop/",
}

// percentileKeys get p50/p90/mean percentile stats.
var percentileKeys = map[string]bool{
	"rollout/tool_events": true,
	"rollout/turns":       true,
}

// seriesKeys keep their full ordered value series for band analysis.
var seriesKeys = map[string]bool{
	"curriculum/p_hat":        true,
	"executor/tool_calls_avg": true,
}

// judgeValidityKey drives the derived judge pass rate.
const judgeValidityKey = "judge/is_valid"

// Percentiles holds the percentile rollup for one metric.
type Percentiles struct {
	Mean float64 `json:"mean"`
	P50  float64 `json:"p50"`
	P90  float64 `json:"p90"`
}

// Stats is the aggregate view over a telemetry stream.
type Stats struct {
	// Means and Stds are per-key rollups over the namespaced metrics.
	Means map[string]float64 `json:"means"`
	Stds  map[string]float64 `json:"stds"`

	// Derived holds computed metrics such as judge/pass_rate.
	Derived map[string]float64 `json:"derived"`

	// PercentileStats holds p50/p90/mean for the percentile keys.
	PercentileStats map[string]Percentiles `json:"percentiles"`

	// Counts and Totals are per-key observation counts and sums.
	Counts map[string]int     `json:"counts"`
	Totals map[string]float64 `json:"totals"`

	// Series keeps the ordered values for the series keys.
	Series map[string][]float64 `json:"series"`
}

// Summarize computes rollup statistics from telemetry records.
func Summarize(records []Record) Stats {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	sqSums := make(map[string]float64)
	buckets := make(map[string][]float64)
	series := make(map[string][]float64)

	var judgeEvents int
	var judgePass float64

	for _, record := range records {
		for key, raw := range record {
			if key == judgeValidityKey {
				if v, ok := numericValue(raw); ok {
					judgeEvents++
					judgePass += v
				}
			}

			value, ok := numericValue(raw)
			if !ok {
				continue
			}

			if hasRollupPrefix(key) {
				sums[key] += value
				counts[key]++
				sqSums[key] += value * value
				if seriesKeys[key] {
					series[key] = append(series[key], value)
				}
			}
			if percentileKeys[key] {
				buckets[key] = append(buckets[key], value)
			}
		}
	}

	means := make(map[string]float64, len(counts))
	for key, n := range counts {
		means[key] = sums[key] / float64(n)
	}

	stds := make(map[string]float64)
	for key, total := range sums {
		n := counts[key]
		if n <= 1 {
			continue
		}
		mean := total / float64(n)
		variance := math.Max(0, sqSums[key]/float64(n)-mean*mean)
		stds[key] = math.Sqrt(variance)
	}

	derived := make(map[string]float64)
	if judgeEvents > 0 {
		derived["judge/pass_rate"] = judgePass / float64(judgeEvents)
	}

	percentileStats := make(map[string]Percentiles)
	for key, values := range buckets {
		if len(values) == 0 {
			continue
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		var sum float64
		for _, v := range sorted {
			sum += v
		}
		percentileStats[key] = Percentiles{
			Mean: sum / float64(len(sorted)),
			P50:  Percentile(sorted, 50),
			P90:  Percentile(sorted, 90),
		}
	}

	return Stats{
		Means:           means,
		Stds:            stds,
		Derived:         derived,
		PercentileStats: percentileStats,
		Counts:          counts,
		Totals:          sums,
		Series:          series,
	}
}

// Percentile computes a percentile over sorted values with linear
// interpolation between ranks.
func Percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := pct / 100 * float64(len(sorted)-1)
	lower := int(rank)
	upper := lower + 1
	if upper > len(sorted)-1 {
		upper = len(sorted) - 1
	}
	frac := rank - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// BandSummary counts how a value series distributes around a [low, high]
// self-consistency band. Totals of zero produce zero percentages.
type BandSummary struct {
	Low, High          float64
	BelowCount         int
	InBandCount        int
	AboveCount         int
	Total              int
	BelowPct, InBandPct, AbovePct float64
}

// SummarizeBand buckets values against the band thresholds.
func SummarizeBand(values []float64, low, high float64) BandSummary {
	if low > high {
		low, high = high, low
	}

	s := BandSummary{Low: low, High: high, Total: len(values)}
	for _, v := range values {
		switch {
		case v < low:
			s.BelowCount++
		case v <= high:
			s.InBandCount++
		default:
			s.AboveCount++
		}
	}
	if s.Total > 0 {
		s.BelowPct = float64(s.BelowCount) / float64(s.Total) * 100
		s.InBandPct = float64(s.InBandCount) / float64(s.Total) * 100
		s.AbovePct = float64(s.AboveCount) / float64(s.Total) * 100
	}
	return s
}

func hasRollupPrefix(key string) bool {
	for _, prefix := range rollupPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
