package analysis

import (
	"math"
	"sort"

	"github.com/notenlabs/gradebench/pkg/bench"
)

// Stats is the aggregate rollup for one grouping key (a model or a prompt
// style).
type Stats struct {
	// Key is the model name or prompt style this row aggregates.
	Key string `json:"key"`

	// TotalAttempts counts every dispatched work item for the key,
	// successes and failures alike.
	TotalAttempts int `json:"total_attempts"`

	// SuccessfulGrades counts attempts whose response carried a numeric
	// awarded_points value. Provider failures and malformed payloads
	// both count against this.
	SuccessfulGrades int `json:"successful_grades"`

	// SuccessRatePct is SuccessfulGrades / TotalAttempts * 100.
	SuccessRatePct float64 `json:"success_rate_pct"`

	// MeanError and StdDevError summarize |awarded - actual| over the
	// successful grades. StdDevError is the sample standard deviation;
	// zero when fewer than two successful grades exist.
	MeanError   float64 `json:"mean_error"`
	StdDevError float64 `json:"std_dev_error"`

	// AvgInputTokens and AvgOutputTokens average the provider's token
	// accounting over attempts that reported usage.
	AvgInputTokens  float64 `json:"avg_input_tokens"`
	AvgOutputTokens float64 `json:"avg_output_tokens"`

	// TotalAvgTokens is the sum of the two averages, the efficiency
	// ranking axis.
	TotalAvgTokens float64 `json:"total_avg_tokens"`

	// MedianLatency is the median over attempts with a valid
	// (non-sentinel) latency, in seconds.
	MedianLatency float64 `json:"median_latency_seconds"`
}

// ByModel groups results by model name.
func ByModel(results []bench.AttemptResult) []Stats {
	return aggregate(results, func(r bench.AttemptResult) string { return r.Model })
}

// ByPromptStyle groups results by prompt style.
func ByPromptStyle(results []bench.AttemptResult) []Stats {
	return aggregate(results, func(r bench.AttemptResult) string { return r.PromptStyle })
}

func aggregate(results []bench.AttemptResult, keyFn func(bench.AttemptResult) string) []Stats {
	type accumulator struct {
		total        int
		errors       []float64
		inputTokens  []float64
		outputTokens []float64
		latencies    []float64
	}

	groups := make(map[string]*accumulator)
	for _, r := range results {
		key := keyFn(r)
		acc := groups[key]
		if acc == nil {
			acc = &accumulator{}
			groups[key] = acc
		}
		acc.total++

		if r.Succeeded() {
			if score := ExtractAwardedPoints(r.Evaluation); score.Parsed {
				acc.errors = append(acc.errors, math.Abs(score.Points-r.ActualPoints))
			}
		}
		if r.InputTokens != nil {
			acc.inputTokens = append(acc.inputTokens, float64(*r.InputTokens))
		}
		if r.OutputTokens != nil {
			acc.outputTokens = append(acc.outputTokens, float64(*r.OutputTokens))
		}
		if r.LatencySeconds > 0 {
			acc.latencies = append(acc.latencies, r.LatencySeconds)
		}
	}

	stats := make([]Stats, 0, len(groups))
	for key, acc := range groups {
		s := Stats{
			Key:              key,
			TotalAttempts:    acc.total,
			SuccessfulGrades: len(acc.errors),
			MeanError:        mean(acc.errors),
			StdDevError:      sampleStdDev(acc.errors),
			AvgInputTokens:   mean(acc.inputTokens),
			AvgOutputTokens:  mean(acc.outputTokens),
			MedianLatency:    median(acc.latencies),
		}
		s.SuccessRatePct = float64(s.SuccessfulGrades) / float64(s.TotalAttempts) * 100
		s.TotalAvgTokens = s.AvgInputTokens + s.AvgOutputTokens
		stats = append(stats, s)
	}

	// Best success rate first, ties broken by accuracy.
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].SuccessRatePct != stats[j].SuccessRatePct {
			return stats[i].SuccessRatePct > stats[j].SuccessRatePct
		}
		if stats[i].MeanError != stats[j].MeanError {
			return stats[i].MeanError < stats[j].MeanError
		}
		return stats[i].Key < stats[j].Key
	})
	return stats
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev is the n-1 variant; consistency over fewer than two samples
// is reported as zero.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
