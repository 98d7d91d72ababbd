package analysis

import "sort"

// Winners names the best model per ranking axis plus the combined pick.
type Winners struct {
	// Accuracy is the model with the lowest mean grading error.
	Accuracy string `json:"accuracy"`

	// Consistency is the model with the lowest error standard deviation.
	Consistency string `json:"consistency"`

	// Speed is the model with the lowest median latency.
	Speed string `json:"speed"`

	// Efficiency is the model with the lowest average total tokens.
	Efficiency string `json:"efficiency"`

	// OverallBest minimizes the sum of the four axis ranks.
	OverallBest string `json:"overall_best"`
}

// PickWinners ranks models along the four axes and returns the winners.
//
// Only models with at least one successful grade are eligible. The second
// return value is false when no model qualifies.
func PickWinners(stats []Stats) (Winners, bool) {
	var eligible []Stats
	for _, s := range stats {
		if s.SuccessfulGrades > 0 {
			eligible = append(eligible, s)
		}
	}
	if len(eligible) == 0 {
		return Winners{}, false
	}

	accuracy := rankAscending(eligible, func(s Stats) float64 { return s.MeanError })
	consistency := rankAscending(eligible, func(s Stats) float64 { return s.StdDevError })
	speed := rankAscending(eligible, func(s Stats) float64 { return s.MedianLatency })
	efficiency := rankAscending(eligible, func(s Stats) float64 { return s.TotalAvgTokens })

	overall := make(map[string]int, len(eligible))
	for _, s := range eligible {
		overall[s.Key] = accuracy[s.Key] + consistency[s.Key] + speed[s.Key] + efficiency[s.Key]
	}

	best := eligible[0].Key
	for _, s := range eligible[1:] {
		if overall[s.Key] < overall[best] || (overall[s.Key] == overall[best] && s.Key < best) {
			best = s.Key
		}
	}

	return Winners{
		Accuracy:    minBy(eligible, accuracy),
		Consistency: minBy(eligible, consistency),
		Speed:       minBy(eligible, speed),
		Efficiency:  minBy(eligible, efficiency),
		OverallBest: best,
	}, true
}

// rankAscending assigns 1-based rank positions by the given measure, lower
// values ranking better. Ties share the order of their keys for
// determinism.
func rankAscending(stats []Stats, measure func(Stats) float64) map[string]int {
	sorted := append([]Stats(nil), stats...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := measure(sorted[i]), measure(sorted[j])
		if a != b {
			return a < b
		}
		return sorted[i].Key < sorted[j].Key
	})

	ranks := make(map[string]int, len(sorted))
	for i, s := range sorted {
		ranks[s.Key] = i + 1
	}
	return ranks
}

func minBy(stats []Stats, ranks map[string]int) string {
	best := stats[0].Key
	for _, s := range stats[1:] {
		if ranks[s.Key] < ranks[best] {
			best = s.Key
		}
	}
	return best
}
