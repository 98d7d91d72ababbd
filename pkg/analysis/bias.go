package analysis

import (
	"math"
	"sort"

	"github.com/notenlabs/gradebench/pkg/bench"
)

// BiasCell is the mean grading error for one (model, subject) pair.
type BiasCell struct {
	Model     string  `json:"model"`
	Subject   string  `json:"subject"`
	MeanError float64 `json:"mean_error"`

	// Grades is the number of successful grades behind the mean.
	Grades int `json:"grades"`
}

// SubjectBias groups mean absolute grading error by (model, subject).
//
// The check is purely descriptive and needs at least two distinct subjects
// with data to say anything; with fewer it is skipped, reported by the
// second return value.
func SubjectBias(results []bench.AttemptResult) ([]BiasCell, bool) {
	cells := groupBySubject(results, func(awarded, actual, max float64) (float64, bool) {
		return math.Abs(awarded - actual), true
	})
	return cells, distinctSubjects(cells) >= 2
}

// GradingTendency reports how much easier or harsher each model grades per
// subject, as mean percentage-point difference between the model's score
// share and the human grader's. Positive values mean the model grades
// easier than the human. Jobs with non-positive max points are excluded.
func GradingTendency(results []bench.AttemptResult) ([]BiasCell, bool) {
	cells := groupBySubject(results, func(awarded, actual, max float64) (float64, bool) {
		if max <= 0 {
			return 0, false
		}
		return (awarded/max - actual/max) * 100, true
	})
	return cells, distinctSubjects(cells) >= 2
}

func groupBySubject(results []bench.AttemptResult, measure func(awarded, actual, max float64) (float64, bool)) []BiasCell {
	type key struct{ model, subject string }
	type acc struct {
		sum float64
		n   int
	}

	groups := make(map[key]*acc)
	for _, r := range results {
		if !r.Succeeded() {
			continue
		}
		score := ExtractAwardedPoints(r.Evaluation)
		if !score.Parsed {
			continue
		}
		v, ok := measure(score.Points, r.ActualPoints, r.MaxPoints)
		if !ok {
			continue
		}
		k := key{model: r.Model, subject: r.Subject}
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		a.sum += v
		a.n++
	}

	cells := make([]BiasCell, 0, len(groups))
	for k, a := range groups {
		cells = append(cells, BiasCell{
			Model:     k.model,
			Subject:   k.subject,
			MeanError: a.sum / float64(a.n),
			Grades:    a.n,
		})
	}

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Model != cells[j].Model {
			return cells[i].Model < cells[j].Model
		}
		return cells[i].Subject < cells[j].Subject
	})
	return cells
}

func distinctSubjects(cells []BiasCell) int {
	seen := make(map[string]bool)
	for _, c := range cells {
		seen[c.Subject] = true
	}
	return len(seen)
}
