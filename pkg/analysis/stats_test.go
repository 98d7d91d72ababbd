package analysis

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notenlabs/gradebench/pkg/bench"
)

func intPtr(n int) *int { return &n }

// success builds a successful attempt with the given awarded/actual points.
func success(model, style, subject string, awarded, actual, max float64, latency float64, inTok, outTok int) bench.AttemptResult {
	eval := `{"awarded_points": ` + strconv.FormatFloat(awarded, 'g', -1, 64) + `}`
	return bench.AttemptResult{
		JobID:          "j",
		Subject:        subject,
		Model:          model,
		PromptStyle:    style,
		MaxPoints:      max,
		ActualPoints:   actual,
		Evaluation:     &eval,
		LatencySeconds: latency,
		InputTokens:    intPtr(inTok),
		OutputTokens:   intPtr(outTok),
	}
}

func failure(model, style, subject string) bench.AttemptResult {
	msg := "provider down"
	return bench.AttemptResult{
		JobID:          "j",
		Subject:        subject,
		Model:          model,
		PromptStyle:    style,
		MaxPoints:      10,
		ActualPoints:   5,
		LatencySeconds: bench.FailedLatency,
		Error:          &msg,
	}
}

func TestByModelAggregation(t *testing.T) {
	// One successful grade with error 2, one attempt whose payload does
	// not parse. total=2, successful=1, mean over successes only.
	unparseable := "kein JSON"
	results := []bench.AttemptResult{
		success("m1", "strict", "Chemie", 8, 10, 10, 1.5, 100, 20),
		{
			JobID: "j2", Subject: "Chemie", Model: "m1", PromptStyle: "strict",
			MaxPoints: 10, ActualPoints: 5,
			Evaluation: &unparseable, LatencySeconds: 2.0,
			InputTokens: intPtr(200), OutputTokens: intPtr(40),
		},
	}

	stats := ByModel(results)
	require.Len(t, stats, 1)
	s := stats[0]

	assert.Equal(t, "m1", s.Key)
	assert.Equal(t, 2, s.TotalAttempts)
	assert.Equal(t, 1, s.SuccessfulGrades)
	assert.Equal(t, 50.0, s.SuccessRatePct)
	assert.Equal(t, 2.0, s.MeanError)
	assert.Equal(t, 0.0, s.StdDevError)
	assert.Equal(t, 150.0, s.AvgInputTokens)
	assert.Equal(t, 30.0, s.AvgOutputTokens)
	assert.Equal(t, 180.0, s.TotalAvgTokens)
	assert.Equal(t, 1.75, s.MedianLatency)
}

func TestAggregationExcludesFailureSentinels(t *testing.T) {
	results := []bench.AttemptResult{
		success("m1", "strict", "Chemie", 7, 7, 10, 1.0, 100, 10),
		failure("m1", "strict", "Chemie"),
	}

	stats := ByModel(results)
	require.Len(t, stats, 1)
	s := stats[0]

	assert.Equal(t, 2, s.TotalAttempts)
	assert.Equal(t, 1, s.SuccessfulGrades)
	// Failure rows carry no tokens and sentinel latency; neither may
	// skew the averages.
	assert.Equal(t, 100.0, s.AvgInputTokens)
	assert.Equal(t, 1.0, s.MedianLatency)
	assert.Equal(t, 0.0, s.MeanError)
}

func TestFailedAttemptsNeverGrade(t *testing.T) {
	// A row with the error field set cannot contribute a grade even if a
	// payload is present.
	msg := "timeout after retry"
	eval := `{"awarded_points": 9}`
	failed := bench.AttemptResult{
		JobID: "j", Subject: "Chemie", Model: "m1", PromptStyle: "strict",
		MaxPoints: 10, ActualPoints: 5,
		Evaluation: &eval, LatencySeconds: bench.FailedLatency,
		Error: &msg,
	}

	stats := ByModel([]bench.AttemptResult{failed})
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].TotalAttempts)
	assert.Equal(t, 0, stats[0].SuccessfulGrades)

	cells, _ := SubjectBias([]bench.AttemptResult{failed})
	assert.Empty(t, cells)
}

func TestByPromptStyleAggregation(t *testing.T) {
	results := []bench.AttemptResult{
		success("m1", "strict", "Chemie", 6, 10, 10, 1.0, 100, 10),
		success("m2", "strict", "Chemie", 8, 10, 10, 1.0, 100, 10),
		success("m1", "lenient", "Chemie", 10, 10, 10, 1.0, 100, 10),
	}

	stats := ByPromptStyle(results)
	require.Len(t, stats, 2)

	byKey := map[string]Stats{}
	for _, s := range stats {
		byKey[s.Key] = s
	}
	assert.Equal(t, 2, byKey["strict"].TotalAttempts)
	assert.Equal(t, 3.0, byKey["strict"].MeanError)
	assert.Equal(t, 0.0, byKey["lenient"].MeanError)
}

func TestStdDevIsSampleVariant(t *testing.T) {
	results := []bench.AttemptResult{
		success("m1", "s", "Chemie", 8, 10, 10, 1.0, 1, 1), // error 2
		success("m1", "s", "Chemie", 6, 10, 10, 1.0, 1, 1), // error 4
	}

	stats := ByModel(results)
	require.Len(t, stats, 1)
	assert.InDelta(t, 3.0, stats[0].MeanError, 1e-9)
	// Sample std dev of {2, 4} is sqrt(2).
	assert.InDelta(t, 1.4142135, stats[0].StdDevError, 1e-6)
}

func TestPickWinners(t *testing.T) {
	stats := []Stats{
		{Key: "accurate", SuccessfulGrades: 5, MeanError: 0.5, StdDevError: 2.0, MedianLatency: 9.0, TotalAvgTokens: 900},
		{Key: "balanced", SuccessfulGrades: 5, MeanError: 1.0, StdDevError: 1.0, MedianLatency: 2.0, TotalAvgTokens: 300},
		{Key: "fast", SuccessfulGrades: 5, MeanError: 3.0, StdDevError: 0.5, MedianLatency: 1.0, TotalAvgTokens: 200},
		{Key: "hopeless", SuccessfulGrades: 0, MeanError: 0, StdDevError: 0, MedianLatency: 0.1, TotalAvgTokens: 10},
	}

	winners, ok := PickWinners(stats)
	require.True(t, ok)

	assert.Equal(t, "accurate", winners.Accuracy)
	assert.Equal(t, "fast", winners.Consistency)
	assert.Equal(t, "fast", winners.Speed)
	assert.Equal(t, "fast", winners.Efficiency)
	// Rank sums: accurate 1+3+3+3=10, balanced 2+2+2+2=8, fast 3+1+1+1=6.
	assert.Equal(t, "fast", winners.OverallBest)
}

func TestPickWinnersNoEligibleModels(t *testing.T) {
	_, ok := PickWinners([]Stats{{Key: "m", SuccessfulGrades: 0}})
	assert.False(t, ok)
}

func TestSubjectBias(t *testing.T) {
	t.Run("needs two subjects", func(t *testing.T) {
		results := []bench.AttemptResult{success("m1", "s", "Chemie", 8, 10, 10, 1, 1, 1)}
		cells, meaningful := SubjectBias(results)
		assert.False(t, meaningful)
		assert.Len(t, cells, 1)
	})

	t.Run("groups by model and subject", func(t *testing.T) {
		results := []bench.AttemptResult{
			success("m1", "s", "Chemie", 8, 10, 10, 1, 1, 1),
			success("m1", "s", "Chemie", 6, 10, 10, 1, 1, 1),
			success("m1", "s", "Deutsch", 9, 10, 10, 1, 1, 1),
			failure("m1", "s", "Deutsch"),
		}

		cells, meaningful := SubjectBias(results)
		require.True(t, meaningful)
		require.Len(t, cells, 2)

		assert.Equal(t, "Chemie", cells[0].Subject)
		assert.Equal(t, 3.0, cells[0].MeanError)
		assert.Equal(t, 2, cells[0].Grades)
		assert.Equal(t, "Deutsch", cells[1].Subject)
		assert.Equal(t, 1.0, cells[1].MeanError)
	})
}

func TestGradingTendency(t *testing.T) {
	results := []bench.AttemptResult{
		// AI 8/10 vs human 6/10: +20 percentage points (easier).
		success("m1", "s", "Chemie", 8, 6, 10, 1, 1, 1),
		// AI 4/10 vs human 6/10: -20 percentage points (harsher).
		success("m1", "s", "Deutsch", 4, 6, 10, 1, 1, 1),
		// Non-positive max points: excluded.
		success("m1", "s", "Deutsch", 4, 6, 0, 1, 1, 1),
	}

	cells, meaningful := GradingTendency(results)
	require.True(t, meaningful)
	require.Len(t, cells, 2)
	assert.InDelta(t, 20.0, cells[0].MeanError, 1e-9)
	assert.InDelta(t, -20.0, cells[1].MeanError, 1e-9)
	assert.Equal(t, 1, cells[1].Grades)
}

func TestReportRender(t *testing.T) {
	results := []bench.AttemptResult{
		success("m1", "strict", "Chemie", 8, 10, 10, 1.5, 100, 20),
		failure("m2", "strict", "Chemie"),
	}

	rep := Analyze(results)
	var buf bytes.Buffer
	require.NoError(t, rep.Render(&buf))

	out := buf.String()
	assert.Contains(t, out, "Model Statistics")
	assert.Contains(t, out, "Prompt Style Statistics")
	assert.Contains(t, out, "Winners")
	assert.Contains(t, out, "m1")
}
