package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notenlabs/gradebench/pkg/bench"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestWriteReadResults(t *testing.T) {
	results := []bench.AttemptResult{
		{
			JobID:          "Mathe_Test1_Aufgabe1_P001",
			Subject:        "Mathe",
			Model:          "gpt-4o",
			PromptStyle:    "standard",
			MaxPoints:      10,
			ActualPoints:   7.5,
			Evaluation:     strPtr(`{"awarded_points": 8, "feedback": "gut"}`),
			LatencySeconds: 1.25,
			InputTokens:    intPtr(420),
			OutputTokens:   intPtr(96),
		},
		{
			JobID:          "Chemie_Klausur_Aufgabe2_P002",
			Subject:        "Chemie",
			Model:          "claude-sonnet",
			PromptStyle:    "strict",
			MaxPoints:      15,
			ActualPoints:   12,
			LatencySeconds: bench.FailedLatency,
			Error:          strPtr("request timed out"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, results))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(Columns, ","), lines[0])

	parsed, err := ReadResults(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, results[0], parsed[0])
	assert.Equal(t, results[1], parsed[1])

	// Failure row keeps the nullable cells empty.
	assert.Nil(t, parsed[1].InputTokens)
	assert.Nil(t, parsed[1].Evaluation)
	assert.Equal(t, float64(bench.FailedLatency), parsed[1].LatencySeconds)
}

func TestWriteResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, nil))
	assert.Equal(t, strings.Join(Columns, ",")+"\n", buf.String())
}

func TestReadResultsRejectsBadHeader(t *testing.T) {
	input := "job_id,subject,model,style,max_points,actual_points,ai_evaluation_json,latency_seconds,input_tokens,output_tokens,error\n"
	_, err := ReadResults(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected results column")
}

func TestReadResultsRejectsBadValues(t *testing.T) {
	header := strings.Join(Columns, ",") + "\n"

	tests := []struct {
		name string
		row  string
		want string
	}{
		{
			name: "non-numeric max points",
			row:  "j,Mathe,m,s,ten,5,,1.0,,,\n",
			want: "bad max_points",
		},
		{
			name: "non-numeric tokens",
			row:  "j,Mathe,m,s,10,5,,1.0,abc,,\n",
			want: "bad input_tokens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadResults(strings.NewReader(header + tt.row))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}
