// Package output persists benchmark results as CSV and routes them to a
// destination sink.
//
// The row layout is a stable contract consumed by the analyze and serve
// commands as well as external tooling; columns are never reordered or
// renamed. Nullable fields (tokens, evaluation, error) serialize as empty
// cells.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/notenlabs/gradebench/pkg/bench"
)

// Columns is the exact CSV column set, in order.
var Columns = []string{
	"job_id",
	"subject",
	"model",
	"prompt_style",
	"max_points",
	"actual_points",
	"ai_evaluation_json",
	"latency_seconds",
	"input_tokens",
	"output_tokens",
	"error",
}

// WriteResults writes the header and one row per result.
func WriteResults(w io.Writer, results []bench.AttemptResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write results header: %w", err)
	}
	for _, r := range results {
		if err := cw.Write(marshalRow(r)); err != nil {
			return fmt.Errorf("write result row %s: %w", r.JobID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush results: %w", err)
	}
	return nil
}

// ReadResults parses a results CSV written by WriteResults.
func ReadResults(r io.Reader) ([]bench.AttemptResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read results header: %w", err)
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected results column %d: got %q, want %q", i, header[i], col)
		}
	}

	var results []bench.AttemptResult
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read results row: %w", err)
		}
		res, err := unmarshalRow(row)
		if err != nil {
			return nil, fmt.Errorf("results line %d: %w", line, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func marshalRow(r bench.AttemptResult) []string {
	return []string{
		r.JobID,
		r.Subject,
		r.Model,
		r.PromptStyle,
		formatFloat(r.MaxPoints),
		formatFloat(r.ActualPoints),
		stringOrEmpty(r.Evaluation),
		formatFloat(r.LatencySeconds),
		intOrEmpty(r.InputTokens),
		intOrEmpty(r.OutputTokens),
		stringOrEmpty(r.Error),
	}
}

func unmarshalRow(row []string) (bench.AttemptResult, error) {
	var res bench.AttemptResult
	res.JobID = row[0]
	res.Subject = row[1]
	res.Model = row[2]
	res.PromptStyle = row[3]

	var err error
	if res.MaxPoints, err = strconv.ParseFloat(row[4], 64); err != nil {
		return res, fmt.Errorf("bad max_points %q", row[4])
	}
	if res.ActualPoints, err = strconv.ParseFloat(row[5], 64); err != nil {
		return res, fmt.Errorf("bad actual_points %q", row[5])
	}
	if row[6] != "" {
		eval := row[6]
		res.Evaluation = &eval
	}
	if res.LatencySeconds, err = strconv.ParseFloat(row[7], 64); err != nil {
		return res, fmt.Errorf("bad latency_seconds %q", row[7])
	}
	if res.InputTokens, err = parseOptionalInt(row[8]); err != nil {
		return res, fmt.Errorf("bad input_tokens %q", row[8])
	}
	if res.OutputTokens, err = parseOptionalInt(row[9]); err != nil {
		return res, fmt.Errorf("bad output_tokens %q", row[9])
	}
	if row[10] != "" {
		errMsg := row[10]
		res.Error = &errMsg
	}
	return res, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrEmpty(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func parseOptionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
