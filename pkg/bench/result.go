// Package bench executes the grading benchmark: the full cross-product of
// grading jobs, prompt styles, and models is dispatched concurrently against
// a chat-completion endpoint, bounded per model, with bounded retries.
//
// Dispatch failures are data, not errors: every work item yields exactly one
// AttemptResult, successful or not, so aggregation can treat success rate as
// a first-class metric.
package bench

import "time"

// FailedLatency is the latency sentinel recorded on terminal failure.
const FailedLatency = -1

// AttemptResult is the outcome of one work item's full retry sequence.
//
// Exactly one of Evaluation and Error is non-nil: a result is either a
// success or a terminal failure, never both, never neither.
type AttemptResult struct {
	// JobID, Subject, Model, and PromptStyle identify the work item and
	// join results back to jobs and templates.
	JobID       string `json:"job_id"`
	Subject     string `json:"subject"`
	Model       string `json:"model"`
	PromptStyle string `json:"prompt_style"`

	// MaxPoints and ActualPoints are copied from the job so aggregation
	// needs no second lookup.
	MaxPoints    float64 `json:"max_points"`
	ActualPoints float64 `json:"actual_points"`

	// Evaluation is the raw model response, expected to contain a JSON
	// object with an awarded_points field. Nil on terminal failure.
	Evaluation *string `json:"ai_evaluation_json"`

	// LatencySeconds is the wall-clock duration of the final network
	// call, or FailedLatency on terminal failure.
	LatencySeconds float64 `json:"latency_seconds"`

	// InputTokens and OutputTokens come from the provider's usage
	// accounting. Nil on terminal failure.
	InputTokens  *int `json:"input_tokens"`
	OutputTokens *int `json:"output_tokens"`

	// Error describes the terminal failure. Nil on success.
	Error *string `json:"error"`
}

// Succeeded reports whether the network call completed. A succeeded attempt
// can still fail grading later if its payload carries no parseable score.
func (r AttemptResult) Succeeded() bool {
	return r.Error == nil
}

// Summary aggregates counts from a completed benchmark run.
type Summary struct {
	// TotalItems is the size of the dispatched cross-product.
	TotalItems int

	// Succeeded counts work items whose network call completed.
	Succeeded int64

	// Failed counts work items that exhausted all retries.
	Failed int64

	// Retries counts individual failed attempts that were retried.
	Retries int64

	// Duration is the wall-clock time of the whole batch.
	Duration time.Duration
}
