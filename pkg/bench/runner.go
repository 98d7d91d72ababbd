package bench

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/notenlabs/gradebench/pkg/corpus"
	"github.com/notenlabs/gradebench/pkg/prompt"
)

// Config configures a benchmark run.
type Config struct {
	// Models is the list of model names under test.
	Models []string

	// Concurrency caps simultaneous in-flight requests per model.
	// Models absent from the map use DefaultConcurrency.
	Concurrency map[string]int

	// DefaultConcurrency is the cap for models without an explicit
	// entry. Default: 10.
	DefaultConcurrency int

	// Retry bounds per-item retry behavior.
	Retry RetryPolicy

	// RateLimit is the maximum requests per second per model.
	// Zero means unlimited. The semaphore bounds concurrency; this
	// additionally bounds request frequency for strict providers.
	RateLimit float64

	// Temperature is sent with every request. The benchmark pins a low
	// value for reproducibility. Default: 0.1.
	Temperature float32
}

// DefaultConcurrency is the fallback per-model cap.
const DefaultConcurrency = 10

// DefaultTemperature is the sampling temperature pinned for benchmark runs.
const DefaultTemperature = 0.1

// workItem is the unit of dispatch: one job under one prompt style against
// one model. It carries no identity beyond its three composing keys.
type workItem struct {
	job      corpus.GradingJob
	template prompt.Template
	model    string
}

// Runner dispatches the job × prompt × model cross-product.
//
// Runner is safe for single use only. Create a new Runner for each batch.
type Runner struct {
	client Client
	config Config
	logger *zap.Logger

	// gates holds one capacity-limiting semaphore per model.
	gates map[string]chan struct{}

	// limiters holds one rate limiter per model (nil entries if
	// unlimited).
	limiters map[string]*rate.Limiter

	succeeded atomic.Int64
	failed    atomic.Int64
	retries   atomic.Int64
}

// New creates a runner. Zero-valued config fields fall back to defaults.
func New(client Client, cfg Config, logger *zap.Logger) *Runner {
	if cfg.DefaultConcurrency <= 0 {
		cfg.DefaultConcurrency = DefaultConcurrency
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	gates := make(map[string]chan struct{}, len(cfg.Models))
	limiters := make(map[string]*rate.Limiter, len(cfg.Models))
	for _, model := range cfg.Models {
		limit := cfg.Concurrency[model]
		if limit <= 0 {
			limit = cfg.DefaultConcurrency
		}
		gates[model] = make(chan struct{}, limit)
		if cfg.RateLimit > 0 {
			limiters[model] = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
		}
		logger.Info("Configured model concurrency",
			zap.String("model", model),
			zap.Int("limit", limit))
	}

	return &Runner{
		client:   client,
		config:   cfg,
		logger:   logger,
		gates:    gates,
		limiters: limiters,
	}
}

// Run dispatches all work items and blocks until every one has resolved.
//
// All items are created up front and joined with a single fan-in; results
// are only available once the whole batch completes. Item failures are
// recorded as data and never abort the batch. Run itself only stops early
// when the context is cancelled, in which case unfinished items are
// recorded as terminal failures.
func (r *Runner) Run(ctx context.Context, jobs []corpus.GradingJob, templates []prompt.Template) ([]AttemptResult, *Summary) {
	start := time.Now()

	items := make([]workItem, 0, len(jobs)*len(templates)*len(r.config.Models))
	for _, job := range jobs {
		for _, tpl := range templates {
			for _, model := range r.config.Models {
				items = append(items, workItem{job: job, template: tpl, model: model})
			}
		}
	}

	r.logger.Info("Dispatching grading evaluations",
		zap.Int("jobs", len(jobs)),
		zap.Int("prompt_styles", len(templates)),
		zap.Int("models", len(r.config.Models)),
		zap.Int("total_items", len(items)))

	// Each goroutine writes only its own slot; the WaitGroup join is the
	// sole synchronization point for reading results.
	results := make([]AttemptResult, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item workItem) {
			defer wg.Done()
			results[i] = r.grade(ctx, item)
		}(i, item)
	}
	wg.Wait()

	summary := &Summary{
		TotalItems: len(items),
		Succeeded:  r.succeeded.Load(),
		Failed:     r.failed.Load(),
		Retries:    r.retries.Load(),
		Duration:   time.Since(start),
	}
	return results, summary
}

// grade executes one work item's full retry sequence.
func (r *Runner) grade(ctx context.Context, item workItem) AttemptResult {
	gate := r.gates[item.model]

	// Acquire the model's gate, or record a failure if the batch is
	// cancelled while waiting.
	select {
	case <-ctx.Done():
		return r.failure(item, ctx.Err().Error())
	case gate <- struct{}{}:
	}
	defer func() { <-gate }()

	req := ChatRequest{
		Model:       item.model,
		System:      item.template.System,
		User:        item.template.RenderUser(item.job),
		Temperature: r.config.Temperature,
	}

	r.logger.Debug("Starting job",
		zap.String("job_id", item.job.JobID),
		zap.String("model", item.model),
		zap.String("prompt_style", item.template.StyleName))

	var lastErr error
	for attempt := 0; attempt < r.config.Retry.MaxAttempts; attempt++ {
		if limiter := r.limiters[item.model]; limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return r.failure(item, err.Error())
			}
		}

		start := time.Now()
		resp, err := r.client.ChatCompletion(ctx, req)
		latency := time.Since(start)
		if err == nil {
			r.succeeded.Add(1)
			r.logger.Debug("Job succeeded",
				zap.String("job_id", item.job.JobID),
				zap.String("model", item.model),
				zap.Duration("latency", latency))
			return r.success(item, resp, latency)
		}

		lastErr = err
		if attempt < r.config.Retry.MaxAttempts-1 {
			delay := r.config.Retry.Delay(attempt)
			r.retries.Add(1)
			r.logger.Warn("Attempt failed, retrying",
				zap.String("job_id", item.job.JobID),
				zap.String("model", item.model),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", r.config.Retry.MaxAttempts),
				zap.Duration("delay", delay),
				zap.Error(err))
			if err := sleep(ctx, delay); err != nil {
				return r.failure(item, lastErr.Error())
			}
		}
	}

	r.logger.Error("Job failed, no more retries",
		zap.String("job_id", item.job.JobID),
		zap.String("model", item.model),
		zap.Error(lastErr))
	return r.failure(item, lastErr.Error())
}

func (r *Runner) success(item workItem, resp *ChatResponse, latency time.Duration) AttemptResult {
	evaluation := resp.Content
	inputTokens := resp.InputTokens
	outputTokens := resp.OutputTokens
	return AttemptResult{
		JobID:          item.job.JobID,
		Subject:        item.job.Subject,
		Model:          item.model,
		PromptStyle:    item.template.StyleName,
		MaxPoints:      item.job.MaxPoints,
		ActualPoints:   item.job.ActualPoints,
		Evaluation:     &evaluation,
		LatencySeconds: latency.Seconds(),
		InputTokens:    &inputTokens,
		OutputTokens:   &outputTokens,
	}
}

func (r *Runner) failure(item workItem, errMsg string) AttemptResult {
	r.failed.Add(1)
	return AttemptResult{
		JobID:          item.job.JobID,
		Subject:        item.job.Subject,
		Model:          item.model,
		PromptStyle:    item.template.StyleName,
		MaxPoints:      item.job.MaxPoints,
		ActualPoints:   item.job.ActualPoints,
		LatencySeconds: FailedLatency,
		Error:          &errMsg,
	}
}
