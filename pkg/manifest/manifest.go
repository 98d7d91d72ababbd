// Package manifest provides loading and validation of gradebench job
// manifests.
//
// A job manifest is a YAML or JSON file that configures all aspects of a
// benchmark run: the models under test, endpoint connection, concurrency and
// retry behavior, corpus and prompt locations, and the results destination.
//
// Manifests are validated against a JSON Schema to ensure correctness before
// execution. The schema enforces strict typing and disallows unknown
// properties.
//
// Example manifest (YAML):
//
//	version: "1.0"
//	models:
//	  - gpt-4o
//	  - claude-sonnet
//	endpoint:
//	  base_url: https://api.example.com/v1
//	  credential_file: ~/.config/gradebench/token
//	corpus:
//	  root: ./corpus
//	prompts:
//	  root: ./prompts
//	concurrency:
//	  default: 10
//	  models:
//	    claude-sonnet: 4
//	output:
//	  destination: file:results.csv
package manifest

// Manifest represents a validated job manifest.
//
// Required fields are Version, Models, Endpoint, Corpus, and Prompts. The
// remaining sections are optional with defaults applied during loading.
type Manifest struct {
	// Schema is an optional JSON Schema reference for editor support.
	Schema string `json:"$schema,omitempty" yaml:"$schema,omitempty"`

	// Version is the manifest schema version. Must be "1.0".
	Version string `json:"version" yaml:"version"`

	// Models is the list of model names under test. At least one is
	// required.
	Models []string `json:"models" yaml:"models"`

	// Endpoint configures the chat-completion endpoint.
	Endpoint EndpointConfig `json:"endpoint" yaml:"endpoint"`

	// Corpus configures corpus discovery.
	Corpus CorpusConfig `json:"corpus" yaml:"corpus"`

	// Prompts configures prompt template loading.
	Prompts PromptsConfig `json:"prompts" yaml:"prompts"`

	// Concurrency configures per-model in-flight caps (optional).
	Concurrency ConcurrencyConfig `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`

	// Retry configures per-item retry behavior (optional).
	Retry RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`

	// RateLimit is the maximum requests per second per model
	// (0 = unlimited). Optional.
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`

	// Output configures the results destination (optional).
	Output OutputConfig `json:"output,omitempty" yaml:"output,omitempty"`
}

// EndpointConfig configures the chat-completion endpoint connection.
type EndpointConfig struct {
	// BaseURL is the OpenAI-compatible API root.
	// Example: "https://api.example.com/v1"
	BaseURL string `json:"base_url" yaml:"base_url"`

	// CredentialFile is the path to a file holding the bearer token.
	// The file content is trimmed of surrounding whitespace.
	CredentialFile string `json:"credential_file" yaml:"credential_file"`

	// Temperature is the sampling temperature sent with every request.
	// Default: 0.1, pinned low for reproducible grading.
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`

	// TimeoutSeconds bounds a single request attempt (0 = library
	// default). Optional.
	TimeoutSeconds float64 `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// CorpusConfig configures corpus discovery.
type CorpusConfig struct {
	// Root is the corpus root directory containing subject directories.
	Root string `json:"root" yaml:"root"`

	// TaskPattern matches task files inside a test's task directory.
	// Default: "Aufgabe*.md".
	TaskPattern string `json:"task_pattern,omitempty" yaml:"task_pattern,omitempty"`

	// MaterialsPattern matches material files inside a test directory.
	// Default: "M*.md".
	MaterialsPattern string `json:"materials_pattern,omitempty" yaml:"materials_pattern,omitempty"`
}

// PromptsConfig configures prompt template loading.
type PromptsConfig struct {
	// Root is the prompts root directory; each style is a subdirectory
	// holding system.md and user.md.
	Root string `json:"root" yaml:"root"`
}

// ConcurrencyConfig configures per-model in-flight request caps.
type ConcurrencyConfig struct {
	// Default is the cap for models without an explicit entry.
	// Default: 10.
	Default int `json:"default,omitempty" yaml:"default,omitempty"`

	// Models maps a model name to its in-flight cap.
	Models map[string]int `json:"models,omitempty" yaml:"models,omitempty"`
}

// RetryConfig configures per-item retry behavior.
//
// Delays are expressed in seconds to match the manifest's numeric fields.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per item (first try
	// included). Default: 3.
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`

	// InitialDelay is the backoff before the first retry, in seconds.
	// The delay doubles after each failed attempt. Default: 2.
	InitialDelay float64 `json:"initial_delay,omitempty" yaml:"initial_delay,omitempty"`

	// Jitter is the upper bound of the uniform random delay added to
	// each backoff, in seconds. Default: 1.
	Jitter float64 `json:"jitter,omitempty" yaml:"jitter,omitempty"`
}

// OutputConfig configures the results destination.
type OutputConfig struct {
	// Destination is the results target.
	// Values: "stdout", "file:/path/to/results.csv", or "s3://bucket/key".
	// Default: "stdout".
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`

	// S3 carries store options for s3:// destinations (optional).
	S3 S3OutputConfig `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3OutputConfig configures access to the S3 bucket behind an s3://
// destination. All fields are optional; unset fields fall back to the
// AWS SDK's default resolution chain.
type S3OutputConfig struct {
	// Endpoint overrides the AWS endpoint for S3-compatible stores.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// Region overrides env/profile region resolution.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// AccessKeyID and SecretAccessKey bypass the default credential
	// chain when both are set.
	AccessKeyID     string `json:"access_key_id,omitempty" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty" yaml:"secret_access_key,omitempty"`

	// ForcePathStyle enables path-style addressing, required by most
	// S3-compatible stores.
	ForcePathStyle bool `json:"force_path_style,omitempty" yaml:"force_path_style,omitempty"`
}

// Default values for optional configuration fields.
const (
	// DefaultVersion is the current manifest schema version.
	DefaultVersion = "1.0"

	// DefaultConcurrency is the default per-model in-flight cap.
	DefaultConcurrency = 10

	// DefaultMaxAttempts is the default total attempt count per item.
	DefaultMaxAttempts = 3

	// DefaultInitialDelay is the default first-retry backoff in seconds.
	DefaultInitialDelay = 2.0

	// DefaultJitter is the default jitter bound in seconds.
	DefaultJitter = 1.0

	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 0.1

	// DefaultDestination is the default results destination.
	DefaultDestination = "stdout"

	// DefaultTaskPattern matches task files.
	DefaultTaskPattern = "Aufgabe*.md"

	// DefaultMaterialsPattern matches material files.
	DefaultMaterialsPattern = "M*.md"
)

// ApplyDefaults fills in default values for optional fields.
//
// This should be called after loading and validating the manifest to ensure
// all optional fields have sensible values.
func (m *Manifest) ApplyDefaults() {
	if m.Concurrency.Default == 0 {
		m.Concurrency.Default = DefaultConcurrency
	}

	if m.Retry.MaxAttempts == 0 {
		m.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if m.Retry.InitialDelay == 0 {
		m.Retry.InitialDelay = DefaultInitialDelay
	}
	if m.Retry.Jitter == 0 {
		m.Retry.Jitter = DefaultJitter
	}
	// RateLimit: 0 is a valid value (unlimited), so no default needed

	if m.Endpoint.Temperature == nil {
		temperature := DefaultTemperature
		m.Endpoint.Temperature = &temperature
	}

	if m.Corpus.TaskPattern == "" {
		m.Corpus.TaskPattern = DefaultTaskPattern
	}
	if m.Corpus.MaterialsPattern == "" {
		m.Corpus.MaterialsPattern = DefaultMaterialsPattern
	}

	if m.Output.Destination == "" {
		m.Output.Destination = DefaultDestination
	}
}

// TemperatureValue returns the configured temperature, or the default if
// not set.
func (e *EndpointConfig) TemperatureValue() float64 {
	if e.Temperature == nil {
		return DefaultTemperature
	}
	return *e.Temperature
}
