package output

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/notenlabs/gradebench/pkg/bench"
)

// Sink writes a completed result set to its destination.
//
// The benchmark writes results exactly once, after the fan-in join; sinks
// therefore get the full collection in one call and need no incremental
// API.
type Sink interface {
	// Write persists the results.
	Write(ctx context.Context, results []bench.AttemptResult) error

	// Description names the destination for log output.
	Description() string
}

// ResolveSink maps a manifest destination string to a sink.
//
// Supported forms:
//   - "stdout"
//   - "file:/path/to/results.csv" (or a bare path)
//   - "s3://bucket/key"
//
// s3opts only applies to s3 destinations and is ignored for the rest.
func ResolveSink(destination string, s3opts S3Options) (Sink, error) {
	switch {
	case destination == "" || destination == "stdout":
		return stdoutSink{}, nil
	case strings.HasPrefix(destination, "s3://"):
		return NewS3Sink(destination, s3opts)
	case strings.HasPrefix(destination, "file:"):
		return fileSink{path: strings.TrimPrefix(destination, "file:")}, nil
	default:
		return fileSink{path: destination}, nil
	}
}

type stdoutSink struct{}

func (stdoutSink) Write(ctx context.Context, results []bench.AttemptResult) error {
	return WriteResults(os.Stdout, results)
}

func (stdoutSink) Description() string { return "stdout" }

type fileSink struct {
	path string
}

func (s fileSink) Write(ctx context.Context, results []bench.AttemptResult) error {
	var buf bytes.Buffer
	if err := WriteResults(&buf, results); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write results file %s: %w", s.path, err)
	}
	return nil
}

func (s fileSink) Description() string { return s.path }
