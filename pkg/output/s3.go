package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/notenlabs/gradebench/pkg/bench"
)

// Sentinel errors for S3 upload failures. Callers can use errors.Is to map
// these to exit codes without inspecting AWS SDK types.
var (
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStoreUnavailable   = errors.New("storage service unavailable")
)

// DefaultS3Region is used when neither config nor environment resolve a region.
const DefaultS3Region = "us-east-1"

// S3Options configures the S3 sink beyond what the destination URI carries.
type S3Options struct {
	// Endpoint overrides the AWS endpoint for S3-compatible stores.
	Endpoint string

	// Region overrides env/profile region resolution.
	Region string

	// AccessKeyID and SecretAccessKey bypass the default credential chain
	// when both are set.
	AccessKeyID     string
	SecretAccessKey string

	// ForcePathStyle enables path-style addressing, required by most
	// S3-compatible stores.
	ForcePathStyle bool
}

type s3Sink struct {
	bucket string
	key    string
	opts   S3Options
}

func newS3Sink(destination string) (*s3Sink, error) {
	bucket, key, err := parseS3URI(destination)
	if err != nil {
		return nil, err
	}
	return &s3Sink{bucket: bucket, key: key}, nil
}

// NewS3Sink creates an S3 sink for an s3://bucket/key destination with
// explicit options.
func NewS3Sink(destination string, opts S3Options) (Sink, error) {
	sink, err := newS3Sink(destination)
	if err != nil {
		return nil, err
	}
	sink.opts = opts
	return sink, nil
}

// parseS3URI splits s3://bucket/key into its parts.
func parseS3URI(uri string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(uri, "s3://")
	if trimmed == uri {
		return "", "", fmt.Errorf("not an s3 destination: %s", uri)
	}
	bucket, key, found := strings.Cut(trimmed, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 destination must be s3://bucket/key: %s", uri)
	}
	return bucket, key, nil
}

func (s *s3Sink) Write(ctx context.Context, results []bench.AttemptResult) error {
	var buf bytes.Buffer
	if err := WriteResults(&buf, results); err != nil {
		return err
	}

	client, err := s.newClient(ctx)
	if err != nil {
		return err
	}

	length := int64(buf.Len())
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: &length,
		ContentType:   aws.String("text/csv"),
	})
	if err != nil {
		return wrapS3Error(s.bucket, s.key, err)
	}
	return nil
}

func (s *s3Sink) Description() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

func (s *s3Sink) newClient(ctx context.Context) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error

	// Let the SDK resolve region from env/profile unless overridden.
	if s.opts.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s.opts.Region))
	}

	if s.opts.AccessKeyID != "" && s.opts.SecretAccessKey != "" {
		staticCreds := credentials.NewStaticCredentialsProvider(
			s.opts.AccessKeyID,
			s.opts.SecretAccessKey,
			"",
		)
		opts = append(opts, awsconfig.WithCredentialsProvider(staticCreds))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if awsCfg.Region == "" && s.opts.Endpoint == "" {
		awsCfg.Region = DefaultS3Region
	}

	s3Opts := []func(*s3.Options){
		func(o *s3.Options) {
			if s.opts.ForcePathStyle {
				o.UsePathStyle = true
			}
		},
	}
	if s.opts.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(s.opts.Endpoint)
		})
	}

	return s3.NewFromConfig(awsCfg, s3Opts...), nil
}

// wrapS3Error maps AWS SDK errors to sentinel errors so command-level code can
// select exit codes with errors.Is.
func wrapS3Error(bucket, key string, err error) error {
	sentinel := err

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			sentinel = ErrBucketNotFound
		case "AccessDenied", "Forbidden":
			sentinel = ErrAccessDenied
		case "InvalidAccessKeyId", "SignatureDoesNotMatch":
			sentinel = ErrInvalidCredentials
		case "SlowDown", "Throttling", "RequestLimitExceeded",
			"ServiceUnavailable", "InternalError":
			sentinel = ErrStoreUnavailable
		}
	}

	if sentinel != err {
		return fmt.Errorf("put s3://%s/%s: %w: %v", bucket, key, sentinel, err)
	}
	return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
}
