package bench

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyResponse indicates the endpoint returned no choices.
var ErrEmptyResponse = errors.New("no choices returned from endpoint")

// ChatRequest is one grading request against the completion endpoint.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	Temperature float32
}

// ChatResponse carries the raw model output and the provider's token
// accounting for a completed call.
type ChatResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// Client issues chat-completion calls. Implementations must be safe for
// concurrent use; the runner calls from many goroutines at once.
type Client interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// OpenAIClient implements Client against an OpenAI-compatible endpoint.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a client for the given endpoint.
//
// baseURL points at an OpenAI-compatible API root (e.g. ".../v1"). A zero
// timeout leaves the library default in place.
func NewOpenAIClient(baseURL, apiKey string, timeout time.Duration) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}, nil
}

// ChatCompletion issues one grading call.
//
// The request asks for a JSON-object-typed response so models answer with a
// machine-parseable evaluation. Tolerance for garbage in the payload lives
// in the analysis layer, not here.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return &ChatResponse{
		Content:      resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}
