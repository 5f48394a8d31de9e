package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"liftplan/internal/logging"
	"liftplan/internal/services"
)

const (
	// DefaultBaseURL is the chat completions endpoint used when none is configured.
	DefaultBaseURL = "https://api.openai.com/v1/chat/completions"
	// DefaultModel is the model used when none is configured.
	DefaultModel = "gpt-4o-mini"
	// DefaultMaxTokens is the completion token cap sent with every request.
	DefaultMaxTokens = 5000

	defaultHTTPTimeout    = 60 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetries        = 2
	jsonResponseType      = "json_object"
)

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	OrgID          string
	ProjectID      string
	BaseURL        string
	Model          string
	MaxTokens      int
	TimeoutSeconds int
}

// Source is one successfully scraped page handed to the model.
type Source struct {
	URL     string
	Content string
}

// PlanResult is the generated plan and its short summary.
type PlanResult struct {
	Plan    string `json:"plan"`
	Summary string `json:"summary"`
}

// Client wraps the chat completion API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	retries        int
	retryBaseDelay time.Duration
	sleeper        func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetries overrides the number of retries after the first attempt.
func WithRetries(retries int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retries = retries
		}
	}
}

// WithRetryBaseDelay overrides the first backoff delay; later delays double.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = delay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs an LLM client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			OrgID:          strings.TrimSpace(cfg.OrgID),
			ProjectID:      strings.TrimSpace(cfg.ProjectID),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			MaxTokens:      cfg.MaxTokens,
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logging.NewNop(),
		retries:        defaultRetries,
		retryBaseDelay: defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = DefaultBaseURL
	}
	if client.cfg.Model == "" {
		client.cfg.Model = DefaultModel
	}
	if client.cfg.MaxTokens <= 0 {
		client.cfg.MaxTokens = DefaultMaxTokens
	}
	client.logger = logging.NewComponentLogger(client.logger, "llm")
	return client
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// GenerateWorkoutPlan asks the model for a plan built from the supplied sources
// and preferences.
func (c *Client) GenerateWorkoutPlan(ctx context.Context, sources []Source, prefs map[string]string) (PlanResult, error) {
	if c.cfg.APIKey == "" {
		return PlanResult{}, services.Wrap(services.ErrConfiguration, "llm", "generate plan", "api key not configured", nil)
	}
	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: BuildUserPrompt(sources, prefs, c.cfg.MaxTokens-1000)},
		},
		MaxTokens: c.cfg.MaxTokens,
	}

	started := time.Now()
	content, err := c.completionContentWithRetry(ctx, payload, "generate plan")
	if err != nil {
		return PlanResult{}, err
	}
	logging.WithContext(ctx, c.logger).Info("workout plan generated",
		logging.Int("sources", len(sources)),
		logging.Int("reply_chars", len(content)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return ParsePlanReply(content), nil
}

// HealthCheck issues a fast ping to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrConfiguration, "llm", "health", "api key not configured", nil)
	}
	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You must respond with JSON only."},
			{Role: "user", Content: "Respond with {\"ok\":true}"},
		},
		MaxTokens:      16,
		ResponseFormat: map[string]string{"type": jsonResponseType},
	}
	content, err := c.completionContentWithRetry(ctx, payload, "health")
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := decodeJSONReply(content, &parsed); err != nil {
		return services.Wrap(services.ErrUpstream, "llm", "health", "parse payload", err)
	}
	if !parsed.OK {
		return services.Wrap(services.ErrUpstream, "llm", "health", "unexpected response", nil)
	}
	return nil
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, summarizePayloadSnippet(e.Body))
}

func (c *Client) completionContentWithRetry(ctx context.Context, payload chatCompletionRequest, op string) (string, error) {
	logger := logging.WithContext(ctx, c.logger)
	for attempt := 0; ; attempt++ {
		content, err := c.sendChatRequestOnce(ctx, payload)
		if err == nil {
			return content, nil
		}
		if attempt >= c.retries || !retryable(ctx, err) {
			if ctx.Err() != nil {
				return "", services.Wrap(services.ErrTimeout, "llm", op, "request aborted", err)
			}
			return "", services.Wrap(services.ErrUpstream, "llm", op, fmt.Sprintf("attempt %d", attempt+1), err)
		}
		delay := c.backoffDelay(attempt)
		logger.Warn("llm request failed; retrying",
			logging.Int("attempt", attempt+1),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return "", services.Wrap(services.ErrTimeout, "llm", op, "retry aborted", err)
		}
	}
}

func (c *Client) sendChatRequestOnce(ctx context.Context, payload chatCompletionRequest) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.OrgID != "" {
		req.Header.Set("OpenAI-Organization", c.cfg.OrgID)
	}
	if c.cfg.ProjectID != "" {
		req.Header.Set("OpenAI-Project", c.cfg.ProjectID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("empty choices")
	}
	choice := completion.Choices[0]
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty content (finish_reason=%q, refusal=%q)", choice.FinishReason, choice.Message.Refusal)
	}
	return content, nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= http.StatusInternalServerError
}

// backoffDelay returns base * 2^retry, where retry is zero for the first retry.
func (c *Client) backoffDelay(retry int) time.Duration {
	if c.retryBaseDelay <= 0 {
		return 0
	}
	return c.retryBaseDelay << retry
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func summarizePayloadSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
