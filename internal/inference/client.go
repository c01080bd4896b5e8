package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brightpath/wellbeing-worker/internal/logger"
	"github.com/brightpath/wellbeing-worker/internal/utils"
)

// Client calls the model sidecar over HTTP. The sidecar owns the trained
// model; this process only ships feature rows and reads verdicts back.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	log        *logger.Logger
}

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

func New(opts Options, baseLog *logger.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}
	return &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		httpClient: &http.Client{Timeout: opts.Timeout},
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		log:        baseLog.With("component", "InferenceClient"),
	}
}

func NewFromEnv(baseLog *logger.Logger) *Client {
	return New(Options{
		BaseURL:    utils.GetEnv("WB_MODEL_BASE_URL", "http://localhost:9000", baseLog),
		APIKey:     utils.GetEnv("WB_MODEL_API_KEY", "", baseLog),
		Timeout:    time.Duration(utils.GetEnvAsInt("WB_MODEL_TIMEOUT_SECONDS", 60, baseLog)) * time.Second,
		MaxRetries: utils.GetEnvAsInt("WB_MODEL_MAX_RETRIES", 3, baseLog),
	}, baseLog)
}

// HTTPError carries a non-2xx sidecar response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("inference sidecar returned %d: %s", e.StatusCode, e.Body)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

type classifyRequest struct {
	Inputs [][]float64 `json:"inputs"`
	TopK   int         `json:"top_k"`
}

type classifyResponse struct {
	Results []Result `json:"results"`
}

func (c *Client) Classify(ctx context.Context, inputs [][]float64, topK int) ([]Result, error) {
	if len(inputs) == 0 {
		return []Result{}, nil
	}

	var resp classifyResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/classify", classifyRequest{
		Inputs: inputs,
		TopK:   topK,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) != len(inputs) {
		return nil, fmt.Errorf("inference sidecar returned %d results for %d inputs", len(resp.Results), len(inputs))
	}
	return resp.Results, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			c.log.Warn("retrying inference request", "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		res, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, readErr := io.ReadAll(res.Body)
		res.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read response: %w", readErr)
			continue
		}

		if res.StatusCode < 200 || res.StatusCode >= 300 {
			httpErr := &HTTPError{StatusCode: res.StatusCode, Body: string(respBody)}
			if retryable(res.StatusCode) {
				lastErr = httpErr
				continue
			}
			return httpErr
		}

		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("inference request failed after %d attempts: %w", c.maxRetries, lastErr)
}
