package detoxify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yungbote/toxicity-backend/internal/pkg/envutil"
	"github.com/yungbote/toxicity-backend/internal/pkg/httpx"
	"github.com/yungbote/toxicity-backend/internal/pkg/logger"
)

// Client talks to a Detoxify model server (GPU-backed, serving the
// "original" checkpoint) over HTTP.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	log      *logger.Logger

	maxRetries int
	retryBase  time.Duration
}

func NewClient(log *logger.Logger) (*Client, error) {
	endpoint := envutil.String("DETOXIFY_ENDPOINT", "")
	if endpoint == "" {
		return nil, fmt.Errorf("missing DETOXIFY_ENDPOINT")
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     envutil.String("DETOXIFY_API_KEY", ""),
		http:       &http.Client{Timeout: envutil.DurationSeconds("DETOXIFY_TIMEOUT_SECONDS", 120)},
		log:        log.With("service", "DetoxifyClient"),
		maxRetries: envutil.Int("DETOXIFY_MAX_RETRIES", 3),
		retryBase:  500 * time.Millisecond,
	}, nil
}

type predictRequest struct {
	Texts []string `json:"texts"`
}

type predictResponse struct {
	Toxicity []float64 `json:"toxicity"`
}

type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("detoxify server returned %d: %s", e.status, e.body)
}

func (e *httpStatusError) HTTPStatusCode() int { return e.status }

// Predict scores a batch of texts in one call. Scores come back in input
// order; the model never sees ids.
func (c *Client) Predict(ctx context.Context, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return []float64{}, nil
	}

	body, err := json.Marshal(predictRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(httpx.JitterSleep(c.retryBase * time.Duration(1<<(attempt-1)))):
			}
		}

		scores, err := c.predictOnce(ctx, body, len(texts))
		if err == nil {
			return scores, nil
		}
		lastErr = err
		if !httpx.IsRetryableError(err) {
			return nil, err
		}
		c.log.Warn("Detoxify predict retrying", "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("detoxify predict failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) predictOnce(ctx context.Context, body []byte, want int) ([]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &httpStatusError{status: resp.StatusCode, body: string(raw)}
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Toxicity) != want {
		return nil, fmt.Errorf("detoxify returned %d scores for %d texts", len(out.Toxicity), want)
	}
	return out.Toxicity, nil
}
