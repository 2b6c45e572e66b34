package recs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ModelClient talks to the skill-matching model service over HTTP. The
// service is an opaque scorer: a fixed-width feature vector in, a match
// score in [0, 1] out. It may be down or not yet trained; callers must
// treat a nil client or a failed call as "no prediction available".
type ModelClient struct {
	baseURL       string
	serviceSecret string
	retry         RetryConfig
	http          *http.Client
}

// NewModelClient creates a model service client.
func NewModelClient(baseURL, serviceSecret string) *ModelClient {
	return &ModelClient{
		baseURL:       baseURL,
		serviceSecret: serviceSecret,
		retry:         DefaultRetryConfig,
		http:          &http.Client{Timeout: 15 * time.Second},
	}
}

// Score sends one feature vector and returns the model's match score.
func (c *ModelClient) Score(ctx context.Context, vector []float64) (float64, error) {
	scores, err := c.ScoreBatch(ctx, [][]float64{vector})
	if err != nil {
		return 0, err
	}
	if len(scores) != 1 {
		return 0, fmt.Errorf("model score: expected 1 score, got %d", len(scores))
	}
	return scores[0], nil
}

// ScoreBatch scores many vectors in one round trip.
func (c *ModelClient) ScoreBatch(ctx context.Context, vectors [][]float64) ([]float64, error) {
	metrics.ModelCalls.Add(1)

	body := map[string]any{"vectors": vectors}

	resp, err := retryDo(ctx, c.retry, func() (*http.Response, error) {
		resp, err := c.post(ctx, "/v1/score", body)
		if err != nil {
			return nil, err
		}
		if isRetryableStatus(resp.StatusCode) {
			resp.Body.Close()
			return nil, &httpStatusError{StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		metrics.ModelErrors.Add(1)
		return nil, fmt.Errorf("model score: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ModelErrors.Add(1)
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("model score: status %d: %s", resp.StatusCode, string(b))
	}

	var raw struct {
		Scores []float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		metrics.ModelErrors.Add(1)
		return nil, fmt.Errorf("model score decode: %w", err)
	}
	if len(raw.Scores) != len(vectors) {
		metrics.ModelErrors.Add(1)
		return nil, fmt.Errorf("model score: sent %d vectors, got %d scores", len(vectors), len(raw.Scores))
	}
	return raw.Scores, nil
}

func (c *ModelClient) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.serviceSecret != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceSecret)
	}

	return c.http.Do(req)
}
