package urlscan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"checkmate-agent/internal/application/port/output"
)

var _ output.URLScanPort = (*Client)(nil)

// Client calls the URL-reputation service. Classifications are MALICIOUS,
// SUSPICIOUS or BENIGN with a 0-1 score; a benign verdict can still be a
// false negative.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     output.LoggerPort
}

type Config struct {
	APIKey  string
	BaseURL string
	Logger  output.LoggerPort
}

func NewClient(cfg Config) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: http.DefaultClient,
		logger:     cfg.Logger,
	}
}

type evaluateRequest struct {
	URL string `json:"url"`
}

type evaluateResponse struct {
	Success        bool    `json:"success"`
	Classification string  `json:"classification"`
	Score          float64 `json:"score"`
	Message        string  `json:"message"`
}

func (c *Client) Scan(ctx context.Context, url string) (*output.URLScanResult, error) {
	payload, err := json.Marshal(evaluateRequest{URL: url})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/evaluate", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("url scan request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("url scan returned status %d: %s", resp.StatusCode, body)
	}

	var parsed evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode url scan response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("url scan failed: %s", parsed.Message)
	}

	c.logger.Info("URL scanned", "url", url, "classification", parsed.Classification, "score", parsed.Score)
	return &output.URLScanResult{
		Classification: parsed.Classification,
		Score:          parsed.Score,
	}, nil
}
