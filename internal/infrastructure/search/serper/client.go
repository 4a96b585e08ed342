package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"checkmate-agent/internal/application/port/output"
)

const (
	defaultBaseURL = "https://google.serper.dev"

	// Per-query pricing on the standard serper.dev plan.
	queryCost = 1.0 / 1000
)

var _ output.SearchPort = (*Client)(nil)

// Client queries serper.dev. Results are localized to Singapore to match the
// audience whose messages are being checked.
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
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		logger:     cfg.Logger,
	}
}

type searchRequest struct {
	Q        string `json:"q"`
	Location string `json:"location"`
	GL       string `json:"gl"`
}

type searchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

func (c *Client) Search(ctx context.Context, query string) (*output.SearchResponse, error) {
	payload, err := json.Marshal(searchRequest{
		Q:        query,
		Location: "Singapore",
		GL:       "sg",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("serper returned status %d: %s", resp.StatusCode, body)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode serper response: %w", err)
	}

	results := make([]output.SearchResult, 0, len(parsed.Organic))
	for _, r := range parsed.Organic {
		results = append(results, output.SearchResult{
			Title:   r.Title,
			Link:    r.Link,
			Snippet: r.Snippet,
		})
	}

	c.logger.Info("Search completed", "query", query, "results", len(results))
	return &output.SearchResponse{Results: results, Cost: queryCost}, nil
}
