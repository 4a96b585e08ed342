package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"checkmate-agent/internal/application/port/output"
)

var _ output.ScreenshotPort = (*Client)(nil)

// Client calls an external screenshot service that renders the page and
// returns a hosted image URL. Used where running a local browser is not an
// option, such as serverless deploys.
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

type screenshotRequest struct {
	URL string `json:"url"`
}

type screenshotResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
	Message  string `json:"message"`
}

func (c *Client) Screenshot(ctx context.Context, url string) (string, error) {
	payload, err := json.Marshal(screenshotRequest{URL: url})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/screenshot", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("screenshot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("screenshot service returned status %d: %s", resp.StatusCode, body)
	}

	var parsed screenshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode screenshot response: %w", err)
	}
	if !parsed.Success || parsed.ImageURL == "" {
		return "", fmt.Errorf("screenshot service failed: %s", parsed.Message)
	}

	c.logger.Info("Screenshot captured", "url", url)
	return parsed.ImageURL, nil
}
