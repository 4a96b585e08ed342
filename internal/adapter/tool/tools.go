package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/domain/entity"
)

// InferIntentTool reflects the model's reasoning about what the sender wants
// checked. No side effects; first-turn only.
type InferIntentTool struct{}

func NewInferIntentTool() *InferIntentTool { return &InferIntentTool{} }

func (t *InferIntentTool) Name() entity.ToolName { return entity.ToolInferIntent }
func (t *InferIntentTool) Description() string   { return "Infer the user's intent." }
func (t *InferIntentTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"reasoning": map[string]interface{}{
				"type":        "string",
				"description": "The reasoning behind your choice",
			},
			"intent": map[string]interface{}{
				"type":        "string",
				"description": "What the user's intent is, e.g. to check whether this is a scam, to check if this is really from the government, to check the facts in this article, etc.",
			},
		},
		"required":             []string{"reasoning", "intent"},
		"additionalProperties": false,
	}
}

func (t *InferIntentTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Reasoning string `json:"reasoning"`
		Intent    string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(args), &input); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	result, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

// PlanNextStepTool reflects the model's choice of next step from a closed
// enum. No side effects; planning turns only.
type PlanNextStepTool struct{}

func NewPlanNextStepTool() *PlanNextStepTool { return &PlanNextStepTool{} }

func (t *PlanNextStepTool) Name() entity.ToolName { return entity.ToolPlanNextStep }
func (t *PlanNextStepTool) Description() string {
	return "Indicate what the next step should be, given past steps."
}
func (t *PlanNextStepTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"reasoning": map[string]interface{}{
				"type":        "string",
				"description": "Why you think the next step should be what it is.",
			},
			"next_step": map[string]interface{}{
				"type":        "string",
				"description": "What the next step should be. You can either search_google to investigate claims, get_website_screenshot to see the contents of a link, or submit_report_for_review once you have enough information to complete your task.",
				"enum": []string{
					"search_google",
					"get_website_screenshot",
					"submit_report_for_review",
				},
			},
		},
		"required":             []string{"reasoning", "next_step"},
		"additionalProperties": false,
	}
}

func (t *PlanNextStepTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Reasoning string `json:"reasoning"`
		NextStep  string `json:"next_step"`
	}
	if err := json.Unmarshal([]byte(args), &input); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	result, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

// SearchGoogleTool runs a web search through the search collaborator and
// returns the organic results. Consumes search budget per attempt.
type SearchGoogleTool struct {
	search output.SearchPort
	logger output.LoggerPort
}

func NewSearchGoogleTool(search output.SearchPort, logger output.LoggerPort) *SearchGoogleTool {
	return &SearchGoogleTool{search: search, logger: logger}
}

func (t *SearchGoogleTool) Name() entity.ToolName { return entity.ToolSearchGoogle }
func (t *SearchGoogleTool) Description() string {
	return "Searches Google for the given query and returns organic search results using serper.dev. Call this when you need to retrieve information from Google search results."
}
func (t *SearchGoogleTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"q": map[string]interface{}{
				"type":        "string",
				"description": "The search query to use on Google.",
			},
		},
		"required":             []string{"q"},
		"additionalProperties": false,
	}
}

func (t *SearchGoogleTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Q string `json:"q"`
	}
	if err := json.Unmarshal([]byte(args), &input); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	resp, err := t.search.Search(ctx, input.Q)
	if err != nil {
		return "", err
	}
	result, err := json.Marshal(resp.Results)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

// ScreenshotTool renders a URL to an image reference. Consumes screenshot
// budget per attempt; the invoker turns the reference into inline content.
type ScreenshotTool struct {
	screenshot output.ScreenshotPort
	logger     output.LoggerPort
}

func NewScreenshotTool(screenshot output.ScreenshotPort, logger output.LoggerPort) *ScreenshotTool {
	return &ScreenshotTool{screenshot: screenshot, logger: logger}
}

func (t *ScreenshotTool) Name() entity.ToolName { return entity.ToolGetScreenshot }
func (t *ScreenshotTool) Description() string {
	return "Takes a screenshot of the url provided. Call this when you need to look at the web page."
}
func (t *ScreenshotTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "The URL of the website to take a screenshot of.",
			},
		},
		"required":             []string{"url"},
		"additionalProperties": false,
	}
}

func (t *ScreenshotTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(args), &input); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	imageRef, err := t.screenshot.Screenshot(ctx, input.URL)
	if err != nil {
		return "", fmt.Errorf("Screenshot API failed for %s: %w", input.URL, err)
	}
	return imageRef, nil
}

// CheckMaliciousURLTool queries the URL-reputation scanner.
type CheckMaliciousURLTool struct {
	scanner output.URLScanPort
	logger  output.LoggerPort
}

func NewCheckMaliciousURLTool(scanner output.URLScanPort, logger output.LoggerPort) *CheckMaliciousURLTool {
	return &CheckMaliciousURLTool{scanner: scanner, logger: logger}
}

func (t *CheckMaliciousURLTool) Name() entity.ToolName { return entity.ToolCheckMaliciousURL }
func (t *CheckMaliciousURLTool) Description() string {
	return "Runs a check on the provided URL to determine if it is malicious. Returns either 'MALICIOUS', 'SUSPICIOUS' or 'BENIGN', as well as a maliciousness score from 0-1. Note, while a malicious rating should be trusted, a benign rating doesn't imply the absence of malicious behaviour, as there might be false negatives."
}
func (t *CheckMaliciousURLTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "The URL of the website to check whether it is malicious.",
			},
		},
		"required":             []string{"url"},
		"additionalProperties": false,
	}
}

func (t *CheckMaliciousURLTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(args), &input); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	scan, err := t.scanner.Scan(ctx, input.URL)
	if err != nil {
		return "", err
	}
	result, err := json.Marshal(scan)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

// SubmitReportTool is the terminal tool: it hands the drafted report to the
// review gate and returns the grading. Only a passing grade ends the session.
type SubmitReportTool struct {
	reviewer output.ReviewerPort
	logger   output.LoggerPort
}

func NewSubmitReportTool(reviewer output.ReviewerPort, logger output.LoggerPort) *SubmitReportTool {
	return &SubmitReportTool{reviewer: reviewer, logger: logger}
}

func (t *SubmitReportTool) Name() entity.ToolName { return entity.ToolSubmitReport }
func (t *SubmitReportTool) Description() string {
	return "Submits a report, which concludes the task."
}
func (t *SubmitReportTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"report": map[string]interface{}{
				"type":        "string",
				"description": "The content of the report. This should have enough context for readers to stay safe and informed. Try and be succinct.",
			},
			"sources": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type":        "string",
					"description": "A link from which you sourced content for your report.",
				},
				"description": "A list of links from which your report is based. Avoid including the original link sent in for checking as that is obvious.",
			},
			"isControversial": map[string]interface{}{
				"type":        "boolean",
				"description": "True if the content contains political or religious viewpoints that are grounded in opinions rather than provable facts, and are likely to be divisive or polarizing.",
			},
			"isVideo": map[string]interface{}{
				"type":        "boolean",
				"description": "True if the content or URL sent by the user to be checked points to a video (e.g., YouTube, TikTok, Instagram Reels, Facebook videos).",
			},
			"isAccessBlocked": map[string]interface{}{
				"type":        "boolean",
				"description": "True if the content or URL sent by the user to be checked is inaccessible/removed/blocked. An example is being led to a login page instead of post content.",
			},
		},
		"required": []string{
			"report",
			"sources",
			"isControversial",
			"isVideo",
			"isAccessBlocked",
		},
		"additionalProperties": false,
	}
}

func (t *SubmitReportTool) Execute(ctx context.Context, args string) (string, error) {
	var input entity.SubmittedReport
	if err := json.Unmarshal([]byte(args), &input); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	review, err := t.reviewer.Review(ctx, input.Report, input.Sources)
	if err != nil {
		return "", fmt.Errorf("review failed: %w", err)
	}

	result, err := json.Marshal(review)
	if err != nil {
		return "", err
	}
	return string(result), nil
}
