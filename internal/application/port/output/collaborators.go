package output

import (
	"context"

	"checkmate-agent/internal/domain/entity"
)

// SearchResult is one organic result from the web search collaborator.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type SearchResponse struct {
	Results []SearchResult
	// Cost is the per-query unit cost in USD.
	Cost float64
}

type SearchPort interface {
	Search(ctx context.Context, query string) (*SearchResponse, error)
}

// ScreenshotPort renders a URL to an image reference (a data URL or a stored
// image URL the model can be shown).
type ScreenshotPort interface {
	Screenshot(ctx context.Context, url string) (imageRef string, err error)
}

// URLScanResult classifies a URL as MALICIOUS, SUSPICIOUS or BENIGN with a
// 0-1 maliciousness score. A benign rating does not prove safety; false
// negatives are possible.
type URLScanResult struct {
	Classification string  `json:"classification"`
	Score          float64 `json:"score"`
}

type URLScanPort interface {
	Scan(ctx context.Context, url string) (*URLScanResult, error)
}

// ReviewerPort grades a submitted report for clarity, logical consistency and
// source credibility. It assumes factual correctness and does not re-verify.
type ReviewerPort interface {
	Review(ctx context.Context, report string, sources []string) (*entity.ReviewResult, error)
}

// SummarizerPort condenses a long-form report plus the original input into a
// short community note led by an emoji convention.
type SummarizerPort interface {
	Summarize(ctx context.Context, report, inputText, inputImageURL, inputCaption string) (string, error)
}

type TranslatorPort interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// StorePort persists agent call records. Best effort: callers log failures
// and continue.
type StorePort interface {
	Save(ctx context.Context, record entity.AgentCallRecord) error
}
