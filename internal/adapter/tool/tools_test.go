package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any)                 {}
func (nopLogger) Info(msg string, args ...any)                  {}
func (nopLogger) Warn(msg string, args ...any)                  {}
func (nopLogger) Error(msg string, args ...any)                 {}
func (l nopLogger) WithField(string, any) output.LoggerPort     { return l }
func (l nopLogger) WithFields(map[string]any) output.LoggerPort { return l }
func (nopLogger) Close() error                                  { return nil }

type fakeSearch struct {
	resp *output.SearchResponse
	err  error
	got  string
}

func (f *fakeSearch) Search(ctx context.Context, query string) (*output.SearchResponse, error) {
	f.got = query
	return f.resp, f.err
}

type fakeScreenshot struct {
	ref string
	err error
}

func (f *fakeScreenshot) Screenshot(ctx context.Context, url string) (string, error) {
	return f.ref, f.err
}

type fakeScanner struct {
	result *output.URLScanResult
	err    error
}

func (f *fakeScanner) Scan(ctx context.Context, url string) (*output.URLScanResult, error) {
	return f.result, f.err
}

type fakeReviewer struct {
	result     *entity.ReviewResult
	err        error
	gotReport  string
	gotSources []string
}

func (f *fakeReviewer) Review(ctx context.Context, report string, sources []string) (*entity.ReviewResult, error) {
	f.gotReport = report
	f.gotSources = sources
	return f.result, f.err
}

func TestInferIntentReflectsArguments(t *testing.T) {
	result, err := NewInferIntentTool().Execute(context.Background(),
		`{"reasoning":"looks like a phishing message","intent":"to check whether this is a scam"}`)
	require.NoError(t, err)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal([]byte(result), &parsed))
	assert.Equal(t, "to check whether this is a scam", parsed["intent"])
}

func TestInferIntentRejectsMalformedArguments(t *testing.T) {
	_, err := NewInferIntentTool().Execute(context.Background(), `{"reasoning":`)
	assert.Error(t, err)
}

func TestPlanNextStepReflectsArguments(t *testing.T) {
	result, err := NewPlanNextStepTool().Execute(context.Background(),
		`{"reasoning":"need to verify the claim","next_step":"search_google"}`)
	require.NoError(t, err)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal([]byte(result), &parsed))
	assert.Equal(t, "search_google", parsed["next_step"])
}

func TestSearchGoogleMarshalsResults(t *testing.T) {
	search := &fakeSearch{resp: &output.SearchResponse{
		Results: []output.SearchResult{
			{Title: "Advisory", Link: "https://example.gov/advisory", Snippet: "Known scam"},
		},
		Cost: 1.0 / 1000,
	}}

	result, err := NewSearchGoogleTool(search, nopLogger{}).Execute(context.Background(), `{"q":"is this a scam"}`)
	require.NoError(t, err)
	assert.Equal(t, "is this a scam", search.got)

	var results []output.SearchResult
	require.NoError(t, json.Unmarshal([]byte(result), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "https://example.gov/advisory", results[0].Link)
}

func TestSearchGooglePropagatesFailure(t *testing.T) {
	search := &fakeSearch{err: errors.New("serper: 500")}
	_, err := NewSearchGoogleTool(search, nopLogger{}).Execute(context.Background(), `{"q":"x"}`)
	assert.Error(t, err)
}

func TestScreenshotReturnsImageRef(t *testing.T) {
	shot := &fakeScreenshot{ref: "data:image/jpeg;base64,abc"}
	result, err := NewScreenshotTool(shot, nopLogger{}).Execute(context.Background(), `{"url":"https://example.com"}`)
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,abc", result)
}

func TestScreenshotWrapsFailureWithURL(t *testing.T) {
	shot := &fakeScreenshot{err: errors.New("timeout")}
	_, err := NewScreenshotTool(shot, nopLogger{}).Execute(context.Background(), `{"url":"https://slow.example.com"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "https://slow.example.com")
}

func TestCheckMaliciousURLMarshalsScan(t *testing.T) {
	scanner := &fakeScanner{result: &output.URLScanResult{Classification: "MALICIOUS", Score: 0.97}}
	result, err := NewCheckMaliciousURLTool(scanner, nopLogger{}).Execute(context.Background(), `{"url":"https://evil.example.com"}`)
	require.NoError(t, err)

	var scan output.URLScanResult
	require.NoError(t, json.Unmarshal([]byte(result), &scan))
	assert.Equal(t, "MALICIOUS", scan.Classification)
	assert.InDelta(t, 0.97, scan.Score, 1e-9)
}

func TestSubmitReportForwardsToReviewer(t *testing.T) {
	reviewer := &fakeReviewer{result: &entity.ReviewResult{Feedback: "Good.", PassedReview: true}}
	tool := NewSubmitReportTool(reviewer, nopLogger{})

	args := `{"report":"Confirmed scam.","sources":["https://example.gov/advisory"],"isControversial":false,"isVideo":false,"isAccessBlocked":false}`
	result, err := tool.Execute(context.Background(), args)
	require.NoError(t, err)

	assert.Equal(t, "Confirmed scam.", reviewer.gotReport)
	assert.Equal(t, []string{"https://example.gov/advisory"}, reviewer.gotSources)

	var review entity.ReviewResult
	require.NoError(t, json.Unmarshal([]byte(result), &review))
	assert.True(t, review.PassedReview)
}

func TestSubmitReportReviewerFailure(t *testing.T) {
	reviewer := &fakeReviewer{err: errors.New("model unavailable")}
	tool := NewSubmitReportTool(reviewer, nopLogger{})

	_, err := tool.Execute(context.Background(),
		`{"report":"r","sources":[],"isControversial":false,"isVideo":false,"isAccessBlocked":false}`)
	assert.Error(t, err)
}

func TestSchemasDeclareRequiredFields(t *testing.T) {
	cases := []struct {
		tool     interface{ Parameters() map[string]interface{} }
		required []string
	}{
		{NewInferIntentTool(), []string{"reasoning", "intent"}},
		{NewPlanNextStepTool(), []string{"reasoning", "next_step"}},
		{NewSearchGoogleTool(nil, nopLogger{}), []string{"q"}},
		{NewScreenshotTool(nil, nopLogger{}), []string{"url"}},
		{NewCheckMaliciousURLTool(nil, nopLogger{}), []string{"url"}},
		{NewSubmitReportTool(nil, nopLogger{}), []string{"report", "sources", "isControversial", "isVideo", "isAccessBlocked"}},
	}

	for _, tc := range cases {
		params := tc.tool.Parameters()
		assert.Equal(t, "object", params["type"])
		assert.Equal(t, false, params["additionalProperties"])
		assert.Equal(t, tc.required, params["required"])
	}
}
