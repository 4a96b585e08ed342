package input

import "context"

// CheckResult is the outcome of a single-shot screening call.
type CheckResult struct {
	Reasoning     string `json:"reasoning"`
	NeedsChecking bool   `json:"needs_checking"`
}

type SensitivityResult struct {
	IsSensitive bool `json:"is_sensitive"`
}

type RedactionResult struct {
	Redacted  string `json:"redacted"`
	Original  string `json:"original"`
	Reasoning string `json:"reasoning"`
}

// Screener covers the thin pre-agent filters: whether a message needs
// checking at all, whether it is too sensitive to process, and PII redaction.
type Screener interface {
	NeedsChecking(ctx context.Context, text string) (*CheckResult, error)
	IsSensitive(ctx context.Context, text string) (*SensitivityResult, error)
	Redact(ctx context.Context, text string) (*RedactionResult, error)
}
