package llm

import "errors"

// ErrRateLimited marks a provider 429. It is the only error class the retry
// policy acts on; everything else surfaces immediately.
var ErrRateLimited = errors.New("rate limited")
