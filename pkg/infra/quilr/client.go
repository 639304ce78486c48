package quilr

import (
	"context"
	"encoding/json"
	"errors"
)

// Verdicts returned by the guardrails check endpoint. Any other status is
// treated as safe by callers.
const (
	VerdictSafe     = "safe"
	VerdictRedacted = "redacted"
	VerdictBlocked  = "blocked"
)

// DefaultBaseURL is used when no endpoint is configured.
const DefaultBaseURL = "https://guardrails.quilr.ai"

var ErrCheckCallFailed = errors.New("quilr guardrails call failed")

type Client interface {
	Check(ctx context.Context, content CheckContent, credentials Credentials) (*CheckResult, error)
}

type Credentials struct {
	APIKey  string
	BaseURL string
}

// CheckContent carries exactly one of Messages or Text. Messages holds the
// conversation as it appeared in the proxied request so the service sees the
// same JSON the provider would.
type CheckContent struct {
	Messages json.RawMessage `json:"messages,omitempty"`
	Text     string          `json:"text,omitempty"`
}

// CheckResult is the verdict for a single check. Messages is only populated
// for redacted message checks, ProcessedText for redacted text checks.
type CheckResult struct {
	Status             string          `json:"status"`
	CategoriesDetected []string        `json:"categories_detected,omitempty"`
	Messages           json.RawMessage `json:"messages,omitempty"`
	ProcessedText      string          `json:"processed_text,omitempty"`
}
