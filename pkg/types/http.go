package types

import (
	"context"
	"net/url"

	"github.com/quilr/guardrails-go/pkg/infra/plugins/types"
)

// RequestContext carries the host proxy's in-flight request through the
// guardrail hooks. Plugins mutate Body in place; everything else is
// informational and owned by the host.
type RequestContext struct {
	Context    context.Context
	Headers    map[string][]string
	Method     string
	Path       string
	Query      url.Values
	Body       []byte
	Metadata   map[string]interface{}
	Stage      types.Stage
	IP         string
	SessionID  string
	Model      string
	Credential string
}

// ResponseContext carries the upstream response for post-stage hooks.
type ResponseContext struct {
	Context        context.Context
	Headers        map[string][]string
	Body           []byte
	StatusCode     int
	Metadata       map[string]interface{}
	Streaming      bool
	StopProcessing bool
}
