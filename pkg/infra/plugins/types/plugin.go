package types

import "errors"

var (
	ErrUnknownPlugin         = errors.New("unknown plugin")
	ErrPluginChainValidation = errors.New("failed to validate plugin chain")
)

// Stage represents when a plugin hook runs relative to the upstream LLM call.
type Stage string

const (
	// PreRequest runs before the upstream call and may mutate or reject the request.
	PreRequest Stage = "pre_request"
	// DuringRequest runs concurrently with the upstream call and may only reject.
	DuringRequest Stage = "during_request"
	// PostResponse runs after the upstream call and may mutate or reject the response.
	PostResponse Stage = "post_response"
)

// PluginConfig represents the configuration for a plugin
type PluginConfig struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Enabled  bool                   `json:"enabled"`
	Stage    Stage                  `json:"stage"`
	Priority int                    `json:"priority"`
	Parallel bool                   `json:"parallel"`
	Settings map[string]interface{} `json:"settings"`
}

type PluginError struct {
	StatusCode int    `json:"code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
	Headers    map[string][]string
	Metadata   map[string]interface{}
}

func (e *PluginError) Error() string {
	return e.Message
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

type PluginResponse struct {
	StatusCode int
	Message    string
	Body       []byte
	Headers    map[string][]string
	Metadata   map[string]interface{}
}

type PluginChain struct {
	Stage    Stage          `json:"stage"`
	Parallel bool           `json:"parallel"`
	Plugins  []PluginConfig `json:"plugins"`
}
