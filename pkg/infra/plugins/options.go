package plugins

import (
	"github.com/quilr/guardrails-go/pkg/infra/plugins/quilr_guardrail"
	"github.com/quilr/guardrails-go/pkg/infra/quilr"
)

// Option is a functional option for configuring the Manager.
type Option func(*manager)

// WithQuilrClient sets the Quilr detection client.
func WithQuilrClient(c quilr.Client) Option {
	return func(m *manager) {
		m.quilrClient = c
	}
}

// WithGuardrailDefaults sets the fallback guardrail configuration applied
// under chain settings.
func WithGuardrailDefaults(cfg quilr_guardrail.Config) Option {
	return func(m *manager) {
		m.guardrailDefaults = cfg
	}
}
