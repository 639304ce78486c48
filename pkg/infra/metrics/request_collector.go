package metrics

import (
	"sync"

	"github.com/google/uuid"

	"github.com/quilr/guardrails-go/pkg/infra/metrics/metric_events"
)

const CollectorKey = "__metrics_collector"

type Config struct {
	EnablePluginTraces bool
	ExtraParams        map[string]string
}

// Collector accumulates events for a single proxied request. It is handed to
// every plugin in the chain and flushed exactly once by the worker.
type Collector struct {
	traceID        string
	embeddedParams []EmbeddedParam
	mu             sync.Mutex
	events         []*metric_events.Event
	cfg            *Config
}

func NewCollector(cfg *Config, opts ...Option) *Collector {
	options := &collectorOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.traceID == "" {
		options.traceID = uuid.New().String()
	}
	return &Collector{
		traceID:        options.traceID,
		embeddedParams: options.embeddedParams,
		cfg:            cfg,
	}
}

func (rc *Collector) Emit(evt *metric_events.Event) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if evt.IsTypePlugin() && !rc.cfg.EnablePluginTraces {
		return
	}

	evt.TraceID = rc.traceID
	if len(rc.cfg.ExtraParams) > 0 || len(rc.embeddedParams) > 0 {
		params := make(map[string]string, len(rc.cfg.ExtraParams)+len(rc.embeddedParams))
		for k, v := range rc.cfg.ExtraParams {
			params[k] = v
		}
		for _, ep := range rc.embeddedParams {
			params[ep.Key] = ep.Value
		}
		evt.Params = params
	}
	rc.events = append(rc.events, evt)
}

func (rc *Collector) Flush() []*metric_events.Event {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	out := make([]*metric_events.Event, len(rc.events))
	copy(out, rc.events)
	rc.events = nil
	return out
}
