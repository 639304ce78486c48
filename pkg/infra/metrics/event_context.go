package metrics

import (
	"sync"
	"time"

	"github.com/quilr/guardrails-go/pkg/infra/metrics/metric_events"
)

type EventContext struct {
	PluginName string
	Stage      string
	data       *metric_events.PluginDataEvent
	collector  *Collector
	mu         sync.Mutex
}

func NewEventContext(pluginName, stage string, collector *Collector) *EventContext {
	return &EventContext{
		PluginName: pluginName,
		Stage:      stage,
		data: &metric_events.PluginDataEvent{
			PluginName: pluginName,
			Stage:      stage,
		},
		collector: collector,
	}
}

func (e *EventContext) SetExtras(extras interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.Extras = extras
}

func (e *EventContext) SetError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.Error = true
	e.data.ErrorMessage = err.Error()
}

func (e *EventContext) SetStatusCode(code int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.StatusCode = code
}

func (e *EventContext) SetLatency(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.ExecutionTime = d.Milliseconds()
}

func (e *EventContext) SetVerdict(verdict string, categories []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.Verdict = verdict
	e.data.Categories = categories
}

func (e *EventContext) Publish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.collector == nil {
		return
	}
	evt := metric_events.NewPluginEvent()
	evt.Plugin = e.data
	evt.Latency = e.data.ExecutionTime
	evt.StatusCode = e.data.StatusCode
	evt.EndTimestamp = time.Now().Unix()
	e.collector.Emit(evt)
}
