package metrics

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/quilr/guardrails-go/pkg/infra/metrics/metric_events"
	"github.com/quilr/guardrails-go/pkg/infra/prometheus"
	"github.com/quilr/guardrails-go/pkg/infra/quilr"
)

type Worker interface {
	Shutdown()
	StartWorkers(n int)
	Process(metricsCollector *Collector)
}

type worker struct {
	logger   *logrus.Logger
	taskChan chan func()
	ctx      context.Context
	cancel   context.CancelFunc
	closed   atomic.Bool
}

func NewWorker(logger *logrus.Logger) Worker {
	ctx, cancel := context.WithCancel(context.Background())
	m := &worker{
		logger:   logger,
		taskChan: make(chan func(), 1000),
		ctx:      ctx,
		cancel:   cancel,
	}
	return m
}

func (m *worker) Shutdown() {
	m.closed.Store(true)
	m.logger.Info("shutting down metrics workers")
	m.cancel()
	close(m.taskChan)
	m.logger.Info("metrics workers stopped")
}

// Process drains the collector off the request path. Events accumulated
// during the chain are registered against prometheus and logged.
func (m *worker) Process(metricsCollector *Collector) {
	events := metricsCollector.Flush()
	if len(events) == 0 {
		return
	}
	m.enqueueTask(func() {
		m.registerEvents(events)
	})
}

func (m *worker) StartWorkers(n int) {
	for i := 0; i < n; i++ {
		go func() {
			for {
				select {
				case task, ok := <-m.taskChan:
					if !ok {
						return
					}
					task()
				case <-m.ctx.Done():
					return
				}
			}
		}()
	}
}

func (m *worker) enqueueTask(task func()) {
	if m.closed.Load() {
		return
	}
	select {
	case m.taskChan <- task:
	default:
		m.logger.Warn("taskChan is full, dropping metrics task")
	}
}

func (m *worker) registerEvents(events []*metric_events.Event) {
	for _, evt := range events {
		if !evt.IsTypePlugin() || evt.Plugin == nil {
			continue
		}
		m.registerPrometheus(evt.Plugin)

		m.logger.WithFields(logrus.Fields{
			"trace_id":   evt.TraceID,
			"plugin":     evt.Plugin.PluginName,
			"stage":      evt.Plugin.Stage,
			"verdict":    evt.Plugin.Verdict,
			"latency_ms": evt.Plugin.ExecutionTime,
			"error":      evt.Plugin.Error,
		}).Debug("guardrail check completed")
	}
}

func (m *worker) registerPrometheus(data *metric_events.PluginDataEvent) {
	verdict := data.Verdict
	if verdict == "" {
		verdict = "unknown"
	}
	prometheus.GuardrailChecksTotal.WithLabelValues(data.Stage, verdict).Inc()

	if data.Error {
		prometheus.GuardrailErrorsTotal.WithLabelValues(data.Stage).Inc()
	}
	if verdict == quilr.VerdictBlocked {
		prometheus.GuardrailBlockedTotal.WithLabelValues(data.Stage).Inc()
	}
	if prometheus.Config.EnableLatency {
		prometheus.GuardrailCheckLatency.WithLabelValues(data.Stage).Observe(float64(data.ExecutionTime))
	}
	if prometheus.Config.EnableCategoryDetections {
		for _, category := range data.Categories {
			prometheus.GuardrailCategoryDetections.WithLabelValues(data.Stage, category).Inc()
		}
	}
}
