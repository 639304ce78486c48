package metric_events

import (
	"time"

	"github.com/google/uuid"
)

const PluginType = "plugin"

// Event is the envelope emitted once per guardrail check. Consumers read it
// after the chain has finished, never on the hot path.
type Event struct {
	TraceID        string            `json:"trace_id"`
	InteractionID  string            `json:"interaction_id"`
	ConversationID string            `json:"conversation_id"`
	Task           string            `json:"task"`
	Type           string            `json:"type"`
	StartTimestamp int64             `json:"start_timestamp"`
	EndTimestamp   int64             `json:"end_timestamp"`
	Latency        int64             `json:"latency"`
	StatusCode     int               `json:"status_code"`
	Params         map[string]string `json:"params,omitempty"`

	// Plugin Params
	Plugin *PluginDataEvent `json:"plugin,omitempty"`
}

type PluginDataEvent struct {
	PluginName    string      `json:"plugin_name"`
	Stage         string      `json:"stage"`
	ExecutionTime int64       `json:"execution_time"`
	StatusCode    int         `json:"status_code,omitempty"`
	Error         bool        `json:"error"`
	ErrorMessage  string      `json:"error_message,omitempty"`
	Verdict       string      `json:"verdict,omitempty"`
	Categories    []string    `json:"categories,omitempty"`
	Extras        interface{} `json:"extras,omitempty"`
}

func NewPluginEvent() *Event {
	return &Event{
		InteractionID:  uuid.New().String(),
		ConversationID: uuid.New().String(),
		Task:           "guardrail",
		Type:           PluginType,
		StartTimestamp: time.Now().Unix(),
	}
}

func (evt *Event) IsTypePlugin() bool {
	return evt.Type == PluginType
}
