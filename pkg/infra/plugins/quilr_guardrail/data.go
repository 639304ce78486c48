package quilr_guardrail

type QuilrGuardrailData struct {
	Stage      string   `json:"stage"`
	Skipped    bool     `json:"skipped,omitempty"`
	Verdict    string   `json:"verdict,omitempty"`
	Categories []string `json:"categories,omitempty"`

	Blocked  bool `json:"blocked"`
	Redacted bool `json:"redacted,omitempty"`

	CheckedMessages    int   `json:"checked_messages"`
	DetectionLatencyMs int64 `json:"detection_latency_ms"`
}
