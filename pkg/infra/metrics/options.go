package metrics

type EmbeddedParam struct {
	Key   string
	Value string
}

type collectorOptions struct {
	traceID        string
	embeddedParams []EmbeddedParam
}

type Option func(*collectorOptions)

func WithTraceID(traceID string) Option {
	return func(o *collectorOptions) {
		o.traceID = traceID
	}
}

// WithEmbeddedParam adds a parameter to be embedded in the metrics events.
func WithEmbeddedParam(key, value string) Option {
	return func(o *collectorOptions) {
		o.embeddedParams = append(o.embeddedParams, EmbeddedParam{Key: key, Value: value})
	}
}
