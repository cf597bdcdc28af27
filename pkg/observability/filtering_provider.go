package observability

import "go.opentelemetry.io/otel/trace"

// filteringTracerProvider wraps a trace.TracerProvider so that every Tracer()
// it hands out is known, at construction time, to sit behind an attribute
// filter on the underlying span processor (see NewAttributeFilter). It is a
// thin marker wrapper: filtering itself happens in the span processor chain
// built by buildTracerProvider, so Tracer() simply delegates.
type filteringTracerProvider struct {
	trace.TracerProvider
}

// NewFilteringTracerProvider wraps tp so that callers obtaining tracers from
// it are guaranteed to go through the PII/high-cardinality attribute filter
// already installed on tp's span processor chain.
func NewFilteringTracerProvider(tp trace.TracerProvider) trace.TracerProvider {
	return &filteringTracerProvider{TracerProvider: tp}
}
