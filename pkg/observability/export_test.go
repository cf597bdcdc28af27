package observability

import (
	"context"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ProbeBuildResource exposes buildResource to external tests.
func ProbeBuildResource(cfg Config) (*resource.Resource, error) {
	return buildResource(cfg)
}

// ProbeSamplerSpan reports whether selectSampler(cfg) samples a root span
// (no parent context, random trace ID) under the given configuration.
func ProbeSamplerSpan(cfg Config) bool {
	sampler := selectSampler(cfg)

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	if err != nil {
		return false
	}

	result := sampler.ShouldSample(sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       traceID,
		Name:          "probe",
		Kind:          trace.SpanKindInternal,
	})

	return result.Decision != sdktrace.Drop
}
