package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricParsesTotal      = "branchy.editor.parses.total"
	metricEditsTotal       = "branchy.editor.edits.total"
	metricParseDuration    = "branchy.editor.parse.duration.seconds"
	metricCacheHitsTotal   = "branchy.cache.hits.total"
	metricCacheMissesTotal = "branchy.cache.misses.total"
)

// AnalysisMetrics holds OTel instruments for editor-session metrics: parses
// performed, edits applied, parse latency, and cumulative file/tree cache
// hit-miss counters (complementing the point-in-time gauges in cache_metrics.go).
type AnalysisMetrics struct {
	parsesTotal   metric.Int64Counter
	editsTotal    metric.Int64Counter
	parseDuration metric.Float64Histogram
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
}

// AnalysisStats holds the statistics for a single editor session, decoupled
// from the file table and tree cache types that produce them.
type AnalysisStats struct {
	Parses          int64
	Edits           int
	ParseDurations  []time.Duration
	FileCacheHits   int64
	FileCacheMisses int64
	TreeCacheHits   int64
	TreeCacheMisses int64
}

// NewAnalysisMetrics creates editor session metric instruments from the given meter.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	parses, err := mt.Int64Counter(metricParsesTotal,
		metric.WithDescription("Total parses performed"),
		metric.WithUnit("{parse}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricParsesTotal, err)
	}

	edits, err := mt.Int64Counter(metricEditsTotal,
		metric.WithDescription("Total incremental edits applied"),
		metric.WithUnit("{edit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricEditsTotal, err)
	}

	parseDur, err := mt.Float64Histogram(metricParseDuration,
		metric.WithDescription("Per-parse processing duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricParseDuration, err)
	}

	hits, err := mt.Int64Counter(metricCacheHitsTotal,
		metric.WithDescription("Cumulative cache hits by cache name"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheHitsTotal, err)
	}

	misses, err := mt.Int64Counter(metricCacheMissesTotal,
		metric.WithDescription("Cumulative cache misses by cache name"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheMissesTotal, err)
	}

	return &AnalysisMetrics{
		parsesTotal:   parses,
		editsTotal:    edits,
		parseDuration: parseDur,
		cacheHits:     hits,
		cacheMisses:   misses,
	}, nil
}

// RecordRun records session statistics for a batch of file operations.
// Safe to call on a nil receiver (no-op).
func (am *AnalysisMetrics) RecordRun(ctx context.Context, stats AnalysisStats) {
	if am == nil {
		return
	}

	am.parsesTotal.Add(ctx, stats.Parses)
	am.editsTotal.Add(ctx, int64(stats.Edits))

	for _, d := range stats.ParseDurations {
		am.parseDuration.Record(ctx, d.Seconds())
	}

	fileAttrs := metric.WithAttributes(attribute.String(attrCache, cacheLabelFiles))
	am.cacheHits.Add(ctx, stats.FileCacheHits, fileAttrs)
	am.cacheMisses.Add(ctx, stats.FileCacheMisses, fileAttrs)

	treeAttrs := metric.WithAttributes(attribute.String(attrCache, cacheLabelTrees))
	am.cacheHits.Add(ctx, stats.TreeCacheHits, treeAttrs)
	am.cacheMisses.Add(ctx, stats.TreeCacheMisses, treeAttrs)
}
