package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCacheHits   = "branchy.cache.hits"
	metricCacheMisses = "branchy.cache.misses"

	cacheLabelFiles = "files"
	cacheLabelTrees = "trees"
)

// CacheStatsProvider exposes cumulative hit/miss counters for a cache.
// The file table and the tree cache both implement it.
type CacheStatsProvider interface {
	CacheHits() int64
	CacheMisses() int64
}

// RegisterCacheMetrics registers observable gauges reporting hit/miss counts
// for the file table and the tree cache. Either provider may be nil, in which
// case its data points are simply omitted from collection.
func RegisterCacheMetrics(mt metric.Meter, files, trees CacheStatsProvider) error {
	hits, err := mt.Int64ObservableGauge(metricCacheHits,
		metric.WithDescription("Cumulative cache hits by cache name"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheHits, err)
	}

	misses, err := mt.Int64ObservableGauge(metricCacheMisses,
		metric.WithDescription("Cumulative cache misses by cache name"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheMisses, err)
	}

	_, err = mt.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		if files != nil {
			obs.ObserveInt64(hits, files.CacheHits(), metric.WithAttributes(attribute.String(attrCache, cacheLabelFiles)))
			obs.ObserveInt64(misses, files.CacheMisses(), metric.WithAttributes(attribute.String(attrCache, cacheLabelFiles)))
		}

		if trees != nil {
			obs.ObserveInt64(hits, trees.CacheHits(), metric.WithAttributes(attribute.String(attrCache, cacheLabelTrees)))
			obs.ObserveInt64(misses, trees.CacheMisses(), metric.WithAttributes(attribute.String(attrCache, cacheLabelTrees)))
		}

		return nil
	}, hits, misses)
	if err != nil {
		return fmt.Errorf("register cache metrics callback: %w", err)
	}

	return nil
}
