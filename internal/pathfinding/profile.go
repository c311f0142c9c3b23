package pathfinding

import (
	"context"
	"sync/atomic"
)

// Profiler captures instrumentation hooks for terrain path searches.
type Profiler interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordHeuristicEvaluation()
	RecordNodeExpanded()
	RecordNeighborGeneration(count int)
	RecordSearch(found bool)
}

// Metrics accumulates profiling counters across searches. It is safe to
// share between goroutines.
type Metrics struct {
	cacheHits            atomic.Int64
	cacheMisses          atomic.Int64
	heuristicEvaluations atomic.Int64
	nodesExpanded        atomic.Int64
	neighborGenerations  atomic.Int64
	neighborCount        atomic.Int64
	searches             atomic.Int64
	found                atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	CacheHits            int64
	CacheMisses          int64
	HeuristicEvaluations int64
	NodesExpanded        int64
	NeighborGenerations  int64
	NeighborCount        int64
	Searches             int64
	Found                int64
}

// Profiler returns a Profiler backed by this metric set.
func (m *Metrics) Profiler() Profiler {
	if m == nil {
		return nil
	}
	return (*metricsProfiler)(m)
}

func (m *Metrics) Reset() {
	if m == nil {
		return
	}
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.heuristicEvaluations.Store(0)
	m.nodesExpanded.Store(0)
	m.neighborGenerations.Store(0)
	m.neighborCount.Store(0)
	m.searches.Store(0)
	m.found.Store(0)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		CacheHits:            m.cacheHits.Load(),
		CacheMisses:          m.cacheMisses.Load(),
		HeuristicEvaluations: m.heuristicEvaluations.Load(),
		NodesExpanded:        m.nodesExpanded.Load(),
		NeighborGenerations:  m.neighborGenerations.Load(),
		NeighborCount:        m.neighborCount.Load(),
		Searches:             m.searches.Load(),
		Found:                m.found.Load(),
	}
}

type metricsProfiler Metrics

func (m *metricsProfiler) RecordCacheHit() {
	(*Metrics)(m).cacheHits.Add(1)
}

func (m *metricsProfiler) RecordCacheMiss() {
	(*Metrics)(m).cacheMisses.Add(1)
}

func (m *metricsProfiler) RecordHeuristicEvaluation() {
	(*Metrics)(m).heuristicEvaluations.Add(1)
}

func (m *metricsProfiler) RecordNodeExpanded() {
	(*Metrics)(m).nodesExpanded.Add(1)
}

func (m *metricsProfiler) RecordNeighborGeneration(count int) {
	metrics := (*Metrics)(m)
	metrics.neighborGenerations.Add(1)
	metrics.neighborCount.Add(int64(count))
}

func (m *metricsProfiler) RecordSearch(found bool) {
	metrics := (*Metrics)(m)
	metrics.searches.Add(1)
	if found {
		metrics.found.Add(1)
	}
}

type profilerContextKey struct{}

// ContextWithProfiler returns a context that reports to profiler during
// searches.
func ContextWithProfiler(ctx context.Context, profiler Profiler) context.Context {
	if profiler == nil {
		return ctx
	}
	return context.WithValue(ctx, profilerContextKey{}, profiler)
}

func profilerFromContext(ctx context.Context) Profiler {
	if ctx == nil {
		return nil
	}
	if profiler, ok := ctx.Value(profilerContextKey{}).(Profiler); ok {
		return profiler
	}
	return nil
}
