// Package observe provides the observability primitives of the planner:
// OpenTelemetry metrics, tracing and trace-aware structured logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exported
// for Prometheus scraping by [InitProvider]. Tests should use [NewMetrics]
// with their own [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all planner metrics.
const meterName = "nav-planner"

// Query outcomes recorded with [Metrics.RecordQuery].
const (
	OutcomeDirect  = "direct"
	OutcomeGraph   = "graph"
	OutcomeNoPath  = "no_path"
	OutcomeNodeCap = "node_cap"
)

// Metrics holds the OpenTelemetry instruments for pathfinding. All fields are
// safe for concurrent use.
type Metrics struct {
	// QueryDuration tracks the latency of one pathfinding query.
	QueryDuration metric.Float64Histogram

	// Queries counts queries. Use with attributes:
	//   attribute.String("mesh", ...), attribute.String("outcome", ...)
	Queries metric.Int64Counter

	// GraphNodes tracks the size of the visibility graphs that were built.
	GraphNodes metric.Int64Histogram

	// ObstacleHoles counts holes inserted for idle agents.
	ObstacleHoles metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("route", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for
// queries that usually finish within a frame.
var latencyBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1,
}

// nodeBuckets covers graphs from a few vertices up to the node cap.
var nodeBuckets = []float64{
	4, 8, 16, 32, 64, 128, 256, 512, 1000,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider].
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.QueryDuration, err = m.Float64Histogram("navplanner.query.duration",
		metric.WithDescription("Latency of a pathfinding query."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Queries, err = m.Int64Counter("navplanner.queries",
		metric.WithDescription("Pathfinding queries by outcome."),
	); err != nil {
		return nil, err
	}
	if met.GraphNodes, err = m.Int64Histogram("navplanner.graph.nodes",
		metric.WithDescription("Vertex count of built visibility graphs."),
		metric.WithExplicitBucketBoundaries(nodeBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ObstacleHoles, err = m.Int64Counter("navplanner.obstacle.holes",
		metric.WithDescription("Holes inserted for idle agents."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("navplanner.http.request.duration",
		metric.WithDescription("HTTP request processing time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordQuery records one finished query. nodes only reaches the graph size
// histogram for outcomes that built a graph.
func (m *Metrics) RecordQuery(ctx context.Context, mesh, outcome string, elapsed time.Duration, nodes, holes int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("mesh", mesh),
		attribute.String("outcome", outcome),
	)
	m.QueryDuration.Record(ctx, elapsed.Seconds(), attrs)
	m.Queries.Add(ctx, 1, attrs)
	if nodes > 0 && (outcome == OutcomeGraph || outcome == OutcomeNoPath) {
		m.GraphNodes.Record(ctx, int64(nodes), metric.WithAttributes(attribute.String("mesh", mesh)))
	}
	if holes > 0 {
		m.ObstacleHoles.Add(ctx, int64(holes), metric.WithAttributes(attribute.String("mesh", mesh)))
	}
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// DefaultMetrics returns a [Metrics] instance backed by the global
// [metric.MeterProvider]. Instruments are created once on first call.
func DefaultMetrics() *Metrics {
	defaultOnce.Do(func() {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
		defaultMetrics = m
	})
	return defaultMetrics
}
