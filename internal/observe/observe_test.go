package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestRecordQuery(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordQuery(ctx, "room", OutcomeGraph, 3*time.Millisecond, 12, 2)
	m.RecordQuery(ctx, "room", OutcomeDirect, time.Millisecond, 0, 0)
	m.RecordQuery(ctx, "room", OutcomeNodeCap, time.Millisecond, 5000, 0)

	rm := collect(t, reader)

	queries := findMetric(rm, "navplanner.queries")
	if queries == nil {
		t.Fatal("navplanner.queries not found")
	}
	sum, ok := queries.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", queries.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 3 {
		t.Errorf("query count = %d, want 3", total)
	}

	nodes := findMetric(rm, "navplanner.graph.nodes")
	if nodes == nil {
		t.Fatal("navplanner.graph.nodes not found")
	}
	hist, ok := nodes.Data.(metricdata.Histogram[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", nodes.Data)
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
		t.Errorf("graph node histogram should hold exactly the graph query, got %+v", hist.DataPoints)
	}

	holes := findMetric(rm, "navplanner.obstacle.holes")
	if holes == nil {
		t.Fatal("navplanner.obstacle.holes not found")
	}
	if hs := holes.Data.(metricdata.Sum[int64]); len(hs.DataPoints) != 1 || hs.DataPoints[0].Value != 2 {
		t.Errorf("obstacle holes = %+v, want 2", hs.DataPoints)
	}
}

func TestRecordQuery_NilMetrics(t *testing.T) {
	var m *Metrics
	m.RecordQuery(context.Background(), "room", OutcomeGraph, time.Millisecond, 1, 1)
}

func TestMiddleware(t *testing.T) {
	m, reader := newTestMetrics(t)

	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	origTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(origTP) })

	var captured string
	handler := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = CorrelationID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/route", nil))

	if len(captured) != 32 {
		t.Errorf("correlation ID %q should be a 32 character trace ID", captured)
	}
	if rec.Header().Get("X-Correlation-ID") != captured {
		t.Error("X-Correlation-ID header does not match the trace ID")
	}
	if spans := exp.GetSpans(); len(spans) != 1 || spans[0].Name != "HTTP GET /route" {
		t.Errorf("spans = %v, want one HTTP GET /route span", spans)
	}
	if findMetric(collect(t, reader), "navplanner.http.request.duration") == nil {
		t.Error("request duration not recorded")
	}
}

func TestLogger_WithoutSpan(t *testing.T) {
	if Logger(context.Background()) == nil {
		t.Fatal("Logger returned nil")
	}
}

func TestMiddleware_RouteLabels(t *testing.T) {
	m, reader := newTestMetrics(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {})
	handler := Middleware(m)(mux)

	for _, target := range []string{"/health", "/no/such/a", "/no/such/b"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	dur := findMetric(collect(t, reader), "navplanner.http.request.duration")
	if dur == nil {
		t.Fatal("request duration not recorded")
	}
	hist, ok := dur.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", dur.Data)
	}
	counts := map[string]uint64{}
	for _, dp := range hist.DataPoints {
		route, _ := dp.Attributes.Value("route")
		counts[route.AsString()] += dp.Count
	}
	if len(counts) != 2 || counts["/health"] != 1 || counts[unmatchedRoute] != 2 {
		t.Errorf("route counts = %v, want /health:1 unmatched:2", counts)
	}
}

func TestInitProvider(t *testing.T) {
	origTP, origMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(origTP)
		otel.SetMeterProvider(origMP)
	})

	exp := tracetest.NewInMemoryExporter()
	shutdown, err := InitProvider(context.Background(), ProviderConfig{TraceExporter: exp})
	if err != nil {
		t.Fatalf("InitProvider: %v", err)
	}

	_, span := StartSpan(context.Background(), "pathfind.plan")
	span.End()

	tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	if !ok {
		t.Fatalf("global tracer provider is %T", otel.GetTracerProvider())
	}
	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}
	if spans := exp.GetSpans(); len(spans) != 1 || spans[0].Name != "pathfind.plan" {
		t.Errorf("spans = %v, want the pathfind.plan span", spans)
	}

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
