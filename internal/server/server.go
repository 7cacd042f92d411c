// Package server exposes the planner over HTTP: route queries, static hole
// toggles, agent registration and visualisation of the visibility graph.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"nav-planner/internal/navmesh"
	"nav-planner/internal/obstacle"
	"nav-planner/internal/observe"
	"nav-planner/internal/pathfind"
)

// Options configures a [Server].
type Options struct {
	// RateLimit is the sustained number of /route requests per second.
	// Zero disables limiting.
	RateLimit float64

	// RateBurst is the token bucket size for /route.
	RateBurst int

	// Pathfind is applied to every pathfinder the server creates.
	Pathfind []pathfind.Option

	// Metrics records HTTP and query metrics. Nil uses the global provider.
	Metrics *observe.Metrics
}

// Server routes HTTP requests to the meshes in a catalog.
type Server struct {
	catalog *navmesh.Catalog
	agents  *obstacle.Registry
	opts    []pathfind.Option
	limiter *rate.Limiter
	metrics *observe.Metrics

	mu       sync.Mutex
	planners map[string]*pathfind.Pathfinder
}

// New creates a server over catalog. agents receives /agents updates and is
// consulted for obstacle holes on every route query.
func New(catalog *navmesh.Catalog, agents *obstacle.Registry, o Options) *Server {
	m := o.Metrics
	if m == nil {
		m = observe.DefaultMetrics()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if o.RateLimit > 0 {
		burst := o.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(o.RateLimit), burst)
	}

	opts := append([]pathfind.Option{pathfind.WithMetrics(m)}, o.Pathfind...)
	return &Server{
		catalog:  catalog,
		agents:   agents,
		opts:     opts,
		limiter:  limiter,
		metrics:  m,
		planners: make(map[string]*pathfind.Pathfinder),
	}
}

// Handler returns the HTTP handler with tracing, metrics and CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/route", s.routeHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/holes", s.holesHandler)
	mux.HandleFunc("/agents", s.agentsHandler)
	mux.HandleFunc("/activeMesh", s.activeMeshHandler)
	mux.HandleFunc("/graphLines", s.graphLinesHandler)
	mux.HandleFunc("/region", s.regionHandler)
	mux.Handle("/metrics", promhttp.Handler())

	return observe.Middleware(s.metrics)(corsMiddleware(mux))
}

// planner returns the cached pathfinder for a mesh.
func (s *Server) planner(mesh *navmesh.NavMesh) *pathfind.Pathfinder {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.planners[mesh.Name()]
	if !ok {
		p = pathfind.New(mesh, s.agents, s.opts...)
		s.planners[mesh.Name()] = p
	}
	return p
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "err", err)
	}
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
