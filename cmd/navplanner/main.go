// Command navplanner serves polygon navmesh pathfinding over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"nav-planner/internal/config"
	"nav-planner/internal/navmesh"
	"nav-planner/internal/obstacle"
	"nav-planner/internal/observe"
	"nav-planner/internal/pathfind"
	"nav-planner/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file; empty uses defaults")
	regionsDir := flag.String("regions", "", "override navigation.regions_dir")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := loadConfig(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "navplanner: config file %q not found, copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "navplanner: %v\n", err)
		}
		return 1
	}
	if *regionsDir != "" {
		cfg.Navigation.RegionsDir = *regionsDir
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	slog.Info("navplanner starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
		"regions_dir", cfg.Navigation.RegionsDir,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "nav-planner"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Regions ───────────────────────────────────────────────────────────────
	catalog, err := loadCatalog(cfg.Navigation)
	if err != nil {
		slog.Error("failed to load regions", "err", err)
		return 1
	}

	srv := server.New(catalog, obstacle.NewRegistry(), server.Options{
		RateLimit: cfg.Server.RouteRate(),
		RateBurst: cfg.Server.RateBurst,
		Pathfind:  pathfindOptions(cfg.Navigation),
		Metrics:   observe.DefaultMetrics(),
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server ready, press Ctrl+C to shut down", "addr", httpServer.Addr, "meshes", catalog.Names())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		// ── Graceful shutdown ─────────────────────────────────────────────────
		slog.Info("shutdown signal received, stopping…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromReader(strings.NewReader(""))
	}
	return config.Load(path)
}

// loadCatalog loads every region file and selects the default mesh.
func loadCatalog(nav config.NavigationConfig) (*navmesh.Catalog, error) {
	meshes, err := navmesh.LoadDir(nav.RegionsDir, navmesh.LoadOptions{SimplifyEpsilon: nav.SimplifyEpsilon})
	if err != nil {
		return nil, err
	}
	if len(meshes) == 0 {
		return nil, fmt.Errorf("no regions found in %q", nav.RegionsDir)
	}

	catalog := navmesh.NewCatalog(meshes...)
	if nav.DefaultMesh != "" {
		if err := catalog.SetActive(nav.DefaultMesh); err != nil {
			return nil, err
		}
	}
	for _, name := range catalog.Names() {
		m, _ := catalog.Get(name)
		region := m.Snapshot()
		slog.Info("region loaded", "mesh", name, "vertices", len(region.Vertices()), "holes", region.HoleCount())
	}
	return catalog, nil
}

func pathfindOptions(nav config.NavigationConfig) []pathfind.Option {
	var sight pathfind.LineOfSight = pathfind.SampledSight{Radius: nav.SightRadius}
	if nav.LineOfSight == config.SightExact {
		sight = pathfind.ExactSight{}
	}
	return []pathfind.Option{
		pathfind.WithSight(sight),
		pathfind.WithSurfaceTolerance(nav.SurfaceTolerance),
		pathfind.WithMaxNodes(nav.MaxNodes),
	}
}

// newLogger creates a [slog.Logger] writing text to stderr at the configured level.
func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
