package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults and
// validates the result. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills every unset field with its default.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Server.RateLimit == nil {
		limit := float64(DefaultRateLimit)
		cfg.Server.RateLimit = &limit
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = DefaultRateBurst
	}

	nav := &cfg.Navigation
	if nav.RegionsDir == "" {
		nav.RegionsDir = DefaultRegionsDir
	}
	if nav.LineOfSight == "" {
		nav.LineOfSight = SightSampled
	}
	if nav.SightRadius == 0 {
		nav.SightRadius = DefaultSightRadius
	}
	if nav.SurfaceTolerance == 0 {
		nav.SurfaceTolerance = DefaultSurfaceTolerance
	}
	if nav.MaxNodes == 0 {
		nav.MaxNodes = DefaultMaxNodes
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if r := cfg.Server.RateLimit; r != nil && *r < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit %.2f must not be negative", *r))
	}
	if cfg.Server.RateBurst < 0 {
		errs = append(errs, fmt.Errorf("server.rate_burst %d must not be negative", cfg.Server.RateBurst))
	}

	// Navigation
	nav := cfg.Navigation
	if nav.LineOfSight != "" && !nav.LineOfSight.IsValid() {
		errs = append(errs, fmt.Errorf("navigation.line_of_sight %q is invalid; valid values: sampled, exact", nav.LineOfSight))
	}
	if nav.SightRadius < 0 {
		errs = append(errs, fmt.Errorf("navigation.sight_radius %.4f must not be negative", nav.SightRadius))
	}
	if nav.SurfaceTolerance < 0 {
		errs = append(errs, fmt.Errorf("navigation.surface_tolerance %.4f must not be negative", nav.SurfaceTolerance))
	}
	if nav.MaxNodes < 0 {
		errs = append(errs, fmt.Errorf("navigation.max_nodes %d must not be negative", nav.MaxNodes))
	}
	if nav.SimplifyEpsilon < 0 {
		errs = append(errs, fmt.Errorf("navigation.simplify_epsilon %.4f must not be negative", nav.SimplifyEpsilon))
	}

	if nav.LineOfSight == SightExact && nav.SightRadius != 0 && nav.SightRadius != DefaultSightRadius {
		slog.Warn("navigation.sight_radius is ignored when line_of_sight is exact")
	}
	if nav.SimplifyEpsilon > 1 {
		slog.Warn("navigation.simplify_epsilon is large and may remove doorways", "epsilon", nav.SimplifyEpsilon)
	}

	return errors.Join(errs...)
}
