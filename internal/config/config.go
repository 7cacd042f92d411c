// Package config provides the configuration schema and loader for the
// nav-planner service.
package config

// LogLevel controls log verbosity for the planner server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// LineOfSight selects how visibility between two points is tested.
type LineOfSight string

const (
	// SightSampled marches small probe circles along the segment.
	SightSampled LineOfSight = "sampled"

	// SightExact intersects the segment with the region's edges.
	SightExact LineOfSight = "exact"
)

// IsValid reports whether s is a recognised line-of-sight mode.
func (s LineOfSight) IsValid() bool {
	return s == SightSampled || s == SightExact
}

// Default values applied by [ApplyDefaults].
const (
	DefaultListenAddr       = ":8080"
	DefaultRegionsDir       = "regions"
	DefaultRateLimit        = 50
	DefaultRateBurst        = 100
	DefaultSightRadius      = 0.02
	DefaultSurfaceTolerance = 0.005
	DefaultMaxNodes         = 1000
)

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Navigation NavigationConfig `yaml:"navigation"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// RateLimit is the sustained number of route requests per second. Unset
	// means [DefaultRateLimit]; an explicit 0 disables limiting.
	RateLimit *float64 `yaml:"rate_limit"`

	// RateBurst is the token bucket size for route requests.
	RateBurst int `yaml:"rate_burst"`
}

// RouteRate returns the effective route rate limit.
func (s ServerConfig) RouteRate() float64 {
	if s.RateLimit == nil {
		return DefaultRateLimit
	}
	return *s.RateLimit
}

// NavigationConfig controls region loading and pathfinding.
type NavigationConfig struct {
	// RegionsDir is the directory scanned for *.geojson region files.
	RegionsDir string `yaml:"regions_dir"`

	// DefaultMesh names the mesh used when a request does not name one.
	// Empty selects the first mesh loaded.
	DefaultMesh string `yaml:"default_mesh"`

	LineOfSight LineOfSight `yaml:"line_of_sight"`

	// SightRadius is the probe radius of sampled line of sight.
	SightRadius float64 `yaml:"sight_radius"`

	// SurfaceTolerance is how far off the surface an endpoint may lie
	// before it is snapped onto the nearest edge.
	SurfaceTolerance float64 `yaml:"surface_tolerance"`

	// MaxNodes caps the visibility graph size. Queries over larger graphs
	// fall back to a direct path.
	MaxNodes int `yaml:"max_nodes"`

	// SimplifyEpsilon enables Douglas-Peucker simplification of loaded
	// rings when greater than zero.
	SimplifyEpsilon float64 `yaml:"simplify_epsilon"`
}
