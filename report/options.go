package report

// ============================================================================
// PIPELINE OPTIONS — Functional options for Run()
// ============================================================================

// RegionScope selects which rows feed the region map.
type RegionScope string

const (
	// ScopeFiltered maps the filtered view.
	ScopeFiltered RegionScope = "filtered"
	// ScopeAll maps the whole store and ignores the filter.
	ScopeAll RegionScope = "all"
)

// ParseRegionScope accepts "filtered" or "all"; anything else is filtered.
func ParseRegionScope(s string) RegionScope {
	if RegionScope(s) == ScopeAll {
		return ScopeAll
	}
	return ScopeFiltered
}

// Limits caps each ranked table. Zero means no limit.
type Limits struct {
	TopCategories int `json:"top-categories" mapstructure:"top-categories"`
	Reviews       int `json:"reviews" mapstructure:"reviews"`
	Sellers       int `json:"sellers" mapstructure:"sellers"`
	Payments      int `json:"payments" mapstructure:"payments"`
	Regions       int `json:"regions" mapstructure:"regions"`
}

// DefaultLimits are the table sizes of the original dashboard.
func DefaultLimits() Limits {
	return Limits{
		TopCategories: 10,
		Reviews:       10,
		Sellers:       10,
		Payments:      0,
		Regions:       20,
	}
}

// DefaultMaxRadius is the marker radius of the busiest region.
const DefaultMaxRadius = 20.0

// Option configures pipeline behavior via functional options pattern.
type Option func(*config)

type config struct {
	Limits      Limits
	MaxRadius   float64
	RegionScope RegionScope
}

// WithLimits replaces the table limits. Negative values are treated as 0.
func WithLimits(l Limits) Option {
	return func(c *config) {
		c.Limits = Limits{
			TopCategories: max(l.TopCategories, 0),
			Reviews:       max(l.Reviews, 0),
			Sellers:       max(l.Sellers, 0),
			Payments:      max(l.Payments, 0),
			Regions:       max(l.Regions, 0),
		}
	}
}

// WithMaxRadius sets the radius of the largest region marker.
func WithMaxRadius(r float64) Option {
	return func(c *config) {
		if r > 0 {
			c.MaxRadius = r
		}
	}
}

// WithRegionScope chooses whether the region map follows the filter.
func WithRegionScope(s RegionScope) Option {
	return func(c *config) {
		c.RegionScope = s
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Limits:      DefaultLimits(),
		MaxRadius:   DefaultMaxRadius,
		RegionScope: ScopeFiltered,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
