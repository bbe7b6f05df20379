package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/spektr-org/orderlens/report"
	"github.com/spektr-org/orderlens/schema"
)

// EnvPrefix prefixes every environment variable, e.g. ORDERLENS_LOG_LEVEL.
const EnvPrefix = "ORDERLENS"

// ErrNoInput is returned when neither files nor dir is configured.
var ErrNoInput = errors.New("missing required config field: files or dir")

// Config represents the application's configuration structure.
type Config struct {
	Files       []string      `json:"files" mapstructure:"files"`
	Dir         string        `json:"dir" mapstructure:"dir"`
	Start       string        `json:"start" mapstructure:"start"`
	End         string        `json:"end" mapstructure:"end"`
	Categories  []string      `json:"categories" mapstructure:"categories"`
	Format      string        `json:"format" mapstructure:"format"`
	Out         string        `json:"out" mapstructure:"out"`
	LogLevel    string        `json:"log-level" mapstructure:"log-level"`
	Limits      report.Limits `json:"limits" mapstructure:"limits"`
	MaxRadius   float64       `json:"max-radius" mapstructure:"max-radius"`
	RegionScope string        `json:"region-scope" mapstructure:"region-scope"`
	Interactive bool          `json:"interactive" mapstructure:"interactive"`
}

// field: default value
var optionalFields = map[string]interface{}{
	"files":                 []string{},
	"dir":                   "",
	"start":                 "",
	"end":                   "",
	"categories":            []string{},
	"format":                report.FormatJSON,
	"out":                   "",
	"log-level":             "INFO",
	"limits.top-categories": report.DefaultLimits().TopCategories,
	"limits.reviews":        report.DefaultLimits().Reviews,
	"limits.sellers":        report.DefaultLimits().Sellers,
	"limits.payments":       report.DefaultLimits().Payments,
	"limits.regions":        report.DefaultLimits().Regions,
	"max-radius":            report.DefaultMaxRadius,
	"region-scope":          string(report.ScopeFiltered),
	"interactive":           false,
}

// flagKeys maps flag names that differ from their config key.
var flagKeys = map[string]string{
	"top-categories": "limits.top-categories",
	"reviews":        "limits.reviews",
	"sellers":        "limits.sellers",
	"payments":       "limits.payments",
	"regions":        "limits.regions",
}

// RegisterFlags declares the command-line flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := report.DefaultLimits()
	fs.String("config", "", "Path to a JSON or YAML config file")
	fs.StringSliceP("file", "f", nil, "Joined order CSV (repeatable)")
	fs.String("dir", "", "Directory holding the raw marketplace tables")
	fs.String("start", "", "First purchase day, YYYY-MM-DD (default: earliest in data)")
	fs.String("end", "", "Last purchase day, YYYY-MM-DD (default: latest in data)")
	fs.StringSliceP("category", "c", nil, "Restrict to product category (repeatable)")
	fs.String("format", report.FormatJSON, "Output format: "+strings.Join(report.Formats, ", "))
	fs.StringP("out", "o", "", "Write output to file instead of stdout")
	fs.String("log-level", "INFO", "Log level: DEBUG, INFO, WARNING, ERROR")
	fs.Int("top-categories", d.TopCategories, "Rows in the top categories table (0 = all)")
	fs.Int("reviews", d.Reviews, "Rows in each review ranking (0 = all)")
	fs.Int("sellers", d.Sellers, "Rows in the best sellers table (0 = all)")
	fs.Int("payments", d.Payments, "Rows in the payment methods table (0 = all)")
	fs.Int("regions", d.Regions, "Rows in the top regions table (0 = all)")
	fs.Float64("max-radius", report.DefaultMaxRadius, "Marker radius of the busiest region")
	fs.String("region-scope", string(report.ScopeFiltered), "Region map source: filtered or all")
	fs.BoolP("interactive", "i", false, "Read filter commands from stdin")
}

// Load reads configuration from defaults, an optional config file,
// environment variables and flags, each overriding the previous.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	for field, defaultValue := range optionalFields {
		v.SetDefault(field, defaultValue)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key := f.Name
		switch {
		case flagKeys[key] != "":
			key = flagKeys[key]
		case key == "file":
			key = "files"
		case key == "category":
			key = "categories"
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil && err == nil {
			err = fmt.Errorf("could not bind flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}

// Validate checks the fields Load cannot default.
func (c *Config) Validate() error {
	if len(c.Files) == 0 && c.Dir == "" {
		return ErrNoInput
	}
	if len(c.Files) > 0 && c.Dir != "" {
		return errors.New("files and dir are mutually exclusive")
	}
	if !slices.Contains(report.Formats, c.Format) {
		return fmt.Errorf("invalid format %q (want one of %s)", c.Format, strings.Join(report.Formats, ", "))
	}
	if _, err := c.StartDate(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if _, err := c.EndDate(); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if c.RegionScope != string(report.ScopeFiltered) && c.RegionScope != string(report.ScopeAll) {
		return fmt.Errorf("invalid region-scope %q (want filtered or all)", c.RegionScope)
	}
	return nil
}

// StartDate parses Start. Empty is the zero time.
func (c *Config) StartDate() (time.Time, error) { return schema.ParseDate(c.Start) }

// EndDate parses End. Empty is the zero time.
func (c *Config) EndDate() (time.Time, error) { return schema.ParseDate(c.End) }

// Options converts the report settings into pipeline options.
func (c *Config) Options() []report.Option {
	return []report.Option{
		report.WithLimits(c.Limits),
		report.WithMaxRadius(c.MaxRadius),
		report.WithRegionScope(report.ParseRegionScope(c.RegionScope)),
	}
}
