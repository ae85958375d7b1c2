package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	sfs "github.com/tingold/orb-sfs"
	"github.com/tingold/orb-sfs/orbengine"
)

// Config holds the demo server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Geometry GeometryConfig `mapstructure:"geometry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	// MaxBody limits request bodies, in bytes.
	MaxBody int64 `mapstructure:"max_body"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GeometryConfig struct {
	Backend   string  `mapstructure:"backend"`
	SRID      int     `mapstructure:"srid"`
	Layout    string  `mapstructure:"layout"`
	Precision float64 `mapstructure:"precision"`
	Extended  bool    `mapstructure:"extended_wkb"`
	// Tolerance configures the orb engine's Equals.
	Tolerance float64 `mapstructure:"tolerance"`
}

// FactoryOptions maps the geometry section onto factory options.
func (g GeometryConfig) FactoryOptions() (*sfs.Options, error) {
	opts := sfs.DefaultOptions()
	opts.SRID = g.SRID
	opts.Precision = g.Precision
	opts.ExtendedWKB = g.Extended
	opts.Engine = orbengine.New(&orbengine.Options{Tolerance: g.Tolerance})

	switch strings.ToLower(g.Backend) {
	case "", "auto":
		opts.Backend = sfs.BackendAuto
	case "native":
		opts.Backend = sfs.BackendNative
	case "fallback":
		opts.Backend = sfs.BackendFallback
	default:
		return nil, fmt.Errorf("unknown backend %q", g.Backend)
	}

	switch strings.ToUpper(g.Layout) {
	case "", "XY":
		opts.Layout = sfs.XY
	case "XYZ":
		opts.Layout = sfs.XYZ
	case "XYM":
		opts.Layout = sfs.XYM
	case "XYZM":
		opts.Layout = sfs.XYZM
	default:
		return nil, fmt.Errorf("unknown layout %q", g.Layout)
	}

	return opts, nil
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.max_body", 10<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("geometry.backend", "auto")
	v.SetDefault("geometry.srid", 4326)
	v.SetDefault("geometry.layout", "XY")
	v.SetDefault("geometry.precision", 0)
	v.SetDefault("geometry.extended_wkb", false)
	v.SetDefault("geometry.tolerance", orbengine.DefaultOptions().Tolerance)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SFS_GEOMETRY_SRID → geometry.srid
	v.SetEnvPrefix("SFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.MaxBody <= 0 {
		errs = append(errs, "server.max_body must be positive")
	}
	if c.Geometry.SRID < 0 {
		errs = append(errs, fmt.Sprintf("geometry.srid must not be negative, got %d", c.Geometry.SRID))
	}
	if c.Geometry.Precision < 0 {
		errs = append(errs, "geometry.precision must not be negative")
	}
	if c.Geometry.Tolerance < 0 {
		errs = append(errs, "geometry.tolerance must not be negative")
	}
	if _, err := c.Geometry.FactoryOptions(); err != nil {
		errs = append(errs, "geometry: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
