package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/dronedispatch/core/dispatch"
	"github.com/kilianp07/dronedispatch/core/energy"
	"github.com/kilianp07/dronedispatch/core/facility"
	"github.com/kilianp07/dronedispatch/core/metrics"
	"github.com/kilianp07/dronedispatch/core/planner"
)

// EnvPrefix marks environment overrides, e.g. DD_DISPATCH__RESERVE_KWH.
const EnvPrefix = "DD_"

type Config struct {
	Logging  LoggingConfig   `json:"logging"`
	Dispatch dispatch.Config `json:"dispatch"`
	Planner  planner.Config  `json:"planner"`
	Energy   energy.Model    `json:"energy"`
	Metrics  metrics.Config  `json:"metrics"`
	Sentry   SentryConfig    `json:"sentry"`
	Facility facility.Layout `json:"facility"`
	Fleet    FleetConfig     `json:"fleet"`
}

// Load reads path, applies DD_ environment overrides, fills defaults and
// validates every section. An empty path loads defaults and env only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section. The fleet is placed on the facility, so
// the facility defaults first.
func (c *Config) SetDefaults() {
	c.Logging.SetDefaults()
	c.Dispatch.SetDefaults()
	c.Planner.SetDefaults()
	c.Energy.SetDefaults()
	if c.Facility.Empty() {
		c.Facility = facility.HospitalLayout()
	}
	c.Fleet.SetDefaults(c.Facility)
}

func (c Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Dispatch.Validate(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	if err := c.Planner.Validate(); err != nil {
		return fmt.Errorf("planner: %w", err)
	}
	if err := c.Energy.Validate(); err != nil {
		return fmt.Errorf("energy: %w", err)
	}
	if err := c.Facility.Validate(); err != nil {
		return fmt.Errorf("facility: %w", err)
	}
	if err := c.Fleet.Validate(c.Facility); err != nil {
		return fmt.Errorf("fleet: %w", err)
	}
	return nil
}
