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

	"github.com/kilianp07/pca-scheduler/core/metrics"
	"github.com/kilianp07/pca-scheduler/core/model"
	"github.com/kilianp07/pca-scheduler/core/scheduler"
	"github.com/kilianp07/pca-scheduler/infra/mqtt"
	"github.com/kilianp07/pca-scheduler/pkg/render"
)

// EnvPrefix marks environment variables that override file settings.
// PCA_GENERATOR__MAX_WORKERS=12 sets generator.max_workers.
const EnvPrefix = "PCA_"

type Config struct {
	Calendar  CalendarConfig   `json:"calendar"`
	Generator scheduler.Config `json:"generator"`
	Render    render.Options   `json:"render"`
	Logging   LoggingConfig    `json:"logging"`
	Metrics   metrics.Config   `json:"metrics"`
	Publish   mqtt.Config      `json:"publish"`
}

// CalendarConfig is the month planned when neither the roster nor the
// command line names one.
type CalendarConfig struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// SetDefaults applies model.DefaultPeriod.
func (c *CalendarConfig) SetDefaults() {
	if c.Month == 0 {
		c.Month = int(model.DefaultPeriod.Month)
	}
	if c.Year == 0 {
		c.Year = model.DefaultPeriod.Year
	}
}

// Period converts the settings into a model.Period.
func (c CalendarConfig) Period() (model.Period, error) {
	return model.NewPeriod(c.Month, c.Year)
}

// Load reads the configuration file at path, applies PCA_ environment
// overrides, fills defaults and validates the result. An empty path loads
// defaults and environment only.
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

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Calendar.SetDefaults()
	c.Generator.SetDefaults()
	c.Render.SetDefaults()
	c.Logging.SetDefaults()
	c.Publish.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := c.Calendar.Period(); err != nil {
		return fmt.Errorf("calendar: %w", err)
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	if err := c.Render.Validate(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Publish.Validate(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
