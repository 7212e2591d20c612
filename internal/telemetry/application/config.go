package application

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	masterdataapp "plant-monitor/internal/masterdata/application"
	telemetry "plant-monitor/internal/telemetry/domain"
)

// Config is the plant definition file: signal profiles and the seed catalog.
type Config struct {
	// Profiles replace the built-in metric set of the named asset types.
	Profiles map[string][]telemetry.MetricDefinition `yaml:"profiles"`
	// Facilities replaces the built-in seed catalog when non-empty.
	Facilities []masterdataapp.FacilitySpec `yaml:"facilities"`
}

// LoadConfig reads the YAML file at path. An empty path yields the built-in defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("plant config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SignalModel merges the configured profiles over the default model.
func (c Config) SignalModel() telemetry.SignalModel {
	return telemetry.DefaultSignalModel().Merge(c.Profiles)
}

// Catalog returns the configured catalog, or the default one.
func (c Config) Catalog() []masterdataapp.FacilitySpec {
	if len(c.Facilities) == 0 {
		return masterdataapp.DefaultCatalog()
	}
	return c.Facilities
}

func (c Config) validate() error {
	for category, defs := range c.Profiles {
		if strings.TrimSpace(category) == "" {
			return fmt.Errorf("plant config: empty profile name")
		}
		seen := make(map[string]struct{}, len(defs))
		for _, def := range defs {
			if strings.TrimSpace(def.Name) == "" {
				return fmt.Errorf("plant config: profile %s: metric name required", category)
			}
			if _, ok := seen[def.Name]; ok {
				return fmt.Errorf("plant config: profile %s: duplicate metric %s", category, def.Name)
			}
			seen[def.Name] = struct{}{}
			if def.Noise < 0 {
				return fmt.Errorf("plant config: profile %s: metric %s: negative noise", category, def.Name)
			}
		}
	}
	for _, facility := range c.Facilities {
		if strings.TrimSpace(facility.Name) == "" {
			return fmt.Errorf("plant config: facility name required")
		}
	}
	return nil
}
