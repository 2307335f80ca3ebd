// Package config loads analyzer settings from YAML files.
//
// A file only needs the keys it changes; everything else keeps its
// default value:
//
//	weights:
//	  blot_exposure: 2.5
//	analysis:
//	  num_simulations: 200
//	  policy: random
//	  timeout: 10s
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/bgadvisor/pkg/api"
	"github.com/yourusername/bgadvisor/pkg/engine"
)

// Config is the root of a configuration file.
type Config struct {
	Weights   engine.Weights      `yaml:"weights"`
	Engine    EngineConfig        `yaml:"engine"`
	Analysis  AnalysisConfig      `yaml:"analysis"`
	Admission api.AdmissionConfig `yaml:"admission"`
}

// EngineConfig holds engine wide limits.
type EngineConfig struct {
	MaxSimulationBudget int64 `yaml:"max_simulation_budget"`
	Workers             int   `yaml:"workers"`
	CacheSize           int   `yaml:"cache_size"` // negative disables the factor cache
}

// AnalysisConfig holds the defaults of analysis requests.
type AnalysisConfig struct {
	MaxTopMoves     int           `yaml:"max_top_moves"`
	NumSimulations  int           `yaml:"num_simulations"`
	HeuristicWeight float64       `yaml:"heuristic_weight"`
	MCWeight        float64       `yaml:"mc_weight"`
	MaxMoves        int           `yaml:"max_moves"`
	Seed            int64         `yaml:"seed"`
	Policy          string        `yaml:"policy"`
	Timeout         time.Duration `yaml:"timeout"`
	QueueTimeout    time.Duration `yaml:"queue_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	eo := engine.DefaultEngineOptions()
	d := api.DefaultDefaults()
	return Config{
		Weights: eo.Weights,
		Engine: EngineConfig{
			MaxSimulationBudget: eo.MaxSimulationBudget,
			Workers:             eo.Workers,
			CacheSize:           eo.CacheSize,
		},
		Analysis: AnalysisConfig{
			MaxTopMoves:     d.MaxTopMoves,
			NumSimulations:  d.NumSimulations,
			HeuristicWeight: d.HeuristicWeight,
			MCWeight:        d.MCWeight,
			MaxMoves:        d.MaxMoves,
			Seed:            d.Seed,
			Policy:          string(d.Policy),
		},
		Admission: api.DefaultAdmissionConfig(),
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if _, err := engine.ParsePolicy(c.Analysis.Policy); err != nil {
		return err
	}
	a := c.Analysis
	if a.MaxTopMoves < 0 || a.NumSimulations < 0 || a.MaxMoves < 0 || a.HeuristicWeight < 0 || a.MCWeight < 0 {
		return fmt.Errorf("%w: negative analysis default", engine.ErrInvalidOptions)
	}
	if c.Engine.MaxSimulationBudget < 0 {
		return fmt.Errorf("%w: negative simulation budget", engine.ErrInvalidOptions)
	}
	return nil
}

// EngineOptions returns the engine options of the configuration.
func (c Config) EngineOptions() engine.EngineOptions {
	return engine.EngineOptions{
		Weights:             c.Weights,
		MaxSimulationBudget: c.Engine.MaxSimulationBudget,
		Workers:             c.Engine.Workers,
		CacheSize:           c.Engine.CacheSize,
	}
}

// Defaults returns the request defaults of the configuration.
func (c Config) Defaults() api.Defaults {
	policy, _ := engine.ParsePolicy(c.Analysis.Policy)
	return api.Defaults{
		MaxTopMoves:     c.Analysis.MaxTopMoves,
		NumSimulations:  c.Analysis.NumSimulations,
		HeuristicWeight: c.Analysis.HeuristicWeight,
		MCWeight:        c.Analysis.MCWeight,
		MaxMoves:        c.Analysis.MaxMoves,
		Seed:            c.Analysis.Seed,
		Policy:          policy,
		Timeout:         c.Analysis.Timeout,
		QueueTimeout:    c.Analysis.QueueTimeout,
	}
}

// Marshal encodes the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
