// Package config loads engine parameters from a YAML file the way
// reinforcement/learning.go's FromYaml does: viper reads the file into a
// loosely-typed outer envelope, which is re-marshaled and unmarshaled via
// yaml.v3 into the strongly typed EngineConfig. This indirection keeps
// viper's mapstructure tags out of the engine's own config type.
package config

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// OuterConfig is the envelope viper reads: "kind" names the automaton
// (e.g. "life"), "def" holds its parameters in whatever shape that
// automaton defines.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// EngineConfig holds the parameters spec.md's driver needs that are not
// part of the core: grid shape, boundary policy, checkpoint frequency,
// worker count, dashboard bind address, and the driver's generation
// cadence (the core itself never schedules; §1's Non-goals).
type EngineConfig struct {
	Rows                int    `yaml:"rows"`
	Cols                int    `yaml:"cols"`
	Boundary            string `yaml:"boundary"` // "toroidal" or "fixed"
	CheckpointFrequency int    `yaml:"checkpointFrequency"`
	Workers             int    `yaml:"workers"`
	DashboardAddr       string `yaml:"dashboardAddr"`
	TickInterval        string `yaml:"tickInterval"`
}

// FromYAML reads an EngineConfig from a YAML file at path, applying
// defaults for any field the file omits. Field values are not validated.
func FromYAML(path string) (*EngineConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outer := &OuterConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, err
	}

	spec, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, err
	}

	cfg := &EngineConfig{}
	if err := yaml.Unmarshal(spec, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *EngineConfig) applyDefaults() {
	if c.Rows == 0 {
		c.Rows = 40
	}
	if c.Cols == 0 {
		c.Cols = 80
	}
	if c.Boundary == "" {
		c.Boundary = "toroidal"
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.DashboardAddr == "" {
		c.DashboardAddr = ":8080"
	}
	if c.TickInterval == "" {
		c.TickInterval = "200ms"
	}
}

// TickDuration parses TickInterval, the driver's (not the core's) cadence
// between successive Universe.Step calls.
func (c *EngineConfig) TickDuration() (time.Duration, error) {
	return time.ParseDuration(c.TickInterval)
}
