// Package config loads sweep configurations from YAML and resolves them into
// the plan and episode values the engine runs.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/experiment"
	"github.com/san-kum/vsrbench/internal/physics"
	"github.com/san-kum/vsrbench/internal/sim"
	"github.com/san-kum/vsrbench/internal/sweep"
)

const (
	DefaultLocomotionRepetitions = 5
	DefaultCantileverRepetitions = 1
)

type Config struct {
	Episode      string           `yaml:"episode" json:"episode"`
	Shapes       []string         `yaml:"shapes" json:"shapes"`
	Params       []sweep.Param    `yaml:"params,omitempty" json:"params,omitempty"`
	Repetitions  int              `yaml:"repetitions,omitempty" json:"repetitions,omitempty"`
	Workers      int              `yaml:"workers,omitempty" json:"workers,omitempty"`
	Settings     dynamo.Settings  `yaml:"settings" json:"settings"`
	Material     physics.Material `yaml:"material" json:"material"`
	Scaffoldings string           `yaml:"scaffoldings" json:"scaffoldings"`
	Locomotion   LocomotionConfig `yaml:"locomotion" json:"locomotion"`
	Cantilever   CantileverConfig `yaml:"cantilever" json:"cantilever"`
	Output       OutputConfig     `yaml:"output" json:"output"`
	LogLevel     string           `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

type LocomotionConfig struct {
	FinalT      float64 `yaml:"final_t" json:"final_t"`
	HillsHeight float64 `yaml:"hills_height" json:"hills_height"`
	Frequency   float64 `yaml:"frequency" json:"frequency"`
	Hills       int     `yaml:"hills" json:"hills"`
	Length      float64 `yaml:"length" json:"length"`
	Seed        int64   `yaml:"seed" json:"seed"`
}

type CantileverConfig struct {
	Force         float64 `yaml:"force" json:"force"`
	ForceDuration float64 `yaml:"force_duration" json:"force_duration"`
	FinalT        float64 `yaml:"final_t" json:"final_t"`
	Epsilon       float64 `yaml:"epsilon" json:"epsilon"`
}

// OutputConfig names the result sinks; empty Results means stdout and empty
// Evolution disables the time-evolution table.
type OutputConfig struct {
	Results   string `yaml:"results,omitempty" json:"results,omitempty"`
	Evolution string `yaml:"evolution,omitempty" json:"evolution,omitempty"`
}

func DefaultConfig() *Config {
	loc := sim.DefaultLocomotion()
	cant := sim.DefaultCantilever()
	return &Config{
		Episode:      experiment.EpisodeLocomotion,
		Shapes:       []string{"5x3"},
		Settings:     dynamo.DefaultSettings(),
		Material:     physics.DefaultMaterial(),
		Scaffoldings: physics.AllScaffoldings.String(),
		Locomotion: LocomotionConfig{
			FinalT:      loc.FinalT,
			HillsHeight: loc.HillsHeight,
			Frequency:   loc.Frequency,
			Hills:       loc.Hills,
			Length:      loc.Length,
			Seed:        loc.Seed,
		},
		Cantilever: CantileverConfig{
			Force:         cant.Force,
			ForceDuration: cant.ForceDuration,
			FinalT:        cant.FinalT,
			Epsilon:       cant.Epsilon,
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file on top of DefaultConfig. Unknown keys are errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the document against the embedded schema, then checks the
// values the schema cannot express. Param keys are not checked here: a value
// that fails to bind is logged when the plan is built and the trial runs on
// the baseline.
func (c *Config) Validate() error {
	if err := validateSchema(c); err != nil {
		return err
	}
	if _, err := c.ParsedShapes(); err != nil {
		return err
	}
	m, err := c.ResolvedMaterial()
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) ParsedShapes() ([]experiment.Shape, error) {
	shapes := make([]experiment.Shape, 0, len(c.Shapes))
	for _, s := range c.Shapes {
		shape, err := experiment.ParseShape(s)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		shapes = append(shapes, shape)
	}
	return shapes, nil
}

// ResolvedMaterial is Material with the scaffolding list applied.
func (c *Config) ResolvedMaterial() (physics.Material, error) {
	m := c.Material
	s, err := physics.ParseScaffolding(c.Scaffoldings)
	if err != nil {
		return m, fmt.Errorf("config: scaffoldings: %w", err)
	}
	m.Scaffoldings = s
	return m, nil
}

// EffectiveRepetitions falls back to the episode default when unset.
func (c *Config) EffectiveRepetitions() int {
	if c.Repetitions > 0 {
		return c.Repetitions
	}
	if c.Episode == experiment.EpisodeCantilever {
		return DefaultCantileverRepetitions
	}
	return DefaultLocomotionRepetitions
}

func (c *Config) PlanConfig() (sweep.PlanConfig, error) {
	shapes, err := c.ParsedShapes()
	if err != nil {
		return sweep.PlanConfig{}, err
	}
	m, err := c.ResolvedMaterial()
	if err != nil {
		return sweep.PlanConfig{}, err
	}
	return sweep.PlanConfig{
		Episode:     c.Episode,
		Shapes:      shapes,
		Params:      c.Params,
		Repetitions: c.EffectiveRepetitions(),
		Settings:    c.Settings,
		Material:    m,
	}, nil
}

func (c *Config) LocomotionEpisode() sim.Locomotion {
	return sim.Locomotion{
		FinalT:      c.Locomotion.FinalT,
		HillsHeight: c.Locomotion.HillsHeight,
		Frequency:   c.Locomotion.Frequency,
		Hills:       c.Locomotion.Hills,
		Length:      c.Locomotion.Length,
		Seed:        c.Locomotion.Seed,
		Settings:    c.Settings,
	}
}

func (c *Config) CantileverEpisode() sim.Cantilever {
	return sim.Cantilever{
		Force:         c.Cantilever.Force,
		ForceDuration: c.Cantilever.ForceDuration,
		FinalT:        c.Cantilever.FinalT,
		Epsilon:       c.Cantilever.Epsilon,
		Settings:      c.Settings,
	}
}
