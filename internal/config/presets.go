package config

import (
	"sort"

	"github.com/san-kum/vsrbench/internal/experiment"
	"github.com/san-kum/vsrbench/internal/sweep"
)

var scaffoldingSets = []any{
	"SIDE_EXTERNAL|SIDE_INTERNAL|SIDE_CROSS|CENTRAL_CROSS",
	"SIDE_EXTERNAL|SIDE_INTERNAL|CENTRAL_CROSS",
	"SIDE_EXTERNAL|SIDE_INTERNAL|SIDE_CROSS",
	"SIDE_EXTERNAL|CENTRAL_CROSS",
}

// Presets holds the benchmark campaigns. The quick variants keep the
// structure but shrink every axis so a run finishes in seconds.
var Presets = map[string]func() *Config{
	"locomotion": func() *Config {
		c := DefaultConfig()
		c.Episode = experiment.EpisodeLocomotion
		c.Shapes = nil
		for w := 15; w >= 3; w-- {
			c.Shapes = append(c.Shapes, experiment.Rect(w, 3).String())
		}
		c.Repetitions = 5
		c.Params = []sweep.Param{
			{Key: "settings.stepFrequency", Values: []any{0.015, 0.005, 0.01, 0.02, 0.025}},
			{Key: "builder.springScaffoldings", Values: scaffoldingSets},
		}
		return c
	},
	"locomotion-quick": func() *Config {
		c := DefaultConfig()
		c.Episode = experiment.EpisodeLocomotion
		c.Shapes = []string{"5x3", "3x3"}
		c.Repetitions = 1
		c.Locomotion.FinalT = 2
		c.Params = []sweep.Param{
			{Key: "settings.stepFrequency", Values: []any{0.015, 0.02}},
			{Key: "builder.springScaffoldings", Values: scaffoldingSets[:2]},
		}
		return c
	},
	"cantilever": func() *Config {
		c := DefaultConfig()
		c.Episode = experiment.EpisodeCantilever
		c.Shapes = []string{"15x4", "10x4", "20x4"}
		c.Repetitions = 1
		c.Params = []sweep.Param{
			{Key: "builder.springF", Values: []any{8, 4, 10, 15, 20, 25, 30}},
			{Key: "builder.springScaffoldings", Values: scaffoldingSets},
		}
		return c
	},
	"cantilever-quick": func() *Config {
		c := DefaultConfig()
		c.Episode = experiment.EpisodeCantilever
		c.Shapes = []string{"6x3"}
		c.Repetitions = 1
		c.Cantilever.FinalT = 2
		c.Params = []sweep.Param{
			{Key: "builder.springF", Values: []any{8, 20}},
		}
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
