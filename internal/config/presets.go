package config

import (
	"sort"

	"github.com/san-kum/chromsim/internal/md"
	"github.com/san-kum/chromsim/internal/schedule"
)

func preset(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

func sphere(r float64) md.Vec { return md.Vec{X: r, Y: r, Z: r} }

// Presets are grouped by protocol.
var Presets = map[string]map[string]*Config{
	"static": {
		"relaxed": preset(func(c *Config) {
			c.Run.Steps = 50
		}),
		"tight": preset(func(c *Config) {
			c.Scaling.Semiaxes = sphere(5)
			c.Run.Steps = 50
		}),
	},
	"compaction": {
		"gentle": preset(func(c *Config) {
			c.Scaling.Values = schedule.Values{Core: 0.3, Bond: 0.3, Semiaxes: sphere(12)}
			c.Scaling.Stages = []schedule.Stage{
				{Name: "swell", Steps: 100, Target: schedule.Values{Core: 1, Bond: 1, Semiaxes: sphere(12)}},
				{Name: "compact", Steps: 300, Target: schedule.Values{Core: 1, Bond: 1, Semiaxes: sphere(7)}},
			}
		}),
		"rapid": preset(func(c *Config) {
			c.Scaling.Values = schedule.Values{Core: 0.5, Bond: 0.5, Semiaxes: sphere(12)}
			c.Scaling.Stages = []schedule.Stage{
				{Name: "compact", Steps: 60, Target: schedule.Values{Core: 1, Bond: 1, Semiaxes: sphere(6)}},
			}
		}),
		"ellipsoidal": preset(func(c *Config) {
			c.Scaling.Values = schedule.Values{Core: 0.5, Bond: 0.5, Semiaxes: md.Vec{X: 14, Y: 10, Z: 10}}
			c.Scaling.Stages = []schedule.Stage{
				{Name: "swell", Steps: 50, Target: schedule.Values{Core: 1, Bond: 1, Semiaxes: md.Vec{X: 14, Y: 10, Z: 10}}},
				{Name: "flatten", Steps: 200, Target: schedule.Values{Core: 1, Bond: 1, Semiaxes: md.Vec{X: 10, Y: 8, Z: 5}}},
			}
		}),
	},
	"nucleolus": {
		"droplets": preset(func(c *Config) {
			c.Params.NucleolusDropletEnergy = 5
			c.Scaling.Stages = []schedule.Stage{
				{Name: "condense", Steps: 150, Target: schedule.Values{Core: 1, Bond: 1, Semiaxes: sphere(7)}},
			}
		}),
		"adaptive": preset(func(c *Config) {
			c.Params.NucleolusDropletEnergy = 5
			c.Run.AdaptWall = true
			c.Scaling.Stages = []schedule.Stage{
				{Name: "condense", Steps: 150, Target: schedule.Values{Core: 1, Bond: 1, Semiaxes: sphere(6)}},
			}
		}),
	},
}

func GetPreset(group, name string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	cfg, ok := groupPresets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListGroups returns the preset groups in sorted order.
func ListGroups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}
