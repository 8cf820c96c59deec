package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/chromsim/internal/forcefield"
	"github.com/san-kum/chromsim/internal/schedule"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, forcefield.DefaultParams(), cfg.Params)
	assert.Equal(t, DefaultChains*DefaultChainLength+2, cfg.Design.Particles)
	assert.Len(t, cfg.Design.Chains, DefaultChains)
	assert.Len(t, cfg.View(), cfg.Design.Particles)
	assert.Positive(t, cfg.Run.Dt)
	assert.Nil(t, cfg.WallController(), "wall adaptation is off by default")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := GetPreset("compaction", "gentle")
	require.NotNil(t, cfg)
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Params, loaded.Params)
	assert.Equal(t, cfg.Scaling, loaded.Scaling)
	assert.Equal(t, cfg.Design.Chains, loaded.Design.Chains)
	assert.Equal(t, cfg.Run, loaded.Run)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	yaml := `
params:
  nucleolus_droplet_energy: 4
scaling:
  core_scale: 0.5
  semiaxes: {x: 9, y: 7, z: 5}
  stages:
    - name: compact
      steps: 20
      target: {core_scale: 1, bond_scale: 1, semiaxes: {x: 6, y: 5, z: 4}}
run:
  adapt_wall: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 4.0, cfg.Params.NucleolusDropletEnergy)
	assert.Equal(t, forcefield.DefaultParams().ACoreDiameter, cfg.Params.ACoreDiameter)
	assert.Equal(t, 0.5, cfg.Scaling.Core)
	assert.Equal(t, 1.0, cfg.Scaling.Bond, "unset scale keeps its default")
	assert.Equal(t, 7.0, cfg.Scaling.Semiaxes.Y)
	require.Len(t, cfg.Scaling.Stages, 1)
	assert.Equal(t, 4.0, cfg.Scaling.Stages[0].Target.Semiaxes.Z)
	assert.NotNil(t, cfg.WallController())
	assert.Equal(t, DefaultSteps, cfg.TotalSteps())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"bad params", func(c *Config) { c.Params.BCoreDiameter = 0 }, forcefield.ErrInvalidParams},
		{"no particles", func(c *Config) { c.Design.Particles = 0 }, ErrInvalidConfig},
		{"chain out of range", func(c *Config) { c.Design.Particles = 10 }, forcefield.ErrIndexOutOfRange},
		{"compartment count", func(c *Config) {
			c.Design.Compartments = forcefield.Compartments{{A: 1}}
		}, forcefield.ErrViewSize},
		{"walk step", func(c *Config) { c.Design.WalkStep = 0 }, ErrInvalidConfig},
		{"bad stage", func(c *Config) {
			c.Scaling.Stages = []schedule.Stage{{Steps: 0}}
		}, schedule.ErrInvalidStage},
		{"zero core scale", func(c *Config) { c.Scaling.Core = 0 }, schedule.ErrInvalidScale},
		{"zero steps", func(c *Config) { c.Run.Steps = 0 }, ErrInvalidConfig},
		{"negative dt", func(c *Config) { c.Run.Dt = -1 }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestExplicitCompartments(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Design.Compartments = make(forcefield.Compartments, cfg.Design.Particles)
	for i := range cfg.Design.Compartments {
		cfg.Design.Compartments[i] = forcefield.Compartment{A: 0.3, B: 0.7}
	}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, forcefield.Compartment{A: 0.3, B: 0.7}, cfg.View().At(17))
}

func TestTotalStepsCoversSchedule(t *testing.T) {
	cfg := GetPreset("compaction", "gentle")
	require.NotNil(t, cfg)
	assert.Equal(t, 400, cfg.TotalSteps())
	assert.Equal(t, 400, cfg.SimConfig().Steps)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("nucleolus", "droplets")
	require.NotNil(t, cfg)
	assert.Equal(t, 5.0, cfg.Params.NucleolusDropletEnergy)

	assert.Nil(t, GetPreset("nucleolus", "nonexistent"))
	assert.Nil(t, GetPreset("nonexistent", "droplets"))
}

func TestPresetsAreValid(t *testing.T) {
	for _, group := range ListGroups() {
		for _, name := range ListPresets(group) {
			t.Run(group+"/"+name, func(t *testing.T) {
				assert.NoError(t, GetPreset(group, name).Validate())
			})
		}
	}
}

func TestListPresets(t *testing.T) {
	assert.Equal(t, []string{"ellipsoidal", "gentle", "rapid"}, ListPresets("compaction"))
	assert.Nil(t, ListPresets("nonexistent"))
	assert.Equal(t, []string{"compaction", "nucleolus", "static"}, ListGroups())
}
