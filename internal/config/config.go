package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chromsim/internal/forcefield"
	"github.com/san-kum/chromsim/internal/md"
	"github.com/san-kum/chromsim/internal/schedule"
	"github.com/san-kum/chromsim/internal/sim"
	"github.com/san-kum/chromsim/internal/structure"
)

const (
	DefaultDt             = 1.0
	DefaultSteps          = 200
	DefaultChains         = 4
	DefaultChainLength    = 50
	DefaultBlockSize      = 10
	DefaultWalkStep       = 0.6
	DefaultSemiaxis       = 8.0
	DefaultTargetReaction = 50.0
	DefaultKp             = 0.002
	DefaultKi             = 0.0001
	DefaultKd             = 0.0
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Params  forcefield.Params `yaml:"params"`
	Design  DesignConfig      `yaml:"design"`
	Scaling ScalingConfig     `yaml:"scaling"`
	Run     RunConfig         `yaml:"run"`
}

// DesignConfig describes the particles and how they are connected.
// Compartments, when given, override the block assignment.
type DesignConfig struct {
	Particles      int                        `yaml:"particles"`
	Chains         []forcefield.Chain         `yaml:"chains"`
	NucleolarBonds []forcefield.NucleolarBond `yaml:"nucleolar_bonds"`
	Compartments   forcefield.Compartments    `yaml:"compartments,omitempty"`
	BlockSize      int                        `yaml:"block_size"`
	WalkStep       float64                    `yaml:"walk_step"`
}

type ScalingConfig struct {
	schedule.Values `yaml:",inline"`
	Stages          []schedule.Stage `yaml:"stages"`
}

type RunConfig struct {
	Steps          int     `yaml:"steps"`
	Dt             float64 `yaml:"dt"`
	Seed           int64   `yaml:"seed"`
	Workers        int     `yaml:"workers"`
	AdaptWall      bool    `yaml:"adapt_wall"`
	TargetReaction float64 `yaml:"target_reaction"`
	Kp             float64 `yaml:"kp"`
	Ki             float64 `yaml:"ki"`
	Kd             float64 `yaml:"kd"`
	ValidateState  bool    `yaml:"validate_state"`
}

func DefaultConfig() *Config {
	axes := md.Vec{X: DefaultSemiaxis, Y: DefaultSemiaxis, Z: DefaultSemiaxis}
	n := DefaultChains * DefaultChainLength
	return &Config{
		Params: forcefield.DefaultParams(),
		Design: DesignConfig{
			Particles: n + 2,
			Chains:    structure.UniformChains(DefaultChains, DefaultChainLength),
			NucleolarBonds: []forcefield.NucleolarBond{
				{Organizer: DefaultChainLength / 2, Nucleolus: n},
				{Organizer: 2*DefaultChainLength + DefaultChainLength/2, Nucleolus: n + 1},
			},
			BlockSize: DefaultBlockSize,
			WalkStep:  DefaultWalkStep,
		},
		Scaling: ScalingConfig{
			Values: schedule.Values{Core: 1, Bond: 1, Semiaxes: axes},
		},
		Run: RunConfig{
			Steps:          DefaultSteps,
			Dt:             DefaultDt,
			TargetReaction: DefaultTargetReaction,
			Kp:             DefaultKp,
			Ki:             DefaultKi,
			Kd:             DefaultKd,
			ValidateState:  true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
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

func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if c.Design.Particles <= 0 {
		return fmt.Errorf("%w: particles must be positive, got %d", ErrInvalidConfig, c.Design.Particles)
	}
	if err := c.Topology().Validate(c.Design.Particles); err != nil {
		return err
	}
	if len(c.Design.Compartments) > 0 && len(c.Design.Compartments) != c.Design.Particles {
		return fmt.Errorf("%w: %d compartments for %d particles", forcefield.ErrViewSize, len(c.Design.Compartments), c.Design.Particles)
	}
	if !(c.Design.WalkStep > 0) {
		return fmt.Errorf("%w: walk_step must be positive", ErrInvalidConfig)
	}
	if _, err := c.Schedule(); err != nil {
		return err
	}
	if c.Run.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, c.Run.Steps)
	}
	if c.Run.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, c.Run.Dt)
	}
	return nil
}

func (c *Config) Topology() forcefield.Topology {
	return forcefield.Topology{
		Chains:         c.Design.Chains,
		NucleolarBonds: c.Design.NucleolarBonds,
	}
}

// View returns the per-particle compartment weights.
func (c *Config) View() forcefield.Compartments {
	if len(c.Design.Compartments) > 0 {
		return c.Design.Compartments
	}
	return structure.BlockCompartments(c.Design.Particles, c.Design.BlockSize)
}

// Schedule builds a fresh schedule from the scaling section.
func (c *Config) Schedule() (*schedule.Schedule, error) {
	return schedule.New(c.Scaling.Values, c.Scaling.Stages)
}

// WallController returns nil unless wall adaptation is enabled.
func (c *Config) WallController() *schedule.WallController {
	if !c.Run.AdaptWall {
		return nil
	}
	return schedule.NewWallController(c.Run.Kp, c.Run.Ki, c.Run.Kd, c.Run.TargetReaction)
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Steps:         c.TotalSteps(),
		Dt:            c.Run.Dt,
		Seed:          c.Run.Seed,
		AdaptWall:     c.Run.AdaptWall,
		ValidateState: c.Run.ValidateState,
	}
}

// TotalSteps is the run length, extended to cover the whole schedule.
func (c *Config) TotalSteps() int {
	total := 0
	for _, st := range c.Scaling.Stages {
		total += st.Steps
	}
	return max(total, c.Run.Steps)
}
