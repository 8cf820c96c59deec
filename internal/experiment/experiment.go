// Package experiment turns a run configuration into an assembled system
// and a simulator ready to step it.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/chromsim/internal/config"
	"github.com/san-kum/chromsim/internal/forcefield"
	"github.com/san-kum/chromsim/internal/md"
	"github.com/san-kum/chromsim/internal/metrics"
	"github.com/san-kum/chromsim/internal/schedule"
	"github.com/san-kum/chromsim/internal/sim"
	"github.com/san-kum/chromsim/internal/structure"
)

type Experiment struct {
	cfg         *config.Config
	system      *md.System
	schedule    *schedule.Schedule
	forcefields *forcefield.Forcefields
	simulator   *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup validates the configuration, generates the initial structure from
// seed and assembles the forcefields. A reaction_tracking metric is added
// whenever the wall controller is enabled.
func (e *Experiment) Setup(seed int64, ms []sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	sched, err := e.cfg.Schedule()
	if err != nil {
		return err
	}

	n := e.cfg.Design.Particles
	system := md.NewSystem(n)
	if e.cfg.Run.Workers > 0 {
		system.SetWorkers(e.cfg.Run.Workers)
	}

	axes := sched.WallSemiaxes()
	ellipsoid := md.Ellipsoid{SemiaxisX: axes.X, SemiaxisY: axes.Y, SemiaxisZ: axes.Z}
	gen := structure.NewGenerator(seed, ellipsoid, e.cfg.Design.WalkStep)
	pos, err := gen.Generate(n, e.cfg.Topology())
	if err != nil {
		return fmt.Errorf("initial structure: %w", err)
	}
	copy(system.Positions(), pos)

	asm := forcefield.NewAssembler(system, e.cfg.View(), e.cfg.Params, sched, e.cfg.Topology())
	ffs, err := asm.Assemble()
	if err != nil {
		return err
	}

	e.system = system
	e.schedule = sched
	e.forcefields = ffs
	e.simulator = sim.New(system, sched, ffs)
	wall := e.cfg.WallController()
	e.simulator.SetWallController(wall)
	for _, m := range ms {
		e.simulator.AddMetric(m)
	}
	if wall != nil {
		e.simulator.AddMetric(metrics.NewReactionTracking(wall.Target))
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.SimConfig())
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) System() *md.System                   { return e.system }
func (e *Experiment) Schedule() *schedule.Schedule         { return e.schedule }
func (e *Experiment) Forcefields() *forcefield.Forcefields { return e.forcefields }

// Factory returns an ensemble factory that sets up a fresh experiment per
// seed with the default metrics.
func Factory(cfg *config.Config, registry *Registry) sim.Factory {
	return func(seed int64) (*sim.Simulator, error) {
		exp := New(cfg)
		if err := exp.Setup(seed, registry.DefaultMetrics()); err != nil {
			return nil, err
		}
		return exp.GetSimulator(), nil
	}
}
