package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/chromsim/internal/forcefield"
	"github.com/san-kum/chromsim/internal/md"
	"github.com/san-kum/chromsim/internal/schedule"
)

// Simulator steps a compaction schedule over an assembled system. Each step
// advances the schedule, evaluates every registered forcefield and, when
// enabled, lets the wall controller respond to the packing reaction.
// Particles are not moved.
type Simulator struct {
	system      *md.System
	schedule    *schedule.Schedule
	forcefields *forcefield.Forcefields
	wall        *schedule.WallController
	metrics     []Metric
	observers   []Observer
	forces      []md.Vec
}

func New(system *md.System, sched *schedule.Schedule, ffs *forcefield.Forcefields) *Simulator {
	return &Simulator{
		system:      system,
		schedule:    sched,
		forcefields: ffs,
		metrics:     make([]Metric, 0),
		observers:   make([]Observer, 0),
		forces:      make([]md.Vec, system.ParticleCount()),
	}
}

func (s *Simulator) SetWallController(c *schedule.WallController) { s.wall = c }
func (s *Simulator) WallController() *schedule.WallController     { return s.wall }

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Samples: make([]Sample, 0, cfg.Steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	initial, err := s.evaluate(0, cfg)
	if err != nil {
		return nil, err
	}
	result.Samples = append(result.Samples, initial)

	last := initial
	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		sample, err := s.Step(i, cfg)
		if err != nil {
			return result, err
		}

		for _, m := range s.metrics {
			m.Observe(sample)
		}
		for _, obs := range s.observers {
			obs.OnSample(sample)
		}

		if cfg.ValidateState && !sample.IsValid() {
			result.Errors = append(result.Errors, SimError{Step: i, Time: sample.Time, Message: "invalid energy or reaction (NaN/Inf)"})
			break
		}

		result.StepsTaken++
		result.Samples = append(result.Samples, sample)
		last = sample
	}

	if initial.Energy != 0 {
		result.EnergyDrift = math.Abs(last.Energy-initial.Energy) / math.Abs(initial.Energy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	if cfg.AdaptWall && s.wall == nil {
		return fmt.Errorf("wall adaptation requested without a wall controller")
	}
	return nil
}

// evaluate runs one pass at the current schedule values and feeds the wall
// controller, whose new scale takes effect on the next pass.
func (s *Simulator) evaluate(step int, cfg Config) (Sample, error) {
	energy, err := s.system.Compute(s.forces)
	if err != nil {
		return Sample{}, fmt.Errorf("step %d: %w", step, err)
	}

	t := float64(step) * cfg.Dt
	values := s.schedule.Values()
	sample := Sample{
		Step:            step,
		Time:            t,
		Stage:           s.schedule.Stage(),
		Energy:          energy,
		PackingReaction: s.forcefields.PackingReaction(),
		WallScale:       s.schedule.WallScale(),
		CoreScale:       values.Core,
		BondScale:       values.Bond,
		Semiaxes:        s.schedule.WallSemiaxes(),
		MaxForce:        maxNorm(s.forces),
	}

	if cfg.AdaptWall && s.wall != nil {
		s.wall.Apply(s.schedule, sample.PackingReaction, t)
	}
	return sample, nil
}

func maxNorm(v []md.Vec) float64 {
	m := 0.0
	for _, f := range v {
		m = math.Max(m, f.Norm())
	}
	return m
}

// Step evaluates pass i: the schedule is advanced first unless i is 0.
// It is the building block for callers that drive the loop themselves.
func (s *Simulator) Step(i int, cfg Config) (Sample, error) {
	if i > 0 {
		s.schedule.Advance()
	}
	return s.evaluate(i, cfg)
}

// RunWithCallback evaluates cfg.Steps+1 passes, stopping early when
// callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Sample) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	for i := 0; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		sample, err := s.Step(i, cfg)
		if err != nil {
			return err
		}

		if !callback(sample) {
			return nil
		}

		if cfg.ValidateState && !sample.IsValid() {
			return fmt.Errorf("invalid sample at t=%.4f", sample.Time)
		}
	}

	return nil
}
