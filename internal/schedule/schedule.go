// Package schedule drives the scale values seen by the chromosome
// forcefields during a compaction run.
//
// A [Schedule] starts from initial values and moves through a list of
// stages, each a linear ramp to new targets. It implements
// [forcefield.Scaling], so forcefield closures read the current values
// directly:
//
//	sched, _ := schedule.New(schedule.Values{Core: 0.5, Bond: 0.5, Semiaxes: axes}, stages)
//	asm := forcefield.NewAssembler(system, view, params, sched, topo)
//	for !sched.Done() {
//		sched.Advance()
//		system.Compute(forces)
//	}
//
// A [WallController] rescales the wall between passes from the measured
// packing reaction.
package schedule

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/chromsim/internal/forcefield"
	"github.com/san-kum/chromsim/internal/md"
)

var (
	ErrInvalidStage = errors.New("schedule: invalid stage")
	ErrInvalidScale = errors.New("schedule: scale values must be positive")
)

// Values are the scale values at one point of a schedule.
type Values struct {
	Core     float64 `yaml:"core_scale"`
	Bond     float64 `yaml:"bond_scale"`
	Semiaxes md.Vec  `yaml:"semiaxes"`
}

func (v Values) validate() error {
	if !(v.Core > 0) || !(v.Bond > 0) {
		return fmt.Errorf("%w: core %g, bond %g", ErrInvalidScale, v.Core, v.Bond)
	}
	if !(v.Semiaxes.X > 0) || !(v.Semiaxes.Y > 0) || !(v.Semiaxes.Z > 0) {
		return fmt.Errorf("%w: semiaxes %+v", ErrInvalidScale, v.Semiaxes)
	}
	return nil
}

func lerp(a, b Values, frac float64) Values {
	mix := func(x, y float64) float64 { return x + (y-x)*frac }
	return Values{
		Core: mix(a.Core, b.Core),
		Bond: mix(a.Bond, b.Bond),
		Semiaxes: md.Vec{
			X: mix(a.Semiaxes.X, b.Semiaxes.X),
			Y: mix(a.Semiaxes.Y, b.Semiaxes.Y),
			Z: mix(a.Semiaxes.Z, b.Semiaxes.Z),
		},
	}
}

// Stage ramps linearly from the previous values to Target over Steps steps.
type Stage struct {
	Name   string `yaml:"name"`
	Steps  int    `yaml:"steps"`
	Target Values `yaml:"target"`
}

// Schedule is safe for concurrent reads. Advance and SetWallScale should
// only be called between evaluation passes.
type Schedule struct {
	mu        sync.RWMutex
	initial   Values
	stages    []Stage
	current   Values
	step      int
	total     int
	wallScale float64
}

func New(initial Values, stages []Stage) (*Schedule, error) {
	if err := initial.validate(); err != nil {
		return nil, err
	}
	total := 0
	for i, st := range stages {
		if st.Steps <= 0 {
			return nil, fmt.Errorf("%w: stage %d has %d steps", ErrInvalidStage, i, st.Steps)
		}
		if err := st.Target.validate(); err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		total += st.Steps
	}

	s := &Schedule{
		initial:   initial,
		stages:    append([]Stage(nil), stages...),
		current:   initial,
		total:     total,
		wallScale: 1,
	}
	return s, nil
}

// Static returns a schedule with no stages that holds v forever.
func Static(v Values) (*Schedule, error) {
	return New(v, nil)
}

// Advance moves the schedule one step forward and returns the new values.
// Past the last stage the final values are held.
func (s *Schedule) Advance() Values {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step < s.total {
		s.step++
	}
	s.current = s.valuesAt(s.step)
	return s.current
}

func (s *Schedule) valuesAt(step int) Values {
	from := s.initial
	for _, st := range s.stages {
		if step < st.Steps {
			return lerp(from, st.Target, float64(step)/float64(st.Steps))
		}
		step -= st.Steps
		from = st.Target
	}
	return from
}

// Stage returns the name of the stage the schedule is in, or "" when all
// stages are complete. A stage spans its first Steps steps; on the step
// that reaches its target the next stage has begun.
func (s *Schedule) Stage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	step := s.step
	for _, st := range s.stages {
		if step < st.Steps {
			return st.Name
		}
		step -= st.Steps
	}
	return ""
}

func (s *Schedule) Step() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step
}

func (s *Schedule) TotalSteps() int { return s.total }

func (s *Schedule) Done() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step >= s.total
}

// Values returns the current values without the wall scale applied.
func (s *Schedule) Values() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Schedule) CoreScale() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Core
}

func (s *Schedule) BondScale() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Bond
}

// WallSemiaxes returns the scheduled semiaxes multiplied by the wall scale.
func (s *Schedule) WallSemiaxes() md.Vec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Semiaxes.Scale(s.wallScale)
}

func (s *Schedule) WallScale() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallScale
}

// SetWallScale sets the factor applied to the scheduled semiaxes.
// Non-positive and non-finite factors are ignored.
func (s *Schedule) SetWallScale(f float64) {
	if !(f > 0) || math.IsInf(f, 0) {
		return
	}
	s.mu.Lock()
	s.wallScale = f
	s.mu.Unlock()
}

var _ forcefield.Scaling = (*Schedule)(nil)
