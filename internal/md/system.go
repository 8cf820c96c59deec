package md

import "runtime"

// minParallelMembers is the pair-set size below which neighbor evaluation
// stays on the calling goroutine.
const minParallelMembers = 64

// System owns particle positions and the ordered list of registered
// forcefields. The total force on a particle is the sum over forcefields.
type System struct {
	positions   []Vec
	forcefields []Forcefield
	workers     int
}

func NewSystem(n int) *System {
	return &System{
		positions: make([]Vec, n),
		workers:   runtime.NumCPU(),
	}
}

func (s *System) ParticleCount() int { return len(s.positions) }

// Positions returns the position slice itself; callers may move particles
// between Compute calls.
func (s *System) Positions() []Vec { return s.positions }

// SetWorkers bounds the number of goroutines used by neighbor evaluation.
func (s *System) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	s.workers = n
}

func (s *System) AddForcefield(ff Forcefield) {
	s.forcefields = append(s.forcefields, ff)
}

func (s *System) Forcefields() []Forcefield {
	return append([]Forcefield(nil), s.forcefields...)
}

// Compute evaluates every forcefield in registration order. forces is
// zeroed and filled when non-nil. It returns the total potential energy.
func (s *System) Compute(forces []Vec) (float64, error) {
	if forces != nil {
		if len(forces) != len(s.positions) {
			return 0, ErrForceBuffer
		}
		for i := range forces {
			forces[i] = Vec{}
		}
	}

	total := 0.0
	for idx, ff := range s.forcefields {
		energy, err := ff.Compute(s, forces)
		if err != nil {
			return 0, &EvaluationError{Index: idx, Kind: ff.Kind(), Wrapped: err}
		}
		total += energy
	}
	return total, nil
}

// ComputeEnergy evaluates the total potential energy without forces.
func (s *System) ComputeEnergy() (float64, error) {
	return s.Compute(nil)
}

// Energies evaluates each forcefield separately, in registration order.
func (s *System) Energies() ([]float64, error) {
	energies := make([]float64, len(s.forcefields))
	for idx, ff := range s.forcefields {
		energy, err := ff.Compute(s, nil)
		if err != nil {
			return nil, &EvaluationError{Index: idx, Kind: ff.Kind(), Wrapped: err}
		}
		energies[idx] = energy
	}
	return energies, nil
}
