package metrics

import (
	"math"

	"github.com/san-kum/chromsim/internal/sim"
)

// Stability is the fraction of samples whose largest particle force stays
// below the threshold and whose energy is finite.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
	worst      float64
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x sim.Sample) {
	s.samples++
	if !x.IsValid() || math.IsNaN(x.MaxForce) || x.MaxForce > s.threshold {
		s.violations++
	}
	if x.MaxForce > s.worst {
		s.worst = x.MaxForce
	}
}

// Worst returns the largest particle force seen.
func (s *Stability) Worst() float64 { return s.worst }

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
	s.worst = 0
}
