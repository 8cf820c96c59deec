package metrics

import (
	"math"

	"github.com/san-kum/chromsim/internal/sim"
)

// Energy is the mean total potential energy over a run.
type Energy struct {
	name    string
	samples int
	sum     float64
	last    float64
}

func NewEnergy() *Energy {
	return &Energy{
		name: "energy",
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s sim.Sample) {
	e.sum += s.Energy
	e.last = s.Energy
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

// Last returns the energy of the most recent sample.
func (e *Energy) Last() float64 { return e.last }

func (e *Energy) Reset() {
	e.sum = 0
	e.last = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of the potential energy from
// the first observed sample.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s sim.Sample) {
	if e.samples == 0 {
		e.initial = s.Energy
	}
	e.samples++

	// Relative drift is undefined from a zero reference.
	if e.initial != 0 {
		drift := math.Abs(s.Energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
