package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/chromsim/internal/md"
)

// Sample is what one evaluation pass reports.
type Sample struct {
	Step            int
	Time            float64
	Stage           string
	Energy          float64
	PackingReaction float64
	WallScale       float64
	CoreScale       float64
	BondScale       float64
	Semiaxes        md.Vec
	MaxForce        float64
}

func (s Sample) IsValid() bool {
	return !math.IsNaN(s.Energy) && !math.IsInf(s.Energy, 0) &&
		!math.IsNaN(s.PackingReaction) && !math.IsInf(s.PackingReaction, 0)
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(s Sample)
}

type Config struct {
	Steps         int
	Dt            float64
	Seed          int64
	AdaptWall     bool
	ValidateState bool
}

type Result struct {
	Samples     []Sample
	Metrics     map[string]float64
	StepsTaken  int
	EnergyDrift float64
	Errors      []error
}

// Final returns the last sample, or a zero sample for an empty result.
func (r *Result) Final() Sample {
	if len(r.Samples) == 0 {
		return Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}

// Series extracts one value per sample.
func (r *Result) Series(f func(Sample) float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = f(s)
	}
	return out
}

type SimError struct {
	Step    int
	Time    float64
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
