package md

// Potential gives the energy and force of an interaction as a function of
// the displacement r = x_i - x_j. The force is the one acting on i; j feels
// the opposite.
type Potential interface {
	EvaluateEnergy(r Vec) float64
	EvaluateForce(r Vec) Vec
}

// radialForce turns dU/dr of a central potential into a force vector.
func radialForce(r Vec, dudr float64) Vec {
	d := r.Norm()
	if d == 0 {
		return Vec{}
	}
	return r.Scale(-dudr / d)
}

func powi(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}

// SoftcorePotential is a finite repulsion
//
//	U(r) = Energy * (1 - (r/Diameter)^P)^Q   (r < Diameter)
//
// and zero beyond the diameter. Larger P makes the core steeper.
type SoftcorePotential struct {
	P, Q     int
	Energy   float64
	Diameter float64
}

func (p SoftcorePotential) EvaluateEnergy(r Vec) float64 {
	d := r.Norm()
	if d >= p.Diameter {
		return 0
	}
	return p.Energy * powi(1-powi(d/p.Diameter, p.P), p.Q)
}

func (p SoftcorePotential) EvaluateForce(r Vec) Vec {
	d := r.Norm()
	if d >= p.Diameter || p.P == 0 || p.Q == 0 {
		return Vec{}
	}
	x := d / p.Diameter
	g := 1 - powi(x, p.P)
	dudr := -p.Energy * float64(p.Q*p.P) * powi(g, p.Q-1) * powi(x, p.P-1) / p.Diameter
	return radialForce(r, dudr)
}

// SemispringPotential is a spring that only pulls: it is slack while the
// distance is below EquilibriumDistance and harmonic beyond it.
type SemispringPotential struct {
	SpringConstant      float64
	EquilibriumDistance float64
}

func (p SemispringPotential) EvaluateEnergy(r Vec) float64 {
	d := r.Norm()
	if d <= p.EquilibriumDistance {
		return 0
	}
	s := d - p.EquilibriumDistance
	return 0.5 * p.SpringConstant * s * s
}

func (p SemispringPotential) EvaluateForce(r Vec) Vec {
	d := r.Norm()
	if d <= p.EquilibriumDistance {
		return Vec{}
	}
	return radialForce(r, p.SpringConstant*(d-p.EquilibriumDistance))
}

// HarmonicPotential is U(r) = K/2 |r|^2.
type HarmonicPotential struct {
	SpringConstant float64
}

func (p HarmonicPotential) EvaluateEnergy(r Vec) float64 {
	return 0.5 * p.SpringConstant * r.NormSquared()
}

func (p HarmonicPotential) EvaluateForce(r Vec) Vec {
	return r.Scale(-p.SpringConstant)
}

// SoftwellPotential is a smooth attractive well
//
//	U(r) = -Energy / (1 + (r/DecayDistance)^P)
type SoftwellPotential struct {
	P             int
	Energy        float64
	DecayDistance float64
}

func (p SoftwellPotential) EvaluateEnergy(r Vec) float64 {
	x := r.Norm() / p.DecayDistance
	return -p.Energy / (1 + powi(x, p.P))
}

func (p SoftwellPotential) EvaluateForce(r Vec) Vec {
	if p.P == 0 {
		return Vec{}
	}
	x := r.Norm() / p.DecayDistance
	den := 1 + powi(x, p.P)
	dudr := p.Energy * float64(p.P) * powi(x, p.P-1) / (p.DecayDistance * den * den)
	return radialForce(r, dudr)
}

// CutoffPotential truncates a potential to zero at and beyond Distance.
type CutoffPotential struct {
	Potential Potential
	Distance  float64
}

// ApplyCutoff wraps p so that it vanishes beyond the given distance.
func ApplyCutoff(p Potential, distance float64) CutoffPotential {
	return CutoffPotential{Potential: p, Distance: distance}
}

func (p CutoffPotential) EvaluateEnergy(r Vec) float64 {
	if r.NormSquared() >= p.Distance*p.Distance {
		return 0
	}
	return p.Potential.EvaluateEnergy(r)
}

func (p CutoffPotential) EvaluateForce(r Vec) Vec {
	if r.NormSquared() >= p.Distance*p.Distance {
		return Vec{}
	}
	return p.Potential.EvaluateForce(r)
}

// CombinedPotential is the linear combination CoeffA*A + CoeffB*B.
type CombinedPotential struct {
	CoeffA float64
	A      Potential
	CoeffB float64
	B      Potential
}

// Combine returns a*pa + b*pb.
func Combine(a float64, pa Potential, b float64, pb Potential) CombinedPotential {
	return CombinedPotential{CoeffA: a, A: pa, CoeffB: b, B: pb}
}

func (p CombinedPotential) EvaluateEnergy(r Vec) float64 {
	return p.CoeffA*p.A.EvaluateEnergy(r) + p.CoeffB*p.B.EvaluateEnergy(r)
}

func (p CombinedPotential) EvaluateForce(r Vec) Vec {
	return p.A.EvaluateForce(r).Scale(p.CoeffA).Add(p.B.EvaluateForce(r).Scale(p.CoeffB))
}

// compile-time checks
var (
	_ Potential = SoftcorePotential{}
	_ Potential = SemispringPotential{}
	_ Potential = HarmonicPotential{}
	_ Potential = SoftwellPotential{}
	_ Potential = CutoffPotential{}
	_ Potential = CombinedPotential{}
)
