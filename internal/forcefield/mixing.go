package forcefield

// Compartment holds the A and B compartment weights of a particle. The two
// weights blend independent interaction channels; they need not sum to one.
type Compartment struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
}

// ParticleView is read-only access to per-particle compartment weights.
type ParticleView interface {
	Len() int
	At(i int) Compartment
}

// Compartments is a slice-backed ParticleView.
type Compartments []Compartment

func (c Compartments) Len() int             { return len(c) }
func (c Compartments) At(i int) Compartment { return c[i] }

// Mix blends two weight pairs by averaging each channel. It is symmetric.
func Mix(x, y Compartment) Compartment {
	return Compartment{
		A: 0.5 * (x.A + y.A),
		B: 0.5 * (x.B + y.B),
	}
}

func mixPair(view ParticleView, i, j int) Compartment {
	return Mix(view.At(i), view.At(j))
}
