package forcefield

import "github.com/san-kum/chromsim/internal/md"

// Scaling supplies scale factors that may change between evaluation passes.
// Implementations must return consistent values for the duration of one
// pass and be safe for concurrent reads.
type Scaling interface {
	// CoreScale multiplies particle core diameters.
	CoreScale() float64
	// BondScale multiplies bond lengths; spring constants scale by its
	// inverse square.
	BondScale() float64
	// WallSemiaxes are the semiaxes of the confining ellipsoid.
	WallSemiaxes() md.Vec
}

// StaticScaling is a Scaling whose values never change.
type StaticScaling struct {
	Core     float64
	Bond     float64
	Semiaxes md.Vec
}

func (s StaticScaling) CoreScale() float64   { return s.Core }
func (s StaticScaling) BondScale() float64   { return s.Bond }
func (s StaticScaling) WallSemiaxes() md.Vec { return s.Semiaxes }
