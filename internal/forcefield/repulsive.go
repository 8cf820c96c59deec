package forcefield

import (
	"fmt"
	"math"

	"github.com/san-kum/chromsim/internal/md"
)

// General A/B-type particle repulsions.
func (a *Assembler) addRepulsive() error {
	maxDiameter := math.Max(a.params.ACoreDiameter, a.params.BCoreDiameter)
	if d := maxDiameter * a.scaling.CoreScale(); !(d > 0) {
		return fmt.Errorf("%w: got %g", ErrNeighborDistance, d)
	}

	ff := md.NewNeighborPairwise(func(i, j int) md.Potential {
		w := mixPair(a.view, i, j)
		return coreRepulsion(a.params, w, a.scaling.CoreScale())
	}).SetNeighborDistanceFunc(func() float64 {
		return maxDiameter * a.scaling.CoreScale()
	})

	a.stage(ff)
	a.result.Repulsive = ff
	return nil
}

// coreRepulsion blends the A and B soft cores with core diameters scaled
// by scale.
func coreRepulsion(p Params, w Compartment, scale float64) md.Potential {
	aPotential := md.SoftcorePotential{
		P: 2, Q: 3,
		Energy:   p.ACoreRepulsion,
		Diameter: p.ACoreDiameter * scale,
	}
	bPotential := md.SoftcorePotential{
		P: 8, Q: 3,
		Energy:   p.BCoreRepulsion,
		Diameter: p.BCoreDiameter * scale,
	}
	return md.Combine(w.A, aPotential, w.B, bPotential)
}
