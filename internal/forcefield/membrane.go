package forcefield

import (
	"github.com/san-kum/chromsim/internal/md"
)

type statsSource interface {
	Stats() md.Stats
}

// Confinement into the nuclear membrane.
func (a *Assembler) addMembrane() error {
	ellipsoid := func() md.Ellipsoid {
		axes := a.scaling.WallSemiaxes()
		return md.Ellipsoid{
			SemiaxisX: axes.X,
			SemiaxisY: axes.Y,
			SemiaxisZ: axes.Z,
		}
	}

	// A smaller particle can get closer to the wall than a larger one, so
	// the inner membrane is aware of particle type. The wall is a single
	// surface, hence half the core diameters.
	inward := md.NewEllipsoidInward(func(i int) md.Potential {
		w := Mix(a.view.At(i), a.params.WallFactor)
		return coreRepulsion(a.params, w, 0.5*a.scaling.CoreScale())
	}).SetEllipsoid(ellipsoid)

	// Fluctuations can still carry particles through the wall; this pulls
	// them back.
	outward := md.NewEllipsoidOutward(md.HarmonicPotential{
		SpringConstant: a.params.WallPackingSpring,
	}).SetEllipsoid(ellipsoid)

	a.stage(inward)
	a.stage(outward)
	a.result.Inward = inward
	a.result.Outward = outward
	a.reaction = packingReaction(inward, outward)
	return nil
}

func packingReaction(inward, outward statsSource) func() float64 {
	return func() float64 {
		return inward.Stats().AxialReaction + outward.Stats().AxialReaction
	}
}
