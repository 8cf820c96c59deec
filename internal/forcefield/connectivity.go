package forcefield

import "github.com/san-kum/chromsim/internal/md"

// Chromosome polymer connectivity.
func (a *Assembler) addConnectivity() error {
	ff := md.NewBondedPairwise(func(i, j int) md.Potential {
		w := mixPair(a.view, i, j)

		// Bond parameters depend on the types of the bonded cores; mix them
		// when the types differ.
		k := w.A*a.params.ACoreBondSpring + w.B*a.params.BCoreBondSpring
		l := w.A*a.params.ACoreBondLength + w.B*a.params.BCoreBondLength

		s := a.scaling.BondScale()
		return md.SemispringPotential{
			SpringConstant:      scaleSpring(k, s),
			EquilibriumDistance: l * s,
		}
	})

	for _, chain := range a.topology.Chains {
		ff.AddBondedRange(chain.Start, chain.End)
	}
	if err := a.checkPairs(ff.BondedPairs()); err != nil {
		return err
	}

	a.stage(ff)
	a.result.Connectivity = ff
	return nil
}

// scaleSpring rescales a spring constant for bond lengths multiplied by s.
// K is an inverse variance of the bond fluctuation, so it goes with 1/s^2.
func scaleSpring(k, s float64) float64 {
	return k * (1 / (s * s))
}
