package forcefield

import "github.com/san-kum/chromsim/internal/md"

// Mean-field intra-domain loops: every particle is tied to the one two
// positions further along its chain.
func (a *Assembler) addLoops() error {
	ff := md.NewBondedPairwise(func(i, j int) md.Potential {
		w := mixPair(a.view, i, j)
		k := w.A*a.params.ACoreLoopSpring + w.B*a.params.BCoreLoopSpring
		return md.HarmonicPotential{
			SpringConstant: scaleSpring(k, a.scaling.BondScale()),
		}
	})

	for _, chain := range a.topology.Chains {
		for i := chain.Start; i+2 < chain.End; i++ {
			ff.AddBondedPair(i, i+2)
		}
	}
	if err := a.checkPairs(ff.BondedPairs()); err != nil {
		return err
	}

	a.stage(ff)
	a.result.Loop = ff
	return nil
}
