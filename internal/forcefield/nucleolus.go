package forcefield

import (
	"fmt"

	"github.com/san-kum/chromsim/internal/md"
)

// dropletSteepness is the exponent of the nucleolar soft well.
const dropletSteepness = 6

// Nucleolar particles attached to active organizers, and the attraction
// that condenses them into droplets.
func (a *Assembler) addNucleolus() error {
	bonds := md.NewBondedPairwise(func(int, int) md.Potential {
		s := a.scaling.BondScale()
		return md.SemispringPotential{
			SpringConstant:      scaleSpring(a.params.NucleolusBondSpring, s),
			EquilibriumDistance: a.params.NucleolusBondLength * s,
		}
	})
	for _, b := range a.topology.NucleolarBonds {
		bonds.AddBondedPair(b.Organizer, b.Nucleolus)
	}
	if err := a.checkPairs(bonds.BondedPairs()); err != nil {
		return err
	}
	a.stage(bonds)
	a.result.NucleolarBonds = bonds

	// Droplet attraction is expensive to evaluate, so it is registered only
	// when its energy is nonzero.
	if a.params.NucleolusDropletEnergy == 0 {
		return nil
	}

	cutoff := a.params.NucleolusDropletCutoff
	if !(cutoff > 0) {
		return fmt.Errorf("%w: droplet cutoff %g", ErrNeighborDistance, cutoff)
	}

	nucleolarParticles := make([]int, 0, len(a.topology.NucleolarBonds))
	for _, b := range a.topology.NucleolarBonds {
		nucleolarParticles = append(nucleolarParticles, b.Nucleolus)
	}

	droplet := md.NewNeighborPairwise(md.UniformPair(
		md.ApplyCutoff(md.SoftwellPotential{
			P:             dropletSteepness,
			Energy:        a.params.NucleolusDropletEnergy,
			DecayDistance: a.params.NucleolusDropletDecay,
		}, cutoff),
	)).
		SetNeighborDistance(cutoff).
		SetNeighborTargets(nucleolarParticles)

	a.stage(droplet)
	a.result.Droplet = droplet
	return nil
}
