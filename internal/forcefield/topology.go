package forcefield

import (
	"fmt"
	"sort"
)

// Chain is the half-open particle range [Start, End) of one polymer.
type Chain struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Len is the number of particles in the chain; zero when End <= Start.
func (c Chain) Len() int {
	if c.End <= c.Start {
		return 0
	}
	return c.End - c.Start
}

// NucleolarBond links a nucleolus organizer particle on a chain to a
// nucleolus particle. Pairs may repeat either side.
type NucleolarBond struct {
	Organizer int `yaml:"organizer"`
	Nucleolus int `yaml:"nucleolus"`
}

// Topology lists the chains and nucleolar bonds of a system.
type Topology struct {
	Chains         []Chain         `yaml:"chains"`
	NucleolarBonds []NucleolarBond `yaml:"nucleolar_bonds"`
}

// Validate checks every index against a system of n particles and that
// non-empty chains do not overlap. Empty chains are accepted.
func (t Topology) Validate(n int) error {
	chains := make([]Chain, 0, len(t.Chains))
	for _, c := range t.Chains {
		if c.Len() == 0 {
			continue
		}
		if c.Start < 0 || c.End > n {
			return fmt.Errorf("%w: chain [%d, %d) with %d particles", ErrIndexOutOfRange, c.Start, c.End, n)
		}
		chains = append(chains, c)
	}

	sort.Slice(chains, func(i, j int) bool { return chains[i].Start < chains[j].Start })
	for i := 1; i < len(chains); i++ {
		if chains[i].Start < chains[i-1].End {
			return fmt.Errorf("%w: [%d, %d) and [%d, %d)", ErrOverlappingChains,
				chains[i-1].Start, chains[i-1].End, chains[i].Start, chains[i].End)
		}
	}

	for _, b := range t.NucleolarBonds {
		if !inRange(b.Organizer, n) || !inRange(b.Nucleolus, n) {
			return fmt.Errorf("%w: nucleolar bond (%d, %d) with %d particles", ErrIndexOutOfRange, b.Organizer, b.Nucleolus, n)
		}
	}
	return nil
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
