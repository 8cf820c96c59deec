package forcefield

import (
	"fmt"

	"github.com/san-kum/chromsim/internal/md"
)

// Assembler builds the chromosome forcefields and registers them on a
// system. It is used once, before the simulation starts.
type Assembler struct {
	system   *md.System
	view     ParticleView
	params   Params
	scaling  Scaling
	topology Topology

	staged    []md.Forcefield
	result    *Forcefields
	reaction  func() float64
	assembled bool
}

func NewAssembler(system *md.System, view ParticleView, params Params, scaling Scaling, topology Topology) *Assembler {
	return &Assembler{
		system:   system,
		view:     view,
		params:   params,
		scaling:  scaling,
		topology: topology,
	}
}

// Forcefields are the forcefields registered by Assemble.
type Forcefields struct {
	Repulsive      *md.NeighborPairwiseForcefield
	Connectivity   *md.BondedPairwiseForcefield
	Loop           *md.BondedPairwiseForcefield
	NucleolarBonds *md.BondedPairwiseForcefield
	// Droplet is nil when the droplet energy is zero.
	Droplet *md.NeighborPairwiseForcefield
	Inward  *md.EllipsoidInwardForcefield
	Outward *md.EllipsoidOutwardForcefield

	packingReaction func() float64
}

// PackingReaction returns the current sum of the inward and outward axial
// reactions of the membrane.
func (f *Forcefields) PackingReaction() float64 {
	return f.packingReaction()
}

// NucleolarParticles returns the droplet target set, or nil when no
// droplet forcefield was registered.
func (f *Forcefields) NucleolarParticles() []int {
	if f.Droplet == nil {
		return nil
	}
	return f.Droplet.Targets()
}

// All returns the forcefields in registration order.
func (f *Forcefields) All() []md.Forcefield {
	all := []md.Forcefield{f.Repulsive, f.Connectivity, f.Loop, f.NucleolarBonds}
	if f.Droplet != nil {
		all = append(all, f.Droplet)
	}
	return append(all, f.Inward, f.Outward)
}

// Assemble runs the builders in the order repulsive, connectivity, loop,
// nucleolus, membrane. Forcefields are registered only when every builder
// succeeds.
func (a *Assembler) Assemble() (*Forcefields, error) {
	if a.assembled {
		return nil, ErrAlreadyAssembled
	}
	if err := a.params.Validate(); err != nil {
		return nil, &SetupError{Builder: "params", Err: err}
	}
	n := a.system.ParticleCount()
	if a.view.Len() != n {
		return nil, &SetupError{
			Builder: "particles",
			Err:     fmt.Errorf("%w: %d weights for %d particles", ErrViewSize, a.view.Len(), n),
		}
	}
	if err := a.topology.Validate(n); err != nil {
		return nil, &SetupError{Builder: "topology", Err: err}
	}

	a.staged = nil
	a.result = &Forcefields{}

	builders := []struct {
		name  string
		build func() error
	}{
		{"repulsive", a.addRepulsive},
		{"connectivity", a.addConnectivity},
		{"loop", a.addLoops},
		{"nucleolus", a.addNucleolus},
		{"membrane", a.addMembrane},
	}
	for _, b := range builders {
		if err := b.build(); err != nil {
			a.staged = nil
			return nil, &SetupError{Builder: b.name, Err: err}
		}
	}

	for _, ff := range a.staged {
		a.system.AddForcefield(ff)
	}
	a.result.packingReaction = a.reaction
	a.assembled = true
	return a.result, nil
}

func (a *Assembler) stage(ff md.Forcefield) {
	a.staged = append(a.staged, ff)
}

func (a *Assembler) checkPairs(pairs []md.IndexPair) error {
	n := a.view.Len()
	for _, p := range pairs {
		if !inRange(p.I, n) || !inRange(p.J, n) {
			return fmt.Errorf("%w: bond (%d, %d) with %d particles", ErrIndexOutOfRange, p.I, p.J, n)
		}
	}
	return nil
}
