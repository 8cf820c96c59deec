package forcefield

import "fmt"

// Params are the physical parameters of the model. Per-channel values are
// blended by compartment weights at evaluation time.
type Params struct {
	ACoreRepulsion float64 `yaml:"a_core_repulsion"`
	BCoreRepulsion float64 `yaml:"b_core_repulsion"`
	ACoreDiameter  float64 `yaml:"a_core_diameter"`
	BCoreDiameter  float64 `yaml:"b_core_diameter"`

	ACoreBondSpring float64 `yaml:"a_core_bond_spring"`
	BCoreBondSpring float64 `yaml:"b_core_bond_spring"`
	ACoreBondLength float64 `yaml:"a_core_bond_length"`
	BCoreBondLength float64 `yaml:"b_core_bond_length"`

	ACoreLoopSpring float64 `yaml:"a_core_loop_spring"`
	BCoreLoopSpring float64 `yaml:"b_core_loop_spring"`

	NucleolusBondSpring    float64 `yaml:"nucleolus_bond_spring"`
	NucleolusBondLength    float64 `yaml:"nucleolus_bond_length"`
	NucleolusDropletEnergy float64 `yaml:"nucleolus_droplet_energy"`
	NucleolusDropletDecay  float64 `yaml:"nucleolus_droplet_decay"`
	NucleolusDropletCutoff float64 `yaml:"nucleolus_droplet_cutoff"`

	WallFactor        Compartment `yaml:"wall_ab_factor"`
	WallPackingSpring float64     `yaml:"wall_packing_spring"`
}

// DefaultParams returns the reference parameter set.
func DefaultParams() Params {
	return Params{
		ACoreRepulsion: 2.0,
		BCoreRepulsion: 3.0,
		ACoreDiameter:  1.0,
		BCoreDiameter:  1.2,

		ACoreBondSpring: 100,
		BCoreBondSpring: 150,
		ACoreBondLength: 1.0,
		BCoreBondLength: 1.1,

		ACoreLoopSpring: 2.0,
		BCoreLoopSpring: 4.0,

		NucleolusBondSpring:    100,
		NucleolusBondLength:    1.0,
		NucleolusDropletEnergy: 0,
		NucleolusDropletDecay:  0.6,
		NucleolusDropletCutoff: 1.5,

		WallFactor:        Compartment{A: 1, B: 0},
		WallPackingSpring: 100,
	}
}

// Validate rejects negative energies and springs, non-positive core
// diameters, and an unusable droplet range when droplets are enabled.
func (p Params) Validate() error {
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"a_core_repulsion", p.ACoreRepulsion},
		{"b_core_repulsion", p.BCoreRepulsion},
		{"a_core_bond_spring", p.ACoreBondSpring},
		{"b_core_bond_spring", p.BCoreBondSpring},
		{"a_core_bond_length", p.ACoreBondLength},
		{"b_core_bond_length", p.BCoreBondLength},
		{"a_core_loop_spring", p.ACoreLoopSpring},
		{"b_core_loop_spring", p.BCoreLoopSpring},
		{"nucleolus_bond_spring", p.NucleolusBondSpring},
		{"nucleolus_bond_length", p.NucleolusBondLength},
		{"nucleolus_droplet_energy", p.NucleolusDropletEnergy},
		{"wall_packing_spring", p.WallPackingSpring},
	}
	for _, v := range nonNegative {
		if v.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %g", ErrInvalidParams, v.name, v.value)
		}
	}

	if p.ACoreDiameter <= 0 || p.BCoreDiameter <= 0 {
		return fmt.Errorf("%w: core diameters must be positive, got %g and %g",
			ErrInvalidParams, p.ACoreDiameter, p.BCoreDiameter)
	}

	if p.NucleolusDropletEnergy != 0 {
		if p.NucleolusDropletDecay <= 0 {
			return fmt.Errorf("%w: nucleolus_droplet_decay must be positive, got %g", ErrInvalidParams, p.NucleolusDropletDecay)
		}
		if p.NucleolusDropletCutoff <= 0 {
			return fmt.Errorf("%w: nucleolus_droplet_cutoff must be positive, got %g", ErrInvalidParams, p.NucleolusDropletCutoff)
		}
	}
	return nil
}
