package config

import (
	"fmt"

	"gopkg.in/gcfg.v1"

	"github.com/san-kum/chromsim/internal/forcefield"
)

// ParamsTemplate is an example INI parameter file for LoadParams.
const ParamsTemplate = `[Params]
# Soft-core repulsion energies and diameters of A and B particles.
a-core-repulsion = 2
b-core-repulsion = 3
a-core-diameter  = 1.0
b-core-diameter  = 1.2

# Backbone bonds, acting only beyond the bond length.
a-core-bond-spring = 100
b-core-bond-spring = 150
a-core-bond-length = 1.0
b-core-bond-length = 1.1

# Second-neighbor bending springs.
a-core-loop-spring = 2
b-core-loop-spring = 4

# Nucleolar bonds and droplet attraction. A zero droplet energy disables
# the droplet forcefield.
nucleolus-bond-spring    = 100
nucleolus-bond-length    = 1.0
nucleolus-droplet-energy = 0
nucleolus-droplet-decay  = 0.6
nucleolus-droplet-cutoff = 1.5

# Compartment weights of the membrane and the spring on escaped particles.
wall-a-factor = 1
wall-b-factor = 0
wall-packing-spring = 100`

type paramsSection struct {
	ACoreRepulsion float64 `gcfg:"a-core-repulsion"`
	BCoreRepulsion float64 `gcfg:"b-core-repulsion"`
	ACoreDiameter  float64 `gcfg:"a-core-diameter"`
	BCoreDiameter  float64 `gcfg:"b-core-diameter"`

	ACoreBondSpring float64 `gcfg:"a-core-bond-spring"`
	BCoreBondSpring float64 `gcfg:"b-core-bond-spring"`
	ACoreBondLength float64 `gcfg:"a-core-bond-length"`
	BCoreBondLength float64 `gcfg:"b-core-bond-length"`

	ACoreLoopSpring float64 `gcfg:"a-core-loop-spring"`
	BCoreLoopSpring float64 `gcfg:"b-core-loop-spring"`

	NucleolusBondSpring    float64 `gcfg:"nucleolus-bond-spring"`
	NucleolusBondLength    float64 `gcfg:"nucleolus-bond-length"`
	NucleolusDropletEnergy float64 `gcfg:"nucleolus-droplet-energy"`
	NucleolusDropletDecay  float64 `gcfg:"nucleolus-droplet-decay"`
	NucleolusDropletCutoff float64 `gcfg:"nucleolus-droplet-cutoff"`

	WallAFactor       float64 `gcfg:"wall-a-factor"`
	WallBFactor       float64 `gcfg:"wall-b-factor"`
	WallPackingSpring float64 `gcfg:"wall-packing-spring"`
}

type paramsWrapper struct {
	Params paramsSection
}

func defaultParamsWrapper() *paramsWrapper {
	return &paramsWrapper{fromParams(forcefield.DefaultParams())}
}

func fromParams(p forcefield.Params) paramsSection {
	return paramsSection{
		ACoreRepulsion:         p.ACoreRepulsion,
		BCoreRepulsion:         p.BCoreRepulsion,
		ACoreDiameter:          p.ACoreDiameter,
		BCoreDiameter:          p.BCoreDiameter,
		ACoreBondSpring:        p.ACoreBondSpring,
		BCoreBondSpring:        p.BCoreBondSpring,
		ACoreBondLength:        p.ACoreBondLength,
		BCoreBondLength:        p.BCoreBondLength,
		ACoreLoopSpring:        p.ACoreLoopSpring,
		BCoreLoopSpring:        p.BCoreLoopSpring,
		NucleolusBondSpring:    p.NucleolusBondSpring,
		NucleolusBondLength:    p.NucleolusBondLength,
		NucleolusDropletEnergy: p.NucleolusDropletEnergy,
		NucleolusDropletDecay:  p.NucleolusDropletDecay,
		NucleolusDropletCutoff: p.NucleolusDropletCutoff,
		WallAFactor:            p.WallFactor.A,
		WallBFactor:            p.WallFactor.B,
		WallPackingSpring:      p.WallPackingSpring,
	}
}

func (s paramsSection) params() forcefield.Params {
	return forcefield.Params{
		ACoreRepulsion:         s.ACoreRepulsion,
		BCoreRepulsion:         s.BCoreRepulsion,
		ACoreDiameter:          s.ACoreDiameter,
		BCoreDiameter:          s.BCoreDiameter,
		ACoreBondSpring:        s.ACoreBondSpring,
		BCoreBondSpring:        s.BCoreBondSpring,
		ACoreBondLength:        s.ACoreBondLength,
		BCoreBondLength:        s.BCoreBondLength,
		ACoreLoopSpring:        s.ACoreLoopSpring,
		BCoreLoopSpring:        s.BCoreLoopSpring,
		NucleolusBondSpring:    s.NucleolusBondSpring,
		NucleolusBondLength:    s.NucleolusBondLength,
		NucleolusDropletEnergy: s.NucleolusDropletEnergy,
		NucleolusDropletDecay:  s.NucleolusDropletDecay,
		NucleolusDropletCutoff: s.NucleolusDropletCutoff,
		WallFactor:             forcefield.Compartment{A: s.WallAFactor, B: s.WallBFactor},
		WallPackingSpring:      s.WallPackingSpring,
	}
}

// LoadParams reads forcefield parameters from an INI file with a single
// [Params] section. Variables left out keep their default values.
func LoadParams(fname string) (forcefield.Params, error) {
	wrap := defaultParamsWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return forcefield.Params{}, err
	}
	p := wrap.Params.params()
	if err := p.Validate(); err != nil {
		return forcefield.Params{}, err
	}
	return p, nil
}

// ParseParams is LoadParams for an in-memory file.
func ParseParams(text string) (forcefield.Params, error) {
	wrap := defaultParamsWrapper()
	if err := gcfg.ReadStringInto(wrap, text); err != nil {
		return forcefield.Params{}, err
	}
	p := wrap.Params.params()
	if err := p.Validate(); err != nil {
		return forcefield.Params{}, err
	}
	return p, nil
}

func (s *paramsSection) fields() []paramField {
	return []paramField{
		{"a-core-repulsion", &s.ACoreRepulsion},
		{"b-core-repulsion", &s.BCoreRepulsion},
		{"a-core-diameter", &s.ACoreDiameter},
		{"b-core-diameter", &s.BCoreDiameter},
		{"a-core-bond-spring", &s.ACoreBondSpring},
		{"b-core-bond-spring", &s.BCoreBondSpring},
		{"a-core-bond-length", &s.ACoreBondLength},
		{"b-core-bond-length", &s.BCoreBondLength},
		{"a-core-loop-spring", &s.ACoreLoopSpring},
		{"b-core-loop-spring", &s.BCoreLoopSpring},
		{"nucleolus-bond-spring", &s.NucleolusBondSpring},
		{"nucleolus-bond-length", &s.NucleolusBondLength},
		{"nucleolus-droplet-energy", &s.NucleolusDropletEnergy},
		{"nucleolus-droplet-decay", &s.NucleolusDropletDecay},
		{"nucleolus-droplet-cutoff", &s.NucleolusDropletCutoff},
		{"wall-a-factor", &s.WallAFactor},
		{"wall-b-factor", &s.WallBFactor},
		{"wall-packing-spring", &s.WallPackingSpring},
	}
}

type paramField struct {
	name  string
	value *float64
}

// ParamNames lists the parameter file variables in file order.
func ParamNames() []string {
	var s paramsSection
	fields := s.fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

// ParamValue reads one parameter by its file variable name.
func ParamValue(p forcefield.Params, name string) (float64, error) {
	s := fromParams(p)
	for _, f := range s.fields() {
		if f.name == name {
			return *f.value, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown parameter %q", ErrInvalidConfig, name)
}

// SetParam returns p with one parameter replaced. The result is not
// validated.
func SetParam(p forcefield.Params, name string, v float64) (forcefield.Params, error) {
	s := fromParams(p)
	for _, f := range s.fields() {
		if f.name == name {
			*f.value = v
			return s.params(), nil
		}
	}
	return p, fmt.Errorf("%w: unknown parameter %q", ErrInvalidConfig, name)
}
