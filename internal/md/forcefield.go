package md

import "sync"

type Kind int

const (
	KindNeighborPairwise Kind = iota
	KindBondedPairwise
	KindEllipsoidInward
	KindEllipsoidOutward
)

func (k Kind) String() string {
	switch k {
	case KindNeighborPairwise:
		return "neighbor_pairwise"
	case KindBondedPairwise:
		return "bonded_pairwise"
	case KindEllipsoidInward:
		return "ellipsoid_inward"
	case KindEllipsoidOutward:
		return "ellipsoid_outward"
	}
	return "unknown"
}

// Stats holds the runtime statistics a forcefield accumulates during its
// last Compute call.
type Stats struct {
	// AxialReaction is the net force the particles exert on a confining
	// surface along its outward normal. Zero for pairwise forcefields.
	AxialReaction float64

	// Interactions counts the pairs or particles that contributed.
	Interactions int
}

// Forcefield is a force-generating unit registered on a System. Compute adds
// its forces into forces (which may be nil for an energy-only pass) and
// returns its potential energy.
type Forcefield interface {
	Kind() Kind
	Compute(s *System, forces []Vec) (float64, error)
	Stats() Stats
}

// PairPotentialFunc picks the potential acting between particles i and j.
type PairPotentialFunc func(i, j int) Potential

// PointPotentialFunc picks the potential acting on particle i.
type PointPotentialFunc func(i int) Potential

// UniformPair returns a pair function that ignores particle identity.
func UniformPair(p Potential) PairPotentialFunc {
	return func(int, int) Potential { return p }
}

// UniformPoint returns a per-particle function that ignores particle identity.
func UniformPoint(p Potential) PointPotentialFunc {
	return func(int) Potential { return p }
}

// NeighborPairwiseForcefield evaluates a pair potential for every pair of
// particles closer than the neighbor distance.
type NeighborPairwiseForcefield struct {
	potential  PairPotentialFunc
	distance   func() float64
	targets    []int
	hasTargets bool
	stats      Stats
}

func NewNeighborPairwise(potential PairPotentialFunc) *NeighborPairwiseForcefield {
	return &NeighborPairwiseForcefield{
		potential: potential,
		distance:  func() float64 { return 0 },
	}
}

// SetNeighborDistance sets a constant cutoff distance.
func (f *NeighborPairwiseForcefield) SetNeighborDistance(d float64) *NeighborPairwiseForcefield {
	f.distance = func() float64 { return d }
	return f
}

// SetNeighborDistanceFunc sets a cutoff distance that is re-evaluated on
// every Compute call.
func (f *NeighborPairwiseForcefield) SetNeighborDistanceFunc(fn func() float64) *NeighborPairwiseForcefield {
	f.distance = fn
	return f
}

// SetNeighborTargets restricts the forcefield to pairs among targets.
func (f *NeighborPairwiseForcefield) SetNeighborTargets(targets []int) *NeighborPairwiseForcefield {
	f.targets = append([]int(nil), targets...)
	f.hasTargets = true
	return f
}

func (f *NeighborPairwiseForcefield) NeighborDistance() float64 { return f.distance() }

// Targets returns the target subset in the order it was set, or nil when
// the forcefield applies to all particles.
func (f *NeighborPairwiseForcefield) Targets() []int {
	if !f.hasTargets {
		return nil
	}
	return append([]int(nil), f.targets...)
}

func (f *NeighborPairwiseForcefield) HasTargets() bool { return f.hasTargets }

// Potential returns the pair potential the forcefield would use for (i, j).
func (f *NeighborPairwiseForcefield) Potential(i, j int) Potential { return f.potential(i, j) }

func (f *NeighborPairwiseForcefield) Kind() Kind   { return KindNeighborPairwise }
func (f *NeighborPairwiseForcefield) Stats() Stats { return f.stats }

func (f *NeighborPairwiseForcefield) members(n int) ([]int, error) {
	if !f.hasTargets {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	seen := make(map[int]bool, len(f.targets))
	members := make([]int, 0, len(f.targets))
	for _, i := range f.targets {
		if i < 0 || i >= n {
			return nil, ErrIndexOutOfRange
		}
		if !seen[i] {
			seen[i] = true
			members = append(members, i)
		}
	}
	return members, nil
}

func (f *NeighborPairwiseForcefield) Compute(s *System, forces []Vec) (float64, error) {
	rc := f.distance()
	if !(rc > 0) {
		return 0, ErrNeighborDistance
	}
	members, err := f.members(s.ParticleCount())
	if err != nil {
		return 0, err
	}

	rc2 := rc * rc
	pos := s.positions
	m := len(members)
	workers := s.workers
	if m < minParallelMembers || workers < 2 {
		workers = 1
	}

	energies := make([]float64, workers)
	counts := make([]int, workers)
	var localForces [][]Vec
	if forces != nil {
		localForces = make([][]Vec, workers)
		for w := range localForces {
			localForces[w] = make([]Vec, len(pos))
		}
	}

	var wg sync.WaitGroup

	// Rows shrink along the triangle, so workers take every workers-th row.
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			for a := worker; a < m; a += workers {
				i := members[a]
				for b := a + 1; b < m; b++ {
					j := members[b]
					r := pos[i].Sub(pos[j])
					if r.NormSquared() >= rc2 {
						continue
					}
					pot := f.potential(i, j)
					energies[worker] += pot.EvaluateEnergy(r)
					counts[worker]++
					if localForces != nil {
						force := pot.EvaluateForce(r)
						localForces[worker][i] = localForces[worker][i].Add(force)
						localForces[worker][j] = localForces[worker][j].Sub(force)
					}
				}
			}
		}(w)
	}

	wg.Wait()

	energy := 0.0
	f.stats = Stats{}
	for w := 0; w < workers; w++ {
		energy += energies[w]
		f.stats.Interactions += counts[w]
		if localForces != nil {
			for i, force := range localForces[w] {
				forces[i] = forces[i].Add(force)
			}
		}
	}
	return energy, nil
}

type IndexPair struct {
	I, J int
}

// BondedPairwiseForcefield evaluates a pair potential over an explicit list
// of bonded pairs.
type BondedPairwiseForcefield struct {
	potential PairPotentialFunc
	pairs     []IndexPair
	stats     Stats
}

func NewBondedPairwise(potential PairPotentialFunc) *BondedPairwiseForcefield {
	return &BondedPairwiseForcefield{potential: potential}
}

// AddBondedRange bonds consecutive particles start, start+1, ..., end-1.
func (f *BondedPairwiseForcefield) AddBondedRange(start, end int) *BondedPairwiseForcefield {
	for i := start; i+1 < end; i++ {
		f.pairs = append(f.pairs, IndexPair{i, i + 1})
	}
	return f
}

func (f *BondedPairwiseForcefield) AddBondedPair(i, j int) *BondedPairwiseForcefield {
	f.pairs = append(f.pairs, IndexPair{i, j})
	return f
}

func (f *BondedPairwiseForcefield) BondedPairs() []IndexPair {
	return append([]IndexPair(nil), f.pairs...)
}

func (f *BondedPairwiseForcefield) Potential(i, j int) Potential { return f.potential(i, j) }

func (f *BondedPairwiseForcefield) Kind() Kind   { return KindBondedPairwise }
func (f *BondedPairwiseForcefield) Stats() Stats { return f.stats }

func (f *BondedPairwiseForcefield) Compute(s *System, forces []Vec) (float64, error) {
	n := s.ParticleCount()
	pos := s.positions
	energy := 0.0

	for _, pair := range f.pairs {
		if pair.I < 0 || pair.I >= n || pair.J < 0 || pair.J >= n {
			return 0, ErrIndexOutOfRange
		}
	}

	for _, pair := range f.pairs {
		r := pos[pair.I].Sub(pos[pair.J])
		pot := f.potential(pair.I, pair.J)
		energy += pot.EvaluateEnergy(r)
		if forces != nil {
			force := pot.EvaluateForce(r)
			forces[pair.I] = forces[pair.I].Add(force)
			forces[pair.J] = forces[pair.J].Sub(force)
		}
	}

	f.stats = Stats{Interactions: len(f.pairs)}
	return energy, nil
}

var (
	_ Forcefield = (*NeighborPairwiseForcefield)(nil)
	_ Forcefield = (*BondedPairwiseForcefield)(nil)
)
