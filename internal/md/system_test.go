package md

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBondedRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		want       []IndexPair
	}{
		{"five particles", 0, 5, []IndexPair{{0, 1}, {1, 2}, {2, 3}, {3, 4}}},
		{"two particles", 7, 9, []IndexPair{{7, 8}}},
		{"single particle", 3, 4, nil},
		{"empty", 3, 3, nil},
		{"reversed", 5, 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ff := NewBondedPairwise(UniformPair(HarmonicPotential{SpringConstant: 1}))
			ff.AddBondedRange(tt.start, tt.end)
			assert.Equal(t, tt.want, ff.BondedPairs())
		})
	}
}

func TestBondedCompute(t *testing.T) {
	sys := NewSystem(3)
	pos := sys.Positions()
	pos[0] = Vec{0, 0, 0}
	pos[1] = Vec{2, 0, 0}
	pos[2] = Vec{2, 1, 0}

	ff := NewBondedPairwise(UniformPair(HarmonicPotential{SpringConstant: 1}))
	ff.AddBondedRange(0, 3)
	sys.AddForcefield(ff)

	forces := make([]Vec, 3)
	energy, err := sys.Compute(forces)
	require.NoError(t, err)

	assert.InDelta(t, 0.5*4+0.5*1, energy, 1e-12)
	assert.Equal(t, Vec{2, 0, 0}, forces[0])
	assert.Equal(t, Vec{-2, 1, 0}, forces[1])
	assert.Equal(t, Vec{0, -1, 0}, forces[2])
	assert.Equal(t, 2, ff.Stats().Interactions)
}

func TestBondedIndexOutOfRange(t *testing.T) {
	sys := NewSystem(2)
	ff := NewBondedPairwise(UniformPair(HarmonicPotential{SpringConstant: 1}))
	ff.AddBondedPair(0, 5)
	sys.AddForcefield(ff)

	_, err := sys.ComputeEnergy()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, KindBondedPairwise, evalErr.Kind)
}

func TestNeighborPairwiseCutoff(t *testing.T) {
	sys := NewSystem(3)
	pos := sys.Positions()
	pos[0] = Vec{0, 0, 0}
	pos[1] = Vec{0.5, 0, 0}
	pos[2] = Vec{3, 0, 0}

	calls := 0
	ff := NewNeighborPairwise(func(i, j int) Potential {
		calls++
		return SoftcorePotential{P: 2, Q: 3, Energy: 1, Diameter: 1}
	}).SetNeighborDistance(1)
	sys.SetWorkers(1)
	sys.AddForcefield(ff)

	energy, err := sys.ComputeEnergy()
	require.NoError(t, err)
	assert.InDelta(t, 0.75*0.75*0.75, energy, 1e-12)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, ff.Stats().Interactions)
}

func TestNeighborPairwiseTargets(t *testing.T) {
	sys := NewSystem(4)
	pos := sys.Positions()
	for i := range pos {
		pos[i] = Vec{0.1 * float64(i), 0, 0}
	}

	var seen []IndexPair
	ff := NewNeighborPairwise(func(i, j int) Potential {
		seen = append(seen, IndexPair{i, j})
		return HarmonicPotential{SpringConstant: 1}
	}).SetNeighborDistance(1).SetNeighborTargets([]int{3, 1, 3})
	sys.SetWorkers(1)
	sys.AddForcefield(ff)

	_, err := sys.ComputeEnergy()
	require.NoError(t, err)
	assert.Equal(t, []IndexPair{{3, 1}}, seen, "duplicates evaluated once")
	assert.Equal(t, []int{3, 1, 3}, ff.Targets(), "targets kept as supplied")
}

func TestNeighborPairwiseRejectsBadDistance(t *testing.T) {
	distance := 1.0
	sys := NewSystem(2)
	ff := NewNeighborPairwise(UniformPair(HarmonicPotential{SpringConstant: 1})).
		SetNeighborDistanceFunc(func() float64 { return distance })
	sys.AddForcefield(ff)

	_, err := sys.ComputeEnergy()
	require.NoError(t, err)

	distance = 0
	_, err = sys.ComputeEnergy()
	assert.True(t, errors.Is(err, ErrNeighborDistance))

	bad := NewSystem(2)
	bad.AddForcefield(NewNeighborPairwise(UniformPair(HarmonicPotential{})).SetNeighborTargets([]int{0, 9}).SetNeighborDistance(1))
	_, err = bad.ComputeEnergy()
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestNeighborPairwiseParallelMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 300
	build := func(workers int) *System {
		sys := NewSystem(n)
		sys.SetWorkers(workers)
		sys.AddForcefield(NewNeighborPairwise(UniformPair(SoftcorePotential{P: 2, Q: 3, Energy: 1, Diameter: 1})).SetNeighborDistance(1))
		return sys
	}
	pos := make([]Vec, n)
	for i := range pos {
		pos[i] = Vec{rng.Float64() * 5, rng.Float64() * 5, rng.Float64() * 5}
	}

	serial := build(1)
	copy(serial.Positions(), pos)
	fs := make([]Vec, n)
	es, err := serial.Compute(fs)
	require.NoError(t, err)
	pairs := serial.Forcefields()[0].Stats().Interactions

	// Worker counts that do and do not divide the row count.
	for _, workers := range []int{2, 4, 7} {
		parallel := build(workers)
		copy(parallel.Positions(), pos)
		fp := make([]Vec, n)
		ep, err := parallel.Compute(fp)
		require.NoError(t, err)

		assert.InDelta(t, es, ep, 1e-9, "workers=%d", workers)
		assert.Equal(t, pairs, parallel.Forcefields()[0].Stats().Interactions, "workers=%d", workers)
		for i := range fs {
			assertVecInDelta(t, fs[i], fp[i], 1e-9, "force")
		}
	}
}

func TestEllipsoidOutward(t *testing.T) {
	sys := NewSystem(2)
	sys.Positions()[0] = Vec{2, 0, 0}
	sys.Positions()[1] = Vec{0.5, 0, 0}

	ff := NewEllipsoidOutward(HarmonicPotential{SpringConstant: 10})
	sys.AddForcefield(ff)

	forces := make([]Vec, 2)
	energy, err := sys.Compute(forces)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, energy, 1e-12)
	assertVecInDelta(t, Vec{-10, 0, 0}, forces[0], 1e-12, "escaped particle pulled back")
	assert.Equal(t, Vec{}, forces[1], "inside particle untouched")
	assert.InDelta(t, 10.0, ff.Stats().AxialReaction, 1e-12)
}

func TestEllipsoidInward(t *testing.T) {
	sys := NewSystem(3)
	sys.Positions()[0] = Vec{0, 0, 1.9} // inside, near the wall
	sys.Positions()[1] = Vec{0, 0, 2.1} // just outside
	sys.Positions()[2] = Vec{0.1, 0, 0} // deep inside

	ellipsoid := Ellipsoid{SemiaxisX: 1, SemiaxisY: 1, SemiaxisZ: 2}
	ff := NewEllipsoidInward(UniformPoint(SoftcorePotential{P: 2, Q: 3, Energy: 1, Diameter: 0.5})).
		SetEllipsoid(func() Ellipsoid { return ellipsoid })
	sys.AddForcefield(ff)

	forces := make([]Vec, 3)
	energy, err := sys.Compute(forces)
	require.NoError(t, err)

	assert.Greater(t, energy, 0.0)
	assert.Less(t, forces[0].Z, 0.0, "pushed toward the center")
	assert.Less(t, forces[1].Z, 0.0, "pushed back inside")
	assert.Equal(t, Vec{}, forces[2])
	assert.Equal(t, 2, ff.Stats().Interactions)
	assert.Greater(t, ff.Stats().AxialReaction, 0.0)
}

func TestEllipsoidInwardForceMatchesEnergy(t *testing.T) {
	sphere := Ellipsoid{SemiaxisX: 1, SemiaxisY: 1, SemiaxisZ: 1}
	ff := NewEllipsoidInward(UniformPoint(SoftcorePotential{P: 2, Q: 3, Energy: 1, Diameter: 0.5})).
		SetEllipsoid(func() Ellipsoid { return sphere })

	energyAt := func(p Vec) float64 {
		sys := NewSystem(1)
		sys.Positions()[0] = p
		sys.AddForcefield(ff)
		e, err := sys.ComputeEnergy()
		require.NoError(t, err)
		return e
	}

	tests := []struct {
		name string
		p    Vec
	}{
		{"inside", Vec{0.9, 0, 0}},
		{"outside", Vec{1.1, 0, 0}},
		{"inside off axis", Vec{0.5, 0.6, -0.4}},
		{"outside off axis", Vec{0.6, -0.7, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := NewSystem(1)
			sys.Positions()[0] = tt.p
			sys.AddForcefield(ff)
			forces := make([]Vec, 1)
			_, err := sys.Compute(forces)
			require.NoError(t, err)

			dx := Vec{fdStep, 0, 0}
			dy := Vec{0, fdStep, 0}
			dz := Vec{0, 0, fdStep}
			want := Vec{
				-(energyAt(tt.p.Add(dx)) - energyAt(tt.p.Sub(dx))) / (2 * fdStep),
				-(energyAt(tt.p.Add(dy)) - energyAt(tt.p.Sub(dy))) / (2 * fdStep),
				-(energyAt(tt.p.Add(dz)) - energyAt(tt.p.Sub(dz))) / (2 * fdStep),
			}
			assertVecInDelta(t, want, forces[0], 1e-5, tt.name)
		})
	}

	// Continuous across the surface, rising outside.
	assert.InDelta(t, energyAt(Vec{0.999999, 0, 0}), energyAt(Vec{1.000001, 0, 0}), 1e-4)
	assert.Greater(t, energyAt(Vec{1.2, 0, 0}), energyAt(Vec{1.1, 0, 0}))
}

func TestEllipsoidContains(t *testing.T) {
	e := Ellipsoid{Center: Vec{1, 0, 0}, SemiaxisX: 2, SemiaxisY: 1, SemiaxisZ: 1}
	assert.True(t, e.Contains(Vec{2.9, 0, 0}))
	assert.False(t, e.Contains(Vec{1, 1.1, 0}))
	assert.Equal(t, Vec{2, 1, 1}, e.Semiaxes())
}

func TestSystemForceBuffer(t *testing.T) {
	sys := NewSystem(3)
	_, err := sys.Compute(make([]Vec, 2))
	assert.ErrorIs(t, err, ErrForceBuffer)
}
