// Package structure generates initial chromosome configurations: chain
// layouts, compartment assignments and particle positions confined to the
// nuclear ellipsoid.
package structure

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/chromsim/internal/forcefield"
	"github.com/san-kum/chromsim/internal/md"
)

var ErrTooSmall = errors.New("structure: ellipsoid too small for the step length")

// maxAttempts bounds the retries for one random-walk step before the
// walker falls back toward the center.
const maxAttempts = 64

// UniformChains lays count chains of length particles back to back.
func UniformChains(count, length int) []forcefield.Chain {
	chains := make([]forcefield.Chain, 0, count)
	for c := 0; c < count; c++ {
		chains = append(chains, forcefield.Chain{Start: c * length, End: (c + 1) * length})
	}
	return chains
}

// BlockCompartments assigns alternating pure A and pure B blocks of
// blockSize particles, starting with A.
func BlockCompartments(n, blockSize int) forcefield.Compartments {
	if blockSize <= 0 {
		blockSize = n
	}
	c := make(forcefield.Compartments, n)
	for i := range c {
		if (i/blockSize)%2 == 0 {
			c[i] = forcefield.Compartment{A: 1}
		} else {
			c[i] = forcefield.Compartment{B: 1}
		}
	}
	return c
}

// Generator places particles inside an ellipsoid.
type Generator struct {
	rng       *rand.Rand
	ellipsoid md.Ellipsoid
	step      float64
}

// NewGenerator returns a generator with random-walk step length step. A
// zero seed draws one from the clock.
func NewGenerator(seed int64, ellipsoid md.Ellipsoid, step float64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:       rand.New(rand.NewSource(seed)),
		ellipsoid: ellipsoid,
		step:      step,
	}
}

// Generate returns positions for n particles. Chains are confined random
// walks, nucleolar particles sit one step away from their organizer and
// any remaining particles are scattered uniformly.
func (g *Generator) Generate(n int, topo forcefield.Topology) ([]md.Vec, error) {
	if err := topo.Validate(n); err != nil {
		return nil, err
	}
	minAxis := math.Min(g.ellipsoid.SemiaxisX, math.Min(g.ellipsoid.SemiaxisY, g.ellipsoid.SemiaxisZ))
	if !(g.step > 0) || !(minAxis > 2*g.step) {
		return nil, fmt.Errorf("%w: step %g, smallest semiaxis %g", ErrTooSmall, g.step, minAxis)
	}

	pos := make([]md.Vec, n)
	placed := make([]bool, n)

	for _, ch := range topo.Chains {
		if ch.Len() <= 0 {
			continue
		}
		p := g.uniformInside(0.5)
		for i := ch.Start; i < ch.End; i++ {
			if i > ch.Start {
				p = g.walk(p)
			}
			pos[i] = p
			placed[i] = true
		}
	}

	for _, b := range topo.NucleolarBonds {
		if placed[b.Nucleolus] {
			continue
		}
		pos[b.Nucleolus] = g.walk(pos[b.Organizer])
		placed[b.Nucleolus] = true
	}

	for i := range pos {
		if !placed[i] {
			pos[i] = g.uniformInside(1)
		}
	}
	return pos, nil
}

// walk takes one step of fixed length in a random direction, staying
// inside the ellipsoid.
func (g *Generator) walk(from md.Vec) md.Vec {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		next := from.Add(g.direction().Scale(g.step))
		if g.ellipsoid.Contains(next) {
			return next
		}
	}
	toCenter := g.ellipsoid.Center.Sub(from)
	if d := toCenter.Norm(); d > 0 {
		return from.Add(toCenter.Scale(math.Min(g.step, d) / d))
	}
	return from
}

func (g *Generator) direction() md.Vec {
	z := 2*g.rng.Float64() - 1
	phi := 2 * math.Pi * g.rng.Float64()
	s := math.Sqrt(1 - z*z)
	return md.Vec{X: s * math.Cos(phi), Y: s * math.Sin(phi), Z: z}
}

// uniformInside samples a point uniformly inside the ellipsoid shrunk by
// fraction.
func (g *Generator) uniformInside(fraction float64) md.Vec {
	e := g.ellipsoid
	for {
		u := md.Vec{
			X: 2*g.rng.Float64() - 1,
			Y: 2*g.rng.Float64() - 1,
			Z: 2*g.rng.Float64() - 1,
		}
		if u.NormSquared() > 1 {
			continue
		}
		return e.Center.Add(md.Vec{
			X: u.X * e.SemiaxisX * fraction,
			Y: u.Y * e.SemiaxisY * fraction,
			Z: u.Z * e.SemiaxisZ * fraction,
		})
	}
}
