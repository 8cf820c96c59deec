package md

import "math"

type Ellipsoid struct {
	Center    Vec
	SemiaxisX float64
	SemiaxisY float64
	SemiaxisZ float64
}

// Semiaxes returns the semiaxis lengths as a vector.
func (e Ellipsoid) Semiaxes() Vec {
	return Vec{e.SemiaxisX, e.SemiaxisY, e.SemiaxisZ}
}

// Contains reports whether p lies inside or on the ellipsoid.
func (e Ellipsoid) Contains(p Vec) bool {
	return e.scaledRadius(p.Sub(e.Center)) <= 1
}

func (e Ellipsoid) scaledRadius(rel Vec) float64 {
	x := rel.X / e.SemiaxisX
	y := rel.Y / e.SemiaxisY
	z := rel.Z / e.SemiaxisZ
	return math.Sqrt(x*x + y*y + z*z)
}

// surfaceOffset locates p against the surface along the ray from the
// center. It returns the displacement of p from the surface point, the
// outward unit direction of the ray, and the scaled radius (1 on the
// surface). ok is false at the center, where the ray is undefined.
func (e Ellipsoid) surfaceOffset(p Vec) (offset, normal Vec, rho float64, ok bool) {
	rel := p.Sub(e.Center)
	rho = e.scaledRadius(rel)
	dist := rel.Norm()
	if rho == 0 || dist == 0 {
		return Vec{}, Vec{}, 0, false
	}
	surface := rel.Scale(1 / rho)
	return rel.Sub(surface), rel.Scale(1 / dist), rho, true
}

// EllipsoidInwardForcefield pushes particles away from an ellipsoidal wall
// toward its interior. The per-particle potential is evaluated on the
// displacement between the particle and the wall, oriented inward on both
// sides of the surface. Outside the wall the energy is mirrored about its
// surface value, 2*U(0) - U(d), so that it keeps rising with the distance d
// while the force points inward.
type EllipsoidInwardForcefield struct {
	potential PointPotentialFunc
	ellipsoid func() Ellipsoid
	stats     Stats
}

func NewEllipsoidInward(potential PointPotentialFunc) *EllipsoidInwardForcefield {
	return &EllipsoidInwardForcefield{
		potential: potential,
		ellipsoid: unitEllipsoid,
	}
}

func (f *EllipsoidInwardForcefield) SetEllipsoid(fn func() Ellipsoid) *EllipsoidInwardForcefield {
	f.ellipsoid = fn
	return f
}

func (f *EllipsoidInwardForcefield) Ellipsoid() Ellipsoid     { return f.ellipsoid() }
func (f *EllipsoidInwardForcefield) Potential(i int) Potential { return f.potential(i) }

func (f *EllipsoidInwardForcefield) Kind() Kind   { return KindEllipsoidInward }
func (f *EllipsoidInwardForcefield) Stats() Stats { return f.stats }

func (f *EllipsoidInwardForcefield) Compute(s *System, forces []Vec) (float64, error) {
	ell := f.ellipsoid()
	energy := 0.0
	stats := Stats{}

	for i, p := range s.positions {
		offset, normal, rho, ok := ell.surfaceOffset(p)
		if !ok {
			continue
		}
		// Inside, offset already points from the wall toward the center.
		pot := f.potential(i)
		r := offset
		e := pot.EvaluateEnergy(r)
		if rho > 1 {
			r = offset.Scale(-1)
			e = 2*pot.EvaluateEnergy(Vec{}) - e
		}
		force := pot.EvaluateForce(r)
		if e == 0 && force == (Vec{}) {
			continue
		}
		energy += e
		stats.Interactions++
		stats.AxialReaction -= force.Dot(normal)
		if forces != nil {
			forces[i] = forces[i].Add(force)
		}
	}

	f.stats = stats
	return energy, nil
}

// EllipsoidOutwardForcefield pulls particles that escaped an ellipsoid back
// toward its surface. Particles inside are not affected.
type EllipsoidOutwardForcefield struct {
	potential Potential
	ellipsoid func() Ellipsoid
	stats     Stats
}

func NewEllipsoidOutward(potential Potential) *EllipsoidOutwardForcefield {
	return &EllipsoidOutwardForcefield{
		potential: potential,
		ellipsoid: unitEllipsoid,
	}
}

func (f *EllipsoidOutwardForcefield) SetEllipsoid(fn func() Ellipsoid) *EllipsoidOutwardForcefield {
	f.ellipsoid = fn
	return f
}

func (f *EllipsoidOutwardForcefield) Ellipsoid() Ellipsoid { return f.ellipsoid() }
func (f *EllipsoidOutwardForcefield) Potential() Potential { return f.potential }

func (f *EllipsoidOutwardForcefield) Kind() Kind   { return KindEllipsoidOutward }
func (f *EllipsoidOutwardForcefield) Stats() Stats { return f.stats }

func (f *EllipsoidOutwardForcefield) Compute(s *System, forces []Vec) (float64, error) {
	ell := f.ellipsoid()
	energy := 0.0
	stats := Stats{}

	for i, p := range s.positions {
		offset, normal, rho, ok := ell.surfaceOffset(p)
		if !ok || rho <= 1 {
			continue
		}
		force := f.potential.EvaluateForce(offset)
		energy += f.potential.EvaluateEnergy(offset)
		stats.Interactions++
		stats.AxialReaction -= force.Dot(normal)
		if forces != nil {
			forces[i] = forces[i].Add(force)
		}
	}

	f.stats = stats
	return energy, nil
}

func unitEllipsoid() Ellipsoid {
	return Ellipsoid{SemiaxisX: 1, SemiaxisY: 1, SemiaxisZ: 1}
}

var (
	_ Forcefield = (*EllipsoidInwardForcefield)(nil)
	_ Forcefield = (*EllipsoidOutwardForcefield)(nil)
)
