// Package md is a small particle-system engine for coarse-grained polymer
// models.
//
// The package defines the pieces a forcefield description needs:
//
//   - [Vec]: 3D vector type for positions, displacements and forces
//   - [Potential]: energy/force of a displacement vector
//   - [Forcefield]: a force-generating unit registered on a [System]
//   - [System]: particle positions plus an ordered forcefield registry
//
// Four forcefield variants are provided: [NeighborPairwiseForcefield] for
// pairs within a cutoff distance, [BondedPairwiseForcefield] for explicit
// pairs, and [EllipsoidInwardForcefield] / [EllipsoidOutwardForcefield] for
// confinement in an ellipsoid.
//
// # Example
//
//	sys := md.NewSystem(n)
//	sys.AddForcefield(
//		md.NewNeighborPairwise(md.UniformPair(md.SoftcorePotential{P: 2, Q: 3, Energy: 1, Diameter: 1})).
//			SetNeighborDistance(1),
//	)
//	energy, err := sys.Compute(forces)
//
// # Thread Safety
//
// Potential functions handed to forcefields may be invoked from several
// goroutines during one [System.Compute] call. A System itself is NOT
// thread-safe; register forcefields before evaluation starts.
package md
