// Package forcefield assembles the potential-energy model of confined
// chromosome polymers.
//
// An [Assembler] turns physical [Params], a time-varying [Scaling] context
// and a [Topology] (chain ranges and nucleolar bonds) into forcefields
// registered on an [md.System], in a fixed order:
//
//   - repulsive: soft-core steric repulsion between all particle pairs
//   - connectivity: backbone bonds along each chain
//   - loop: skip-one mean-field loop bonds within each chain
//   - nucleolus: nucleolar attachment bonds, plus droplet attraction among
//     nucleolar particles when its energy is nonzero
//   - membrane: inward steric and outward restoring ellipsoidal confinement
//
// Interaction parameters depend on the A/B compartment weights of the
// particles involved, blended with [Mix].
//
// # Scaling
//
// The potential functions query [Scaling] every time the engine evaluates
// them, so a compaction schedule can change particle size, bond length and
// wall geometry while the simulation runs without re-registering anything.
//
// # Example
//
//	sys := md.NewSystem(len(compartments))
//	asm := forcefield.NewAssembler(sys, compartments, params, schedule, topology)
//	ffs, err := asm.Assemble()
//	if err != nil {
//		return err
//	}
//	reaction := ffs.PackingReaction()
package forcefield
