package forcefield

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chromsim/internal/md"
)

var _ = Describe("Assembler", func() {
	var (
		params   Params
		scaling  *mutableScaling
		topology Topology
		view     Compartments
		system   *md.System
	)

	assemble := func() (*Forcefields, error) {
		system = md.NewSystem(view.Len())
		return NewAssembler(system, view, params, scaling, topology).Assemble()
	}

	mustAssemble := func() *Forcefields {
		ffs, err := assemble()
		Expect(err).NotTo(HaveOccurred())
		return ffs
	}

	BeforeEach(func() {
		params = DefaultParams()
		scaling = unitScaling()
		topology = Topology{
			Chains:         []Chain{{Start: 0, End: 5}, {Start: 5, End: 7}},
			NucleolarBonds: []NucleolarBond{{Organizer: 3, Nucleolus: 10}, {Organizer: 7, Nucleolus: 11}},
		}
		view = blockCompartments(12, 3)
	})

	Describe("registration", func() {
		It("registers the forcefields in fixed order", func() {
			ffs := mustAssemble()
			Expect(kinds(system.Forcefields())).To(Equal([]md.Kind{
				md.KindNeighborPairwise,
				md.KindBondedPairwise,
				md.KindBondedPairwise,
				md.KindBondedPairwise,
				md.KindEllipsoidInward,
				md.KindEllipsoidOutward,
			}))
			Expect(system.Forcefields()).To(Equal(ffs.All()))
		})

		It("adds the droplet forcefield after the nucleolar bonds", func() {
			params.NucleolusDropletEnergy = 5
			ffs := mustAssemble()
			registered := system.Forcefields()
			Expect(registered).To(HaveLen(7))
			Expect(registered[4]).To(BeIdenticalTo(ffs.Droplet))
			Expect(system.Forcefields()).To(Equal(ffs.All()))
		})

		It("refuses to assemble twice", func() {
			asm := NewAssembler(md.NewSystem(view.Len()), view, params, scaling, topology)
			_, err := asm.Assemble()
			Expect(err).NotTo(HaveOccurred())
			_, err = asm.Assemble()
			Expect(err).To(MatchError(ErrAlreadyAssembled))
		})
	})

	Describe("repulsive forcefield", func() {
		It("uses the larger core diameter as neighbor distance", func() {
			params.ACoreDiameter = 1.0
			params.BCoreDiameter = 1.2
			ffs := mustAssemble()
			Expect(ffs.Repulsive.NeighborDistance()).To(BeNumerically("~", 1.2, 1e-12))
			Expect(ffs.Repulsive.HasTargets()).To(BeFalse())
		})

		It("re-evaluates the neighbor distance on every query", func() {
			ffs := mustAssemble()
			scaling.core = 0.5
			Expect(ffs.Repulsive.NeighborDistance()).To(BeNumerically("~", 0.6, 1e-12))
		})

		It("blends steep A and B soft cores by the mixed weights", func() {
			scaling.core = 0.8
			ffs := mustAssemble()

			// Particles 2 (A) and 3 (B) mix to half and half.
			pot, ok := ffs.Repulsive.Potential(2, 3).(md.CombinedPotential)
			Expect(ok).To(BeTrue())
			Expect(pot.CoeffA).To(Equal(0.5))
			Expect(pot.CoeffB).To(Equal(0.5))
			Expect(pot.A).To(Equal(md.SoftcorePotential{P: 2, Q: 3, Energy: params.ACoreRepulsion, Diameter: params.ACoreDiameter * 0.8}))
			Expect(pot.B).To(Equal(md.SoftcorePotential{P: 8, Q: 3, Energy: params.BCoreRepulsion, Diameter: params.BCoreDiameter * 0.8}))
		})

		It("rejects a non-positive neighbor distance", func() {
			scaling.core = 0
			_, err := assemble()
			Expect(err).To(MatchError(ErrNeighborDistance))
			Expect(system.Forcefields()).To(BeEmpty())
		})
	})

	Describe("connectivity forcefield", func() {
		It("bonds consecutive particles of each chain", func() {
			ffs := mustAssemble()
			Expect(ffs.Connectivity.BondedPairs()).To(Equal([]md.IndexPair{
				{I: 0, J: 1}, {I: 1, J: 2}, {I: 2, J: 3}, {I: 3, J: 4},
				{I: 5, J: 6},
			}))
		})

		DescribeTable("bond count per chain",
			func(chain Chain, want int) {
				topology = Topology{Chains: []Chain{chain}}
				ffs := mustAssemble()
				Expect(ffs.Connectivity.BondedPairs()).To(HaveLen(want))
				Expect(ffs.Loop.BondedPairs()).To(HaveLen(max(want-1, 0)))
			},
			Entry("ten particles", Chain{Start: 0, End: 10}, 9),
			Entry("two particles", Chain{Start: 4, End: 6}, 1),
			Entry("one particle", Chain{Start: 4, End: 5}, 0),
			Entry("empty", Chain{Start: 4, End: 4}, 0),
			Entry("reversed", Chain{Start: 6, End: 2}, 0),
		)

		DescribeTable("rescales spring and length with the bond scale",
			func(s float64) {
				scaling.bond = s
				ffs := mustAssemble()

				w := mixPair(view, 2, 3)
				k := w.A*params.ACoreBondSpring + w.B*params.BCoreBondSpring
				l := w.A*params.ACoreBondLength + w.B*params.BCoreBondLength

				pot, ok := ffs.Connectivity.Potential(2, 3).(md.SemispringPotential)
				Expect(ok).To(BeTrue())
				Expect(pot.SpringConstant * s * s).To(BeNumerically("~", k, 1e-9))
				Expect(pot.EquilibriumDistance / s).To(BeNumerically("~", l, 1e-12))
			},
			Entry("compressed", 0.5),
			Entry("identity", 1.0),
			Entry("stretched", 2.7),
		)

		It("follows bond scale changes after assembly", func() {
			ffs := mustAssemble()
			before := ffs.Connectivity.Potential(0, 1).(md.SemispringPotential)
			scaling.bond = 2
			after := ffs.Connectivity.Potential(0, 1).(md.SemispringPotential)
			Expect(after.SpringConstant).To(BeNumerically("~", before.SpringConstant/4, 1e-9))
			Expect(after.EquilibriumDistance).To(BeNumerically("~", before.EquilibriumDistance*2, 1e-12))
		})

		It("rejects chains outside the system", func() {
			topology.Chains = append(topology.Chains, Chain{Start: 10, End: 14})
			_, err := assemble()
			Expect(err).To(MatchError(ErrIndexOutOfRange))

			var setupErr *SetupError
			Expect(err).To(BeAssignableToTypeOf(setupErr))
			Expect(system.Forcefields()).To(BeEmpty())
		})
	})

	Describe("loop forcefield", func() {
		It("ties each particle to the one two positions further", func() {
			ffs := mustAssemble()
			Expect(ffs.Loop.BondedPairs()).To(Equal([]md.IndexPair{
				{I: 0, J: 2}, {I: 1, J: 3}, {I: 2, J: 4},
			}))
		})

		It("scales only the spring constant", func() {
			scaling.bond = 3
			ffs := mustAssemble()
			w := mixPair(view, 1, 3)
			k := w.A*params.ACoreLoopSpring + w.B*params.BCoreLoopSpring

			pot, ok := ffs.Loop.Potential(1, 3).(md.HarmonicPotential)
			Expect(ok).To(BeTrue())
			Expect(pot.SpringConstant * 9).To(BeNumerically("~", k, 1e-9))
		})
	})

	Describe("nucleolus forcefield", func() {
		It("bonds organizers to nucleolar particles with a global spring", func() {
			scaling.bond = 1.5
			ffs := mustAssemble()
			Expect(ffs.NucleolarBonds.BondedPairs()).To(Equal([]md.IndexPair{{I: 3, J: 10}, {I: 7, J: 11}}))

			pot := ffs.NucleolarBonds.Potential(3, 10).(md.SemispringPotential)
			Expect(pot).To(Equal(ffs.NucleolarBonds.Potential(7, 11)))
			Expect(pot.SpringConstant * 1.5 * 1.5).To(BeNumerically("~", params.NucleolusBondSpring, 1e-9))
			Expect(pot.EquilibriumDistance / 1.5).To(BeNumerically("~", params.NucleolusBondLength, 1e-12))
		})

		It("skips the droplet forcefield when its energy is zero", func() {
			params.NucleolusDropletEnergy = 0
			ffs := mustAssemble()
			Expect(ffs.Droplet).To(BeNil())
			Expect(ffs.NucleolarParticles()).To(BeNil())
			Expect(system.Forcefields()).To(HaveLen(6))
		})

		It("targets the nucleolar particles in supply order when enabled", func() {
			params.NucleolusDropletEnergy = 5
			ffs := mustAssemble()

			Expect(ffs.Droplet).NotTo(BeNil())
			Expect(ffs.NucleolarParticles()).To(Equal([]int{10, 11}))
			Expect(ffs.Droplet.NeighborDistance()).To(Equal(params.NucleolusDropletCutoff))

			pot, ok := ffs.Droplet.Potential(10, 11).(md.CutoffPotential)
			Expect(ok).To(BeTrue())
			Expect(pot.Distance).To(Equal(params.NucleolusDropletCutoff))
			Expect(pot.Potential).To(Equal(md.SoftwellPotential{
				P:             6,
				Energy:        5,
				DecayDistance: params.NucleolusDropletDecay,
			}))
		})

		It("keeps repeated organizers and nucleoli as supplied", func() {
			params.NucleolusDropletEnergy = 1
			topology.NucleolarBonds = []NucleolarBond{{3, 10}, {3, 11}, {4, 10}}
			ffs := mustAssemble()
			Expect(ffs.NucleolarBonds.BondedPairs()).To(HaveLen(3))
			Expect(ffs.NucleolarParticles()).To(Equal([]int{10, 11, 10}))
		})

		It("rejects bonds outside the system", func() {
			topology.NucleolarBonds = append(topology.NucleolarBonds, NucleolarBond{Organizer: 2, Nucleolus: 12})
			_, err := assemble()
			Expect(err).To(MatchError(ErrIndexOutOfRange))
			Expect(system.Forcefields()).To(BeEmpty())
		})
	})

	Describe("membrane forcefields", func() {
		It("mixes particle weights against the wall with half diameters", func() {
			params.WallFactor = Compartment{A: 1, B: 0}
			scaling.core = 2
			ffs := mustAssemble()

			// Particle 3 is pure B.
			pot, ok := ffs.Inward.Potential(3).(md.CombinedPotential)
			Expect(ok).To(BeTrue())
			Expect(pot.CoeffA).To(Equal(0.5))
			Expect(pot.CoeffB).To(Equal(0.5))
			Expect(pot.A.(md.SoftcorePotential).Diameter).To(BeNumerically("~", params.ACoreDiameter/2*2, 1e-12))
			Expect(pot.B.(md.SoftcorePotential).Diameter).To(BeNumerically("~", params.BCoreDiameter/2*2, 1e-12))
		})

		It("uses a plain spring for escaped particles", func() {
			ffs := mustAssemble()
			Expect(ffs.Outward.Potential()).To(Equal(md.HarmonicPotential{SpringConstant: params.WallPackingSpring}))
		})

		It("shares one ellipsoid that follows the wall semiaxes", func() {
			ffs := mustAssemble()
			scaling.axes = md.Vec{X: 3, Y: 4, Z: 5}
			want := md.Ellipsoid{SemiaxisX: 3, SemiaxisY: 4, SemiaxisZ: 5}
			Expect(ffs.Inward.Ellipsoid()).To(Equal(want))
			Expect(ffs.Outward.Ellipsoid()).To(Equal(want))
		})

		It("reports the packing reaction of the last evaluation", func() {
			ffs := mustAssemble()
			Expect(ffs.PackingReaction()).To(Equal(0.0))

			scaling.axes = md.Vec{X: 1, Y: 1, Z: 1}
			pos := system.Positions()
			for i := range pos {
				pos[i] = md.Vec{X: 0.5 + 0.1*float64(i)}
			}
			_, err := system.Compute(make([]md.Vec, len(pos)))
			Expect(err).NotTo(HaveOccurred())

			inward := ffs.Inward.Stats().AxialReaction
			outward := ffs.Outward.Stats().AxialReaction
			Expect(outward).To(BeNumerically(">", 0))
			Expect(ffs.PackingReaction()).To(Equal(inward + outward))
		})
	})

	Describe("validation", func() {
		It("rejects a compartment view of the wrong size", func() {
			system = md.NewSystem(view.Len() + 1)
			_, err := NewAssembler(system, view, params, scaling, topology).Assemble()
			Expect(err).To(MatchError(ErrViewSize))
			Expect(system.Forcefields()).To(BeEmpty())
		})

		It("rejects invalid parameters", func() {
			params.ACoreRepulsion = -1
			_, err := assemble()
			Expect(err).To(MatchError(ErrInvalidParams))
		})
	})
})

type fixedStats md.Stats

func (s fixedStats) Stats() md.Stats { return md.Stats(s) }

var _ = DescribeTable("packing reaction additivity",
	func(inward, outward float64) {
		reaction := packingReaction(fixedStats{AxialReaction: inward}, fixedStats{AxialReaction: outward})
		Expect(reaction()).To(Equal(inward + outward))
	},
	Entry("both zero", 0.0, 0.0),
	Entry("positive", 1.5, 2.25),
	Entry("negative inward", -3.0, 1.0),
	Entry("both negative", -0.5, -0.25),
	Entry("large", 1e9, math.SmallestNonzeroFloat64),
)

var _ = Describe("end-to-end scenarios", func() {
	It("builds the bond lists of a five- and a two-particle chain", func() {
		view := blockCompartments(7, 2)
		topo := Topology{Chains: []Chain{{Start: 0, End: 5}, {Start: 5, End: 7}}}
		ffs, err := NewAssembler(md.NewSystem(7), view, DefaultParams(), unitScaling(), topo).Assemble()
		Expect(err).NotTo(HaveOccurred())

		Expect(ffs.Connectivity.BondedPairs()).To(Equal([]md.IndexPair{
			{I: 0, J: 1}, {I: 1, J: 2}, {I: 2, J: 3}, {I: 3, J: 4}, {I: 5, J: 6},
		}))
		Expect(ffs.Loop.BondedPairs()).To(Equal([]md.IndexPair{
			{I: 0, J: 2}, {I: 1, J: 3}, {I: 2, J: 4},
		}))
	})

	It("evaluates a full model without error", func() {
		params := DefaultParams()
		params.NucleolusDropletEnergy = 2
		view := blockCompartments(12, 3)
		sys := md.NewSystem(12)
		for i := range sys.Positions() {
			sys.Positions()[i] = md.Vec{X: 0.7 * float64(i%4), Y: 0.7 * float64(i/4)}
		}
		topo := Topology{
			Chains:         []Chain{{Start: 0, End: 10}},
			NucleolarBonds: []NucleolarBond{{Organizer: 3, Nucleolus: 10}, {Organizer: 7, Nucleolus: 11}},
		}
		_, err := NewAssembler(sys, view, params, unitScaling(), topo).Assemble()
		Expect(err).NotTo(HaveOccurred())

		forces := make([]md.Vec, 12)
		energy, err := sys.Compute(forces)
		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsNaN(energy)).To(BeFalse())
		for _, f := range forces {
			Expect(f.IsValid()).To(BeTrue())
		}
	})
})
