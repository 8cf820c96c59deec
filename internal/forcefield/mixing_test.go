package forcefield

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Mix", func() {
	It("averages each channel independently", func() {
		m := Mix(Compartment{A: 1, B: 0.2}, Compartment{A: 0, B: 0.6})
		Expect(m.A).To(BeNumerically("~", 0.5, 1e-12))
		Expect(m.B).To(BeNumerically("~", 0.4, 1e-12))
	})

	It("does not require weights to sum to one", func() {
		m := Mix(Compartment{A: 1, B: 1}, Compartment{A: 1, B: 1})
		Expect(m).To(Equal(Compartment{A: 1, B: 1}))
	})

	It("is symmetric for every particle pair", func() {
		rng := rand.New(rand.NewSource(3))
		view := make(Compartments, 40)
		for i := range view {
			view[i] = Compartment{A: rng.Float64(), B: rng.Float64()}
		}
		for i := 0; i < view.Len(); i++ {
			for j := 0; j < view.Len(); j++ {
				Expect(mixPair(view, i, j)).To(Equal(mixPair(view, j, i)))
			}
		}
	})

	It("mixes a particle against the wall reference", func() {
		wall := Compartment{A: 1, B: 0}
		m := Mix(Compartment{A: 0, B: 1}, wall)
		Expect(m).To(Equal(Compartment{A: 0.5, B: 0.5}))
	})
})

var _ = Describe("Topology", func() {
	DescribeTable("validation",
		func(topo Topology, n int, want error) {
			err := topo.Validate(n)
			if want == nil {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(want))
			}
		},
		Entry("disjoint chains", Topology{Chains: []Chain{{0, 5}, {5, 9}}}, 10, nil),
		Entry("empty and reversed chains", Topology{Chains: []Chain{{3, 3}, {8, 2}}}, 4, nil),
		Entry("chain past the end", Topology{Chains: []Chain{{0, 11}}}, 10, ErrIndexOutOfRange),
		Entry("negative start", Topology{Chains: []Chain{{-1, 4}}}, 10, ErrIndexOutOfRange),
		Entry("overlapping chains", Topology{Chains: []Chain{{4, 8}, {0, 5}}}, 10, ErrOverlappingChains),
		Entry("repeated organizer", Topology{NucleolarBonds: []NucleolarBond{{1, 8}, {1, 9}}}, 10, nil),
		Entry("bond past the end", Topology{NucleolarBonds: []NucleolarBond{{1, 10}}}, 10, ErrIndexOutOfRange),
	)
})

var _ = Describe("Params", func() {
	It("accepts the defaults", func() {
		Expect(DefaultParams().Validate()).To(Succeed())
	})

	DescribeTable("rejects invalid values",
		func(mutate func(*Params)) {
			p := DefaultParams()
			mutate(&p)
			Expect(p.Validate()).To(MatchError(ErrInvalidParams))
		},
		Entry("negative repulsion", func(p *Params) { p.ACoreRepulsion = -1 }),
		Entry("negative bond spring", func(p *Params) { p.BCoreBondSpring = -5 }),
		Entry("negative loop spring", func(p *Params) { p.ACoreLoopSpring = -0.1 }),
		Entry("zero diameter", func(p *Params) { p.BCoreDiameter = 0 }),
		Entry("negative packing spring", func(p *Params) { p.WallPackingSpring = -1 }),
		Entry("droplet without cutoff", func(p *Params) {
			p.NucleolusDropletEnergy = 1
			p.NucleolusDropletCutoff = 0
		}),
		Entry("droplet without decay", func(p *Params) {
			p.NucleolusDropletEnergy = 1
			p.NucleolusDropletDecay = 0
		}),
	)

	It("ignores the droplet range when droplets are off", func() {
		p := DefaultParams()
		p.NucleolusDropletEnergy = 0
		p.NucleolusDropletCutoff = 0
		Expect(p.Validate()).To(Succeed())
	})
})
