package metrics

import (
	"math"

	"github.com/san-kum/chromsim/internal/sim"
)

// PackingReaction is the mean packing reaction over a run.
type PackingReaction struct {
	name    string
	sum     float64
	peak    float64
	samples int
}

func NewPackingReaction() *PackingReaction {
	return &PackingReaction{
		name: "packing_reaction",
	}
}

func (p *PackingReaction) Name() string { return p.name }

func (p *PackingReaction) Observe(s sim.Sample) {
	p.sum += s.PackingReaction
	p.peak = math.Max(p.peak, s.PackingReaction)
	p.samples++
}

func (p *PackingReaction) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.sum / float64(p.samples)
}

// Peak returns the largest reaction observed.
func (p *PackingReaction) Peak() float64 { return p.peak }

func (p *PackingReaction) Reset() {
	p.sum = 0
	p.peak = 0
	p.samples = 0
}

// WallEffort is the mean deviation of the wall scale from one, i.e. how
// hard the wall controller had to work.
type WallEffort struct {
	name    string
	sum     float64
	samples int
}

func NewWallEffort() *WallEffort {
	return &WallEffort{
		name: "wall_effort",
	}
}

func (w *WallEffort) Name() string {
	return w.name
}

func (w *WallEffort) Observe(s sim.Sample) {
	w.sum += math.Abs(s.WallScale - 1)
	w.samples++
}

func (w *WallEffort) Value() float64 {
	if w.samples == 0 {
		return 0
	}
	return w.sum / float64(w.samples)
}

func (w *WallEffort) Reset() {
	w.sum = 0
	w.samples = 0
}

// ReactionTracking is the mean absolute distance of the packing reaction
// from the wall controller's target.
type ReactionTracking struct {
	name    string
	target  float64
	sum     float64
	samples int
}

func NewReactionTracking(target float64) *ReactionTracking {
	return &ReactionTracking{
		name:   "reaction_tracking",
		target: target,
	}
}

func (r *ReactionTracking) Name() string { return r.name }

func (r *ReactionTracking) Observe(s sim.Sample) {
	r.sum += math.Abs(s.PackingReaction - r.target)
	r.samples++
}

func (r *ReactionTracking) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return r.sum / float64(r.samples)
}

func (r *ReactionTracking) Reset() {
	r.sum = 0
	r.samples = 0
}
