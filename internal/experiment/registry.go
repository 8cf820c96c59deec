package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/chromsim/internal/metrics"
	"github.com/san-kum/chromsim/internal/sim"
)

// DefaultForceThreshold is the largest particle force the stability metric
// accepts.
const DefaultForceThreshold = 1e4

type Registry struct {
	metrics map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func() sim.Metric),
	}

	r.metrics["energy"] = func() sim.Metric { return metrics.NewEnergy() }
	r.metrics["energy_drift"] = func() sim.Metric { return metrics.NewEnergyDrift() }
	r.metrics["packing_reaction"] = func() sim.Metric { return metrics.NewPackingReaction() }
	r.metrics["wall_effort"] = func() sim.Metric { return metrics.NewWallEffort() }
	r.metrics["stability"] = func() sim.Metric { return metrics.NewStability(DefaultForceThreshold) }

	return r
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh instances of every registered metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	out := make([]sim.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name]())
	}
	return out
}
