package optim

import (
	"context"

	"github.com/san-kum/chromsim/internal/config"
	"github.com/san-kum/chromsim/internal/experiment"
)

// TrackingMetric is the score minimized by TuneWall.
const TrackingMetric = "reaction_tracking"

// TuneWall grid searches the wall controller gains of cfg for the lowest
// mean distance between the packing reaction and its target. Every grid
// point uses the same seed so they start from the same structure.
func TuneWall(ctx context.Context, cfg *config.Config, seed int64, kps, kis []float64) (map[string]float64, float64, []Trial, error) {
	registry := experiment.NewRegistry()
	grid := NewGridSearch([]string{"kp", "ki"}, [][]float64{kps, kis})

	return grid.Search(ctx, func(params map[string]float64) (*experiment.Experiment, error) {
		c := *cfg
		c.Run.AdaptWall = true
		c.Run.Kp = params["kp"]
		c.Run.Ki = params["ki"]

		exp := experiment.New(&c)
		if err := exp.Setup(seed, registry.DefaultMetrics()); err != nil {
			return nil, err
		}
		return exp, nil
	}, TrackingMetric)
}
