// Package analysis inspects the sample series of a finished run.
//
// The package includes:
//
//   - [PowerSpectrum]: magnitude spectrum of a series with its mean removed
//   - [DominantPeriod]: period of the strongest oscillation, e.g. a wall
//     controller hunting around its target
//   - [SettlingStep]: first step after which a series stays within a band
//   - [Summarize]: mean, spread and extremes of a series
//
// # Controller Oscillation
//
// An adaptive wall that is tuned too aggressively makes the packing
// reaction oscillate:
//
//	period, ok := analysis.DominantPeriod(result.Series(func(s sim.Sample) float64 {
//	    return s.PackingReaction
//	}), dt)
//	if ok && period < 10*dt {
//	    // lower kp
//	}
package analysis
