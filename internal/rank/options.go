package rank

import "math/rand/v2"

// Options configures a full ranking run with both estimators.
type Options struct {
	DampingFactor float64 // probability of following a link; typically 0.85
	Samples       int     // Monte-Carlo steps for SampleRank
	Tolerance     float64 // per-page convergence threshold for Iterate
	MaxIterations int     // iteration ceiling for Iterate
}

// DefaultOptions returns damping 0.85, 10000 samples, tolerance 0.001 and
// an iteration ceiling of 10000.
func DefaultOptions() Options {
	return Options{
		DampingFactor: 0.85,
		Samples:       10000,
		Tolerance:     0.001,
		MaxIterations: DefaultMaxIterations,
	}
}

// DefaultMaxIterations bounds Iterate when no ceiling is given. Damping in
// (0, 1) contracts by at least the damping factor per sweep, so realistic
// tolerances settle in a few hundred sweeps at most.
const DefaultMaxIterations = 10000

// IterateOptions returns the solver subset of o
func (o Options) IterateOptions() IterateOptions {
	return IterateOptions{
		DampingFactor: o.DampingFactor,
		Tolerance:     o.Tolerance,
		MaxIterations: o.MaxIterations,
	}
}

// NewSource returns a PCG-backed generator seeded with seed. Runs sharing a
// seed draw the same sequence.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
