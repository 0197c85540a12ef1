package klatt

import "math/rand/v2"

// Source is the seedable pseudo-random number generator interface injected
// into a Generator. The engine calls Float64 once at construction (for the
// flutter time offset) and then at least once per output sample: one draw
// for the shared filtered noise, plus one for breathiness during the open
// phase and one for the noise glottal source when that kind is selected.
// Implementations must return a value in [0, 1).
//
// The teacher this package is grounded on drew from the ambient global
// PRNG with unspecified seeding, which makes output non-reproducible.
// Threading a Source through the Generator instead makes synthesis fully
// deterministic when NewWithSource is given a fixed seed.
type Source interface {
	Float64() float64
}

// pcgSource adapts math/rand/v2's PCG generator to Source. PCG is the
// seedable generator the standard library ships that matches the kind of
// generator (Xoshiro/PCG family) the spec calls for; no example repo in
// the reference pack imports a third-party PRNG package for this role.
type pcgSource struct {
	r *rand.Rand
}

// NewPCGSource returns a Source seeded deterministically from the two
// given seed words. Two Sources built from the same seeds produce
// identical sequences.
func NewPCGSource(seed1, seed2 uint64) Source {
	return &pcgSource{r: rand.New(rand.NewPCG(seed1, seed2))}
}

func (p *pcgSource) Float64() float64 {
	return p.r.Float64()
}

// newAmbientSource builds a Source seeded from the runtime's own
// auto-seeded global generator, for callers that construct a Generator via
// New and do not care about reproducibility — mirroring the teacher's
// reliance on the ambient global PRNG.
func newAmbientSource() Source {
	return NewPCGSource(rand.Uint64(), rand.Uint64())
}

// whiteNoise returns a uniform sample in [-1, +1). The asymmetry (the
// upper bound is open) is inherited from the reference implementation and
// is intentionally not corrected.
func whiteNoise(src Source) float64 {
	return src.Float64()*2 - 1
}
