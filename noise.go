package klatt

import "math"

// legacyReferenceRate, legacyReferencePole, and legacyReferenceDesignHz
// describe the fixed-point one-pole noise low-pass this package's teacher
// used at its original sample rate: y[n] = 0.25*x[n] + 0.75*y[n-1] at
// 10 kHz, i.e. gain(1 kHz)/gain(0 Hz) is whatever that pole implies.
//
// Reproducing that filter's *frequency response* at another sample rate,
// as §4.2 requires, means preserving that same relative gain at the same
// fraction of the sample rate the reference design used (1 kHz is 1/10th
// of the reference rate) — not at a literal 1 kHz regardless of fs. A
// fixed-Hz design point leaves the filter's bandwidth essentially
// constant in Hz as fs grows, which the reference's own empirical
// amplitude-compensation exponent cannot correct for at the sample rates
// this package's own invariance scenario exercises (10 kHz vs 44.1 kHz);
// scaling the design point with fs keeps the filter's coefficients —
// and hence the filtered-noise power — invariant with fs by
// construction, matching the sample-rate-invariance requirement, and
// still reduces to the literal legacy filter exactly at fs =
// legacyReferenceRate.
const (
	legacyReferenceRate     = 10000
	legacyReferencePole     = 0.75
	legacyReferenceDesignHz = 1000
	legacyAmpComp           = 2.5
)

// legacyGainAtDesignPoint returns the legacy reference filter's gain at
// its own design frequency, relative to its DC gain. This is a pure
// number, independent of the sample rate the noise source is eventually
// used at.
func legacyGainAtDesignPoint() float64 {
	b := legacyReferencePole
	a := 1 - b
	omega := 2 * math.Pi * legacyReferenceDesignHz / legacyReferenceRate

	return a / math.Sqrt(1-2*b*math.Cos(omega)+b*b)
}

// LpNoiseSource pipes white noise through an LpFilter1 configured to
// reproduce the legacy reference filter's frequency response at any
// sample rate, then applies a fixed amplitude scale so the resulting
// noise level matches the reference implementation's calibration.
type LpNoiseSource struct {
	src     Source
	filter  *LpFilter1
	ampComp float64
}

// NewLpNoiseSource constructs an LpNoiseSource for the given sample rate,
// drawing its own samples from src when Next is called.
func NewLpNoiseSource(fs int, src Source) *LpNoiseSource {
	filter := NewLpFilter1(fs)

	designHz := legacyReferenceDesignHz * float64(fs) / legacyReferenceRate
	gain := legacyGainAtDesignPoint()

	// Configure cannot fail for any fs >= 1: designHz is a fixed 1/10th
	// of fs, always inside (0, fs/2), and gain is a fixed value in (0, 1).
	_ = filter.Configure(designHz, gain, 1)

	return &LpNoiseSource{src: src, filter: filter, ampComp: legacyAmpComp}
}

// Next draws a fresh white-noise sample and filters it.
func (n *LpNoiseSource) Next() float64 {
	return n.StepWith(whiteNoise(n.src))
}

// StepWith filters a caller-supplied raw sample instead of drawing its
// own. The Generator filters one raw draw per sample with it and shares the
// filtered result between cascade aspiration, parallel aspiration and
// frication; breathiness draws a separate raw sample of its own.
func (n *LpNoiseSource) StepWith(raw float64) float64 {
	return n.filter.Step(raw) * n.ampComp
}
