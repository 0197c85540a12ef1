package klatt

import (
	"fmt"
	"math"
)

// filterMode is the tagged mode shared by every primitive filter. The
// per-sample Step method branches on it once; entering passthrough or
// muted also zeroes any internal delay state, so returning to active later
// never produces a click from stale history.
type filterMode int

const (
	modePassthrough filterMode = iota // output = input; the zero value, safe before any Configure call.
	modeMuted
	modeActive
)

func validFreqOpen(f float64, fs int) bool {
	nyquist := float64(fs) / 2
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f > 0 && f < nyquist
}

func validFreqHalfOpen(f float64, fs int) bool {
	nyquist := float64(fs) / 2
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0 && f < nyquist
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// LpFilter1 is a first-order IIR filter: y[n] = a*x[n] + b*y[n-1]. Configured
// from a target frequency, a pole-radius-like gain parameter, and an extra
// output gain, it can act as either a low-pass (spectral tilt) or, with
// suitable parameters, a shelving filter.
type LpFilter1 struct {
	fs   int
	mode filterMode
	a, b float64
	y1   float64
}

// NewLpFilter1 constructs an LpFilter1 bound to the given sample rate, in
// passthrough mode until Configure is called.
func NewLpFilter1(fs int) *LpFilter1 {
	return &LpFilter1{fs: fs}
}

// Configure sets the filter's coefficients from a target frequency f (Hz,
// must lie in (0, fs/2)), a gain parameter g (must lie in (0, 1)), and an
// extra output gain (must be finite). It solves b^2 - 2*q*b + 1 = 0 for the
// smaller root and derives a from it.
func (l *LpFilter1) Configure(f, g, extraGain float64) error {
	if !validFreqOpen(f, l.fs) {
		return fmt.Errorf("%w: frequency %v out of range (0, %v)", ErrInvalidFilterParameter, f, float64(l.fs)/2)
	}

	if math.IsNaN(g) || math.IsInf(g, 0) || g <= 0 || g >= 1 {
		return fmt.Errorf("%w: gain %v out of range (0, 1)", ErrInvalidFilterParameter, g)
	}

	if !finite(extraGain) {
		return fmt.Errorf("%w: non-finite extra gain %v", ErrInvalidFilterParameter, extraGain)
	}

	omega := 2 * math.Pi * f / float64(l.fs)
	g2 := g * g
	q := (1 - g2*math.Cos(omega)) / (1 - g2)
	b := q - math.Sqrt(q*q-1)

	l.b = b
	l.a = (1 - b) * extraGain
	l.mode = modeActive

	return nil
}

// SetPassthrough forces the filter into passthrough mode and clears its
// delay state.
func (l *LpFilter1) SetPassthrough() {
	l.mode = modePassthrough
	l.y1 = 0
}

// SetMuted forces the filter into muted mode and clears its delay state.
func (l *LpFilter1) SetMuted() {
	l.mode = modeMuted
	l.y1 = 0
}

// Step advances the filter by one sample.
func (l *LpFilter1) Step(x float64) float64 {
	switch l.mode {
	case modePassthrough:
		return x
	case modeMuted:
		return 0
	default:
		y := l.a*x + l.b*l.y1
		l.y1 = y

		return y
	}
}

// Resonator is a two-pole IIR filter: y[n] = a*x[n] + b*y[n-1] + c*y[n-2].
type Resonator struct {
	fs   int
	mode filterMode
	a, b, c float64
	r       float64 // pole radius, retained for AdjustPeakGain
	p1, p2  float64
}

// NewResonator constructs a Resonator bound to the given sample rate, in
// passthrough mode until Configure is called.
func NewResonator(fs int) *Resonator {
	return &Resonator{fs: fs}
}

// Configure sets the resonator's coefficients from a centre frequency f
// (Hz, must lie in [0, fs/2)), a bandwidth bw (Hz, must be positive), and a
// DC gain (must be positive). f = 0 degenerates the resonator to a
// one-pole low-pass.
func (r *Resonator) Configure(f, bw, dcGain float64) error {
	if !validFreqHalfOpen(f, r.fs) {
		return fmt.Errorf("%w: frequency %v out of range [0, %v)", ErrInvalidFilterParameter, f, float64(r.fs)/2)
	}

	if !finite(bw) || bw <= 0 {
		return fmt.Errorf("%w: bandwidth %v must be positive", ErrInvalidFilterParameter, bw)
	}

	if !finite(dcGain) || dcGain <= 0 {
		return fmt.Errorf("%w: dc gain %v must be positive", ErrInvalidFilterParameter, dcGain)
	}

	omega := 2 * math.Pi * f / float64(r.fs)
	rr := math.Exp(-math.Pi * bw / float64(r.fs))
	b := 2 * rr * math.Cos(omega)
	c := -rr * rr
	a := (1 - b - c) * dcGain

	r.r = rr
	r.b = b
	r.c = c
	r.a = a
	r.mode = modeActive

	return nil
}

// AdjustImpulseGain overrides the resonator's input gain coefficient
// directly, leaving the pole location untouched. Used by the impulsive
// glottal source, which always wants unit impulse gain regardless of the
// DC-gain formula.
func (r *Resonator) AdjustImpulseGain(a float64) {
	r.a = a
}

// AdjustPeakGain sets the input gain coefficient to p*(1-r), r being the
// pole radius, so that the resonator's response at its own centre
// frequency is approximately p times the input amplitude. The exact gain
// there is p/|1 - r*exp(-2jω)| (ω the centre frequency in radians per
// sample), which equals p only where that denominator is close to 1.
func (r *Resonator) AdjustPeakGain(p float64) error {
	if !finite(p) || p <= 0 {
		return fmt.Errorf("%w: peak gain %v must be positive", ErrInvalidPeakGain, p)
	}

	r.a = p * (1 - r.r)

	return nil
}

// SetPassthrough forces the resonator into passthrough mode and clears its
// delay state.
func (r *Resonator) SetPassthrough() {
	r.mode = modePassthrough
	r.p1, r.p2 = 0, 0
}

// SetMuted forces the resonator into muted mode and clears its delay
// state.
func (r *Resonator) SetMuted() {
	r.mode = modeMuted
	r.p1, r.p2 = 0, 0
}

// Step advances the resonator by one sample.
func (r *Resonator) Step(x float64) float64 {
	switch r.mode {
	case modePassthrough:
		return x
	case modeMuted:
		return 0
	default:
		y := r.a*x + r.b*r.p1 + r.c*r.p2
		r.p2 = r.p1
		r.p1 = y

		return y
	}
}

// AntiResonator is a two-zero FIR filter: y[n] = a*x[n] + b*x[n-1] + c*x[n-2].
type AntiResonator struct {
	fs      int
	mode    filterMode
	a, b, c float64
	x1, x2  float64
}

// NewAntiResonator constructs an AntiResonator bound to the given sample
// rate, in passthrough mode until Configure is called.
func NewAntiResonator(fs int) *AntiResonator {
	return &AntiResonator{fs: fs}
}

// Configure sets the anti-resonator's coefficients from a centre frequency
// f (Hz, must lie in [0, fs/2)) and a bandwidth bw (Hz, must be positive).
// If the equivalent resonator's a0 term is exactly zero the anti-resonator
// is degenerate and emits zero for every input until reconfigured.
func (ar *AntiResonator) Configure(f, bw float64) error {
	if !validFreqHalfOpen(f, ar.fs) {
		return fmt.Errorf("%w: frequency %v out of range [0, %v)", ErrInvalidFilterParameter, f, float64(ar.fs)/2)
	}

	if !finite(bw) || bw <= 0 {
		return fmt.Errorf("%w: bandwidth %v must be positive", ErrInvalidFilterParameter, bw)
	}

	omega := 2 * math.Pi * f / float64(ar.fs)
	r := math.Exp(-math.Pi * bw / float64(ar.fs))
	b0 := 2 * r * math.Cos(omega)
	c0 := -r * r
	a0 := 1 - b0 - c0

	if a0 == 0 {
		ar.mode = modeMuted
		ar.x1, ar.x2 = 0, 0

		return nil
	}

	ar.a = 1 / a0
	ar.b = -b0 / a0
	ar.c = -c0 / a0
	ar.mode = modeActive

	return nil
}

// SetPassthrough forces the anti-resonator into passthrough mode and
// clears its delay state.
func (ar *AntiResonator) SetPassthrough() {
	ar.mode = modePassthrough
	ar.x1, ar.x2 = 0, 0
}

// SetMuted forces the anti-resonator into muted mode and clears its delay
// state.
func (ar *AntiResonator) SetMuted() {
	ar.mode = modeMuted
	ar.x1, ar.x2 = 0, 0
}

// Step advances the anti-resonator by one sample.
func (ar *AntiResonator) Step(x float64) float64 {
	switch ar.mode {
	case modePassthrough:
		return x
	case modeMuted:
		return 0
	default:
		y := ar.a*x + ar.b*ar.x1 + ar.c*ar.x2
		ar.x2 = ar.x1
		ar.x1 = x

		return y
	}
}

// FirstDifference is a stateless (apart from one delay tap) high-pass
// filter: y[n] = x[n] - x[n-1].
type FirstDifference struct {
	mode filterMode
	x1   float64
}

// NewFirstDifference constructs a FirstDifference filter in active mode.
func NewFirstDifference() *FirstDifference {
	return &FirstDifference{mode: modeActive}
}

// SetPassthrough forces the filter into passthrough mode and clears its
// delay state.
func (fd *FirstDifference) SetPassthrough() {
	fd.mode = modePassthrough
	fd.x1 = 0
}

// SetMuted forces the filter into muted mode and clears its delay state.
func (fd *FirstDifference) SetMuted() {
	fd.mode = modeMuted
	fd.x1 = 0
}

// SetActive returns the filter to active mode without disturbing its
// delay state's zeroing from the last mode change.
func (fd *FirstDifference) SetActive() {
	fd.mode = modeActive
}

// Step advances the filter by one sample.
func (fd *FirstDifference) Step(x float64) float64 {
	switch fd.mode {
	case modePassthrough:
		return x
	case modeMuted:
		return 0
	default:
		y := x - fd.x1
		fd.x1 = x

		return y
	}
}
