package klatt

// glottalSource is the per-generator glottal excitation. Exactly one
// concrete implementation is selected at construction time from
// MainParams.GlottalSource and never changes afterward — a tagged union
// realized as a one-time interface choice, not a per-call dispatch
// closure.
type glottalSource interface {
	// startPeriod re-initialises the source for a new pitch period whose
	// open phase lasts openLength samples (0 means the whole period is
	// closed/unvoiced).
	startPeriod(openLength int)
	// next advances the source by one sample.
	next() float64
}

func newGlottalSource(kind GlottalSourceKind, fs int, src Source) (glottalSource, error) {
	switch kind {
	case Impulsive:
		return &impulsiveGlottal{res: NewResonator(fs), fs: fs}, nil
	case Natural:
		return &naturalGlottal{}, nil
	case Noise:
		return &noiseGlottal{src: src}, nil
	default:
		return nil, ErrUnknownGlottalSourceKind
	}
}

// impulsiveGlottal drives a resonator configured as a critically-damped
// one-pole low-pass with a two-sample doublet (0, +1, -1) once per period.
type impulsiveGlottal struct {
	fs     int
	res    *Resonator
	silent bool
	pos    int
}

func (g *impulsiveGlottal) startPeriod(openLength int) {
	g.pos = 0

	if openLength <= 0 {
		g.silent = true

		return
	}

	g.silent = false

	bw := float64(g.fs) / float64(openLength)
	// dcGain is irrelevant here: AdjustImpulseGain overrides a directly
	// immediately afterward. Configure cannot fail for f=0, bw>0.
	_ = g.res.Configure(0, bw, 1)
	g.res.AdjustImpulseGain(1)
}

func (g *impulsiveGlottal) next() float64 {
	if g.silent {
		return 0
	}

	var x float64

	switch g.pos {
	case 0:
		x = 0
	case 1:
		x = 1
	case 2:
		x = -1
	default:
		x = 0
	}

	g.pos++

	return g.res.Step(x)
}

// naturalGlottal produces the KLGLOTT88 glottal flow derivative: an
// analytic polynomial waveshape with an abrupt closure, intentionally not
// smoothed.
type naturalGlottal struct {
	openLength int
	b2, a1, x  float64
	pos        int
}

const klglott88Amplification = 5

func (g *naturalGlottal) startPeriod(openLength int) {
	g.openLength = openLength
	g.pos = 0
	g.x = 0

	if openLength <= 0 {
		g.b2, g.a1 = 0, 0

		return
	}

	t := float64(openLength)
	g.b2 = -klglott88Amplification / (t * t)
	g.a1 = -g.b2 * t / 3
}

func (g *naturalGlottal) next() float64 {
	if g.pos >= g.openLength {
		return 0
	}

	g.a1 += g.b2
	g.x += g.a1
	g.pos++

	return g.x
}

// noiseGlottal emits raw white noise as the glottal excitation.
type noiseGlottal struct {
	src Source
}

func (g *noiseGlottal) startPeriod(int) {}

func (g *noiseGlottal) next() float64 {
	return whiteNoise(g.src)
}
