package klatt

import "math"

// GlottalSourceKind selects which glottal excitation model a Generator uses.
// The choice is made once, at construction, and never changes for the life
// of a Generator.
type GlottalSourceKind int

const (
	// Impulsive drives a critically-damped resonator with a band-limited
	// two-sample doublet once per period.
	Impulsive GlottalSourceKind = iota
	// Natural produces the KLGLOTT88 polynomial glottal flow derivative.
	Natural
	// Noise emits raw white noise as the glottal excitation.
	Noise
)

// MainParams configures a Generator. It is immutable for the life of the
// generator it constructs.
type MainParams struct {
	// SampleRate is the output sample rate in Hz. Must be positive.
	SampleRate int
	// GlottalSource selects the excitation model.
	GlottalSource GlottalSourceKind
}

// Formant is a resonance described by centre frequency and bandwidth, both
// in Hz. A zero, NaN, or infinite Freq or Bw marks the formant as absent;
// see isSet.
type Formant struct {
	Freq float64
	Bw   float64
}

// CascadeParams configures the cascade branch of one frame.
type CascadeParams struct {
	Enabled bool

	VoicingDb     float64
	AspirationDb  float64
	AspirationMod float64 // in [0, 1]

	// NasalAntiformant is the cascade-only nasal zero, distinct from the
	// nasal formant (pole) shared with the parallel branch.
	NasalAntiformant Formant
}

// ParallelParams configures the parallel branch of one frame.
type ParallelParams struct {
	Enabled bool

	VoicingDb     float64
	AspirationDb  float64
	AspirationMod float64 // in [0, 1]

	FricationDb  float64
	FricationMod float64 // in [0, 1]

	BypassDb float64

	// NasalFormantDb gains the shared nasal formant pole for this branch.
	NasalFormantDb float64

	// OralFormantDb[i] gains oral formant i+1 (F1..F6) for this branch.
	OralFormantDb [MaxOralFormants]float64
}

// FrameParams describes one frame's worth of acoustic parameters. A value
// passed to (*Generator).GenerateFrame must never be reused for a later,
// distinct call — see ErrReusedFrameParams.
type FrameParams struct {
	// Duration is only consulted by GenerateSound to size its buffer;
	// GenerateFrame ignores it and is driven entirely by its out slice.
	Duration float64

	F0             float64 // Hz; 0 means unvoiced.
	FlutterLevel   float64 // in [0, 1]
	OpenPhaseRatio float64 // in (0, 1)

	BreathinessDb float64
	TiltDb        float64
	GainDb        float64 // NaN means "unspecified", treated as unity gain.

	// NasalFormant is shared between the cascade nasal pole and the
	// parallel nasal pole; each branch applies its own gain to it.
	NasalFormant Formant

	OralFormants [MaxOralFormants]Formant

	Cascade  CascadeParams
	Parallel ParallelParams
}

// frameState holds the linear gains derived from a FrameParams by the
// frame-parameter binder. It is rebuilt once per period boundary, only
// when a new FrameParams has just been adopted.
type frameState struct {
	breathinessLin        float64
	gainLin               float64
	cascadeVoicingLin     float64
	cascadeAspirationLin  float64
	parallelVoicingLin    float64
	parallelAspirationLin float64
	fricationLin          float64
	parallelBypassLin     float64
}

// periodState tracks where the generator is within the current pitch
// period.
type periodState struct {
	f0Mod      float64
	length     int // samples, >= 1
	openLength int // samples, 0 <= openLength <= length
	position   int // 0-based, advances until it reaches length
}

// dbToLin converts a decibel value to a linear amplitude. Values at or
// below -99 dB, and NaN, map to 0 (silence) — this is the "off" sentinel
// used throughout FrameParams.
func dbToLin(d float64) float64 {
	if math.IsNaN(d) || d <= -99 {
		return 0
	}

	return math.Pow(10, d/20)
}

// overallGainLin is like dbToLin but treats NaN as "unspecified" rather
// than "off": the overall output gain has no meaningful "disabled" state,
// unlike the per-branch voicing/aspiration/frication gains, so an absent
// value defaults to unity rather than to silence (this resolves an
// ambiguity between spec Testable Property 1 and Scenario A).
func overallGainLin(d float64) float64 {
	if math.IsNaN(d) {
		return 1
	}

	return dbToLin(d)
}

// isSet reports whether a formant frequency or bandwidth value should be
// treated as present. Zero, NaN, and infinite values all mean "absent".
func isSet(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// formantSet reports whether both halves of a Formant are present.
func formantSet(f Formant) bool {
	return isSet(f.Freq) && isSet(f.Bw)
}
