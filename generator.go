package klatt

import (
	"fmt"
	"math"

	"github.com/klatt-synth/klattsynth/internal/diag"
)

// flutterOffsetMax bounds the per-generator random flutter time offset
// drawn at construction, in seconds.
const flutterOffsetMax = 1000

// Generator synthesizes speech one frame at a time. It holds all
// pitch-synchronous state (the current period's position and length, the
// currently bound frame's linear gains, every filter's delay memory) and is
// not safe for concurrent use — callers wanting parallel synthesis should
// construct one Generator per goroutine.
type Generator struct {
	mp  MainParams
	src Source
	log diag.Logger

	absPos        int
	flutterOffset float64 // seconds, drawn once at construction

	period periodState
	frame  frameState

	activeFrame     *FrameParams
	lastFrameParams *FrameParams
	pendingFrame    *FrameParams

	glottal glottalSource
	noise   *LpNoiseSource

	tilt *LpFilter1

	cascadeNasalZero *AntiResonator
	cascadeNasalPole *Resonator
	cascadeOral      [MaxOralFormants]*Resonator

	parallelNasalPole *Resonator
	parallelOral      [MaxOralFormants]*Resonator
	parallelDiff      *FirstDifference

	outputLP *Resonator
}

// New constructs a Generator seeded from the process's own ambient
// randomness. Output is not reproducible across runs; use NewWithSource for
// deterministic synthesis.
func New(mp MainParams) (*Generator, error) {
	return NewWithSource(mp, newAmbientSource())
}

// NewWithSource constructs a Generator whose noise and glottal-noise
// excitation draw from src. Two Generators built with Sources that produce
// identical sequences generate identical output for identical frame
// sequences.
func NewWithSource(mp MainParams, src Source) (*Generator, error) {
	if mp.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %v must be positive", ErrInvalidFilterParameter, mp.SampleRate)
	}

	glottal, err := newGlottalSource(mp.GlottalSource, mp.SampleRate, src)
	if err != nil {
		return nil, err
	}

	fs := mp.SampleRate

	g := &Generator{
		mp:  mp,
		src: src,
		log: diag.Nop{},

		flutterOffset: src.Float64() * flutterOffsetMax,

		glottal: glottal,
		noise:   NewLpNoiseSource(fs, src),

		tilt: NewLpFilter1(fs),

		cascadeNasalZero: NewAntiResonator(fs),
		cascadeNasalPole: NewResonator(fs),

		parallelNasalPole: NewResonator(fs),
		parallelDiff:      NewFirstDifference(),

		outputLP: NewResonator(fs),
	}

	for i := range g.cascadeOral {
		g.cascadeOral[i] = NewResonator(fs)
	}

	for i := range g.parallelOral {
		g.parallelOral[i] = NewResonator(fs)
	}

	// Fixed output low-pass, unrelated to any frame parameter: a one-pole
	// resonator at DC with bandwidth fs/2, matching the teacher's rout.
	if err := g.outputLP.Configure(0, float64(fs)/2, 1); err != nil {
		return nil, err
	}

	return g, nil
}

// SetLogger installs a diagnostics sink for warnings the frame-parameter
// binder emits about clamped or ambiguous input (e.g. a formant with a
// frequency but no bandwidth). It is a no-op sink by default.
func (g *Generator) SetLogger(log diag.Logger) {
	if log == nil {
		log = diag.Nop{}
	}

	g.log = log
}

// GenerateFrame synthesizes len(out) samples driven by frame, writing them
// into out. frame must not be the same *FrameParams instance passed to the
// immediately preceding call on this Generator — reusing that instance
// returns ErrReusedFrameParams, since the generator would otherwise be unable to
// tell a genuinely-updated frame apart from an accidental double-submit of
// stale state.
//
// Frame parameter changes take effect at the next pitch-period boundary,
// never mid-period, so voiced output never clicks when parameters change
// mid-call.
func (g *Generator) GenerateFrame(frame *FrameParams, out []float64) error {
	if frame == nil {
		return fmt.Errorf("%w: nil frame", ErrInvalidFilterParameter)
	}

	if frame == g.lastFrameParams {
		return ErrReusedFrameParams
	}

	g.lastFrameParams = frame
	g.pendingFrame = frame

	for i := range out {
		if g.period.position >= g.period.length {
			if err := g.beginPeriod(); err != nil {
				return err
			}
		}

		sample, err := g.step()
		if err != nil {
			return err
		}

		out[i] = sample
		g.period.position++
		g.absPos++
	}

	return nil
}

// beginPeriod adopts any pending frame, then computes this period's F0
// flutter modulation, length, and open-phase length, and (re)starts the
// glottal source for the new period.
//
// period_length is forced to 1 (an unvoiced tick) whenever the modulated F0
// is zero or negative; open_phase_length is forced to 0 whenever
// period_length is 1. Both rules come directly from the invariant that
// period_length is never less than 1.
func (g *Generator) beginPeriod() error {
	if g.pendingFrame != nil {
		if err := g.bindFrame(g.pendingFrame); err != nil {
			return err
		}

		g.activeFrame = g.pendingFrame
		g.pendingFrame = nil
	}

	f := g.activeFrame

	f0Mod := f.F0
	if f0Mod > 0 && f.FlutterLevel > 0 {
		t := float64(g.absPos)/float64(g.mp.SampleRate) + g.flutterOffset
		flc := math.Sin(2 * math.Pi * 12.7 * t)
		fld := math.Sin(2 * math.Pi * 7.1 * t)
		fle := math.Sin(2 * math.Pi * 4.7 * t)
		f0Mod = f.F0 * (1 + f.FlutterLevel/50*(flc+fld+fle))
	}

	var length, openLength int

	if f0Mod > 0 {
		length = int(math.Round(float64(g.mp.SampleRate) / f0Mod))
		if length < 1 {
			length = 1
		}
	} else {
		length = 1
	}

	if length > 1 {
		openLength = int(math.Round(float64(length) * f.OpenPhaseRatio))
		if openLength < 0 {
			openLength = 0
		}

		if openLength > length {
			openLength = length
		}
	}

	g.period = periodState{f0Mod: f0Mod, length: length, openLength: openLength, position: 0}
	g.glottal.startPeriod(openLength)

	return nil
}

// step advances every filter by one sample and returns the mixed,
// tilt-and-gain-adjusted output sample.
func (g *Generator) step() (float64, error) {
	f := g.activeFrame

	voice := g.glottal.next()
	voice = g.tilt.Step(voice)

	if g.frame.breathinessLin != 0 && g.period.position < g.period.openLength {
		voice += whiteNoise(g.src) * g.frame.breathinessLin
	}

	rawNoise := whiteNoise(g.src)
	noiseFiltered := g.noise.StepWith(rawNoise)

	var out float64

	if f.Cascade.Enabled {
		out += g.stepCascade(voice, noiseFiltered)
	}

	if f.Parallel.Enabled {
		out += g.stepParallel(voice, noiseFiltered)
	}

	out = g.outputLP.Step(out)
	out *= g.frame.gainLin

	return out, nil
}

// GenerateSound is a convenience wrapper around New and GenerateFrame: it
// synthesizes an entire utterance from a sequence of frames, sizing the
// output buffer from each frame's Duration.
func GenerateSound(mp MainParams, frames []FrameParams) ([]float64, error) {
	return GenerateSoundWithSource(mp, frames, newAmbientSource())
}

// GenerateSoundWithSource is GenerateSound with an explicit, injectable
// Source for deterministic synthesis.
func GenerateSoundWithSource(mp MainParams, frames []FrameParams, src Source) ([]float64, error) {
	g, err := NewWithSource(mp, src)
	if err != nil {
		return nil, err
	}

	var out []float64

	for i := range frames {
		// Take the address of a freshly scoped copy so each call gets its
		// own distinct *FrameParams identity, even if the caller's slice
		// is reused or the loop variable's address would otherwise be
		// shared across iterations.
		fp := frames[i]

		n := int(math.Round(fp.Duration * float64(mp.SampleRate)))
		if n <= 0 {
			continue
		}

		buf := make([]float64, n)
		if err := g.GenerateFrame(&fp, buf); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		out = append(out, buf...)
	}

	return out, nil
}
