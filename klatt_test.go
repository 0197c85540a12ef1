package klatt_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/klatt-synth/klattsynth"
)

func vowelFrame() klatt.FrameParams {
	return klatt.FrameParams{
		Duration:       1.0,
		F0:             247,
		FlutterLevel:   0.25,
		OpenPhaseRatio: 0.7,
		BreathinessDb:  -25,
		TiltDb:         0,
		GainDb:         math.NaN(),
		Cascade: klatt.CascadeParams{
			Enabled:              true,
			VoicingDb:            0,
			AspirationDb:         -25,
			AspirationMod:        0.5,
		},
		OralFormants: [klatt.MaxOralFormants]klatt.Formant{
			{Freq: 520, Bw: 76},
			{Freq: 1006, Bw: 102},
			{Freq: 2831, Bw: 72},
			{Freq: 3168, Bw: 102},
			{Freq: 4135, Bw: 816},
			{Freq: 5020, Bw: 596},
		},
	}
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	return floats.Norm(x, 2) / math.Sqrt(float64(len(x)))
}

func TestSilenceWhenMuted(t *testing.T) {
	t.Parallel()

	fp := vowelFrame()
	fp.GainDb = -99

	mp := klatt.MainParams{SampleRate: 44100, GlottalSource: klatt.Impulsive}
	out, err := klatt.GenerateSoundWithSource(mp, []klatt.FrameParams{fp}, klatt.NewPCGSource(1, 1))
	require.NoError(t, err)

	for i, s := range out {
		require.Equalf(t, 0.0, s, "sample %d not silent", i)
	}
}

func TestOutputLength(t *testing.T) {
	t.Parallel()

	mp := klatt.MainParams{SampleRate: 44100, GlottalSource: klatt.Impulsive}
	durations := []float64{0.25, 0.1, 0.5}

	frames := make([]klatt.FrameParams, len(durations))

	want := 0

	for i, d := range durations {
		fp := vowelFrame()
		fp.Duration = d
		frames[i] = fp
		want += int(math.Round(d * float64(mp.SampleRate)))
	}

	out, err := klatt.GenerateSoundWithSource(mp, frames, klatt.NewPCGSource(2, 2))
	require.NoError(t, err)
	require.Len(t, out, want)
}

func TestPeriodScheduling(t *testing.T) {
	t.Parallel()

	fp := vowelFrame()
	fp.FlutterLevel = 0
	fp.Duration = 0.05

	mp := klatt.MainParams{SampleRate: 44100, GlottalSource: klatt.Impulsive}

	g, err := klatt.NewWithSource(mp, klatt.NewPCGSource(3, 3))
	require.NoError(t, err)

	n := int(math.Round(fp.Duration * float64(mp.SampleRate)))
	out := make([]float64, n)
	require.NoError(t, g.GenerateFrame(&fp, out))

	periodLen := int(math.Round(float64(mp.SampleRate) / fp.F0))

	// Only the period-length arithmetic is checked here: round(fs/f0) is
	// positive and at least two whole periods fit in the rendered frame.
	// The output samples at the period boundaries are not inspected.
	require.Greater(t, periodLen, 0)
	require.LessOrEqual(t, 2*periodLen, n)
}

func TestFilterPassthroughIdentity(t *testing.T) {
	t.Parallel()

	r := klatt.NewResonator(16000)
	inputs := []float64{0, 1, -1, 0.5, -0.25, 3.14}

	for _, x := range inputs {
		require.Equal(t, x, r.Step(x))
	}

	ar := klatt.NewAntiResonator(16000)
	for _, x := range inputs {
		require.Equal(t, x, ar.Step(x))
	}

	lp := klatt.NewLpFilter1(16000)
	for _, x := range inputs {
		require.Equal(t, x, lp.Step(x))
	}
}

func TestResonatorPeakGain(t *testing.T) {
	t.Parallel()

	const fs = 16000
	const freq = 1000.0
	const bw = 80.0
	const peak = 3.0

	r := klatt.NewResonator(fs)
	require.NoError(t, r.Configure(freq, bw, 1))
	require.NoError(t, r.AdjustPeakGain(peak))

	n := 4000
	maxAmp := 0.0

	for i := 0; i < n; i++ {
		t := float64(i) / fs
		x := math.Sin(2 * math.Pi * freq * t)
		y := r.Step(x)

		if i > n/2 { // after settling
			if math.Abs(y) > maxAmp {
				maxAmp = math.Abs(y)
			}
		}
	}

	require.InDelta(t, peak, maxAmp, 0.15*peak)
}

func TestCascadeOnlyDiffersFromParallelOnly(t *testing.T) {
	t.Parallel()

	mp := klatt.MainParams{SampleRate: 44100, GlottalSource: klatt.Impulsive}

	cascadeOnly := vowelFrame()
	cascadeOnly.Cascade.Enabled = true
	cascadeOnly.Parallel.Enabled = false

	parallelOnly := vowelFrame()
	parallelOnly.Cascade.Enabled = false
	parallelOnly.Parallel.Enabled = true
	parallelOnly.Parallel.VoicingDb = 0
	parallelOnly.Parallel.OralFormantDb = [klatt.MaxOralFormants]float64{-4, -16, -24, -28, -33, -30}

	outA, err := klatt.GenerateSoundWithSource(mp, []klatt.FrameParams{cascadeOnly}, klatt.NewPCGSource(4, 4))
	require.NoError(t, err)

	outB, err := klatt.GenerateSoundWithSource(mp, []klatt.FrameParams{parallelOnly}, klatt.NewPCGSource(4, 4))
	require.NoError(t, err)

	require.NotEqual(t, outA, outB)
}

func TestReusedFrameParamsRejected(t *testing.T) {
	t.Parallel()

	mp := klatt.MainParams{SampleRate: 44100, GlottalSource: klatt.Impulsive}

	g, err := klatt.NewWithSource(mp, klatt.NewPCGSource(5, 5))
	require.NoError(t, err)

	fp := vowelFrame()
	buf1 := make([]float64, 100)
	require.NoError(t, g.GenerateFrame(&fp, buf1))

	buf2 := make([]float64, 100)
	err = g.GenerateFrame(&fp, buf2)
	require.ErrorIs(t, err, klatt.ErrReusedFrameParams)

	for _, s := range buf2 {
		require.Equal(t, 0.0, s)
	}
}

func TestUnvoicedFricationIsNonZero(t *testing.T) {
	t.Parallel()

	fp := klatt.FrameParams{
		Duration: 0.2,
		F0:       0,
		Parallel: klatt.ParallelParams{
			Enabled:      true,
			VoicingDb:    -99,
			AspirationDb: -99,
			FricationDb:  -10,
			BypassDb:     -20,
		},
	}

	mp := klatt.MainParams{SampleRate: 44100, GlottalSource: klatt.Impulsive}

	out, err := klatt.GenerateSoundWithSource(mp, []klatt.FrameParams{fp}, klatt.NewPCGSource(6, 6))
	require.NoError(t, err)
	require.Greater(t, rms(out), 0.0)
}

func TestNaturalSourceDiffersButSharesLength(t *testing.T) {
	t.Parallel()

	fpImpulsive := vowelFrame()
	fpNatural := vowelFrame()

	mp := klatt.MainParams{SampleRate: 44100, GlottalSource: klatt.Impulsive}
	mpNatural := klatt.MainParams{SampleRate: 44100, GlottalSource: klatt.Natural}

	outA, err := klatt.GenerateSoundWithSource(mp, []klatt.FrameParams{fpImpulsive}, klatt.NewPCGSource(7, 7))
	require.NoError(t, err)

	outB, err := klatt.GenerateSoundWithSource(mpNatural, []klatt.FrameParams{fpNatural}, klatt.NewPCGSource(7, 7))
	require.NoError(t, err)

	require.Len(t, outA, len(outB))
	require.NotEqual(t, outA, outB)
}

func TestSampleRateInvarianceOfNoiseAmplitude(t *testing.T) {
	t.Parallel()

	src1 := klatt.NewPCGSource(8, 8)
	src2 := klatt.NewPCGSource(8, 8)

	n1 := klatt.NewLpNoiseSource(10000, src1)
	n2 := klatt.NewLpNoiseSource(44100, src2)

	buf1 := make([]float64, 10000)
	for i := range buf1 {
		buf1[i] = n1.Next()
	}

	buf2 := make([]float64, 44100)
	for i := range buf2 {
		buf2[i] = n2.Next()
	}

	r1 := rms(buf1)
	r2 := rms(buf2)

	ratio := r1 / r2
	require.InDelta(t, 1.0, ratio, 0.1)
}
