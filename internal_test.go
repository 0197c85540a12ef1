package klatt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDbToLinConversion(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 1.0, dbToLin(0), 1e-12)
	require.InDelta(t, 0.1, dbToLin(-20), 1e-12)
	require.Equal(t, 0.0, dbToLin(-99))
	require.Equal(t, 0.0, dbToLin(math.NaN()))
}

func TestOverallGainLinTreatsNaNAsUnity(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1.0, overallGainLin(math.NaN()))
	require.Equal(t, 0.0, overallGainLin(-99))
	require.InDelta(t, 1.0, overallGainLin(0), 1e-12)
}

func TestFormantSet(t *testing.T) {
	t.Parallel()

	require.True(t, formantSet(Formant{Freq: 500, Bw: 80}))
	require.False(t, formantSet(Formant{Freq: 0, Bw: 80}))
	require.False(t, formantSet(Formant{Freq: 500, Bw: math.NaN()}))
}

func TestLpFilter1RejectsInvalidParameters(t *testing.T) {
	t.Parallel()

	l := NewLpFilter1(16000)

	require.ErrorIs(t, l.Configure(0, 0.5, 1), ErrInvalidFilterParameter)
	require.ErrorIs(t, l.Configure(9000, 0.5, 1), ErrInvalidFilterParameter)
	require.ErrorIs(t, l.Configure(1000, 1, 1), ErrInvalidFilterParameter)
	require.ErrorIs(t, l.Configure(1000, math.NaN(), 1), ErrInvalidFilterParameter)
	require.NoError(t, l.Configure(1000, 0.9, 1))
}

func TestResonatorAdjustPeakGainRejectsInvalid(t *testing.T) {
	t.Parallel()

	r := NewResonator(16000)
	require.NoError(t, r.Configure(800, 80, 1))
	require.ErrorIs(t, r.AdjustPeakGain(0), ErrInvalidPeakGain)
	require.ErrorIs(t, r.AdjustPeakGain(math.Inf(1)), ErrInvalidPeakGain)
	require.NoError(t, r.AdjustPeakGain(2))
}

func TestAntiResonatorConfiguredIsActive(t *testing.T) {
	t.Parallel()

	ar := NewAntiResonator(16000)
	// f = 0, bw chosen so 1 - b0 - c0 == 0 is not generally reachable via
	// public inputs; exercise the ordinary configured path instead and
	// confirm it stays active.
	require.NoError(t, ar.Configure(500, 60))
	require.NotEqual(t, modeMuted, ar.mode)
}

func TestFilterModeTransitionsClearState(t *testing.T) {
	t.Parallel()

	r := NewResonator(16000)
	require.NoError(t, r.Configure(800, 80, 1))
	r.Step(1)
	r.Step(1)
	require.NotZero(t, r.p1)

	r.SetPassthrough()
	require.Zero(t, r.p1)
	require.Zero(t, r.p2)
	require.Equal(t, 5.0, r.Step(5))

	r.SetMuted()
	require.Equal(t, 0.0, r.Step(5))
}

func TestNewGlottalSourceUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := newGlottalSource(GlottalSourceKind(99), 16000, NewPCGSource(1, 1))
	require.ErrorIs(t, err, ErrUnknownGlottalSourceKind)
}

func TestImpulsiveGlottalSilentWhenOpenLengthZero(t *testing.T) {
	t.Parallel()

	src, err := newGlottalSource(Impulsive, 16000, NewPCGSource(1, 1))
	require.NoError(t, err)

	src.startPeriod(0)

	for i := 0; i < 10; i++ {
		require.Equal(t, 0.0, src.next())
	}
}

func TestNaturalGlottalClosesAfterOpenLength(t *testing.T) {
	t.Parallel()

	src, err := newGlottalSource(Natural, 16000, NewPCGSource(1, 1))
	require.NoError(t, err)

	const openLength = 40
	src.startPeriod(openLength)

	for i := 0; i < openLength; i++ {
		src.next()
	}

	require.Equal(t, 0.0, src.next())
}

func TestSecondHalfUsesUnroundedComparison(t *testing.T) {
	t.Parallel()

	p := periodState{length: 5, position: 2}
	require.False(t, secondHalf(p))

	p.position = 3
	require.True(t, secondHalf(p))
}

func TestBindFrameConfiguresPassthroughForAbsentFormants(t *testing.T) {
	t.Parallel()

	g, err := NewWithSource(MainParams{SampleRate: 16000, GlottalSource: Impulsive}, NewPCGSource(1, 1))
	require.NoError(t, err)

	fp := FrameParams{F0: 100, OpenPhaseRatio: 0.5, GainDb: math.NaN()}
	require.NoError(t, g.bindFrame(&fp))

	require.Equal(t, modePassthrough, g.cascadeOral[0].mode)
	require.Equal(t, modePassthrough, g.cascadeNasalPole.mode)
	require.Equal(t, modeMuted, g.parallelOral[0].mode)
	require.Equal(t, modeMuted, g.parallelNasalPole.mode)
}
