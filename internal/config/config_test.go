package config_test

import (
	"math"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"

	"github.com/klatt-synth/klattsynth"
	"github.com/klatt-synth/klattsynth/internal/config"
)

func freq(v float64) *float64 { return &v }

func TestToEngineInputsConvertsFormants(t *testing.T) {
	t.Parallel()

	script := config.FrameScript{
		SampleRate:    44100,
		GlottalSource: "natural",
		Frames: []config.FrameSpec{
			{
				DurationSeconds: 0.5,
				F0Hz:            120,
				OpenPhaseRatio:  0.6,
				OralFormants: [6]config.FormantSpec{
					{FreqHz: freq(500), BandwidthHz: freq(80)},
				},
			},
		},
	}

	mp, frames, err := script.ToEngineInputs()
	require.NoError(t, err)
	require.Equal(t, klatt.MainParams{SampleRate: 44100, GlottalSource: klatt.Natural}, mp)
	require.Len(t, frames, 1)
	require.Equal(t, 500.0, frames[0].OralFormants[0].Freq)
	require.Equal(t, 80.0, frames[0].OralFormants[0].Bw)
	require.True(t, math.IsNaN(frames[0].OralFormants[1].Freq))
	require.True(t, math.IsNaN(frames[0].GainDb))
}

func TestToEngineInputsRejectsUnknownGlottalSource(t *testing.T) {
	t.Parallel()

	script := config.FrameScript{SampleRate: 8000, GlottalSource: "bogus"}

	_, _, err := script.ToEngineInputs()
	require.ErrorIs(t, err, config.ErrInvalidFrameScript)
}

func TestToEngineInputsRejectsNonPositiveSampleRate(t *testing.T) {
	t.Parallel()

	script := config.FrameScript{SampleRate: 0}

	_, _, err := script.ToEngineInputs()
	require.ErrorIs(t, err, config.ErrInvalidFrameScript)
}

func TestServiceConfigUnmarshalsFromToml(t *testing.T) {
	t.Parallel()

	tomlData := `
[nats]
url = "nats://127.0.0.1:4222"
subject = "klatt.render"
max_in_flight = 4

[metrics]
listen_addr = ":2112"

[paths]
base_logs_dir = "/var/log/klattd"
`

	var cfg config.ServiceConfig

	err := toml.Unmarshal([]byte(tomlData), &cfg)
	require.NoError(t, err)

	require.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	require.Equal(t, "klatt.render", cfg.NATS.Subject)
	require.Equal(t, 4, cfg.NATS.MaxInFlight)
	require.Equal(t, ":2112", cfg.Metrics.ListenAddr)
	require.Equal(t, "/var/log/klattd", cfg.Paths.BaseLogsDir)
}
