// Package config loads a TOML frame script describing an utterance to
// synthesize and converts it into the engine's native input types.
package config

import (
	"fmt"
	"math"
	"os"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
	"github.com/pelletier/go-toml/v2"

	"github.com/klatt-synth/klattsynth"
)

// FormantSpec is the TOML-friendly representation of a klatt.Formant: both
// fields are pointers so an absent formant round-trips as "key not present"
// rather than as an ambiguous zero value.
type FormantSpec struct {
	FreqHz      *float64 `toml:"freq_hz"`
	BandwidthHz *float64 `toml:"bandwidth_hz"`
}

func (f *FormantSpec) toFormant() klatt.Formant {
	if f == nil || f.FreqHz == nil || f.BandwidthHz == nil {
		return klatt.Formant{Freq: math.NaN(), Bw: math.NaN()}
	}

	return klatt.Formant{Freq: *f.FreqHz, Bw: *f.BandwidthHz}
}

// CascadeSpec is the TOML shape of klatt.CascadeParams.
type CascadeSpec struct {
	Enabled          bool         `toml:"enabled"`
	VoicingDb        float64      `toml:"voicing_db"`
	AspirationDb     float64      `toml:"aspiration_db"`
	AspirationMod    float64      `toml:"aspiration_mod"`
	NasalAntiformant *FormantSpec `toml:"nasal_antiformant"`
}

// ParallelSpec is the TOML shape of klatt.ParallelParams.
type ParallelSpec struct {
	Enabled        bool       `toml:"enabled"`
	VoicingDb      float64    `toml:"voicing_db"`
	AspirationDb   float64    `toml:"aspiration_db"`
	AspirationMod  float64    `toml:"aspiration_mod"`
	FricationDb    float64    `toml:"frication_db"`
	FricationMod   float64    `toml:"frication_mod"`
	BypassDb       float64    `toml:"bypass_db"`
	NasalFormantDb float64    `toml:"nasal_formant_db"`
	OralFormantsDb [6]float64 `toml:"oral_formants_db"`
}

// FrameSpec is the TOML shape of one klatt.FrameParams.
type FrameSpec struct {
	DurationSeconds float64        `toml:"duration_seconds"`
	F0Hz            float64        `toml:"f0_hz"`
	FlutterLevel    float64        `toml:"flutter_level"`
	OpenPhaseRatio  float64        `toml:"open_phase_ratio"`
	BreathinessDb   float64        `toml:"breathiness_db"`
	TiltDb          float64        `toml:"tilt_db"`
	GainDb          *float64       `toml:"gain_db"`
	NasalFormant    *FormantSpec   `toml:"nasal_formant"`
	OralFormants    [6]FormantSpec `toml:"oral_formants"`
	Cascade         CascadeSpec    `toml:"cascade"`
	Parallel        ParallelSpec   `toml:"parallel"`
}

func (fr *FrameSpec) toFrameParams() klatt.FrameParams {
	gainDb := math.NaN()
	if fr.GainDb != nil {
		gainDb = *fr.GainDb
	}

	fp := klatt.FrameParams{
		Duration:       fr.DurationSeconds,
		F0:             fr.F0Hz,
		FlutterLevel:   fr.FlutterLevel,
		OpenPhaseRatio: fr.OpenPhaseRatio,
		BreathinessDb:  fr.BreathinessDb,
		TiltDb:         fr.TiltDb,
		GainDb:         gainDb,
		NasalFormant:   fr.NasalFormant.toFormant(),
		Cascade: klatt.CascadeParams{
			Enabled:          fr.Cascade.Enabled,
			VoicingDb:        fr.Cascade.VoicingDb,
			AspirationDb:     fr.Cascade.AspirationDb,
			AspirationMod:    fr.Cascade.AspirationMod,
			NasalAntiformant: fr.Cascade.NasalAntiformant.toFormant(),
		},
		Parallel: klatt.ParallelParams{
			Enabled:        fr.Parallel.Enabled,
			VoicingDb:      fr.Parallel.VoicingDb,
			AspirationDb:   fr.Parallel.AspirationDb,
			AspirationMod:  fr.Parallel.AspirationMod,
			FricationDb:    fr.Parallel.FricationDb,
			FricationMod:   fr.Parallel.FricationMod,
			BypassDb:       fr.Parallel.BypassDb,
			NasalFormantDb: fr.Parallel.NasalFormantDb,
			OralFormantDb:  fr.Parallel.OralFormantsDb,
		},
	}

	for i := range fr.OralFormants {
		fp.OralFormants[i] = fr.OralFormants[i].toFormant()
	}

	return fp
}

// FrameScript is the root TOML document config.Load reads: a sample rate, a
// glottal source kind, and an ordered list of frames.
type FrameScript struct {
	SampleRate    int         `toml:"sample_rate"`
	GlottalSource string      `toml:"glottal_source"`
	Frames        []FrameSpec `toml:"frames"`
}

// Load reads a FrameScript from the location configurator resolves (an
// environment-driven path, exactly as book-expert/configurator.Load
// resolves any other book-expert service's configuration).
func Load(log *logger.Logger) (*FrameScript, error) {
	var script FrameScript

	if err := configurator.Load(&script, log); err != nil {
		return nil, fmt.Errorf("failed to load frame script from configurator: %w", err)
	}

	return &script, nil
}

// LoadFromPath reads a FrameScript directly from a TOML file at path,
// bypassing configurator's environment-driven resolution. cmd/klattgen uses
// this so it can take an explicit script path on the command line. The
// long-running service does not read frame scripts from files: it receives
// them as JSON in each job.
func LoadFromPath(path string) (*FrameScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame script %s: %w", path, err)
	}

	var script FrameScript

	if err := toml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse frame script %s: %w", path, err)
	}

	return &script, nil
}

// ToEngineInputs validates the script and converts it into the engine's
// native MainParams and FrameParams.
func (s *FrameScript) ToEngineInputs() (klatt.MainParams, []klatt.FrameParams, error) {
	if s.SampleRate <= 0 {
		return klatt.MainParams{}, nil, fmt.Errorf("%w: sample_rate %d must be positive", ErrInvalidFrameScript, s.SampleRate)
	}

	kind, err := parseGlottalSourceKind(s.GlottalSource)
	if err != nil {
		return klatt.MainParams{}, nil, err
	}

	mp := klatt.MainParams{SampleRate: s.SampleRate, GlottalSource: kind}

	frames := make([]klatt.FrameParams, len(s.Frames))
	for i := range s.Frames {
		frames[i] = s.Frames[i].toFrameParams()
	}

	return mp, frames, nil
}

func parseGlottalSourceKind(s string) (klatt.GlottalSourceKind, error) {
	switch s {
	case "", "impulsive":
		return klatt.Impulsive, nil
	case "natural":
		return klatt.Natural, nil
	case "noise":
		return klatt.Noise, nil
	default:
		return 0, fmt.Errorf("%w: unknown glottal_source %q", ErrInvalidFrameScript, s)
	}
}
