package klatt

import (
	"fmt"
	"math"
)

const tiltFilterFreq = 3000 // Hz, fixed per spec.

// bindFrame translates a newly-adopted FrameParams into the generator's
// frameState (linear gains) and reconfigures every filter whose
// coefficients depend on frame parameters. It runs once, at the period
// boundary where the frame is adopted — never mid-period.
func (g *Generator) bindFrame(f *FrameParams) error {
	g.frame = frameState{
		breathinessLin:        dbToLin(f.BreathinessDb),
		gainLin:               overallGainLin(f.GainDb),
		cascadeVoicingLin:     dbToLin(f.Cascade.VoicingDb),
		cascadeAspirationLin:  dbToLin(f.Cascade.AspirationDb),
		parallelVoicingLin:    dbToLin(f.Parallel.VoicingDb),
		parallelAspirationLin: dbToLin(f.Parallel.AspirationDb),
		fricationLin:          dbToLin(f.Parallel.FricationDb),
		parallelBypassLin:     dbToLin(f.Parallel.BypassDb),
	}

	if err := g.bindTilt(f); err != nil {
		return err
	}

	if err := g.bindCascadeNasal(f); err != nil {
		return err
	}

	if err := g.bindCascadeOral(f); err != nil {
		return err
	}

	if err := g.bindParallelNasal(f); err != nil {
		return err
	}

	if err := g.bindParallelOral(f); err != nil {
		return err
	}

	return nil
}

func (g *Generator) bindTilt(f *FrameParams) error {
	if f.TiltDb == 0 || math.IsNaN(f.TiltDb) {
		g.tilt.SetPassthrough()

		return nil
	}

	if err := g.tilt.Configure(tiltFilterFreq, dbToLin(-f.TiltDb), 1); err != nil {
		return fmt.Errorf("tilt filter: %w", err)
	}

	return nil
}

func (g *Generator) bindCascadeNasal(f *FrameParams) error {
	if formantSet(f.Cascade.NasalAntiformant) {
		if err := g.cascadeNasalZero.Configure(f.Cascade.NasalAntiformant.Freq, f.Cascade.NasalAntiformant.Bw); err != nil {
			return fmt.Errorf("cascade nasal antiformant: %w", err)
		}
	} else {
		g.cascadeNasalZero.SetPassthrough()
	}

	if formantSet(f.NasalFormant) {
		if err := g.cascadeNasalPole.Configure(f.NasalFormant.Freq, f.NasalFormant.Bw, 1); err != nil {
			return fmt.Errorf("cascade nasal formant: %w", err)
		}
	} else {
		g.cascadeNasalPole.SetPassthrough()
	}

	return nil
}

func (g *Generator) bindCascadeOral(f *FrameParams) error {
	for i := 0; i < MaxOralFormants; i++ {
		fm := f.OralFormants[i]
		if formantSet(fm) {
			if err := g.cascadeOral[i].Configure(fm.Freq, fm.Bw, 1); err != nil {
				return fmt.Errorf("cascade oral formant F%d: %w", i+1, err)
			}

			continue
		}

		if isSet(fm.Freq) != isSet(fm.Bw) {
			g.log.Warnf("cascade oral formant F%d: freq and bw disagree on presence (freq=%v bw=%v), forcing passthrough", i+1, fm.Freq, fm.Bw)
		}

		g.cascadeOral[i].SetPassthrough()
	}

	return nil
}

func (g *Generator) bindParallelNasal(f *FrameParams) error {
	db := dbToLin(f.Parallel.NasalFormantDb)
	if isSet(f.NasalFormant.Freq) && isSet(f.NasalFormant.Bw) && db != 0 {
		if err := g.parallelNasalPole.Configure(f.NasalFormant.Freq, f.NasalFormant.Bw, 1); err != nil {
			return fmt.Errorf("parallel nasal formant: %w", err)
		}

		if err := g.parallelNasalPole.AdjustPeakGain(db); err != nil {
			return fmt.Errorf("parallel nasal formant: %w", err)
		}
	} else {
		g.parallelNasalPole.SetMuted()
	}

	return nil
}

func (g *Generator) bindParallelOral(f *FrameParams) error {
	for i := 0; i < MaxOralFormants; i++ {
		fm := f.OralFormants[i]
		db := dbToLin(f.Parallel.OralFormantDb[i])

		if !isSet(fm.Freq) || !isSet(fm.Bw) || db == 0 {
			if isSet(fm.Freq) != isSet(fm.Bw) {
				g.log.Warnf("parallel oral formant F%d: freq and bw disagree on presence (freq=%v bw=%v), forcing muted", i+1, fm.Freq, fm.Bw)
			}

			g.parallelOral[i].SetMuted()

			continue
		}

		if err := g.parallelOral[i].Configure(fm.Freq, fm.Bw, 1); err != nil {
			return fmt.Errorf("parallel oral formant F%d: %w", i+1, err)
		}

		gain := db
		if i > 0 {
			// F2..F6 sit downstream of the parallel branch's
			// differencing filter, which imposes its own
			// frequency-dependent gain; compensate for it so the
			// configured dB value is the resonator's own peak gain.
			omega := 2 * math.Pi * fm.Freq / float64(g.mp.SampleRate)
			diffGain := math.Sqrt(2 - 2*math.Cos(omega))
			gain = db / diffGain
		}

		if err := g.parallelOral[i].AdjustPeakGain(gain); err != nil {
			return fmt.Errorf("parallel oral formant F%d: %w", i+1, err)
		}
	}

	return nil
}
