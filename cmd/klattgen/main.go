// Command klattgen renders a TOML frame script into a 16-bit PCM WAV file.
package main

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/klatt-synth/klattsynth"
	"github.com/klatt-synth/klattsynth/internal/config"
)

const outputBitDepth = 16

func run() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: %s <frame-script.toml> <out.wav>", os.Args[0])
	}

	scriptPath, outPath := os.Args[1], os.Args[2]

	script, err := config.LoadFromPath(scriptPath)
	if err != nil {
		return err
	}

	mp, frames, err := script.ToEngineInputs()
	if err != nil {
		return fmt.Errorf("invalid frame script: %w", err)
	}

	samples, err := klatt.GenerateSound(mp, frames)
	if err != nil {
		return fmt.Errorf("failed to render frame script: %w", err)
	}

	return writeWav(outPath, mp.SampleRate, samples)
}

func writeWav(path string, sampleRate int, samples []float64) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	defer func() {
		_ = out.Close()
	}()

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: outputBitDepth,
		Data:           make([]int, len(samples)),
	}

	const fullScale = 1<<(outputBitDepth-1) - 1

	for i, s := range samples {
		clipped := s
		if clipped > 1 {
			clipped = 1
		} else if clipped < -1 {
			clipped = -1
		}

		buf.Data[i] = int(clipped * fullScale)
	}

	enc := wav.NewEncoder(out, sampleRate, outputBitDepth, 1, 1)

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode wav: %w", err)
	}

	return enc.Close()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "klattgen: %v\n", err)
		os.Exit(1)
	}
}
