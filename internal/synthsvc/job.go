// Package synthsvc runs the synthesis engine as a NATS-backed worker: it
// receives a Job describing an utterance, renders it, and publishes a
// Result in reply.
package synthsvc

import "github.com/klatt-synth/klattsynth/internal/config"

// Job is the wire format of one synthesis request.
type Job struct {
	// CorrelationID identifies this job across logs and metrics. If empty
	// on receipt, the worker assigns one.
	CorrelationID string `json:"correlation_id,omitempty"`

	// Script is the frame script to render, using the same
	// config.FrameScript type that config.Load decodes from TOML, here
	// carried as JSON on the wire. config.FrameScript and its nested types
	// carry toml tags only, so the JSON keys are the Go field names
	// ("SampleRate", "Frames", ...), not the snake_case TOML keys.
	Script config.FrameScript `json:"script"`

	// Seed1 and Seed2 optionally make the render deterministic by seeding
	// the engine's PCG source. Both zero means "seed ambiently".
	Seed1 uint64 `json:"seed1,omitempty"`
	Seed2 uint64 `json:"seed2,omitempty"`
}

// Result is the wire format of one synthesis reply.
type Result struct {
	CorrelationID string    `json:"correlation_id"`
	SampleRate    int       `json:"sample_rate"`
	Samples       []float64 `json:"samples,omitempty"`
	Error         string    `json:"error,omitempty"`
}
