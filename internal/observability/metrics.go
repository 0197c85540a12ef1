// Package observability provides the OpenTelemetry metric instruments the
// synthesis service records around each render job.
package observability

import "go.opentelemetry.io/otel/metric"

const meterName = "github.com/klatt-synth/klattsynth"

// Metrics holds every metric instrument the service records. All fields are
// safe for concurrent use — the underlying OTel instruments handle their
// own synchronisation.
type Metrics struct {
	// RenderDuration tracks how long one GenerateSound call takes, in
	// seconds.
	RenderDuration metric.Float64Histogram

	// JobsTotal counts completed jobs, with an attribute status=ok|error.
	JobsTotal metric.Int64Counter

	// FramesRendered counts the total number of FrameParams rendered
	// across all jobs.
	FramesRendered metric.Int64Counter
}

// NewMetrics builds every instrument up front against the given provider,
// returning the first construction error encountered.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)

	met := &Metrics{}

	var err error

	if met.RenderDuration, err = m.Float64Histogram("klattsynth.render.duration",
		metric.WithDescription("Latency of one GenerateSound call."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if met.JobsTotal, err = m.Int64Counter("klattsynth.jobs.total",
		metric.WithDescription("Total synthesis jobs processed, by status."),
	); err != nil {
		return nil, err
	}

	if met.FramesRendered, err = m.Int64Counter("klattsynth.frames.rendered",
		metric.WithDescription("Total FrameParams rendered across all jobs."),
	); err != nil {
		return nil, err
	}

	return met, nil
}
