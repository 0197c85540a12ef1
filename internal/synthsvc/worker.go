package synthsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/klatt-synth/klattsynth"
	"github.com/klatt-synth/klattsynth/internal/diag"
	"github.com/klatt-synth/klattsynth/internal/observability"
)

const handleJobTimeout = 30 * time.Second

// Worker listens for synthesis jobs on a NATS subject, renders each on its
// own freshly-constructed Generator, and replies with the rendered
// samples. Concurrent jobs never share a Generator — §5 of the engine's
// design forbids aliasing one across goroutines.
type Worker struct {
	conn        *nats.Conn
	subject     string
	log         diag.Logger
	metrics     *observability.Metrics
	maxInFlight int
}

// New constructs a Worker. maxInFlight bounds how many jobs are rendered
// concurrently; a value <= 0 means unbounded.
func New(conn *nats.Conn, subject string, log diag.Logger, metrics *observability.Metrics, maxInFlight int) *Worker {
	if log == nil {
		log = diag.Nop{}
	}

	return &Worker{conn: conn, subject: subject, log: log, metrics: metrics, maxInFlight: maxInFlight}
}

// Run subscribes to the worker's subject and processes jobs until ctx is
// cancelled, then drains the subscription before returning.
func (w *Worker) Run(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)
	if w.maxInFlight > 0 {
		eg.SetLimit(w.maxInFlight)
	}

	sub, err := w.conn.Subscribe(w.subject, func(msg *nats.Msg) {
		eg.Go(func() error {
			w.handleMessage(egCtx, msg)

			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	<-ctx.Done()

	if drainErr := sub.Drain(); drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return eg.Wait()
}

func (w *Worker) handleMessage(ctx context.Context, msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(ctx, handleJobTimeout)
	defer cancel()

	job, err := parseJob(msg)
	if err != nil {
		w.log.Warnf("synthsvc: failed to parse job: %v", err)

		return
	}

	result := w.render(ctx, job)

	if err := w.publishResult(msg, result); err != nil {
		w.log.Warnf("synthsvc: failed to publish result for job %s: %v", result.CorrelationID, err)
	}
}

func parseJob(msg *nats.Msg) (Job, error) {
	var job Job

	if err := json.Unmarshal(msg.Data, &job); err != nil {
		return Job{}, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	if job.CorrelationID == "" {
		job.CorrelationID = uuid.NewString()
	}

	return job, nil
}

func (w *Worker) render(ctx context.Context, job Job) Result {
	start := time.Now()

	status := "ok"

	result := Result{CorrelationID: job.CorrelationID}

	mp, frames, err := job.Script.ToEngineInputs()
	if err != nil {
		status = "error"
		result.Error = err.Error()

		w.recordJob(ctx, start, status, 0)

		return result
	}

	result.SampleRate = mp.SampleRate

	src := klatt.NewPCGSource(job.Seed1, job.Seed2)
	if job.Seed1 == 0 && job.Seed2 == 0 {
		src = nil
	}

	var samples []float64
	if src != nil {
		samples, err = klatt.GenerateSoundWithSource(mp, frames, src)
	} else {
		samples, err = klatt.GenerateSound(mp, frames)
	}

	rendered := len(frames)

	if err != nil {
		status = "error"
		result.Error = err.Error()
		rendered = 0
	} else {
		result.Samples = samples
	}

	w.recordJob(ctx, start, status, rendered)

	return result
}

func (w *Worker) recordJob(ctx context.Context, start time.Time, status string, frameCount int) {
	if w.metrics == nil {
		return
	}

	w.metrics.RenderDuration.Record(ctx, time.Since(start).Seconds())
	w.metrics.JobsTotal.Add(ctx, 1, metricAttrs(status)...)
	w.metrics.FramesRendered.Add(ctx, int64(frameCount))
}

func (w *Worker) publishResult(msg *nats.Msg, result Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := msg.Respond(data); err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}

	return nil
}
