package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"refl/internal/core"
	"refl/internal/log"
	"refl/internal/metrics"

	"github.com/robfig/cron/v3"
)

// Summarizer computes a summary for a window. SummaryService implements it.
type Summarizer interface {
	Summary(ctx context.Context, w core.Window) (core.Summary, error)
}

// Job pairs a summary window with the standard 5-field cron spec that triggers it.
type Job struct {
	Window core.Window
	Spec   string
}

// DefaultJobs returns 21:00 daily, Sundays at 21:00 weekly, and the 30th at 21:00 monthly.
func DefaultJobs() []Job {
	return []Job{
		{Window: core.Daily, Spec: "0 21 * * *"},
		{Window: core.Weekly, Spec: "0 21 * * 0"},
		{Window: core.Monthly, Spec: "0 21 30 * *"},
	}
}

// DispatcherOptions configures a Dispatcher
type DispatcherOptions struct {
	// Location evaluates cron specs; nil means UTC
	Location *time.Location
	// Jobs defaults to DefaultJobs
	Jobs    []Job
	Metrics *metrics.Metrics
	// Timeout bounds a single job run (default: 30s)
	Timeout time.Duration
}

// Dispatcher sends scheduled summaries. It owns its cron instance, so several can coexist.
type Dispatcher struct {
	summarizer Summarizer
	notifier   Notifier
	metrics    *metrics.Metrics
	timeout    time.Duration
	jobs       []Job
	cron       *cron.Cron

	mu      sync.Mutex
	running bool
}

func NewDispatcher(summarizer Summarizer, notifier Notifier, opts DispatcherOptions) (*Dispatcher, error) {
	if summarizer == nil || notifier == nil {
		return nil, errors.New("dispatcher requires a summarizer and a notifier")
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	jobs := opts.Jobs
	if len(jobs) == 0 {
		jobs = DefaultJobs()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn))
	d := &Dispatcher{
		summarizer: summarizer,
		notifier:   notifier,
		metrics:    opts.Metrics,
		timeout:    timeout,
		jobs:       jobs,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}

	for _, job := range jobs {
		job := job
		if _, err := d.cron.AddFunc(job.Spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			d.RunJob(ctx, job)
		}); err != nil {
			return nil, fmt.Errorf("schedule %s summary %q: %w", job.Window.Name, job.Spec, err)
		}
	}
	return d, nil
}

// Start runs the scheduler in its own goroutine. Calling Start twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	d.cron.Start()

	for _, e := range d.cron.Entries() {
		slog.Info("Summary job scheduled", "next_run", e.Next.Format(time.RFC3339))
	}
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	d.mu.Unlock()

	select {
	case <-d.cron.Stop().Done():
		slog.InfoContext(ctx, "Summary dispatcher stopped")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Summary dispatcher stop timed out")
		return ctx.Err()
	}
}

// Jobs returns the configured jobs in registration order.
func (d *Dispatcher) Jobs() []Job {
	return append([]Job(nil), d.jobs...)
}

// RunJob computes the window's summary, formats it and sends it.
// Failures are logged and counted; a panic in a collaborator is recovered.
func (d *Dispatcher) RunJob(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s summary panicked: %v", job.Window.Name, r)
		}
		d.metrics.RecordSummary(job.Window.Name, err)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to send summary", log.FieldWindow, job.Window.Name, log.FieldError, err)
		}
	}()

	summary, err := d.summarizer.Summary(ctx, job.Window)
	if err != nil {
		return fmt.Errorf("compute %s summary: %w", job.Window.Name, err)
	}

	if err := d.notifier.Notify(ctx, core.FormatSummary(job.Window.Title, summary)); err != nil {
		return fmt.Errorf("notify %s summary: %w", job.Window.Name, err)
	}

	slog.InfoContext(ctx, "Summary sent",
		log.FieldWindow, job.Window.Name,
		log.FieldTotal, summary.TotalEntries)
	return nil
}
