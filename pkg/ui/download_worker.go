// This file implements the DownloadWorker, which fetches the rows of remote
// sections off the UI thread.
package ui

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/vanderheijden86/sectionview/pkg/model"
)

// Sender delivers messages to the running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// RowFetcher loads the rows of one section. *store.RowStore satisfies it.
type RowFetcher interface {
	FetchRows(ctx context.Context, sectionID string) ([]model.Row, error)
}

// DownloadError wraps a failed fetch with the phase and section it came from.
type DownloadError struct {
	Phase     string // "wait", "fetch"
	SectionID string
	Cause     error
	Time      time.Time
}

func (e DownloadError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Phase, e.SectionID, e.Cause)
}

func (e DownloadError) Unwrap() error {
	return e.Cause
}

// DownloadDoneMsg is sent when a fetch finishes, successfully or not.
// Cancelled fetches send nothing.
type DownloadDoneMsg struct {
	Section   int
	SectionID string
	Ticket    string
	Rows      []model.Row
	Err       error
}

// DownloadConfig configures the DownloadWorker.
type DownloadConfig struct {
	Fetcher       RowFetcher
	Sender        Sender
	MaxConcurrent int           // Parallel fetches, at least 1
	Delay         time.Duration // Artificial latency before each fetch
	Logger        *zap.Logger
	Metrics       *WorkerMetrics
}

// DownloadWorker runs section fetches on goroutines, bounded by a semaphore.
// Each section has at most one fetch in flight; starting a new one cancels the
// old one.
type DownloadWorker struct {
	fetcher RowFetcher
	sender  Sender
	delay   time.Duration
	sem     *semaphore.Weighted
	log     *zap.Logger
	metrics *WorkerMetrics

	mu      sync.Mutex
	jobs    map[string]*downloadJob // By section ID
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type downloadJob struct {
	ticket  string
	section int
	cancel  context.CancelFunc
}

// NewDownloadWorker creates a worker. A nil Sender drops results, which is
// only useful in tests.
func NewDownloadWorker(cfg DownloadConfig) *DownloadWorker {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DownloadWorker{
		fetcher: cfg.Fetcher,
		sender:  cfg.Sender,
		delay:   cfg.Delay,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		log:     cfg.Logger,
		metrics: cfg.Metrics,
		jobs:    make(map[string]*downloadJob),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetSender attaches the program once it exists.
func (w *DownloadWorker) SetSender(s Sender) {
	w.mu.Lock()
	w.sender = s
	w.mu.Unlock()
}

// Start begins fetching a section and returns the ticket that identifies this
// attempt. An earlier fetch of the same section is cancelled.
func (w *DownloadWorker) Start(section int, sectionID string) string {
	ticket := uuid.NewString()

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return ""
	}
	if old, ok := w.jobs[sectionID]; ok {
		old.cancel()
	}
	ctx, cancel := context.WithCancel(w.ctx)
	job := &downloadJob{ticket: ticket, section: section, cancel: cancel}
	w.jobs[sectionID] = job
	w.wg.Add(1)
	w.mu.Unlock()

	w.metrics.inFlight(1)
	go w.run(ctx, job, sectionID)
	return ticket
}

// Cancel stops the fetch for a section. It reports whether one was running.
func (w *DownloadWorker) Cancel(sectionID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	job, ok := w.jobs[sectionID]
	if !ok {
		return false
	}
	job.cancel()
	delete(w.jobs, sectionID)
	return true
}

// CancelAll stops every fetch in flight.
func (w *DownloadWorker) CancelAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, job := range w.jobs {
		job.cancel()
		delete(w.jobs, id)
	}
}

// Pending returns the number of fetches in flight.
func (w *DownloadWorker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.jobs)
}

// Stop cancels everything and waits briefly for the goroutines to exit.
// Stop is idempotent.
func (w *DownloadWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.mu.Unlock()

	w.cancel()
	w.CancelAll()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		w.log.Warn("download worker stop timed out")
	}
}

func (w *DownloadWorker) run(ctx context.Context, job *downloadJob, sectionID string) {
	defer w.wg.Done()
	defer w.metrics.inFlight(-1)
	start := time.Now()

	rows, err := w.fetch(ctx, sectionID)

	if ctx.Err() != nil {
		w.metrics.observe("cancelled", time.Since(start))
		w.log.Debug("download cancelled", zap.String("section", sectionID))
		return
	}
	if !w.finish(sectionID, job.ticket) {
		return
	}

	if err != nil {
		w.metrics.observe("failed", time.Since(start))
		w.log.Warn("download failed", zap.String("section", sectionID), zap.Error(err))
	} else {
		w.metrics.observe("completed", time.Since(start))
		w.log.Debug("download completed", zap.String("section", sectionID),
			zap.Int("rows", len(rows)), zap.Duration("took", time.Since(start)))
	}

	w.mu.Lock()
	sender := w.sender
	w.mu.Unlock()
	if sender != nil {
		sender.Send(DownloadDoneMsg{
			Section:   job.section,
			SectionID: sectionID,
			Ticket:    job.ticket,
			Rows:      rows,
			Err:       err,
		})
	}
}

// fetch waits for a slot and the configured delay, then loads the rows.
func (w *DownloadWorker) fetch(ctx context.Context, sectionID string) ([]model.Row, error) {
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return nil, DownloadError{Phase: "wait", SectionID: sectionID, Cause: err, Time: time.Now()}
	}
	defer w.sem.Release(1)

	if w.delay > 0 {
		timer := time.NewTimer(w.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, DownloadError{Phase: "wait", SectionID: sectionID, Cause: ctx.Err(), Time: time.Now()}
		case <-timer.C:
		}
	}

	var rows []model.Row
	if derr := safeFetch(sectionID, func() error {
		if w.fetcher == nil {
			return errors.New("no row source configured")
		}
		var err error
		rows, err = w.fetcher.FetchRows(ctx, sectionID)
		return err
	}); derr != nil {
		return nil, *derr
	}
	return rows, nil
}

// finish removes the job if it is still the current attempt for the section.
func (w *DownloadWorker) finish(sectionID, ticket string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	job, ok := w.jobs[sectionID]
	if !ok || job.ticket != ticket {
		return false
	}
	delete(w.jobs, sectionID)
	return true
}

// safeFetch executes fn and recovers from any panics.
func safeFetch(sectionID string, fn func() error) *DownloadError {
	var result *DownloadError
	func() {
		defer func() {
			if r := recover(); r != nil {
				result = &DownloadError{
					Phase:     "fetch",
					SectionID: sectionID,
					Cause:     fmt.Errorf("panic: %v\n%s", r, debug.Stack()),
					Time:      time.Now(),
				}
			}
		}()
		if err := fn(); err != nil {
			result = &DownloadError{
				Phase:     "fetch",
				SectionID: sectionID,
				Cause:     err,
				Time:      time.Now(),
			}
		}
	}()
	return result
}
