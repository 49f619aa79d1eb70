// Package worker runs large transformations in the background.
//
// Jobs are queued with Submit, which returns immediately with a job id. A
// bounded pool of goroutines drains the queue through the same pipeline
// used for synchronous requests. Finished jobs are recorded in a Store for
// polling and handed to every registered Notifier.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/bimmerbailey/recase/internal/pipeline"
	"github.com/bimmerbailey/recase/internal/preserve"
)

const (
	// DefaultWorkers is the number of jobs run at once.
	DefaultWorkers = 4

	// DefaultQueueSize is the number of jobs that may wait for a worker.
	DefaultQueueSize = 64
)

var (
	// ErrQueueFull is returned by Submit when every queue slot is taken.
	ErrQueueFull = errors.New("job queue is full")

	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("worker pool is closed")
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Finished reports whether the job has completed, successfully or not.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusFailed
}

// Job is one background transformation.
type Job struct {
	Key          string
	Text         string
	Preservation preserve.Config
}

// Completion describes a job's outcome. Result is set for successful jobs
// and, on failure, still carries the untouched input text.
type Completion struct {
	ID             string           `json:"id"`
	Key            string           `json:"key"`
	Status         Status           `json:"status"`
	TextLength     int              `json:"textLength"`
	Result         *pipeline.Result `json:"result,omitempty"`
	Error          string           `json:"error,omitempty"`
	ProcessingTime time.Duration    `json:"processingTime"`
	Submitted      time.Time        `json:"submitted"`

	// Err is the pipeline error behind Error, for errors.Is checks by
	// in-process callers.
	Err error `json:"-"`
}

// Runner executes a transformation request. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Notifier receives every completion. Errors are logged and otherwise
// ignored.
type Notifier interface {
	Notify(ctx context.Context, c Completion) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, c Completion) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, c Completion) error {
	return f(ctx, c)
}

// Option configures a Pool.
type Option func(*Pool)

// WithWorkers sets how many jobs run concurrently.
func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithQueueSize sets how many jobs may wait for a free worker.
func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

// WithStore replaces the default store.
func WithStore(s *Store) Option {
	return func(p *Pool) {
		if s != nil {
			p.store = s
		}
	}
}

// WithNotifier registers a notifier. It may be given more than once.
func WithNotifier(n Notifier) Option {
	return func(p *Pool) {
		if n != nil {
			p.notifiers = append(p.notifiers, n)
		}
	}
}

// Pool runs jobs on a bounded set of goroutines.
type Pool struct {
	runner    Runner
	store     *Store
	notifiers []Notifier
	logger    *slog.Logger
	workers   int
	queueSize int

	queue  chan queued
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

type queued struct {
	id  string
	job Job
}

// New starts a pool. Jobs keep running until Close.
func New(runner Runner, logger *slog.Logger, opts ...Option) (*Pool, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	p := &Pool{
		runner:    runner,
		logger:    logger,
		workers:   DefaultWorkers,
		queueSize: DefaultQueueSize,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.store == nil {
		p.store = NewStore(DefaultStoreSize)
	}
	p.queue = make(chan queued, p.queueSize)
	p.ctx, p.cancel = context.WithCancel(context.Background())

	go p.loop()
	return p, nil
}

// Store returns the store jobs are recorded in.
func (p *Pool) Store() *Store {
	return p.store
}

// Submit queues job and returns its id without waiting for it to run.
func (p *Pool) Submit(job Job) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return "", ErrClosed
	}

	id := uuid.NewString()
	p.store.add(id, job.Key, len(job.Text))

	select {
	case p.queue <- queued{id: id, job: job}:
	default:
		p.store.remove(id)
		return "", ErrQueueFull
	}

	p.logger.Debug("job queued", "id", id, "key", job.Key, "size", len(job.Text))
	return id, nil
}

// Get returns the current state of job id.
func (p *Pool) Get(id string) (Completion, error) {
	return p.store.Get(id)
}

// Wait blocks until job id finishes or ctx is done.
func (p *Pool) Wait(ctx context.Context, id string) (Completion, error) {
	return p.store.Wait(ctx, id)
}

// Close stops accepting jobs and waits for queued ones to finish. If ctx
// expires first, running jobs are cancelled.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	select {
	case <-p.done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-p.done
		return ctx.Err()
	}
}

func (p *Pool) loop() {
	defer close(p.done)

	workers := pool.New().WithMaxGoroutines(p.workers)
	for q := range p.queue {
		workers.Go(func() {
			p.process(q)
		})
	}
	workers.Wait()
}

func (p *Pool) process(q queued) {
	ctx := p.ctx
	p.store.setStatus(q.id, StatusRunning)
	start := time.Now()

	res, err := p.runner.Run(ctx, pipeline.Request{
		Text:         q.job.Text,
		Key:          q.job.Key,
		Preservation: q.job.Preservation,
	})

	c := Completion{
		ID:             q.id,
		Key:            q.job.Key,
		Status:         StatusDone,
		TextLength:     len(q.job.Text),
		Result:         res,
		ProcessingTime: time.Since(start),
	}
	if err != nil {
		c.Status = StatusFailed
		c.Error = err.Error()
		c.Err = err
		p.logger.Warn("job failed", "id", q.id, "key", q.job.Key, "error", err)
	} else {
		p.logger.Debug("job done", "id", q.id, "key", q.job.Key, "duration", c.ProcessingTime)
	}

	p.store.finish(c)
	p.notify(ctx, c)
}

func (p *Pool) notify(ctx context.Context, c Completion) {
	for _, n := range p.notifiers {
		if err := n.Notify(ctx, c); err != nil {
			p.logger.Warn("completion notifier failed", "id", c.ID, "error", err)
		}
	}
}
