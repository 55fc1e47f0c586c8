// Package bridge runs blocking work off the UI loop and hands results back to it.
//
// Tasks execute on a work loop of one or more goroutines. Their completion
// callbacks are queued and only run when the UI loop calls Pump, so callbacks
// may touch UI state without locking.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"mcpchat/internal"
	"mcpchat/internal/logger"
)

var (
	ErrClosed    = errors.New("bridge is closed")
	ErrQueueFull = errors.New("bridge queue is full")
)

type Options struct {
	// PollInterval is the cadence at which the UI loop should call Pump.
	PollInterval time.Duration
	// Workers is the number of tasks allowed in flight. One serializes tasks.
	Workers int
	// PumpBatch caps the callbacks run per Pump; zero means no cap.
	PumpBatch int
	// QueueSize bounds tasks waiting for a worker.
	QueueSize int
}

func DefaultOptions() Options {
	return Options{
		PollInterval: internal.DEFAULT_POLL_INTERVAL * time.Millisecond,
		Workers:      1,
		PumpBatch:    internal.DEFAULT_PUMP_BATCH,
		QueueSize:    64,
	}
}

type job struct {
	id   string
	task func(ctx context.Context) any
	done func(any)
}

type completion struct {
	id     string
	done   func(any)
	result any
}

type Bridge struct {
	opts Options
	ctx  context.Context
	jobs chan job
	wg   sync.WaitGroup
	once sync.Once

	mu        sync.Mutex
	completed []completion
	pending   int
	closed    bool

	ready chan struct{}
}

func New(opts Options) *Bridge {
	def := DefaultOptions()
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = def.QueueSize
	}

	return &Bridge{
		opts:  opts,
		ctx:   context.Background(),
		jobs:  make(chan job, opts.QueueSize),
		ready: make(chan struct{}, 1),
	}
}

// Start launches the work loop. Calling it again has no effect.
func (b *Bridge) Start() {
	b.once.Do(func() {
		for i := 0; i < b.opts.Workers; i++ {
			b.wg.Add(1)
			go b.worker()
		}
		logger.Debugf("Bridge started with %d worker(s), pump every %v", b.opts.Workers, b.opts.PollInterval)
	})
}

// PanicError is the result delivered for a task that panicked.
type PanicError struct {
	ID    string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %s panicked: %v", e.ID, e.Value)
}

// Go queues task and returns its id without blocking. onComplete receives the
// task's result during a later Pump, or a *PanicError if the task panicked.
// Tasks are never cancelled.
func (b *Bridge) Go(task func(ctx context.Context) any, onComplete func(any)) (string, error) {
	j := job{id: uuid.NewString(), task: task, done: onComplete}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return "", ErrClosed
	}

	select {
	case b.jobs <- j:
		b.pending++
		return j.id, nil
	default:
		return "", ErrQueueFull
	}
}

// Submit is the typed form of Go. A task that panics completes with the zero
// value of T.
func Submit[T any](b *Bridge, task func(ctx context.Context) T, onComplete func(T)) (string, error) {
	return b.Go(
		func(ctx context.Context) any { return task(ctx) },
		func(v any) {
			if onComplete == nil {
				return
			}
			result, _ := v.(T)
			onComplete(result)
		},
	)
}

func (b *Bridge) worker() {
	defer b.wg.Done()

	for j := range b.jobs {
		start := time.Now()
		result := b.run(j)

		b.mu.Lock()
		b.completed = append(b.completed, completion{id: j.id, done: j.done, result: result})
		b.mu.Unlock()

		logger.Debugf("Task %s finished in %v", j.id, time.Since(start).Round(time.Millisecond))
		b.signal()
	}
}

func (b *Bridge) run(j job) (result any) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Task %s panicked: %v", j.id, r)
			result = &PanicError{ID: j.id, Value: r}
		}
	}()
	return j.task(b.ctx)
}

func (b *Bridge) signal() {
	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// Pump runs queued completion callbacks on the calling goroutine, in the order
// the tasks finished, and returns how many ran. Call it only from the UI loop.
func (b *Bridge) Pump() int {
	b.mu.Lock()
	n := len(b.completed)
	if b.opts.PumpBatch > 0 && n > b.opts.PumpBatch {
		n = b.opts.PumpBatch
	}
	batch := make([]completion, n)
	copy(batch, b.completed[:n])
	b.completed = append(b.completed[:0], b.completed[n:]...)
	remaining := len(b.completed)
	b.pending -= n
	b.mu.Unlock()

	for _, c := range batch {
		deliver(c)
	}
	if remaining > 0 {
		b.signal()
	}

	return n
}

func deliver(c completion) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Completion for task %s panicked: %v", c.id, r)
		}
	}()
	if c.done != nil {
		c.done(c.result)
	}
}

// Ready receives a value whenever completions may be waiting. It lets a UI
// loop wake up before the next poll interval.
func (b *Bridge) Ready() <-chan struct{} {
	return b.ready
}

func (b *Bridge) Interval() time.Duration {
	return b.opts.PollInterval
}

// Pending counts tasks submitted but not yet delivered.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Close stops accepting tasks and waits for queued ones to finish, or for ctx
// to end. Callbacks of tasks that finish after Close are never delivered
// unless Pump is called.
func (b *Bridge) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.jobs)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Debugf("Bridge closed")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
