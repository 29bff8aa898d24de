package tasks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"marketBack/internal/models"
)

const (
	maxBackoff = 5 * time.Minute

	// enqueueTimeout bounds a push so a slow backend never holds a request.
	enqueueTimeout = 2 * time.Second
)

// Logger is the logging surface the dispatcher needs.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Handler performs one task. A returned error schedules a retry.
type Handler func(ctx context.Context, t Task) error

type DeadLetterStore interface {
	SaveDeadLetter(ctx context.Context, d models.DeadLetter) error
}

type Config struct {
	Workers     int
	MaxAttempts int
	BaseBackoff time.Duration
}

type Dispatcher struct {
	queue       Queue
	deadLetters DeadLetterStore
	logger      Logger
	cfg         Config

	mu       sync.RWMutex
	handlers map[string]Handler

	// sleep and jitter are replaced in tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(d time.Duration) time.Duration
}

func NewDispatcher(queue Queue, deadLetters DeadLetterStore, logger Logger, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Dispatcher{
		queue:       queue,
		deadLetters: deadLetters,
		logger:      logger,
		cfg:         cfg,
		handlers:    make(map[string]Handler),
		sleep:       sleepContext,
		jitter:      randomJitter,
	}
}

// Handle registers the handler for a task kind.
func (d *Dispatcher) Handle(kind string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = h
}

func (d *Dispatcher) handler(kind string) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[kind]
	return h, ok
}

func (d *Dispatcher) Enqueue(ctx context.Context, kind string, payload interface{}) error {
	t, err := NewTask(kind, payload)
	if err != nil {
		return err
	}

	pushCtx, cancel := context.WithTimeout(ctx, enqueueTimeout)
	err = d.queue.Push(pushCtx, t)
	cancel()
	if err != nil {
		err = errors.Wrapf(err, "enqueue %s", kind)
		d.deadLetter(ctx, t, err)
		return err
	}
	return nil
}

// Run starts the workers and blocks until ctx is cancelled and every worker
// has returned.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			d.work(ctx, id)
		}(i)
	}
	d.logger.Infof("tasks: %d workers started", d.cfg.Workers)
	wg.Wait()
	d.logger.Infof("tasks: workers stopped")
}

func (d *Dispatcher) work(ctx context.Context, id int) {
	for {
		t, err := d.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.logger.Errorf("tasks: worker %d pop failed: %v", id, err)
			if d.sleep(ctx, time.Second) != nil {
				return
			}
			continue
		}
		d.Process(ctx, t)
	}
}

// Process runs t until it succeeds, its attempts are exhausted, or ctx ends.
// Exhausted and unknown tasks go to the dead letter store.
func (d *Dispatcher) Process(ctx context.Context, t Task) {
	h, ok := d.handler(t.Kind)
	if !ok {
		d.deadLetter(ctx, t, errors.Errorf("no handler for task kind %q", t.Kind))
		return
	}

	for {
		err := d.run(ctx, h, t)
		t.Attempts++
		if err == nil {
			return
		}
		if t.Attempts >= d.cfg.MaxAttempts {
			d.deadLetter(ctx, t, err)
			return
		}
		wait := backoff(d.cfg.BaseBackoff, t.Attempts)
		wait += d.jitter(wait)
		d.logger.Errorf("tasks: %s %s attempt %d failed, retrying in %s: %v", t.Kind, t.ID, t.Attempts, wait, err)
		if d.sleep(ctx, wait) != nil {
			// shutting down; requeue so the task is not lost
			pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
			defer cancel()
			if err := d.queue.Push(pushCtx, t); err != nil {
				d.deadLetter(ctx, t, err)
			}
			return
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, h Handler, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return h(ctx, t)
}

func (d *Dispatcher) deadLetter(ctx context.Context, t Task, cause error) {
	d.logger.Errorf("tasks: %s %s dead after %d attempts: %v", t.Kind, t.ID, t.Attempts, cause)
	if d.deadLetters == nil {
		return
	}
	payload := string(t.Payload)
	if !json.Valid(t.Payload) {
		payload = "{}"
	}
	err := d.deadLetters.SaveDeadLetter(context.WithoutCancel(ctx), models.DeadLetter{
		TaskID:    t.ID,
		Kind:      t.Kind,
		Payload:   payload,
		Attempts:  t.Attempts,
		LastError: cause.Error(),
	})
	if err != nil {
		d.logger.Errorf("tasks: save dead letter %s: %v", t.ID, err)
	}
}

// backoff doubles base for every attempt after the first.
func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	wait := base
	for i := 1; i < attempt; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}

// randomJitter spreads retries of tasks that failed together by up to a fifth
// of the wait.
func randomJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(d)/5 + 1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
