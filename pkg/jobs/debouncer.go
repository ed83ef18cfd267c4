package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is deferred work run by a Debouncer.
type Task func(context.Context) error

// DebouncerConfig configures debounce behaviour.
type DebouncerConfig struct {
	Delay  time.Duration
	Logger *zap.Logger
}

// Debouncer runs keyed tasks after a quiet period. Scheduling a task for a key
// cancels any pending, not yet fired task for the same key, so only the most
// recent trigger within the window runs.
type Debouncer struct {
	name   string
	delay  time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	pending map[string]*pendingTask
	seq     uint64
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped bool
}

type pendingTask struct {
	id    uint64
	timer *time.Timer
}

// NewDebouncer builds a debouncer.
func NewDebouncer(name string, cfg DebouncerConfig) *Debouncer {
	if cfg.Delay <= 0 {
		cfg.Delay = 750 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{
		name:    name,
		delay:   cfg.Delay,
		logger:  cfg.Logger,
		pending: make(map[string]*pendingTask),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Delay reports the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule arms task for key, replacing whatever was pending for it.
func (d *Debouncer) Schedule(key string, task Task) error {
	if task == nil {
		return fmt.Errorf("debouncer %s: nil task for %s", d.name, key)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return fmt.Errorf("debouncer %s stopped", d.name)
	}
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
		d.logger.Sugar().Debugw("debounced task superseded", "debouncer", d.name, "key", key)
	}
	d.seq++
	id := d.seq
	d.pending[key] = &pendingTask{
		id:    id,
		timer: time.AfterFunc(d.delay, func() { d.fire(key, id, task) }),
	}
	return nil
}

// Cancel drops the pending task for key. It reports whether one was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev, ok := d.pending[key]
	if !ok {
		return false
	}
	prev.timer.Stop()
	delete(d.pending, key)
	return true
}

// Pending reports whether a task is armed for key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Stop cancels pending tasks, signals running ones and waits for them to exit.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for key, task := range d.pending {
		task.timer.Stop()
		delete(d.pending, key)
	}
	d.cancel()
	d.mu.Unlock()
	d.wg.Wait()
	d.logger.Sugar().Infow("debouncer stopped", "debouncer", d.name)
}

func (d *Debouncer) fire(key string, id uint64, task Task) {
	d.mu.Lock()
	current, ok := d.pending[key]
	if !ok || current.id != id || d.stopped {
		// superseded or cancelled after the timer had already fired
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.wg.Add(1)
	ctx := d.ctx
	d.mu.Unlock()

	defer d.wg.Done()
	start := time.Now()
	if err := task(ctx); err != nil {
		d.logger.Sugar().Errorw("debounced task failed", "debouncer", d.name, "key", key, "error", err)
		return
	}
	d.logger.Sugar().Debugw("debounced task completed", "debouncer", d.name, "key", key, "duration", time.Since(start))
}
