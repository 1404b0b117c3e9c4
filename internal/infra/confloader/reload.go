package confloader

import (
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/specs-feup/specs-go/internal/telemetry/logger"
	"github.com/specs-feup/specs-go/pkg/datastore"
)

// LoadFunc produces a freshly loaded store.
type LoadFunc func() (*datastore.Store, error)

// Defaults for reloads triggered by file changes.
const (
	DefaultSettleDelay    = 100 * time.Millisecond
	DefaultReloadInterval = time.Second
)

// Reloader keeps the most recent successfully loaded store. A failed
// reload keeps the previous store.
type Reloader struct {
	mu        sync.RWMutex
	current   *datastore.Store
	load      LoadFunc
	callbacks []func(*datastore.Store, error)
	logger    logger.Logger

	settle  time.Duration
	limiter *rate.Limiter
	pending *time.Timer
	stopped bool
}

// ReloadOption configures a Reloader.
type ReloadOption func(*Reloader)

// WithSettleDelay sets how long a burst of changes must stay quiet before
// the store is loaded again.
func WithSettleDelay(d time.Duration) ReloadOption {
	return func(r *Reloader) {
		r.settle = d
	}
}

// WithReloadInterval sets the minimum spacing between change-triggered
// reloads. Zero removes the limit.
func WithReloadInterval(every time.Duration) ReloadOption {
	return func(r *Reloader) {
		r.limiter = rate.NewLimiter(rate.Every(every), 1)
	}
}

// NewReloader performs the initial load.
func NewReloader(load LoadFunc, log logger.Logger, opts ...ReloadOption) (*Reloader, error) {
	if log == nil {
		log = logger.Default()
	}
	r := &Reloader{
		load:    load,
		logger:  log,
		settle:  DefaultSettleDelay,
		limiter: rate.NewLimiter(rate.Every(DefaultReloadInterval), 1),
	}
	for _, opt := range opts {
		opt(r)
	}

	s, err := load()
	if err != nil {
		return nil, err
	}
	r.current = s
	return r, nil
}

// Current returns a copy of the current store. The copy is owned by the
// caller.
func (r *Reloader) Current() *datastore.Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return datastore.NewCopy(r.current.Name(), r.current)
}

// Reload loads the store again. Callbacks run after every attempt with the
// new store, or the kept one and the error.
func (r *Reloader) Reload() error {
	s, err := r.load()

	r.mu.Lock()
	if err == nil {
		r.current = s
	} else {
		s = r.current
	}
	callbacks := append([]func(*datastore.Store, error){}, r.callbacks...)
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn("configuration reload failed, keeping previous values", "store", s.Name(), "error", err)
	} else {
		r.logger.Info("configuration reloaded", "store", s.Name(), "values", s.Len())
	}
	for _, cb := range callbacks {
		cb(s, err)
	}
	return err
}

// OnReload registers a callback run after each reload attempt. The store
// passed to it must not be modified.
func (r *Reloader) OnReload(cb func(*datastore.Store, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append(r.callbacks, cb)
}

// Sizes reports the number of stored values of the current store.
func (r *Reloader) Sizes() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return map[string]int{r.current.Name(): r.current.Len()}
}

// Schedule reloads the store once the current burst of changes settles.
// Calls made while a reload is pending fold into it, and reloads are
// spaced by the reload interval.
func (r *Reloader) Schedule() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || r.pending != nil {
		return
	}

	delay := r.settle
	if wait := r.limiter.Reserve().Delay(); wait > delay {
		delay = wait
	}
	r.pending = time.AfterFunc(delay, r.fire)
}

func (r *Reloader) fire() {
	r.mu.Lock()
	r.pending = nil
	stopped := r.stopped
	r.mu.Unlock()

	if !stopped {
		_ = r.Reload()
	}
}

// Stop cancels a pending reload and ignores later calls to Schedule.
func (r *Reloader) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
}

// Attach schedules a reload whenever w reports a change to path.
func (r *Reloader) Attach(w *Watcher, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Watch(abs); err != nil {
		return err
	}
	w.OnChange(func(changed string) {
		if changed == abs {
			r.Schedule()
		}
	})
	return nil
}
