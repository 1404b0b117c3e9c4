package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/specs-feup/specs-go/internal/telemetry/logger"
	"github.com/specs-feup/specs-go/pkg/datastore"
)

// ErrClosed indicates an operation on a closed engine.
var ErrClosed = errors.New("storage engine closed")

const sep = 0x00

var rootPrefix = []byte("store\x00")

// Engine saves and loads stores in a Badger database.
type Engine struct {
	db     *badger.DB
	cfg    Config
	logger logger.Logger
	closed atomic.Bool
	sealer *sealer

	lastGCTime atomic.Int64 // Unix milliseconds
	gcRuns     atomic.Uint64

	stopCh chan struct{}
	doneCh chan struct{}
}

// Stats contains storage statistics.
type Stats struct {
	// Stores is the number of saved stores.
	Stores int
	// Values is the number of saved values across all stores.
	Values int
	// Sealed is the number of encrypted values.
	Sealed int
	// LSMSize is the LSM tree size in bytes.
	LSMSize int64
	// ValueLogSize is the value log size in bytes.
	ValueLogSize int64
	// LastGCTime is the Unix time in milliseconds of the last GC run.
	LastGCTime int64
}

// Open opens the database described by cfg.
func Open(cfg Config, log logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Default()
	}
	log = log.Named("storage")

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: log}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.CacheSize > 0 {
		opts.BlockCacheSize = cfg.CacheSize
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	e := &Engine{
		db:     db,
		cfg:    cfg,
		logger: log,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	if len(cfg.Passphrase) > 0 {
		if err := e.initSealer(); err != nil {
			db.Close()
			return nil, err
		}
	}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		go e.gcLoop()
	} else {
		close(e.doneCh)
	}

	log.Info("badger engine started",
		"dir", cfg.Dir,
		"in_memory", cfg.InMemory,
		"sealed", e.sealer != nil,
		"gc_interval", cfg.GCInterval)
	return e, nil
}

func storePrefix(name string) []byte {
	p := make([]byte, 0, len(rootPrefix)+len(name)+1)
	p = append(p, rootPrefix...)
	p = append(p, name...)
	return append(p, sep)
}

func entryKey(store, key string) []byte {
	return append(storePrefix(store), key...)
}

// splitKey returns the store and key names of a database key.
func splitKey(k []byte) (string, string, bool) {
	rest, ok := bytes.CutPrefix(k, rootPrefix)
	if !ok {
		return "", "", false
	}
	store, key, ok := bytes.Cut(rest, []byte{sep})
	if !ok {
		return "", "", false
	}
	return string(store), string(key), true
}

// resolveKey finds the key used to encode or decode the named value. A key
// of the store's definition wins over the key the value was stored with.
func resolveKey(s *datastore.Store, name string) (datastore.AnyKey, bool) {
	if def, ok := s.Definition(); ok {
		if k, ok := def.Key(name); ok {
			return k, true
		}
	}
	return s.KeyOf(name)
}

// Save replaces the saved values of the store named s.Name() with the
// current values of s. Every value must be encodable by its key's codec;
// otherwise nothing is written. With a passphrase, values under
// secret-looking key names are sealed.
func (e *Engine) Save(ctx context.Context, s *datastore.Store) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	entries := make(map[string]string, s.Len())
	var errs []error
	for _, name := range s.KeysWithValues() {
		k, _ := resolveKey(s, name)
		v, _ := s.RawValue(name)
		text, err := k.EncodeAny(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("key %s: %w", name, err))
			continue
		}
		entries[name] = text
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("save store %s: %w", s.Name(), err)
	}

	err := e.db.Update(func(txn *badger.Txn) error {
		if err := deleteRange(ctx, txn, storePrefix(s.Name())); err != nil {
			return err
		}
		for name, text := range entries {
			key := entryKey(s.Name(), name)
			entry := badger.NewEntry(key, []byte(text))
			if e.sealer != nil && logger.IsSensitiveKey(name) {
				sealed, err := e.sealer.seal([]byte(text), key)
				if err != nil {
					return err
				}
				entry = badger.NewEntry(key, sealed).WithMeta(metaSealed)
			}
			if err := txn.SetEntry(entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save store %s: %w", s.Name(), err)
	}

	e.logger.Debug("store saved", "store", s.Name(), "values", len(entries))
	return nil
}

// Load reads the saved values of the store named after def into a new
// store bound to def.
func (e *Engine) Load(ctx context.Context, def *datastore.Definition, opts ...datastore.Option) (*datastore.Store, error) {
	s := datastore.NewFromDefinition(def, opts...)
	if err := e.Fill(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Fill decodes the saved values of the store named s.Name() into s. Values
// with no known key or that fail to decode are reported together; the
// others are still set.
func (e *Engine) Fill(ctx context.Context, s *datastore.Store) error {
	if e.closed.Load() {
		return ErrClosed
	}

	var errs []error
	err := e.scan(ctx, storePrefix(s.Name()), func(_, key string, item *badger.Item) error {
		k, ok := resolveKey(s, key)
		if !ok {
			errs = append(errs, datastore.ErrUndefinedKey.WithDetailsf("saved key '%s' is not defined for store '%s'", key, s.Name()))
			return nil
		}
		value, err := e.value(item)
		if err != nil {
			errs = append(errs, fmt.Errorf("key %s: %w", key, err))
			return nil
		}
		if err := s.SetText(k, string(value)); err != nil {
			errs = append(errs, fmt.Errorf("key %s: %w", key, err))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("load store %s: %w", s.Name(), err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("load store %s: %w", s.Name(), err)
	}
	return nil
}

// Entries returns the saved text values of the named store.
func (e *Engine) Entries(ctx context.Context, name string) (map[string]string, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	out := make(map[string]string)
	err := e.scan(ctx, storePrefix(name), func(_, key string, item *badger.Item) error {
		value, err := e.value(item)
		if err != nil {
			return fmt.Errorf("key %s: %w", key, err)
		}
		out[key] = string(value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the saved values of the named store.
func (e *Engine) Delete(ctx context.Context, name string) error {
	if e.closed.Load() {
		return ErrClosed
	}
	return e.db.Update(func(txn *badger.Txn) error {
		return deleteRange(ctx, txn, storePrefix(name))
	})
}

// Names returns the names of the saved stores in ascending order.
func (e *Engine) Names(ctx context.Context) ([]string, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	var names []string
	err := e.scan(ctx, rootPrefix, func(store, _ string, _ *badger.Item) error {
		if n := len(names); n == 0 || names[n-1] != store {
			names = append(names, store)
		}
		return nil
	})
	return names, err
}

func (e *Engine) scan(ctx context.Context, prefix []byte, fn func(store, key string, item *badger.Item) error) error {
	return e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			store, key, ok := splitKey(item.Key())
			if !ok {
				continue
			}
			if err := fn(store, key, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func deleteRange(ctx context.Context, txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Backup writes a full backup of the database to w.
func (e *Engine) Backup(ctx context.Context, w io.Writer) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := e.db.Backup(w, 0); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

// Restore replaces the database content with a backup read from r.
func (e *Engine) Restore(ctx context.Context, r io.Reader) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.db.DropAll(); err != nil {
		return fmt.Errorf("drop existing data: %w", err)
	}
	if err := e.db.Load(r, 256); err != nil {
		return fmt.Errorf("load backup: %w", err)
	}
	if len(e.cfg.Passphrase) > 0 {
		if err := e.initSealer(); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}
	e.logger.Info("backup restored")
	return nil
}

// GC runs value log garbage collection until nothing more can be
// rewritten. It returns the number of rewritten value log files.
func (e *Engine) GC(ctx context.Context) (int, error) {
	if e.closed.Load() {
		return 0, ErrClosed
	}
	if e.cfg.InMemory {
		return 0, nil
	}
	start := time.Now()

	var rewritten int
	for {
		if err := ctx.Err(); err != nil {
			return rewritten, err
		}
		err := e.db.RunValueLogGC(e.cfg.GCThreshold)
		if errors.Is(err, badger.ErrNoRewrite) {
			break
		}
		if err != nil {
			return rewritten, fmt.Errorf("gc: %w", err)
		}
		rewritten++
	}

	e.lastGCTime.Store(time.Now().UnixMilli())
	e.gcRuns.Add(1)
	e.logger.Debug("gc completed", "rewritten", rewritten, "elapsed", time.Since(start))
	return rewritten, nil
}

// Stats returns storage statistics.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	stats := &Stats{LastGCTime: e.lastGCTime.Load()}
	stats.LSMSize, stats.ValueLogSize = e.db.Size()

	var last string
	err := e.scan(ctx, rootPrefix, func(store, _ string, item *badger.Item) error {
		stats.Values++
		if item.UserMeta()&metaSealed != 0 {
			stats.Sealed++
		}
		if stats.Stores == 0 || store != last {
			stats.Stores++
			last = store
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Close stops background GC and closes the database.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(e.stopCh)
	<-e.doneCh

	if err := e.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	e.logger.Info("badger engine closed")
	return nil
}

// RegisterMetrics registers Badger size and GC metrics with reg.
func (e *Engine) RegisterMetrics(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "specs",
			Subsystem: "badger",
			Name:      "lsm_size_bytes",
			Help:      "Badger LSM tree size in bytes",
		}, func() float64 {
			lsm, _ := e.db.Size()
			return float64(lsm)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "specs",
			Subsystem: "badger",
			Name:      "value_log_size_bytes",
			Help:      "Badger value log size in bytes",
		}, func() float64 {
			_, vlog := e.db.Size()
			return float64(vlog)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "specs",
			Subsystem: "badger",
			Name:      "last_gc_timestamp_seconds",
			Help:      "Unix timestamp of the last Badger GC run",
		}, func() float64 {
			return float64(e.lastGCTime.Load()) / 1000.0
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "specs",
			Subsystem: "badger",
			Name:      "gc_runs_total",
			Help:      "Completed Badger garbage collection runs",
		}, func() float64 {
			return float64(e.gcRuns.Load())
		}),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) gcLoop() {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if _, err := e.GC(ctx); err != nil {
				e.logger.Error("auto gc failed", "error", err)
			}
			cancel()

		case <-e.stopCh:
			return
		}
	}
}

// badgerLogger adapts Logger to Badger's Logger interface.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
