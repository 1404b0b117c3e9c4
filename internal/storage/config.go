package storage

import (
	"fmt"
	"time"
)

// Config holds Badger engine configuration.
type Config struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir string `koanf:"dir"`
	// InMemory keeps all data in memory.
	InMemory bool `koanf:"in_memory"`
	// SyncWrites syncs every write to disk.
	SyncWrites bool `koanf:"sync_writes"`
	// CacheSize is the block cache size in bytes.
	CacheSize int64 `koanf:"cache_size"`
	// GCInterval is the value log GC period. Zero disables background GC.
	GCInterval time.Duration `koanf:"gc_interval"`
	// GCThreshold is the discard ratio passed to value log GC.
	GCThreshold float64 `koanf:"gc_threshold"`
	// Passphrase enables sealing of values under secret-looking keys.
	Passphrase []byte `koanf:"passphrase"`
}

// DefaultConfig returns the configuration for a database in dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:         dir,
		SyncWrites:  true,
		CacheSize:   64 << 20,
		GCInterval:  10 * time.Minute,
		GCThreshold: 0.5,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Dir == "" && !c.InMemory {
		return fmt.Errorf("storage: dir is required")
	}
	if c.GCThreshold <= 0 || c.GCThreshold >= 1 {
		return fmt.Errorf("storage: gc_threshold must be in (0, 1), got %v", c.GCThreshold)
	}
	if c.GCInterval < 0 {
		return fmt.Errorf("storage: gc_interval must not be negative")
	}
	return nil
}
