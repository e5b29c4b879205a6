// Package timeouts holds the context deadlines that handlers, cells,
// and background jobs put on store calls. Every store touch goes
// through one of the five tiers so a slow Mongo node degrades requests
// predictably instead of hanging them.
//
// Tiers, by the operations that use them:
//   - Ping: the health endpoint's connectivity check
//   - Short: single-document reads (session identity, invitation by token)
//   - Medium: list loads and cell write-backs (workspace lists, access
//     marks, module reorder)
//   - Long: multi-step writes (registration, invitation acceptance)
//   - Batch: one run of a background sweep (invitation expiry,
//     notification prune)
package timeouts

import (
	"os"
	"sync"
	"time"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

var (
	mu     sync.RWMutex
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	batch  = DefaultBatch
)

func get(d *time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return *d
}

// Ping returns the health-check deadline.
func Ping() time.Duration { return get(&ping) }

// Short returns the deadline for single-document reads.
func Short() time.Duration { return get(&short) }

// Medium returns the deadline for list loads and write-backs.
func Medium() time.Duration { return get(&medium) }

// Long returns the deadline for multi-step writes.
func Long() time.Duration { return get(&long) }

// Batch returns the deadline for one background sweep run.
func Batch() time.Duration { return get(&batch) }

// FromEnv applies TEAMSPACE_TIMEOUT_* overrides (Go duration syntax,
// e.g. "500ms", "15s"). Unset, malformed, or non-positive values keep
// the current value. Called once during startup, before the router and
// workers are built.
func FromEnv() {
	mu.Lock()
	defer mu.Unlock()
	for _, tier := range []struct {
		env string
		dst *time.Duration
	}{
		{"TEAMSPACE_TIMEOUT_PING", &ping},
		{"TEAMSPACE_TIMEOUT_SHORT", &short},
		{"TEAMSPACE_TIMEOUT_MEDIUM", &medium},
		{"TEAMSPACE_TIMEOUT_LONG", &long},
		{"TEAMSPACE_TIMEOUT_BATCH", &batch},
	} {
		v := os.Getenv(tier.env)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*tier.dst = d
		}
	}
}

// Reset restores every tier to its default. Tests that call FromEnv
// use it to undo their overrides.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	long = DefaultLong
	batch = DefaultBatch
}
