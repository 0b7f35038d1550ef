// Package timeouts holds the deadlines handlers put on storage calls.
// Values come from config at startup; tests may override and Reset them.
package timeouts

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second  // one dependency health probe
	DefaultShort  = 5 * time.Second  // single-record reads and writes
	DefaultMedium = 10 * time.Second // listings and multi-key writes
)

// Config is a full set of handler deadlines.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
}

var defaults = Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium}

var (
	mu  sync.RWMutex
	cur = defaults
)

// Current returns the active deadlines.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

func Ping() time.Duration   { return Current().Ping }
func Short() time.Duration  { return Current().Short }
func Medium() time.Duration { return Current().Medium }

// Configure replaces the deadlines given as positive values and leaves the
// others untouched.
func Configure(c Config) {
	mu.Lock()
	defer mu.Unlock()
	cur.Ping = pick(c.Ping, cur.Ping)
	cur.Short = pick(c.Short, cur.Short)
	cur.Medium = pick(c.Medium, cur.Medium)
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	cur = defaults
	mu.Unlock()
}

func pick(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}

// WithTimeout derives a context bounded by d. Its cancel func logs op at
// Warn when the deadline, not the caller, ended the work.
func WithTimeout(parent context.Context, d time.Duration, log *zap.Logger, op string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, d)
	return ctx, func() {
		if log != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn("operation timed out", zap.String("operation", op), zap.Duration("timeout", d))
		}
		cancel()
	}
}
