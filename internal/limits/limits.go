// Package limits encapsulates execution bounds: a timeout race for the
// script entry function, and counter guards for import count and
// recursion depth.
package limits

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/relaygrid/scriptengine/internal/errz"
)

// Limits are read-only bounds for a single engine instance, mutable only
// via UpdateLimits.
type Limits struct {
	mu                 sync.RWMutex
	timeout            time.Duration
	maxRecursionDepth  int
	maxImportedScripts int
	maxMemory          int64
}

// Partial carries the subset of fields UpdateLimits should overwrite; a
// nil field leaves the current value untouched.
type Partial struct {
	Timeout            *time.Duration
	MaxRecursionDepth  *int
	MaxImportedScripts *int
	MaxMemory          *int64
}

// Defaults returns the engine's baseline bounds: 30s timeout, depth 10,
// 50 imports, 100MiB.
func Defaults() *Limits {
	return &Limits{
		timeout:            30 * time.Second,
		maxRecursionDepth:  10,
		maxImportedScripts: 50,
		maxMemory:          100 * 1024 * 1024,
	}
}

func New(timeout time.Duration, maxRecursionDepth, maxImportedScripts int, maxMemory int64) *Limits {
	return &Limits{
		timeout:            timeout,
		maxRecursionDepth:  maxRecursionDepth,
		maxImportedScripts: maxImportedScripts,
		maxMemory:          maxMemory,
	}
}

func (l *Limits) Timeout() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.timeout
}

func (l *Limits) MaxRecursionDepth() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.maxRecursionDepth
}

func (l *Limits) MaxImportedScripts() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.maxImportedScripts
}

func (l *Limits) MaxMemory() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.maxMemory
}

// UpdateLimits bulk-updates any non-nil field of p.
func (l *Limits) UpdateLimits(p Partial) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p.Timeout != nil {
		l.timeout = *p.Timeout
	}
	if p.MaxRecursionDepth != nil {
		l.maxRecursionDepth = *p.MaxRecursionDepth
	}
	if p.MaxImportedScripts != nil {
		l.maxImportedScripts = *p.MaxImportedScripts
	}
	if p.MaxMemory != nil {
		l.maxMemory = *p.MaxMemory
	}
}

// CheckRecursion fails when depth is already at or past the configured
// bound, naming both the observed and configured values.
func (l *Limits) CheckRecursion(depth int) error {
	max := l.MaxRecursionDepth()
	if depth >= max {
		return errz.Wrap(errz.ErrRecursionLimit,
			fmt.Sprintf("recursion depth limit exceeded: depth %d, max %d", depth, max))
	}
	return nil
}

// CheckImports fails when count is already at or past the configured bound.
func (l *Limits) CheckImports(count int) error {
	max := l.MaxImportedScripts()
	if count >= max {
		return errz.Wrap(errz.ErrImportLimit,
			fmt.Sprintf("import limit exceeded: count %d, max %d", count, max))
	}
	return nil
}

// RunWithTimeout races producer against bound. The first to settle wins;
// the timer is always cancelled before returning. On a timeout the
// producer's goroutine is not stopped: a producer that ignores its context
// keeps running and its result is discarded. A bound of zero always fails immediately rather than
// racing a context that is already past its deadline.
func RunWithTimeout[T any](ctx context.Context, bound time.Duration, producer func(context.Context) (T, error)) (T, error) {
	var zero T
	if bound <= 0 {
		return zero, errz.Wrap(errz.ErrTimeout, "Script execution timeout after 0ms")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, bound)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := producer(timeoutCtx)
		done <- outcome{value: v, err: err}
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-timeoutCtx.Done():
		return zero, errz.Wrap(errz.ErrTimeout, fmt.Sprintf("Script execution timeout after %dms", bound.Milliseconds()))
	}
}
