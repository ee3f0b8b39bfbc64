// Package resourcemon samples process heap usage on an interval and on
// demand, enforcing a configured ceiling and warning as utilisation
// approaches it.
package resourcemon

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/relaygrid/scriptengine/internal/errz"
)

// Stats is a sampled snapshot of the monitor's observations.
type Stats struct {
	CurrentHeap   int64
	MaxObserved   int64
	Limit         int64
	Percentage    float64
	Duration      time.Duration
	SamplesTaken  int
}

// Config carries the heap ceiling and sampling cadence the monitor runs with.
type Config struct {
	MaxMemory       int64
	CheckIntervalMs int
}

const defaultCheckIntervalMs = 1000

// Monitor samples heap usage via runtime.ReadMemStats. On platforms where
// that is unavailable the zero value simply never samples; Go always
// provides it, so this degrades gracefully only in spirit, for hosts that
// might not have an equivalent facility.
type Monitor struct {
	mu           sync.Mutex
	maxMemory    int64
	interval     time.Duration
	logger       *slog.Logger
	started      time.Time
	maxObserved  int64
	samplesTaken int
	stopCh       chan struct{}
	stopped      bool
}

func New(cfg Config, logger *slog.Logger) *Monitor {
	interval := time.Duration(cfg.CheckIntervalMs) * time.Millisecond
	if cfg.CheckIntervalMs <= 0 {
		interval = defaultCheckIntervalMs * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		maxMemory: cfg.MaxMemory,
		interval:  interval,
		logger:    logger,
	}
}

// Start begins periodic sampling in a background goroutine. Stop must be
// called to release it.
func (m *Monitor) Start() {
	m.mu.Lock()
	m.started = time.Now()
	m.stopCh = make(chan struct{})
	m.stopped = false
	stopCh := m.stopCh
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				_ = m.Check()
			}
		}
	}()
}

// Stop halts periodic sampling. Safe to call more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	if m.stopCh != nil {
		close(m.stopCh)
	}
}

// Check takes one sample immediately, returning a fatal error if the
// sample exceeds maxMemory. It is also invoked manually on every
// importScript entry.
func (m *Monitor) Check() error {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	used := int64(memStats.HeapAlloc)

	m.mu.Lock()
	m.samplesTaken++
	if used > m.maxObserved {
		m.maxObserved = used
	}
	samples := m.samplesTaken
	limit := m.maxMemory
	m.mu.Unlock()

	if limit > 0 && used > limit {
		return errz.Wrap(errz.ErrMemoryLimit, fmt.Sprintf(
			"memory limit exceeded: used %dMiB, limit %dMiB", used/(1024*1024), limit/(1024*1024)))
	}

	if limit > 0 {
		pct := float64(used) / float64(limit) * 100
		if pct >= 80 && samples%5 == 0 {
			m.logger.Warn("resource monitor approaching limit",
				"usedMiB", used/(1024*1024), "limitMiB", limit/(1024*1024), "percent", pct)
		}
	}
	return nil
}

// Stats returns the current sampled snapshot.
func (m *Monitor) Stats() Stats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.mu.Lock()
	defer m.mu.Unlock()

	var pct float64
	if m.maxMemory > 0 {
		pct = float64(memStats.HeapAlloc) / float64(m.maxMemory) * 100
	}
	var dur time.Duration
	if !m.started.IsZero() {
		dur = time.Since(m.started)
	}
	return Stats{
		CurrentHeap:  int64(memStats.HeapAlloc),
		MaxObserved:  m.maxObserved,
		Limit:        m.maxMemory,
		Percentage:   pct,
		Duration:     dur,
		SamplesTaken: m.samplesTaken,
	}
}

// Dispose stops the monitor and releases its resources.
func (m *Monitor) Dispose() {
	m.Stop()
}
