// Package engine implements the planner and executor: it loads,
// validates, introspects, and caches a main script and its declared
// dependency tree, then runs the main script's entry function against
// validated inputs and an injected capability context.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/relaygrid/scriptengine/internal/cache"
	"github.com/relaygrid/scriptengine/internal/jsengine"
	"github.com/relaygrid/scriptengine/internal/limits"
	"github.com/relaygrid/scriptengine/internal/registry"
	"github.com/relaygrid/scriptengine/internal/resourcemon"
	"github.com/relaygrid/scriptengine/internal/validator"
)

// SourceFunc supplies the main script's source text, possibly performing
// I/O. Literal wraps a fixed string; Resolver wraps a callback invoked
// fresh on every (re)initialisation, used by createHotReloadable.
type SourceFunc func(ctx context.Context) (string, error)

func Literal(text string) SourceFunc {
	return func(context.Context) (string, error) { return text, nil }
}

func Resolver(fn func(ctx context.Context) (string, error)) SourceFunc {
	return fn
}

// Config is the engine construction configuration.
type Config struct {
	Registry         registry.Registry
	Limits           *limits.Limits
	ResourceMonitor  resourcemon.Config
	CachePolicy      cache.Policy
	ContextProviders map[string]jsengine.Value
	Logger           *slog.Logger
	LogHandler       slog.Handler
}

// Engine is a single planned script and its dependency tree, ready to be
// called repeatedly. Construction is cheap; initialisation (planning) is
// asynchronous and awaited via WaitForInitialization or implicitly by
// Call.
type Engine struct {
	source SourceFunc

	registry         registry.Registry
	limits           *limits.Limits
	validator        *validator.Validator
	cache            *cache.Cache
	monitorConfig    resourcemon.Config
	contextProviders map[string]jsengine.Value
	logger           *slog.Logger
	logHandler       slog.Handler

	mu       sync.Mutex
	plan     *plan
	disposed bool

	initDone chan struct{}
	initErr  error
}

// New constructs an engine and kicks off its initial planning pass in
// the background.
func New(source SourceFunc, cfg Config) *Engine {
	lim := cfg.Limits
	if lim == nil {
		lim = limits.Defaults()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	handler := cfg.LogHandler
	if handler == nil {
		handler = logger.Handler()
	}
	policy := cfg.CachePolicy
	if policy == (cache.Policy{}) {
		policy = cache.DefaultPolicy()
	}

	e := &Engine{
		source:           source,
		registry:         cfg.Registry,
		limits:           lim,
		validator:        validator.New(),
		cache:            cache.New(policy),
		monitorConfig:    cfg.ResourceMonitor,
		contextProviders: cfg.ContextProviders,
		logger:           logger,
		logHandler:       handler,
		initDone:         make(chan struct{}),
	}
	go e.initialise(context.Background())
	return e
}

func (e *Engine) initialise(ctx context.Context) {
	p, err := e.runPlan(ctx)
	e.mu.Lock()
	e.plan = p
	e.initErr = err
	e.mu.Unlock()
	close(e.initDone)
}

// WaitForInitialization blocks until the current planning pass completes
// and returns its error, if any. A disposed engine always fails fast.
func (e *Engine) WaitForInitialization() error {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return fmt.Errorf("engine has been disposed")
	}
	e.mu.Unlock()
	<-e.initDone
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initErr
}

func (e *Engine) resolveSource(ctx context.Context) (string, error) {
	return e.source(ctx)
}

// GetIO returns the main script's io schema.
func (e *Engine) GetIO() (any, error) {
	if err := e.WaitForInitialization(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plan.main.IO, nil
}

// GetDependencies returns the main script's declared dependency ids.
func (e *Engine) GetDependencies() ([]string, error) {
	if err := e.WaitForInitialization(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plan.main.Deps, nil
}

func (e *Engine) SetCachePolicy(p cache.PolicyPartial) {
	e.cache.SetPolicy(p)
}

func (e *Engine) GetCacheStats() cache.Stats {
	return e.cache.Stats()
}

func (e *Engine) InvalidateScript(id string) {
	e.cache.Invalidate(id)
}

func (e *Engine) InvalidateIfChanged(id, text string) bool {
	return e.cache.InvalidateIfContentChanged(id, text)
}

func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// Reload clears the cache, resets initialisation state, and re-runs
// initialise with the current source callback.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return fmt.Errorf("engine has been disposed")
	}
	e.cache.Clear()
	e.initDone = make(chan struct{})
	e.mu.Unlock()

	e.initialise(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initErr
}

// Dispose clears the cache and marks the engine unusable for further
// calls.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disposed = true
	e.cache.Clear()
}
