// Package facade wraps internal/engine with the convenience operations a
// one-shot caller reaches for instead of constructing and awaiting an
// Engine directly: Execute a script once, ExecuteWithValidation a script
// once after strict input validation, ExecuteBatch many input sets
// concurrently against one loaded script, Validate a script's source
// without running it, and the two long-lived builders CreateReusable and
// CreateHotReloadable for callers that make many calls against the same
// script. Benchmark times repeated calls and captures their logs.
package facade

import (
	"context"
	"fmt"
	"time"

	"github.com/relaygrid/scriptengine/internal/capability"
	"github.com/relaygrid/scriptengine/internal/engine"
	"github.com/relaygrid/scriptengine/internal/params"
	"github.com/relaygrid/scriptengine/internal/validator"
)

// RunResult bundles a single call's output with its wall-clock duration
// and the lines the capability context's logger buffered, mirroring
// ConfigTransaction's buffered-logger-then-replay pattern.
type RunResult struct {
	Output   map[string]any
	Duration time.Duration
	Logs     []capability.Record
}

// Execute builds an engine for a single piece of source text, waits for it
// to plan, runs it once against inputs, and disposes it. Intended for
// one-shot callers that do not want to manage an Engine's lifetime
// themselves.
func Execute(ctx context.Context, source string, inputs map[string]any, cfg engine.Config) (RunResult, error) {
	e := engine.New(engine.Literal(source), cfg)
	defer e.Dispose()

	if err := e.WaitForInitialization(); err != nil {
		return RunResult{}, err
	}
	out, logs, duration, err := e.CallCapturingLogs(ctx, inputs)
	return RunResult{Output: out, Duration: duration, Logs: logs}, err
}

// ExecuteWithValidation runs strict input validation against the script's
// own io schema before calling it, so an input failure is reported as
// "Input validation failed: <reason>" and the call is never made.
func ExecuteWithValidation(ctx context.Context, source string, inputs map[string]any, cfg engine.Config) (RunResult, error) {
	e := engine.New(engine.Literal(source), cfg)
	defer e.Dispose()

	if err := e.WaitForInitialization(); err != nil {
		return RunResult{}, err
	}
	ioAny, err := e.GetIO()
	if err != nil {
		return RunResult{}, err
	}
	io, ok := ioAny.(params.IOSchema)
	if !ok {
		return RunResult{}, fmt.Errorf("unexpected io schema type %T", ioAny)
	}
	if _, err := engine.ValidateInputs(inputs, io.Inputs); err != nil {
		return RunResult{}, fmt.Errorf("Input validation failed: %s", err)
	}

	out, logs, duration, err := e.CallCapturingLogs(ctx, inputs)
	return RunResult{Output: out, Duration: duration, Logs: logs}, err
}

// Validate runs the surface validator against source without building or
// running an engine at all.
func Validate(source string) validator.Result {
	return validator.New().Validate(source)
}

// ExecuteBatch runs source once per entry of inputsBatch against a single
// shared, planned engine, each on its own goroutine, and collects results
// in input order. A per-item error does not abort the rest of the batch.
func ExecuteBatch(ctx context.Context, source string, inputsBatch []map[string]any, cfg engine.Config) ([]RunResult, []error) {
	e := engine.New(engine.Literal(source), cfg)
	defer e.Dispose()

	results := make([]RunResult, len(inputsBatch))
	errs := make([]error, len(inputsBatch))

	if err := e.WaitForInitialization(); err != nil {
		for i := range errs {
			errs[i] = err
		}
		return results, errs
	}

	done := make(chan int, len(inputsBatch))
	for i, inputs := range inputsBatch {
		go func(i int, inputs map[string]any) {
			out, logs, duration, err := e.CallCapturingLogs(ctx, inputs)
			results[i] = RunResult{Output: out, Duration: duration, Logs: logs}
			errs[i] = err
			done <- i
		}(i, inputs)
	}
	for range inputsBatch {
		<-done
	}
	return results, errs
}

// Reusable is a planned engine kept alive across many calls, for callers
// that want to amortise planning cost over repeated invocations of the
// same fixed source.
type Reusable struct {
	engine *engine.Engine
}

// CreateReusable plans source once and returns a handle for repeated Run
// calls. The caller must Close it when done.
func CreateReusable(ctx context.Context, source string, cfg engine.Config) (*Reusable, error) {
	e := engine.New(engine.Literal(source), cfg)
	if err := e.WaitForInitialization(); err != nil {
		e.Dispose()
		return nil, err
	}
	return &Reusable{engine: e}, nil
}

func (r *Reusable) Run(ctx context.Context, inputs map[string]any) (RunResult, error) {
	out, logs, duration, err := r.engine.CallCapturingLogs(ctx, inputs)
	return RunResult{Output: out, Duration: duration, Logs: logs}, err
}

func (r *Reusable) GetIO() (any, error) { return r.engine.GetIO() }

func (r *Reusable) Close() { r.engine.Dispose() }

// HotReloadable is a planned engine whose source is re-fetched and
// re-planned on every Reload call, for callers that edit a script on disk
// (or in a registry) between calls and want the engine to pick up the
// change while keeping its limits and context providers. Reload empties
// the cache before re-planning.
type HotReloadable struct {
	engine *engine.Engine
}

// CreateHotReloadable builds an engine whose source is resolved afresh by
// resolve on every (re)initialisation, starting with an initial plan pass.
func CreateHotReloadable(ctx context.Context, resolve func(ctx context.Context) (string, error), cfg engine.Config) (*HotReloadable, error) {
	e := engine.New(engine.Resolver(resolve), cfg)
	if err := e.WaitForInitialization(); err != nil {
		e.Dispose()
		return nil, err
	}
	return &HotReloadable{engine: e}, nil
}

func (h *HotReloadable) Run(ctx context.Context, inputs map[string]any) (RunResult, error) {
	out, logs, duration, err := h.engine.CallCapturingLogs(ctx, inputs)
	return RunResult{Output: out, Duration: duration, Logs: logs}, err
}

// Reload clears the cache and re-resolves the source, picking up any
// change since the last (re)initialisation.
func (h *HotReloadable) Reload(ctx context.Context) error { return h.engine.Reload(ctx) }

func (h *HotReloadable) Close() { h.engine.Dispose() }

// BenchmarkResult summarises repeated-call timing.
type BenchmarkResult struct {
	Iterations int
	Total      time.Duration
	Min        time.Duration
	Max        time.Duration
	Average    time.Duration
	Errors     int
	Logs       []capability.Record
}

// Benchmark runs source's entry function iterations times against the
// same inputs on a single planned engine, accumulating timing stats and
// the final iteration's collected logs.
func Benchmark(ctx context.Context, source string, inputs map[string]any, iterations int, cfg engine.Config) (BenchmarkResult, error) {
	if iterations <= 0 {
		return BenchmarkResult{}, fmt.Errorf("benchmark requires at least one iteration")
	}

	e := engine.New(engine.Literal(source), cfg)
	defer e.Dispose()

	if err := e.WaitForInitialization(); err != nil {
		return BenchmarkResult{}, err
	}

	res := BenchmarkResult{Iterations: iterations}
	for i := 0; i < iterations; i++ {
		_, logs, duration, err := e.CallCapturingLogs(ctx, inputs)
		res.Total += duration
		if i == 0 || duration < res.Min {
			res.Min = duration
		}
		if duration > res.Max {
			res.Max = duration
		}
		if err != nil {
			res.Errors++
		}
		res.Logs = logs
	}
	res.Average = res.Total / time.Duration(iterations)
	return res, nil
}
