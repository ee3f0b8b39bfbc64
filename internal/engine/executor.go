package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/relaygrid/scriptengine/internal/capability"
	"github.com/relaygrid/scriptengine/internal/errz"
	"github.com/relaygrid/scriptengine/internal/finitestate"
	"github.com/relaygrid/scriptengine/internal/jsengine"
	"github.com/relaygrid/scriptengine/internal/limits"
	"github.com/relaygrid/scriptengine/internal/resourcemon"
	"github.com/relaygrid/scriptengine/internal/tracker"
)

// Call runs the main script's entry function against inputs: await
// initialisation, start the monitor, validate inputs, build a fresh
// context, and run the entry function under the configured timeout.
func (e *Engine) Call(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	out, _, _, err := e.callInternal(ctx, inputs)
	return out, err
}

// CallCapturingLogs runs Call's sequence and additionally returns the
// call's replayed capability-context log lines and wall-clock duration,
// for callers (the convenience façade's RunResult) that want the
// buffered logger output as data rather than streamed live.
func (e *Engine) CallCapturingLogs(ctx context.Context, inputs map[string]any) (map[string]any, []capability.Record, time.Duration, error) {
	return e.callInternal(ctx, inputs)
}

func (e *Engine) callInternal(ctx context.Context, inputs map[string]any) (map[string]any, []capability.Record, time.Duration, error) {
	start := time.Now()
	if err := e.WaitForInitialization(); err != nil {
		return nil, nil, 0, err
	}
	e.mu.Lock()
	main := e.plan.main
	e.mu.Unlock()

	monitor := resourcemon.New(e.monitorConfig, e.logger)
	monitor.Start()
	defer monitor.Stop()

	machine, err := finitestate.New(e.logHandler)
	if err != nil {
		return nil, nil, 0, err
	}
	if err := machine.Transition(finitestate.StateValidating); err != nil {
		return nil, nil, 0, err
	}

	validated, err := ValidateInputs(inputs, main.IO.Inputs)
	if err != nil {
		_ = machine.Transition(finitestate.StateFailed)
		return nil, nil, time.Since(start), err
	}

	state := &callState{ctx: ctx, tracker: tracker.New(), monitor: monitor, machine: machine}

	callCtx, err := e.buildContext(state)
	if err != nil {
		_ = machine.Transition(finitestate.StateFailed)
		return nil, nil, time.Since(start), err
	}

	if err := machine.Transition(finitestate.StateRunning); err != nil {
		return nil, nil, time.Since(start), err
	}

	result, err := limits.RunWithTimeout(ctx, e.limits.Timeout(), func(_ context.Context) (jsengine.Value, error) {
		return main.Module.CallExport("", []jsengine.Value{jsengine.FromGo(validated), callCtx.Object})
	})
	duration := time.Since(start)
	logs := callCtx.CollectLogs()
	if err != nil {
		_ = machine.Transition(finitestate.StateFailed)
		if errors.Is(err, errz.ErrResource) {
			return nil, logs, duration, err
		}
		return nil, logs, duration, fmt.Errorf("%w: %s", errz.ErrUserCode, err)
	}
	_ = machine.Transition(finitestate.StateDone)

	out, ok := jsengine.ToGo(result).(map[string]any)
	if !ok {
		return map[string]any{"result": jsengine.ToGo(result)}, logs, duration, nil
	}
	return out, logs, duration, nil
}

// buildImportCallable produces the callable an importScript invocation
// returns: a native function that, when called, validates its inputs
// against the imported script's own io schema, rebuilds a fresh context
// sharing the same tracker and monitor, and invokes the imported default
// function. io, deps, and id are exposed as readable members.
func (e *Engine) buildImportCallable(state *callState, script *LoadedScript) *jsengine.NativeFunction {
	props := jsengine.NewObject()
	props.Set("io", script.IOValue)
	depsArr := jsengine.NewArray()
	for _, d := range script.Deps {
		depsArr.Items = append(depsArr.Items, d)
	}
	props.Set("deps", depsArr)
	props.Set("id", script.ID)

	fn := &jsengine.NativeFunction{Name: "importedScript:" + script.ID, Props: props}
	fn.Fn = func(args []jsengine.Value) (retVal jsengine.Value, retErr error) {
		defer state.tracker.Exit()

		if err := state.machine.Transition(finitestate.StateNestedRunning); err != nil {
			return nil, err
		}
		defer func() {
			next := finitestate.StateRunning
			if retErr != nil {
				next = finitestate.StateFailed
			}
			_ = state.machine.TransitionIfCurrentState(finitestate.StateNestedRunning, next)
		}()

		var rawInputs map[string]any
		if len(args) > 0 {
			rawInputs, _ = jsengine.ToGo(args[0]).(map[string]any)
		}
		validated, err := ValidateInputs(rawInputs, script.IO.Inputs)
		if err != nil {
			return nil, err
		}

		nestedCtx, err := e.buildContext(state)
		if err != nil {
			return nil, err
		}

		result, err := limits.RunWithTimeout(state.ctx, e.limits.Timeout(), func(_ context.Context) (jsengine.Value, error) {
			return script.Module.CallExport("", []jsengine.Value{jsengine.FromGo(validated), nestedCtx.Object})
		})
		if err != nil {
			return nil, fmt.Errorf("%w: imported script %q failed: %s", errz.ErrUserCode, script.ID, err)
		}
		return result, nil
	}
	return fn
}
