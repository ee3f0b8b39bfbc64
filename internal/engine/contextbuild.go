package engine

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/relaygrid/scriptengine/internal/cache"
	"github.com/relaygrid/scriptengine/internal/capability"
	"github.com/relaygrid/scriptengine/internal/errz"
	"github.com/relaygrid/scriptengine/internal/finitestate"
	"github.com/relaygrid/scriptengine/internal/jsengine"
	"github.com/relaygrid/scriptengine/internal/resourcemon"
	"github.com/relaygrid/scriptengine/internal/tracker"
)

// callState bundles everything a single top-level call's nested imports
// must share: the import tracker, so limits apply to the whole
// invocation rather than resetting per nested frame; the resource
// monitor, sampled on every importScript entry as well as on its own
// ticker; and the call's own lifecycle machine, which importScript moves
// into ImportGuarded/NestedRunning and back.
type callState struct {
	ctx     context.Context
	tracker *tracker.Tracker
	monitor *resourcemon.Monitor
	machine finitestate.Machine
}

// buildContext constructs a fresh capability context: base
// logger/calculator/utils, injected providers shallow-merged over them,
// and an importScript primitive bound to the shared call state.
func (e *Engine) buildContext(state *callState) (*capability.Context, error) {
	cc, err := capability.New(e.logHandler)
	if err != nil {
		return nil, err
	}
	if len(e.contextProviders) > 0 {
		cc.Merge(e.contextProviders)
	}
	cc.Object.Set("importScript", e.newImportScript(state))
	return cc, nil
}

// newImportScript implements the dynamic import primitive: resolve
// source text, run every guard before any observable work,
// record bookkeeping, introspect, and produce a callable exposing io,
// deps, and id that runs the imported script's own entry function under
// a freshly built (but tracker-sharing) context.
func (e *Engine) newImportScript(state *callState) *jsengine.NativeFunction {
	return &jsengine.NativeFunction{
		Name: "importScript",
		Fn: func(args []jsengine.Value) (jsengine.Value, error) {
			if len(args) == 0 {
				return nil, fmt.Errorf("%w: importScript requires one argument", errz.ErrUnsupportedResolved)
			}

			text, err := e.resolveImportArgument(args[0])
			if err != nil {
				return nil, err
			}

			if err := state.machine.Transition(finitestate.StateImportGuarded); err != nil {
				return nil, err
			}

			if state.tracker.ImportCount() >= e.limits.MaxImportedScripts() {
				_ = state.machine.Transition(finitestate.StateFailed)
				return nil, errz.ErrImportLimit
			}
			if state.tracker.Depth() >= e.limits.MaxRecursionDepth() {
				_ = state.machine.Transition(finitestate.StateFailed)
				return nil, errz.ErrRecursionLimit
			}
			if err := state.monitor.Check(); err != nil {
				_ = state.machine.Transition(finitestate.StateFailed)
				return nil, err
			}

			hash := cache.ContentHash(text)
			if state.tracker.HasImportedContent(hash) {
				_ = state.machine.Transition(finitestate.StateFailed)
				return nil, errz.Wrap(errz.ErrRecursiveImport, "Recursive import detected: script content already imported in this execution")
			}

			result := e.validator.Validate(text)
			if !result.Valid {
				_ = state.machine.Transition(finitestate.StateFailed)
				return nil, fmt.Errorf("%w: imported script validation failed: %v", errz.ErrShape, result.Errors)
			}

			callID, err := uuid.NewV6()
			if err != nil {
				_ = state.machine.Transition(finitestate.StateFailed)
				return nil, fmt.Errorf("%w: failed to mint import id: %s", errz.ErrUnsupportedResolved, err)
			}
			id := "imported-" + callID.String()
			state.tracker.Enter(id, hash)

			script, err := introspect(id, text)
			if err != nil {
				state.tracker.Exit()
				_ = state.machine.Transition(finitestate.StateFailed)
				return nil, err
			}

			if err := state.machine.TransitionIfCurrentState(finitestate.StateImportGuarded, finitestate.StateRunning); err != nil {
				state.tracker.Exit()
				return nil, err
			}

			return e.buildImportCallable(state, script), nil
		},
	}
}

// resolveImportArgument resolves the three accepted argument shapes: a
// zero-argument resolver function, a registry-resolvable string, or a
// literal source string.
func (e *Engine) resolveImportArgument(arg jsengine.Value) (string, error) {
	switch v := arg.(type) {
	case *jsengine.Function, *jsengine.NativeFunction:
		result, err := jsengine.CallValue(v, nil)
		if err != nil {
			return "", fmt.Errorf("%w: failed to resolve script content: %s", errz.ErrUnsupportedResolved, err)
		}
		if s, ok := result.(string); ok {
			return s, nil
		}
		return "", fmt.Errorf("%w: resolver must return a string", errz.ErrUnsupportedResolved)
	case string:
		if e.registry == nil {
			return v, nil
		}
		resolved, err := e.registry.Resolve(context.Background(), v)
		if err != nil {
			// Registry lookup failure falls through to treating the raw
			// string itself as source.
			return v, nil
		}
		return resolved, nil
	default:
		return "", fmt.Errorf("%w: importScript argument must be a string or resolver function", errz.ErrUnsupportedResolved)
	}
}
