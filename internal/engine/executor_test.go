package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/relaygrid/scriptengine/internal/errz"
	"github.com/relaygrid/scriptengine/internal/finitestate"
	"github.com/relaygrid/scriptengine/internal/jsengine"
	"github.com/relaygrid/scriptengine/internal/limits"
	"github.com/relaygrid/scriptengine/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallReturnsEntryFunctionOutput(t *testing.T) {
	e := newTestEngine(t, pingSource, Config{})
	out, err := e.Call(context.Background(), map[string]any{"name": "ada"})
	require.NoError(t, err)
	assert.Equal(t, "hello ada", out["greeting"])
}

func TestCallFailsOnMissingRequiredInput(t *testing.T) {
	src := `
export const io = { inputs: { n: { kind: "integer" } }, outputs: { result: { kind: "integer" } } }
export default async function (inputs, context) {
	return { result: inputs.n }
}
`
	e := newTestEngine(t, src, Config{})
	_, err := e.Call(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errz.ErrMissingRequiredInput))
}

func TestCallTimesOutOnSlowEntryFunction(t *testing.T) {
	src := `
export const io = { inputs: {}, outputs: { result: { kind: "text" } } }
export default async function (inputs, context) {
	let i = 0
	while (true) {
		i = i + 1
	}
	return { result: "never" }
}
`
	oneMillisecond := time.Millisecond
	e := newTestEngine(t, src, Config{Limits: limits.New(oneMillisecond, 10, 50, 0)})
	_, err := e.Call(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errz.ErrResource))
}

func TestCallRunsNestedImportedScript(t *testing.T) {
	mainSrc := `
export const io = { inputs: {}, outputs: { result: { kind: "text" } } }
export default async function (inputs, context) {
	const helper = await context.importScript("helper")
	const out = await helper({})
	return { result: out.result, helperID: helper.id }
}
`
	reg := newStubRegistry(map[string]string{
		"helper": `
export const io = { inputs: {}, outputs: { result: { kind: "text" } } }
export default async function (inputs, context) {
	return { result: "from helper" }
}
`,
	})
	e := newTestEngine(t, mainSrc, Config{Registry: reg})
	out, err := e.Call(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "from helper", out["result"])
	assert.Equal(t, "helper", out["helperID"])
}

func TestImportScriptExposesIOAndDepsOnCallable(t *testing.T) {
	mainSrc := `
export const io = { inputs: {}, outputs: { hasIO: { kind: "boolean" }, deps: { kind: "sequence" } } }
export default async function (inputs, context) {
	const helper = await context.importScript("helper")
	return { hasIO: typeof helper.io === "object", deps: helper.deps }
}
`
	reg := newStubRegistry(map[string]string{
		"helper": `
export const io = { inputs: {}, outputs: { result: { kind: "text" } } }
export default async function (inputs, context) {
	return { result: "ok" }
}
`,
	})
	e := newTestEngine(t, mainSrc, Config{Registry: reg})
	out, err := e.Call(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, true, out["hasIO"])
}

func TestImportedCallableRunsAndReturnsOutput(t *testing.T) {
	mainSrc := `
export const io = { inputs: {}, outputs: { doubled: { kind: "integer" } } }
export default async function (inputs, context) {
	const helper = await context.importScript("doubler")
	const out = await helper({ n: 21 })
	return { doubled: out.doubled }
}
`
	reg := newStubRegistry(map[string]string{
		"doubler": `
export const io = { inputs: { n: { kind: "integer" } }, outputs: { doubled: { kind: "integer" } } }
export default async function (inputs, context) {
	return { doubled: inputs.n * 2 }
}
`,
	})
	e := newTestEngine(t, mainSrc, Config{Registry: reg})
	out, err := e.Call(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, float64(42), out["doubled"])
}

func TestImportScriptRejectsRecursiveContent(t *testing.T) {
	mainSrc := `
export const io = { inputs: {}, outputs: { result: { kind: "text" } } }
export default async function (inputs, context) {
	const helper = await context.importScript("helper")
	return await helper({})
}
`
	helperSrc := `
export const io = { inputs: {}, outputs: { result: { kind: "text" } } }
export default async function (inputs, context) {
	const again = await context.importScript("` + "helper" + `")
	return { result: "loop" }
}
`
	reg := newStubRegistry(map[string]string{"helper": helperSrc})
	e := newTestEngine(t, mainSrc, Config{Registry: reg})
	_, err := e.Call(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Recursive import detected")
}

func TestBuildImportCallablePopsTrackerOnCompletion(t *testing.T) {
	e := newTestEngine(t, pingSource, Config{})
	helperScript, err := introspect("helper", `
export const io = { inputs: {}, outputs: { result: { kind: "text" } } }
export default async function (inputs, context) {
	return { result: "ok" }
}
`)
	require.NoError(t, err)

	machine, err := finitestate.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, err)
	require.NoError(t, machine.Transition(finitestate.StateValidating))
	require.NoError(t, machine.Transition(finitestate.StateRunning))

	state := &callState{ctx: context.Background(), tracker: tracker.New(), monitor: nil, machine: machine}
	state.tracker.Enter(helperScript.ID, 1)
	fn := e.buildImportCallable(state, helperScript)

	_, err = fn.Fn([]jsengine.Value{jsengine.NewObject()})
	require.NoError(t, err)
	assert.Equal(t, 0, state.tracker.Depth())
}
