package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pingSource = `
export const io = {
	inputs: { name: { kind: "text", default: "world" } },
	outputs: { greeting: { kind: "text" } }
}
export default async function (inputs, context) {
	return { greeting: "hello " + inputs.name }
}
`

func newTestEngine(t *testing.T, source string, cfg Config) *Engine {
	e := New(Literal(source), cfg)
	require.NoError(t, e.WaitForInitialization())
	return e
}

func TestRunPlanLoadsMainScriptWithNoDeps(t *testing.T) {
	e := newTestEngine(t, pingSource, Config{})
	deps, err := e.GetDependencies()
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestRunPlanFailsOnShapeViolation(t *testing.T) {
	e := New(Literal(`const x = 1`), Config{})
	err := e.WaitForInitialization()
	require.Error(t, err)
}

func TestRunPlanDiscoversDeclaredDependency(t *testing.T) {
	mainSrc := `
export const io = { inputs: {}, outputs: { result: { kind: "text" } } }
export default async function (inputs, context) {
	const helper = await context.importScript("helper")
	return await helper({})
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
	deps, err := e.GetDependencies()
	require.NoError(t, err)
	assert.Equal(t, []string{"helper"}, deps)
}

func TestLoadOneReusesCacheEntryOnMatchingHash(t *testing.T) {
	e := newTestEngine(t, pingSource, Config{})
	stats := e.GetCacheStats()
	assert.Equal(t, 1, stats.Count)

	ctx := context.Background()
	script, err := e.loadOne(ctx, queueItem{id: mainScriptID, text: pingSource})
	require.NoError(t, err)
	assert.Equal(t, "main", script.ID)
	assert.Equal(t, 1, e.GetCacheStats().Count)
}

func TestLoadOneFailsWithoutRegistryForDependency(t *testing.T) {
	e := newTestEngine(t, pingSource, Config{})
	_, err := e.loadOne(context.Background(), queueItem{id: "missing"})
	require.Error(t, err)
}

// stubRegistry resolves from a fixed map, recording resolution counts.
type stubRegistry struct {
	scripts map[string]string
	calls   map[string]int
}

func newStubRegistry(scripts map[string]string) *stubRegistry {
	return &stubRegistry{scripts: scripts, calls: map[string]int{}}
}

func (r *stubRegistry) Resolve(ctx context.Context, id string) (string, error) {
	r.calls[id]++
	src, ok := r.scripts[id]
	if !ok {
		return "", assert.AnError
	}
	return src, nil
}
