package fancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/relaygrid/scriptengine/internal/params"
	"github.com/relaygrid/scriptengine/internal/validator"
)

func TestRenderValidationShowsPassingStatus(t *testing.T) {
	out := RenderValidation("script.js", validator.Result{Valid: true})
	assert.Contains(t, out, "script.js is valid")
}

func TestRenderValidationShowsErrorsAndWarnings(t *testing.T) {
	result := validator.Result{
		Valid:    false,
		Errors:   []error{assertError("missing io export")},
		Warnings: []string{"nesting depth 12 exceeds 10"},
	}
	out := RenderValidation("script.js", result)
	assert.Contains(t, out, "script.js failed validation")
	assert.Contains(t, out, "missing io export")
	assert.Contains(t, out, "nesting depth 12 exceeds 10")
}

func TestRenderIOSchemaListsInputsAndOutputs(t *testing.T) {
	io := params.IOSchema{
		Inputs:  params.Schema{"name": {Kind: params.KindText, Default: "world"}},
		Outputs: params.Schema{"greeting": {Kind: params.KindText}},
	}
	out := RenderIOSchema(io)
	assert.Contains(t, out, "inputs")
	assert.Contains(t, out, "outputs")
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "greeting")
}

func TestRenderBenchmarkShowsTimingStats(t *testing.T) {
	out := RenderBenchmark(10, 1, 100*time.Millisecond, 5*time.Millisecond, 20*time.Millisecond, 10*time.Millisecond)
	assert.Contains(t, out, "10 iterations")
	assert.Contains(t, out, "1 iterations errored")
}

type simpleError string

func (e simpleError) Error() string { return string(e) }

func assertError(msg string) error { return simpleError(msg) }
