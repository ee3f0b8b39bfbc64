package validator

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(expr string) *regexp.Regexp {
	return regexp.MustCompile(expr)
}

const validSource = `
export const io = {
	inputs: { message: { kind: "text", default: "Hello" } },
	outputs: { result: { kind: "text" } }
}
export default async function (inputs, context) {
	return { result: inputs.message }
}
`

func TestValidateAcceptsWellFormedSource(t *testing.T) {
	res := New().Validate(validSource)
	assert.True(t, res.Valid, "errors: %v", res.Errors)
	assert.Empty(t, res.Errors)
}

func TestValidateRejectsEmptySource(t *testing.T) {
	res := New().Validate("")
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
}

func TestValidateRejectsMissingExports(t *testing.T) {
	res := New().Validate(`const x = 1`)
	assert.False(t, res.Valid)
	assert.GreaterOrEqual(t, len(res.Errors), 2)
}

func TestValidateRejectsEvalUsage(t *testing.T) {
	src := validSource + "\nconst sneaky = eval(\"1+1\")\n"
	res := New().Validate(src)
	assert.False(t, res.Valid)
}

func TestValidateIgnoresDangerousPatternInsideString(t *testing.T) {
	src := `
export const io = { inputs: {}, outputs: { result: { kind: "text" } } }
export default async function (inputs, context) {
	return { result: "please don't eval(this) in prose" }
}
`
	res := New().Validate(src)
	assert.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestValidateDetectsUnbalancedBraces(t *testing.T) {
	src := validSource + "\nfunction broken() { \n"
	res := New().Validate(src)
	assert.False(t, res.Valid)
}

func TestCustomDangerousPatternTable(t *testing.T) {
	v := New()
	v.AddDangerousPattern("banned word", mustCompile(`\bbanana\b`))
	res := v.Validate(validSource + "\nconst banana = 1\n")
	assert.False(t, res.Valid)

	v.RemoveDangerousPattern("banned word")
	res = v.Validate(validSource + "\nconst banana = 1\n")
	assert.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestValidateIOSchemaHandlesBraceInDefaultStringValue(t *testing.T) {
	src := `
export const io = {
	inputs: { template: { kind: "text", default: "closing } brace" } },
	outputs: { result: { kind: "text" } }
}
export default async function (inputs, context) {
	return { result: inputs.template }
}
`
	res := New().Validate(src)
	assert.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestValidateFlagsInvalidIOSchemaShape(t *testing.T) {
	src := `
export const io = { inputs: {}, outputs: { result: { kind: "not-a-real-kind" } } }
export default async function (inputs, context) {
	return {}
}
`
	res := New().Validate(src)
	assert.False(t, res.Valid)
}
