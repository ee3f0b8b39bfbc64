// Package fancy renders validation results, IO schemas, and benchmark
// summaries as styled CLI output.
package fancy

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/relaygrid/scriptengine/internal/params"
	"github.com/relaygrid/scriptengine/internal/validator"
)

var (
	ColorGreen    = lipgloss.Color("82")
	ColorRed      = lipgloss.Color("196")
	ColorYellow   = lipgloss.Color("228")
	ColorCyan     = lipgloss.Color("45")
	ColorGray     = lipgloss.Color("250")
	ColorDarkGray = lipgloss.Color("240")
	ColorWhite    = lipgloss.Color("15")
)

var (
	HeaderStyle  = lipgloss.NewStyle().Foreground(ColorWhite).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)
	BranchStyle  = lipgloss.NewStyle().Foreground(ColorDarkGray)
	ValidStyle   = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorRed)
	WarnStyle    = lipgloss.NewStyle().Foreground(ColorYellow)
	CountStyle   = lipgloss.NewStyle().Foreground(ColorCyan)
	ParamStyle   = lipgloss.NewStyle().Foreground(ColorCyan)
)

// ValidText styles a pass/fail summary line.
func ValidText(text string) string { return ValidStyle.Render(text) }

// ErrorText styles an individual validation error.
func ErrorText(text string) string { return ErrorStyle.Render(text) }

// WarnText styles a structural warning.
func WarnText(text string) string { return WarnStyle.Render(text) }

// PathText styles a file path.
func PathText(text string) string { return InfoStyle.Render(text) }

func newTree() *tree.Tree {
	t := tree.New()
	t.EnumeratorStyle(BranchStyle)
	t.Enumerator(tree.RoundedEnumerator)
	return t
}

// RenderValidation renders a validator.Result as a styled tree rooted at
// path: a pass/fail line, then every error and warning as a child branch.
func RenderValidation(path string, result validator.Result) string {
	status := ValidText(fmt.Sprintf("%s is valid", path))
	if !result.Valid {
		status = ErrorText(fmt.Sprintf("%s failed validation", path))
	}
	t := newTree().Root(status)
	for _, err := range result.Errors {
		t.Child(ErrorText(err.Error()))
	}
	for _, warning := range result.Warnings {
		t.Child(WarnText(warning))
	}
	return t.String()
}

// RenderIOSchema renders an IOSchema's inputs and outputs as a styled
// tree, one branch per side and one leaf per parameter.
func RenderIOSchema(io params.IOSchema) string {
	t := newTree().Root(HeaderStyle.Render("io"))
	t.Child(renderSide("inputs", io.Inputs))
	t.Child(renderSide("outputs", io.Outputs))
	return t.String()
}

func renderSide(title string, schema params.Schema) *tree.Tree {
	t := newTree().Root(
		lipgloss.JoinHorizontal(lipgloss.Top, HeaderStyle.Render(title), " ", InfoStyle.Render(fmt.Sprintf("(%d)", len(schema)))),
	)
	for name, def := range schema {
		line := fmt.Sprintf("%s: %s", ParamStyle.Render(name), string(def.Kind))
		if def.Default != nil {
			line += fmt.Sprintf(" = %v", def.Default)
		}
		t.Child(line)
	}
	return t
}

// RenderBenchmark renders a benchmark's iteration count and timing
// statistics as a styled tree.
func RenderBenchmark(iterations, errors int, total, min, max, average time.Duration) string {
	t := newTree().Root(HeaderStyle.Render(fmt.Sprintf("%d iterations", iterations)))
	t.Child(fmt.Sprintf("total: %s", CountStyle.Render(total.String())))
	t.Child(fmt.Sprintf("min: %s", CountStyle.Render(min.String())))
	t.Child(fmt.Sprintf("max: %s", CountStyle.Render(max.String())))
	t.Child(fmt.Sprintf("average: %s", CountStyle.Render(average.String())))
	if errors > 0 {
		t.Child(ErrorText(fmt.Sprintf("%d iterations errored", errors)))
	}
	return t.String()
}
