// Package capability builds the base context object every script call
// receives: a Logger backed by a buffered log collector, a small
// Calculator, and a Utils bundle. Injected providers from engine
// configuration are shallow-merged over this base by the caller.
package capability

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-loglater"

	"github.com/relaygrid/scriptengine/internal/jsengine"
)

// Context bundles the context object handed to a script's entry function
// with the bookkeeping needed to replay its logs afterward.
type Context struct {
	ID           uuid.UUID
	Object       *jsengine.Object
	logger       *slog.Logger
	logCollector *loglater.LogCollector
}

// New builds a fresh base context: a unique call id, a Logger wired to a
// log collector so its lines can be replayed after the call completes
// (mirroring ConfigTransaction's buffered-logger construction), a
// Calculator, and a Utils bundle.
func New(handler slog.Handler) (*Context, error) {
	id, err := uuid.NewV6()
	if err != nil {
		return nil, fmt.Errorf("capability: failed to mint call id: %w", err)
	}

	collector := loglater.NewLogCollector(handler)
	logger := slog.New(collector).With("callID", id)

	obj := jsengine.NewObject()
	obj.Set("logger", newLoggerObject(logger))
	obj.Set("calculator", newCalculatorObject())
	obj.Set("utils", newUtilsObject())

	return &Context{ID: id, Object: obj, logger: logger, logCollector: collector}, nil
}

// PlaybackLogs replays every buffered log line into handler, in the order
// they were recorded.
func (c *Context) PlaybackLogs(handler slog.Handler) error {
	return c.logCollector.PlayLogs(handler)
}

// Record is a single replayed log line, shaped for callers that want the
// buffered context-logger output as data rather than streamed live.
type Record struct {
	Time    time.Time
	Level   string
	Message string
	Attrs   map[string]any
}

// CollectLogs replays the call's buffered log lines into a slice of
// Records, in the order they were recorded.
func (c *Context) CollectLogs() []Record {
	var records []Record
	_ = c.logCollector.PlayLogs(&recordingHandler{records: &records})
	return records
}

// recordingHandler is a slog.Handler that appends every record it sees to
// a slice, used to turn a replayed log collector into plain data.
type recordingHandler struct {
	records *[]Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	*h.records = append(*h.records, Record{Time: r.Time, Level: r.Level.String(), Message: r.Message, Attrs: attrs})
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

// Merge shallow-merges providers over the base context object; providers
// may override base keys (logger, calculator, utils) as well as add new
// ones.
func (c *Context) Merge(providers map[string]jsengine.Value) {
	for k, v := range providers {
		c.Object.Set(k, v)
	}
}

func newLoggerObject(logger *slog.Logger) *jsengine.Object {
	obj := jsengine.NewObject()
	obj.Set("info", severitySink(logger, "INFO", logger.Info))
	obj.Set("success", severitySink(logger, "SUCCESS", logger.Info))
	obj.Set("warn", severitySink(logger, "WARN", logger.Warn))
	obj.Set("error", severitySink(logger, "ERROR", logger.Error))
	return obj
}

// severitySink wraps a slog sink method as a native script function that
// logs a plain-text message prefixed with marker, e.g. "[WARN] disk low".
func severitySink(logger *slog.Logger, marker string, sink func(msg string, args ...any)) *jsengine.NativeFunction {
	return &jsengine.NativeFunction{
		Name: "log." + marker,
		Fn: func(args []jsengine.Value) (jsengine.Value, error) {
			text := formatArgs(args)
			sink(fmt.Sprintf("[%s] %s", marker, text))
			return jsengine.UndefinedValue, nil
		},
	}
}

func formatArgs(args []jsengine.Value) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += " "
		}
		s += jsengine.FormatValue(a)
	}
	return s
}

func newCalculatorObject() *jsengine.Object {
	obj := jsengine.NewObject()
	obj.Set("enhance", nativeFn("enhance", func(args []jsengine.Value) (jsengine.Value, error) {
		return mustFloat(args, 0) * 1.1, nil
	}))
	obj.Set("sum", nativeFn("sum", func(args []jsengine.Value) (jsengine.Value, error) {
		var total float64
		for _, a := range args {
			total += asFloatOrZero(a)
		}
		return total, nil
	}))
	obj.Set("average", nativeFn("average", func(args []jsengine.Value) (jsengine.Value, error) {
		if len(args) == 0 {
			return float64(0), nil
		}
		var total float64
		for _, a := range args {
			total += asFloatOrZero(a)
		}
		return total / float64(len(args)), nil
	}))
	obj.Set("product", nativeFn("product", func(args []jsengine.Value) (jsengine.Value, error) {
		total := float64(1)
		for _, a := range args {
			total *= asFloatOrZero(a)
		}
		return total, nil
	}))
	return obj
}

func newUtilsObject() *jsengine.Object {
	obj := jsengine.NewObject()
	obj.Set("formatToDecimals", nativeFn("formatToDecimals", func(args []jsengine.Value) (jsengine.Value, error) {
		v := mustFloat(args, 0)
		places := int(mustFloat(args, 1))
		pow := math.Pow(10, float64(places))
		return math.Round(v*pow) / pow, nil
	}))
	obj.Set("capitaliseFirst", nativeFn("capitaliseFirst", func(args []jsengine.Value) (jsengine.Value, error) {
		s, _ := stringArg(args, 0)
		if s == "" {
			return s, nil
		}
		return strings.ToUpper(s[:1]) + s[1:], nil
	}))
	obj.Set("delay", nativeFn("delay", func(args []jsengine.Value) (jsengine.Value, error) {
		ms := mustFloat(args, 0)
		if ms > 0 {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		}
		return jsengine.ResolvedPromise(jsengine.UndefinedValue), nil
	}))
	obj.Set("randomInt", nativeFn("randomInt", func(args []jsengine.Value) (jsengine.Value, error) {
		min := int(mustFloat(args, 0))
		max := int(mustFloat(args, 1))
		if max < min {
			min, max = max, min
		}
		return float64(min + rand.Intn(max-min+1)), nil
	}))
	obj.Set("shuffle", nativeFn("shuffle", func(args []jsengine.Value) (jsengine.Value, error) {
		src := arrayArg(args, 0)
		if src == nil {
			return jsengine.NewArray(), nil
		}
		out := make([]jsengine.Value, len(src.Items))
		copy(out, src.Items)
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return &jsengine.Array{Items: out}, nil
	}))
	obj.Set("choice", nativeFn("choice", func(args []jsengine.Value) (jsengine.Value, error) {
		src := arrayArg(args, 0)
		if src == nil || len(src.Items) == 0 {
			return jsengine.UndefinedValue, nil
		}
		return src.Items[rand.Intn(len(src.Items))], nil
	}))
	return obj
}

func nativeFn(name string, fn func(args []jsengine.Value) (jsengine.Value, error)) *jsengine.NativeFunction {
	return &jsengine.NativeFunction{Name: name, Fn: fn}
}

func mustFloat(args []jsengine.Value, i int) float64 {
	if i >= len(args) {
		return 0
	}
	return asFloatOrZero(args[i])
}

func asFloatOrZero(v jsengine.Value) float64 {
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return f
}

func stringArg(args []jsengine.Value, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	s, ok := args[i].(string)
	return s, ok
}

func arrayArg(args []jsengine.Value, i int) *jsengine.Array {
	if i >= len(args) {
		return nil
	}
	arr, _ := args[i].(*jsengine.Array)
	return arr
}

