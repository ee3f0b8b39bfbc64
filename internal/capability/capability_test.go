package capability

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaygrid/scriptengine/internal/jsengine"
)

func TestNewBuildsLoggerCalculatorUtils(t *testing.T) {
	ctx, err := New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	require.NoError(t, err)

	_, ok := ctx.Object.Get("logger")
	assert.True(t, ok)
	_, ok = ctx.Object.Get("calculator")
	assert.True(t, ok)
	_, ok = ctx.Object.Get("utils")
	assert.True(t, ok)
}

func TestCalculatorEnhanceAndSum(t *testing.T) {
	ctx, err := New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	require.NoError(t, err)

	calcVal, _ := ctx.Object.Get("calculator")
	calc := calcVal.(*jsengine.Object)

	enhanceVal, _ := calc.Get("enhance")
	enhance := enhanceVal.(*jsengine.NativeFunction)
	result, err := enhance.Fn([]jsengine.Value{float64(10)})
	require.NoError(t, err)
	assert.InDelta(t, 11.0, result.(float64), 0.0001)

	sumVal, _ := calc.Get("sum")
	sum := sumVal.(*jsengine.NativeFunction)
	result, err = sum.Fn([]jsengine.Value{float64(1), float64(2), float64(3)})
	require.NoError(t, err)
	assert.Equal(t, float64(6), result)
}

func TestUtilsCapitaliseFirstAndFormatToDecimals(t *testing.T) {
	ctx, err := New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	require.NoError(t, err)

	utilsVal, _ := ctx.Object.Get("utils")
	utils := utilsVal.(*jsengine.Object)

	capVal, _ := utils.Get("capitaliseFirst")
	capitalise := capVal.(*jsengine.NativeFunction)
	result, err := capitalise.Fn([]jsengine.Value{"hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", result)

	fmtVal, _ := utils.Get("formatToDecimals")
	format := fmtVal.(*jsengine.NativeFunction)
	result, err = format.Fn([]jsengine.Value{float64(3.14159), float64(2)})
	require.NoError(t, err)
	assert.InDelta(t, 3.14, result.(float64), 0.0001)
}

func TestLoggerSeverityMarkerPrefix(t *testing.T) {
	var buf bytes.Buffer
	ctx, err := New(slog.NewTextHandler(&buf, nil))
	require.NoError(t, err)

	loggerVal, _ := ctx.Object.Get("logger")
	logger := loggerVal.(*jsengine.Object)
	warnVal, _ := logger.Get("warn")
	warn := warnVal.(*jsengine.NativeFunction)

	_, err = warn.Fn([]jsengine.Value{"disk low"})
	require.NoError(t, err)

	require.NoError(t, ctx.PlaybackLogs(slog.NewTextHandler(&buf, nil)))
	assert.Contains(t, buf.String(), "[WARN] disk low")
}

func TestCollectLogsReturnsRecordsInOrder(t *testing.T) {
	ctx, err := New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	require.NoError(t, err)

	loggerVal, _ := ctx.Object.Get("logger")
	logger := loggerVal.(*jsengine.Object)
	infoVal, _ := logger.Get("info")
	info := infoVal.(*jsengine.NativeFunction)
	errVal, _ := logger.Get("error")
	errFn := errVal.(*jsengine.NativeFunction)

	_, err = info.Fn([]jsengine.Value{"starting up"})
	require.NoError(t, err)
	_, err = errFn.Fn([]jsengine.Value{"disk full"})
	require.NoError(t, err)

	records := ctx.CollectLogs()
	require.Len(t, records, 2)
	assert.Contains(t, records[0].Message, "starting up")
	assert.Contains(t, records[1].Message, "disk full")
}

func TestMergeOverridesBaseKeys(t *testing.T) {
	ctx, err := New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	require.NoError(t, err)

	ctx.Merge(map[string]jsengine.Value{
		"calculator": "overridden",
		"database":   "injected",
	})

	calc, _ := ctx.Object.Get("calculator")
	assert.Equal(t, "overridden", calc)
	db, ok := ctx.Object.Get("database")
	assert.True(t, ok)
	assert.Equal(t, "injected", db)
}
