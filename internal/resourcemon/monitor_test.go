package resourcemon

import (
	"errors"
	"testing"
	"time"

	"github.com/relaygrid/scriptengine/internal/errz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckNeverErrorsWhenUnderLimit(t *testing.T) {
	m := New(Config{MaxMemory: 1 << 40, CheckIntervalMs: 10}, nil)
	require.NoError(t, m.Check())
	stats := m.Stats()
	assert.Equal(t, 1, stats.SamplesTaken)
}

func TestCheckFailsWhenOverLimit(t *testing.T) {
	m := New(Config{MaxMemory: 1, CheckIntervalMs: 10}, nil)
	err := m.Check()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errz.ErrResource))
}

func TestStartStopIsSafeToCallTwice(t *testing.T) {
	m := New(Config{MaxMemory: 1 << 40, CheckIntervalMs: 5}, nil)
	m.Start()
	time.Sleep(20 * time.Millisecond)
	m.Stop()
	m.Stop()
	assert.GreaterOrEqual(t, m.Stats().SamplesTaken, 1)
}
