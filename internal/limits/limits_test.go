package limits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/relaygrid/scriptengine/internal/errz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithTimeoutReturnsValueWhenFast(t *testing.T) {
	out, err := RunWithTimeout(context.Background(), 50*time.Millisecond, func(ctx context.Context) (string, error) {
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
}

func TestRunWithTimeoutFiresOnSlowProducer(t *testing.T) {
	_, err := RunWithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) (string, error) {
		select {
		case <-time.After(200 * time.Millisecond):
			return "too late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errz.ErrResource))
}

func TestRunWithTimeoutZeroAlwaysFails(t *testing.T) {
	_, err := RunWithTimeout(context.Background(), 0, func(ctx context.Context) (string, error) {
		return "never", nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errz.ErrTimeout))
}

func TestCheckRecursionAndImportsBoundary(t *testing.T) {
	l := New(time.Second, 0, 0, 1024)
	assert.Error(t, l.CheckRecursion(0))
	assert.Error(t, l.CheckImports(0))
}

func TestUpdateLimitsPartial(t *testing.T) {
	l := Defaults()
	newTimeout := 5 * time.Second
	l.UpdateLimits(Partial{Timeout: &newTimeout})
	assert.Equal(t, newTimeout, l.Timeout())
	assert.Equal(t, 10, l.MaxRecursionDepth())
}
