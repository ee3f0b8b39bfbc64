package finitestate

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) Machine {
	t.Helper()
	handler := slog.NewTextHandler(os.Stdout, nil)
	machine, err := New(handler)
	require.NoError(t, err)
	return machine
}

func TestNewStartsIdle(t *testing.T) {
	machine := setup(t)
	assert.Equal(t, StateIdle, machine.GetState())
}

func TestHappyPathTransitions(t *testing.T) {
	machine := setup(t)

	for _, state := range []string{StateValidating, StateRunning, StateDone} {
		require.NoError(t, machine.Transition(state))
		assert.Equal(t, state, machine.GetState())
	}
}

func TestImportGuardedNestedRunFlow(t *testing.T) {
	machine := setup(t)

	require.NoError(t, machine.Transition(StateValidating))
	require.NoError(t, machine.Transition(StateRunning))
	require.NoError(t, machine.Transition(StateImportGuarded))
	require.NoError(t, machine.Transition(StateNestedRunning))
	require.NoError(t, machine.Transition(StateRunning))
	require.NoError(t, machine.Transition(StateDone))
	assert.Equal(t, StateDone, machine.GetState())
}

func TestNestedImportWithinNestedImport(t *testing.T) {
	machine := setup(t)

	require.NoError(t, machine.Transition(StateValidating))
	require.NoError(t, machine.Transition(StateRunning))
	require.NoError(t, machine.Transition(StateImportGuarded))
	require.NoError(t, machine.Transition(StateNestedRunning))
	require.NoError(t, machine.Transition(StateImportGuarded))
	require.NoError(t, machine.Transition(StateNestedRunning))
	require.NoError(t, machine.Transition(StateRunning))
	require.NoError(t, machine.Transition(StateDone))
	assert.Equal(t, StateDone, machine.GetState())
}

func TestFailureFromAnyNonTerminalState(t *testing.T) {
	machine := setup(t)
	require.NoError(t, machine.Transition(StateValidating))
	require.NoError(t, machine.Transition(StateRunning))
	require.NoError(t, machine.Transition(StateFailed))
	assert.Equal(t, StateFailed, machine.GetState())
}

func TestPreventsInvalidTransition(t *testing.T) {
	machine := setup(t)
	err := machine.Transition(StateDone)
	require.Error(t, err)
	assert.Equal(t, StateIdle, machine.GetState())
}

func TestTerminalStatesHaveNoTransitions(t *testing.T) {
	for _, state := range []string{StateDone, StateFailed} {
		assert.Empty(t, Transitions[state], "state %s should be terminal", state)
	}
}
