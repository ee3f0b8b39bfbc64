// Package finitestate tracks the lifecycle of a single engine call as it
// moves from validation through execution, including the nested states
// entered while an importScript call is in flight.
package finitestate

import (
	"context"
	"log/slog"
	"time"

	fsm "github.com/robbyt/go-fsm"
)

// Call states, matching the lifecycle a single top-level engine call
// moves through: Idle before anything runs, Validating while inputs are
// checked against the IO schema, Running while the entry function
// executes, ImportGuarded while an importScript guard check is in
// progress, NestedRunning while a nested imported script's own entry
// function executes, and Done or Failed as the two terminal states.
const (
	StateIdle          = "idle"
	StateValidating    = "validating"
	StateRunning       = "running"
	StateImportGuarded = "import_guarded"
	StateNestedRunning = "nested_running"
	StateDone          = "done"
	StateFailed        = "failed"
)

// Transitions defines the valid moves between call states.
var Transitions = map[string][]string{
	StateIdle:          {StateValidating, StateFailed},
	StateValidating:    {StateRunning, StateFailed},
	StateRunning:       {StateImportGuarded, StateNestedRunning, StateDone, StateFailed},
	StateImportGuarded: {StateNestedRunning, StateRunning, StateFailed},
	StateNestedRunning: {StateImportGuarded, StateRunning, StateFailed},
	StateDone:          {},
	StateFailed:        {},
}

// SubscriberOption configures GetStateChanWithOptions.
type SubscriberOption = fsm.SubscriberOption

// WithSyncTimeout sets a timeout for synchronous broadcast operations.
var WithSyncTimeout = fsm.WithSyncTimeout

// Machine is the per-call state machine interface. It mirrors
// *fsm.Machine's surface so tests can substitute a fake.
type Machine interface {
	Transition(state string) error
	TransitionBool(state string) bool
	TransitionIfCurrentState(currentState, newState string) error
	SetState(state string) error
	GetState() string
	GetStateChan(ctx context.Context) <-chan string
	GetStateChanWithOptions(ctx context.Context, opts ...SubscriberOption) <-chan string
}

// CallFSM embeds fsm.Machine and overrides GetStateChan for a
// synchronous broadcast with a bounded timeout, matching the server
// FSM's convention.
type CallFSM struct {
	*fsm.Machine
}

func (m *CallFSM) GetStateChan(ctx context.Context) <-chan string {
	return m.GetStateChanWithOptions(ctx, WithSyncTimeout(5*time.Second))
}

// New creates a fresh call state machine in StateIdle.
func New(handler slog.Handler) (Machine, error) {
	machine, err := fsm.New(handler, StateIdle, Transitions)
	if err != nil {
		return nil, err
	}
	return &CallFSM{Machine: machine}, nil
}
