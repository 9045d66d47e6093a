package service

import (
	"context"

	"github.com/looplab/fsm"
)

const (
	StateCreated   = "Created"
	StateStarting  = "Starting"
	StateExecuting = "Executing"
	StateCompleted = "Completed"
	StateCancelled = "Cancelled"
	StateFaulted   = "Faulted"
	StateStopping  = "Stopping"
	StateStopped   = "Stopped"
)

const (
	fsmEventStart    = "Start"
	fsmEventExecute  = "Execute"
	fsmEventComplete = "Complete"
	fsmEventCancel   = "Cancel"
	fsmEventFault    = "Fault"
	fsmEventStop     = "Stop"
	fsmEventStopped  = "Stopped"
)

// NewFiniteStateMachine creates the lifecycle state machine of a service:
// Created -> Starting -> Executing -> Completed | Cancelled | Faulted -> Stopping -> Stopped.
// Stop is accepted from every state before Stopping, so a service that never ran can be stopped.
func (s *Service) NewFiniteStateMachine(opts ...func(*fsm.FSM)) *fsm.FSM {
	finiteStateMachine := fsm.NewFSM(
		StateCreated,
		fsm.Events{
			{
				Name: fsmEventStart,
				Src:  []string{StateCreated},
				Dst:  StateStarting,
			},
			{
				Name: fsmEventExecute,
				Src:  []string{StateStarting},
				Dst:  StateExecuting,
			},
			{
				Name: fsmEventComplete,
				Src:  []string{StateExecuting},
				Dst:  StateCompleted,
			},
			{
				Name: fsmEventCancel,
				Src:  []string{StateExecuting},
				Dst:  StateCancelled,
			},
			{
				Name: fsmEventFault,
				Src:  []string{StateExecuting},
				Dst:  StateFaulted,
			},
			{
				Name: fsmEventStop,
				Src: []string{
					StateCreated,
					StateStarting,
					StateExecuting,
					StateCompleted,
					StateCancelled,
					StateFaulted,
				},
				Dst: StateStopping,
			},
			{
				Name: fsmEventStopped,
				Src:  []string{StateStopping},
				Dst:  StateStopped,
			},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.logger.Debugf("[%s] state %s -> %s", s.name, e.Src, e.Dst)
			},
		},
	)

	// apply options
	for _, opt := range opts {
		opt(finiteStateMachine)
	}

	return finiteStateMachine
}
