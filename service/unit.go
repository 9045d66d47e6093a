package service

import (
	"context"

	"github.com/chetch/services/errors"
)

// Unit is the work a Service runs once per start. Execute must return when ctx is cancelled;
// returning the context error (or any ERR_CONTEXT_CANCELED error) marks the run as cancelled.
type Unit interface {
	Execute(ctx context.Context) error
}

// UnitFunc adapts a function to a Unit.
type UnitFunc func(ctx context.Context) error

func (f UnitFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

type OutcomeKind int

const (
	Completed OutcomeKind = iota
	Cancelled
	Faulted
)

func (k OutcomeKind) String() string {
	switch k {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Outcome is how a run of a Unit ended. Err is set for Cancelled and Faulted outcomes.
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

// OutcomeOf classifies the error returned by a Unit.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Kind: Completed}
	case errors.IsCancellation(err):
		return Outcome{Kind: Cancelled, Err: err}
	default:
		return Outcome{Kind: Faulted, Err: err}
	}
}
