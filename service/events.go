package service

import (
	"context"
)

// Event ids attached to the lifecycle log entries.
const (
	EventError     = 0
	EventStarting  = 10
	EventExecuting = 100
	EventStopping  = 1000
)

type reporterKey struct{}

// ReportError logs err through the service running the unit that owns ctx, as an error entry
// with the given event id. It reports false when ctx does not belong to a running service.
func ReportError(ctx context.Context, err error, eventID int) bool {
	s, ok := ctx.Value(reporterKey{}).(*Service)
	if !ok {
		return false
	}

	s.OnError(err, eventID)

	return true
}

// ExecutionID returns the id of the run that owns ctx, or an empty string.
func ExecutionID(ctx context.Context) string {
	id, _ := ctx.Value(executionIDKey{}).(string)
	return id
}

type executionIDKey struct{}
