//go:build windows

package eventlog

import (
	"github.com/chetch/services/errors"
	wineventlog "golang.org/x/sys/windows/svc/eventlog"
)

// Open registers source with the event log if needed and returns a sink filtering at level.
// Registration needs administrative rights; when it fails the source is assumed to exist.
func Open(source, level string) (*Sink, error) {
	_ = wineventlog.InstallAsEventCreate(source, wineventlog.Error|wineventlog.Warning|wineventlog.Info)

	evtLog, err := wineventlog.Open(source)
	if err != nil {
		return nil, errors.NewServiceUnavailableError("failed to open Windows eventlog source %s", source, err)
	}

	return NewSink(evtLog, level), nil
}
