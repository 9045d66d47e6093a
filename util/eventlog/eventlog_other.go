//go:build !windows

package eventlog

import (
	"github.com/chetch/services/errors"
)

func Open(source, _ string) (*Sink, error) {
	return nil, errors.NewServiceUnavailableError("no event log on this platform for source %s", source)
}
