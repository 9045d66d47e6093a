//go:build !windows

package servicemanager

import (
	"github.com/chetch/services/errors"
)

func isWindowsService() (bool, error) {
	return false, nil
}

func (sm *ServiceManager) runService() error {
	return errors.NewServiceUnavailableError("no service control manager on this platform")
}
