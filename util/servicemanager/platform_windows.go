//go:build windows

package servicemanager

import (
	"github.com/chetch/services/errors"
	"golang.org/x/sys/windows/svc"
)

func isWindowsService() (bool, error) {
	return svc.IsWindowsService()
}

type windowsService struct {
	sm  *ServiceManager
	err error
}

func (w *windowsService) Execute(_ []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (bool, uint32) {
	const cmdsAccepted = svc.AcceptStop | svc.AcceptShutdown

	changes <- svc.Status{State: svc.StartPending}

	if err := w.sm.Start(w.sm.ctx); err != nil {
		w.err = err
		return true, 1
	}

	changes <- svc.Status{State: svc.Running, Accepts: cmdsAccepted}

loop:
	for {
		select {
		case c := <-r:
			switch c.Cmd {
			case svc.Interrogate:
				changes <- c.CurrentStatus
			case svc.Stop, svc.Shutdown:
				w.sm.logger.Infof("🟠 Received stop request from the service control manager. Stopping services...")
				break loop
			default:
				w.sm.logger.Warnf("unexpected service control request #%d", c.Cmd)
			}
		case <-w.sm.lifetime.StopRequested():
			w.sm.logger.Infof("🟠 Application stop requested. Stopping services...")
			break loop
		case <-w.sm.ctx.Done():
			break loop
		}
	}

	changes <- svc.Status{State: svc.StopPending}

	if w.err = w.sm.shutdown(); w.err != nil {
		return true, 2
	}

	changes <- svc.Status{State: svc.Stopped}

	return false, 0
}

func (sm *ServiceManager) runService() error {
	w := &windowsService{sm: sm}

	if err := svc.Run(sm.identity.ServiceName, w); err != nil {
		return errors.NewServiceError("[%s] service control manager run failed", sm.identity.ServiceName, err)
	}

	return w.err
}
