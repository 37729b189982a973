package daemon

import (
	sddaemon "github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"
)

// Notifier reports lifecycle changes to a service manager.
type Notifier func(state string) error

// systemdNotify sends state over $NOTIFY_SOCKET. Without a socket it does nothing.
func systemdNotify(logger *zap.Logger) Notifier {
	return func(state string) error {
		sent, err := sddaemon.SdNotify(false, state)
		if err != nil {
			return err
		}
		if sent {
			logger.Debug("Notified service manager", zap.String("state", state))
		}
		return nil
	}
}
