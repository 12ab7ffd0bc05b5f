// Package notify sends desktop notifications about session changes.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// Notifier defines the interface for sending desktop notifications.
type Notifier interface {
	// NotifyLogin reports a successful login.
	NotifyLogin(profile, username string) error
	// NotifyTokenInvalidated reports that the server rejected a stored token.
	NotifyTokenInvalidated(profile string) error
}

// Backend delivers notifications. Session expiry is sent as an alert,
// everything else as a plain notification.
type Backend interface {
	Notify(title, message, iconPath string) error
	Alert(title, message, iconPath string) error
}

// beeepBackend shows notifications on the desktop.
type beeepBackend struct{}

func (beeepBackend) Notify(title, message, iconPath string) error {
	return beeep.Notify(title, message, iconPath)
}

func (beeepBackend) Alert(title, message, iconPath string) error {
	return beeep.Alert(title, message, iconPath)
}

// Option configures a Notifier.
type Option func(*notifier)

// WithBackend sets a custom notification backend (for testing).
func WithBackend(backend Backend) Option {
	return func(n *notifier) {
		n.backend = backend
	}
}

// notifier sends desktop notifications using the system notification service.
type notifier struct {
	enabled bool
	backend Backend
}

// NotifyLogin sends a notification about a successful login.
func (n *notifier) NotifyLogin(profile, username string) error {
	if !n.enabled {
		return nil
	}

	title := "mtcli: Logged In"
	message := fmt.Sprintf("Logged in to '%s' as %s.", profile, username)

	return n.backend.Notify(title, message, "")
}

// NotifyTokenInvalidated sends an alert about a rejected access token.
func (n *notifier) NotifyTokenInvalidated(profile string) error {
	if !n.enabled {
		return nil
	}

	title := "mtcli: Session Expired"
	message := fmt.Sprintf("The access token for '%s' was rejected and removed.\nRun 'mtcli login' again.", profile)

	return n.backend.Alert(title, message, "")
}

// New creates a Notifier. A disabled notifier never calls the backend.
func New(enabled bool, opts ...Option) Notifier {
	n := &notifier{
		enabled: enabled,
		backend: beeepBackend{},
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}
