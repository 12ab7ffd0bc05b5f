package notify

import (
	"errors"
	"strings"
	"testing"
)

// mockBackend records notifications instead of showing them.
type mockBackend struct {
	notifyFunc  func(title, message, iconPath string) error
	alertFunc   func(title, message, iconPath string) error
	notifyCalls []notifyCall
	alertCalls  []notifyCall
}

type notifyCall struct {
	title   string
	message string
}

func (m *mockBackend) Notify(title, message, iconPath string) error {
	m.notifyCalls = append(m.notifyCalls, notifyCall{title, message})
	if m.notifyFunc != nil {
		return m.notifyFunc(title, message, iconPath)
	}
	return nil
}

func (m *mockBackend) Alert(title, message, iconPath string) error {
	m.alertCalls = append(m.alertCalls, notifyCall{title, message})
	if m.alertFunc != nil {
		return m.alertFunc(title, message, iconPath)
	}
	return nil
}

func TestNotifyLogin(t *testing.T) {
	mock := &mockBackend{}
	n := New(true, WithBackend(mock))

	if err := n.NotifyLogin("blog", "admin"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(mock.notifyCalls) != 1 {
		t.Fatalf("expected 1 notify call, got %d", len(mock.notifyCalls))
	}

	call := mock.notifyCalls[0]
	if call.title != "mtcli: Logged In" {
		t.Errorf("unexpected title %q", call.title)
	}
	if call.message != "Logged in to 'blog' as admin." {
		t.Errorf("unexpected message %q", call.message)
	}
	if len(mock.alertCalls) != 0 {
		t.Errorf("expected no alert calls, got %d", len(mock.alertCalls))
	}
}

func TestNotifyTokenInvalidated(t *testing.T) {
	mock := &mockBackend{}
	n := New(true, WithBackend(mock))

	if err := n.NotifyTokenInvalidated("blog"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(mock.alertCalls) != 1 {
		t.Fatalf("expected 1 alert call, got %d", len(mock.alertCalls))
	}

	call := mock.alertCalls[0]
	if call.title != "mtcli: Session Expired" {
		t.Errorf("unexpected title %q", call.title)
	}
	if !strings.Contains(call.message, "'blog'") {
		t.Errorf("message should name the profile, got %q", call.message)
	}
}

func TestNotifyDisabled(t *testing.T) {
	mock := &mockBackend{}
	n := New(false, WithBackend(mock))

	if err := n.NotifyLogin("blog", "admin"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := n.NotifyTokenInvalidated("blog"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(mock.notifyCalls) != 0 || len(mock.alertCalls) != 0 {
		t.Errorf("expected no calls when disabled, got %d notify and %d alert",
			len(mock.notifyCalls), len(mock.alertCalls))
	}
}

func TestNotifyBackendError(t *testing.T) {
	expectedErr := errors.New("backend error")
	mock := &mockBackend{
		notifyFunc: func(title, message, iconPath string) error {
			return expectedErr
		},
		alertFunc: func(title, message, iconPath string) error {
			return expectedErr
		},
	}

	n := New(true, WithBackend(mock))

	if err := n.NotifyLogin("blog", "admin"); err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if err := n.NotifyTokenInvalidated("blog"); err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}
