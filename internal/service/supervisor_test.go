package service

import (
	"context"
	"testing"
	"time"

	"levitt_bridge/internal/logger"
	"levitt_bridge/internal/models"
)

func TestSupervisor_NoCredentialsExitsImmediately(t *testing.T) {
	gw := &fakeGateway{}
	s := NewSupervisorService(gw, &fakeEventRepo{}, "", "", logger.Get(logger.ErrorLevel))

	done := make(chan struct{})
	go func() {
		s.Run(context.Background(), time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("supervisor did not exit without credentials")
	}
	if gw.logins() != 0 {
		t.Fatalf("login attempted without credentials: %d", gw.logins())
	}
}

func TestSupervisor_ReloginsWhenSessionLost(t *testing.T) {
	gw := &fakeGateway{loginOK: true}
	events := &fakeEventRepo{}
	s := NewSupervisorService(gw, events, "user", "pass", logger.Get(logger.ErrorLevel))

	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx, 5*time.Millisecond)

	deadline := time.After(time.Second)
	for gw.logins() == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("supervisor never attempted re-login")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if !gw.IsLoggedIn() {
		t.Fatal("gateway should be logged in after supervisor tick")
	}
	if got := events.appended(); len(got) == 0 || got[0].Type != models.EventLogin {
		t.Fatalf("re-login not audited: %+v", got)
	}
}

func TestSupervisor_IdleWhileLoggedIn(t *testing.T) {
	gw := &fakeGateway{loggedIn: true, loginOK: true}
	s := NewSupervisorService(gw, &fakeEventRepo{}, "user", "pass", logger.Get(logger.ErrorLevel))

	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx, 2*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	cancel()

	if gw.logins() != 0 {
		t.Fatalf("supervisor re-logged in over a live session: %d calls", gw.logins())
	}
}
