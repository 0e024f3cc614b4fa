package service

import (
	"context"
	"time"

	"levitt_bridge/internal/logger"
	"levitt_bridge/internal/models"
	"levitt_bridge/internal/repository"
)

// SupervisorService keeps the single gateway session alive. The house
// network drops sessions without notice; rather than failing every request
// until someone intervenes, the supervisor re-runs the login handshake on a
// timer whenever the session is gone.
type SupervisorService struct {
	gw       GatewayClient
	events   repository.EventRepo
	username string
	password string
	log      *logger.Logger
}

func NewSupervisorService(gw GatewayClient, events repository.EventRepo, username, password string, log *logger.Logger) *SupervisorService {
	return &SupervisorService{
		gw:       gw,
		events:   events,
		username: username,
		password: password,
		log:      log,
	}
}

// Run ticks at the given interval until ctx is canceled. With no configured
// credentials it exits immediately; logins then happen only through the API.
func (s *SupervisorService) Run(ctx context.Context, tick time.Duration) {
	if s.username == "" {
		s.log.Infow("session_supervisor_disabled", "reason", "no gateway credentials configured")
		return
	}

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if s.gw.IsLoggedIn() {
				continue
			}
			s.log.Infow("gateway_session_lost_relogin")
			ok := s.gw.Login(ctx, s.username, s.password)
			if err := s.events.Append(ctx, models.CommandEvent{
				Type:        models.EventLogin,
				Description: "supervisor re-login",
				Metadata:    map[string]any{"ok": ok},
			}); err != nil {
				s.log.Warnw("audit_append_failed", "type", models.EventLogin, "err", err)
			}
			if !ok {
				s.log.Warnw("gateway_relogin_failed")
			}
		}
	}
}
