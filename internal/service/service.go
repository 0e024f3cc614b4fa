package service

import (
	"context"
	"time"

	"levitt_bridge/internal/logger"
	"levitt_bridge/internal/models"
	"levitt_bridge/internal/repository"
)

// GatewayClient is the session-holding protocol client the services drive.
// Implemented by gateway.Client; faked in tests.
type GatewayClient interface {
	Login(ctx context.Context, username, password string) bool
	Logout(ctx context.Context)
	IsLoggedIn() bool
	GetRooms(ctx context.Context) ([]models.Room, error)
	SetAirConditioning(ctx context.Context, roomID int, on bool) (bool, error)
	SetHouseBlinds(ctx context.Context, command string) (bool, error)
	SetTargetTemperature(ctx context.Context, roomID int, temperature float64) (bool, error)
	SetBlindPosition(ctx context.Context, roomID int, position models.BlindPosition) (bool, error)
}

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Automation exposes room-shaped read/write operations against the house.
type Automation interface {
	Table() models.RoomTable
	Rooms(ctx context.Context) ([]models.Room, error)
	Room(ctx context.Context, id int) (models.Room, error)
	SetAirConditioning(ctx context.Context, roomID int, on bool) (bool, error)
	SetHouseBlinds(ctx context.Context, command string) (bool, error)
	SetTargetTemperature(ctx context.Context, roomID int, temperature float64) (bool, error)
	SetBlindPosition(ctx context.Context, roomID int, position models.BlindPosition) (bool, error)
	GatewayLoggedIn() bool
}

// EventLog exposes the command audit trail with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.CommandEvent, error)
}

// Supervisor runs the background loop that re-establishes the gateway
// session when the flaky house network drops it. Stop via context
// cancellation in main() for graceful shutdown.
type Supervisor interface {
	Run(ctx context.Context, tick time.Duration)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Automation
	EventLog
	Supervisor
	Authorization
}

// Deps carries everything the services need beyond the repositories.
type Deps struct {
	Gateway         GatewayClient
	Table           models.RoomTable
	GatewayUsername string
	GatewayPassword string
	JWTSigningKey   string
	Log             *logger.Logger
}

// NewService wires the repository layer and the gateway client into
// concrete services.
func NewService(repos *repository.Repository, d Deps) *Service {
	return &Service{
		Automation:    NewAutomationService(d.Gateway, d.Table, repos.Events, d.Log),
		EventLog:      NewEventLogService(repos.Events),
		Supervisor:    NewSupervisorService(d.Gateway, repos.Events, d.GatewayUsername, d.GatewayPassword, d.Log),
		Authorization: NewAuthService(repos.Auth, d.JWTSigningKey),
	}
}
