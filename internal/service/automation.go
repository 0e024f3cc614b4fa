package service

import (
	"context"
	"errors"
	"fmt"

	"levitt_bridge/internal/logger"
	"levitt_bridge/internal/models"
	"levitt_bridge/internal/repository"
)

// ErrUnknownRoom marks a room ID outside the static house wiring. The
// gateway layer treats unknown rooms as a false outcome; the service layer
// names the condition so the API can answer 404.
var ErrUnknownRoom = errors.New("unknown room")

// AutomationService is the room-shaped surface over the gateway client,
// with every write recorded in the command audit log.
type AutomationService struct {
	gw     GatewayClient
	table  models.RoomTable
	events repository.EventRepo
	log    *logger.Logger
}

func NewAutomationService(gw GatewayClient, table models.RoomTable, events repository.EventRepo, log *logger.Logger) *AutomationService {
	return &AutomationService{gw: gw, table: table, events: events, log: log}
}

// Table returns the static house wiring.
func (s *AutomationService) Table() models.RoomTable { return s.table }

// Rooms returns the freshly polled state of every configured room.
func (s *AutomationService) Rooms(ctx context.Context) ([]models.Room, error) {
	return s.gw.GetRooms(ctx)
}

// Room returns one room's freshly polled state.
func (s *AutomationService) Room(ctx context.Context, id int) (models.Room, error) {
	if _, ok := s.table.Room(id); !ok {
		return models.Room{}, ErrUnknownRoom
	}
	rooms, err := s.gw.GetRooms(ctx)
	if err != nil {
		return models.Room{}, err
	}
	for _, r := range rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Room{}, ErrUnknownRoom
}

func (s *AutomationService) GatewayLoggedIn() bool { return s.gw.IsLoggedIn() }

// SetAirConditioning switches the house-wide A/C. The room only scopes the
// audit entry; the control is shared by the whole house.
func (s *AutomationService) SetAirConditioning(ctx context.Context, roomID int, on bool) (bool, error) {
	if _, ok := s.table.Room(roomID); !ok {
		return false, ErrUnknownRoom
	}
	ok, err := s.gw.SetAirConditioning(ctx, roomID, on)
	if err != nil {
		return false, err
	}
	s.audit(ctx, models.EventACCommand, fmt.Sprintf("house A/C %s", onOff(on)), map[string]any{
		"room_id": roomID, "on": on, "ok": ok,
	})
	return ok, nil
}

// SetHouseBlinds moves every blind in the house; command is UP or DOWN.
func (s *AutomationService) SetHouseBlinds(ctx context.Context, command string) (bool, error) {
	ok, err := s.gw.SetHouseBlinds(ctx, command)
	if err != nil {
		return false, err
	}
	s.audit(ctx, models.EventBlinds, "house blinds "+command, map[string]any{
		"command": command, "ok": ok,
	})
	return ok, nil
}

// SetTargetTemperature writes one room's target temperature.
func (s *AutomationService) SetTargetTemperature(ctx context.Context, roomID int, temperature float64) (bool, error) {
	if _, ok := s.table.Room(roomID); !ok {
		return false, ErrUnknownRoom
	}
	ok, err := s.gw.SetTargetTemperature(ctx, roomID, temperature)
	if err != nil {
		return false, err
	}
	s.audit(ctx, models.EventTargetTemp, fmt.Sprintf("room %d target temperature", roomID), map[string]any{
		"room_id": roomID, "temperature": temperature, "ok": ok,
	})
	return ok, nil
}

// SetBlindPosition writes one room's blind point (best effort; the gateway
// may ignore this path).
func (s *AutomationService) SetBlindPosition(ctx context.Context, roomID int, position models.BlindPosition) (bool, error) {
	if _, ok := s.table.Room(roomID); !ok {
		return false, ErrUnknownRoom
	}
	ok, err := s.gw.SetBlindPosition(ctx, roomID, position)
	if err != nil {
		return false, err
	}
	s.audit(ctx, models.EventRoomBlinds, fmt.Sprintf("room %d blinds %s", roomID, position), map[string]any{
		"room_id": roomID, "position": position.String(), "ok": ok,
	})
	return ok, nil
}

// audit appends to the command log, best effort: a full audit table must
// never block a command.
func (s *AutomationService) audit(ctx context.Context, typ, description string, meta map[string]any) {
	e := models.CommandEvent{Type: typ, Description: description, Metadata: meta}
	if err := s.events.Append(ctx, e); err != nil {
		s.log.Warnw("audit_append_failed", "type", typ, "err", err)
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
