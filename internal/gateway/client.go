package gateway

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	"levitt_bridge/internal/logger"
	"levitt_bridge/internal/models"
)

// ErrInvalidBlindCommand rejects house blind commands outside {UP, DOWN}.
// It is raised before any network traffic.
var ErrInvalidBlindCommand = errors.New("gateway: blinds command must be UP or DOWN")

// Client composes the session manager, reader and executor into room-shaped
// operations over the static house wiring.
//
// One mutex serializes everything that talks to the gateway: the protocol
// assumes a single browser-like actor, so login/logout, dialog transactions
// and batch reads must never interleave. A poll arriving while another is
// in flight blocks behind it instead of racing it.
type Client struct {
	mu sync.Mutex

	transport *Transport
	session   *SessionManager
	reader    *Reader
	executor  *Executor
	table     models.RoomTable
	log       *logger.Logger
	now       func() time.Time
}

// NewClient builds a client for a gateway at `host[:port]` with the given
// house wiring.
func NewClient(address string, table models.RoomTable, log *logger.Logger) *Client {
	transport := NewTransport(address)
	session := NewSessionManager(transport, log)
	return &Client{
		transport: transport,
		session:   session,
		reader:    NewReader(transport, session, log),
		executor:  NewExecutor(transport, session, log),
		table:     table,
		log:       log,
		now:       time.Now,
	}
}

// Table returns the static house wiring the client was built with.
func (c *Client) Table() models.RoomTable { return c.table }

// Login establishes the single gateway session. See SessionManager.Login.
func (c *Client) Login(ctx context.Context, username, password string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Login(ctx, username, password)
}

// Logout tears the session down, best effort.
func (c *Client) Logout(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Logout(ctx)
}

func (c *Client) IsLoggedIn() bool { return c.session.IsLoggedIn() }

// SessionState exposes the authentication state for health reporting.
func (c *Client) SessionState() SessionState { return c.session.State() }

// GetRooms polls the shared A/C status point and every configured room's
// temperature, target temperature and blind point. Fields degrade
// independently: a failed point read leaves that field at its unknown
// sentinel and never aborts the batch; the caller's display degrades
// instead of erroring out.
func (c *Client) GetRooms(ctx context.Context) ([]models.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}

	// House-wide A/C status first; every room shares it.
	isACOn := false
	if dp, err := c.reader.ReadDataPoint(ctx, c.table.ACStatusPointID); err == nil && dp.Readable() {
		isACOn = ParseACState(dp.Value)
	}

	rooms := make([]models.Room, 0, len(c.table.Rooms))
	for _, wiring := range c.table.Rooms {
		room := wiring // fresh copy; wiring stays read-only

		room.CurrentTemperature = c.readTemperature(ctx, room.TemperatureSensorID)
		room.TargetTemperature = c.readTemperature(ctx, room.TargetTempSensorID)
		room.IsACOn = isACOn
		room.BlindPosition = c.readBlindPosition(ctx, room.BlindControlID)
		room.LastUpdated = c.now()

		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (c *Client) readTemperature(ctx context.Context, pointID int) float64 {
	dp, err := c.reader.ReadDataPoint(ctx, pointID)
	if err != nil || !dp.Readable() {
		return math.NaN()
	}
	return ParseTemperature(dp.Value)
}

func (c *Client) readBlindPosition(ctx context.Context, pointID int) models.BlindPosition {
	dp, err := c.reader.ReadDataPoint(ctx, pointID)
	if err != nil || !dp.Readable() {
		return models.BlindUnknown
	}
	return ParseBlindPosition(dp.Value)
}

// SetAirConditioning switches the house A/C through the dialog protocol.
// The control is house-wide; roomID only has to resolve in the table.
// Unknown rooms yield a false outcome, not an error.
func (c *Client) SetAirConditioning(ctx context.Context, roomID int, on bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Checked under the lock, like every write: a concurrent Logout must
	// not slip between the check and the dialog.
	if !c.session.IsLoggedIn() {
		return false, ErrNotLoggedIn
	}
	if _, ok := c.table.Room(roomID); !ok {
		c.log.Warnw("unknown_room", "room_id", roomID)
		return false, nil
	}

	value := "2" // off
	if on {
		value = "1"
	}
	return c.executor.RunDialog(ctx, c.table.ACDialogID, value), nil
}

// SetHouseBlinds moves every blind in the house. Only "UP" and "DOWN" are
// accepted; anything else is a caller contract violation rejected before
// any network call.
func (c *Client) SetHouseBlinds(ctx context.Context, command string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.IsLoggedIn() {
		return false, ErrNotLoggedIn
	}

	var value string
	switch command {
	case "UP":
		value = "1"
	case "DOWN":
		value = "2"
	default:
		return false, ErrInvalidBlindCommand
	}
	return c.executor.RunDialog(ctx, c.table.BlindsDialogID, value), nil
}

// SetTargetTemperature writes a room's target temperature through the
// generic command endpoint.
func (c *Client) SetTargetTemperature(ctx context.Context, roomID int, temperature float64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.IsLoggedIn() {
		return false, ErrNotLoggedIn
	}
	room, ok := c.table.Room(roomID)
	if !ok {
		c.log.Warnw("unknown_room", "room_id", roomID)
		return false, nil
	}

	cmd := models.Command{
		TargetID:     room.TargetTempSensorID,
		DesiredValue: strconv.FormatFloat(temperature, 'f', 1, 64),
	}
	return c.executor.WriteDataPoint(ctx, cmd), nil
}

// SetBlindPosition writes one room's blind point through the generic
// command endpoint. Whether the gateway honors this path is unconfirmed; it
// is best effort, distinct from the house-wide dialog protocol.
func (c *Client) SetBlindPosition(ctx context.Context, roomID int, position models.BlindPosition) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.IsLoggedIn() {
		return false, ErrNotLoggedIn
	}
	room, ok := c.table.Room(roomID)
	if !ok {
		c.log.Warnw("unknown_room", "room_id", roomID)
		return false, nil
	}

	var value string
	switch position {
	case models.BlindUp:
		value = "0"
	case models.BlindDown:
		value = "1"
	case models.BlindPartial:
		value = "2"
	default:
		value = "0"
	}

	cmd := models.Command{TargetID: room.BlindControlID, DesiredValue: value}
	return c.executor.WriteDataPoint(ctx, cmd), nil
}
