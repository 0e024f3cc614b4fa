package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"levitt_bridge/internal/logger"
	"levitt_bridge/internal/models"
)

type fakeGateway struct {
	mu       sync.Mutex
	loggedIn bool
	rooms    []models.Room
	roomsErr error

	loginOK      bool
	loginCalls   int
	logoutCalls  int
	writeOK      bool
	writeErr     error
	lastWrite    string
	lastRoomID   int
	lastCommand  string
	lastPosition models.BlindPosition
}

func (f *fakeGateway) Login(ctx context.Context, username, password string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	f.loggedIn = f.loginOK
	return f.loginOK
}
func (f *fakeGateway) Logout(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	f.loggedIn = false
}
func (f *fakeGateway) IsLoggedIn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loggedIn
}
func (f *fakeGateway) logins() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls
}
func (f *fakeGateway) GetRooms(ctx context.Context) ([]models.Room, error) {
	return f.rooms, f.roomsErr
}
func (f *fakeGateway) SetAirConditioning(ctx context.Context, roomID int, on bool) (bool, error) {
	f.lastWrite, f.lastRoomID = "ac", roomID
	return f.writeOK, f.writeErr
}
func (f *fakeGateway) SetHouseBlinds(ctx context.Context, command string) (bool, error) {
	f.lastWrite, f.lastCommand = "house_blinds", command
	return f.writeOK, f.writeErr
}
func (f *fakeGateway) SetTargetTemperature(ctx context.Context, roomID int, temperature float64) (bool, error) {
	f.lastWrite, f.lastRoomID = "target_temp", roomID
	return f.writeOK, f.writeErr
}
func (f *fakeGateway) SetBlindPosition(ctx context.Context, roomID int, position models.BlindPosition) (bool, error) {
	f.lastWrite, f.lastRoomID, f.lastPosition = "room_blinds", roomID, position
	return f.writeOK, f.writeErr
}

type fakeEventRepo struct {
	mu        sync.Mutex
	appendErr error
	events    []models.CommandEvent
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.CommandEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.appendErr
}
func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.CommandEvent, error) {
	return f.appended(), nil
}
func (f *fakeEventRepo) appended() []models.CommandEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CommandEvent(nil), f.events...)
}

func newAutomation(gw *fakeGateway, events *fakeEventRepo) *AutomationService {
	return NewAutomationService(gw, models.DefaultRoomTable(), events, logger.Get(logger.ErrorLevel))
}

func TestRooms_PassThrough(t *testing.T) {
	gw := &fakeGateway{rooms: []models.Room{{ID: 1, Name: "Living Room"}}}
	svc := newAutomation(gw, &fakeEventRepo{})

	rooms, err := svc.Rooms(context.Background())
	if err != nil || len(rooms) != 1 {
		t.Fatalf("Rooms = %v, %v", rooms, err)
	}
}

func TestRoom_UnknownID(t *testing.T) {
	svc := newAutomation(&fakeGateway{}, &fakeEventRepo{})
	if _, err := svc.Room(context.Background(), 99); !errors.Is(err, ErrUnknownRoom) {
		t.Fatalf("err = %v, want ErrUnknownRoom", err)
	}
}

func TestRoom_FiltersBatch(t *testing.T) {
	gw := &fakeGateway{rooms: []models.Room{{ID: 1}, {ID: 2, Name: "Room 1"}}}
	svc := newAutomation(gw, &fakeEventRepo{})

	room, err := svc.Room(context.Background(), 2)
	if err != nil {
		t.Fatalf("Room: %v", err)
	}
	if room.Name != "Room 1" {
		t.Fatalf("room = %+v", room)
	}
}

func TestSetAirConditioning_AuditsOutcome(t *testing.T) {
	gw := &fakeGateway{writeOK: true}
	events := &fakeEventRepo{}
	svc := newAutomation(gw, events)

	ok, err := svc.SetAirConditioning(context.Background(), 1, true)
	if err != nil || !ok {
		t.Fatalf("SetAirConditioning = %v, %v", ok, err)
	}
	if gw.lastWrite != "ac" {
		t.Fatalf("gateway write = %q", gw.lastWrite)
	}
	if len(events.events) != 1 || events.events[0].Type != models.EventACCommand {
		t.Fatalf("audit events = %+v", events.events)
	}
}

func TestSetAirConditioning_UnknownRoomSkipsGateway(t *testing.T) {
	gw := &fakeGateway{}
	svc := newAutomation(gw, &fakeEventRepo{})

	_, err := svc.SetAirConditioning(context.Background(), 42, true)
	if !errors.Is(err, ErrUnknownRoom) {
		t.Fatalf("err = %v, want ErrUnknownRoom", err)
	}
	if gw.lastWrite != "" {
		t.Fatal("gateway must not be called for unknown rooms")
	}
}

func TestSetHouseBlinds_ContractErrorNotAudited(t *testing.T) {
	gw := &fakeGateway{writeErr: errors.New("gateway: blinds command must be UP or DOWN")}
	events := &fakeEventRepo{}
	svc := newAutomation(gw, events)

	if _, err := svc.SetHouseBlinds(context.Background(), "SIDEWAYS"); err == nil {
		t.Fatal("expected contract error")
	}
	if len(events.events) != 0 {
		t.Fatalf("contract violations must not be audited: %+v", events.events)
	}
}

func TestWriteFailure_AuditStillRecords(t *testing.T) {
	gw := &fakeGateway{writeOK: false}
	events := &fakeEventRepo{}
	svc := newAutomation(gw, events)

	ok, err := svc.SetTargetTemperature(context.Background(), 2, 22.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected false outcome")
	}
	meta, _ := events.events[0].Metadata.(map[string]any)
	if meta["ok"] != false {
		t.Fatalf("audit metadata = %+v", meta)
	}
}

func TestAuditFailureDoesNotBlockCommand(t *testing.T) {
	gw := &fakeGateway{writeOK: true}
	events := &fakeEventRepo{appendErr: errors.New("db locked")}
	svc := newAutomation(gw, events)

	ok, err := svc.SetBlindPosition(context.Background(), 3, models.BlindDown)
	if err != nil || !ok {
		t.Fatalf("SetBlindPosition = %v, %v; audit failures must not surface", ok, err)
	}
}
