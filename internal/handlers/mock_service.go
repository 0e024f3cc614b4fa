package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"levitt_bridge/internal/models"
	"levitt_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockAutomation struct {
	mu sync.Mutex

	table    models.RoomTable
	rooms    []models.Room
	roomsErr error

	acOK  bool
	acErr error

	blindsOK  bool
	blindsErr error

	tempOK  bool
	tempErr error

	roomBlindsOK  bool
	roomBlindsErr error

	loggedIn bool

	lastACRoomID     int
	lastACOn         bool
	lastBlindCommand string
	lastTempRoomID   int
	lastTemp         float64
	lastPosRoomID    int
	lastPosition     models.BlindPosition

	roomsCalls int
}

func (m *mockAutomation) Table() models.RoomTable {
	if len(m.table.Rooms) == 0 {
		return models.DefaultRoomTable()
	}
	return m.table
}
func (m *mockAutomation) Rooms(ctx context.Context) ([]models.Room, error) {
	m.mu.Lock()
	m.roomsCalls++
	m.mu.Unlock()
	return m.rooms, m.roomsErr
}
func (m *mockAutomation) roomsPolls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roomsCalls
}
func (m *mockAutomation) Room(ctx context.Context, id int) (models.Room, error) {
	for _, r := range m.rooms {
		if r.ID == id {
			return r, nil
		}
	}
	if m.roomsErr != nil {
		return models.Room{}, m.roomsErr
	}
	return models.Room{}, service.ErrUnknownRoom
}
func (m *mockAutomation) SetAirConditioning(ctx context.Context, roomID int, on bool) (bool, error) {
	m.lastACRoomID, m.lastACOn = roomID, on
	return m.acOK, m.acErr
}
func (m *mockAutomation) SetHouseBlinds(ctx context.Context, command string) (bool, error) {
	m.lastBlindCommand = command
	return m.blindsOK, m.blindsErr
}
func (m *mockAutomation) SetTargetTemperature(ctx context.Context, roomID int, temperature float64) (bool, error) {
	m.lastTempRoomID, m.lastTemp = roomID, temperature
	return m.tempOK, m.tempErr
}
func (m *mockAutomation) SetBlindPosition(ctx context.Context, roomID int, position models.BlindPosition) (bool, error) {
	m.lastPosRoomID, m.lastPosition = roomID, position
	return m.roomBlindsOK, m.roomBlindsErr
}
func (m *mockAutomation) GatewayLoggedIn() bool { return m.loggedIn }

type mockEventLog struct {
	resp     []models.CommandEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.CommandEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
