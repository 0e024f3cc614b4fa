package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"levitt_bridge/internal/gateway"
	"levitt_bridge/internal/models"
	"levitt_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusAccepted = "accepted"
	statusRejected = "rejected"

	errInvalidRoomID   = "invalid room id"
	errUnknownRoom     = "unknown room"
	errGatewaySession  = "no gateway session"
	errGatewayRejected = "gateway rejected command"
)

// RoomResponse is the API shape of one room. Temperatures are pointers so an
// unreadable sensor serializes as null rather than a fake zero.
type RoomResponse struct {
	ID                 int       `json:"id" example:"1"`
	Name               string    `json:"name" example:"Living Room"`
	CurrentTemperature *float64  `json:"current_temperature" example:"21.5"`
	TargetTemperature  *float64  `json:"target_temperature" example:"22"`
	IsACOn             bool      `json:"is_ac_on"`
	BlindPosition      string    `json:"blind_position" example:"UP"`
	LastUpdated        time.Time `json:"last_updated"`
}

func temperatureOrNull(t float64) *float64 {
	if models.TemperatureUnknown(t) {
		return nil
	}
	return &t
}

func newRoomResponse(r models.Room) RoomResponse {
	return RoomResponse{
		ID:                 r.ID,
		Name:               r.Name,
		CurrentTemperature: temperatureOrNull(r.CurrentTemperature),
		TargetTemperature:  temperatureOrNull(r.TargetTemperature),
		IsACOn:             r.IsACOn,
		BlindPosition:      r.BlindPosition.String(),
		LastUpdated:        r.LastUpdated,
	}
}

func newRoomResponses(rooms []models.Room) []RoomResponse {
	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, newRoomResponse(r))
	}
	return out
}

// commandError maps service/gateway errors onto HTTP status codes and logs
// the ones worth operator attention.
func (h *Handler) commandError(c *gin.Context, err error, logKey string, kv ...interface{}) {
	switch {
	case errors.Is(err, service.ErrUnknownRoom):
		c.JSON(http.StatusNotFound, gin.H{"error": errUnknownRoom})
	case errors.Is(err, gateway.ErrInvalidBlindCommand):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gateway.ErrNotLoggedIn):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errGatewaySession})
	default:
		if h.log != nil {
			fields := append([]interface{}{"err", err}, kv...)
			h.log.Errorw(logKey, fields...)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// commandOutcome answers for a (bool, nil) command result: the gateway
// reported either success or a protocol-level refusal.
func (h *Handler) commandOutcome(c *gin.Context, ok bool, extra gin.H) {
	if !ok {
		c.JSON(http.StatusBadGateway, gin.H{"status": statusRejected, "error": errGatewayRejected})
		return
	}
	resp := gin.H{"status": statusAccepted}
	for k, v := range extra {
		resp[k] = v
	}
	c.JSON(http.StatusOK, resp)
}

func roomIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidRoomID})
		return 0, false
	}
	return id, true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            statusOK,
		"gateway_logged_in": h.services.GatewayLoggedIn(),
	})
}

// @Summary      List rooms
// @Description  Polls the gateway for every configured room. Unreadable temperatures come back null.
// @Tags         rooms
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, rooms"
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/rooms [get]
// @Security     BearerAuth
func (h *Handler) getRooms(c *gin.Context) {
	rooms, err := h.services.Rooms(c.Request.Context())
	if err != nil {
		h.commandError(c, err, "rooms_list_failed")
		return
	}
	resp := newRoomResponses(rooms)
	c.JSON(http.StatusOK, gin.H{
		"count": len(resp),
		"rooms": resp,
	})
}

// @Summary      Get one room
// @Tags         rooms
// @Produce      json
// @Param        id   path      int  true  "Room ID"
// @Success      200  {object}  RoomResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/rooms/{id} [get]
// @Security     BearerAuth
func (h *Handler) getRoom(c *gin.Context) {
	id, ok := roomIDParam(c)
	if !ok {
		return
	}
	room, err := h.services.Room(c.Request.Context(), id)
	if err != nil {
		h.commandError(c, err, "room_get_failed", "room_id", id)
		return
	}
	c.JSON(http.StatusOK, newRoomResponse(room))
}

// Request DTO for setting a room's target temperature.
type targetTemperatureRequest struct {
	Temperature *float64 `json:"temperature" binding:"required"`
}

// @Summary      Set target temperature
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        id    path      int                       true  "Room ID"
// @Param        body  body      targetTemperatureRequest  true  "Temperature payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/rooms/{id}/target-temperature [post]
// @Security     BearerAuth
func (h *Handler) setTargetTemperature(c *gin.Context) {
	id, ok := roomIDParam(c)
	if !ok {
		return
	}
	var req targetTemperatureRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	accepted, err := h.services.SetTargetTemperature(c.Request.Context(), id, *req.Temperature)
	if err != nil {
		h.commandError(c, err, "target_temp_failed", "room_id", id)
		return
	}
	h.commandOutcome(c, accepted, gin.H{"room_id": id, "temperature": *req.Temperature})
}

// Request DTO for positioning one room's blinds.
type roomBlindsRequest struct {
	Position string `json:"position" binding:"required"` // UP | DOWN | PARTIAL
}

func parsePositionName(s string) (models.BlindPosition, bool) {
	switch s {
	case "UP":
		return models.BlindUp, true
	case "DOWN":
		return models.BlindDown, true
	case "PARTIAL":
		return models.BlindPartial, true
	default:
		return models.BlindUnknown, false
	}
}

// @Summary      Set room blinds
// @Description  Positions one room's blinds. Allowed: UP, DOWN, PARTIAL.
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Room ID"
// @Param        body  body      roomBlindsRequest true  "Position payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/rooms/{id}/blinds [post]
// @Security     BearerAuth
func (h *Handler) setRoomBlinds(c *gin.Context) {
	id, ok := roomIDParam(c)
	if !ok {
		return
	}
	var req roomBlindsRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	position, ok := parsePositionName(req.Position)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "position must be UP, DOWN or PARTIAL"})
		return
	}

	accepted, err := h.services.SetBlindPosition(c.Request.Context(), id, position)
	if err != nil {
		h.commandError(c, err, "room_blinds_failed", "room_id", id)
		return
	}
	h.commandOutcome(c, accepted, gin.H{"room_id": id, "position": req.Position})
}
