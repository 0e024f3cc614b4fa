package handlers

import (
	"github.com/gin-gonic/gin"
)

// Request DTO for switching the house A/C. Pointer so that {"on":false}
// passes required-field binding.
type houseACRequest struct {
	On *bool `json:"on" binding:"required"`
}

// Request DTO for the house-wide blinds. Only UP and DOWN exist at this
// level; PARTIAL is a per-room concept.
type houseBlindsRequest struct {
	Command string `json:"command" binding:"required"` // UP | DOWN
}

// @Summary      Switch house A/C
// @Description  Turns the shared air conditioning on or off for the whole house.
// @Tags         house
// @Accept       json
// @Produce      json
// @Param        body  body      houseACRequest  true  "A/C payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/house/ac [post]
// @Security     BearerAuth
func (h *Handler) setHouseAC(c *gin.Context) {
	var req houseACRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	// The control is house-wide; any configured room scopes the command.
	roomID := h.services.Table().Rooms[0].ID
	accepted, err := h.services.SetAirConditioning(c.Request.Context(), roomID, *req.On)
	if err != nil {
		h.commandError(c, err, "house_ac_failed", "on", *req.On)
		return
	}
	h.commandOutcome(c, accepted, gin.H{"on": *req.On})
}

// @Summary      Move house blinds
// @Description  Moves every blind in the house. Allowed: UP, DOWN.
// @Tags         house
// @Accept       json
// @Produce      json
// @Param        body  body      houseBlindsRequest  true  "Blinds payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/house/blinds [post]
// @Security     BearerAuth
func (h *Handler) setHouseBlinds(c *gin.Context) {
	var req houseBlindsRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	accepted, err := h.services.SetHouseBlinds(c.Request.Context(), req.Command)
	if err != nil {
		h.commandError(c, err, "house_blinds_failed", "command", req.Command)
		return
	}
	h.commandOutcome(c, accepted, gin.H{"command": req.Command})
}
