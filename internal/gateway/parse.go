package gateway

import (
	"math"
	"strconv"
	"strings"

	"levitt_bridge/internal/models"
)

// The A/C status point reports its state in Spanish ("Encendido"/"Apagado");
// some firmware revisions return "1"/"0" instead.
const acOnKeyword = "encendido"

// ParseTemperature converts a raw gateway string to degrees. Anything
// unparsable yields the NaN sentinel, never an error: an unreadable sensor
// is an expected condition, not a fault.
func ParseTemperature(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParseBlindPosition maps the gateway's blind codes. Codes outside {0,1,2}
// fall back to Unknown.
func ParseBlindPosition(raw string) models.BlindPosition {
	switch strings.TrimSpace(raw) {
	case "0":
		return models.BlindUp
	case "1":
		return models.BlindDown
	case "2":
		return models.BlindPartial
	default:
		return models.BlindUnknown
	}
}

// ParseACState reports whether a raw A/C status value means "on".
func ParseACState(raw string) bool {
	raw = strings.TrimSpace(raw)
	return strings.EqualFold(raw, acOnKeyword) || raw == "1"
}
