package models

import (
	"math"
	"time"
)

// BlindPosition is the reported position of a blind. Unknown is both the
// initial value and the fallback for raw codes the gateway was never seen
// to emit.
type BlindPosition int

const (
	BlindUnknown BlindPosition = iota
	BlindUp
	BlindDown
	BlindPartial
)

func (p BlindPosition) String() string {
	switch p {
	case BlindUp:
		return "UP"
	case BlindDown:
		return "DOWN"
	case BlindPartial:
		return "PARTIAL"
	default:
		return "UNKNOWN"
	}
}

// Room is one entry of the house wiring plus its last polled state.
// CurrentTemperature and TargetTemperature are NaN while unknown; consumers
// must render that as absence, never as zero.
type Room struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	// Plant item IDs on the gateway.
	TemperatureSensorID int `json:"-"`
	TargetTempSensorID  int `json:"-"`
	ACControlID         int `json:"-"`
	BlindControlID      int `json:"-"`

	CurrentTemperature float64       `json:"-"`
	TargetTemperature  float64       `json:"-"`
	IsACOn             bool          `json:"is_ac_on"`
	BlindPosition      BlindPosition `json:"blind_position"`
	LastUpdated        time.Time     `json:"last_updated"`
}

// TemperatureUnknown reports whether t is the unknown sentinel.
func TemperatureUnknown(t float64) bool {
	return math.IsNaN(t)
}

// RoomTable is the static house wiring: which plant item IDs belong to which
// room, plus the shared house-wide control IDs. It is read-only after
// construction and injected wherever room resolution is needed, so tests can
// swap it out.
type RoomTable struct {
	Rooms []Room

	// A/C status is reported by a dedicated point ("Encendido"/"Apagado"),
	// distinct from the dialog that switches it.
	ACStatusPointID int
	ACDialogID      int
	BlindsDialogID  int
}

// Room returns the wiring entry for id.
func (t RoomTable) Room(id int) (Room, bool) {
	for _, r := range t.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// DefaultRoomTable is the wiring of the actual house: five monitored rooms,
// one A/C and one blind control shared by the whole house. Writes through
// any room hit the shared controls.
func DefaultRoomTable() RoomTable {
	return RoomTable{
		Rooms: []Room{
			{ID: 1, Name: "Living Room", TemperatureSensorID: 1391, TargetTempSensorID: 775, ACControlID: 1083, BlindControlID: 816},
			{ID: 2, Name: "Room 1", TemperatureSensorID: 1398, TargetTempSensorID: 816, ACControlID: 1083, BlindControlID: 816},
			{ID: 3, Name: "Room 2", TemperatureSensorID: 1405, TargetTempSensorID: 857, ACControlID: 1083, BlindControlID: 816},
			{ID: 4, Name: "Room 3", TemperatureSensorID: 1412, TargetTempSensorID: 898, ACControlID: 1083, BlindControlID: 816},
			{ID: 5, Name: "Hallway", TemperatureSensorID: 1419, TargetTempSensorID: 940, ACControlID: 1083, BlindControlID: 816},
		},
		ACStatusPointID: 1377,
		ACDialogID:      1083,
		BlindsDialogID:  1032,
	}
}
