package models

// DataPointStatus classifies the outcome of a single point read.
type DataPointStatus string

const (
	// DataPointOK means the gateway returned a usable value.
	DataPointOK DataPointStatus = "OK"
	// DataPointAccessDenied is the gateway's documented permission sentinel
	// for a point the session may not read. The value is absent, not zero.
	DataPointAccessDenied DataPointStatus = "ACCESS_DENIED"
	// DataPointUnreadable covers transport faults and non-success statuses;
	// point reads over the house network fail transiently all the time.
	DataPointUnreadable DataPointStatus = "UNREADABLE"
)

// DataPoint is the result of polling one plant item. Constructed fresh per
// poll and never cached.
type DataPoint struct {
	ID     int
	Value  string // raw gateway string; empty unless Status is DataPointOK
	Unit   string
	Status DataPointStatus
}

// Readable reports whether the point carries a usable raw value.
func (d DataPoint) Readable() bool { return d.Status == DataPointOK }

// Command is a write intent against one plant item. It is consumed by the
// command executor and never stored.
type Command struct {
	TargetID     int
	DesiredValue string
}
