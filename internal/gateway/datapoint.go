package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"levitt_bridge/internal/logger"
	"levitt_bridge/internal/models"
)

// ErrNotLoggedIn is returned when an operation that needs an authenticated
// session is invoked while logged out. It is the caller's contract error,
// not a transport condition.
var ErrNotLoggedIn = errors.New("gateway: not logged in")

// The gateway's permission sentinel, returned verbatim in the value field.
const accessDeniedValue = "Access denied"

// Reader polls individual data points through the current session.
type Reader struct {
	transport *Transport
	session   *SessionManager
	log       *logger.Logger
	now       func() time.Time
}

func NewReader(transport *Transport, session *SessionManager, log *logger.Logger) *Reader {
	return &Reader{transport: transport, session: session, log: log, now: time.Now}
}

// getDp responses are loosely typed; value is null for some denied points.
type dataPointPayload struct {
	Value *string `json:"value"`
	Unit  string  `json:"unit"`
}

// ReadDataPoint polls one plant item. Transient failures (transport errors,
// non-success statuses, malformed bodies) yield an Unreadable point rather
// than an error; the house network drops individual reads routinely.
func (r *Reader) ReadDataPoint(ctx context.Context, id int) (models.DataPoint, error) {
	if !r.session.IsLoggedIn() {
		return models.DataPoint{}, ErrNotLoggedIn
	}

	// The cache-busting timestamp is required: without it the legacy
	// server/browser stack serves stale cached responses.
	pollURL := fmt.Sprintf("%s/ajax.app?SessionId=%s&service=getDp&plantItemId=%d&_=%d",
		r.transport.BaseURL(), r.session.SessionID(), id, r.now().UnixMilli())

	resp, err := r.transport.Get(ctx, pollURL, "")
	if err != nil {
		r.log.Warnw("datapoint_read_failed", "plant_item_id", id, "err", err)
		return models.DataPoint{ID: id, Status: models.DataPointUnreadable}, nil
	}
	if !resp.Success() {
		r.log.Warnw("datapoint_read_failed", "plant_item_id", id, "status", resp.StatusCode)
		return models.DataPoint{ID: id, Status: models.DataPointUnreadable}, nil
	}

	var payload dataPointPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		r.log.Warnw("datapoint_parse_failed", "plant_item_id", id, "err", err, "body", string(resp.Body))
		return models.DataPoint{ID: id, Status: models.DataPointUnreadable}, nil
	}

	if payload.Value == nil || *payload.Value == "" || *payload.Value == accessDeniedValue {
		r.log.Warnw("datapoint_access_denied", "plant_item_id", id)
		return models.DataPoint{ID: id, Status: models.DataPointAccessDenied}, nil
	}

	return models.DataPoint{
		ID:     id,
		Value:  *payload.Value,
		Unit:   payload.Unit,
		Status: models.DataPointOK,
	}, nil
}
