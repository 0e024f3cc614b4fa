package gateway

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"levitt_bridge/internal/logger"
	"levitt_bridge/internal/models"

	"github.com/google/uuid"
)

// Fixed dialog form contract. The gateway's form always carries these four
// fields, in this order; DpDescription is an opaque tag its client script
// embeds in every dialog.
const (
	fieldAction        = "action"
	fieldDpDescription = "DpDescription"
	fieldID            = "id"
	fieldValue         = "value"

	dialogActionUpdate = "update"
	dpDescriptionTag   = "COzwValME8"
)

// A 200 response can still be a rejected command. The gateway signals
// acceptance by emitting a call to its client-side dialog cleanup function.
const successMarker = "cleanupDialog"

type formField struct {
	name  string
	value string
}

// Executor performs writes against the gateway. House-wide controls go
// through the three-step dialog transaction; simple per-point writes use a
// single form POST.
type Executor struct {
	transport *Transport
	session   *SessionManager
	log       *logger.Logger

	// ScrapeHiddenFields appends hidden inputs found in the dialog form to
	// the submit payload, to tolerate server-side form changes. The four
	// known fields are the contract; this is an optional fallback and off
	// by default.
	ScrapeHiddenFields bool
}

func NewExecutor(transport *Transport, session *SessionManager, log *logger.Logger) *Executor {
	return &Executor{transport: transport, session: session, log: log}
}

// RunDialog executes one arm/load/submit transaction for the given dialog
// ID and encoded value. The result is a plain success flag: every transport
// or protocol failure is logged and absorbed. There is no retry; attempting
// a write exactly once per invocation is the contract.
func (e *Executor) RunDialog(ctx context.Context, dialogID int, value string) bool {
	tx := &dialogTransaction{
		transport: e.transport,
		log:       e.log,
		base:      e.transport.BaseURL(),
		sessionID: e.session.SessionID(),
		refererIn: e.session.AuthPageURL(),
		dialogID:  dialogID,
		value:     value,
		scrape:    e.ScrapeHiddenFields,
	}
	return tx.run(ctx)
}

// WriteDataPoint performs the simpler single-step write to the generic
// command endpoint. Success is judged by HTTP status alone; the gateway
// gives no body-level confirmation on this path.
func (e *Executor) WriteDataPoint(ctx context.Context, cmd models.Command) bool {
	form := url.Values{}
	form.Set("sessionId", e.session.SessionID())
	form.Set("plantItemId", strconv.Itoa(cmd.TargetID))
	form.Set("value", cmd.DesiredValue)

	resp, err := e.transport.PostForm(ctx, e.transport.BaseURL()+"/ajax.app", form)
	if err != nil {
		e.log.Errorw("point_write_failed", "plant_item_id", cmd.TargetID, "err", err)
		return false
	}
	if !resp.Success() {
		e.log.Errorw("point_write_failed", "plant_item_id", cmd.TargetID, "status", resp.StatusCode)
		return false
	}
	return true
}

// dialogTransaction is one write against the gateway's stateful dialog
// machinery. The three steps are causally ordered and cannot be skipped,
// reordered or parallelized: the server allocates dialog state at arm time
// and validates the referer chain a browser would produce.
type dialogTransaction struct {
	transport *Transport
	log       *logger.Logger

	base      string
	sessionID string
	refererIn string
	dialogID  int
	value     string
	scrape    bool

	// URLs of completed steps, chained as referers into the next one.
	waitURL   string
	dialogURL string
	extra     []formField
}

func (tx *dialogTransaction) run(ctx context.Context) bool {
	if !tx.arm(ctx) {
		return false
	}
	// The server has mutated dialog state at this point; abandoning the
	// transaction mid-sequence would leave it armed. Run the remaining
	// steps to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	if !tx.load(ctx) {
		return false
	}
	return tx.submit(ctx)
}

// arm allocates server-side dialog state via the wait endpoint.
func (tx *dialogTransaction) arm(ctx context.Context) bool {
	tx.waitURL = fmt.Sprintf("%s/main.app?SessionId=%s&section=dialog&action=wait&id=%d",
		tx.base, tx.sessionID, tx.dialogID)

	resp, err := tx.transport.Get(ctx, tx.waitURL, tx.refererIn)
	if err != nil {
		tx.log.Errorw("dialog_arm_failed", "dialog_id", tx.dialogID, "err", err)
		return false
	}
	if !resp.Success() {
		tx.log.Errorw("dialog_arm_failed", "dialog_id", tx.dialogID, "status", resp.StatusCode)
		return false
	}
	return true
}

// load fetches the dialog form. The HTML is discarded except, optionally,
// for hidden fields when scraping is enabled.
func (tx *dialogTransaction) load(ctx context.Context) bool {
	tx.dialogURL = fmt.Sprintf("%s/dialog.app?SessionId=%s&action=new&id=%d",
		tx.base, tx.sessionID, tx.dialogID)

	resp, err := tx.transport.Get(ctx, tx.dialogURL, tx.waitURL)
	if err != nil {
		tx.log.Errorw("dialog_load_failed", "dialog_id", tx.dialogID, "err", err)
		return false
	}
	if !resp.Success() {
		tx.log.Errorw("dialog_load_failed", "dialog_id", tx.dialogID, "status", resp.StatusCode)
		return false
	}
	if tx.scrape {
		tx.extra = scanHiddenFields(resp.Body)
	}
	return true
}

// submit POSTs the multipart form and decides the outcome by scanning for
// the success marker.
func (tx *dialogTransaction) submit(ctx context.Context) bool {
	postURL := fmt.Sprintf("%s/dialog.app?SessionId=%s", tx.base, tx.sessionID)

	fields := []formField{
		{fieldAction, dialogActionUpdate},
		{fieldDpDescription, dpDescriptionTag},
		{fieldID, strconv.Itoa(tx.dialogID)},
		{fieldValue, tx.value},
	}
	fields = append(fields, tx.extra...)

	boundary := newBoundary()
	body := multipartBody(boundary, fields)

	resp, err := tx.transport.Post(ctx, postURL,
		"multipart/form-data; boundary="+boundary, body, tx.dialogURL)
	if err != nil {
		tx.log.Errorw("dialog_submit_failed", "dialog_id", tx.dialogID, "err", err)
		return false
	}
	if !resp.Success() {
		tx.log.Errorw("dialog_submit_failed", "dialog_id", tx.dialogID, "status", resp.StatusCode)
		return false
	}
	if !dialogCompleted(resp.Body) {
		tx.log.Warnw("dialog_rejected", "dialog_id", tx.dialogID, "value", tx.value)
		return false
	}
	tx.log.Infow("dialog_completed", "dialog_id", tx.dialogID, "value", tx.value)
	return true
}

// dialogCompleted is the single place that knows how acceptance is
// detected, so the sniffing strategy can change without touching the
// transaction steps.
func dialogCompleted(body []byte) bool {
	return bytes.Contains(body, []byte(successMarker))
}

// newBoundary produces a browser-shaped multipart boundary token.
func newBoundary() string {
	return "----WebKitFormBoundary" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// multipartBody assembles the form byte-for-byte the way a browser does.
// The gateway's multipart parser is not conformant; boundary markers,
// trailing dashes and blank-line placement must match exactly.
func multipartBody(boundary string, fields []formField) []byte {
	var b bytes.Buffer
	for _, f := range fields {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString(`Content-Disposition: form-data; name="` + f.name + `"` + "\r\n")
		b.WriteString("\r\n")
		b.WriteString(f.value + "\r\n")
	}
	b.WriteString("--" + boundary + "--\r\n")
	return b.Bytes()
}

var (
	hiddenInputRe = regexp.MustCompile(`(?i)<input[^>]*type\s*=\s*["']hidden["'][^>]*>`)
	inputNameRe   = regexp.MustCompile(`(?i)name\s*=\s*["']([^"']*)["']`)
	inputValueRe  = regexp.MustCompile(`(?i)value\s*=\s*["']([^"']*)["']`)
)

// scanHiddenFields extracts hidden inputs from the dialog form HTML,
// skipping the four fields the transaction sets explicitly. Fields come
// back verbatim, in document order.
func scanHiddenFields(html []byte) []formField {
	var fields []formField
	for _, input := range hiddenInputRe.FindAll(html, -1) {
		name := inputNameRe.FindSubmatch(input)
		value := inputValueRe.FindSubmatch(input)
		if name == nil || value == nil {
			continue
		}
		switch string(name[1]) {
		case fieldAction, fieldDpDescription, fieldID, fieldValue:
			continue
		}
		fields = append(fields, formField{name: string(name[1]), value: string(value[1])})
	}
	return fields
}
