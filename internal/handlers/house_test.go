package handlers

import (
	"net/http"
	"testing"

	"levitt_bridge/internal/gateway"
	"levitt_bridge/internal/service"
)

func TestSetHouseAC_OnAndOff(t *testing.T) {
	auto := &mockAutomation{acOK: true}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Automation: auto}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/v1/house/ac", `{"on":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if !auto.lastACOn {
		t.Fatalf("expected on=true, got %+v", auto)
	}

	// {"on":false} must bind; a plain bool field would fail required validation.
	w = doJSON(t, r, http.MethodPost, "/api/v1/house/ac", `{"on":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("off status=%d, body=%s", w.Code, w.Body.String())
	}
	if auto.lastACOn {
		t.Fatalf("expected on=false, got %+v", auto)
	}

	// The house-wide control is scoped through a configured room.
	if auto.lastACRoomID != 1 {
		t.Fatalf("expected room 1 scope, got %d", auto.lastACRoomID)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/house/ac", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing field, got %d", w.Code)
	}
}

func TestSetHouseAC_GatewayRefusalIs502(t *testing.T) {
	auto := &mockAutomation{acOK: false}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Automation: auto}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/v1/house/ac", `{"on":true}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d (body=%s)", w.Code, w.Body.String())
	}
}

func TestSetHouseBlinds_CommandMapping(t *testing.T) {
	auto := &mockAutomation{blindsOK: true}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Automation: auto}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/v1/house/blinds", `{"command":"UP"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if auto.lastBlindCommand != "UP" {
		t.Fatalf("expected UP, got %q", auto.lastBlindCommand)
	}
}

func TestSetHouseBlinds_InvalidCommandIs400(t *testing.T) {
	auto := &mockAutomation{blindsErr: gateway.ErrInvalidBlindCommand}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Automation: auto}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/v1/house/blinds", `{"command":"SIDEWAYS"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (body=%s)", w.Code, w.Body.String())
	}
}

func TestSetHouseBlinds_NoSessionIs503(t *testing.T) {
	auto := &mockAutomation{blindsErr: gateway.ErrNotLoggedIn}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Automation: auto}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/v1/house/blinds", `{"command":"UP"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d (body=%s)", w.Code, w.Body.String())
	}
}
