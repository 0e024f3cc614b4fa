package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"levitt_bridge/internal/logger"

	"github.com/google/uuid"
)

// SessionState tracks the authentication state machine:
// LoggedOut --login(success)--> LoggedIn --logout--> LoggedOut.
// A failed login never leaves partial state behind.
type SessionState int

const (
	LoggedOut SessionState = iota
	Authenticating
	LoggedIn
)

func (s SessionState) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case LoggedIn:
		return "logged_in"
	default:
		return "logged_out"
	}
}

// The login form's submit button carries a literal value the gateway's HTML
// expects to see among the POSTed fields.
const loginSubmitValue = "Conectar"

// SessionManager owns the single active session: the browser-shaped login
// handshake, the opaque session identifier, and logout. The identifier is
// conceptually a cookie value; once established it rides on every request
// through the transport.
type SessionManager struct {
	transport *Transport
	log       *logger.Logger

	mu        sync.RWMutex
	sessionID string
	state     SessionState
}

func NewSessionManager(transport *Transport, log *logger.Logger) *SessionManager {
	return &SessionManager{transport: transport, log: log}
}

// Login runs the three-request handshake: fetch the main page for an
// initial session context, open the auth section scoped to that session,
// then POST the credentials as the login form would. Any failure resolves
// to false; login problems are expected operational conditions, not faults.
func (s *SessionManager) Login(ctx context.Context, username, password string) bool {
	s.setState("", Authenticating)

	base := s.transport.BaseURL()

	main, err := s.transport.Get(ctx, base+"/main.app", "")
	if err != nil || !main.Success() {
		s.failLogin("main page unreachable", err, main)
		return false
	}

	// The gateway usually hands out a SessionId cookie here; when it does
	// not, it accepts a client-picked identifier, so synthesize one.
	sessionID := extractSessionID(main.Header)
	if sessionID == "" {
		sessionID = uuid.NewString()
		s.log.Debugw("gateway_session_synthesized", "session_id", sessionID)
	}

	authURL := authPageURL(base, sessionID)
	auth, err := s.transport.Get(ctx, authURL, "")
	if err != nil || !auth.Success() {
		s.failLogin("auth section unreachable", err, auth)
		return false
	}

	form := url.Values{}
	form.Set("user", username)
	form.Set("pwd", password)
	form.Set("login", loginSubmitValue)

	login, err := s.transport.PostForm(ctx, authURL, form)
	if err != nil || !login.Success() {
		s.failLogin("credential post rejected", err, login)
		return false
	}

	// The gateway may rotate the session on successful login; adopt the
	// rotated identifier when present, else keep the original.
	if rotated := extractSessionID(login.Header); rotated != "" {
		sessionID = rotated
	}

	s.setState(sessionID, LoggedIn)
	s.transport.SetSessionCookie(sessionID)
	s.log.Infow("gateway_login_ok", "session_id", sessionID)
	return true
}

// IsLoggedIn is true iff a non-empty session identifier is held.
func (s *SessionManager) IsLoggedIn() bool {
	return s.SessionID() != ""
}

// SessionID returns the current session identifier, empty when logged out.
func (s *SessionManager) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// State returns the current authentication state.
func (s *SessionManager) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Logout performs a best-effort logout request and always clears the
// session, whatever the gateway answers.
func (s *SessionManager) Logout(ctx context.Context) {
	id := s.SessionID()
	if id != "" {
		logoutURL := fmt.Sprintf("%s/logout?sessionId=%s", s.transport.BaseURL(), id)
		if _, err := s.transport.Get(ctx, logoutURL, ""); err != nil {
			s.log.Warnw("gateway_logout_request_failed", "err", err)
		}
	}
	s.setState("", LoggedOut)
	s.transport.SetSessionCookie("")
	s.log.Infow("gateway_logged_out")
}

// AuthPageURL is the session's auth page; the dialog protocol uses it as
// the referer of its first step.
func (s *SessionManager) AuthPageURL() string {
	return authPageURL(s.transport.BaseURL(), s.SessionID())
}

func (s *SessionManager) setState(sessionID string, state SessionState) {
	s.mu.Lock()
	s.sessionID = sessionID
	s.state = state
	s.mu.Unlock()
}

func (s *SessionManager) failLogin(reason string, err error, resp *Response) {
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	s.log.Errorw("gateway_login_failed", "reason", reason, "status", status, "err", err)
	s.setState("", LoggedOut)
	s.transport.SetSessionCookie("")
}

func authPageURL(base, sessionID string) string {
	return fmt.Sprintf("%s/main.app?SessionId=%s&section=auth", base, sessionID)
}

// extractSessionID locates the SessionId token in a Set-Cookie header and
// takes the substring up to the next ';' or end of string. The gateway does
// not emit a spec-conformant cookie, so this stays a plain string scan.
func extractSessionID(header http.Header) string {
	for _, cookie := range header.Values("Set-Cookie") {
		idx := strings.Index(cookie, "SessionId=")
		if idx == -1 {
			continue
		}
		value := cookie[idx+len("SessionId="):]
		if end := strings.IndexByte(value, ';'); end != -1 {
			value = value[:end]
		}
		return value
	}
	return ""
}
