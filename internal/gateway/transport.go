package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// The gateway's embedded web server is slow under load; the original
// browser sessions were observed to take tens of seconds on bad days.
const requestTimeout = 30 * time.Second

// Response is the subset of an HTTP response the protocol layer cares
// about: status, headers (for Set-Cookie) and the full body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Success reports a 2xx status. The gateway is plain HTTP/1.1 and never
// redirects within the emulated flows.
func (r *Response) Success() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Transport is the only component that touches the network. It issues
// browser-shaped requests against the gateway and, once a session is
// established, attaches the session cookie to every request, the way a real
// browser would keep it for the whole tab lifetime.
type Transport struct {
	baseURL string
	client  *http.Client

	mu     sync.RWMutex
	cookie string
}

// NewTransport builds a transport for a plain `host[:port]` address. The
// observed protocol is plaintext HTTP; there is no TLS to configure.
func NewTransport(address string) *Transport {
	return &Transport{
		baseURL: "http://" + strings.TrimPrefix(address, "http://"),
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// BaseURL returns the gateway root, without a trailing slash.
func (t *Transport) BaseURL() string { return t.baseURL }

// SetSessionCookie installs the persistent session cookie sent with every
// subsequent request. An empty id clears it.
func (t *Transport) SetSessionCookie(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sessionID == "" {
		t.cookie = ""
		return
	}
	t.cookie = fmt.Sprintf("SessionId=%s; Path=/", sessionID)
}

// Get performs a GET against rawURL. referer may be empty; the dialog
// protocol depends on referer chaining, so callers pass the previous step's
// URL explicitly.
func (t *Transport) Get(ctx context.Context, rawURL, referer string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build GET %s: %w", rawURL, err)
	}
	return t.do(req, referer)
}

// PostForm performs a url-encoded form POST, the shape the auth page and
// the generic command endpoint expect.
func (t *Transport) PostForm(ctx context.Context, rawURL string, form url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build POST %s: %w", rawURL, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return t.do(req, "")
}

// Post performs a POST with a caller-assembled body. The dialog submit step
// uses this with a hand-built multipart payload whose byte layout must not
// be touched.
func (t *Transport) Post(ctx context.Context, rawURL, contentType string, body []byte, referer string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build POST %s: %w", rawURL, err)
	}
	req.Header.Set("Content-Type", contentType)
	return t.do(req, referer)
}

func (t *Transport) do(req *http.Request, referer string) (*Response, error) {
	t.mu.RLock()
	cookie := t.cookie
	t.mu.RUnlock()
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s %s: %w", req.Method, req.URL, err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}
