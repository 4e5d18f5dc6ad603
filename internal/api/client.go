// Package api wraps the remote travel journal REST endpoints in typed
// request/response functions with uniform error signaling.
//
// Every authenticated call reads the session for the bearer token before
// doing anything else; a missing token fails fast with domain.ErrAuth and no
// request is sent. Non-success statuses are mapped onto the domain error
// taxonomy so callers can branch with errors.Is. There are no retries and no
// local caching — the displayed state is always re-fetched from the server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pkordes/travel-journal/internal/domain"
	"github.com/pkordes/travel-journal/internal/session"
)

// maxResponseBytes caps how much of any response body is read. The server is
// trusted but a runaway body should not exhaust a phone's memory.
const maxResponseBytes = 1 << 20

// Client talks to the journal server. Construct with New; the zero value is
// not usable.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	session *session.Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. The default has a
// 15 second timeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger wraps the client's transport so every request is logged as one
// structured line (method, path, status, duration).
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		base := c.http.Transport
		c.http.Transport = &loggingTransport{base: base, log: log}
	}
}

// New constructs a Client for the server at baseURL. sess supplies the bearer
// token for authenticated calls and receives the token issued by Login and
// Register.
func New(baseURL string, sess *session.Session, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api.New: parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api.New: base URL %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 15 * time.Second},
		session: sess,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// endpoint resolves a server-relative path (and optional query) against the
// base URL.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path, _ = url.JoinPath(u.Path, path)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// PhotoURL resolves a photo's opaque imageUrl into an absolute URL for
// display.
func (c *Client) PhotoURL(imageURL string) string {
	return c.endpoint("/photos/"+imageURL, nil)
}

// doJSON issues a request with an optional JSON body and decodes a JSON
// response into out (which may be nil). When authed is true the session token
// is attached; a missing token aborts before any request is sent.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, nil), reader)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if authed {
		if err := c.authorize(ctx, req); err != nil {
			return err
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if out != nil {
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
			return fmt.Errorf("%w: %s %s: decode response: %v", domain.ErrNetwork, method, path, err)
		}
	}
	return nil
}

// doDelete issues an authenticated DELETE and requires the server's explicit
// 204 acknowledgement. Any other status — even a nominal success like 200 —
// is an error, so callers never treat an ambiguous response as a deletion.
func (c *Client) doDelete(ctx context.Context, path string, query url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint(path, query), nil)
	if err != nil {
		return fmt.Errorf("api: build DELETE %s: %w", path, err)
	}
	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: DELETE %s: %v", domain.ErrNetwork, path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("DELETE %s: %w: status %d", path, domain.ErrAuth, resp.StatusCode)
	case http.StatusNotFound:
		return fmt.Errorf("DELETE %s: %w", path, domain.ErrNotFound)
	}
	return fmt.Errorf("%w: DELETE %s: expected 204, got %d", domain.ErrNetwork, path, resp.StatusCode)
}

// authorize attaches the bearer token, failing fast with domain.ErrAuth when
// none is stored.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	token, err := c.session.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// errorResponse matches the server's error envelope.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// statusError maps a non-2xx response onto the domain error taxonomy.
// Validation responses carry the server's message so the form can show it.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d", domain.ErrAuth, resp.StatusCode)
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if msg := serverMessage(resp.Body); msg != "" {
			return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
		}
		return fmt.Errorf("%w: rejected by server (status %d)", domain.ErrValidation, resp.StatusCode)
	}
	return fmt.Errorf("%w: unexpected status %d", domain.ErrNetwork, resp.StatusCode)
}

// serverMessage extracts the human-readable message from an error body,
// accepting both {"error":{"message":...}} and a flat {"message":...}.
func serverMessage(body io.Reader) string {
	var er errorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxResponseBytes)).Decode(&er); err != nil {
		return ""
	}
	if er.Error.Message != "" {
		return er.Error.Message
	}
	return er.Message
}
