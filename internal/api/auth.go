package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkordes/travel-journal/internal/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a session token and establishes it in the
// session. Any failure — bad credentials, transport trouble, or a missing
// token in the response — is reported as domain.ErrAuth.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	return c.obtainToken(ctx, "/api/auth/login", loginRequest{Username: username, Password: password})
}

// Register creates an account and establishes the issued token in the
// session. A duplicate account or any other rejection is reported as
// domain.ErrAuth carrying the server's message when one is present.
func (c *Client) Register(ctx context.Context, username, email, password string) (string, error) {
	return c.obtainToken(ctx, "/api/auth/register", registerRequest{Username: username, Email: email, Password: password})
}

// Logout clears the stored session token. There is no server-side call; the
// token simply stops being presented.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}

// obtainToken posts credentials to an auth endpoint and stores the returned
// token. Unlike the rest of the client these calls are unauthenticated.
func (c *Client) obtainToken(ctx context.Context, path string, body any) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("api: encode %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("api: build %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrAuth, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg := serverMessage(resp.Body); msg != "" {
			return "", fmt.Errorf("%w: %s", domain.ErrAuth, msg)
		}
		return "", fmt.Errorf("%w: %s: status %d", domain.ErrAuth, path, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: %s: decode response: %v", domain.ErrAuth, path, err)
	}
	if tr.Token == "" {
		return "", fmt.Errorf("%w: token not received from server", domain.ErrAuth)
	}

	if err := c.session.Establish(ctx, tr.Token); err != nil {
		return "", err
	}
	return tr.Token, nil
}
