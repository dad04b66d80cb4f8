// Package client is the authenticated gateway to the bank API. Every
// outbound call goes through one request path that attaches the persisted
// bearer token and classifies authentication failures uniformly: a 401
// invalidates the whole session, a 403 is an ordinary error for the
// caller, and transport failures pass through untouched.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli/credstore"
)

var (
	// ErrSessionExpired is returned when the server rejects the bearer
	// token. By the time the caller sees it, the persisted credentials are
	// already cleared; the only recovery is logging in again.
	ErrSessionExpired = errors.New("session expired: please run 'tellerdesk login'")

	// ErrForbidden is returned on a 403. The session itself is valid, the
	// user merely lacks the required role, so credentials are left alone.
	ErrForbidden = errors.New("permission denied")
)

// Client represents an HTTP client for the bank API
type Client struct {
	baseURL       string
	httpClient    *http.Client
	store         credstore.Store
	onAuthFailure func()
}

// New creates a new API client for the given server base URL, loading the
// bearer token through the given credential store.
func New(serverURL string, store credstore.Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		store:   store,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// OnAuthFailure registers a hook invoked after a 401 has cleared the
// persisted credentials. The CLI uses it to drop the in-memory session,
// the moral equivalent of the browser's hard redirect to the login page.
func (c *Client) OnAuthFailure(fn func()) {
	c.onAuthFailure = fn
}

// BaseURL returns the server base URL this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues one API request. body (if non-nil) is sent as JSON; out (if
// non-nil) receives the decoded JSON response.
func (c *Client) do(method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequest(method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Attach the bearer token when one is persisted. Calls made without a
	// token go out unauthenticated; gating those is the caller's job.
	if rec, err := c.store.Load(c.baseURL); err == nil && rec.Token != "" {
		req.Header.Set("Authorization", "Bearer "+rec.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failure. Not an authentication failure, so credentials
		// stay untouched and the caller decides what to do.
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// The server no longer accepts this session. Invalidate it
		// globally, not just for this request.
		_ = c.store.Delete(c.baseURL)
		if c.onAuthFailure != nil {
			c.onAuthFailure()
		}
		return ErrSessionExpired
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, readErrorBody(resp.Body))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// readErrorBody extracts a short error message from a failed response.
func readErrorBody(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 4096))

	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return apiErr.Error
	}
	return strings.TrimSpace(string(body))
}
