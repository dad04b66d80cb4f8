package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli/credstore"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *credstore.Memory) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := credstore.NewMemory()
	return New(server.URL, store), store
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(Identity{UserID: 7, Username: "alice", Roles: []string{"USER"}})
	})
	if err := store.Save(c.BaseURL(), credstore.Record{Token: "abc"}); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Me(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
}

func TestNoTokenSendsUnauthenticated(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(Identity{})
	})

	if _, err := c.Me(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestUnauthorizedClearsCredentialsAndNotifies(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid or expired token"}`))
	})
	if err := store.Save(c.BaseURL(), credstore.Record{Token: "stale"}); err != nil {
		t.Fatal(err)
	}

	var notified bool
	c.OnAuthFailure(func() { notified = true })

	_, err := c.Me()
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if !notified {
		t.Error("auth failure hook was not invoked")
	}
	if _, err := store.Load(c.BaseURL()); !errors.Is(err, credstore.ErrNotFound) {
		t.Errorf("expected credentials cleared, got %v", err)
	}
}

func TestForbiddenLeavesCredentialsAlone(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "admin access required"}`))
	})
	if err := store.Save(c.BaseURL(), credstore.Record{Token: "abc"}); err != nil {
		t.Fatal(err)
	}

	var notified bool
	c.OnAuthFailure(func() { notified = true })

	_, err := c.Users()
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if errors.Is(err, ErrSessionExpired) {
		t.Error("a 403 must not be conflated with session expiry")
	}
	if notified {
		t.Error("a 403 must not trigger the auth failure hook")
	}

	rec, loadErr := store.Load(c.BaseURL())
	if loadErr != nil || rec.Token != "abc" {
		t.Errorf("credentials must survive a 403, got %+v, %v", rec, loadErr)
	}
}

func TestNetworkErrorPassesThrough(t *testing.T) {
	store := credstore.NewMemory()
	c := New("http://127.0.0.1:1", store) // nothing listens here
	if err := store.Save(c.BaseURL(), credstore.Record{Token: "abc"}); err != nil {
		t.Fatal(err)
	}

	_, err := c.Me()
	if err == nil {
		t.Fatal("expected a transport error")
	}
	if errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrForbidden) {
		t.Errorf("transport failure misclassified: %v", err)
	}

	rec, loadErr := store.Load(c.BaseURL())
	if loadErr != nil || rec.Token != "abc" {
		t.Errorf("credentials must survive a transport failure, got %+v, %v", rec, loadErr)
	}
}

func TestServerErrorIncludesBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error": "insufficient balance"}`))
	})

	_, err := c.Withdraw("ACC-1", "100.00", 7)
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := err.Error(); got != "request failed (status 409): insufficient balance" {
		t.Errorf("unexpected error message: %q", got)
	}
}

func TestLoginFailureDoesNotTouchStore(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid username or password"}`))
	})
	if err := store.Save(c.BaseURL(), credstore.Record{Token: "abc"}); err != nil {
		t.Fatal(err)
	}

	_, err := c.Login("alice", "wrong")
	if err == nil {
		t.Fatal("expected login to fail")
	}
	if errors.Is(err, ErrSessionExpired) {
		t.Error("a login rejection is bad credentials, not an expired session")
	}
	if rec, loadErr := store.Load(c.BaseURL()); loadErr != nil || rec.Token != "abc" {
		t.Errorf("login failure must not clear stored credentials: %+v, %v", rec, loadErr)
	}
}

func TestLoginSuccess(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(LoginResponse{
			Token: "fresh-token", UserID: 7, Username: req.Username, Roles: []string{"USER"},
		})
	})

	resp, err := c.Login("alice", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Token != "fresh-token" || resp.UserID != 7 || resp.Username != "alice" {
		t.Errorf("unexpected response: %+v", resp)
	}
}
