package session

import (
	"errors"
	"testing"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli/credstore"
)

func TestBootstrapWithoutTokenMakesNoCall(t *testing.T) {
	store := credstore.NewMemory()
	c := New(store, testServer)

	calls := 0
	state := c.Bootstrap(func() (*User, error) {
		calls++
		return nil, nil
	})

	if state != Anonymous {
		t.Errorf("expected anonymous, got %v", state)
	}
	if calls != 0 {
		t.Errorf("verification must not run without a persisted token, got %d calls", calls)
	}
}

func TestBootstrapSuccess(t *testing.T) {
	store := credstore.NewMemory()
	if err := store.Save(testServer, credstore.Record{Token: "abc"}); err != nil {
		t.Fatal(err)
	}
	c := New(store, testServer)

	var observedPending bool
	c.Subscribe(func(s Snapshot) {
		if s.State() == Pending {
			observedPending = true
		}
	})

	state := c.Bootstrap(func() (*User, error) {
		return &User{UserID: 7, Username: "alice", Roles: []string{"USER"}}, nil
	})

	if state != Authenticated {
		t.Fatalf("expected authenticated, got %v", state)
	}
	if !observedPending {
		t.Error("session should pass through pending while the check is in flight")
	}

	snap := c.Snapshot()
	if snap.Token != "abc" {
		t.Errorf("verified session must keep the persisted token, got %q", snap.Token)
	}
	if snap.User.UserID != 7 || snap.User.Username != "alice" || !snap.User.HasRole("USER") {
		t.Errorf("unexpected identity: %+v", snap.User)
	}
}

func TestBootstrapRejectedTokenFailsClosed(t *testing.T) {
	store := credstore.NewMemory()
	if err := store.Save(testServer, credstore.Record{Token: "stale"}); err != nil {
		t.Fatal(err)
	}
	c := New(store, testServer)

	state := c.Bootstrap(func() (*User, error) {
		return nil, errors.New("401 unauthorized")
	})

	if state != Anonymous {
		t.Errorf("expected anonymous after rejected token, got %v", state)
	}
	if _, err := store.Load(testServer); !errors.Is(err, credstore.ErrNotFound) {
		t.Errorf("rejected token must be removed from the store, got %v", err)
	}
}

func TestBootstrapNetworkErrorFailsClosed(t *testing.T) {
	store := credstore.NewMemory()
	if err := store.Save(testServer, credstore.Record{Token: "abc"}); err != nil {
		t.Fatal(err)
	}
	c := New(store, testServer)

	state := c.Bootstrap(func() (*User, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	if state != Anonymous {
		t.Errorf("an unverifiable token must not be trusted, got %v", state)
	}
	if _, err := store.Load(testServer); !errors.Is(err, credstore.ErrNotFound) {
		t.Errorf("expected record removed, got %v", err)
	}
}

func TestBootstrapRunsAtMostOnce(t *testing.T) {
	store := credstore.NewMemory()
	if err := store.Save(testServer, credstore.Record{Token: "abc"}); err != nil {
		t.Fatal(err)
	}
	c := New(store, testServer)

	calls := 0
	verify := func() (*User, error) {
		calls++
		return &User{UserID: 7, Username: "alice", Roles: []string{"USER"}}, nil
	}

	c.Bootstrap(verify)
	state := c.Bootstrap(verify)

	if calls != 1 {
		t.Errorf("expected a single verification call, got %d", calls)
	}
	if state != Authenticated {
		t.Errorf("second bootstrap must report the settled state, got %v", state)
	}
}

func TestBootstrapCachedIdentityIsNotTrusted(t *testing.T) {
	// The record may cache roles from a previous run; only the re-verified
	// identity counts.
	store := credstore.NewMemory()
	err := store.Save(testServer, credstore.Record{Token: "abc", Username: "alice", Roles: []string{"ADMIN"}})
	if err != nil {
		t.Fatal(err)
	}
	c := New(store, testServer)

	c.Bootstrap(func() (*User, error) {
		return &User{UserID: 7, Username: "alice", Roles: []string{"USER"}}, nil
	})

	snap := c.Snapshot()
	if snap.User.HasRole("ADMIN") {
		t.Errorf("stale cached role granted: %v", snap.User.Roles)
	}
}
