package session

import (
	"errors"
	"testing"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli/credstore"
)

const testServer = "https://bank.example.com"

func TestSetCredentialsUpdatesSessionAndStore(t *testing.T) {
	store := credstore.NewMemory()
	c := New(store, testServer)

	c.SetCredentials("abc", 7, "alice", []string{"USER"})

	snap := c.Snapshot()
	if snap.State() != Authenticated {
		t.Fatalf("expected authenticated state, got %v", snap.State())
	}
	if snap.Token != "abc" {
		t.Errorf("expected token abc, got %q", snap.Token)
	}
	if snap.User == nil || snap.User.UserID != 7 || snap.User.Username != "alice" {
		t.Errorf("unexpected user: %+v", snap.User)
	}
	if !snap.User.HasRole("USER") || snap.User.HasRole("ADMIN") {
		t.Errorf("unexpected roles: %v", snap.User.Roles)
	}

	rec, err := store.Load(testServer)
	if err != nil {
		t.Fatalf("expected persisted record: %v", err)
	}
	if rec.Token != "abc" || rec.Username != "alice" {
		t.Errorf("unexpected persisted record: %+v", rec)
	}
}

func TestSetCredentialsReplacesWholeSession(t *testing.T) {
	store := credstore.NewMemory()
	c := New(store, testServer)

	c.SetCredentials("abc", 7, "alice", []string{"USER"})
	c.SetCredentials("def", 9, "bob", []string{"ADMIN"})

	snap := c.Snapshot()
	if snap.Token != "def" || snap.User.Username != "bob" {
		t.Errorf("expected full replacement, got %+v", snap)
	}
	if snap.User.HasRole("USER") {
		t.Errorf("stale role survived replacement: %v", snap.User.Roles)
	}
}

func TestLogoutClearsSessionAndStore(t *testing.T) {
	store := credstore.NewMemory()
	c := New(store, testServer)

	c.SetCredentials("abc", 7, "alice", []string{"USER"})
	c.Logout()

	if c.State() != Anonymous {
		t.Errorf("expected anonymous after logout, got %v", c.State())
	}
	if _, err := store.Load(testServer); !errors.Is(err, credstore.ErrNotFound) {
		t.Errorf("expected record removed, got %v", err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	store := credstore.NewMemory()
	c := New(store, testServer)

	c.SetCredentials("abc", 7, "alice", []string{"USER"})
	c.Logout()
	c.Logout()
	c.Logout()

	if c.State() != Anonymous {
		t.Errorf("expected anonymous, got %v", c.State())
	}
}

func TestLogoutWhenAnonymousNotifiesNobody(t *testing.T) {
	store := credstore.NewMemory()
	c := New(store, testServer)

	calls := 0
	c.Subscribe(func(Snapshot) { calls++ })

	c.Logout()
	if calls != 0 {
		t.Errorf("logout of an anonymous session should not broadcast, got %d calls", calls)
	}
}

func TestSubscribersSeeFullyUpdatedState(t *testing.T) {
	store := credstore.NewMemory()
	c := New(store, testServer)

	var seen []Snapshot
	c.Subscribe(func(s Snapshot) { seen = append(seen, s) })

	c.SetCredentials("abc", 7, "alice", []string{"USER"})
	c.Logout()

	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if seen[0].State() != Authenticated || seen[0].User.Username != "alice" {
		t.Errorf("first notification incomplete: %+v", seen[0])
	}
	if seen[1].State() != Anonymous {
		t.Errorf("second notification should be anonymous: %+v", seen[1])
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	store := credstore.NewMemory()
	c := New(store, testServer)
	c.SetCredentials("abc", 7, "alice", []string{"USER"})

	snap := c.Snapshot()
	snap.User.Roles[0] = "ADMIN"
	snap.User.Username = "mallory"

	fresh := c.Snapshot()
	if fresh.User.Username != "alice" || fresh.User.Roles[0] != "USER" {
		t.Errorf("snapshot mutation leaked into the container: %+v", fresh.User)
	}
}

func TestPendingStateDerivation(t *testing.T) {
	store := credstore.NewMemory()
	c := New(store, testServer)

	c.beginPending("abc")

	snap := c.Snapshot()
	if snap.State() != Pending {
		t.Errorf("token without user should be pending, got %v", snap.State())
	}
	if snap.User != nil {
		t.Errorf("pending session must not carry a user: %+v", snap.User)
	}
}
