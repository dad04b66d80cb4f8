// Package session holds the single authoritative in-memory session for the
// client and keeps it in step with the durable credential record. The
// session is mutated through exactly two operations, SetCredentials and
// Logout; everything else observes it read-only.
package session

import (
	"sync"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli/credstore"
)

// State describes where the session is in its lifecycle.
type State int

const (
	// Anonymous: no token, no user. Initial state, and the state after
	// logout or a failed verification.
	Anonymous State = iota
	// Pending: a persisted token exists but the server has not confirmed
	// the identity yet. Access control treats this as unauthorized.
	Pending
	// Authenticated: token and server-confirmed identity are both present.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// User is the server-confirmed identity of the current session.
type User struct {
	UserID   int64
	Username string
	Roles    []string
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Snapshot is a consistent read of the session. Observers always see a
// fully updated session, never a partial write.
type Snapshot struct {
	Token string
	User  *User
}

// State derives the lifecycle state from the snapshot contents.
func (s Snapshot) State() State {
	switch {
	case s.User != nil:
		return Authenticated
	case s.Token != "":
		return Pending
	default:
		return Anonymous
	}
}

// Container is the process-wide session holder. It owns the in-memory
// session and writes the persisted credential record through the store as
// a side effect of every mutation.
type Container struct {
	mu        sync.RWMutex
	token     string
	user      *User
	store     credstore.Store
	serverURL string
	subs      []func(Snapshot)
	restored  bool
}

// New creates a session container bound to one server's credential record.
func New(store credstore.Store, serverURL string) *Container {
	return &Container{store: store, serverURL: serverURL}
}

// SetCredentials replaces the whole session with a confirmed identity and
// persists the credential record. It never fails: a storage write error
// only costs the user a re-login on the next invocation, so it is not
// surfaced here.
func (c *Container) SetCredentials(token string, userID int64, username string, roles []string) {
	c.mu.Lock()
	c.token = token
	c.user = &User{UserID: userID, Username: username, Roles: append([]string(nil), roles...)}
	_ = c.store.Save(c.serverURL, credstore.Record{
		Token:    token,
		Username: username,
		Roles:    roles,
	})
	snap := c.snapshotLocked()
	subs := c.subs
	c.mu.Unlock()

	notify(subs, snap)
}

// Logout clears the session and removes the persisted record. Calling it
// while already logged out is a no-op.
func (c *Container) Logout() {
	c.mu.Lock()
	if c.token == "" && c.user == nil {
		c.mu.Unlock()
		return
	}
	c.token = ""
	c.user = nil
	_ = c.store.Delete(c.serverURL)
	snap := c.snapshotLocked()
	subs := c.subs
	c.mu.Unlock()

	notify(subs, snap)
}

// Snapshot returns a consistent copy of the current session.
func (c *Container) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// State returns the current lifecycle state.
func (c *Container) State() State {
	return c.Snapshot().State()
}

// Subscribe registers an observer that is called after every state
// transition with the resulting snapshot.
func (c *Container) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// beginPending installs a not-yet-verified token, moving the session into
// Pending. Only the bootstrapper uses this.
func (c *Container) beginPending(token string) {
	c.mu.Lock()
	c.token = token
	c.user = nil
	snap := c.snapshotLocked()
	subs := c.subs
	c.mu.Unlock()

	notify(subs, snap)
}

func (c *Container) snapshotLocked() Snapshot {
	snap := Snapshot{Token: c.token}
	if c.user != nil {
		u := *c.user
		u.Roles = append([]string(nil), c.user.Roles...)
		snap.User = &u
	}
	return snap
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
