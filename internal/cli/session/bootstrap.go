package session

// VerifyFunc checks the persisted token against the server and returns the
// identity it belongs to. It must be issued through the authenticated
// gateway so the token under test is the one on the wire.
type VerifyFunc func() (*User, error)

// Bootstrap reconciles the persisted credential record with server truth.
// It runs at most once per process:
//
//  1. No record: the session stays anonymous, no network call is made.
//  2. Record present: the session enters Pending, then a single identity
//     check runs. Success promotes the session to Authenticated with the
//     verified identity; any failure, a rejected token as much as a
//     network error, deletes the record and returns the session to
//     anonymous. An unverifiable token is never trusted.
//
// The resulting state is returned.
func (c *Container) Bootstrap(verify VerifyFunc) State {
	c.mu.Lock()
	if c.restored {
		state := c.snapshotLocked().State()
		c.mu.Unlock()
		return state
	}
	c.restored = true
	c.mu.Unlock()

	rec, err := c.store.Load(c.serverURL)
	if err != nil || rec.Token == "" {
		return Anonymous
	}

	c.beginPending(rec.Token)

	user, err := verify()
	if err != nil {
		_ = c.store.Delete(c.serverURL)
		c.Logout()
		return Anonymous
	}

	c.SetCredentials(rec.Token, user.UserID, user.Username, user.Roles)
	return Authenticated
}
