// Package access gates commands by required role. The decision model is
// deliberately asymmetric: a missing or unverified session sends the user
// to login, while a valid session with the wrong role lands on the
// non-privileged default view. An authenticated user is never bounced
// back to login.
package access

import "github.com/tellerdesk-dev/tellerdesk/internal/cli/session"

// Decision is the outcome of a guard check.
type Decision int

const (
	// Allow grants access to the guarded command.
	Allow Decision = iota
	// DenyToLogin rejects an anonymous or pending session.
	DenyToLogin
	// DenyToDefault rejects an authenticated session whose roles do not
	// intersect the requirement.
	DenyToDefault
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyToLogin:
		return "deny-to-login"
	default:
		return "deny-to-default"
	}
}

// Guard is a role requirement, optionally nested under a parent guard.
// A child is only consulted when every ancestor already allowed; the
// first denial on the path wins.
type Guard struct {
	parent *Guard
	roles  []string
}

// Require builds a top-level guard allowing any of the given roles.
func Require(roles ...string) *Guard {
	return &Guard{roles: roles}
}

// Child derives a nested guard evaluated only after this one allows.
func (g *Guard) Child(roles ...string) *Guard {
	return &Guard{parent: g, roles: roles}
}

// Check evaluates the guard chain against a session snapshot.
func (g *Guard) Check(snap session.Snapshot) Decision {
	if g.parent != nil {
		if d := g.parent.Check(snap); d != Allow {
			return d
		}
	}

	// Pending counts as unauthorized: the token has not been verified yet.
	if snap.State() != session.Authenticated {
		return DenyToLogin
	}

	for _, role := range g.roles {
		if snap.User.HasRole(role) {
			return Allow
		}
	}
	return DenyToDefault
}
