package access

import (
	"testing"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli/session"
)

func authenticated(roles ...string) session.Snapshot {
	return session.Snapshot{
		Token: "abc",
		User:  &session.User{UserID: 7, Username: "alice", Roles: roles},
	}
}

func TestCheckDecisions(t *testing.T) {
	tests := []struct {
		name  string
		guard *Guard
		snap  session.Snapshot
		want  Decision
	}{
		{
			name:  "anonymous goes to login",
			guard: Require("USER", "ADMIN"),
			snap:  session.Snapshot{},
			want:  DenyToLogin,
		},
		{
			name:  "pending token is still unauthorized",
			guard: Require("USER", "ADMIN"),
			snap:  session.Snapshot{Token: "abc"},
			want:  DenyToLogin,
		},
		{
			name:  "matching role allows",
			guard: Require("USER", "ADMIN"),
			snap:  authenticated("USER"),
			want:  Allow,
		},
		{
			name:  "admin requirement allows admin",
			guard: Require("ADMIN"),
			snap:  authenticated("ADMIN"),
			want:  Allow,
		},
		{
			name:  "valid user without the role goes to the default view",
			guard: Require("ADMIN"),
			snap:  authenticated("USER"),
			want:  DenyToDefault,
		},
		{
			name:  "user-only guard denies a pure admin to default",
			guard: Require("USER"),
			snap:  authenticated("ADMIN"),
			want:  DenyToDefault,
		},
		{
			name:  "empty requirement never intersects",
			guard: Require(),
			snap:  authenticated("USER", "ADMIN"),
			want:  DenyToDefault,
		},
		{
			name:  "user with no roles at all",
			guard: Require("USER"),
			snap:  authenticated(),
			want:  DenyToDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.guard.Check(tt.snap); got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNestedGuardParentDeniesFirst(t *testing.T) {
	staff := Require("USER", "ADMIN")
	admin := staff.Child("ADMIN")

	// Anonymous: the ancestor's login denial wins before the child's role
	// check is ever considered.
	if got := admin.Check(session.Snapshot{}); got != DenyToLogin {
		t.Errorf("expected DenyToLogin from ancestor, got %v", got)
	}

	// Authenticated USER passes the staff guard, then fails the admin one.
	if got := admin.Check(authenticated("USER")); got != DenyToDefault {
		t.Errorf("expected DenyToDefault from child, got %v", got)
	}

	// ADMIN satisfies the whole chain.
	if got := admin.Check(authenticated("ADMIN")); got != Allow {
		t.Errorf("expected Allow, got %v", got)
	}
}

func TestNestedGuardShortCircuit(t *testing.T) {
	// A user denied at the middle level is reported with the middle
	// level's decision, regardless of what the leaf requires.
	staff := Require("USER", "ADMIN")
	admin := staff.Child("ADMIN")
	leaf := admin.Child("USER")

	if got := leaf.Check(authenticated("USER")); got != DenyToDefault {
		t.Errorf("expected middle guard denial, got %v", got)
	}
}
