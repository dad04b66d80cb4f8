package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli/access"
	"github.com/tellerdesk-dev/tellerdesk/internal/cli/client"
	"github.com/tellerdesk-dev/tellerdesk/internal/cli/config"
	"github.com/tellerdesk-dev/tellerdesk/internal/cli/credstore"
	"github.com/tellerdesk-dev/tellerdesk/internal/cli/serverselect"
	"github.com/tellerdesk-dev/tellerdesk/internal/cli/session"
)

// Role names as the bank API reports them.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// staffGuard gates every banking command behind a confirmed login;
// adminGuard nests the ADMIN requirement under it, so an anonymous user
// is sent to login by the outer guard before the role is even considered.
var (
	staffGuard = access.Require(RoleUser, RoleAdmin)
	adminGuard = staffGuard.Child(RoleAdmin)
)

// ErrLoginRequired aborts a command that needs a confirmed session.
var ErrLoginRequired = errors.New("not logged in. Please run 'tellerdesk login'")

// Package-wide singletons for one CLI invocation. store is swapped for an
// in-memory implementation in tests.
var (
	store credstore.Store = credstore.Default

	sess *session.Container
	api  *client.Client
)

// connect resolves the target server and builds the session container and
// API gateway bound to it. It does not touch the network.
func connect(serverAlias string) error {
	if sess != nil {
		return nil
	}

	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'tellerdesk init' to create a configuration file", err)
	}

	server, err := serverselect.ResolveServer(cfg, serverAlias)
	if err != nil {
		return err
	}
	if server.URL == "" {
		return fmt.Errorf("server URL is empty. Please edit tellerdesk.json and add a valid server URL")
	}

	// Session and gateway must key the credential record identically, so
	// normalize the configured URL once before constructing either.
	serverURL := strings.TrimRight(server.URL, "/")

	s := session.New(store, serverURL)
	a := client.New(serverURL, store)
	// A 401 on any call invalidates the in-memory session too.
	a.OnAuthFailure(s.Logout)

	sess, api = s, a
	return nil
}

// ensureSession connects and restores the persisted session, verifying the
// stored token against the server. The verification runs at most once per
// invocation; commands call this before any guarded work.
func ensureSession(serverAlias string) error {
	if err := connect(serverAlias); err != nil {
		return err
	}

	sess.Bootstrap(func() (*session.User, error) {
		id, err := api.Me()
		if err != nil {
			return nil, err
		}
		return &session.User{UserID: id.UserID, Username: id.Username, Roles: id.Roles}, nil
	})
	return nil
}

// runGuarded evaluates the guard against the current session and either
// runs fn or performs the redirect the decision calls for: login denials
// abort with ErrLoginRequired, role denials land on the account overview
// (the non-privileged default view) instead of an error.
func runGuarded(g *access.Guard, fn func() error) error {
	switch g.Check(sess.Snapshot()) {
	case access.Allow:
		return fn()
	case access.DenyToDefault:
		fmt.Println("You don't have access to this command. Showing your account overview instead.")
		fmt.Println()
		return showOverview()
	default:
		return ErrLoginRequired
	}
}

// showOverview prints the default landing view: the verified identity and
// the user's own accounts.
func showOverview() error {
	snap := sess.Snapshot()
	if snap.User == nil {
		return ErrLoginRequired
	}

	fmt.Printf("Signed in as %s (user %d)\n\n", snap.User.Username, snap.User.UserID)

	accounts, err := api.MyAccounts(snap.User.UserID)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Println("No accounts yet. Open one with: tellerdesk accounts open")
		return nil
	}

	printAccounts(accounts)
	return nil
}

// printAccounts renders accounts as a table
func printAccounts(accounts []client.Account) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tTYPE\tSTATUS\tBALANCE\tOPENED")
	fmt.Fprintln(w, "───────\t────\t──────\t───────\t──────")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Type, a.Status, a.Balance, a.CreatedAt)
	}
	w.Flush()
}

// parseID parses a numeric command-line argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: expected a number", arg)
	}
	return id, nil
}

// operatorID returns the current user's id, recorded on mutating calls.
func operatorID() int64 {
	snap := sess.Snapshot()
	if snap.User == nil {
		return 0
	}
	return snap.User.UserID
}
