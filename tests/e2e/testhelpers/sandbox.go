// Package testhelpers boots an in-process sandbox bank for end-to-end
// tests: the real HTTP server over a throwaway SQLite file, plus an API
// client wired through an in-memory credential store the way the CLI
// wires it.
package testhelpers

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli/client"
	"github.com/tellerdesk-dev/tellerdesk/internal/cli/credstore"
	"github.com/tellerdesk-dev/tellerdesk/internal/config"
	"github.com/tellerdesk-dev/tellerdesk/internal/server"
)

// Sandbox is one in-process bank plus a client session against it
type Sandbox struct {
	HTTP  *httptest.Server
	Store *credstore.Memory
	API   *client.Client
}

// Start boots a sandbox seeded with the built-in fixture (bank, alice,
// admin) and tears it down when the test finishes.
func Start(t *testing.T) *Sandbox {
	t.Helper()

	cfg := &config.Config{
		HTTP:     config.HTTPConfig{Addr: ":0"},
		Database: config.DatabaseConfig{URL: filepath.Join(t.TempDir(), "sandbox.sqlite")},
		Auth:     config.AuthConfig{JWTSecret: "e2e-secret"},
	}

	srv, err := server.New(cfg, zerolog.Nop(), "e2e")
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	store := credstore.NewMemory()
	return &Sandbox{
		HTTP:  ts,
		Store: store,
		API:   client.New(ts.URL, store),
	}
}

// LoginAs authenticates and persists the credential record, which is what
// the login command does.
func (s *Sandbox) LoginAs(t *testing.T, username, password string) *client.LoginResponse {
	t.Helper()

	resp, err := s.API.Login(username, password)
	require.NoError(t, err)

	require.NoError(t, s.Store.Save(s.API.BaseURL(), credstore.Record{
		Token:    resp.Token,
		Username: resp.Username,
		Roles:    resp.Roles,
	}))
	return resp
}

// Logout drops the persisted credential record
func (s *Sandbox) Logout(t *testing.T) {
	t.Helper()
	require.NoError(t, s.Store.Delete(s.API.BaseURL()))
}
