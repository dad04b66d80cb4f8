package credstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "tellerdesk-cli"
)

// ErrNotFound is returned when no credential record is stored for a server.
// Malformed records are reported the same way: an unreadable record is
// treated as no record at all.
var ErrNotFound = errors.New("no stored credentials")

// Record is the durable credential record for one server. Token is the
// bearer credential; Username and Roles are a cached copy of the identity
// for display only. Authorization decisions never trust them; the session
// is always re-verified against the server on startup.
type Record struct {
	Token    string   `json:"token"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// getKeyringKey returns a unique key for storing credentials per server
func getKeyringKey(serverURL string) string {
	return fmt.Sprintf("session-%s", serverURL)
}

// Save persists the credential record securely in the OS keychain/credential manager
func Save(serverURL string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := keyring.Set(service, getKeyringKey(serverURL), string(data)); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Load retrieves the credential record from the OS keychain/credential manager
func Load(serverURL string) (Record, error) {
	raw, err := keyring.Get(service, getKeyringKey(serverURL))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("failed to load credentials: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.Token == "" {
		// Corrupt or partial record: behave as if nothing was stored.
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Delete removes the credential record from the OS keychain/credential manager
func Delete(serverURL string) error {
	if err := keyring.Delete(service, getKeyringKey(serverURL)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}
