package credstore

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestSaveLoadDelete(t *testing.T) {
	keyring.MockInit()

	rec := Record{Token: "abc", Username: "alice", Roles: []string{"USER"}}
	if err := Save("https://bank.example.com", rec); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load("https://bank.example.com")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Token != "abc" || loaded.Username != "alice" {
		t.Errorf("unexpected record: %+v", loaded)
	}
	if len(loaded.Roles) != 1 || loaded.Roles[0] != "USER" {
		t.Errorf("unexpected roles: %v", loaded.Roles)
	}

	if err := Delete("https://bank.example.com"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := Load("https://bank.example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	keyring.MockInit()

	if _, err := Load("https://nowhere.example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadMalformedRecord(t *testing.T) {
	keyring.MockInit()

	// A corrupt record must behave exactly like an absent one.
	if err := keyring.Set(service, getKeyringKey("https://bank.example.com"), "{not json"); err != nil {
		t.Fatalf("failed to plant corrupt record: %v", err)
	}
	if _, err := Load("https://bank.example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for malformed record, got %v", err)
	}
}

func TestLoadEmptyToken(t *testing.T) {
	keyring.MockInit()

	if err := keyring.Set(service, getKeyringKey("https://bank.example.com"), `{"token":""}`); err != nil {
		t.Fatalf("failed to plant record: %v", err)
	}
	if _, err := Load("https://bank.example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty token, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	keyring.MockInit()

	if err := Delete("https://bank.example.com"); err != nil {
		t.Errorf("deleting a missing record should be a no-op, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()

	if _, err := m.Load("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := m.Save("a", Record{Token: "t"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	rec, err := m.Load("a")
	if err != nil || rec.Token != "t" {
		t.Errorf("unexpected load result: %+v, %v", rec, err)
	}

	if err := m.Delete("a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := m.Load("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
