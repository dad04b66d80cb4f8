package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	cfg := &Config{
		Servers: []Server{
			{Alias: "head-office", URL: "https://bank.example.com"},
			{Alias: "sandbox", URL: "http://localhost:8080"},
		},
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(loaded.Servers))
	}
	if loaded.Servers[0].Alias != "head-office" || loaded.Servers[1].URL != "http://localhost:8080" {
		t.Errorf("unexpected servers: %+v", loaded.Servers)
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func TestFindConfigFileSearchesParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, ConfigFileName)
	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	t.Chdir(nested)

	found, err := FindConfigFile()
	if err != nil {
		t.Fatalf("expected config to be found: %v", err)
	}
	// Resolve symlinks: on some systems TempDir paths go through /private.
	wantReal, _ := filepath.EvalSymlinks(path)
	foundReal, _ := filepath.EvalSymlinks(found)
	if foundReal != wantReal {
		t.Errorf("found %q, want %q", foundReal, wantReal)
	}
}

func TestGetServerByAlias(t *testing.T) {
	cfg := &Config{Servers: []Server{{Alias: "sandbox", URL: "http://localhost:8080"}}}

	server, err := cfg.GetServerByAlias("sandbox")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.URL != "http://localhost:8080" {
		t.Errorf("unexpected server: %+v", server)
	}

	if _, err := cfg.GetServerByAlias("missing"); err == nil {
		t.Error("expected an error for unknown alias")
	}
}

func TestGetDefaultServer(t *testing.T) {
	empty := &Config{}
	if _, err := empty.GetDefaultServer(); err == nil {
		t.Error("expected an error with no servers configured")
	}

	cfg := &Config{Servers: []Server{{Alias: "a"}, {Alias: "b"}}}
	server, err := cfg.GetDefaultServer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.Alias != "a" {
		t.Errorf("default server should be the first one, got %+v", server)
	}
}
