package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli/config"
)

// TestInitCommand_NewConfig tests creating a brand new config file
func TestInitCommand_NewConfig(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	err := runInit(nil, []string{"https://bank.example.com"})
	if err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	configPath := filepath.Join(tempDir, config.ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("tellerdesk.json was not created")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("failed to load created config: %v", err)
	}

	if len(cfg.Servers) != 1 {
		t.Errorf("expected 1 server, got %d", len(cfg.Servers))
	}
	if cfg.Servers[0].URL != "https://bank.example.com" {
		t.Errorf("expected URL 'https://bank.example.com', got '%s'", cfg.Servers[0].URL)
	}

	// First server gets the head-office alias
	if cfg.Servers[0].Alias != "head-office" {
		t.Errorf("expected alias 'head-office', got '%s'", cfg.Servers[0].Alias)
	}
}

// TestInitCommand_AddSecondServer tests adding a second server to existing config
func TestInitCommand_AddSecondServer(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	initialCfg := &config.Config{
		Servers: []config.Server{
			{URL: "https://bank.example.com", Alias: "head-office"},
		},
	}
	configPath := filepath.Join(tempDir, config.ConfigFileName)
	if err := config.Save(configPath, initialCfg); err != nil {
		t.Fatalf("failed to save initial config: %v", err)
	}

	if err := runInit(nil, []string{"https://sandbox.example.com"}); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if len(cfg.Servers) != 2 {
		t.Errorf("expected 2 servers, got %d", len(cfg.Servers))
	}

	// First server unchanged
	if cfg.Servers[0].URL != "https://bank.example.com" || cfg.Servers[0].Alias != "head-office" {
		t.Error("first server was modified")
	}

	// Second server gets a numbered alias
	if cfg.Servers[1].URL != "https://sandbox.example.com" {
		t.Errorf("expected second server URL 'https://sandbox.example.com', got '%s'", cfg.Servers[1].URL)
	}
	if cfg.Servers[1].Alias != "server-2" {
		t.Errorf("expected second server alias 'server-2', got '%s'", cfg.Servers[1].Alias)
	}
}

// TestInitCommand_DuplicateServer tests that duplicate URLs are detected
func TestInitCommand_DuplicateServer(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	initialCfg := &config.Config{
		Servers: []config.Server{
			{URL: "https://bank.example.com", Alias: "head-office"},
		},
	}
	configPath := filepath.Join(tempDir, config.ConfigFileName)
	if err := config.Save(configPath, initialCfg); err != nil {
		t.Fatalf("failed to save initial config: %v", err)
	}

	// Adding the same server again is a no-op, not an error
	if err := runInit(nil, []string{"https://bank.example.com"}); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Servers) != 1 {
		t.Errorf("expected 1 server (no duplicate), got %d", len(cfg.Servers))
	}
}

// TestInitCommand_MissingArgument tests that init requires a server URL
func TestInitCommand_MissingArgument(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := NewInitCmd()
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when no server URL provided, but got nil")
	}
}

// TestInitCommand_ConfigFileFormat tests that the config file is valid JSON
func TestInitCommand_ConfigFileFormat(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	if err := runInit(nil, []string{"https://bank.example.com"}); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tempDir, config.ConfigFileName))
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}

	var parsedConfig config.Config
	if err := json.Unmarshal(data, &parsedConfig); err != nil {
		t.Fatalf("config file is not valid JSON: %v", err)
	}
	if len(parsedConfig.Servers) != 1 {
		t.Errorf("expected 1 server in parsed config, got %d", len(parsedConfig.Servers))
	}
}

// TestInitCommand_PreservesExistingConfig tests that existing servers aren't lost
func TestInitCommand_PreservesExistingConfig(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	initialCfg := &config.Config{
		Servers: []config.Server{
			{URL: "https://prod.example.com", Alias: "custom-production"},
			{URL: "https://staging.example.com", Alias: "custom-staging"},
		},
	}
	configPath := filepath.Join(tempDir, config.ConfigFileName)
	if err := config.Save(configPath, initialCfg); err != nil {
		t.Fatalf("failed to save initial config: %v", err)
	}

	if err := runInit(nil, []string{"https://dev.example.com"}); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if len(cfg.Servers) != 3 {
		t.Errorf("expected 3 servers, got %d", len(cfg.Servers))
	}
	if cfg.Servers[0].URL != "https://prod.example.com" || cfg.Servers[0].Alias != "custom-production" {
		t.Error("first server was modified")
	}
	if cfg.Servers[1].URL != "https://staging.example.com" || cfg.Servers[1].Alias != "custom-staging" {
		t.Error("second server was modified")
	}
	if cfg.Servers[2].URL != "https://dev.example.com" {
		t.Errorf("expected third server URL 'https://dev.example.com', got '%s'", cfg.Servers[2].URL)
	}
	if cfg.Servers[2].Alias != "server-3" {
		t.Errorf("expected third server alias 'server-3', got '%s'", cfg.Servers[2].Alias)
	}
}
