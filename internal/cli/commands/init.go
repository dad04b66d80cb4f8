package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <server-url>",
		Short: "Register a bank server in tellerdesk.json",
		Args:  cobra.ExactArgs(1),
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	serverURL := args[0]

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	var cfg *config.Config
	isNewConfig := false

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		// Load existing config
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Println("Found existing tellerdesk.json")
	} else {
		// Create new config
		cfg = &config.Config{
			Servers: []config.Server{},
		}
		isNewConfig = true
	}

	// Check if server already exists
	serverExists := false
	for _, server := range cfg.Servers {
		if server.URL == serverURL {
			serverExists = true
			break
		}
	}

	if serverExists {
		fmt.Printf("Server %s already exists in tellerdesk.json\n", serverURL)
		return nil
	}

	alias := "head-office"
	if len(cfg.Servers) > 0 {
		alias = fmt.Sprintf("server-%d", len(cfg.Servers)+1)
	}

	cfg.Servers = append(cfg.Servers, config.Server{
		URL:   serverURL,
		Alias: alias,
	})

	// Save to file
	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if isNewConfig {
		fmt.Printf("✓ Created ./tellerdesk.json with server %s (%s)\n", serverURL, alias)
	} else {
		fmt.Printf("✓ Added server %s (%s) to ./tellerdesk.json\n", serverURL, alias)
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'tellerdesk login' to authenticate")
	fmt.Println("  2. Run 'tellerdesk accounts list' to see your accounts")

	return nil
}
