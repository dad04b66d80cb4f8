package commands

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var username, password, serverAlias string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a bank server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(serverAlias, username, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set TELLERDESK_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set TELLERDESK_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runLogin(serverAlias, username, password string) error {
	// Check for environment variables (useful for scripting)
	if username == "" {
		username = os.Getenv("TELLERDESK_USERNAME")
	}
	if password == "" {
		password = os.Getenv("TELLERDESK_PASSWORD")
	}

	if username == "" {
		return fmt.Errorf("username is required (use --username flag or TELLERDESK_USERNAME env var)")
	}

	// Login builds a fresh session; no need to verify a stored token first.
	if err := connect(serverAlias); err != nil {
		return err
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println() // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or TELLERDESK_PASSWORD env var)")
		}
	}

	fmt.Printf("Logging in to %s...\n", api.BaseURL())

	loginResp, err := api.Login(username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	// One call replaces the session and persists the credential record.
	sess.SetCredentials(loginResp.Token, loginResp.UserID, loginResp.Username, loginResp.Roles)

	// Best effort; the session is already established.
	if err := api.UpdateLastLogin(loginResp.UserID); err != nil {
		fmt.Printf("Warning: failed to record login time: %v\n", err)
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (id %d)\n", loginResp.Username, loginResp.UserID)
	if len(loginResp.Roles) > 0 {
		fmt.Printf("  Roles: %s\n", strings.Join(loginResp.Roles, ", "))
	}

	return nil
}
