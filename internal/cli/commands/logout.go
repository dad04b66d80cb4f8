package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session for a bank server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runLogout(serverAlias string) error {
	if err := connect(serverAlias); err != nil {
		return err
	}

	// Idempotent: logging out while already logged out is fine.
	sess.Logout()
	if err := store.Delete(api.BaseURL()); err != nil {
		return err
	}

	fmt.Println("✓ Logged out")
	return nil
}
