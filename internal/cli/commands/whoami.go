package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the verified identity of the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runWhoami(serverAlias string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	snap := sess.Snapshot()
	if snap.User == nil {
		return ErrLoginRequired
	}

	fmt.Printf("Server: %s\n", api.BaseURL())
	fmt.Printf("User:   %s (id %d)\n", snap.User.Username, snap.User.UserID)
	fmt.Printf("Roles:  %s\n", strings.Join(snap.User.Roles, ", "))
	return nil
}
