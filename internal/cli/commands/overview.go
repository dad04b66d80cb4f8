package commands

import (
	"github.com/spf13/cobra"
)

// NewOverviewCmd creates the overview command, the default landing view.
// Commands a user lacks the role for fall back to this same view.
func NewOverviewCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Show your identity and account overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverview(serverAlias)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runOverview(serverAlias string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, showOverview)
}
