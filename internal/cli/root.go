package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "tellerdesk",
	Short: "TellerDesk - Bank back-office terminal",
	Long: `TellerDesk CLI - The bank back office from your terminal.

Log in once per server; TellerDesk keeps the session in your OS keychain
and restores it on every command until the server expires it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tellerdesk version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectServerCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewOverviewCmd())
	rootCmd.AddCommand(commands.NewAccountsCmd())
	rootCmd.AddCommand(commands.NewDepositCmd())
	rootCmd.AddCommand(commands.NewWithdrawCmd())
	rootCmd.AddCommand(commands.NewTransferCmd())
	rootCmd.AddCommand(commands.NewHistoryCmd())
	rootCmd.AddCommand(commands.NewLoansCmd())
	rootCmd.AddCommand(commands.NewUsersCmd())
	rootCmd.AddCommand(commands.NewPasswdCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
