package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewAccountsCmd creates the accounts command group
func NewAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage bank accounts",
	}

	cmd.AddCommand(newAccountsListCmd())
	cmd.AddCommand(newAccountsOpenCmd())
	cmd.AddCommand(newAccountsCloseCmd())
	cmd.AddCommand(newAccountsFreezeCmd())
	cmd.AddCommand(newAccountsUnfreezeCmd())
	cmd.AddCommand(newAccountsRestoreCmd())
	cmd.AddCommand(newAccountsAllCmd())

	return cmd
}

func newAccountsListCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your own accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountsList(serverAlias)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runAccountsList(serverAlias string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		accounts, err := api.MyAccounts(operatorID())
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Println("No accounts yet. Open one with: tellerdesk accounts open")
			return nil
		}
		printAccounts(accounts)
		return nil
	})
}

func newAccountsOpenCmd() *cobra.Command {
	var serverAlias string
	var accountType string

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountsOpen(serverAlias, accountType)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	cmd.Flags().StringVarP(&accountType, "type", "t", "CHECKING", "Account type (CHECKING or SAVINGS)")
	return cmd
}

func runAccountsOpen(serverAlias, accountType string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		account, err := api.OpenAccount(operatorID(), accountType)
		if err != nil {
			return fmt.Errorf("failed to open account: %w", err)
		}
		fmt.Printf("✓ Opened %s account %s\n", account.Type, account.ID)
		return nil
	})
}

func newAccountsCloseCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "close <account-id>",
		Short: "Close an account (must be empty and active)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountsClose(serverAlias, args[0])
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runAccountsClose(serverAlias, accountID string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		if err := api.CloseAccount(accountID, operatorID()); err != nil {
			return fmt.Errorf("failed to close account: %w", err)
		}
		fmt.Printf("✓ Closed account %s\n", accountID)
		return nil
	})
}

func newAccountsFreezeCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "freeze <account-id>",
		Short: "Freeze an account, blocking all movements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountsFreeze(serverAlias, args[0])
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runAccountsFreeze(serverAlias, accountID string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		if err := api.FreezeAccount(accountID, operatorID()); err != nil {
			return fmt.Errorf("failed to freeze account: %w", err)
		}
		fmt.Printf("✓ Froze account %s\n", accountID)
		return nil
	})
}

func newAccountsUnfreezeCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "unfreeze <account-id>",
		Short: "Unfreeze a frozen account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountsUnfreeze(serverAlias, args[0])
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runAccountsUnfreeze(serverAlias, accountID string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		if err := api.UnfreezeAccount(accountID, operatorID()); err != nil {
			return fmt.Errorf("failed to unfreeze account: %w", err)
		}
		fmt.Printf("✓ Unfroze account %s\n", accountID)
		return nil
	})
}

func newAccountsRestoreCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "restore <account-id>",
		Short: "Reopen a closed account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountsRestore(serverAlias, args[0])
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runAccountsRestore(serverAlias, accountID string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		account, err := api.RestoreAccount(accountID, operatorID())
		if err != nil {
			return fmt.Errorf("failed to restore account: %w", err)
		}
		fmt.Printf("✓ Restored account %s (status %s)\n", account.ID, account.Status)
		return nil
	})
}

func newAccountsAllCmd() *cobra.Command {
	var serverAlias string
	var page, size int

	cmd := &cobra.Command{
		Use:   "all",
		Short: "List every account in the bank (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountsAll(serverAlias, page, size)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	cmd.Flags().IntVar(&page, "page", 0, "Page number, starting at 0")
	cmd.Flags().IntVar(&size, "size", 20, "Page size")
	return cmd
}

func runAccountsAll(serverAlias string, page, size int) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(adminGuard, func() error {
		result, err := api.AllAccounts(page, size)
		if err != nil {
			return err
		}
		if len(result.Accounts) == 0 {
			fmt.Println("No accounts found")
			return nil
		}
		printAccounts(result.Accounts)
		fmt.Printf("\nPage %d (%d accounts total)\n", result.Page, result.Total)
		return nil
	})
}
