package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli/client"
)

// NewDepositCmd creates the deposit command
func NewDepositCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "deposit <account-id> <amount>",
		Short: "Deposit cash into an account",
		Long: `Deposit cash into an account.

Examples:
  $ tellerdesk deposit 01J5X3... 100.50`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeposit(serverAlias, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runDeposit(serverAlias, accountID, amount string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		tx, err := api.Deposit(accountID, amount, operatorID())
		if err != nil {
			return fmt.Errorf("deposit failed: %w", err)
		}
		fmt.Printf("✓ Deposited %s into %s (transaction %s)\n", tx.Amount, accountID, tx.ID)
		return nil
	})
}

// NewWithdrawCmd creates the withdraw command
func NewWithdrawCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "withdraw <account-id> <amount>",
		Short: "Withdraw cash from an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithdraw(serverAlias, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runWithdraw(serverAlias, accountID, amount string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		tx, err := api.Withdraw(accountID, amount, operatorID())
		if err != nil {
			return fmt.Errorf("withdrawal failed: %w", err)
		}
		fmt.Printf("✓ Withdrew %s from %s (transaction %s)\n", tx.Amount, accountID, tx.ID)
		return nil
	})
}

// NewTransferCmd creates the transfer command
func NewTransferCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "transfer <from-account-id> <to-account-id> <amount>",
		Short: "Transfer money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransfer(serverAlias, args[0], args[1], args[2])
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runTransfer(serverAlias, fromID, toID, amount string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		if err := api.Transfer(fromID, toID, amount, operatorID()); err != nil {
			return fmt.Errorf("transfer failed: %w", err)
		}
		fmt.Printf("✓ Transferred %s from %s to %s\n", amount, fromID, toID)
		return nil
	})
}

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var serverAlias string
	var startDate, endDate string

	cmd := &cobra.Command{
		Use:   "history <account-id>",
		Short: "Show an account's transaction history",
		Long: `Show an account's transaction history, optionally limited
to a date range.

Examples:
  $ tellerdesk history 01J5X3...
  $ tellerdesk history 01J5X3... --from 2026-01-01 --to 2026-01-31`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(serverAlias, args[0], startDate, endDate)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	cmd.Flags().StringVar(&startDate, "from", "", "Start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&endDate, "to", "", "End date (YYYY-MM-DD, inclusive)")
	return cmd
}

func runHistory(serverAlias, accountID, startDate, endDate string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		txs, err := api.History(accountID, startDate, endDate)
		if err != nil {
			return err
		}
		if len(txs) == 0 {
			fmt.Println("No transactions in this range")
			return nil
		}
		printTransactions(txs)
		return nil
	})
}

func printTransactions(txs []client.Transaction) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tKIND\tAMOUNT\tCOUNTERPARTY\tOPERATOR")
	fmt.Fprintln(w, "────\t────\t──────\t────────────\t────────")
	for _, tx := range txs {
		counterparty := tx.CounterpartyID
		if counterparty == "" {
			counterparty = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", tx.CreatedAt, tx.Kind, tx.Amount, counterparty, tx.OperatorID)
	}
	w.Flush()
}
