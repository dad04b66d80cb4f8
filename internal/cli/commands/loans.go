package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli/client"
)

// NewLoansCmd creates the loans command group
func NewLoansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "Apply for and manage loans",
	}

	cmd.AddCommand(newLoansListCmd())
	cmd.AddCommand(newLoansApplyCmd())
	cmd.AddCommand(newLoansScheduleCmd())
	cmd.AddCommand(newLoansRepayCmd())
	cmd.AddCommand(newLoansPendingCmd())
	cmd.AddCommand(newLoansApproveCmd())
	cmd.AddCommand(newLoansRejectCmd())

	return cmd
}

func newLoansListCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your loans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoansList(serverAlias)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runLoansList(serverAlias string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		loans, err := api.Loans(operatorID())
		if err != nil {
			return err
		}
		if len(loans) == 0 {
			fmt.Println("No loans yet. Apply with: tellerdesk loans apply")
			return nil
		}
		printLoans(loans)
		return nil
	})
}

func newLoansApplyCmd() *cobra.Command {
	var serverAlias string
	var req client.ApplyLoanRequest

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply for a loan",
		Long: `Apply for a loan disbursed into one of your accounts.

Examples:
  $ tellerdesk loans apply --account 01J5X3... --amount 5000 --rate 4.5 --months 12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoansApply(serverAlias, req)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	cmd.Flags().StringVar(&req.AccountID, "account", "", "Account to disburse into (required)")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "Loan amount (required)")
	cmd.Flags().StringVar(&req.AnnualRate, "rate", "", "Annual interest rate in percent (required)")
	cmd.Flags().IntVar(&req.TermMonths, "months", 0, "Term in months (required)")
	cmd.Flags().StringVar(&req.StartDate, "start", "", "Repayment start date (YYYY-MM-DD, defaults to next month)")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("rate")
	cmd.MarkFlagRequired("months")
	return cmd
}

func runLoansApply(serverAlias string, req client.ApplyLoanRequest) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		loan, err := api.ApplyLoan(req)
		if err != nil {
			return fmt.Errorf("loan application failed: %w", err)
		}
		fmt.Printf("✓ Loan application %d submitted (%s over %d months, status %s)\n",
			loan.ID, loan.Amount, loan.TermMonths, loan.Status)
		return nil
	})
}

func newLoansScheduleCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "schedule <loan-id>",
		Short: "Show a loan's repayment schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runLoansSchedule(serverAlias, loanID)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runLoansSchedule(serverAlias string, loanID int64) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		schedule, err := api.Schedule(loanID)
		if err != nil {
			return err
		}
		if len(schedule) == 0 {
			fmt.Println("No schedule yet. Schedules are generated on approval.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tDUE\tAMOUNT\tPRINCIPAL\tINTEREST\tSTATUS")
		fmt.Fprintln(w, "─\t───\t──────\t─────────\t────────\t──────")
		for _, r := range schedule {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				r.Seq, r.DueDate, r.Amount, r.Principal, r.Interest, r.Status)
		}
		w.Flush()
		return nil
	})
}

func newLoansRepayCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "repay <loan-id>",
		Short: "Pay the next due installment of a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runLoansRepay(serverAlias, loanID)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runLoansRepay(serverAlias string, loanID int64) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		repayment, err := api.Repay(loanID)
		if err != nil {
			return fmt.Errorf("repayment failed: %w", err)
		}
		fmt.Printf("✓ Paid installment %d of loan %d (%s)\n", repayment.Seq, loanID, repayment.Amount)
		return nil
	})
}

func newLoansPendingCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List loan applications awaiting a decision (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoansPending(serverAlias)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runLoansPending(serverAlias string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(adminGuard, func() error {
		loans, err := api.PendingLoans()
		if err != nil {
			return err
		}
		if len(loans) == 0 {
			fmt.Println("No pending applications")
			return nil
		}
		printLoans(loans)
		return nil
	})
}

func newLoansApproveCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "approve <loan-id>",
		Short: "Approve a pending loan application (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runLoansApprove(serverAlias, loanID)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runLoansApprove(serverAlias string, loanID int64) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(adminGuard, func() error {
		loan, err := api.ApproveLoan(loanID)
		if err != nil {
			return fmt.Errorf("approval failed: %w", err)
		}
		fmt.Printf("✓ Approved loan %d (status %s)\n", loan.ID, loan.Status)
		return nil
	})
}

func newLoansRejectCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "reject <loan-id>",
		Short: "Reject a pending loan application (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runLoansReject(serverAlias, loanID)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runLoansReject(serverAlias string, loanID int64) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(adminGuard, func() error {
		loan, err := api.RejectLoan(loanID)
		if err != nil {
			return fmt.Errorf("rejection failed: %w", err)
		}
		fmt.Printf("✓ Rejected loan %d (status %s)\n", loan.ID, loan.Status)
		return nil
	})
}

func printLoans(loans []client.Loan) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tACCOUNT\tAMOUNT\tRATE\tMONTHS\tSTATUS")
	fmt.Fprintln(w, "──\t───────\t──────\t────\t──────\t──────")
	for _, l := range loans {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s%%\t%d\t%s\n",
			l.ID, l.AccountID, l.Amount, l.AnnualRate, l.TermMonths, l.Status)
	}
	w.Flush()
}
