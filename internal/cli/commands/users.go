package commands

import (
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tellerdesk-dev/tellerdesk/internal/cli/client"
)

// NewUsersCmd creates the users command group
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administer bank users",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersRegisterCmd())

	return cmd
}

func newUsersListCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every registered user (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList(serverAlias)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runUsersList(serverAlias string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(adminGuard, func() error {
		users, err := api.Users()
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No users found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tROLES\tLAST LOGIN")
		fmt.Fprintln(w, "──\t────────\t────\t─────\t──────────")
		for _, u := range users {
			lastLogin := u.LastLoginAt
			if lastLogin == "" {
				lastLogin = "never"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				u.UserID, u.Username, u.FullName, joinRoles(u.Roles), lastLogin)
		}
		w.Flush()
		return nil
	})
}

func newUsersRegisterCmd() *cobra.Command {
	var serverAlias string
	var req client.RegisterUserRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user (admin)",
		Long: `Register a new user.

Examples:
  $ tellerdesk users register --username carol --name "Carol Danvers"
  $ tellerdesk users register --username dave --name "Dave Grohl" --admin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersRegister(serverAlias, req)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "Login name (required)")
	cmd.Flags().StringVarP(&req.FullName, "name", "n", "", "Full name (required)")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Initial password (prompted if omitted)")
	cmd.Flags().BoolVar(&req.Admin, "admin", false, "Grant the ADMIN role")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runUsersRegister(serverAlias string, req client.RegisterUserRequest) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(adminGuard, func() error {
		if req.Password == "" {
			password, err := promptPassword(fmt.Sprintf("Initial password for %s: ", req.Username))
			if err != nil {
				return err
			}
			req.Password = password
		}

		user, err := api.RegisterUser(req)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		fmt.Printf("✓ Registered %s (user %d, roles %s)\n", user.Username, user.UserID, joinRoles(user.Roles))
		return nil
	})
}

// NewPasswdCmd creates the passwd command
func NewPasswdCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change your own password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasswd(serverAlias)
		},
	}

	cmd.Flags().StringVarP(&serverAlias, "server", "s", "", "Server alias to use")
	return cmd
}

func runPasswd(serverAlias string) error {
	if err := ensureSession(serverAlias); err != nil {
		return err
	}

	return runGuarded(staffGuard, func() error {
		oldPassword, err := promptPassword("Current password: ")
		if err != nil {
			return err
		}
		newPassword, err := promptPassword("New password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Repeat new password: ")
		if err != nil {
			return err
		}
		if newPassword != confirm {
			return fmt.Errorf("passwords do not match")
		}

		if err := api.ChangePassword(oldPassword, newPassword); err != nil {
			return fmt.Errorf("password change failed: %w", err)
		}
		fmt.Println("✓ Password changed")
		return nil
	})
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

func joinRoles(roles []string) string {
	if len(roles) == 0 {
		return "-"
	}
	out := roles[0]
	for _, r := range roles[1:] {
		out += "," + r
	}
	return out
}
