// Package seed loads startup fixtures into the sandbox database. The first
// user in the fixture becomes the bank itself and owns the loan reserve
// account, so every fixture needs at least that one entry.
package seed

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/tellerdesk-dev/tellerdesk/internal/auth"
	"github.com/tellerdesk-dev/tellerdesk/internal/models"
	"github.com/tellerdesk-dev/tellerdesk/internal/money"
)

// Fixture is the root of a seed file
type Fixture struct {
	Users []UserFixture `yaml:"users"`
}

// UserFixture describes one user plus their accounts
type UserFixture struct {
	Username string           `yaml:"username"`
	Password string           `yaml:"password"`
	FullName string           `yaml:"full_name"`
	Roles    []string         `yaml:"roles"`
	Accounts []AccountFixture `yaml:"accounts"`
}

// AccountFixture describes one account with an opening balance
type AccountFixture struct {
	Type    string `yaml:"type"`
	Balance string `yaml:"balance"`
}

// Default is the fixture applied when no seed file is configured: the bank
// with a funded loan reserve, one teller and one supervisor.
func Default() *Fixture {
	return &Fixture{
		Users: []UserFixture{
			{
				Username: "bank",
				Password: "bank",
				FullName: "TellerDesk Reserve",
				Roles:    []string{models.RoleAdmin},
				Accounts: []AccountFixture{
					{Type: models.AccountChecking, Balance: "1000000.00"},
				},
			},
			{
				Username: "alice",
				Password: "alice",
				FullName: "Alice Teller",
				Roles:    []string{models.RoleUser},
				Accounts: []AccountFixture{
					{Type: models.AccountChecking, Balance: "1500.00"},
					{Type: models.AccountSavings, Balance: "10000.00"},
				},
			},
			{
				Username: "admin",
				Password: "admin",
				FullName: "Branch Supervisor",
				Roles:    []string{models.RoleUser, models.RoleAdmin},
				Accounts: []AccountFixture{
					{Type: models.AccountChecking, Balance: "500.00"},
				},
			},
		},
	}
}

// LoadFile parses a fixture from a YAML file
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(fixture.Users) == 0 {
		return nil, fmt.Errorf("seed file %s declares no users", path)
	}
	return &fixture, nil
}

// Apply loads the fixture into the database. A database that already has
// users is left alone, so restarting the sandbox keeps its data.
func Apply(db *gorm.DB, fixture *Fixture, logger zerolog.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Debug().Msg("Database already seeded, skipping")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		roles, err := ensureRoles(tx)
		if err != nil {
			return err
		}

		for _, uf := range fixture.Users {
			hash, err := auth.HashPassword(uf.Password)
			if err != nil {
				return err
			}

			user := &models.User{
				Username:     uf.Username,
				PasswordHash: hash,
				FullName:     uf.FullName,
			}
			for _, name := range uf.Roles {
				role, ok := roles[name]
				if !ok {
					return fmt.Errorf("unknown role %q for user %s", name, uf.Username)
				}
				user.Roles = append(user.Roles, role)
			}
			if err := tx.Create(user).Error; err != nil {
				return fmt.Errorf("failed to seed user %s: %w", uf.Username, err)
			}

			for _, af := range uf.Accounts {
				balanceCents, err := money.ParseCents(af.Balance)
				if err != nil {
					return fmt.Errorf("bad balance for %s: %w", uf.Username, err)
				}
				account := &models.Account{
					UserID:       user.ID,
					Type:         af.Type,
					Status:       models.AccountActive,
					BalanceCents: balanceCents,
				}
				if err := tx.Create(account).Error; err != nil {
					return fmt.Errorf("failed to seed account for %s: %w", uf.Username, err)
				}
			}

			logger.Info().
				Str("username", uf.Username).
				Strs("roles", uf.Roles).
				Int("accounts", len(uf.Accounts)).
				Msg("Seeded user")
		}

		return nil
	})
}

func ensureRoles(tx *gorm.DB) (map[string]models.Role, error) {
	roles := make(map[string]models.Role)
	for _, name := range []string{models.RoleUser, models.RoleAdmin} {
		role := models.Role{Name: name}
		if err := tx.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return nil, err
		}
		roles[name] = role
	}
	return roles, nil
}
