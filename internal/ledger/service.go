// Package ledger owns account lifecycle and money movement. Every movement
// runs in one database transaction so a transfer either books on both
// accounts or on neither.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tellerdesk-dev/tellerdesk/internal/models"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountNotActive  = errors.New("account is not active")
	ErrAccountNotFrozen  = errors.New("account is not frozen")
	ErrAccountNotClosed  = errors.New("account is not closed")
	ErrAccountNotEmpty   = errors.New("account balance must be zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceOverflow   = errors.New("balance limit exceeded")
	ErrSameAccount       = errors.New("cannot transfer to the same account")
	ErrInvalidType       = errors.New("unknown account type")
)

// Service handles accounts and transactions
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a new ledger service
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "ledger").Logger(),
	}
}

// OpenAccount creates a new active account for the user
func (s *Service) OpenAccount(userID int64, accountType string) (*models.Account, error) {
	if accountType != models.AccountChecking && accountType != models.AccountSavings {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, accountType)
	}

	account := &models.Account{
		UserID: userID,
		Type:   accountType,
		Status: models.AccountActive,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info().Str("account_id", account.ID).Int64("user_id", userID).Msg("Account opened")
	return account, nil
}

// Account loads a single account
func (s *Service) Account(accountID string) (*models.Account, error) {
	var account models.Account
	if err := models.FindByID(s.db, accountID, &account); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// AccountsByUser returns all accounts owned by the user
func (s *Service) AccountsByUser(userID int64) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.Where("user_id = ?", userID).Order("created_at").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// AllAccounts returns one page of every account in the bank
func (s *Service) AllAccounts(page, size int) ([]models.Account, int64, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}

	var total int64
	if err := s.db.Model(&models.Account{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []models.Account
	err := s.db.Order("created_at").Offset(page * size).Limit(size).Find(&accounts).Error
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// CloseAccount closes an account. Only active accounts with a zero balance
// can close; money has to be withdrawn or transferred out first.
func (s *Service) CloseAccount(accountID string, operatorID int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		account, err := getAccount(tx, accountID)
		if err != nil {
			return err
		}
		if account.Status != models.AccountActive {
			return ErrAccountNotActive
		}
		if account.BalanceCents != 0 {
			return ErrAccountNotEmpty
		}

		if err := tx.Model(account).Update("status", models.AccountClosed).Error; err != nil {
			return err
		}

		s.logger.Info().Str("account_id", accountID).Int64("operator_id", operatorID).Msg("Account closed")
		return nil
	})
}

// FreezeAccount freezes an active account, blocking all movements
func (s *Service) FreezeAccount(accountID string, operatorID int64) error {
	return s.transition(accountID, operatorID, models.AccountActive, models.AccountFrozen, ErrAccountNotActive)
}

// UnfreezeAccount returns a frozen account to active
func (s *Service) UnfreezeAccount(accountID string, operatorID int64) error {
	return s.transition(accountID, operatorID, models.AccountFrozen, models.AccountActive, ErrAccountNotFrozen)
}

// RestoreAccount reopens a closed account
func (s *Service) RestoreAccount(accountID string, operatorID int64) (*models.Account, error) {
	if err := s.transition(accountID, operatorID, models.AccountClosed, models.AccountActive, ErrAccountNotClosed); err != nil {
		return nil, err
	}
	return s.Account(accountID)
}

func (s *Service) transition(accountID string, operatorID int64, from, to string, wrongState error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		account, err := getAccount(tx, accountID)
		if err != nil {
			return err
		}
		if account.Status != from {
			return wrongState
		}

		if err := tx.Model(account).Update("status", to).Error; err != nil {
			return err
		}

		s.logger.Info().
			Str("account_id", accountID).
			Str("from", from).
			Str("to", to).
			Int64("operator_id", operatorID).
			Msg("Account status changed")
		return nil
	})
}

// Deposit books a cash deposit
func (s *Service) Deposit(accountID string, amountCents, operatorID int64) (*models.Transaction, error) {
	return s.book(accountID, models.TxDeposit, amountCents, "", operatorID)
}

// Withdraw books a cash withdrawal
func (s *Service) Withdraw(accountID string, amountCents, operatorID int64) (*models.Transaction, error) {
	return s.book(accountID, models.TxWithdrawal, -amountCents, "", operatorID)
}

// book applies a single signed movement to one account
func (s *Service) book(accountID, kind string, deltaCents int64, counterpartyID string, operatorID int64) (*models.Transaction, error) {
	var booked *models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		account, err := getAccount(tx, accountID)
		if err != nil {
			return err
		}
		if account.Status != models.AccountActive {
			return ErrAccountNotActive
		}
		if deltaCents < 0 && account.BalanceCents+deltaCents < 0 {
			return ErrInsufficientFunds
		}
		if deltaCents > 0 && account.BalanceCents > math.MaxInt64-deltaCents {
			return ErrBalanceOverflow
		}

		if err := tx.Model(account).Update("balance_cents", account.BalanceCents+deltaCents).Error; err != nil {
			return err
		}

		record := &models.Transaction{
			AccountID:      accountID,
			Kind:           kind,
			AmountCents:    abs(deltaCents),
			CounterpartyID: counterpartyID,
			OperatorID:     operatorID,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		booked = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("account_id", accountID).
		Str("kind", kind).
		Int64("amount_cents", abs(deltaCents)).
		Int64("operator_id", operatorID).
		Msg("Movement booked")
	return booked, nil
}

// Transfer moves money between two accounts. Both sides book inside one
// transaction so the ledger can never show a half-applied transfer.
func (s *Service) Transfer(fromID, toID string, amountCents, operatorID int64) error {
	return s.transfer(fromID, toID, amountCents, operatorID, models.TxTransferOut, models.TxTransferIn)
}

// Disburse pays a loan out of the reserve. The borrower's statement shows
// a LOAN_DISBURSEMENT credit instead of an anonymous transfer.
func (s *Service) Disburse(reserveID, accountID string, amountCents, operatorID int64) error {
	return s.transfer(reserveID, accountID, amountCents, operatorID, models.TxTransferOut, models.TxDisbursement)
}

// CollectRepayment moves an installment from the borrower back into the
// reserve, booked as LOAN_REPAYMENT on the borrower's side.
func (s *Service) CollectRepayment(accountID, reserveID string, amountCents, operatorID int64) error {
	return s.transfer(accountID, reserveID, amountCents, operatorID, models.TxRepayment, models.TxTransferIn)
}

func (s *Service) transfer(fromID, toID string, amountCents, operatorID int64, outKind, inKind string) error {
	if fromID == toID {
		return ErrSameAccount
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		from, err := getAccount(tx, fromID)
		if err != nil {
			return err
		}
		to, err := getAccount(tx, toID)
		if err != nil {
			return err
		}

		if from.Status != models.AccountActive || to.Status != models.AccountActive {
			return ErrAccountNotActive
		}
		if from.BalanceCents < amountCents {
			return ErrInsufficientFunds
		}
		if to.BalanceCents > math.MaxInt64-amountCents {
			return ErrBalanceOverflow
		}

		if err := tx.Model(from).Update("balance_cents", from.BalanceCents-amountCents).Error; err != nil {
			return err
		}
		if err := tx.Model(to).Update("balance_cents", to.BalanceCents+amountCents).Error; err != nil {
			return err
		}

		out := &models.Transaction{
			AccountID:      fromID,
			Kind:           outKind,
			AmountCents:    amountCents,
			CounterpartyID: toID,
			OperatorID:     operatorID,
		}
		in := &models.Transaction{
			AccountID:      toID,
			Kind:           inKind,
			AmountCents:    amountCents,
			CounterpartyID: fromID,
			OperatorID:     operatorID,
		}
		if err := tx.Create(out).Error; err != nil {
			return err
		}
		return tx.Create(in).Error
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("from", fromID).
		Str("to", toID).
		Int64("amount_cents", amountCents).
		Int64("operator_id", operatorID).
		Msg("Transfer booked")
	return nil
}

// History returns an account's transactions, newest first, optionally
// limited to an inclusive date range.
func (s *Service) History(accountID string, from, to *time.Time) ([]models.Transaction, error) {
	if _, err := s.Account(accountID); err != nil {
		return nil, err
	}

	query := s.db.Where("account_id = ?", accountID)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		// End date is inclusive: extend to the end of that day.
		query = query.Where("created_at < ?", to.AddDate(0, 0, 1))
	}

	var txs []models.Transaction
	if err := query.Order("created_at DESC").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

func getAccount(tx *gorm.DB, accountID string) (*models.Account, error) {
	var account models.Account
	err := tx.Where("id = ?", accountID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
