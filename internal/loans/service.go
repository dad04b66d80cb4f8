// Package loans runs the loan lifecycle: application, decision, disbursement
// and repayment. Money only moves through the ledger; a loan disburses from
// and repays into the bank's reserve account.
package loans

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tellerdesk-dev/tellerdesk/internal/ledger"
	"github.com/tellerdesk-dev/tellerdesk/internal/models"
)

// ReserveUserID owns the bank's loan reserve account. Disbursements draw
// from it and repayments flow back into it.
const ReserveUserID int64 = 1

var (
	ErrLoanNotFound      = errors.New("loan not found")
	ErrLoanNotPending    = errors.New("loan is not pending")
	ErrLoanNotApproved   = errors.New("loan is not approved")
	ErrLoanNotActive     = errors.New("loan is not active")
	ErrNothingDue        = errors.New("no unpaid installment")
	ErrStartDateTooSoon  = errors.New("start date must be at least 15 days out")
	ErrNoReserveAccount  = errors.New("loan reserve account not configured")
	ErrWrongAccountOwner = errors.New("account does not belong to the applicant")
)

// minStartLead is how far in the future a repayment plan must begin
const minStartLead = 15 * 24 * time.Hour

// Service handles loan applications and repayment
type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
	logger zerolog.Logger
}

// NewService creates a new loans service
func NewService(db *gorm.DB, ledgerService *ledger.Service, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		ledger: ledgerService,
		logger: logger.With().Str("component", "loans").Logger(),
	}
}

// Apply files a new loan application in PENDING state
func (s *Service) Apply(userID int64, accountID string, amountCents, annualRateBps int64, termMonths int, startDate time.Time) (*models.LoanApplication, error) {
	account, err := s.ledger.Account(accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, ErrWrongAccountOwner
	}
	if startDate.Before(time.Now().Add(minStartLead)) {
		return nil, ErrStartDateTooSoon
	}

	loan := &models.LoanApplication{
		UserID:        userID,
		AccountID:     accountID,
		AmountCents:   amountCents,
		AnnualRateBps: annualRateBps,
		TermMonths:    termMonths,
		Status:        models.LoanPending,
		StartDate:     truncateToDay(startDate),
	}
	if err := s.db.Create(loan).Error; err != nil {
		return nil, fmt.Errorf("failed to create loan application: %w", err)
	}

	s.logger.Info().
		Int64("loan_id", loan.ID).
		Int64("user_id", userID).
		Int64("amount_cents", amountCents).
		Msg("Loan application filed")
	return loan, nil
}

// Loan loads one application
func (s *Service) Loan(loanID int64) (*models.LoanApplication, error) {
	var loan models.LoanApplication
	if err := s.db.First(&loan, loanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// ByUser returns all of a user's loans, newest first
func (s *Service) ByUser(userID int64) ([]models.LoanApplication, error) {
	var loans []models.LoanApplication
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// Pending returns every application awaiting a decision, oldest first
func (s *Service) Pending() ([]models.LoanApplication, error) {
	var loans []models.LoanApplication
	if err := s.db.Where("status = ?", models.LoanPending).Order("created_at").Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// Approve marks a pending application approved and generates its repayment
// schedule. Disbursement happens separately, via the scheduler or an
// explicit DisburseApproved call.
func (s *Service) Approve(loanID int64) (*models.LoanApplication, error) {
	loan, err := s.Loan(loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanPending {
		return nil, ErrLoanNotPending
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(loan).Update("status", models.LoanApproved).Error; err != nil {
			return err
		}
		schedule := BuildSchedule(loan)
		return tx.Create(&schedule).Error
	})
	if err != nil {
		return nil, err
	}

	loan.Status = models.LoanApproved
	s.logger.Info().Int64("loan_id", loanID).Msg("Loan approved")
	return loan, nil
}

// Reject declines a pending application
func (s *Service) Reject(loanID int64) (*models.LoanApplication, error) {
	loan, err := s.Loan(loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanPending {
		return nil, ErrLoanNotPending
	}

	if err := s.db.Model(loan).Update("status", models.LoanRejected).Error; err != nil {
		return nil, err
	}

	loan.Status = models.LoanRejected
	s.logger.Info().Int64("loan_id", loanID).Msg("Loan rejected")
	return loan, nil
}

// Disburse pays an approved loan out of the reserve account into the
// borrower's account and activates it
func (s *Service) Disburse(loan *models.LoanApplication) error {
	if loan.Status != models.LoanApproved {
		return ErrLoanNotApproved
	}

	reserve, err := s.reserveAccount()
	if err != nil {
		return err
	}

	if err := s.ledger.Disburse(reserve.ID, loan.AccountID, loan.AmountCents, ReserveUserID); err != nil {
		return fmt.Errorf("disbursement transfer failed: %w", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.LoanActive,
		"disbursed_at": &now,
	}
	if err := s.db.Model(loan).Updates(updates).Error; err != nil {
		return err
	}

	loan.Status = models.LoanActive
	loan.DisbursedAt = &now
	s.logger.Info().
		Int64("loan_id", loan.ID).
		Int64("amount_cents", loan.AmountCents).
		Str("account_id", loan.AccountID).
		Msg("Loan disbursed")
	return nil
}

// Schedule returns a loan's full repayment schedule in order
func (s *Service) Schedule(loanID int64) ([]models.LoanRepayment, error) {
	if _, err := s.Loan(loanID); err != nil {
		return nil, err
	}

	var schedule []models.LoanRepayment
	if err := s.db.Where("loan_id = ?", loanID).Order("seq").Find(&schedule).Error; err != nil {
		return nil, err
	}
	return schedule, nil
}

// Repay pays the earliest unpaid installment of an active loan. The money
// moves from the borrower's account back into the reserve.
func (s *Service) Repay(loanID int64) (*models.LoanRepayment, error) {
	loan, err := s.Loan(loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanActive {
		return nil, ErrLoanNotActive
	}

	var installment models.LoanRepayment
	err = s.db.Where("loan_id = ? AND status IN ?", loanID,
		[]string{models.RepaymentScheduled, models.RepaymentLate}).
		Order("seq").First(&installment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNothingDue
		}
		return nil, err
	}

	if err := s.payInstallment(loan, &installment); err != nil {
		return nil, err
	}
	return &installment, nil
}

func (s *Service) payInstallment(loan *models.LoanApplication, installment *models.LoanRepayment) error {
	reserve, err := s.reserveAccount()
	if err != nil {
		return err
	}

	if err := s.ledger.CollectRepayment(loan.AccountID, reserve.ID, installment.AmountCents, loan.UserID); err != nil {
		return fmt.Errorf("repayment transfer failed: %w", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":  models.RepaymentPaid,
		"paid_at": &now,
	}
	if err := s.db.Model(installment).Updates(updates).Error; err != nil {
		return err
	}
	installment.Status = models.RepaymentPaid
	installment.PaidAt = &now

	s.logger.Info().
		Int64("loan_id", loan.ID).
		Int("seq", installment.Seq).
		Int64("amount_cents", installment.AmountCents).
		Msg("Installment paid")

	return s.closeIfComplete(loan)
}

// closeIfComplete marks a loan paid off once every installment is paid
func (s *Service) closeIfComplete(loan *models.LoanApplication) error {
	var unpaid int64
	err := s.db.Model(&models.LoanRepayment{}).
		Where("loan_id = ? AND status <> ?", loan.ID, models.RepaymentPaid).
		Count(&unpaid).Error
	if err != nil {
		return err
	}
	if unpaid > 0 {
		return nil
	}

	if err := s.db.Model(loan).Update("status", models.LoanPaidOff).Error; err != nil {
		return err
	}
	loan.Status = models.LoanPaidOff
	s.logger.Info().Int64("loan_id", loan.ID).Msg("Loan paid off")
	return nil
}

// reserveAccount finds the bank's loan reserve account. Seeding creates it;
// without one no loan can move money.
func (s *Service) reserveAccount() (*models.Account, error) {
	var account models.Account
	err := s.db.Where("user_id = ? AND status = ?", ReserveUserID, models.AccountActive).
		Order("created_at").First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoReserveAccount
		}
		return nil, err
	}
	return &account, nil
}
