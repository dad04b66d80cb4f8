package loans

import (
	"time"

	"github.com/tellerdesk-dev/tellerdesk/internal/models"
)

// DisburseApproved pays out every approved loan. Each loan disburses
// independently; one failed transfer does not block the rest.
func (s *Service) DisburseApproved() {
	var approved []models.LoanApplication
	if err := s.db.Where("status = ?", models.LoanApproved).Find(&approved).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to query approved loans")
		return
	}

	for i := range approved {
		loan := &approved[i]
		if err := s.Disburse(loan); err != nil {
			s.logger.Error().Err(err).Int64("loan_id", loan.ID).Msg("Disbursement failed")
		}
	}
}

// CollectDue auto-collects every installment due on or before the given
// day. Installments the borrower cannot cover are marked LATE; a later
// manual repayment or the next sweep picks them up again.
func (s *Service) CollectDue(today time.Time) {
	cutoff := truncateToDay(today).AddDate(0, 0, 1)

	var due []models.LoanRepayment
	err := s.db.Where("status = ? AND due_date < ?", models.RepaymentScheduled, cutoff).
		Order("due_date").Find(&due).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to query due installments")
		return
	}

	for i := range due {
		installment := &due[i]

		loan, err := s.Loan(installment.LoanID)
		if err != nil {
			s.logger.Error().Err(err).Int64("loan_id", installment.LoanID).Msg("Failed to load loan for collection")
			continue
		}
		if loan.Status != models.LoanActive {
			continue
		}

		if err := s.payInstallment(loan, installment); err != nil {
			s.logger.Warn().
				Err(err).
				Int64("loan_id", loan.ID).
				Int("seq", installment.Seq).
				Msg("Auto-collection failed, marking installment late")

			if err := s.db.Model(installment).Update("status", models.RepaymentLate).Error; err != nil {
				s.logger.Error().Err(err).Msg("Failed to mark installment late")
			}
		}
	}
}
