package loans

import (
	"math"
	"time"

	"github.com/tellerdesk-dev/tellerdesk/internal/models"
)

// MonthlyPaymentCents computes the equal monthly installment for a loan of
// the given principal, annual rate (basis points) and term in months. A
// zero-rate loan splits the principal evenly.
func MonthlyPaymentCents(principalCents, annualRateBps int64, termMonths int) int64 {
	if annualRateBps == 0 {
		return roundHalfUp(float64(principalCents) / float64(termMonths))
	}

	monthlyRate := float64(annualRateBps) / 10000 / 12
	factor := math.Pow(1+monthlyRate, float64(termMonths))
	payment := float64(principalCents) * monthlyRate * factor / (factor - 1)
	return roundHalfUp(payment)
}

// BuildSchedule generates the full repayment schedule for an approved loan.
// Each installment's interest is the monthly rate on the remaining
// principal; the last installment clears whatever principal remains, so its
// amount differs from the fixed monthly payment by the accumulated rounding.
func BuildSchedule(loan *models.LoanApplication) []models.LoanRepayment {
	payment := MonthlyPaymentCents(loan.AmountCents, loan.AnnualRateBps, loan.TermMonths)
	monthlyRate := float64(loan.AnnualRateBps) / 10000 / 12
	remaining := loan.AmountCents

	schedule := make([]models.LoanRepayment, 0, loan.TermMonths)
	dueDate := loan.StartDate.AddDate(0, 1, 0)

	for i := 1; i <= loan.TermMonths; i++ {
		interest := roundHalfUp(float64(remaining) * monthlyRate)
		principal := payment - interest
		amount := payment

		if i == loan.TermMonths {
			principal = remaining
			amount = principal + interest
		}

		schedule = append(schedule, models.LoanRepayment{
			LoanID:         loan.ID,
			Seq:            i,
			DueDate:        dueDate,
			AmountCents:    amount,
			PrincipalCents: principal,
			InterestCents:  interest,
			Status:         models.RepaymentScheduled,
		})

		remaining -= principal
		dueDate = dueDate.AddDate(0, 1, 0)
	}

	return schedule
}

// truncateToDay drops the time-of-day component, keeping dates comparable
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
