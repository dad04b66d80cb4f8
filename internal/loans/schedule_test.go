package loans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tellerdesk-dev/tellerdesk/internal/models"
)

func TestMonthlyPaymentStandardCase(t *testing.T) {
	// 10000.00 at 5% over 12 months
	got := MonthlyPaymentCents(1000000, 500, 12)
	assert.Equal(t, int64(85607), got)
}

func TestMonthlyPaymentOneMonthTerm(t *testing.T) {
	// Principal plus one month of interest
	got := MonthlyPaymentCents(1000000, 500, 1)
	assert.Equal(t, int64(1004167), got)
}

func TestMonthlyPaymentZeroInterestRate(t *testing.T) {
	// Zero rate splits the principal evenly
	got := MonthlyPaymentCents(1200000, 0, 12)
	assert.Equal(t, int64(100000), got)
}

func TestBuildScheduleStandardCase(t *testing.T) {
	loan := &models.LoanApplication{
		ID:            1,
		AmountCents:   1000000,
		AnnualRateBps: 500,
		TermMonths:    12,
		StartDate:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	schedule := BuildSchedule(loan)
	require.Len(t, schedule, 12)

	// First installment is due one month after the start date
	assert.Equal(t, time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	assert.Equal(t, models.RepaymentScheduled, schedule[0].Status)

	for i, installment := range schedule {
		assert.Equal(t, i+1, installment.Seq)
		assert.Equal(t, installment.AmountCents, installment.PrincipalCents+installment.InterestCents,
			"installment %d must split exactly into principal and interest", i+1)
	}

	// Principal across the schedule sums to the loan amount exactly
	var totalPrincipal int64
	for _, installment := range schedule {
		totalPrincipal += installment.PrincipalCents
	}
	assert.Equal(t, loan.AmountCents, totalPrincipal)

	// The last installment absorbs the rounding drift but stays within a
	// few cents of the fixed monthly payment.
	last := schedule[11]
	assert.InDelta(t, 85607, last.AmountCents, 5)
}

func TestBuildScheduleInterestDeclines(t *testing.T) {
	loan := &models.LoanApplication{
		ID:            2,
		AmountCents:   5000000,
		AnnualRateBps: 450,
		TermMonths:    24,
		StartDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	schedule := BuildSchedule(loan)
	require.Len(t, schedule, 24)

	for i := 1; i < len(schedule); i++ {
		assert.LessOrEqual(t, schedule[i].InterestCents, schedule[i-1].InterestCents,
			"interest must decline as principal is repaid")
	}
}

func TestBuildScheduleZeroRate(t *testing.T) {
	loan := &models.LoanApplication{
		ID:            3,
		AmountCents:   1200000,
		AnnualRateBps: 0,
		TermMonths:    12,
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	schedule := BuildSchedule(loan)
	require.Len(t, schedule, 12)

	for _, installment := range schedule {
		assert.Equal(t, int64(0), installment.InterestCents)
		assert.Equal(t, int64(100000), installment.PrincipalCents)
	}
}
