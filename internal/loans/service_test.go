package loans

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tellerdesk-dev/tellerdesk/internal/ledger"
	"github.com/tellerdesk-dev/tellerdesk/internal/models"
)

type testEnv struct {
	db      *gorm.DB
	ledger  *ledger.Service
	loans   *Service
	reserve *models.Account
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	nop := zerolog.Nop()
	ledgerService := ledger.NewService(db, nop)
	loansService := NewService(db, ledgerService, nop)

	// The bank itself plus its loan reserve, flush with cash.
	bank := &models.User{Username: "bank", PasswordHash: "x", FullName: "The Bank"}
	require.NoError(t, db.Create(bank).Error)
	require.Equal(t, ReserveUserID, bank.ID)

	reserve, err := ledgerService.OpenAccount(bank.ID, models.AccountChecking)
	require.NoError(t, err)
	require.NoError(t, db.Model(reserve).Update("balance_cents", int64(100000000)).Error)
	reserve.BalanceCents = 100000000

	return &testEnv{db: db, ledger: ledgerService, loans: loansService, reserve: reserve}
}

func (e *testEnv) newBorrower(t *testing.T, username string, balanceCents int64) (*models.User, *models.Account) {
	t.Helper()

	user := &models.User{Username: username, PasswordHash: "x", FullName: username}
	require.NoError(t, e.db.Create(user).Error)

	account, err := e.ledger.OpenAccount(user.ID, models.AccountChecking)
	require.NoError(t, err)
	if balanceCents > 0 {
		require.NoError(t, e.db.Model(account).Update("balance_cents", balanceCents).Error)
		account.BalanceCents = balanceCents
	}
	return user, account
}

func futureStart() time.Time {
	return time.Now().AddDate(0, 1, 0)
}

func TestApplyCreatesPendingLoan(t *testing.T) {
	env := newTestEnv(t)
	user, account := env.newBorrower(t, "alice", 0)

	loan, err := env.loans.Apply(user.ID, account.ID, 500000, 450, 12, futureStart())
	require.NoError(t, err)

	assert.Equal(t, models.LoanPending, loan.Status)
	assert.Equal(t, user.ID, loan.UserID)

	pending, err := env.loans.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestApplyRejectsNearStartDate(t *testing.T) {
	env := newTestEnv(t)
	user, account := env.newBorrower(t, "alice", 0)

	_, err := env.loans.Apply(user.ID, account.ID, 500000, 450, 12, time.Now().AddDate(0, 0, 7))
	assert.ErrorIs(t, err, ErrStartDateTooSoon)
}

func TestApplyRejectsForeignAccount(t *testing.T) {
	env := newTestEnv(t)
	_, account := env.newBorrower(t, "alice", 0)
	bob, _ := env.newBorrower(t, "bob", 0)

	_, err := env.loans.Apply(bob.ID, account.ID, 500000, 450, 12, futureStart())
	assert.ErrorIs(t, err, ErrWrongAccountOwner)
}

func TestApproveGeneratesSchedule(t *testing.T) {
	env := newTestEnv(t)
	user, account := env.newBorrower(t, "alice", 0)

	loan, err := env.loans.Apply(user.ID, account.ID, 1000000, 500, 12, futureStart())
	require.NoError(t, err)

	approved, err := env.loans.Approve(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanApproved, approved.Status)

	schedule, err := env.loans.Schedule(loan.ID)
	require.NoError(t, err)
	assert.Len(t, schedule, 12)

	// A decided loan cannot be decided again
	_, err = env.loans.Approve(loan.ID)
	assert.ErrorIs(t, err, ErrLoanNotPending)
	_, err = env.loans.Reject(loan.ID)
	assert.ErrorIs(t, err, ErrLoanNotPending)
}

func TestRejectLeavesNoSchedule(t *testing.T) {
	env := newTestEnv(t)
	user, account := env.newBorrower(t, "alice", 0)

	loan, err := env.loans.Apply(user.ID, account.ID, 1000000, 500, 12, futureStart())
	require.NoError(t, err)

	rejected, err := env.loans.Reject(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanRejected, rejected.Status)

	schedule, err := env.loans.Schedule(loan.ID)
	require.NoError(t, err)
	assert.Empty(t, schedule)
}

func TestDisburseMovesMoneyFromReserve(t *testing.T) {
	env := newTestEnv(t)
	user, account := env.newBorrower(t, "alice", 0)

	loan, err := env.loans.Apply(user.ID, account.ID, 1000000, 500, 12, futureStart())
	require.NoError(t, err)
	_, err = env.loans.Approve(loan.ID)
	require.NoError(t, err)

	env.loans.DisburseApproved()

	got, err := env.loans.Loan(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanActive, got.Status)
	require.NotNil(t, got.DisbursedAt)

	borrower, err := env.ledger.Account(account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), borrower.BalanceCents)

	reserve, err := env.ledger.Account(env.reserve.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(99000000), reserve.BalanceCents)
}

func TestRepayWalksScheduleToPaidOff(t *testing.T) {
	env := newTestEnv(t)
	user, account := env.newBorrower(t, "alice", 5000000)

	loan, err := env.loans.Apply(user.ID, account.ID, 1200000, 0, 3, futureStart())
	require.NoError(t, err)
	_, err = env.loans.Approve(loan.ID)
	require.NoError(t, err)
	env.loans.DisburseApproved()

	for seq := 1; seq <= 3; seq++ {
		installment, err := env.loans.Repay(loan.ID)
		require.NoError(t, err)
		assert.Equal(t, seq, installment.Seq)
		assert.Equal(t, models.RepaymentPaid, installment.Status)
	}

	_, err = env.loans.Repay(loan.ID)
	assert.ErrorIs(t, err, ErrNothingDue)

	got, err := env.loans.Loan(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanPaidOff, got.Status)
}

func TestRepayRequiresActiveLoan(t *testing.T) {
	env := newTestEnv(t)
	user, account := env.newBorrower(t, "alice", 0)

	loan, err := env.loans.Apply(user.ID, account.ID, 1000000, 500, 12, futureStart())
	require.NoError(t, err)

	_, err = env.loans.Repay(loan.ID)
	assert.ErrorIs(t, err, ErrLoanNotActive)
}

func TestCollectDueMarksUnfundedInstallmentsLate(t *testing.T) {
	env := newTestEnv(t)
	user, account := env.newBorrower(t, "alice", 0)

	start := time.Now().AddDate(0, 0, 20)
	loan, err := env.loans.Apply(user.ID, account.ID, 1200000, 0, 3, start)
	require.NoError(t, err)
	_, err = env.loans.Approve(loan.ID)
	require.NoError(t, err)
	env.loans.DisburseApproved()

	// Drain the borrower's account so the sweep cannot collect.
	require.NoError(t, env.ledger.Transfer(account.ID, env.reserve.ID, 1200000, user.ID))

	// Sweep as of the first due date.
	env.loans.CollectDue(start.AddDate(0, 1, 0))

	schedule, err := env.loans.Schedule(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RepaymentLate, schedule[0].Status)
	assert.Equal(t, models.RepaymentScheduled, schedule[1].Status)
}

func TestCollectDuePaysFundedInstallments(t *testing.T) {
	env := newTestEnv(t)
	user, account := env.newBorrower(t, "alice", 0)

	start := time.Now().AddDate(0, 0, 20)
	loan, err := env.loans.Apply(user.ID, account.ID, 1200000, 0, 3, start)
	require.NoError(t, err)
	_, err = env.loans.Approve(loan.ID)
	require.NoError(t, err)
	env.loans.DisburseApproved()

	env.loans.CollectDue(start.AddDate(0, 1, 0))

	schedule, err := env.loans.Schedule(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RepaymentPaid, schedule[0].Status)

	borrower, err := env.ledger.Account(account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(800000), borrower.BalanceCents)
}
