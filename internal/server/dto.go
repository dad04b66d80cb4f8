package server

import (
	"time"

	"github.com/tellerdesk-dev/tellerdesk/internal/models"
	"github.com/tellerdesk-dev/tellerdesk/internal/money"
)

const dateLayout = "2006-01-02"

// AccountDTO is an account as the back-office clients see it: balances as
// decimal strings, never raw cents.
type AccountDTO struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountDTO(a *models.Account) AccountDTO {
	return AccountDTO{
		ID:        a.ID,
		UserID:    a.UserID,
		Type:      a.Type,
		Status:    a.Status,
		Balance:   money.FormatCents(a.BalanceCents),
		CreatedAt: a.CreatedAt,
	}
}

func toAccountDTOs(accounts []models.Account) []AccountDTO {
	out := make([]AccountDTO, 0, len(accounts))
	for i := range accounts {
		out = append(out, toAccountDTO(&accounts[i]))
	}
	return out
}

// TransactionDTO is one booked movement
type TransactionDTO struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"accountId"`
	Kind           string    `json:"kind"`
	Amount         string    `json:"amount"`
	CounterpartyID string    `json:"counterpartyId,omitempty"`
	OperatorID     int64     `json:"operatorId"`
	CreatedAt      time.Time `json:"created_at"`
}

func toTransactionDTO(tx *models.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:             tx.ID,
		AccountID:      tx.AccountID,
		Kind:           tx.Kind,
		Amount:         money.FormatCents(tx.AmountCents),
		CounterpartyID: tx.CounterpartyID,
		OperatorID:     tx.OperatorID,
		CreatedAt:      tx.CreatedAt,
	}
}

func toTransactionDTOs(txs []models.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(txs))
	for i := range txs {
		out = append(out, toTransactionDTO(&txs[i]))
	}
	return out
}

// LoanDTO is a loan application. The annual rate rides as a percentage
// string ("4.50"), matching how rates are quoted everywhere else.
type LoanDTO struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	AccountID   string `json:"accountId"`
	Amount      string `json:"amount"`
	AnnualRate  string `json:"annualRate"`
	TermMonths  int    `json:"termMonths"`
	Status      string `json:"status"`
	StartDate   string `json:"startDate"`
	DisbursedAt string `json:"disbursedAt,omitempty"`
}

func toLoanDTO(l *models.LoanApplication) LoanDTO {
	dto := LoanDTO{
		ID:         l.ID,
		UserID:     l.UserID,
		AccountID:  l.AccountID,
		Amount:     money.FormatCents(l.AmountCents),
		AnnualRate: money.FormatCents(l.AnnualRateBps),
		TermMonths: l.TermMonths,
		Status:     l.Status,
		StartDate:  l.StartDate.Format(dateLayout),
	}
	if l.DisbursedAt != nil {
		dto.DisbursedAt = l.DisbursedAt.Format(time.RFC3339)
	}
	return dto
}

func toLoanDTOs(loans []models.LoanApplication) []LoanDTO {
	out := make([]LoanDTO, 0, len(loans))
	for i := range loans {
		out = append(out, toLoanDTO(&loans[i]))
	}
	return out
}

// RepaymentDTO is one installment of a repayment schedule
type RepaymentDTO struct {
	Seq       int    `json:"seq"`
	DueDate   string `json:"dueDate"`
	Amount    string `json:"amount"`
	Principal string `json:"principal"`
	Interest  string `json:"interest"`
	Status    string `json:"status"`
	PaidAt    string `json:"paidAt,omitempty"`
}

func toRepaymentDTO(r *models.LoanRepayment) RepaymentDTO {
	dto := RepaymentDTO{
		Seq:       r.Seq,
		DueDate:   r.DueDate.Format(dateLayout),
		Amount:    money.FormatCents(r.AmountCents),
		Principal: money.FormatCents(r.PrincipalCents),
		Interest:  money.FormatCents(r.InterestCents),
		Status:    r.Status,
	}
	if r.PaidAt != nil {
		dto.PaidAt = r.PaidAt.Format(time.RFC3339)
	}
	return dto
}

func toRepaymentDTOs(schedule []models.LoanRepayment) []RepaymentDTO {
	out := make([]RepaymentDTO, 0, len(schedule))
	for i := range schedule {
		out = append(out, toRepaymentDTO(&schedule[i]))
	}
	return out
}

// UserDTO is a user as the administration endpoints report them
type UserDTO struct {
	UserID      int64     `json:"userId"`
	Username    string    `json:"username"`
	FullName    string    `json:"fullName"`
	Roles       []string  `json:"roles"`
	LastLoginAt string    `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserDTO(u *models.User) UserDTO {
	dto := UserDTO{
		UserID:    u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Roles:     u.RoleNames(),
		CreatedAt: u.CreatedAt,
	}
	if u.LastLoginAt != nil {
		dto.LastLoginAt = u.LastLoginAt.Format(time.RFC3339)
	}
	return dto
}
