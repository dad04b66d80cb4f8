package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Account types
const (
	AccountChecking = "CHECKING"
	AccountSavings  = "SAVINGS"
)

// Account statuses
const (
	AccountActive = "ACTIVE"
	AccountFrozen = "FROZEN"
	AccountClosed = "CLOSED"
)

// Transaction kinds
const (
	TxDeposit      = "DEPOSIT"
	TxWithdrawal   = "WITHDRAWAL"
	TxTransferIn   = "TRANSFER_IN"
	TxTransferOut  = "TRANSFER_OUT"
	TxDisbursement = "LOAN_DISBURSEMENT"
	TxRepayment    = "LOAN_REPAYMENT"
)

// Loan statuses
const (
	LoanPending  = "PENDING"
	LoanApproved = "APPROVED"
	LoanActive   = "ACTIVE"
	LoanRejected = "REJECTED"
	LoanPaidOff  = "PAID_OFF"
)

// Repayment statuses
const (
	RepaymentScheduled = "SCHEDULED"
	RepaymentPaid      = "PAID"
	RepaymentLate      = "LATE"
)

// Role names
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// BaseModel provides common fields and auto-generated ULID for ledger models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User represents a bank user account. Users carry numeric ids because the
// rest of the bank's systems address them that way.
type User struct {
	ID           int64      `json:"userId" gorm:"primaryKey;autoIncrement"`
	Username     string     `json:"username" gorm:"unique;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	FullName     string     `json:"fullName"`
	Roles        []Role     `json:"roles" gorm:"many2many:user_roles;"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"-" gorm:"autoUpdateTime"`
}

// RoleNames flattens the role association into plain strings
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Role represents a named authority (USER, ADMIN)
type Role struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"unique;not null"`
}

// Account represents a bank account. Balances are stored as integer cents.
type Account struct {
	BaseModel
	UserID       int64  `json:"userId" gorm:"not null;index"`
	Type         string `json:"type" gorm:"not null"`
	Status       string `json:"status" gorm:"not null;default:ACTIVE"`
	BalanceCents int64  `json:"-" gorm:"not null;default:0"`

	// Relationships
	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Transaction represents one booked movement on an account
type Transaction struct {
	BaseModel
	AccountID      string `json:"accountId" gorm:"not null;index"`
	Kind           string `json:"kind" gorm:"not null"`
	AmountCents    int64  `json:"-" gorm:"not null"`
	CounterpartyID string `json:"counterpartyId,omitempty"` // other account on transfers
	OperatorID     int64  `json:"operatorId"`               // user who booked the movement

	// Relationships
	Account Account `json:"-" gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// LoanApplication represents a loan through its whole lifecycle:
// PENDING -> APPROVED -> ACTIVE -> PAID_OFF, or PENDING -> REJECTED.
type LoanApplication struct {
	ID            int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        int64      `json:"userId" gorm:"not null;index"`
	AccountID     string     `json:"accountId" gorm:"not null"`
	AmountCents   int64      `json:"-" gorm:"not null"`
	AnnualRateBps int64      `json:"-" gorm:"not null"` // basis points, 4.50% = 450
	TermMonths    int        `json:"termMonths" gorm:"not null"`
	Status        string     `json:"status" gorm:"not null;default:PENDING"`
	StartDate     time.Time  `json:"-" gorm:"not null"`
	DisbursedAt   *time.Time `json:"-"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	Repayments []LoanRepayment `json:"-" gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE"`
}

// LoanRepayment is one installment of an approved loan's schedule
type LoanRepayment struct {
	ID             int64      `json:"-" gorm:"primaryKey;autoIncrement"`
	LoanID         int64      `json:"-" gorm:"not null;index"`
	Seq            int        `json:"seq" gorm:"not null"`
	DueDate        time.Time  `json:"-" gorm:"not null"`
	AmountCents    int64      `json:"-" gorm:"not null"`
	PrincipalCents int64      `json:"-" gorm:"not null"`
	InterestCents  int64      `json:"-" gorm:"not null"`
	Status         string     `json:"status" gorm:"not null;default:SCHEDULED"`
	PaidAt         *time.Time `json:"-"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&User{}, &Role{}, &Account{}, &Transaction{}, &LoanApplication{}, &LoanRepayment{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
