package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Loan represents a loan application and its lifecycle state
type Loan struct {
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

// Repayment is one installment of a loan's repayment schedule
type Repayment struct {
	Seq       int    `json:"seq"`
	DueDate   string `json:"dueDate"`
	Amount    string `json:"amount"`
	Principal string `json:"principal"`
	Interest  string `json:"interest"`
	Status    string `json:"status"`
	PaidAt    string `json:"paidAt,omitempty"`
}

// ApplyLoanRequest represents a loan application
type ApplyLoanRequest struct {
	AccountID  string `json:"accountId"`
	Amount     string `json:"amount"`
	AnnualRate string `json:"annualRate"`
	TermMonths int    `json:"termMonths"`
	StartDate  string `json:"startDate"`
}

// ApplyLoan submits a loan application for the given account
func (c *Client) ApplyLoan(req ApplyLoanRequest) (*Loan, error) {
	var loan Loan
	if err := c.do(http.MethodPost, "/api/loans/apply", nil, req, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

// Loans returns the loans belonging to the given user
func (c *Client) Loans(userID int64) ([]Loan, error) {
	q := url.Values{}
	q.Set("userId", strconv.FormatInt(userID, 10))

	var loans []Loan
	if err := c.do(http.MethodGet, "/api/loans", q, nil, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

// PendingLoans returns all applications awaiting a decision (admin only)
func (c *Client) PendingLoans() ([]Loan, error) {
	var loans []Loan
	if err := c.do(http.MethodGet, "/api/loans/pending", nil, nil, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

// ApproveLoan approves a pending application (admin only)
func (c *Client) ApproveLoan(loanID int64) (*Loan, error) {
	var loan Loan
	if err := c.do(http.MethodPut, fmt.Sprintf("/api/loans/%d/approve", loanID), nil, nil, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

// RejectLoan rejects a pending application (admin only)
func (c *Client) RejectLoan(loanID int64) (*Loan, error) {
	var loan Loan
	if err := c.do(http.MethodPut, fmt.Sprintf("/api/loans/%d/reject", loanID), nil, nil, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

// Repay pays the next due installment of a loan
func (c *Client) Repay(loanID int64) (*Repayment, error) {
	var repayment Repayment
	if err := c.do(http.MethodPost, fmt.Sprintf("/api/loans/%d/repay", loanID), nil, nil, &repayment); err != nil {
		return nil, err
	}
	return &repayment, nil
}

// Schedule returns the full repayment schedule of a loan
func (c *Client) Schedule(loanID int64) ([]Repayment, error) {
	var schedule []Repayment
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/loans/%d/schedule", loanID), nil, nil, &schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}
