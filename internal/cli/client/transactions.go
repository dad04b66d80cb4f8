package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Transaction represents a booked account movement
type Transaction struct {
	ID             string `json:"id"`
	AccountID      string `json:"accountId"`
	Kind           string `json:"kind"`
	Amount         string `json:"amount"`
	CounterpartyID string `json:"counterpartyId,omitempty"`
	OperatorID     int64  `json:"operatorId"`
	CreatedAt      string `json:"created_at"`
}

// Deposit books a cash deposit into an account. The original back office
// carries these operations as query parameters, so the gateway does too.
func (c *Client) Deposit(accountID, amount string, operatorID int64) (*Transaction, error) {
	q := url.Values{}
	q.Set("accountId", accountID)
	q.Set("amount", amount)
	q.Set("operatorId", strconv.FormatInt(operatorID, 10))

	var tx Transaction
	if err := c.do(http.MethodPost, "/api/transactions/deposit", q, nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Withdraw books a cash withdrawal from an account
func (c *Client) Withdraw(accountID, amount string, operatorID int64) (*Transaction, error) {
	q := url.Values{}
	q.Set("accountId", accountID)
	q.Set("amount", amount)
	q.Set("operatorId", strconv.FormatInt(operatorID, 10))

	var tx Transaction
	if err := c.do(http.MethodPost, "/api/transactions/withdraw", q, nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Transfer moves money between two accounts atomically
func (c *Client) Transfer(fromAccountID, toAccountID, amount string, operatorID int64) error {
	q := url.Values{}
	q.Set("fromAccountId", fromAccountID)
	q.Set("toAccountId", toAccountID)
	q.Set("amount", amount)
	q.Set("operatorId", strconv.FormatInt(operatorID, 10))

	return c.do(http.MethodPost, "/api/transactions/transfer", q, nil, nil)
}

// History returns an account's transactions, optionally limited to a date
// range (YYYY-MM-DD, inclusive).
func (c *Client) History(accountID, startDate, endDate string) ([]Transaction, error) {
	q := url.Values{}
	if startDate != "" {
		q.Set("startDate", startDate)
	}
	if endDate != "" {
		q.Set("endDate", endDate)
	}

	var txs []Transaction
	err := c.do(http.MethodGet, fmt.Sprintf("/api/transactions/%s/history", accountID), q, nil, &txs)
	if err != nil {
		return nil, err
	}
	return txs, nil
}
