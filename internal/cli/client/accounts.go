package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Account represents a bank account
type Account struct {
	ID        string `json:"id"`
	UserID    int64  `json:"userId"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Balance   string `json:"balance"`
	CreatedAt string `json:"created_at"`
}

// AccountPage is one page of the admin account listing
type AccountPage struct {
	Accounts []Account `json:"accounts"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Size     int       `json:"size"`
}

// OpenAccount creates a new account for the given user
func (c *Client) OpenAccount(userID int64, accountType string) (*Account, error) {
	q := url.Values{}
	q.Set("userId", strconv.FormatInt(userID, 10))
	q.Set("accountType", accountType)

	var account Account
	if err := c.do(http.MethodPost, "/api/accounts/create", q, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// MyAccounts returns all accounts owned by the given user
func (c *Client) MyAccounts(userID int64) ([]Account, error) {
	q := url.Values{}
	q.Set("userId", strconv.FormatInt(userID, 10))

	var accounts []Account
	if err := c.do(http.MethodGet, "/api/accounts/my-accounts", q, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// CloseAccount closes an account. Only empty, active accounts can close.
func (c *Client) CloseAccount(accountID string, operatorID int64) error {
	q := url.Values{}
	q.Set("operatorId", strconv.FormatInt(operatorID, 10))
	return c.do(http.MethodDelete, "/api/accounts/"+accountID, q, nil, nil)
}

// FreezeAccount freezes an account
func (c *Client) FreezeAccount(accountID string, operatorID int64) error {
	q := url.Values{}
	q.Set("operatorId", strconv.FormatInt(operatorID, 10))
	return c.do(http.MethodPut, fmt.Sprintf("/api/accounts/%s/freeze", accountID), q, nil, nil)
}

// UnfreezeAccount unfreezes a frozen account
func (c *Client) UnfreezeAccount(accountID string, operatorID int64) error {
	q := url.Values{}
	q.Set("operatorId", strconv.FormatInt(operatorID, 10))
	return c.do(http.MethodPut, fmt.Sprintf("/api/accounts/%s/unfreeze", accountID), q, nil, nil)
}

// RestoreAccount reopens a closed account
func (c *Client) RestoreAccount(accountID string, operatorID int64) (*Account, error) {
	q := url.Values{}
	q.Set("operatorId", strconv.FormatInt(operatorID, 10))

	var account Account
	if err := c.do(http.MethodPut, fmt.Sprintf("/api/accounts/%s/restore", accountID), q, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// AllAccounts returns a page of every account in the bank (admin only)
func (c *Client) AllAccounts(page, size int) (*AccountPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var result AccountPage
	if err := c.do(http.MethodGet, "/api/accounts/admin", q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
