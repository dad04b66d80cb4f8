package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tellerdesk-dev/tellerdesk/internal/money"
)

// deposit books a cash deposit. Amounts ride as query parameters for
// compatibility with the production back office.
func (s *Server) deposit(c *gin.Context) {
	session, _ := GetSessionData(c)

	accountID := c.Query("accountId")
	amountCents, err := money.ParsePositiveCents(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := s.ledger.Deposit(accountID, amountCents, session.UserID)
	if err != nil {
		s.respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTransactionDTO(tx))
}

// withdraw books a cash withdrawal from an account the user owns
func (s *Server) withdraw(c *gin.Context) {
	session, _ := GetSessionData(c)

	accountID := c.Query("accountId")
	amountCents, err := money.ParsePositiveCents(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.requireOwnership(c, accountID, session.UserID); err != nil {
		return
	}

	tx, err := s.ledger.Withdraw(accountID, amountCents, session.UserID)
	if err != nil {
		s.respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTransactionDTO(tx))
}

// transfer moves money between two accounts; the source must belong to
// the session user
func (s *Server) transfer(c *gin.Context) {
	session, _ := GetSessionData(c)

	fromID := c.Query("fromAccountId")
	toID := c.Query("toAccountId")
	amountCents, err := money.ParsePositiveCents(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.requireOwnership(c, fromID, session.UserID); err != nil {
		return
	}

	if err := s.ledger.Transfer(fromID, toID, amountCents, session.UserID); err != nil {
		s.respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "transferred"})
}

// history returns an account's transactions, optionally limited to an
// inclusive date range (YYYY-MM-DD)
func (s *Server) history(c *gin.Context) {
	session, _ := GetSessionData(c)
	accountID := c.Param("id")

	if err := s.requireOwnership(c, accountID, session.UserID); err != nil {
		return
	}

	from, err := parseDateParam(c.Query("startDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate, expected YYYY-MM-DD"})
		return
	}
	to, err := parseDateParam(c.Query("endDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate, expected YYYY-MM-DD"})
		return
	}

	txs, err := s.ledger.History(accountID, from, to)
	if err != nil {
		s.respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTransactionDTOs(txs))
}

func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, errors.New("bad date")
	}
	return &t, nil
}
