package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tellerdesk-dev/tellerdesk/internal/ledger"
	"github.com/tellerdesk-dev/tellerdesk/internal/models"
)

// AccountPageResponse is one page of the admin account listing
type AccountPageResponse struct {
	Accounts []AccountDTO `json:"accounts"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	Size     int          `json:"size"`
}

// openAccount opens a new account for the session user
func (s *Server) openAccount(c *gin.Context) {
	session, _ := GetSessionData(c)

	accountType := c.Query("accountType")
	if accountType == "" {
		accountType = models.AccountChecking
	}

	account, err := s.ledger.OpenAccount(session.UserID, accountType)
	if err != nil {
		s.respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAccountDTO(account))
}

// myAccounts lists the session user's accounts
func (s *Server) myAccounts(c *gin.Context) {
	session, _ := GetSessionData(c)

	accounts, err := s.ledger.AccountsByUser(session.UserID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list accounts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, toAccountDTOs(accounts))
}

// closeAccount closes an account owned by the session user
func (s *Server) closeAccount(c *gin.Context) {
	session, _ := GetSessionData(c)
	accountID := c.Param("id")

	if err := s.requireOwnership(c, accountID, session.UserID); err != nil {
		return
	}

	if err := s.ledger.CloseAccount(accountID, session.UserID); err != nil {
		s.respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

func (s *Server) freezeAccount(c *gin.Context) {
	session, _ := GetSessionData(c)
	accountID := c.Param("id")

	if err := s.requireOwnership(c, accountID, session.UserID); err != nil {
		return
	}

	if err := s.ledger.FreezeAccount(accountID, session.UserID); err != nil {
		s.respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "frozen"})
}

func (s *Server) unfreezeAccount(c *gin.Context) {
	session, _ := GetSessionData(c)
	accountID := c.Param("id")

	if err := s.requireOwnership(c, accountID, session.UserID); err != nil {
		return
	}

	if err := s.ledger.UnfreezeAccount(accountID, session.UserID); err != nil {
		s.respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "active"})
}

func (s *Server) restoreAccount(c *gin.Context) {
	session, _ := GetSessionData(c)
	accountID := c.Param("id")

	if err := s.requireOwnership(c, accountID, session.UserID); err != nil {
		return
	}

	account, err := s.ledger.RestoreAccount(accountID, session.UserID)
	if err != nil {
		s.respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAccountDTO(account))
}

// allAccounts returns one page of every account in the bank (admin only)
func (s *Server) allAccounts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	accounts, total, err := s.ledger.AllAccounts(page, size)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list all accounts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, AccountPageResponse{
		Accounts: toAccountDTOs(accounts),
		Total:    total,
		Page:     page,
		Size:     size,
	})
}

// requireOwnership aborts with 404 for unknown accounts and 403 for
// accounts belonging to someone else. Admins may act on any account.
func (s *Server) requireOwnership(c *gin.Context, accountID string, userID int64) error {
	account, err := s.ledger.Account(accountID)
	if err != nil {
		s.respondLedgerError(c, err)
		return err
	}

	session, _ := GetSessionData(c)
	if account.UserID != userID && !session.HasRole(models.RoleAdmin) {
		err := errors.New("account owned by another user")
		c.JSON(http.StatusForbidden, gin.H{"error": "Account belongs to another user"})
		c.Abort()
		return err
	}
	return nil
}

// respondLedgerError maps ledger errors onto the status codes the clients
// key off: 404 for missing accounts, 409 for state conflicts.
func (s *Server) respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
	case errors.Is(err, ledger.ErrInsufficientFunds):
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient funds"})
	case errors.Is(err, ledger.ErrAccountNotActive),
		errors.Is(err, ledger.ErrAccountNotFrozen),
		errors.Is(err, ledger.ErrAccountNotClosed),
		errors.Is(err, ledger.ErrAccountNotEmpty),
		errors.Is(err, ledger.ErrSameAccount),
		errors.Is(err, ledger.ErrBalanceOverflow):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInvalidType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error().Err(err).Msg("Ledger operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
