package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tellerdesk-dev/tellerdesk/internal/loans"
	"github.com/tellerdesk-dev/tellerdesk/internal/models"
	"github.com/tellerdesk-dev/tellerdesk/internal/money"
)

// ApplyLoanRequest represents a loan application
type ApplyLoanRequest struct {
	AccountID  string `json:"accountId" binding:"required,account_id"`
	Amount     string `json:"amount" binding:"required"`
	AnnualRate string `json:"annualRate" binding:"required"`
	TermMonths int    `json:"termMonths" binding:"required,gt=0,lte=360"`
	StartDate  string `json:"startDate"`
}

// applyLoan files a new loan application for the session user
func (s *Server) applyLoan(c *gin.Context) {
	session, _ := GetSessionData(c)

	var req ApplyLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amountCents, err := money.ParsePositiveCents(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	// The rate is a percentage string; cents arithmetic doubles as basis
	// points ("4.50" -> 450).
	rateBps, err := money.ParseCents(req.AnnualRate)
	if err != nil || rateBps < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid annualRate"})
		return
	}

	// Default start date: one month out, which clears the 15-day minimum
	startDate := time.Now().AddDate(0, 1, 0)
	if req.StartDate != "" {
		parsed, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate, expected YYYY-MM-DD"})
			return
		}
		startDate = parsed
	}

	loan, err := s.loans.Apply(session.UserID, req.AccountID, amountCents, rateBps, req.TermMonths, startDate)
	if err != nil {
		s.respondLoanError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLoanDTO(loan))
}

// listLoans returns the session user's loans. Admins may pass userId to
// inspect someone else's.
func (s *Server) listLoans(c *gin.Context) {
	session, _ := GetSessionData(c)

	userID := session.UserID
	if raw := c.Query("userId"); raw != "" && session.HasRole(models.RoleAdmin) {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userId"})
			return
		}
		userID = parsed
	}

	result, err := s.loans.ByUser(userID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list loans")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, toLoanDTOs(result))
}

// pendingLoans lists applications awaiting a decision (admin only)
func (s *Server) pendingLoans(c *gin.Context) {
	result, err := s.loans.Pending()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list pending loans")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, toLoanDTOs(result))
}

// approveLoan approves a pending application and generates its schedule
func (s *Server) approveLoan(c *gin.Context) {
	loanID, err := loanIDParam(c)
	if err != nil {
		return
	}

	loan, err := s.loans.Approve(loanID)
	if err != nil {
		s.respondLoanError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLoanDTO(loan))
}

// rejectLoan declines a pending application
func (s *Server) rejectLoan(c *gin.Context) {
	loanID, err := loanIDParam(c)
	if err != nil {
		return
	}

	loan, err := s.loans.Reject(loanID)
	if err != nil {
		s.respondLoanError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLoanDTO(loan))
}

// repayLoan pays the next unpaid installment of the session user's loan
func (s *Server) repayLoan(c *gin.Context) {
	session, _ := GetSessionData(c)

	loanID, err := loanIDParam(c)
	if err != nil {
		return
	}

	if err := s.requireLoanOwnership(c, loanID, session.UserID); err != nil {
		return
	}

	installment, err := s.loans.Repay(loanID)
	if err != nil {
		s.respondLoanError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRepaymentDTO(installment))
}

// loanSchedule returns a loan's full repayment schedule
func (s *Server) loanSchedule(c *gin.Context) {
	session, _ := GetSessionData(c)

	loanID, err := loanIDParam(c)
	if err != nil {
		return
	}

	if err := s.requireLoanOwnership(c, loanID, session.UserID); err != nil {
		return
	}

	schedule, err := s.loans.Schedule(loanID)
	if err != nil {
		s.respondLoanError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRepaymentDTOs(schedule))
}

func loanIDParam(c *gin.Context) (int64, error) {
	loanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loan id"})
		c.Abort()
		return 0, err
	}
	return loanID, nil
}

// requireLoanOwnership aborts unless the loan belongs to the user or the
// user is an admin
func (s *Server) requireLoanOwnership(c *gin.Context, loanID, userID int64) error {
	loan, err := s.loans.Loan(loanID)
	if err != nil {
		s.respondLoanError(c, err)
		return err
	}

	session, _ := GetSessionData(c)
	if loan.UserID != userID && !session.HasRole(models.RoleAdmin) {
		err := errors.New("loan owned by another user")
		c.JSON(http.StatusForbidden, gin.H{"error": "Loan belongs to another user"})
		c.Abort()
		return err
	}
	return nil
}

// respondLoanError maps loan errors onto status codes
func (s *Server) respondLoanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, loans.ErrLoanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
	case errors.Is(err, loans.ErrLoanNotPending),
		errors.Is(err, loans.ErrLoanNotApproved),
		errors.Is(err, loans.ErrLoanNotActive),
		errors.Is(err, loans.ErrNothingDue):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, loans.ErrStartDateTooSoon),
		errors.Is(err, loans.ErrWrongAccountOwner):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.respondLedgerError(c, err)
	}
}
