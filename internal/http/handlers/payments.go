package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"spinwheel/internal/ledger"
	"spinwheel/internal/service"

	"github.com/gin-gonic/gin"
)

type CreateDepositRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

type WithdrawRequest struct {
	Amount  int64  `json:"amount" binding:"required,min=1"`
	Account string `json:"account" binding:"required"`
}

// DepositInfo returns the receiver account the user should transfer to.
func (h *Handler) DepositInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.PaymentService.DepositInfo())
}

// CreateDeposit opens a pending deposit with a payment reference.
func (h *Handler) CreateDeposit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	d, err := h.PaymentService.CreateDeposit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, service.ErrDepositTooSmall) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "deposit below minimum amount"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create deposit"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"deposit": d})
}

// ConfirmDeposit credits a pending deposit. Operator endpoint.
func (h *Handler) ConfirmDeposit(c *gin.Context) {
	depositID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deposit id"})
		return
	}

	d, newBalance, err := h.PaymentService.ConfirmDeposit(c.Request.Context(), depositID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDepositNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "deposit not found"})
		case errors.Is(err, service.ErrDepositNotPending):
			c.JSON(http.StatusConflict, gin.H{"error": "deposit is not pending"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm deposit"})
		}
		return
	}

	h.Hub.NotifyBalance(d.UserID, newBalance, "deposit")
	c.JSON(http.StatusOK, gin.H{"deposit": d, "balance": newBalance})
}

// ListDeposits returns the user's deposits, newest first.
func (h *Handler) ListDeposits(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	deposits, err := h.PaymentService.ListDeposits(c.Request.Context(), userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list deposits"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposits": deposits})
}

// RequestWithdrawal debits the amount and opens a pending payout request.
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if strings.TrimSpace(req.Account) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account is required"})
		return
	}

	w, newBalance, err := h.PaymentService.RequestWithdrawal(c.Request.Context(), userID, req.Amount, req.Account)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		case errors.Is(err, ledger.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request withdrawal"})
		}
		return
	}

	h.Hub.NotifyBalance(userID, newBalance, "withdrawal")
	c.JSON(http.StatusCreated, gin.H{"withdrawal": w, "balance": newBalance})
}

// CancelWithdrawal cancels a pending request and refunds the debit.
func (h *Handler) CancelWithdrawal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	withdrawalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}

	newBalance, err := h.PaymentService.CancelWithdrawal(c.Request.Context(), userID, withdrawalID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWithdrawalNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
		case errors.Is(err, service.ErrWithdrawalNotPending):
			c.JSON(http.StatusConflict, gin.H{"error": "withdrawal is not pending"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel withdrawal"})
		}
		return
	}

	h.Hub.NotifyBalance(userID, newBalance, "withdrawal_refund")
	c.JSON(http.StatusOK, gin.H{"balance": newBalance})
}

// ListWithdrawals returns the user's withdrawal requests, newest first.
func (h *Handler) ListWithdrawals(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	withdrawals, err := h.PaymentService.ListWithdrawals(c.Request.Context(), userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}
