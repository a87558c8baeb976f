package handlers

import (
	"context"
	"errors"
	"net/http"

	"spinwheel/internal/domain"
	"spinwheel/internal/ledger"
	"spinwheel/internal/logger"
	"spinwheel/internal/repository"

	"github.com/gin-gonic/gin"
)

// ReferralStore is the referral persistence surface the handlers need.
// Implemented by repository.ReferralRepository.
type ReferralStore interface {
	GetOrCreateCode(ctx context.Context, userID int64) (string, error)
	GetUserByCode(ctx context.Context, code string) (int64, error)
	Create(ctx context.Context, referrerID, referredID int64) (bool, error)
	MarkBonusPaid(ctx context.Context, referrerID, referredID int64) (bool, error)
	GetByReferrer(ctx context.Context, userID int64) ([]repository.Referral, error)
	GetStats(ctx context.Context, userID int64, bonusPerReferral int64) (*repository.ReferralStats, error)
}

// ReferralHandler handles referral codes and bonuses.
type ReferralHandler struct {
	repo   ReferralStore
	ledger ledger.Ledger
	notify func(userID, balance int64, reason string)
	bonus  int64
}

func NewReferralHandler(repo ReferralStore, l ledger.Ledger, notify func(userID, balance int64, reason string), bonus int64) *ReferralHandler {
	return &ReferralHandler{repo: repo, ledger: l, notify: notify, bonus: bonus}
}

// GetReferralCode returns the user's referral code, generating one if
// needed.
func (h *ReferralHandler) GetReferralCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	code, err := h.repo.GetOrCreateCode(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get referral code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code})
}

// GetReferralStats returns referral counters and the referral list.
func (h *ReferralHandler) GetReferralStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	stats, err := h.repo.GetStats(ctx, userID, h.bonus)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}

	referrals, err := h.repo.GetByReferrer(ctx, userID)
	if err != nil {
		referrals = []repository.Referral{}
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":     stats,
		"referrals": referrals,
	})
}

type ApplyReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyReferralCode links the current user to a referrer and credits the
// bonus. A user can be referred at most once.
func (h *ReferralHandler) ApplyReferralCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req ApplyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	ctx := c.Request.Context()
	referrerID, err := h.repo.GetUserByCode(ctx, req.Code)
	if errors.Is(err, repository.ErrCodeNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid referral code"})
		return
	}
	if err != nil {
		logger.Error("referral code lookup failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "referral lookup unavailable, try again"})
		return
	}
	if referrerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot use your own code"})
		return
	}

	created, err := h.repo.Create(ctx, referrerID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply referral"})
		return
	}
	if !created {
		c.JSON(http.StatusBadRequest, gin.H{"error": "already referred"})
		return
	}

	// MarkBonusPaid is the idempotency guard: only the first flip pays.
	paid, err := h.repo.MarkBonusPaid(ctx, referrerID, userID)
	if err == nil && paid {
		balance, creditErr := h.ledger.Credit(ctx, referrerID, h.bonus, domain.TxTypeReferral,
			map[string]interface{}{"referred_id": userID})
		if creditErr != nil {
			logger.Error("failed to credit referral bonus", "referrer", referrerID, "error", creditErr)
		} else if h.notify != nil {
			h.notify(referrerID, balance, "referral_bonus")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "referral applied successfully"})
}
