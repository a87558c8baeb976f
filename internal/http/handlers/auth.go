package handlers

import (
	"errors"
	"net/http"
	"strings"

	"spinwheel/internal/domain"
	"spinwheel/internal/logger"
	"spinwheel/internal/repository"
	"spinwheel/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type SignupRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=32"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	ReferralCode string `json:"referral_code"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signup registers a new account. New accounts start at zero balance; an
// optional referral code links the account to its referrer.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	ctx := c.Request.Context()

	var referredBy *int64
	if code := strings.TrimSpace(req.ReferralCode); code != "" {
		referrerID, err := h.ReferralRepo.GetUserByCode(ctx, code)
		if errors.Is(err, repository.ErrCodeNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid referral code"})
			return
		}
		if err != nil {
			logger.Error("referral code lookup failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "referral lookup unavailable, try again"})
			return
		}
		referredBy = &referrerID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		ReferredBy:   referredBy,
	}
	if err := h.UserRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		logger.Error("failed to create user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	if referredBy != nil {
		h.applyReferralBonus(c, *referredBy, user.ID)
	}

	token, err := service.GenerateJWT(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"balance":  user.Balance,
		},
	})
}

// applyReferralBonus records the referral and credits the referrer once.
func (h *Handler) applyReferralBonus(c *gin.Context, referrerID, referredID int64) {
	ctx := c.Request.Context()

	created, err := h.ReferralRepo.Create(ctx, referrerID, referredID)
	if err != nil || !created {
		return
	}

	paid, err := h.ReferralRepo.MarkBonusPaid(ctx, referrerID, referredID)
	if err != nil || !paid {
		return
	}

	balance, err := h.Ledger.Credit(ctx, referrerID, h.Cfg.ReferralBonus, domain.TxTypeReferral,
		map[string]interface{}{"referred_id": referredID})
	if err != nil {
		logger.Error("failed to credit referral bonus", "referrer", referrerID, "error", err)
		return
	}
	h.Hub.NotifyBalance(referrerID, balance, "referral_bonus")
}

// Login authenticates by email and password.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.UserRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		logger.Error("failed to look up user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := service.GenerateJWT(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"balance":  user.Balance,
		},
	})
}
