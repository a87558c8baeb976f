package handlers

import (
	"errors"
	"net/http"

	"spinwheel/internal/ledger"
	"spinwheel/internal/service"
	"spinwheel/internal/wheel"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	spinsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wheel_spins_total",
			Help: "Total wheel spins by result",
		},
		[]string{"result"},
	)
	spinPayoutTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wheel_payout_total",
			Help: "Total amount paid out by the wheel",
		},
	)
)

func init() {
	prometheus.MustRegister(spinsTotal)
	prometheus.MustRegister(spinPayoutTotal)
}

type SpinHTTPRequest struct {
	Multi bool `json:"multi"`
}

// Spin runs one paid spin, or the discounted multi-spin batch when the
// multi flag is set. A batch is one upfront charge and one batched
// settlement.
func (h *Handler) Spin(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var httpReq SpinHTTPRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&httpReq); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	req := service.SpinRequest{Cost: h.Cfg.SpinCost, Count: 1}
	if httpReq.Multi {
		req = service.SpinRequest{Cost: h.Cfg.MultiSpinCost, Count: h.Cfg.MultiSpinCount}
	}

	result, err := h.SpinService.Spin(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		case errors.Is(err, ledger.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		case errors.Is(err, service.ErrSettlementPending) && result != nil:
			// outcomes are final, only the credit is outstanding
			recordSpinMetrics(result)
			c.JSON(http.StatusAccepted, gin.H{
				"result":  result,
				"pending": true,
				"message": "settlement pending, retry with session id",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "spin failed"})
		}
		return
	}

	recordSpinMetrics(result)
	h.Hub.NotifyBalance(userID, result.FinalBalance, "spin")
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func recordSpinMetrics(result *service.SpinResult) {
	for _, o := range result.Outcomes {
		if wheel.SettlementDelta(o) > 0 {
			spinsTotal.WithLabelValues("win").Inc()
		} else {
			spinsTotal.WithLabelValues("lose").Inc()
		}
	}
	if result.TotalDelta > 0 {
		spinPayoutTotal.Add(float64(result.TotalDelta))
	}
}

type SettleRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// SettleSpin retries settlement of a session left pending by a transient
// credit failure. Safe to call repeatedly.
func (h *Handler) SettleSpin(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	result, err := h.SpinService.RetrySettlement(c.Request.Context(), userID, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, service.ErrSessionAborted):
			c.JSON(http.StatusConflict, gin.H{"error": "session aborted, stake refunded"})
		case errors.Is(err, service.ErrSettlementPending):
			c.JSON(http.StatusAccepted, gin.H{
				"result":  result,
				"pending": true,
				"message": "settlement still pending, retry later",
			})
		case errors.Is(err, ledger.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "settlement already in progress"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
		}
		return
	}

	h.Hub.NotifyBalance(userID, result.FinalBalance, "settlement")
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// SpinInfo describes the wheel layout and prices for the frontend.
func (h *Handler) SpinInfo(c *gin.Context) {
	sectors := h.SpinService.SectorMap()
	c.JSON(http.StatusOK, gin.H{
		"sectors":          sectors.Sectors(),
		"sector_width":     sectors.Width(),
		"spin_cost":        h.Cfg.SpinCost,
		"multi_spin_cost":  h.Cfg.MultiSpinCost,
		"multi_spin_count": h.Cfg.MultiSpinCount,
		"expected_return":  wheel.ExpectedReturn(sectors),
	})
}
