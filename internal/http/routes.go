package http

import (
	"time"

	"spinwheel/internal/config"
	"spinwheel/internal/http/handlers"
	"spinwheel/internal/http/middleware"
	"spinwheel/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, version string) {
	hub := ws.NewHub()
	h := handlers.NewHandler(db, cfg, hub)
	healthHandler := handlers.NewHealthHandler(db, version)

	apiRateWindow := time.Duration(cfg.APIRateWindow) * time.Second
	authRateWindow := time.Duration(cfg.AuthRateWindow) * time.Second
	spinRateWindow := time.Duration(cfg.SpinRateWindow) * time.Second

	// Health checks and metrics (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket balance push
	r.GET("/ws", ws.HandleWS(hub))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, apiRateWindow))
	registerAPIRoutes(v1, h, cfg, authRateWindow, spinRateWindow)
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config, authRateWindow, spinRateWindow time.Duration) {
	// Auth
	authRL := middleware.RedisRateLimit(cfg.AuthRateLimit, authRateWindow)
	api.POST("/auth/signup", authRL, h.Signup)
	api.POST("/auth/login", authRL, h.Login)

	// Profile
	api.GET("/me", middleware.JWT(), h.Me)
	api.GET("/me/balance", middleware.JWT(), h.Balance)
	api.GET("/me/transactions", middleware.JWT(), h.Transactions)

	// Spin rate limiter (per user, not per IP)
	spinRL := middleware.SpinRateLimit(cfg.SpinRateLimit, spinRateWindow)

	// Wheel
	api.POST("/game/spin", middleware.JWT(), spinRL, h.Spin)
	api.POST("/game/spin/settle", middleware.JWT(), h.SettleSpin)
	api.GET("/game/spin/info", h.SpinInfo)

	// Payments
	payments := api.Group("/payments")
	payments.Use(middleware.JWT())
	{
		payments.GET("/deposit/info", h.DepositInfo)
		payments.POST("/deposit", h.CreateDeposit)
		payments.POST("/deposit/:id/confirm", middleware.RequireAdmin(cfg.AdminUserIDs), h.ConfirmDeposit)
		payments.GET("/deposits", h.ListDeposits)
		payments.POST("/withdraw", h.RequestWithdrawal)
		payments.POST("/withdraw/:id/cancel", h.CancelWithdrawal)
		payments.GET("/withdrawals", h.ListWithdrawals)
	}

	// Referral system
	referralHandler := handlers.NewReferralHandler(
		h.ReferralRepo,
		h.Ledger,
		h.Hub.NotifyBalance,
		cfg.ReferralBonus,
	)
	referral := api.Group("/referral")
	referral.Use(middleware.JWT())
	{
		referral.GET("/code", referralHandler.GetReferralCode)
		referral.GET("/stats", referralHandler.GetReferralStats)
		referral.POST("/apply", referralHandler.ApplyReferralCode)
	}
}
