package handlers

import (
	"spinwheel/internal/config"
	"spinwheel/internal/ledger"
	"spinwheel/internal/repository"
	"spinwheel/internal/service"
	"spinwheel/internal/wheel"
	"spinwheel/internal/ws"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB  *pgxpool.Pool
	Cfg *config.Config
	Hub *ws.Hub

	Ledger          ledger.Ledger
	UserRepo        *repository.UserRepository
	TransactionRepo *repository.TransactionRepository
	ReferralRepo    ReferralStore
	SpinService     *service.SpinService
	PaymentService  *service.PaymentService
}

func NewHandler(db *pgxpool.Pool, cfg *config.Config, hub *ws.Hub) *Handler {
	l := ledger.NewPostgresLedger(db)

	spinSvc := service.NewSpinService(
		l,
		wheel.DefaultSectorMap(),
		wheel.NewCryptoAngleSource(cfg.MinRotations, cfg.ExtraRotations),
		repository.NewSpinSessionRepository(db),
	)

	paymentSvc := service.NewPaymentService(
		l,
		repository.NewDepositRepository(db),
		repository.NewWithdrawalRepository(db),
		service.ReceiverAccount{
			Method: cfg.ReceiverMethod,
			Number: cfg.ReceiverAccount,
			Name:   cfg.ReceiverName,
		},
		cfg.MinDeposit,
	)

	return &Handler{
		DB:              db,
		Cfg:             cfg,
		Hub:             hub,
		Ledger:          l,
		UserRepo:        repository.NewUserRepository(db),
		TransactionRepo: repository.NewTransactionRepository(db),
		ReferralRepo:    repository.NewReferralRepository(db),
		SpinService:     spinSvc,
		PaymentService:  paymentSvc,
	}
}

// getUserID extracts the authenticated user ID set by the JWT middleware.
func getUserID(c interface{ Get(any) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
