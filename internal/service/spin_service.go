package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"spinwheel/internal/domain"
	"spinwheel/internal/ledger"
	"spinwheel/internal/logger"
	"spinwheel/internal/wheel"
)

var (
	ErrInvalidRequest = errors.New("invalid spin request")

	// ErrSettlementPending means the cost was debited and the outcomes
	// are final, but crediting the winnings failed transiently. The
	// caller retries settlement with the session ID; the stake is never
	// silently lost.
	ErrSettlementPending = errors.New("settlement pending, retry with session id")

	ErrSessionNotFound = errors.New("spin session not found")

	// ErrSessionAborted marks a session voided before settlement; its
	// stake was refunded and it can never be settled.
	ErrSessionAborted = errors.New("spin session aborted, stake refunded")
)

// SpinRequest is one paid batch of spins: Count spins paid for by a
// single upfront debit of Cost. Cost may be 0 for promotional spins.
type SpinRequest struct {
	Cost  int64 `json:"cost"`
	Count int   `json:"count"`
}

// SpinResult is returned to the caller for display.
type SpinResult struct {
	SessionID    string              `json:"session_id"`
	Outcomes     []wheel.SpinOutcome `json:"outcomes"`
	TotalDelta   int64               `json:"total_delta"`
	FinalBalance int64               `json:"final_balance"`
	Settled      bool                `json:"settled"`
}

// SpinSessionStore persists session state across the reserve/settle
// boundary. Implemented by repository.SpinSessionRepository.
type SpinSessionStore interface {
	Create(ctx context.Context, s *domain.SpinSession) error
	Get(ctx context.Context, id string, userID int64) (*domain.SpinSession, error)
	SetOutcomes(ctx context.Context, id string, outcomes []wheel.SpinOutcome, totalDelta int64) error
	MarkSettled(ctx context.Context, id string) (bool, error)
	MarkPending(ctx context.Context, id string) error
	MarkAborted(ctx context.Context, id string) error
	ClaimPending(ctx context.Context, id string, userID int64) (bool, error)
}

// SpinService coordinates one spin batch end to end: reserve the cost,
// resolve each spin, settle the summed winnings in one credit.
type SpinService struct {
	ledger  ledger.Ledger
	sectors *wheel.SectorMap
	angles  wheel.AngleSource
	store   SpinSessionStore
}

func NewSpinService(l ledger.Ledger, sectors *wheel.SectorMap, angles wheel.AngleSource, store SpinSessionStore) *SpinService {
	return &SpinService{ledger: l, sectors: sectors, angles: angles, store: store}
}

// SectorMap exposes the wheel layout for the info endpoint.
func (s *SpinService) SectorMap() *wheel.SectorMap { return s.sectors }

// Spin runs a full session. The debit must succeed before any outcome is
// resolved; the credit is one batched call applied after all outcomes are
// final, which yields the same balance as per-spin credits would.
func (s *SpinService) Spin(ctx context.Context, userID int64, req SpinRequest) (*SpinResult, error) {
	if req.Count < 1 || req.Cost < 0 {
		return nil, ErrInvalidRequest
	}

	sessionID := newSessionID()

	// Reserved: one debit secures the whole batch. On insufficient funds
	// the session aborts here with no side effects.
	if req.Cost > 0 {
		if _, err := s.ledger.Debit(ctx, userID, req.Cost, domain.TxTypeSpinReserve,
			map[string]interface{}{"session_id": sessionID, "spins": req.Count}); err != nil {
			return nil, err
		}
	}

	session := &domain.SpinSession{
		ID:     sessionID,
		UserID: userID,
		Cost:   req.Cost,
		Count:  req.Count,
		Status: domain.SpinStatusReserved,
	}
	if err := s.store.Create(ctx, session); err != nil {
		// Without a session row there is no retry key, so give the stake
		// back instead of leaving it in limbo.
		s.refund(ctx, userID, req.Cost, sessionID, "session_create_failed")
		return nil, err
	}

	// Resolving: independent draws; only the final angle of each draw
	// matters for the prize.
	outcomes := make([]wheel.SpinOutcome, req.Count)
	var totalDelta int64
	for i := range outcomes {
		outcomes[i] = wheel.ResolveDraw(s.sectors, s.angles)
		totalDelta += wheel.SettlementDelta(outcomes[i])
	}

	if err := s.store.SetOutcomes(ctx, sessionID, outcomes, totalDelta); err != nil {
		// Settlement and retry both credit from the stored outcomes. A
		// session without them can never pay out, so it must not proceed:
		// void it and give the stake back.
		if abortErr := s.store.MarkAborted(ctx, sessionID); abortErr != nil {
			logger.Error("failed to abort session", "session", sessionID, "error", abortErr)
		}
		s.refund(ctx, userID, req.Cost, sessionID, "outcomes_store_failed")
		return nil, fmt.Errorf("failed to store spin outcomes: %w", err)
	}

	result := &SpinResult{
		SessionID:  sessionID,
		Outcomes:   outcomes,
		TotalDelta: totalDelta,
	}

	// Settled: one credit for the whole batch, or none if nothing was won.
	if totalDelta > 0 {
		newBalance, err := s.ledger.Credit(ctx, userID, totalDelta, domain.TxTypeSpinSettle,
			map[string]interface{}{"session_id": sessionID})
		if err != nil {
			// Even if the pending flag cannot be written the session stays
			// retryable: ClaimPending accepts reserved sessions as well.
			if perr := s.store.MarkPending(ctx, sessionID); perr != nil {
				logger.Error("failed to flag session for settlement retry", "session", sessionID, "error", perr)
			}
			logger.Warn("spin settlement deferred", "session", sessionID, "user", userID, "delta", totalDelta, "error", err)
			return result, ErrSettlementPending
		}
		result.FinalBalance = newBalance
	} else {
		balance, err := s.ledger.Balance(ctx, userID)
		if err != nil {
			logger.Error("failed to read balance after spin", "session", sessionID, "error", err)
		}
		result.FinalBalance = balance
	}

	if _, err := s.store.MarkSettled(ctx, sessionID); err != nil {
		logger.Error("failed to mark session settled", "session", sessionID, "error", err)
	}
	result.Settled = true
	return result, nil
}

// RetrySettlement completes a session left in pending_settlement. It is
// idempotent: an already-settled session returns its stored result and
// the winnings are never credited twice.
func (s *SpinService) RetrySettlement(ctx context.Context, userID int64, sessionID string) (*SpinResult, error) {
	session, err := s.store.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.Status == domain.SpinStatusSettled {
		return s.resultOf(ctx, session), nil
	}
	if session.Status == domain.SpinStatusAborted {
		return nil, ErrSessionAborted
	}

	claimed, err := s.store.ClaimPending(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Lost the claim race; report the current state.
		session, err = s.store.Get(ctx, sessionID, userID)
		if err != nil {
			return nil, err
		}
		if session != nil && session.Status == domain.SpinStatusSettled {
			return s.resultOf(ctx, session), nil
		}
		if session != nil && session.Status == domain.SpinStatusAborted {
			return nil, ErrSessionAborted
		}
		return nil, ledger.ErrConflict
	}

	if session.TotalDelta > 0 {
		if _, err := s.ledger.Credit(ctx, userID, session.TotalDelta, domain.TxTypeSpinSettle,
			map[string]interface{}{"session_id": sessionID, "retry": true}); err != nil {
			_ = s.store.MarkPending(ctx, sessionID)
			return s.resultOf(ctx, session), ErrSettlementPending
		}
	}

	if _, err := s.store.MarkSettled(ctx, sessionID); err != nil {
		logger.Error("failed to mark retried session settled", "session", sessionID, "error", err)
	}
	session.Status = domain.SpinStatusSettled
	return s.resultOf(ctx, session), nil
}

func (s *SpinService) resultOf(ctx context.Context, session *domain.SpinSession) *SpinResult {
	balance, err := s.ledger.Balance(ctx, session.UserID)
	if err != nil {
		logger.Error("failed to read balance for session result", "session", session.ID, "error", err)
	}
	return &SpinResult{
		SessionID:    session.ID,
		Outcomes:     session.Outcomes,
		TotalDelta:   session.TotalDelta,
		FinalBalance: balance,
		Settled:      session.Status == domain.SpinStatusSettled,
	}
}

func (s *SpinService) refund(ctx context.Context, userID, amount int64, sessionID, reason string) {
	if amount <= 0 {
		return
	}
	if _, err := s.ledger.Credit(ctx, userID, amount, domain.TxTypeRefund,
		map[string]interface{}{"session_id": sessionID, "reason": reason}); err != nil {
		logger.Error("failed to refund reserved stake", "session", sessionID, "user", userID, "amount", amount, "error", err)
	}
}

func newSessionID() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
