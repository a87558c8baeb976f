package ledger

import (
	"context"
	"sync"
	"time"

	"spinwheel/internal/domain"
)

// MemoryLedger keeps balances in memory behind a mutex. It honors the
// same contract as PostgresLedger and backs unit tests and local tooling.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[int64]int64
	history  map[int64][]domain.Transaction

	// FailNext makes the next mutation fail with ErrUnavailable, for
	// exercising pending-settlement paths in tests.
	FailNext bool
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[int64]int64),
		history:  make(map[int64][]domain.Transaction),
	}
}

// Seed creates a user with the given starting balance.
func (l *MemoryLedger) Seed(userID, balance int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] = balance
}

func (l *MemoryLedger) Balance(ctx context.Context, userID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	return balance, nil
}

func (l *MemoryLedger) Debit(ctx context.Context, userID, amount int64, txType string, meta map[string]interface{}) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.FailNext {
		l.FailNext = false
		return 0, ErrUnavailable
	}

	balance, ok := l.balances[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	if balance < amount {
		return 0, ErrInsufficientFunds
	}

	balance -= amount
	l.balances[userID] = balance
	l.append(userID, -amount, txType, meta)
	return balance, nil
}

func (l *MemoryLedger) Credit(ctx context.Context, userID, amount int64, txType string, meta map[string]interface{}) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.FailNext {
		l.FailNext = false
		return 0, ErrUnavailable
	}

	balance, ok := l.balances[userID]
	if !ok {
		return 0, ErrUserNotFound
	}

	balance += amount
	l.balances[userID] = balance
	l.append(userID, amount, txType, meta)
	return balance, nil
}

func (l *MemoryLedger) ApplyDelta(ctx context.Context, userID, delta int64, txType string, meta map[string]interface{}) (int64, error) {
	switch {
	case delta < 0:
		return l.Debit(ctx, userID, -delta, txType, meta)
	case delta > 0:
		return l.Credit(ctx, userID, delta, txType, meta)
	default:
		return l.Balance(ctx, userID)
	}
}

// History returns the recorded mutations for a user, oldest first.
func (l *MemoryLedger) History(userID int64) []domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Transaction, len(l.history[userID]))
	copy(out, l.history[userID])
	return out
}

func (l *MemoryLedger) append(userID, amount int64, txType string, meta map[string]interface{}) {
	l.history[userID] = append(l.history[userID], domain.Transaction{
		ID:        int64(len(l.history[userID]) + 1),
		UserID:    userID,
		Type:      txType,
		Amount:    amount,
		Meta:      meta,
		CreatedAt: time.Now(),
	})
}
