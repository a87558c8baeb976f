package ledger

import (
	"context"
	"errors"
	"fmt"

	"spinwheel/internal/domain"
	"spinwheel/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger stores balances in the users table. Debits use a
// conditional UPDATE (balance >= amount) so the non-negativity check and
// the subtraction are one atomic statement; every mutation records a
// transaction row in the same database transaction.
type PostgresLedger struct {
	db     *pgxpool.Pool
	txRepo *repository.TransactionRepository
}

func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{
		db:     db,
		txRepo: repository.NewTransactionRepository(db),
	}
}

func (l *PostgresLedger) Balance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := l.db.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, storageErr(err)
	}
	return balance, nil
}

func (l *PostgresLedger) Debit(ctx context.Context, userID, amount int64, txType string, meta map[string]interface{}) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, storageErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var newBalance int64
	err = tx.QueryRow(ctx,
		`UPDATE users SET balance = balance - $1 WHERE id = $2 AND balance >= $1 RETURNING balance`,
		amount, userID,
	).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			_ = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
			if !exists {
				return 0, ErrUserNotFound
			}
			return 0, ErrInsufficientFunds
		}
		return 0, storageErr(err)
	}

	if err := l.record(ctx, tx, userID, -amount, txType, meta); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, storageErr(err)
	}
	return newBalance, nil
}

func (l *PostgresLedger) Credit(ctx context.Context, userID, amount int64, txType string, meta map[string]interface{}) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, storageErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var newBalance int64
	err = tx.QueryRow(ctx,
		`UPDATE users SET balance = balance + $1 WHERE id = $2 RETURNING balance`,
		amount, userID,
	).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, storageErr(err)
	}

	if err := l.record(ctx, tx, userID, amount, txType, meta); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, storageErr(err)
	}
	return newBalance, nil
}

func (l *PostgresLedger) ApplyDelta(ctx context.Context, userID, delta int64, txType string, meta map[string]interface{}) (int64, error) {
	switch {
	case delta < 0:
		return l.Debit(ctx, userID, -delta, txType, meta)
	case delta > 0:
		return l.Credit(ctx, userID, delta, txType, meta)
	default:
		return l.Balance(ctx, userID)
	}
}

func (l *PostgresLedger) record(ctx context.Context, tx pgx.Tx, userID, amount int64, txType string, meta map[string]interface{}) error {
	rec := &domain.Transaction{
		UserID: userID,
		Type:   txType,
		Amount: amount,
		Meta:   meta,
	}
	if err := l.txRepo.CreateWithTx(ctx, tx, rec); err != nil {
		return storageErr(err)
	}
	return nil
}

// storageErr maps serialization failures to ErrConflict and everything
// else to ErrUnavailable.
func storageErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
