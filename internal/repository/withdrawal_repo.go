package repository

import (
	"context"
	"errors"
	"time"

	"spinwheel/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WithdrawalRepository struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepository(db *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// Create records a new pending withdrawal request.
func (r *WithdrawalRepository) Create(ctx context.Context, w *domain.Withdrawal) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO withdrawals (user_id, amount, account, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, w.UserID, w.Amount, w.Account, w.Status).Scan(&w.ID, &w.CreatedAt)
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, amount, account, status, COALESCE(admin_notes, ''), created_at, processed_at
		FROM withdrawals
		WHERE id = $1
	`, id)
	return scanWithdrawal(row)
}

// GetByUserID returns a user's withdrawal requests, newest first.
func (r *WithdrawalRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Withdrawal, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, account, status, COALESCE(admin_notes, ''), created_at, processed_at
		FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var withdrawals []domain.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, *w)
	}
	return withdrawals, rows.Err()
}

// SetStatus moves a withdrawal from one status to another; returns false
// when the transition did not apply (already processed).
func (r *WithdrawalRepository) SetStatus(ctx context.Context, id int64, from, to domain.WithdrawalStatus) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE withdrawals
		SET status = $2, processed_at = $3
		WHERE id = $1 AND status = $4
	`, id, to, time.Now(), from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	err := row.Scan(
		&w.ID, &w.UserID, &w.Amount, &w.Account, &w.Status,
		&w.AdminNotes, &w.CreatedAt, &w.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}
