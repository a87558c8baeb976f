package repository

import (
	"context"
	"errors"
	"time"

	"spinwheel/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DepositRepository struct {
	db *pgxpool.Pool
}

func NewDepositRepository(db *pgxpool.Pool) *DepositRepository {
	return &DepositRepository{db: db}
}

// Create records a new pending deposit.
func (r *DepositRepository) Create(ctx context.Context, d *domain.Deposit) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO deposits (user_id, amount, reference, method, receiver_account, receiver_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, d.UserID, d.Amount, d.Reference, d.Method, d.ReceiverAccount, d.ReceiverName, d.Status).Scan(&d.ID, &d.CreatedAt)
}

func (r *DepositRepository) GetByID(ctx context.Context, id int64) (*domain.Deposit, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, amount, reference, method, receiver_account, receiver_name, status, created_at, confirmed_at
		FROM deposits
		WHERE id = $1
	`, id)
	return scanDeposit(row)
}

func (r *DepositRepository) GetByReference(ctx context.Context, reference string) (*domain.Deposit, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, amount, reference, method, receiver_account, receiver_name, status, created_at, confirmed_at
		FROM deposits
		WHERE reference = $1
	`, reference)
	return scanDeposit(row)
}

// GetByUserID returns a user's deposits, newest first.
func (r *DepositRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Deposit, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, reference, method, receiver_account, receiver_name, status, created_at, confirmed_at
		FROM deposits
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []domain.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, *d)
	}
	return deposits, rows.Err()
}

// Confirm marks a pending deposit confirmed; returns false if it was not
// pending, which guards against crediting twice.
func (r *DepositRepository) Confirm(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE deposits
		SET status = $2, confirmed_at = $3
		WHERE id = $1 AND status = $4
	`, id, domain.DepositStatusConfirmed, time.Now(), domain.DepositStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Reopen puts a confirmed deposit back to pending, used when crediting
// the balance failed after the status flip.
func (r *DepositRepository) Reopen(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE deposits SET status = $2, confirmed_at = NULL WHERE id = $1 AND status = $3
	`, id, domain.DepositStatusPending, domain.DepositStatusConfirmed)
	return err
}

// Fail marks a deposit failed.
func (r *DepositRepository) Fail(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE deposits SET status = $2 WHERE id = $1`,
		id, domain.DepositStatusFailed,
	)
	return err
}

func scanDeposit(row pgx.Row) (*domain.Deposit, error) {
	var d domain.Deposit
	err := row.Scan(
		&d.ID, &d.UserID, &d.Amount, &d.Reference, &d.Method,
		&d.ReceiverAccount, &d.ReceiverName, &d.Status, &d.CreatedAt, &d.ConfirmedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}
