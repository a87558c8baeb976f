package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"spinwheel/internal/domain"
	"spinwheel/internal/wheel"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SpinSessionRepository persists spin sessions. A session row is the
// settlement idempotency key: status transitions are conditional updates
// so a credit is never applied twice.
type SpinSessionRepository struct {
	db *pgxpool.Pool
}

func NewSpinSessionRepository(db *pgxpool.Pool) *SpinSessionRepository {
	return &SpinSessionRepository{db: db}
}

func (r *SpinSessionRepository) Create(ctx context.Context, s *domain.SpinSession) error {
	outcomesJSON, err := json.Marshal(s.Outcomes)
	if err != nil {
		outcomesJSON = []byte("[]")
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO spin_sessions (id, user_id, cost, spin_count, total_delta, status, outcomes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, s.ID, s.UserID, s.Cost, s.Count, s.TotalDelta, s.Status, outcomesJSON).Scan(&s.CreatedAt)
}

func (r *SpinSessionRepository) Get(ctx context.Context, id string, userID int64) (*domain.SpinSession, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, cost, spin_count, total_delta, status, outcomes, created_at, settled_at
		FROM spin_sessions
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	var (
		s            domain.SpinSession
		outcomesJSON []byte
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Cost, &s.Count, &s.TotalDelta, &s.Status, &outcomesJSON, &s.CreatedAt, &s.SettledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(outcomesJSON) > 0 {
		_ = json.Unmarshal(outcomesJSON, &s.Outcomes)
	}
	return &s, nil
}

// SetOutcomes stores the resolved outcomes and total delta on a reserved
// session before settlement is attempted.
func (r *SpinSessionRepository) SetOutcomes(ctx context.Context, id string, outcomes []wheel.SpinOutcome, totalDelta int64) error {
	outcomesJSON, err := json.Marshal(outcomes)
	if err != nil {
		outcomesJSON = []byte("[]")
	}
	_, err = r.db.Exec(ctx, `
		UPDATE spin_sessions SET outcomes = $2, total_delta = $3 WHERE id = $1
	`, id, outcomesJSON, totalDelta)
	return err
}

// MarkSettled closes a session. Settled and aborted sessions are final;
// returns false when the transition did not apply.
func (r *SpinSessionRepository) MarkSettled(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE spin_sessions
		SET status = $2, settled_at = $3
		WHERE id = $1 AND status IN ($4, $5, $6)
	`, id, domain.SpinStatusSettled, time.Now(),
		domain.SpinStatusReserved, domain.SpinStatusPending, domain.SpinStatusSettling)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkPending flags a session whose credit failed so the caller can retry
// settlement without re-debiting.
func (r *SpinSessionRepository) MarkPending(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE spin_sessions SET status = $2 WHERE id = $1 AND status NOT IN ($3, $4)
	`, id, domain.SpinStatusPending, domain.SpinStatusSettled, domain.SpinStatusAborted)
	return err
}

// ClaimPending atomically takes ownership of an unsettled session for
// retry; returns false if the session is already settled, aborted, or
// being retried elsewhere. Reserved sessions are claimable too: the
// caller only learns the session ID after the original spin call
// returned, so a session still reserved at that point had its
// pending-settlement flag lost to a storage fault.
func (r *SpinSessionRepository) ClaimPending(ctx context.Context, id string, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE spin_sessions
		SET status = $3
		WHERE id = $1 AND user_id = $2 AND status IN ($4, $5)
	`, id, userID, domain.SpinStatusSettling, domain.SpinStatusPending, domain.SpinStatusReserved)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAborted voids a session whose outcomes could not be persisted. The
// stake is refunded by the caller; an aborted session is never settled.
func (r *SpinSessionRepository) MarkAborted(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE spin_sessions SET status = $2 WHERE id = $1 AND status = $3
	`, id, domain.SpinStatusAborted, domain.SpinStatusReserved)
	return err
}
