package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrCodeNotFound means no user owns the given referral code. Any other
// error from a code lookup is a storage fault, not a bad code.
var ErrCodeNotFound = errors.New("referral code not found")

type Referral struct {
	ID         int64     `json:"id"`
	ReferrerID int64     `json:"referrer_id"`
	ReferredID int64     `json:"referred_id"`
	BonusPaid  bool      `json:"bonus_paid"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReferralStats struct {
	TotalReferrals int   `json:"total_referrals"`
	TotalEarned    int64 `json:"total_earned"`
}

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// GenerateReferralCode returns a random 12-hex-char code.
func GenerateReferralCode() string {
	bytes := make([]byte, 6)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// GetOrCreateCode returns the user's referral code, generating one if
// missing.
func (r *ReferralRepository) GetOrCreateCode(ctx context.Context, userID int64) (string, error) {
	var code string
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(referral_code, '') FROM users WHERE id = $1`,
		userID,
	).Scan(&code)
	if err == nil && code != "" {
		return code, nil
	}
	if err != nil {
		return "", err
	}

	// retry a few times in case of code collision
	for i := 0; i < 5; i++ {
		code = GenerateReferralCode()
		_, err = r.db.Exec(ctx,
			`UPDATE users SET referral_code = $1 WHERE id = $2`,
			code, userID,
		)
		if err == nil {
			return code, nil
		}
	}
	return "", err
}

// GetUserByCode finds the owner of a referral code. Returns
// ErrCodeNotFound when the code does not exist.
func (r *ReferralRepository) GetUserByCode(ctx context.Context, code string) (int64, error) {
	var userID int64
	err := r.db.QueryRow(ctx,
		`SELECT id FROM users WHERE referral_code = $1`,
		code,
	).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrCodeNotFound
	}
	return userID, err
}

// Create records a referral relationship. A user can be referred at most
// once; repeated applies are no-ops.
func (r *ReferralRepository) Create(ctx context.Context, referrerID, referredID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO referrals (referrer_id, referred_id)
		 VALUES ($1, $2)
		 ON CONFLICT (referred_id) DO NOTHING`,
		referrerID, referredID,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = r.db.Exec(ctx,
		`UPDATE users SET referred_by = $1 WHERE id = $2 AND referred_by IS NULL`,
		referrerID, referredID,
	)
	return true, err
}

// MarkBonusPaid flags a referral as rewarded; returns false if it was
// already paid (idempotency guard for the bonus credit).
func (r *ReferralRepository) MarkBonusPaid(ctx context.Context, referrerID, referredID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE referrals SET bonus_paid = TRUE
		 WHERE referrer_id = $1 AND referred_id = $2 AND NOT bonus_paid`,
		referrerID, referredID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetByReferrer returns all referrals made by a user.
func (r *ReferralRepository) GetByReferrer(ctx context.Context, userID int64) ([]Referral, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, referrer_id, referred_id, bonus_paid, created_at
		 FROM referrals
		 WHERE referrer_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var referrals []Referral
	for rows.Next() {
		var ref Referral
		if err := rows.Scan(&ref.ID, &ref.ReferrerID, &ref.ReferredID, &ref.BonusPaid, &ref.CreatedAt); err != nil {
			return nil, err
		}
		referrals = append(referrals, ref)
	}
	return referrals, rows.Err()
}

// GetStats returns referral counters for a user.
func (r *ReferralRepository) GetStats(ctx context.Context, userID int64, bonusPerReferral int64) (*ReferralStats, error) {
	stats := &ReferralStats{}

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE bonus_paid)
		 FROM referrals WHERE referrer_id = $1`,
		userID,
	).Scan(&stats.TotalReferrals, &stats.TotalEarned)
	if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}
	stats.TotalEarned *= bonusPerReferral
	return stats, nil
}
