package domain

import "time"

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Balance      int64     `db:"balance" json:"balance"`
	ReferralCode string    `db:"referral_code" json:"referral_code,omitempty"`
	ReferredBy   *int64    `db:"referred_by" json:"referred_by,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
