package domain

import (
	"time"

	"spinwheel/internal/wheel"
)

// SpinSession records one paid batch of spins. The row is the idempotency
// key for settlement: a session whose credit failed stays pending_settlement
// and can be retried without re-debiting the cost.
type SpinSession struct {
	ID         string              `db:"id" json:"id"`
	UserID     int64               `db:"user_id" json:"user_id"`
	Cost       int64               `db:"cost" json:"cost"`
	Count      int                 `db:"count" json:"count"`
	TotalDelta int64               `db:"total_delta" json:"total_delta"`
	Status     SpinSessionStatus   `db:"status" json:"status"`
	Outcomes   []wheel.SpinOutcome `db:"outcomes" json:"outcomes"`
	CreatedAt  time.Time           `db:"created_at" json:"created_at"`
	SettledAt  *time.Time          `db:"settled_at" json:"settled_at,omitempty"`
}

type SpinSessionStatus string

const (
	SpinStatusReserved SpinSessionStatus = "reserved"
	SpinStatusSettling SpinSessionStatus = "settling"
	SpinStatusSettled  SpinSessionStatus = "settled"
	SpinStatusPending  SpinSessionStatus = "pending_settlement"
	SpinStatusAborted  SpinSessionStatus = "aborted"
)
