package domain

import "time"

// Deposit represents an incoming PKR deposit paid to the platform account.
// The user transfers money manually and writes the reference code in the
// payment note; an operator confirms it before the balance is credited.
type Deposit struct {
	ID              int64         `db:"id" json:"id"`
	UserID          int64         `db:"user_id" json:"user_id"`
	Amount          int64         `db:"amount" json:"amount"`
	Reference       string        `db:"reference" json:"reference"`
	Method          string        `db:"method" json:"method"`
	ReceiverAccount string        `db:"receiver_account" json:"receiver_account"`
	ReceiverName    string        `db:"receiver_name" json:"receiver_name"`
	Status          DepositStatus `db:"status" json:"status"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	ConfirmedAt     *time.Time    `db:"confirmed_at" json:"confirmed_at,omitempty"`
}

type DepositStatus string

const (
	DepositStatusPending   DepositStatus = "pending"
	DepositStatusConfirmed DepositStatus = "confirmed"
	DepositStatusFailed    DepositStatus = "failed"
	DepositStatusExpired   DepositStatus = "expired"
)

// Withdrawal represents an outgoing payout request. The amount is debited
// up front; cancelling a pending request refunds it.
type Withdrawal struct {
	ID          int64            `db:"id" json:"id"`
	UserID      int64            `db:"user_id" json:"user_id"`
	Amount      int64            `db:"amount" json:"amount"`
	Account     string           `db:"account" json:"account"`
	Status      WithdrawalStatus `db:"status" json:"status"`
	AdminNotes  string           `db:"admin_notes" json:"admin_notes,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time       `db:"processed_at" json:"processed_at,omitempty"`
}

type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusPaid      WithdrawalStatus = "paid"
	WithdrawalStatusCancelled WithdrawalStatus = "cancelled"
	WithdrawalStatusFailed    WithdrawalStatus = "failed"
)

// DepositInfo is returned to the user when they want to deposit.
type DepositInfo struct {
	Method          string `json:"method"`
	ReceiverAccount string `json:"receiver_account"`
	ReceiverName    string `json:"receiver_name"`
	MinAmount       int64  `json:"min_amount"`
}
