package ledger

import "context"

// Ledger is the sole authority over persisted user balances. Every
// mutation is atomic and keeps the balance non-negative; concurrent
// debits against the same user serialize instead of interleaving
// read-modify-write.
type Ledger interface {
	// Balance returns the current balance.
	Balance(ctx context.Context, userID int64) (int64, error)

	// Debit atomically subtracts amount (> 0) and returns the new
	// balance. Fails with ErrInsufficientFunds when the balance would go
	// negative, leaving it unchanged.
	Debit(ctx context.Context, userID, amount int64, txType string, meta map[string]interface{}) (int64, error)

	// Credit atomically adds amount (> 0) and returns the new balance.
	Credit(ctx context.Context, userID, amount int64, txType string, meta map[string]interface{}) (int64, error)

	// ApplyDelta debits or credits depending on the sign of delta. A zero
	// delta just reads the balance.
	ApplyDelta(ctx context.Context, userID, delta int64, txType string, meta map[string]interface{}) (int64, error)
}
