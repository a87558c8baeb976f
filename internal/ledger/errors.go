package ledger

import "errors"

var (
	// ErrInsufficientFunds is recoverable and user-facing: the debit was
	// rejected before any mutation.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount rejects non-positive debit/credit amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	ErrUserNotFound = errors.New("user not found")

	// ErrConflict is raised when atomicity could not be guaranteed
	// (serialization failure); the caller retries the whole step.
	ErrConflict = errors.New("concurrent modification conflict")

	// ErrUnavailable is a transient storage fault; safe to retry with
	// backoff, never a partial state change.
	ErrUnavailable = errors.New("balance storage unavailable")
)
