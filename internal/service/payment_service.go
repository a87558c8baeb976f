package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"time"

	"spinwheel/internal/domain"
	"spinwheel/internal/ledger"
	"spinwheel/internal/logger"
	"spinwheel/internal/repository"
)

var (
	ErrDepositTooSmall      = errors.New("deposit below minimum amount")
	ErrDepositNotFound      = errors.New("deposit not found")
	ErrDepositNotPending    = errors.New("deposit is not pending")
	ErrWithdrawalNotFound   = errors.New("withdrawal not found")
	ErrWithdrawalNotPending = errors.New("withdrawal is not pending")
)

// ReceiverAccount is the platform payment account shown to depositing
// users.
type ReceiverAccount struct {
	Method string
	Number string
	Name   string
}

// PaymentService manages deposits and withdrawal requests. All balance
// movement goes through the ledger; payment rows only track the state of
// the off-platform money transfer.
type PaymentService struct {
	ledger      ledger.Ledger
	deposits    *repository.DepositRepository
	withdrawals *repository.WithdrawalRepository
	receiver    ReceiverAccount
	minDeposit  int64
}

func NewPaymentService(l ledger.Ledger, deposits *repository.DepositRepository, withdrawals *repository.WithdrawalRepository, receiver ReceiverAccount, minDeposit int64) *PaymentService {
	return &PaymentService{
		ledger:      l,
		deposits:    deposits,
		withdrawals: withdrawals,
		receiver:    receiver,
		minDeposit:  minDeposit,
	}
}

// CreateDeposit opens a pending deposit with a unique payment reference
// the user writes in the transfer note. Nothing is credited until an
// operator confirms the transfer arrived.
func (s *PaymentService) CreateDeposit(ctx context.Context, userID, amount int64) (*domain.Deposit, error) {
	if amount < s.minDeposit {
		return nil, ErrDepositTooSmall
	}

	d := &domain.Deposit{
		UserID:          userID,
		Amount:          amount,
		Reference:       newDepositReference(userID),
		Method:          s.receiver.Method,
		ReceiverAccount: s.receiver.Number,
		ReceiverName:    s.receiver.Name,
		Status:          domain.DepositStatusPending,
	}
	if err := s.deposits.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ConfirmDeposit flips a pending deposit to confirmed and credits the
// balance. The conditional status flip guarantees a deposit is credited
// at most once even if two operators confirm concurrently.
func (s *PaymentService) ConfirmDeposit(ctx context.Context, depositID int64) (*domain.Deposit, int64, error) {
	d, err := s.deposits.GetByID(ctx, depositID)
	if err != nil {
		return nil, 0, err
	}
	if d == nil {
		return nil, 0, ErrDepositNotFound
	}

	ok, err := s.deposits.Confirm(ctx, depositID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ErrDepositNotPending
	}

	newBalance, err := s.ledger.Credit(ctx, d.UserID, d.Amount, domain.TxTypeDeposit,
		map[string]interface{}{"deposit_id": d.ID, "reference": d.Reference})
	if err != nil {
		// put the deposit back so the confirm can be retried
		if reopenErr := s.deposits.Reopen(ctx, depositID); reopenErr != nil {
			logger.Error("failed to reopen deposit after credit failure", "deposit", depositID, "error", reopenErr)
		}
		return nil, 0, err
	}

	d.Status = domain.DepositStatusConfirmed
	return d, newBalance, nil
}

// ListDeposits returns a user's deposits, newest first.
func (s *PaymentService) ListDeposits(ctx context.Context, userID int64, limit int) ([]domain.Deposit, error) {
	return s.deposits.GetByUserID(ctx, userID, limit)
}

// DepositInfo returns the receiver details shown before a deposit.
func (s *PaymentService) DepositInfo() domain.DepositInfo {
	return domain.DepositInfo{
		Method:          s.receiver.Method,
		ReceiverAccount: s.receiver.Number,
		ReceiverName:    s.receiver.Name,
		MinAmount:       s.minDeposit,
	}
}

// RequestWithdrawal debits the amount up front and opens a pending
// payout request. The debit-first order means a request can never exceed
// the balance, and cancelling refunds it.
func (s *PaymentService) RequestWithdrawal(ctx context.Context, userID, amount int64, account string) (*domain.Withdrawal, int64, error) {
	newBalance, err := s.ledger.Debit(ctx, userID, amount, domain.TxTypeWithdrawal,
		map[string]interface{}{"account": account})
	if err != nil {
		return nil, 0, err
	}

	w := &domain.Withdrawal{
		UserID:  userID,
		Amount:  amount,
		Account: account,
		Status:  domain.WithdrawalStatusPending,
	}
	if err := s.withdrawals.Create(ctx, w); err != nil {
		// no payout row, so give the money back
		if _, refundErr := s.ledger.Credit(ctx, userID, amount, domain.TxTypeRefund,
			map[string]interface{}{"reason": "withdrawal_create_failed"}); refundErr != nil {
			logger.Error("failed to refund withdrawal debit", "user", userID, "amount", amount, "error", refundErr)
		}
		return nil, 0, err
	}
	return w, newBalance, nil
}

// CancelWithdrawal cancels a pending request and refunds the debit. The
// conditional status transition makes the refund at-most-once.
func (s *PaymentService) CancelWithdrawal(ctx context.Context, userID, withdrawalID int64) (int64, error) {
	w, err := s.withdrawals.GetByID(ctx, withdrawalID)
	if err != nil {
		return 0, err
	}
	if w == nil || w.UserID != userID {
		return 0, ErrWithdrawalNotFound
	}

	ok, err := s.withdrawals.SetStatus(ctx, withdrawalID, domain.WithdrawalStatusPending, domain.WithdrawalStatusCancelled)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrWithdrawalNotPending
	}

	newBalance, err := s.ledger.Credit(ctx, userID, w.Amount, domain.TxTypeRefund,
		map[string]interface{}{"withdrawal_id": w.ID})
	if err != nil {
		// refund failed; reopen the request so money is not lost
		if _, revertErr := s.withdrawals.SetStatus(ctx, withdrawalID, domain.WithdrawalStatusCancelled, domain.WithdrawalStatusPending); revertErr != nil {
			logger.Error("failed to reopen withdrawal after refund failure", "withdrawal", withdrawalID, "error", revertErr)
		}
		return 0, err
	}
	return newBalance, nil
}

// ListWithdrawals returns a user's withdrawal requests, newest first.
func (s *PaymentService) ListWithdrawals(ctx context.Context, userID int64, limit int) ([]domain.Withdrawal, error) {
	return s.withdrawals.GetByUserID(ctx, userID, limit)
}

// newDepositReference builds a reference like REF-000042-mf0k1x-8F2A that
// the user quotes in the payment note.
func newDepositReference(userID int64) string {
	suffix := make([]byte, 2)
	rand.Read(suffix)
	return fmt.Sprintf("REF-%06d-%s-%02X%02X",
		userID,
		strconv.FormatInt(time.Now().Unix(), 36),
		suffix[0], suffix[1])
}
