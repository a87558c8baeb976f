package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"spinwheel/internal/domain"
	"spinwheel/internal/ledger"
	"spinwheel/internal/wheel"
)

// memoryStore is an in-memory SpinSessionStore for tests.
type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.SpinSession
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[string]*domain.SpinSession)}
}

func (m *memoryStore) Create(ctx context.Context, s *domain.SpinSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	cp.CreatedAt = time.Now()
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memoryStore) Get(ctx context.Context, id string, userID int64) (*domain.SpinSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memoryStore) SetOutcomes(ctx context.Context, id string, outcomes []wheel.SpinOutcome, totalDelta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Outcomes = outcomes
		s.TotalDelta = totalDelta
	}
	return nil
}

func (m *memoryStore) MarkSettled(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Status == domain.SpinStatusSettled || s.Status == domain.SpinStatusAborted {
		return false, nil
	}
	s.Status = domain.SpinStatusSettled
	return true, nil
}

func (m *memoryStore) MarkPending(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok && s.Status != domain.SpinStatusSettled && s.Status != domain.SpinStatusAborted {
		s.Status = domain.SpinStatusPending
	}
	return nil
}

func (m *memoryStore) MarkAborted(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok && s.Status == domain.SpinStatusReserved {
		s.Status = domain.SpinStatusAborted
	}
	return nil
}

func (m *memoryStore) ClaimPending(ctx context.Context, id string, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return false, nil
	}
	if s.Status != domain.SpinStatusPending && s.Status != domain.SpinStatusReserved {
		return false, nil
	}
	s.Status = domain.SpinStatusSettling
	return true, nil
}

// faultyStore wraps memoryStore and fails selected writes.
type faultyStore struct {
	*memoryStore
	failSetOutcomes bool
	failMarkPending bool
}

func (f *faultyStore) SetOutcomes(ctx context.Context, id string, outcomes []wheel.SpinOutcome, totalDelta int64) error {
	if f.failSetOutcomes {
		return errors.New("storage unavailable")
	}
	return f.memoryStore.SetOutcomes(ctx, id, outcomes, totalDelta)
}

func (f *faultyStore) MarkPending(ctx context.Context, id string) error {
	if f.failMarkPending {
		return errors.New("storage unavailable")
	}
	return f.memoryStore.MarkPending(ctx, id)
}

// failingCreditLedger fails the next N credits with a transient error.
type failingCreditLedger struct {
	*ledger.MemoryLedger
	failCredits int
}

func (l *failingCreditLedger) Credit(ctx context.Context, userID, amount int64, txType string, meta map[string]interface{}) (int64, error) {
	if l.failCredits > 0 {
		l.failCredits--
		return 0, ledger.ErrUnavailable
	}
	return l.MemoryLedger.Credit(ctx, userID, amount, txType, meta)
}

func newTestService(t *testing.T, balance int64, angles []float64) (*SpinService, *ledger.MemoryLedger) {
	t.Helper()
	l := ledger.NewMemoryLedger()
	l.Seed(1, balance)
	svc := NewSpinService(l, wheel.DefaultSectorMap(), &wheel.FixedAngleSource{Angles: angles}, newMemoryStore())
	return svc, l
}

func TestSpinInsufficientFunds(t *testing.T) {
	svc, l := newTestService(t, 5, []float64{0})
	ctx := context.Background()

	_, err := svc.Spin(ctx, 1, SpinRequest{Cost: 10, Count: 1})
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	balance, _ := l.Balance(ctx, 1)
	if balance != 5 {
		t.Fatalf("aborted session changed balance: %d; want 5", balance)
	}
	if got := len(l.History(1)); got != 0 {
		t.Fatalf("aborted session recorded %d mutations; want 0", got)
	}
}

func TestSpinInvalidRequest(t *testing.T) {
	svc, _ := newTestService(t, 100, []float64{0})
	ctx := context.Background()

	for _, req := range []SpinRequest{{Cost: 10, Count: 0}, {Cost: -1, Count: 1}} {
		if _, err := svc.Spin(ctx, 1, req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Spin(%+v): expected ErrInvalidRequest, got %v", req, err)
		}
	}
}

func TestSingleSpinLoses(t *testing.T) {
	// angle 0 lands on the "00" sector: stake gone, nothing won
	svc, _ := newTestService(t, 100, []float64{0})
	ctx := context.Background()

	res, err := svc.Spin(ctx, 1, SpinRequest{Cost: 10, Count: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Settled {
		t.Fatal("session should be settled")
	}
	if res.TotalDelta != 0 {
		t.Fatalf("delta = %d; want 0", res.TotalDelta)
	}
	if res.FinalBalance != 90 {
		t.Fatalf("final balance = %d; want 90", res.FinalBalance)
	}
	if res.Outcomes[0].Prize.Kind != wheel.KindEmpty {
		t.Fatalf("prize = %+v; want empty", res.Outcomes[0].Prize)
	}
}

func TestMultiSpinBatch(t *testing.T) {
	// five draws paying [0, 10, 0, 0, 100]: one upfront debit of 50,
	// one batched credit of 110, final balance 100-50+110 = 160
	angles := []float64{45, 270, 100, 45, 180}
	svc, l := newTestService(t, 100, angles)
	ctx := context.Background()

	res, err := svc.Spin(ctx, 1, SpinRequest{Cost: 50, Count: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Outcomes) != 5 {
		t.Fatalf("got %d outcomes; want 5", len(res.Outcomes))
	}
	if res.TotalDelta != 110 {
		t.Fatalf("total delta = %d; want 110", res.TotalDelta)
	}
	if res.FinalBalance != 160 {
		t.Fatalf("final balance = %d; want 160", res.FinalBalance)
	}

	// exactly one debit and one credit: cost charged once for the batch
	history := l.History(1)
	if len(history) != 2 {
		t.Fatalf("ledger recorded %d mutations; want 2", len(history))
	}
	if history[0].Amount != -50 || history[1].Amount != 110 {
		t.Fatalf("mutations = [%d, %d]; want [-50, 110]", history[0].Amount, history[1].Amount)
	}
}

func TestFreeSpinSkipsDebit(t *testing.T) {
	svc, l := newTestService(t, 100, []float64{50}) // 1000 prize sector
	ctx := context.Background()

	res, err := svc.Spin(ctx, 1, SpinRequest{Cost: 0, Count: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.FinalBalance != 1100 {
		t.Fatalf("final balance = %d; want 1100", res.FinalBalance)
	}

	history := l.History(1)
	if len(history) != 1 || history[0].Amount != 1000 {
		t.Fatalf("free spin should record only the credit, got %+v", history)
	}
}

func TestPendingSettlementRetry(t *testing.T) {
	base := ledger.NewMemoryLedger()
	base.Seed(1, 100)
	failing := &failingCreditLedger{MemoryLedger: base, failCredits: 1}
	svc := NewSpinService(failing, wheel.DefaultSectorMap(), &wheel.FixedAngleSource{Angles: []float64{50}}, newMemoryStore())
	ctx := context.Background()

	res, err := svc.Spin(ctx, 1, SpinRequest{Cost: 10, Count: 1})
	if !errors.Is(err, ErrSettlementPending) {
		t.Fatalf("expected ErrSettlementPending, got %v", err)
	}
	if res == nil || res.Settled {
		t.Fatal("pending result must carry outcomes and not be settled")
	}
	if res.TotalDelta != 1000 {
		t.Fatalf("total delta = %d; want 1000", res.TotalDelta)
	}

	// the stake is debited but winnings are not yet credited
	if balance, _ := base.Balance(ctx, 1); balance != 90 {
		t.Fatalf("balance = %d; want 90 before retry", balance)
	}

	retried, err := svc.RetrySettlement(ctx, 1, res.SessionID)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !retried.Settled || retried.FinalBalance != 1090 {
		t.Fatalf("retry result = settled=%v balance=%d; want settled, 1090", retried.Settled, retried.FinalBalance)
	}

	// retrying a settled session must not credit twice
	again, err := svc.RetrySettlement(ctx, 1, res.SessionID)
	if err != nil {
		t.Fatalf("second retry failed: %v", err)
	}
	if again.FinalBalance != 1090 {
		t.Fatalf("second retry moved the balance to %d", again.FinalBalance)
	}
}

func TestOutcomeStoreFailureRefundsStake(t *testing.T) {
	l := ledger.NewMemoryLedger()
	l.Seed(1, 100)
	store := &faultyStore{memoryStore: newMemoryStore(), failSetOutcomes: true}
	svc := NewSpinService(l, wheel.DefaultSectorMap(), &wheel.FixedAngleSource{Angles: []float64{50}}, store)
	ctx := context.Background()

	_, err := svc.Spin(ctx, 1, SpinRequest{Cost: 10, Count: 1})
	if err == nil {
		t.Fatal("spin must fail when outcomes cannot be stored")
	}

	// the stake comes back; a session with no stored outcomes can never
	// pay out, so it must not be left debited
	if balance, _ := l.Balance(ctx, 1); balance != 100 {
		t.Fatalf("balance = %d; want 100 after refund", balance)
	}

	// the voided session cannot be settled later
	var sessionID string
	for id := range store.memoryStore.sessions {
		sessionID = id
	}
	if _, err := svc.RetrySettlement(ctx, 1, sessionID); !errors.Is(err, ErrSessionAborted) {
		t.Fatalf("expected ErrSessionAborted, got %v", err)
	}
	if balance, _ := l.Balance(ctx, 1); balance != 100 {
		t.Fatalf("balance = %d after settle attempt on voided session; want 100", balance)
	}
}

func TestRetryRecoversSessionLeftReserved(t *testing.T) {
	// credit fails and so does the pending-status write: the session is
	// stuck in reserved. The retry must still pay the stored winnings.
	base := ledger.NewMemoryLedger()
	base.Seed(1, 100)
	failing := &failingCreditLedger{MemoryLedger: base, failCredits: 1}
	store := &faultyStore{memoryStore: newMemoryStore(), failMarkPending: true}
	svc := NewSpinService(failing, wheel.DefaultSectorMap(), &wheel.FixedAngleSource{Angles: []float64{50}}, store)
	ctx := context.Background()

	res, err := svc.Spin(ctx, 1, SpinRequest{Cost: 10, Count: 1})
	if !errors.Is(err, ErrSettlementPending) {
		t.Fatalf("expected ErrSettlementPending, got %v", err)
	}

	session, _ := store.memoryStore.Get(ctx, res.SessionID, 1)
	if session.Status != domain.SpinStatusReserved {
		t.Fatalf("session status = %s; want reserved after lost pending flag", session.Status)
	}
	if session.TotalDelta != 1000 {
		t.Fatalf("stored delta = %d; want 1000", session.TotalDelta)
	}

	retried, err := svc.RetrySettlement(ctx, 1, res.SessionID)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !retried.Settled || retried.FinalBalance != 1090 {
		t.Fatalf("retry result = settled=%v balance=%d; want settled, 1090", retried.Settled, retried.FinalBalance)
	}
}

func TestRetryUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, 100, []float64{0})

	if _, err := svc.RetrySettlement(context.Background(), 1, "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
