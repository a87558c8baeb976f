package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spinwheel/internal/repository"

	"github.com/gin-gonic/gin"
)

// fakeReferralStore serves code lookups from a map; a non-nil faultErr
// simulates a storage outage.
type fakeReferralStore struct {
	codes    map[string]int64
	faultErr error
}

func (f *fakeReferralStore) GetUserByCode(ctx context.Context, code string) (int64, error) {
	if f.faultErr != nil {
		return 0, f.faultErr
	}
	id, ok := f.codes[code]
	if !ok {
		return 0, repository.ErrCodeNotFound
	}
	return id, nil
}

func (f *fakeReferralStore) GetOrCreateCode(ctx context.Context, userID int64) (string, error) {
	return "", f.faultErr
}

func (f *fakeReferralStore) Create(ctx context.Context, referrerID, referredID int64) (bool, error) {
	return false, f.faultErr
}

func (f *fakeReferralStore) MarkBonusPaid(ctx context.Context, referrerID, referredID int64) (bool, error) {
	return false, f.faultErr
}

func (f *fakeReferralStore) GetByReferrer(ctx context.Context, userID int64) ([]repository.Referral, error) {
	return nil, f.faultErr
}

func (f *fakeReferralStore) GetStats(ctx context.Context, userID int64, bonusPerReferral int64) (*repository.ReferralStats, error) {
	return nil, f.faultErr
}

func applyTestRouter(store ReferralStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewReferralHandler(store, nil, nil, 50)
	r := gin.New()
	r.POST("/apply", func(c *gin.Context) {
		c.Set("user_id", int64(1))
	}, h.ApplyReferralCode)
	return r
}

func TestApplyReferralCodeUnknownCode(t *testing.T) {
	r := applyTestRouter(&fakeReferralStore{codes: map[string]int64{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/apply", strings.NewReader(`{"code":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown code: got %d, want 400", w.Code)
	}
}

func TestApplyReferralCodeStorageFault(t *testing.T) {
	// a transient lookup failure is not the caller's fault and must not
	// be reported as a bad code
	r := applyTestRouter(&fakeReferralStore{faultErr: errors.New("connection refused")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/apply", strings.NewReader(`{"code":"abc123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("storage fault: got %d, want 503", w.Code)
	}
	if strings.Contains(w.Body.String(), "invalid referral code") {
		t.Fatalf("storage fault misreported as bad code: %s", w.Body.String())
	}
}

func TestSignupReferralStorageFault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{ReferralRepo: &fakeReferralStore{faultErr: errors.New("connection refused")}}
	r := gin.New()
	r.POST("/signup", h.Signup)

	w := httptest.NewRecorder()
	body := `{"username":"alice","email":"alice@example.com","password":"hunter22pass","referral_code":"abc123"}`
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("storage fault during signup: got %d, want 503", w.Code)
	}
}

func TestSignupUnknownReferralCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{ReferralRepo: &fakeReferralStore{codes: map[string]int64{}}}
	r := gin.New()
	r.POST("/signup", h.Signup)

	w := httptest.NewRecorder()
	body := `{"username":"alice","email":"alice@example.com","password":"hunter22pass","referral_code":"nope"}`
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown code during signup: got %d, want 400", w.Code)
	}
}
