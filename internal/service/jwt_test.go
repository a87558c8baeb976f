package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	InitJWT()

	token, err := GenerateJWT(42)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	userID, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestParseJWTRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	InitJWT()

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := ParseJWT(tok); err == nil {
			t.Fatalf("expected error for token %q", tok)
		}
	}
}

func TestParseJWTRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	InitJWT()

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": int64(42),
		"exp":     now.Add(-time.Hour).Unix(),
		"iat":     now.Add(-2 * time.Hour).Unix(),
		"nbf":     now.Add(-2 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := ParseJWT(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestParseJWTRejectsNotYetValid(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	InitJWT()

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": int64(42),
		"exp":     now.Add(2 * time.Hour).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := ParseJWT(token); err == nil {
		t.Fatal("expected error for token used before nbf")
	}
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	InitJWT()
	token, err := GenerateJWT(7)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-two")
	InitJWT()
	if _, err := ParseJWT(token); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}
