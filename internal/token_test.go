package internal

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestExtractSubject(t *testing.T) {
	token := signedToken(t, jwt.RegisteredClaims{Subject: "uid-1"})
	subject, err := ExtractSubject(token)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if subject != "uid-1" {
		t.Fatalf("expected uid-1, got %s", subject)
	}
}

func TestExtractSubjectMissingClaim(t *testing.T) {
	token := signedToken(t, jwt.RegisteredClaims{Issuer: "idp"})
	if _, err := ExtractSubject(token); !errors.Is(err, ErrNoSubject) {
		t.Fatalf("expected ErrNoSubject, got %v", err)
	}
}

func TestExtractSubjectMalformedToken(t *testing.T) {
	if _, err := ExtractSubject("not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
	if _, err := ExtractSubject(""); err == nil {
		t.Fatal("expected error for empty token")
	}
}
