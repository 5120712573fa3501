package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var secret = []byte("test-secret")

func TestIssueAndVerify(t *testing.T) {
	token, err := Issue(secret, "alice", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	userID, err := NewVerifier(secret).UserID(token)
	if err != nil {
		t.Fatalf("UserID() error = %v", err)
	}
	if userID != "alice" {
		t.Errorf("UserID() = %q, want alice", userID)
	}
}

func TestVerifyRejects(t *testing.T) {
	now := time.Now()

	expired, _ := Issue(secret, "alice", time.Minute, now.Add(-time.Hour))
	wrongKey, _ := Issue([]byte("other"), "alice", time.Hour, now)
	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString(secret)
	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "alice"}).SignedString(secret)

	tests := map[string]string{
		"expired":    expired,
		"wrong key":  wrongKey,
		"no subject": noSubject,
		"wrong alg":  wrongAlg,
		"garbage":    "not.a.token",
		"empty":      "",
	}

	v := NewVerifier(secret)
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := v.UserID(raw); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("UserID() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestIssueRequiresUser(t *testing.T) {
	if _, err := Issue(secret, "", time.Hour, time.Now()); err == nil {
		t.Error("Issue() should reject an empty user id")
	}
}
