package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndValidate(t *testing.T) {
	ts := NewTokenService("test-secret-key", time.Hour)

	token, err := ts.Issue(42, "session-abc")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	claims, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.SessionID != "session-abc" {
		t.Errorf("SessionID = %q, want session-abc", claims.SessionID)
	}
}

func TestIssueRejectsEmptySession(t *testing.T) {
	ts := NewTokenService("test-secret-key", time.Hour)
	if _, err := ts.Issue(1, ""); err == nil {
		t.Error("Issue() should reject an empty session id")
	}
}

func TestRejectExpiredToken(t *testing.T) {
	ts := NewTokenService("test-secret-key", time.Minute)
	issued := time.Now()
	ts.now = func() time.Time { return issued }

	token, err := ts.Issue(1, "s")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	ts.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := ts.Validate(token); err == nil {
		t.Error("Validate() should reject expired token")
	}
}

func TestZeroExpiryNeverExpires(t *testing.T) {
	ts := NewTokenService("test-secret-key", 0)
	issued := time.Now()
	ts.now = func() time.Time { return issued }

	token, err := ts.Issue(1, "s")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	ts.now = func() time.Time { return issued.Add(365 * 24 * time.Hour) }
	if _, err := ts.Validate(token); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestRejectTamperedToken(t *testing.T) {
	ts := NewTokenService("test-secret-key", time.Hour)

	token, err := ts.Issue(1, "s")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	// Change a character in the middle of the signature; the last base64url
	// character carries padding bits that may decode to the same bytes.
	sigStart := strings.LastIndex(token, ".") + 1
	mid := sigStart + (len(token)-sigStart)/2
	b := token[mid]
	if b == 'A' {
		b = 'B'
	} else {
		b = 'A'
	}
	tampered := token[:mid] + string(b) + token[mid+1:]

	if _, err := ts.Validate(tampered); err == nil {
		t.Error("Validate() should reject tampered token")
	}
}

func TestRejectWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-one", time.Hour).Issue(1, "s")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if _, err := NewTokenService("secret-two", time.Hour).Validate(token); err == nil {
		t.Error("Validate() should reject token signed with another secret")
	}
}

func TestRejectWrongSigningMethod(t *testing.T) {
	claims := Claims{
		UserID:    1,
		SessionID: "s",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing with none: %v", err)
	}

	ts := NewTokenService("test-secret-key", time.Hour)
	if _, err := ts.Validate(tokenString); err == nil {
		t.Error("Validate() should reject token with 'none' signing method")
	}
}

func TestRejectTokenWithoutSession(t *testing.T) {
	claims := Claims{UserID: 1}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte("test-secret-key"))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	ts := NewTokenService("test-secret-key", time.Hour)
	if _, err := ts.Validate(tokenString); err == nil {
		t.Error("Validate() should reject token without a session id")
	}
}
