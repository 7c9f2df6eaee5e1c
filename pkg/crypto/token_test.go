package crypto

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef-test"

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	c, err := NewTokenCodec(testSecret, "")
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}
	return c
}

func TestNewTokenCodec_SecretLength(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr error
	}{
		{name: "empty", secret: "", wantErr: ErrSecretTooShort},
		{name: "31 chars", secret: strings.Repeat("s", 31), wantErr: ErrSecretTooShort},
		{name: "32 chars", secret: strings.Repeat("s", 32), wantErr: nil},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			_, err := NewTokenCodec(test.secret, "")
			if !errors.Is(err, test.wantErr) {
				t.Errorf("NewTokenCodec() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

// Requirement: a token binds the public id and the validity window
func TestTokenCodec_IssueDecode(t *testing.T) {
	// Arrange
	c := newTestCodec(t)
	issuedAt := time.Now().Truncate(time.Second)
	expiresAt := issuedAt.Add(8 * time.Hour)

	// Act
	token, err := c.Issue("8f14e45f-ceea-467f-a0e6-7b7e1f5c2b11", issuedAt, expiresAt)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	claims, err := c.Decode(token)

	// Assert
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if claims.Subject != "8f14e45f-ceea-467f-a0e6-7b7e1f5c2b11" {
		t.Errorf("sub = %q", claims.Subject)
	}
	if claims.Issuer != DefaultIssuer {
		t.Errorf("iss = %q, want %q", claims.Issuer, DefaultIssuer)
	}
	if !claims.IssuedAt.Time.Equal(issuedAt) || !claims.NotBefore.Time.Equal(issuedAt) {
		t.Errorf("iat/nbf = %v/%v, want %v", claims.IssuedAt, claims.NotBefore, issuedAt)
	}
	if !claims.ExpiresAt.Time.Equal(expiresAt) {
		t.Errorf("exp = %v, want %v", claims.ExpiresAt, expiresAt)
	}
	if claims.ID == "" {
		t.Error("jti should be set")
	}
}

// Requirement: two signins within the same second get different tokens
func TestTokenCodec_Issue_UniqueWithinSameSecond(t *testing.T) {
	// Arrange
	c := newTestCodec(t)
	now := time.Now()

	// Act
	first, err1 := c.Issue("user", now, now.Add(time.Hour))
	second, err2 := c.Issue("user", now, now.Add(time.Hour))

	// Assert
	if err1 != nil || err2 != nil {
		t.Fatalf("Issue() errors = %v, %v", err1, err2)
	}
	if first == second {
		t.Error("Issue() should not repeat tokens")
	}
	if HashToken(first) == HashToken(second) {
		t.Error("token hashes should differ")
	}
}

func TestTokenCodec_Issue_InvalidInput(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now()

	tests := []struct {
		name      string
		subject   string
		expiresAt time.Time
		wantErr   error
	}{
		{name: "empty subject", subject: "", expiresAt: now.Add(time.Hour), wantErr: ErrEmptySubject},
		{name: "expiry equals issue", subject: "u", expiresAt: now, wantErr: ErrInvalidWindow},
		{name: "expiry before issue", subject: "u", expiresAt: now.Add(-time.Hour), wantErr: ErrInvalidWindow},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			_, err := c.Issue(test.subject, now, test.expiresAt)
			if !errors.Is(err, test.wantErr) {
				t.Errorf("Issue() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestTokenCodec_Decode_Rejects(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now()

	other, _ := NewTokenCodec(strings.Repeat("x", 40), "")
	foreign, _ := other.Issue("u", now, now.Add(time.Hour))

	wrongIssuer, _ := NewTokenCodec(testSecret, "someone-else")
	misissued, _ := wrongIssuer.Issue("u", now, now.Add(time.Hour))

	expired, _ := c.Issue("u", now.Add(-2*time.Hour), now.Add(-time.Hour))

	hs256, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u",
			Issuer:    DefaultIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: foreign},
		{name: "wrong issuer", token: misissued},
		{name: "expired", token: expired},
		{name: "wrong algorithm", token: hs256},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			_, err := c.Decode(test.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Decode() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestHashToken_Format(t *testing.T) {
	// Act
	hash := HashToken("some-token")

	// Assert
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64", len(hash))
	}
	if _, err := hex.DecodeString(hash); err != nil {
		t.Errorf("hash is not hex: %v", err)
	}
	if HashToken("some-token") != hash {
		t.Error("HashToken() should be deterministic")
	}
	if HashToken("some-token2") == hash {
		t.Error("different tokens should hash differently")
	}
}
