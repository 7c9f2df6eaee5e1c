package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrEmptySubject   = errors.New("subject cannot be empty")
	ErrInvalidWindow  = errors.New("expiry must be after issue time")
	ErrInvalidToken   = errors.New("invalid token")
	ErrSecretTooShort = errors.New("signing secret too short")
)

// MinSecretLength is the shortest HMAC secret the codec accepts.
const MinSecretLength = 32

// DefaultIssuer is stamped in the iss claim when none is configured.
const DefaultIssuer = "quora"

// Claims binds a token to an identity and a validity window.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenCodec issues and decodes HS512 bearer tokens.
type TokenCodec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenCodec(secret, issuer string) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Issue signs a token for subject (the identity's public id). Every call
// carries a random jti, so two tokens issued within the same second differ.
func (c *TokenCodec) Issue(subject string, issuedAt, expiresAt time.Time) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}
	if !expiresAt.After(issuedAt) {
		return "", ErrInvalidWindow
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and time claims of a token and returns its
// claims. Session validation goes through the session store, not Decode.
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// HashToken is the storage key of a bearer token.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
