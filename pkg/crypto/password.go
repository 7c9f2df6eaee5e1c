package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidDigest      = errors.New("invalid digest format")
	ErrUnsupportedDigest  = errors.New("unsupported algorithm")
	ErrInvalidSalt        = errors.New("invalid salt encoding")
	ErrIncompatibleDigest = errors.New("incompatible argon2 version")
)

// Credential is what gets stored for a password. Salt and Digest are kept
// in separate columns.
type Credential struct {
	Salt   string // base64, raw std encoding
	Digest string // $argon2id$v=19$m=..,t=..,p=..$<key>
}

type PasswordHandler interface {
	Hash(password string) (Credential, error)
	Derive(password, salt, digest string) (string, error)
	Verify(password string, cred Credential) (bool, error)
}

// Ensure Argon2 implements PasswordHandler
var _ PasswordHandler = (*Argon2)(nil)

type Argon2 struct {
	Memory      uint32 // Memory cost in KiB
	Iterations  uint32 // Number of iterations (time cost)
	Parallelism uint8  // Number of parallel threads
	SaltLength  uint32 // Length of random salt. Ignored during Derive()
	KeyLength   uint32 // Length of generated key
}

// Create a new Argon2 instance
//
// @ref https://cheatsheetseries.owasp.org/cheatsheets/Password_Storage_Cheat_Sheet.html
func NewArgon2() *Argon2 {
	return &Argon2{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (a *Argon2) Hash(password string) (Credential, error) {
	salt := make([]byte, a.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return Credential{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, a.Iterations, a.Memory, a.Parallelism, a.KeyLength)

	return Credential{
		Salt:   base64.RawStdEncoding.EncodeToString(salt),
		Digest: encodeDigest(a, key),
	}, nil
}

// Derive recomputes the digest of password with the stored salt, using the
// cost parameters recorded in digest rather than the receiver's.
func (a *Argon2) Derive(password, salt, digest string) (string, error) {
	params, _, err := decodeDigest(digest)
	if err != nil {
		return "", err
	}

	rawSalt, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil || len(rawSalt) == 0 {
		return "", ErrInvalidSalt
	}

	key := argon2.IDKey([]byte(password), rawSalt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)
	return encodeDigest(params, key), nil
}

// Verify reports whether password matches cred. A mismatch is not an error;
// only malformed stored material is.
func (a *Argon2) Verify(password string, cred Credential) (bool, error) {
	derived, err := a.Derive(password, cred.Salt, cred.Digest)
	if err != nil {
		return false, err
	}

	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(derived), []byte(cred.Digest)) == 1, nil
}

// WARN: hard-coded argon2id string. Only valid due to using argon2.IDKey()
func encodeDigest(a *Argon2, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
		argon2.Version,
		a.Memory,
		a.Iterations,
		a.Parallelism,
		base64.RawStdEncoding.EncodeToString(key))
}

func decodeDigest(digest string) (*Argon2, []byte, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 5 || parts[0] != "" {
		return nil, nil, ErrInvalidDigest
	}

	if parts[1] != "argon2id" {
		return nil, nil, ErrUnsupportedDigest
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, ErrIncompatibleDigest
	}

	params := &Argon2{}
	var p int
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &p); err != nil {
		return nil, nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if params.Memory == 0 || params.Iterations == 0 || p <= 0 || p > 255 {
		return nil, nil, ErrInvalidDigest
	}
	params.Parallelism = uint8(p)

	key, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid key encoding: %w", err)
	}
	if len(key) == 0 {
		return nil, nil, ErrInvalidDigest
	}
	params.KeyLength = uint32(len(key))

	return params, key, nil
}
