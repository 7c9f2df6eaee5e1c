package core

import (
	"time"

	"github.com/lborres/quora/internal/logging"
	"github.com/lborres/quora/pkg/crypto"
)

type SessionConfig struct {
	MaxAge time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge: 8 * time.Hour,
	}
}

type Config struct {
	// Secret signs access tokens. Minimum 32 characters.
	Secret string

	Database StorageAdapter

	HTTP HTTPAdapter

	// Optional config
	Issuer         string
	CacheAdapter   Cache
	DisableCache   bool
	SessionConfig  *SessionConfig
	PasswordHasher crypto.PasswordHandler
	Events         EventPublisher
	Logger         logging.Logger
	BasePath       string
}
