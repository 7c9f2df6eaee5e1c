// Package quora wires the question and answer services over pluggable
// storage, cache, event and HTTP adapters.
package quora

import (
	"fmt"
	"time"

	"github.com/lborres/quora/core"
	"github.com/lborres/quora/internal/logging"
	"github.com/lborres/quora/pkg/crypto"
	"github.com/lborres/quora/services"
)

// interfaces
type (
	StorageAdapter = core.StorageAdapter
	Cache          = core.Cache
	EventPublisher = core.EventPublisher

	HTTPAdapter = core.HTTPAdapter

	PasswordHandler = crypto.PasswordHandler
	Logger          = logging.Logger
)

// structs
type (
	Config        = core.Config
	SessionConfig = core.SessionConfig
	CacheConfig   = core.CacheConfig
)

type (
	User        = core.User
	Session     = core.Session
	SessionData = core.SessionData
	Question    = core.Question
	Answer      = core.Answer
	CacheStats  = core.CacheStats
)

const (
	defaultBasePath     = "/"
	defaultCacheTTL     = 5 * time.Minute
	defaultCacheMaxSize = 500
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache     = core.NewInMemoryCache
	NewArgon2            = crypto.NewArgon2
	DefaultSessionConfig = core.DefaultSessionConfig
)

var (
	ErrDBAdapterRequired   = core.ErrDBAdapterRequired
	ErrHTTPAdapterRequired = core.ErrHTTPAdapterRequired
	ErrSecretRequired      = core.ErrSecretRequired
	ErrSecretTooShort      = core.ErrSecretTooShort
)

// Quora holds the wired services. The HTTP adapter has already mounted them
// when New returns.
type Quora struct {
	Auth      *services.AuthService
	Questions *services.QuestionService
	Answers   *services.AnswerService
	Sessions  *services.SessionManager
	Cache     Cache // nil when caching is disabled
	BasePath  string
}

func New(config Config) (*Quora, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < crypto.MinSecretLength {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, crypto.MinSecretLength)
	}
	if config.Database == nil {
		return nil, ErrDBAdapterRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	cacheAdapter := config.CacheAdapter
	if config.DisableCache {
		cacheAdapter = nil
	} else if cacheAdapter == nil {
		cacheAdapter = NewInMemoryCache(CacheConfig{
			TTL:     defaultCacheTTL,
			MaxSize: defaultCacheMaxSize,
		})
	}

	sessionConfig := DefaultSessionConfig()
	if config.SessionConfig != nil && config.SessionConfig.MaxAge > 0 {
		sessionConfig = *config.SessionConfig
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewArgon2()
	}

	log := config.Logger
	if log == nil {
		log = logging.Nop{}
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	codec, err := crypto.NewTokenCodec(config.Secret, config.Issuer)
	if err != nil {
		return nil, err
	}

	sessionManager := services.NewSessionManager(sessionConfig, codec, cacheAdapter, log)

	q := &Quora{
		Auth:      services.NewAuthService(config.Database, passwordHasher, sessionManager, config.Events, log),
		Questions: services.NewQuestionService(config.Database, log),
		Answers:   services.NewAnswerService(config.Database, log),
		Sessions:  sessionManager,
		Cache:     cacheAdapter,
		BasePath:  basePath,
	}

	api := core.API{Auth: q.Auth, Questions: q.Questions, Answers: q.Answers}
	if err := config.HTTP.RegisterRoutes(api, basePath); err != nil {
		return nil, err
	}

	return q, nil
}
