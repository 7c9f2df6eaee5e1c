package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lborres/quora/core"
	"github.com/lborres/quora/internal/logging"
	"github.com/lborres/quora/pkg/crypto"
)

// SessionManager owns the session lifecycle: issuing tokens, resolving them
// back to sessions and closing them. Create and Close run inside the
// caller's transaction; Verify opens its own only on a cache miss.
type SessionManager struct {
	config core.SessionConfig
	codec  *crypto.TokenCodec
	cache  core.Cache // optional, can be nil if caching is disabled
	log    logging.Logger
	now    func() time.Time
}

func NewSessionManager(config core.SessionConfig, codec *crypto.TokenCodec, cache core.Cache, log logging.Logger) *SessionManager {
	if config.MaxAge <= 0 {
		config = core.DefaultSessionConfig()
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &SessionManager{config: config, codec: codec, cache: cache, log: log, now: time.Now}
}

// Create persists a new session for user and returns it with the raw token.
// The token itself is never stored.
func (sm *SessionManager) Create(ctx context.Context, store core.SessionStorage, user *core.User, ip, userAgent string) (*core.Session, string, error) {
	now := sm.now()
	expiresAt := now.Add(sm.config.MaxAge)

	token, err := sm.codec.Issue(user.UUID, now, expiresAt)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	session := &core.Session{
		UUID:      uuid.NewString(),
		UserID:    user.ID,
		TokenHash: crypto.HashToken(token),
		IPAddress: ip,
		UserAgent: userAgent,
		LoginAt:   now,
		ExpiresAt: expiresAt,
	}

	if err := store.CreateSession(ctx, session); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	return session, token, nil
}

// Verify resolves token to a live session. The cache is consulted first and
// db is only read, in its own transaction, on a miss.
func (sm *SessionManager) Verify(ctx context.Context, db core.StorageAdapter, token string) (*core.SessionData, error) {
	if token == "" {
		return nil, core.ErrNotSignedIn
	}

	tokenHash := crypto.HashToken(token)

	data, cached := sm.fromCache(ctx, tokenHash)
	if !cached {
		err := db.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
			var err error
			data, err = sm.load(ctx, tx, tokenHash)
			return err
		})
		if err != nil {
			if errors.Is(err, core.ErrSessionNotFound) {
				return nil, core.ErrNotSignedIn
			}
			return nil, err
		}
	}

	// Signed-out entries are left in place; fill must never replace them.
	if data.Session.IsLoggedOut() {
		return nil, core.ErrSignedOut
	}
	if data.Session.IsExpired(sm.now()) {
		sm.Evict(ctx, tokenHash)
		return nil, core.ErrSessionExpired
	}

	if !cached {
		sm.fill(ctx, tokenHash, data)
	}
	return data, nil
}

// Close stamps logout-at on the session behind token. It reads storage
// directly so a stale cache entry cannot hide an earlier signout, and the
// store rejects a second close of the same session.
func (sm *SessionManager) Close(ctx context.Context, store core.StorageAdapter, token string) (*core.SessionData, error) {
	if token == "" {
		return nil, core.ErrSignOutNoSession
	}

	data, err := sm.load(ctx, store, crypto.HashToken(token))
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			return nil, core.ErrSignOutNoSession
		}
		return nil, err
	}

	if data.Session.IsLoggedOut() {
		return nil, core.ErrAlreadySignedOut
	}

	logoutAt := sm.now()
	if err := store.CloseSession(ctx, data.Session.TokenHash, logoutAt); err != nil {
		switch {
		case errors.Is(err, core.ErrAlreadySignedOut):
			return nil, err
		case errors.Is(err, core.ErrSessionNotFound):
			return nil, core.ErrSignOutNoSession
		}
		return nil, fmt.Errorf("close session: %w", err)
	}
	data.Session.LogoutAt = &logoutAt

	return data, nil
}

// Remember caches data for tokenHash. Cache failures never fail a request.
func (sm *SessionManager) Remember(ctx context.Context, tokenHash string, data *core.SessionData) {
	if sm.cache == nil {
		return
	}
	if err := sm.cache.Set(ctx, tokenHash, data); err != nil {
		sm.log.Warn(ctx, "session cache set failed", "error", err)
	}
}

// Revoke replaces the cached entry for a closed session with the closed
// record. If that write fails the entry is dropped instead.
func (sm *SessionManager) Revoke(ctx context.Context, data *core.SessionData) {
	if sm.cache == nil {
		return
	}
	if err := sm.cache.Set(ctx, data.Session.TokenHash, data); err != nil {
		sm.log.Warn(ctx, "session cache revoke failed", "error", err)
		sm.Evict(ctx, data.Session.TokenHash)
	}
}

func (sm *SessionManager) Evict(ctx context.Context, tokenHash string) {
	if sm.cache == nil {
		return
	}
	if err := sm.cache.Delete(ctx, tokenHash); err != nil {
		sm.log.Warn(ctx, "session cache delete failed", "error", err)
	}
}

// fill caches a record read from storage without replacing whatever a
// concurrent signout stored meanwhile.
func (sm *SessionManager) fill(ctx context.Context, tokenHash string, data *core.SessionData) {
	if sm.cache == nil {
		return
	}
	if err := sm.cache.Add(ctx, tokenHash, data); err != nil {
		sm.log.Warn(ctx, "session cache add failed", "error", err)
	}
}

func (sm *SessionManager) fromCache(ctx context.Context, tokenHash string) (*core.SessionData, bool) {
	if sm.cache == nil {
		return nil, false
	}
	data, err := sm.cache.Get(ctx, tokenHash)
	if err != nil {
		if !errors.Is(err, core.ErrCacheNotFound) {
			sm.log.Warn(ctx, "session cache get failed", "error", err)
		}
		return nil, false
	}
	return data, true
}

func (sm *SessionManager) load(ctx context.Context, store core.StorageAdapter, tokenHash string) (*core.SessionData, error) {
	session, err := store.GetSessionByHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}

	user, err := store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get session owner: %w", err)
	}

	return &core.SessionData{User: user, Session: session}, nil
}
