package pgx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lborres/quora/core"
)

func (a *Adapter) CreateSession(ctx context.Context, s *core.Session) error {
	query := `INSERT INTO user_sessions (uuid, user_id, token_hash, ip_address, user_agent, login_at, expires_at, logout_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := a.q.QueryRowContext(ctx, query,
		s.UUID, s.UserID, s.TokenHash, s.IPAddress, s.UserAgent, s.LoginAt, s.ExpiresAt, s.LogoutAt,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (a *Adapter) GetSessionByHash(ctx context.Context, tokenHash string) (*core.Session, error) {
	query := `SELECT id, uuid, user_id, token_hash, ip_address, user_agent, login_at, expires_at, logout_at
		FROM user_sessions WHERE token_hash = $1`

	s := &core.Session{}
	var logoutAt sql.NullTime
	err := a.q.QueryRowContext(ctx, query, tokenHash).Scan(
		&s.ID, &s.UUID, &s.UserID, &s.TokenHash, &s.IPAddress, &s.UserAgent, &s.LoginAt, &s.ExpiresAt, &logoutAt,
	)
	if err != nil {
		return nil, mapNotFound(err, core.ErrSessionNotFound)
	}
	if logoutAt.Valid {
		t := logoutAt.Time
		s.LogoutAt = &t
	}
	return s, nil
}

// CloseSession stamps logout-at. The IS NULL guard makes the row update the
// arbiter when two signouts race on one token.
func (a *Adapter) CloseSession(ctx context.Context, tokenHash string, logoutAt time.Time) error {
	res, err := a.q.ExecContext(ctx,
		`UPDATE user_sessions SET logout_at = $1 WHERE token_hash = $2 AND logout_at IS NULL`,
		logoutAt, tokenHash,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := expectOne(res, core.ErrAlreadySignedOut); err != nil {
		if !errors.Is(err, core.ErrAlreadySignedOut) {
			return err
		}
		if _, lookupErr := a.GetSessionByHash(ctx, tokenHash); lookupErr != nil {
			return lookupErr
		}
		return err
	}
	return nil
}
