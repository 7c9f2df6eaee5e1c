package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/lborres/quora/core"
	"github.com/lborres/quora/internal/logging"
	"github.com/lborres/quora/pkg/crypto"
)

type AuthService struct {
	db             core.StorageAdapter
	passwordHasher crypto.PasswordHandler
	sessionManager *SessionManager
	events         core.EventPublisher // optional
	log            logging.Logger
}

// Ensure AuthService implements AuthHandler
var _ core.AuthHandler = (*AuthService)(nil)

func NewAuthService(db core.StorageAdapter, passwordHasher crypto.PasswordHandler, sessionManager *SessionManager, events core.EventPublisher, log logging.Logger) *AuthService {
	if log == nil {
		log = logging.Nop{}
	}
	return &AuthService{
		db:             db,
		passwordHasher: passwordHasher,
		sessionManager: sessionManager,
		events:         events,
		log:            log,
	}
}

func validateSignUp(input core.SignUpInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&input.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&input.Username, validation.Required, validation.Length(1, 30)),
		validation.Field(&input.Email, validation.Required, validation.Length(3, 50), is.Email),
		validation.Field(&input.Password, validation.Required, validation.Length(1, 255)),
		validation.Field(&input.Country, validation.Length(0, 30)),
		validation.Field(&input.AboutMe, validation.Length(0, 50)),
		validation.Field(&input.DOB, validation.Length(0, 30)),
		validation.Field(&input.ContactNumber, validation.Length(0, 30), is.Digit),
	)
	if err != nil {
		return core.ErrInvalidInput.WithMessage(err.Error())
	}
	return nil
}

// SignUp registers a new non-admin user. Username collisions are reported
// before email collisions.
func (s *AuthService) SignUp(ctx context.Context, input core.SignUpInput) (*core.User, error) {
	if err := validateSignUp(input); err != nil {
		return nil, err
	}

	var user *core.User
	err := s.db.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		// Step 1: uniqueness pre-check. The schema constraints stay authoritative.
		if _, err := tx.GetUserByUsername(ctx, input.Username); err == nil {
			return core.ErrDuplicateUsername
		} else if !errors.Is(err, core.ErrRecordNotFound) {
			return fmt.Errorf("failed to check username: %w", err)
		}

		if _, err := tx.GetUserByEmail(ctx, input.Email); err == nil {
			return core.ErrDuplicateEmail
		} else if !errors.Is(err, core.ErrRecordNotFound) {
			return fmt.Errorf("failed to check email: %w", err)
		}

		// Step 2: hash the password
		cred, err := s.passwordHasher.Hash(input.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		// Step 3: create the user
		user = &core.User{
			UUID:           uuid.NewString(),
			Username:       input.Username,
			Email:          input.Email,
			PasswordDigest: cred.Digest,
			Salt:           cred.Salt,
			Role:           core.RoleNonAdmin,
			FirstName:      input.FirstName,
			LastName:       input.LastName,
			Country:        input.Country,
			AboutMe:        input.AboutMe,
			DOB:            input.DOB,
			ContactNumber:  input.ContactNumber,
			CreatedAt:      time.Now().UTC(),
		}

		if err := tx.CreateUser(ctx, user); err != nil {
			if errors.Is(err, core.ErrDuplicateUsername) || errors.Is(err, core.ErrDuplicateEmail) {
				return err
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user signed up", "user_id", user.UUID)
	s.publish(ctx, core.Event{Type: core.EventSignedUp, UserUUID: user.UUID})

	return user, nil
}

// SignIn authenticates username/password and opens a session.
func (s *AuthService) SignIn(ctx context.Context, username, password, ipAddress, userAgent string) (*core.SignInResult, error) {
	var result *core.SignInResult
	err := s.db.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		// Step 1: find the user by username
		user, err := tx.GetUserByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, core.ErrRecordNotFound) {
				return core.ErrUnknownUser
			}
			return fmt.Errorf("failed to find user: %w", err)
		}

		// Step 2: verify the password
		valid, err := s.passwordHasher.Verify(password, crypto.Credential{Salt: user.Salt, Digest: user.PasswordDigest})
		if err != nil {
			return fmt.Errorf("failed to verify password: %w", err)
		}
		if !valid {
			return core.ErrBadCredentials
		}

		// Step 3: create a new session
		session, token, err := s.sessionManager.Create(ctx, tx, user, ipAddress, userAgent)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		result = &core.SignInResult{User: user, Session: session, Token: token}
		return nil
	})
	if err != nil {
		if errors.Is(err, core.ErrUnknownUser) || errors.Is(err, core.ErrBadCredentials) {
			s.log.Info(ctx, "signin rejected", "username", username, "code", codeOf(err))
		}
		return nil, err
	}

	s.sessionManager.Remember(ctx, result.Session.TokenHash, &core.SessionData{User: result.User, Session: result.Session})

	s.log.Info(ctx, "user signed in", "user_id", result.User.UUID, "session_id", result.Session.UUID)
	s.publish(ctx, core.Event{
		Type:        core.EventSignedIn,
		UserUUID:    result.User.UUID,
		SessionUUID: result.Session.UUID,
		IPAddress:   ipAddress,
	})

	return result, nil
}

// Validate resolves an access token to its session and identity.
func (s *AuthService) Validate(ctx context.Context, token string) (*core.SessionData, error) {
	return s.sessionManager.Verify(ctx, s.db, token)
}

// SignOut closes the session behind token and returns its owner.
func (s *AuthService) SignOut(ctx context.Context, token string) (*core.User, error) {
	var data *core.SessionData
	err := s.db.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		var err error
		data, err = s.sessionManager.Close(ctx, tx, token)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.sessionManager.Revoke(ctx, data)

	s.log.Info(ctx, "user signed out", "user_id", data.User.UUID, "session_id", data.Session.UUID)
	s.publish(ctx, core.Event{
		Type:        core.EventSignedOut,
		UserUUID:    data.User.UUID,
		SessionUUID: data.Session.UUID,
		IPAddress:   data.Session.IPAddress,
	})

	return data.User, nil
}

// UserProfile returns the identity with public id userUUID. actor must
// already be authenticated.
func (s *AuthService) UserProfile(ctx context.Context, actor *core.User, userUUID string) (*core.User, error) {
	if actor == nil {
		return nil, core.ErrNotSignedIn
	}

	var user *core.User
	err := s.db.WithTx(ctx, func(ctx context.Context, tx core.StorageAdapter) error {
		var err error
		user, err = tx.GetUserByUUID(ctx, userUUID)
		if errors.Is(err, core.ErrRecordNotFound) {
			return core.ErrUserNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) publish(ctx context.Context, event core.Event) {
	if s.events == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn(ctx, "audit event publish failed", "event", string(event.Type), "error", err)
	}
}

func codeOf(err error) string {
	if e, ok := core.AsError(err); ok {
		return e.Code
	}
	return ""
}
