package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS (Database operations)
// ============================================

// SessionStorage defines session-related database operations.
// Sessions are an audit trail, so there is no delete.
type SessionStorage interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByHash(ctx context.Context, tokenHash string) (*Session, error)
	// CloseSession stamps logoutAt on an open session. It returns
	// ErrAlreadySignedOut when logout-at is already set, so concurrent
	// signouts of one token cannot both succeed.
	CloseSession(ctx context.Context, tokenHash string, logoutAt time.Time) error
}

// UserStorage defines user-related database operations.
// CreateUser must return ErrDuplicateUsername / ErrDuplicateEmail when a
// uniqueness constraint rejects the insert.
type UserStorage interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByUUID(ctx context.Context, uuid string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

type QuestionStorage interface {
	CreateQuestion(ctx context.Context, q *Question) error
	GetQuestionByUUID(ctx context.Context, uuid string) (*Question, error)
	ListQuestions(ctx context.Context) ([]*Question, error)
	ListQuestionsByUser(ctx context.Context, userID int64) ([]*Question, error)
	UpdateQuestion(ctx context.Context, q *Question) error
	DeleteQuestion(ctx context.Context, id int64) error
}

type AnswerStorage interface {
	CreateAnswer(ctx context.Context, a *Answer) error
	GetAnswerByUUID(ctx context.Context, uuid string) (*Answer, error)
	ListAnswersByQuestion(ctx context.Context, questionID int64) ([]*Answer, error)
	UpdateAnswer(ctx context.Context, a *Answer) error
	DeleteAnswer(ctx context.Context, id int64) error
}

// StorageAdapter is the record store used by the services.
//
// WithTx runs fn against a transactional view of the store. Implementations
// already inside a transaction run fn on the same view.
type StorageAdapter interface {
	UserStorage
	SessionStorage
	QuestionStorage
	AnswerStorage

	WithTx(ctx context.Context, fn func(ctx context.Context, tx StorageAdapter) error) error
}

// ============================================
// CACHE PORT
// ============================================

// Cache defines session caching operations, keyed by token hash
type Cache interface {
	Get(ctx context.Context, tokenHash string) (*SessionData, error)
	Set(ctx context.Context, tokenHash string, data *SessionData) error
	// Add stores data only when tokenHash has no live entry.
	Add(ctx context.Context, tokenHash string, data *SessionData) error
	Delete(ctx context.Context, tokenHash string) error
	Clear(ctx context.Context) error
}

// CacheWithStats extends Cache with statistics tracking
type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// ============================================
// EVENTS PORT
// ============================================

type EventType string

const (
	EventSignedUp  EventType = "user.signed_up"
	EventSignedIn  EventType = "user.signed_in"
	EventSignedOut EventType = "user.signed_out"
)

// Event is an authentication audit record.
type Event struct {
	Type        EventType `json:"type"`
	UserUUID    string    `json:"userId"`
	SessionUUID string    `json:"sessionId,omitempty"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// EventPublisher ships audit events. Callers treat failures as non-fatal.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// ============================================
// HANDLER PORTS (for HTTP adapters)
// ============================================

// SignUpInput contains the data needed to register a new user
type SignUpInput struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Username      string `json:"userName"`
	Email         string `json:"emailAddress"`
	Password      string `json:"password"`
	Country       string `json:"country"`
	AboutMe       string `json:"aboutMe"`
	DOB           string `json:"dob"`
	ContactNumber string `json:"contactNumber"`
}

// SignInResult contains the authenticated user and their session
type SignInResult struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
	Token   string   `json:"-"` // Surfaced as the access-token header
}

// AuthHandler provides authentication operations for HTTP adapters
type AuthHandler interface {
	SignUp(ctx context.Context, input SignUpInput) (*User, error)
	SignIn(ctx context.Context, username, password, ipAddress, userAgent string) (*SignInResult, error)
	SignOut(ctx context.Context, token string) (*User, error)
	Validate(ctx context.Context, token string) (*SessionData, error)
	UserProfile(ctx context.Context, actor *User, userUUID string) (*User, error)
}

// QuestionHandler provides question operations for an authenticated actor.
type QuestionHandler interface {
	Create(ctx context.Context, actor *User, content string) (*Question, error)
	All(ctx context.Context, actor *User) ([]*Question, error)
	AllByUser(ctx context.Context, actor *User, userUUID string) ([]*Question, error)
	Edit(ctx context.Context, actor *User, questionUUID, content string) (*Question, error)
	Delete(ctx context.Context, actor *User, questionUUID string) (*Question, error)
}

// AnswerHandler provides answer operations for an authenticated actor.
type AnswerHandler interface {
	Create(ctx context.Context, actor *User, questionUUID, content string) (*Answer, error)
	AllForQuestion(ctx context.Context, actor *User, questionUUID string) ([]*Answer, error)
	Edit(ctx context.Context, actor *User, answerUUID, content string) (*Answer, error)
	Delete(ctx context.Context, actor *User, answerUUID string) (*Answer, error)
}

// API bundles the handlers an HTTP adapter mounts.
type API struct {
	Auth      AuthHandler
	Questions QuestionHandler
	Answers   AnswerHandler
}

// ============================================
// HTTP PORT
// ============================================

type HTTPAdapter interface {
	RegisterRoutes(api API, basePath string) error
}
