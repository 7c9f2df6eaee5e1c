package core

import "time"

// Role is the coarse privilege level of a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleNonAdmin Role = "nonadmin"
)

// User represents a registered principal
//
// ID is internal and never leaves the server; UUID is what clients see.
type User struct {
	ID             int64     `json:"-"`
	UUID           string    `json:"id"`
	Username       string    `json:"userName"`
	Email          string    `json:"emailAddress"`
	PasswordDigest string    `json:"-"` // Never expose in JSON
	Salt           string    `json:"-"` // Never expose in JSON
	Role           Role      `json:"role"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Country        string    `json:"country,omitempty"`
	AboutMe        string    `json:"aboutMe,omitempty"`
	DOB            string    `json:"dob,omitempty"`
	ContactNumber  string    `json:"contactNumber,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Session represents one authenticated login.
//
// Sessions are never deleted. A non-nil LogoutAt marks the session closed
// and is never reset once stamped.
type Session struct {
	ID        int64      `json:"-"`
	UUID      string     `json:"id"`
	UserID    int64      `json:"-"`
	TokenHash string     `json:"-"` // Never expose in JSON (security!)
	IPAddress string     `json:"ipAddress"`
	UserAgent string     `json:"userAgent"`
	LoginAt   time.Time  `json:"loginAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	LogoutAt  *time.Time `json:"logoutAt,omitempty"`
}

// IsLoggedOut reports whether signout has been recorded.
func (s *Session) IsLoggedOut() bool {
	return s.LogoutAt != nil
}

// IsExpired reports whether the session validity window has passed at now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SessionData combines user and session info
// The model handed to request handlers once a token validates
type SessionData struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}

// Owned is implemented by every mutable resource carrying an owner.
type Owned interface {
	OwnerID() int64
	Kind() string
}

type Question struct {
	ID      int64     `json:"-"`
	UUID    string    `json:"id"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
	UserID  int64     `json:"-"`
}

func (q *Question) OwnerID() int64 { return q.UserID }
func (q *Question) Kind() string   { return "question" }

type Answer struct {
	ID         int64     `json:"-"`
	UUID       string    `json:"id"`
	Content    string    `json:"answerContent"`
	Date       time.Time `json:"date"`
	UserID     int64     `json:"-"`
	QuestionID int64     `json:"-"`

	// QuestionContent is filled by list queries joining the parent question.
	QuestionContent string `json:"questionContent,omitempty"`
}

func (a *Answer) OwnerID() int64 { return a.UserID }
func (a *Answer) Kind() string   { return "answer" }
