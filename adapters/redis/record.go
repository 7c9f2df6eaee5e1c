package redis

import (
	"time"

	"github.com/lborres/quora/core"
)

// record is the cached form of core.SessionData. It keeps the internal ids
// the API representations hide.
type record struct {
	User    userRecord    `json:"user"`
	Session sessionRecord `json:"session"`
}

type userRecord struct {
	ID            int64     `json:"id"`
	UUID          string    `json:"uuid"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Role          core.Role `json:"role"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Country       string    `json:"country,omitempty"`
	AboutMe       string    `json:"aboutMe,omitempty"`
	DOB           string    `json:"dob,omitempty"`
	ContactNumber string    `json:"contactNumber,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type sessionRecord struct {
	ID        int64      `json:"id"`
	UUID      string     `json:"uuid"`
	UserID    int64      `json:"userId"`
	TokenHash string     `json:"tokenHash"`
	IPAddress string     `json:"ipAddress"`
	UserAgent string     `json:"userAgent"`
	LoginAt   time.Time  `json:"loginAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	LogoutAt  *time.Time `json:"logoutAt,omitempty"`
}

// newRecord drops password material; a cached identity never needs it.
func newRecord(d *core.SessionData) record {
	u, s := d.User, d.Session
	return record{
		User: userRecord{
			ID: u.ID, UUID: u.UUID, Username: u.Username, Email: u.Email, Role: u.Role,
			FirstName: u.FirstName, LastName: u.LastName, Country: u.Country, AboutMe: u.AboutMe,
			DOB: u.DOB, ContactNumber: u.ContactNumber, CreatedAt: u.CreatedAt,
		},
		Session: sessionRecord{
			ID: s.ID, UUID: s.UUID, UserID: s.UserID, TokenHash: s.TokenHash,
			IPAddress: s.IPAddress, UserAgent: s.UserAgent,
			LoginAt: s.LoginAt, ExpiresAt: s.ExpiresAt, LogoutAt: s.LogoutAt,
		},
	}
}

func (r record) sessionData() *core.SessionData {
	u, s := r.User, r.Session
	return &core.SessionData{
		User: &core.User{
			ID: u.ID, UUID: u.UUID, Username: u.Username, Email: u.Email, Role: u.Role,
			FirstName: u.FirstName, LastName: u.LastName, Country: u.Country, AboutMe: u.AboutMe,
			DOB: u.DOB, ContactNumber: u.ContactNumber, CreatedAt: u.CreatedAt,
		},
		Session: &core.Session{
			ID: s.ID, UUID: s.UUID, UserID: s.UserID, TokenHash: s.TokenHash,
			IPAddress: s.IPAddress, UserAgent: s.UserAgent,
			LoginAt: s.LoginAt, ExpiresAt: s.ExpiresAt, LogoutAt: s.LogoutAt,
		},
	}
}
