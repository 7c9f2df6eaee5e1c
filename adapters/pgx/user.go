package pgx

import (
	"context"

	"github.com/lborres/quora/core"
)

const userColumns = `id, uuid, role, email, username, password, salt, firstname, lastname, country, aboutme, dob, contactnumber, created_at`

func (a *Adapter) CreateUser(ctx context.Context, u *core.User) error {
	query := `INSERT INTO users (uuid, role, email, username, password, salt, firstname, lastname, country, aboutme, dob, contactnumber, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	err := a.q.QueryRowContext(ctx, query,
		u.UUID, string(u.Role), u.Email, u.Username, u.PasswordDigest, u.Salt,
		u.FirstName, u.LastName, u.Country, u.AboutMe, u.DOB, u.ContactNumber, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		return mapUserInsert(err)
	}
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	return a.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (a *Adapter) GetUserByUUID(ctx context.Context, uuid string) (*core.User, error) {
	return a.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE uuid = $1`, uuid)
}

func (a *Adapter) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	return a.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return a.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// SetRole changes a user's role. Signup only creates non-admins.
func (a *Adapter) SetRole(ctx context.Context, userID int64, role core.Role) error {
	res, err := a.q.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, string(role), userID)
	if err != nil {
		return mapNotFound(err, core.ErrRecordNotFound)
	}
	return expectOne(res, core.ErrRecordNotFound)
}

func (a *Adapter) getUser(ctx context.Context, query string, arg any) (*core.User, error) {
	u := &core.User{}
	var role string
	err := a.q.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.UUID, &role, &u.Email, &u.Username, &u.PasswordDigest, &u.Salt,
		&u.FirstName, &u.LastName, &u.Country, &u.AboutMe, &u.DOB, &u.ContactNumber, &u.CreatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err, core.ErrRecordNotFound)
	}
	u.Role = core.Role(role)
	return u, nil
}
