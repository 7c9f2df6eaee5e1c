package fiber

import (
	"github.com/gofiber/fiber/v3"
	"github.com/lborres/quora/core"
)

const (
	localUser    = "user"
	localSession = "session"
)

// Protected is a middleware for routes mounted outside the route table.
// It validates the access token and stores the user and session in Locals.
func (a *Adapter) Protected(c fiber.Ctx) error {
	data, err := a.authenticate(c)
	if err != nil {
		return a.handleError(c, err)
	}
	storeSession(c, data)
	return c.Next()
}

// protect wraps h so it only runs for a valid access token.
func (a *Adapter) protect(h fiber.Handler) fiber.Handler {
	return func(c fiber.Ctx) error {
		data, err := a.authenticate(c)
		if err != nil {
			return a.handleError(c, err)
		}
		storeSession(c, data)
		return h(c)
	}
}

func (a *Adapter) authenticate(c fiber.Ctx) (*core.SessionData, error) {
	if a.api.Auth == nil {
		return nil, core.ErrNotSignedIn
	}
	return a.api.Auth.Validate(c.Context(), extractToken(c))
}

func storeSession(c fiber.Ctx, data *core.SessionData) {
	c.Locals(localUser, data.User)
	c.Locals(localSession, data.Session)
}

// CurrentUser returns the identity stored by the auth middleware.
func CurrentUser(c fiber.Ctx) *core.User {
	u, _ := c.Locals(localUser).(*core.User)
	return u
}

// CurrentSession returns the session stored by the auth middleware.
func CurrentSession(c fiber.Ctx) *core.Session {
	s, _ := c.Locals(localSession).(*core.Session)
	return s
}
