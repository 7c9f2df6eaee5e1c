package fiber

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/lborres/quora/core"
)

// HeaderAccessToken carries the access token on a successful signin.
const HeaderAccessToken = "access-token"

const (
	statusRegistered      = "USER SUCCESSFULLY REGISTERED"
	messageSignedIn       = "SIGNED IN SUCCESSFULLY"
	messageSignedOut      = "SIGNED OUT SUCCESSFULLY"
	statusQuestionCreated = "QUESTION CREATED"
	statusQuestionEdited  = "QUESTION EDITED"
	statusQuestionDeleted = "QUESTION DELETED"
	statusAnswerCreated   = "ANSWER CREATED"
	statusAnswerEdited    = "ANSWER EDITED"
	statusAnswerDeleted   = "ANSWER DELETED"
)

type contentRequest struct {
	Content string `json:"content"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (a *Adapter) bindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		return core.ErrInvalidInput.WithMessage("Request body is not valid JSON")
	}
	return nil
}

func (a *Adapter) handleSignUp(status int) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input core.SignUpInput
		if err := a.bindBody(c, &input); err != nil {
			return a.handleError(c, err)
		}

		user, err := a.api.Auth.SignUp(c.Context(), input)
		if err != nil {
			return a.handleError(c, err)
		}

		return c.Status(status).JSON(core.StatusResponse{ID: user.UUID, Status: statusRegistered})
	}
}

func (a *Adapter) handleSignIn(status int) fiber.Handler {
	return func(c fiber.Ctx) error {
		username, password, err := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return a.handleError(c, err)
		}

		result, err := a.api.Auth.SignIn(c.Context(), username, password, c.IP(), c.Get(fiber.HeaderUserAgent))
		if err != nil {
			return a.handleError(c, err)
		}

		c.Set(HeaderAccessToken, result.Token)
		return c.Status(status).JSON(core.MessageResponse{ID: result.User.UUID, Message: messageSignedIn})
	}
}

func (a *Adapter) handleSignOut(status int) fiber.Handler {
	return func(c fiber.Ctx) error {
		user, err := a.api.Auth.SignOut(c.Context(), extractToken(c))
		if err != nil {
			return a.handleError(c, err)
		}

		return c.Status(status).JSON(core.MessageResponse{ID: user.UUID, Message: messageSignedOut})
	}
}

func (a *Adapter) handleUserProfile(status int) fiber.Handler {
	return func(c fiber.Ctx) error {
		user, err := a.api.Auth.UserProfile(c.Context(), CurrentUser(c), c.Params("userId"))
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(status).JSON(user)
	}
}

func (a *Adapter) handleCreateQuestion(status int) fiber.Handler {
	return func(c fiber.Ctx) error {
		var req contentRequest
		if err := a.bindBody(c, &req); err != nil {
			return a.handleError(c, err)
		}

		q, err := a.api.Questions.Create(c.Context(), CurrentUser(c), req.Content)
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(status).JSON(core.StatusResponse{ID: q.UUID, Status: statusQuestionCreated})
	}
}

func (a *Adapter) handleAllQuestions(status int) fiber.Handler {
	return func(c fiber.Ctx) error {
		questions, err := a.api.Questions.All(c.Context(), CurrentUser(c))
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(status).JSON(questions)
	}
}

func (a *Adapter) handleEditQuestion(status int) fiber.Handler {
	return func(c fiber.Ctx) error {
		var req contentRequest
		if err := a.bindBody(c, &req); err != nil {
			return a.handleError(c, err)
		}

		q, err := a.api.Questions.Edit(c.Context(), CurrentUser(c), c.Params("questionId"), req.Content)
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(status).JSON(core.StatusResponse{ID: q.UUID, Status: statusQuestionEdited})
	}
}

func (a *Adapter) handleDeleteQuestion(status int) fiber.Handler {
	return func(c fiber.Ctx) error {
		q, err := a.api.Questions.Delete(c.Context(), CurrentUser(c), c.Params("questionId"))
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(status).JSON(core.StatusResponse{ID: q.UUID, Status: statusQuestionDeleted})
	}
}

func (a *Adapter) handleQuestionsByUser(status int) fiber.Handler {
	return func(c fiber.Ctx) error {
		questions, err := a.api.Questions.AllByUser(c.Context(), CurrentUser(c), c.Params("userId"))
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(status).JSON(questions)
	}
}

func (a *Adapter) handleCreateAnswer(status int) fiber.Handler {
	return func(c fiber.Ctx) error {
		var req answerRequest
		if err := a.bindBody(c, &req); err != nil {
			return a.handleError(c, err)
		}

		ans, err := a.api.Answers.Create(c.Context(), CurrentUser(c), c.Params("questionId"), req.Answer)
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(status).JSON(core.StatusResponse{ID: ans.UUID, Status: statusAnswerCreated})
	}
}

func (a *Adapter) handleAnswersForQuestion(status int) fiber.Handler {
	return func(c fiber.Ctx) error {
		answers, err := a.api.Answers.AllForQuestion(c.Context(), CurrentUser(c), c.Params("questionId"))
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(status).JSON(answers)
	}
}

func (a *Adapter) handleEditAnswer(status int) fiber.Handler {
	return func(c fiber.Ctx) error {
		var req contentRequest
		if err := a.bindBody(c, &req); err != nil {
			return a.handleError(c, err)
		}

		ans, err := a.api.Answers.Edit(c.Context(), CurrentUser(c), c.Params("answerId"), req.Content)
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(status).JSON(core.StatusResponse{ID: ans.UUID, Status: statusAnswerEdited})
	}
}

func (a *Adapter) handleDeleteAnswer(status int) fiber.Handler {
	return func(c fiber.Ctx) error {
		ans, err := a.api.Answers.Delete(c.Context(), CurrentUser(c), c.Params("answerId"))
		if err != nil {
			return a.handleError(c, err)
		}
		return c.Status(status).JSON(core.StatusResponse{ID: ans.UUID, Status: statusAnswerDeleted})
	}
}

// extractToken reads the access token from the authorization header, raw
// or with a Bearer prefix.
func extractToken(c fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// parseBasicAuth decodes "Basic base64(username:password)". The password
// may itself contain colons.
func parseBasicAuth(header string) (username, password string, err error) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", core.ErrInvalidBasicHeader
	}

	decoded, decodeErr := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if decodeErr != nil {
		return "", "", core.ErrInvalidBasicHeader
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok || username == "" {
		return "", "", core.ErrInvalidBasicHeader
	}
	return username, password, nil
}
