package fiber

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/lborres/quora/core"
	"github.com/lborres/quora/internal/logging"
	"github.com/lborres/quora/services"
)

type Adapter struct {
	app *fiber.App
	api core.API
	log logging.Logger
}

var _ core.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app, log: logging.Nop{}}
}

// WithLogger sets the logger used for unexpected (5xx) failures.
func (a *Adapter) WithLogger(log logging.Logger) *Adapter {
	if log != nil {
		a.log = log
	}
	return a
}

// RegisterRoutes mounts the route table under basePath. Protected routes
// resolve the access token before the handler runs.
func (a *Adapter) RegisterRoutes(api core.API, basePath string) error {
	if api.Auth == nil || api.Questions == nil || api.Answers == nil {
		return fmt.Errorf("fiber adapter: incomplete api")
	}
	a.api = api

	if basePath == "" {
		basePath = "/"
	}
	router := a.app.Group(basePath)

	factories := a.handlerFactories()
	for _, ep := range services.NewEndpointRegistry().Endpoints() {
		factory, ok := factories[ep.Metadata.OperationID]
		if !ok {
			return fmt.Errorf("fiber adapter: no handler for operation %q", ep.Metadata.OperationID)
		}

		handler := factory(ep.Metadata.SuccessStatus)
		if ep.Protected {
			handler = a.protect(handler)
		}
		router.Add([]string{ep.Method}, ep.Path, handler)
	}

	return nil
}

func (a *Adapter) handlerFactories() map[string]func(status int) fiber.Handler {
	return map[string]func(status int) fiber.Handler{
		core.OpSignUp:          a.handleSignUp,
		core.OpSignIn:          a.handleSignIn,
		core.OpSignOut:         a.handleSignOut,
		core.OpUserProfile:     a.handleUserProfile,
		core.OpCreateQuestion:  a.handleCreateQuestion,
		core.OpAllQuestions:    a.handleAllQuestions,
		core.OpEditQuestion:    a.handleEditQuestion,
		core.OpDeleteQuestion:  a.handleDeleteQuestion,
		core.OpQuestionsByUser: a.handleQuestionsByUser,
		core.OpCreateAnswer:    a.handleCreateAnswer,
		core.OpAnswersForQ:     a.handleAnswersForQuestion,
		core.OpEditAnswer:      a.handleEditAnswer,
		core.OpDeleteAnswer:    a.handleDeleteAnswer,
	}
}
