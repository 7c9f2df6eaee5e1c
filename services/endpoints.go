package services

import (
	"fmt"
	"net/http"

	"github.com/lborres/quora/core"
)

// BaseEndpoints returns the framework-agnostic route table. Adapters bind
// a handler to each OperationID.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		{
			Path:   "/user/signup",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID:   core.OpSignUp,
				Description:   "Register a new user",
				SuccessStatus: http.StatusCreated,
			},
		},
		{
			Path:   "/user/signin",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID:   core.OpSignIn,
				Description:   "Sign in with basic credentials and receive an access token",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:      "/user/signout",
			Method:    http.MethodPost,
			Protected: false, // signout reports its own SGR errors
			Metadata: core.EndpointMetadata{
				OperationID:   core.OpSignOut,
				Description:   "Close the session behind the access token",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:      "/userprofile/:userId",
			Method:    http.MethodGet,
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID:   core.OpUserProfile,
				Description:   "Get a user's profile",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:      "/question/create",
			Method:    http.MethodPost,
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID:   core.OpCreateQuestion,
				Description:   "Ask a question",
				SuccessStatus: http.StatusCreated,
			},
		},
		{
			Path:      "/question/all",
			Method:    http.MethodGet,
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID:   core.OpAllQuestions,
				Description:   "List every question",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:      "/question/edit/:questionId",
			Method:    http.MethodPut,
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID:   core.OpEditQuestion,
				Description:   "Edit a question. Owner only",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:      "/question/delete/:questionId",
			Method:    http.MethodDelete,
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID:   core.OpDeleteQuestion,
				Description:   "Delete a question. Owner or admin",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:      "/question/all/:userId",
			Method:    http.MethodGet,
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID:   core.OpQuestionsByUser,
				Description:   "List the questions asked by a user",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:      "/question/:questionId/answer/create",
			Method:    http.MethodPost,
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID:   core.OpCreateAnswer,
				Description:   "Answer a question",
				SuccessStatus: http.StatusCreated,
			},
		},
		{
			Path:      "/answer/all/:questionId",
			Method:    http.MethodGet,
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID:   core.OpAnswersForQ,
				Description:   "List the answers to a question",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:      "/answer/edit/:answerId",
			Method:    http.MethodPut,
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID:   core.OpEditAnswer,
				Description:   "Edit an answer. Owner only",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:      "/answer/delete/:answerId",
			Method:    http.MethodDelete,
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID:   core.OpDeleteAnswer,
				Description:   "Delete an answer. Owner or admin",
				SuccessStatus: http.StatusOK,
			},
		},
	}
}

// EndpointRegistry holds the route table in registration order and rejects
// duplicate METHOD:PATH combinations.
type EndpointRegistry struct {
	endpoints []*core.Endpoint
	index     map[string]*core.Endpoint // key: "METHOD:PATH"
}

// NewEndpointRegistry creates a registry with the base endpoints
// pre-registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		index: make(map[string]*core.Endpoint),
	}

	for _, ep := range BaseEndpoints() {
		// The base table is static; a conflict here is a programming error.
		if err := reg.register(ep); err != nil {
			panic(err)
		}
	}

	return reg
}

func endpointKey(ep core.Endpoint) string {
	return fmt.Sprintf("%s:%s", ep.Method, ep.Path)
}

func (r *EndpointRegistry) register(ep core.Endpoint) error {
	key := endpointKey(ep)
	if _, exists := r.index[key]; exists {
		return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
	}

	stored := ep
	r.index[key] = &stored
	r.endpoints = append(r.endpoints, &stored)
	return nil
}

// Register adds extra endpoints. Either every endpoint is added or, on a
// conflict with the registry or within the batch, none is.
func (r *EndpointRegistry) Register(endpoints []core.Endpoint) error {
	seen := make(map[string]bool, len(endpoints))
	for _, ep := range endpoints {
		key := endpointKey(ep)
		if _, exists := r.index[key]; exists {
			return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
		}
		if seen[key] {
			return fmt.Errorf("duplicate endpoint in batch: %s %s", ep.Method, ep.Path)
		}
		seen[key] = true
	}

	for _, ep := range endpoints {
		_ = r.register(ep)
	}
	return nil
}

// Endpoints returns every registered endpoint in registration order.
func (r *EndpointRegistry) Endpoints() []*core.Endpoint {
	out := make([]*core.Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}
