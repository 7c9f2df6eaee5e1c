package core

// Operation ids shared by the route table and the HTTP adapters.
const (
	OpSignUp          = "signUp"
	OpSignIn          = "signIn"
	OpSignOut         = "signOut"
	OpUserProfile     = "userProfile"
	OpCreateQuestion  = "createQuestion"
	OpAllQuestions    = "getAllQuestions"
	OpEditQuestion    = "editQuestionContent"
	OpDeleteQuestion  = "deleteQuestion"
	OpQuestionsByUser = "getAllQuestionsByUser"
	OpCreateAnswer    = "createAnswer"
	OpAnswersForQ     = "getAllAnswersToQuestion"
	OpEditAnswer      = "editAnswerContent"
	OpDeleteAnswer    = "deleteAnswer"
)

// Endpoint is a framework-agnostic route. Adapters bind a handler to each
// Metadata.OperationID.
type Endpoint struct {
	Path      string
	Method    string
	Protected bool // requires a valid access token
	Metadata  EndpointMetadata
}

type EndpointMetadata struct {
	OperationID   string
	Description   string
	SuccessStatus int
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusResponse acknowledges a create, edit or delete.
type StatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// MessageResponse acknowledges a signin or signout.
type MessageResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}
