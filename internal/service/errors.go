package service

import "fmt"

// Error kinds surfaced to API callers. Anything not in this taxonomy is an
// internal failure and maps to a 500.
const (
	ErrKindMissingParameter = "MISSING_PARAMETER"
	ErrKindSessionCreate    = "SESSION_CREATE_ERROR"
	ErrKindSessionNotFound  = "SESSION_NOT_FOUND"
	ErrKindGeneration       = "GENERATION_FAILURE"
)

// ServiceError is a caller-facing failure with an HTTP status and a
// machine-readable kind. Retrieval, extraction and follow-up failures never
// become ServiceErrors; they degrade silently inside the pipeline.
type ServiceError struct {
	HTTPStatus int
	Kind       string
	Msg        string
	cause      error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

func NewMissingParameter(field string) *ServiceError {
	return &ServiceError{
		HTTPStatus: 400,
		Kind:       ErrKindMissingParameter,
		Msg:        fmt.Sprintf("Missing required parameter: %s", field),
	}
}

func NewSessionCreateError(cause error) *ServiceError {
	return &ServiceError{
		HTTPStatus: 500,
		Kind:       ErrKindSessionCreate,
		Msg:        "Failed to create chat session",
		cause:      cause,
	}
}

func NewSessionNotFound(sessionId string) *ServiceError {
	return &ServiceError{
		HTTPStatus: 404,
		Kind:       ErrKindSessionNotFound,
		Msg:        fmt.Sprintf("Session not found: %s", sessionId),
	}
}

func NewGenerationFailure(cause error) *ServiceError {
	return &ServiceError{
		HTTPStatus: 502,
		Kind:       ErrKindGeneration,
		Msg:        fmt.Sprintf("Answer generation failed: %v", cause),
		cause:      cause,
	}
}
