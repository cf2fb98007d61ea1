package apierror

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the JSON-serializable error contract of the API layer.
// Services return these instead of raw errors so routes can answer with
// the right status code without inspecting error chains.
type ErrorResponse interface {
	Code() int
	Error() string
}

type apiError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *apiError) Code() int     { return e.Status }
func (e *apiError) Error() string { return e.Message }

func NewSimple(code int, message string) ErrorResponse {
	return &apiError{Status: code, Message: message}
}

func NewMissingParamError(name string) ErrorResponse {
	return NewSimple(400, fmt.Sprintf("Missing required parameter: %s", name))
}

func NewInvalidParamTypeError(name, expected string) ErrorResponse {
	return NewSimple(400, fmt.Sprintf("Parameter %s must be of type %s", name, expected))
}

// FromValidationError flattens validator.ValidationErrors into a single
// human-readable 400 response.
func FromValidationError(err error) ErrorResponse {
	valErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return MalformedBodyError
	}

	parts := make([]string, len(valErrs))
	for i, fe := range valErrs {
		parts[i] = fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
	}
	return NewSimple(400, "Validation failed: "+strings.Join(parts, ", "))
}

var (
	InternalServerError      = NewSimple(500, "Internal server error")
	MalformedBodyError       = NewSimple(400, "Malformed request body")
	NotFoundError            = NewSimple(404, "Resource not found")
	InvalidAuthTokenError    = NewSimple(401, "Invalid or missing auth token")
	UserAlreadyExistsError   = NewSimple(409, "A user with this email already exists")
	CredentialsMismatchError = NewSimple(401, "Email or password is incorrect")
	InvalidIntervalError     = NewSimple(400, "Appointment end must be after its start")
	InvalidStatusChangeError = NewSimple(400, "Appointment status cannot be changed back to scheduled")
	NoAudioError             = NewSimple(400, "No audio provided")
	UpstreamFailedError      = NewSimple(502, "Speech service is unavailable, try again")
)
