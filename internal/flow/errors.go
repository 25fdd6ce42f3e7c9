package flow

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/brizzai/swagger-token/internal/backend"
)

// Failure kinds. Every run that does not produce a token fails with exactly
// one of them; match with errors.Is.
var (
	ErrBind           = errors.New("port unavailable")
	ErrNoCodeReceived = errors.New("no code received")
	ErrStateMismatch  = errors.New("state mismatch")
	ErrTimeout        = errors.New("timeout waiting for redirect")
	ErrExchange       = errors.New("token exchange failed")
	ErrBackend        = errors.New("backend login failed")
)

// Error is a failed run: the state it failed in, the failure kind and the
// underlying cause, if any.
type Error struct {
	State State
	Kind  error
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// BackendError describes a login the backend did not turn into a token.
// Either Err is set (the call never got an answer) or StatusCode and Result
// hold what the backend said.
type BackendError struct {
	StatusCode int
	Result     *backend.LoginResult
	// ProviderToken is kept so the operator can retry the login by hand
	ProviderToken string
	Err           error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	body, err := json.Marshal(e.Result)
	if err != nil {
		body = []byte(fmt.Sprintf("%+v", e.Result))
	}
	return fmt.Sprintf("%d/%s", e.StatusCode, body)
}

// Is reports every BackendError as ErrBackend
func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
