package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call. The coordinator branches on it.
type Kind int

const (
	// KindNetwork: the request never produced an HTTP response.
	KindNetwork Kind = iota + 1
	// KindServer: 5xx.
	KindServer
	// KindClient: 4xx other than an access credential 401.
	KindClient
	// KindInvalidCredential: the access credential is malformed or forged.
	// Terminal, never renewed.
	KindInvalidCredential
	// KindExpiredCredential: the access credential is missing or expired.
	// The only kind that triggers renewal.
	KindExpiredCredential
	// KindAuthRequired: renewal failed or the retry after renewal was
	// rejected again. The user has to log in.
	KindAuthRequired
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindExpiredCredential:
		return "expired_credential"
	case KindAuthRequired:
		return "auth_required"
	default:
		return "unknown"
	}
}

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrUnavailable            = errors.New("server unavailable")
)

// APIError is returned for every failed call.
type APIError struct {
	Kind          Kind
	Status        int
	Code          string
	Message       string
	Fields        map[string]string
	CorrelationID string
	Err           error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, msg, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is lets callers match ErrAuthenticationRequired and ErrUnavailable.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthenticationRequired:
		return e.Kind == KindAuthRequired
	case ErrUnavailable:
		return e.Kind == KindNetwork || e.Kind == KindServer
	}
	return false
}

// Retryable reports whether the backoff policy may reissue the request.
func (e *APIError) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindServer || e.Status == 429
}

func authRequired(cause error) *APIError {
	e := &APIError{Kind: KindAuthRequired, Message: "authentication required", Err: cause}
	var apiErr *APIError
	if errors.As(cause, &apiErr) {
		e.Status = apiErr.Status
		e.Code = apiErr.Code
		e.CorrelationID = apiErr.CorrelationID
	}
	return e
}
