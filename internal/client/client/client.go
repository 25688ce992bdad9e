// Package client is the authenticated HTTP client for the todokeeper API.
//
// Session credentials live in HttpOnly cookies that only the cookie jar
// touches. When a call is rejected because the access credential expired,
// HTTPClient renews it once through the refresh endpoint and reissues the
// call exactly once. Concurrent calls that hit an expired credential share
// a single renewal. Network errors, 5xx and 429 responses are retried with
// exponential backoff (see RetryPolicy).
//
// Every failure is an *APIError; match ErrAuthenticationRequired to decide
// when the user must log in again.
package client

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/client/models"
)

// Client is the API surface used by the CLI.
type Client interface {
	Health(ctx context.Context) error

	Register(ctx context.Context, username, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, username string, password []byte) (*models.SessionInfo, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context) (int64, error)
	Me(ctx context.Context) (*models.User, error)

	CreateTodo(ctx context.Context, in models.TodoInput) (*models.Todo, error)
	ListTodos(ctx context.Context, opts models.ListOptions) (*models.TodoPage, error)
	GetTodo(ctx context.Context, id string) (*models.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error)
	CompleteTodo(ctx context.Context, id string) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
	TodoStats(ctx context.Context) (*models.TodoStats, error)

	AttachmentUploadURL(ctx context.Context, id string) (*models.Presigned, error)
	AttachmentDownloadURL(ctx context.Context, id string) (*models.Presigned, error)
}

var _ Client = (*HTTPClient)(nil)
