package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/todokeeper/internal/client/models"
)

func todoPath(id string, suffix string) string {
	return apiPrefix + "/todos/" + id + suffix
}

func (c *HTTPClient) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/healthz", nil, nil)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates the account and starts a session.
func (c *HTTPClient) Register(ctx context.Context, username, email string, password []byte) (*models.User, error) {
	var u models.User
	in := registerRequest{Username: username, Email: email, Password: string(password)}
	if err := c.call(ctx, http.MethodPost, pathRegister, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Login(ctx context.Context, username string, password []byte) (*models.SessionInfo, error) {
	var s models.SessionInfo
	in := loginRequest{Username: username, Password: string(password)}
	if err := c.call(ctx, http.MethodPost, pathLogin, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Refresh renews the access credential now, joining a renewal already in
// flight.
func (c *HTTPClient) Refresh(ctx context.Context) error {
	return c.renew(ctx, c.renewal.generation())
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, apiPrefix+"/auth/logout", nil, nil)
}

// LogoutAll revokes every session of the user and returns how many were
// still active.
func (c *HTTPClient) LogoutAll(ctx context.Context) (int64, error) {
	var out struct {
		Revoked int64 `json:"revoked"`
	}
	if err := c.call(ctx, http.MethodPost, apiPrefix+"/auth/logout-all", nil, &out); err != nil {
		return 0, err
	}
	return out.Revoked, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.call(ctx, http.MethodGet, apiPrefix+"/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) CreateTodo(ctx context.Context, in models.TodoInput) (*models.Todo, error) {
	var t models.Todo
	if err := c.call(ctx, http.MethodPost, apiPrefix+"/todos", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) ListTodos(ctx context.Context, opts models.ListOptions) (*models.TodoPage, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	if opts.Priority != "" {
		q.Set("priority", opts.Priority)
	}
	if opts.Completed != nil {
		q.Set("completed", strconv.FormatBool(*opts.Completed))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}

	var p models.TodoPage
	req := request{method: http.MethodGet, path: apiPrefix + "/todos", query: q}
	if err := c.callRequest(ctx, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) GetTodo(ctx context.Context, id string) (*models.Todo, error) {
	var t models.Todo
	if err := c.call(ctx, http.MethodGet, todoPath(id, ""), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	var t models.Todo
	if err := c.call(ctx, http.MethodPatch, todoPath(id, ""), patch, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CompleteTodo toggles the completion flag.
func (c *HTTPClient) CompleteTodo(ctx context.Context, id string) (*models.Todo, error) {
	var t models.Todo
	if err := c.call(ctx, http.MethodPatch, todoPath(id, "/complete"), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) DeleteTodo(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, todoPath(id, ""), nil, nil)
}

func (c *HTTPClient) TodoStats(ctx context.Context) (*models.TodoStats, error) {
	var s models.TodoStats
	if err := c.call(ctx, http.MethodGet, apiPrefix+"/todos/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) AttachmentUploadURL(ctx context.Context, id string) (*models.Presigned, error) {
	var p models.Presigned
	if err := c.call(ctx, http.MethodPost, todoPath(id, "/attachment"), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) AttachmentDownloadURL(ctx context.Context, id string) (*models.Presigned, error) {
	var p models.Presigned
	if err := c.call(ctx, http.MethodGet, todoPath(id, "/attachment"), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
