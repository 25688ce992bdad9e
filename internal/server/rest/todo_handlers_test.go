package rest

import (
	"net/http"
	"testing"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createTodo(t *testing.T, s session, body map[string]any) todoResponse {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/todos", body, s.access)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[todoResponse](t, resp)
}

func TestTodos_CRUD(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	todo := env.createTodo(t, alice, map[string]any{"title": "write report", "description": "quarterly", "priority": "HIGH"})
	assert.Equal(t, "write report", todo.Title)
	require.NotNil(t, todo.Priority)
	assert.Equal(t, "HIGH", *todo.Priority)
	assert.False(t, todo.Completed)

	path := "/api/v1/todos/" + todo.ID

	resp := env.do(t, http.MethodGet, path, nil, alice.access)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, path, nil, bob.access)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, common.CodeForbidden, decode[errorResponse](t, resp).Code)

	resp = env.do(t, http.MethodGet, "/api/v1/todos/missing", nil, alice.access)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, path, map[string]any{"title": "write final report"}, alice.access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[todoResponse](t, resp)
	assert.Equal(t, "write final report", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "quarterly", *updated.Description)

	resp = env.do(t, http.MethodPatch, path+"/complete", nil, alice.access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[todoResponse](t, resp).Completed)

	resp = env.do(t, http.MethodDelete, path, nil, bob.access)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = env.do(t, http.MethodDelete, path, nil, alice.access)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = env.do(t, http.MethodGet, path, nil, alice.access)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTodos_Validation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	resp := env.do(t, http.MethodPost, "/api/v1/todos", map[string]any{"title": "", "priority": "URGENT"}, alice.access)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[errorResponse](t, resp)
	assert.Contains(t, body.Fields, "title")
	assert.Contains(t, body.Fields, "priority")

	resp = env.do(t, http.MethodGet, "/api/v1/todos?page_size=101", nil, alice.access)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/v1/todos?page=0", nil, alice.access)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/v1/todos?priority=URGENT", nil, alice.access)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/todos", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTodos_ListAndStats(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	env.createTodo(t, alice, map[string]any{"title": "alice one", "description": "secret", "priority": "LOW"})
	env.createTodo(t, alice, map[string]any{"title": "alice two", "priority": "LOW"})
	env.createTodo(t, bob, map[string]any{"title": "bob one", "description": "bob notes"})

	resp := env.do(t, http.MethodGet, "/api/v1/todos?page=1&page_size=2", nil, bob.access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[todoPageResponse](t, resp)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 2)

	resp = env.do(t, http.MethodGet, "/api/v1/todos?search=secret", nil, bob.access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page = decode[todoPageResponse](t, resp)
	require.Len(t, page.Items, 1)
	assert.Nil(t, page.Items[0].Description, "description of another user's todo is hidden")

	resp = env.do(t, http.MethodGet, "/api/v1/todos/stats", nil, alice.access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[statsResponse](t, resp)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(2), stats.ByPriority["LOW"])
	assert.Equal(t, int64(0), stats.ByPriority["HIGH"])
}

func TestTodos_AttachmentsDisabled(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	todo := env.createTodo(t, alice, map[string]any{"title": "scan"})

	resp := env.do(t, http.MethodPost, "/api/v1/todos/"+todo.ID+"/attachment", nil, alice.access)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, common.CodeAttachmentsDisabled, decode[errorResponse](t, resp).Code)
}
