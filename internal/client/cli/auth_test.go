package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/client/client"
	"github.com/dmitrijs2005/todokeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	out := captureOutput(t)
	stubInputs(t, []string{"alice", "alice@example.org"}, []byte("password123"))

	f := &fakeAPI{}
	a := newTestApp(f, rdr(""))

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, "alice", f.regUser)
	assert.Equal(t, "alice@example.org", f.regEmail)
	assert.Equal(t, "password123", string(f.regPass))
	assert.True(t, a.isLoggedIn())
	assert.Contains(t, *out, "Success! Logged in as alice")
}

func TestRegister_WipesPassword(t *testing.T) {
	captureOutput(t)
	pw := []byte("password123")
	stubInputs(t, []string{"alice", ""}, pw)

	a := newTestApp(&fakeAPI{}, rdr(""))
	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, make([]byte, len(pw)), pw)
}

func TestLogin_SetsUserAndMode(t *testing.T) {
	captureOutput(t)
	stubInputs(t, []string{"bob"}, []byte("password123"))

	f := &fakeAPI{}
	a := newTestApp(f, rdr(""))

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "bob", f.loginUser)
	assert.Equal(t, []string{"login", "me"}, f.calls)
	assert.Equal(t, "(bob online)", a.getStatus())
}

func TestLogin_NameComesFromServer(t *testing.T) {
	out := captureOutput(t)
	stubInputs(t, []string{"BOB "}, []byte("password123"))

	f := &fakeAPI{user: &models.User{ID: "u2", Username: "bob"}}
	a := newTestApp(f, rdr(""))

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "(bob online)", a.getStatus())
	assert.Contains(t, *out, "Login successful, logged in as bob")
}

func TestLogin_NoSessionAfterLoginKeepsLoggedOut(t *testing.T) {
	captureOutput(t)
	stubInputs(t, []string{"bob"}, []byte("password123"))

	f := &fakeAPI{meErr: &client.APIError{Kind: client.KindAuthRequired, Status: 401}}
	a := newTestApp(f, rdr(""))

	err := a.Login(context.Background())
	require.ErrorIs(t, err, client.ErrAuthenticationRequired)
	assert.False(t, a.isLoggedIn())
}

func TestLogin_FailureKeepsLoggedOut(t *testing.T) {
	captureOutput(t)
	stubInputs(t, []string{"bob"}, []byte("wrong"))

	f := &fakeAPI{err: &client.APIError{Kind: client.KindClient, Status: 401, Message: "incorrect username or password"}}
	a := newTestApp(f, rdr(""))

	require.Error(t, a.Login(context.Background()))
	assert.False(t, a.isLoggedIn())
}

func TestLogout_ClearsUserEvenOnError(t *testing.T) {
	captureOutput(t)

	f := &fakeAPI{}
	a := newTestApp(f, rdr(""))
	a.setUser("alice")
	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())

	f.err = errors.New("down")
	a.setUser("alice")
	require.Error(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
}

func TestLogoutAll_PrintsCount(t *testing.T) {
	out := captureOutput(t)

	a := newTestApp(&fakeAPI{revoked: 3}, rdr(""))
	a.setUser("alice")
	require.NoError(t, a.LogoutAll(context.Background()))
	assert.Contains(t, *out, "Logged out everywhere (3 sessions revoked)")
	assert.False(t, a.isLoggedIn())
}

func TestMe_PrintsProfile(t *testing.T) {
	out := captureOutput(t)
	email := "carol@example.org"
	f := &fakeAPI{user: &models.User{ID: "u9", Username: "carol", Email: &email, Status: "active", CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}}

	a := newTestApp(f, rdr(""))
	require.NoError(t, a.Me(context.Background()))

	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "carol@example.org")
	assert.Contains(t, joined, "2025-03-01")
}

func TestReport(t *testing.T) {
	out := captureOutput(t)
	a := newTestApp(&fakeAPI{}, rdr(""))
	a.setUser("alice")

	a.report(&client.APIError{Kind: client.KindAuthRequired})
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, *out, "Session expired, please log in again.")

	a.setUser("alice")
	a.report(&client.APIError{Kind: client.KindInvalidCredential, Status: 401, Code: "invalid_credential", Message: "invalid token"})
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, *out, "Session is no longer valid, please log in again.")

	a.report(&client.APIError{Kind: client.KindNetwork, Err: errors.New("dial tcp: refused")})
	assert.Equal(t, "(offline)", a.getStatus())

	a.report(&client.APIError{Kind: client.KindClient, Status: 422, Message: "validation failed",
		Fields: map[string]string{"title": "is required", "priority": "must be one of LOW MEDIUM HIGH"}})
	assert.Equal(t, []string{"Error: validation failed", "  priority: must be one of LOW MEDIUM HIGH", "  title: is required"}, (*out)[len(*out)-3:])

	a.report(errors.New("plain"))
	assert.Equal(t, "Error: plain", (*out)[len(*out)-1])
}

func TestCheckOnline(t *testing.T) {
	f := &fakeAPI{}
	a := newTestApp(f, rdr(""))

	a.checkOnline(context.Background())
	assert.Equal(t, "(online)", a.getStatus())

	f.err = errors.New("down")
	a.checkOnline(context.Background())
	assert.Equal(t, "(offline)", a.getStatus())
}
