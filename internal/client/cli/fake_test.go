package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/todokeeper/internal/client/client"
	"github.com/dmitrijs2005/todokeeper/internal/client/config"
	"github.com/dmitrijs2005/todokeeper/internal/client/models"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
)

// fakeAPI records calls and returns canned values.
type fakeAPI struct {
	client.Client

	calls []string
	err   error

	regUser, regEmail string
	regPass           []byte
	loginUser         string
	loginPass         []byte

	user    *models.User
	meErr   error
	revoked int64

	created  models.TodoInput
	patch    models.TodoPatch
	listOpts models.ListOptions
	lastID   string

	todo      *models.Todo
	page      *models.TodoPage
	stats     *models.TodoStats
	presigned *models.Presigned
}

func (f *fakeAPI) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeAPI) Health(context.Context) error { f.record("health"); return f.err }

func (f *fakeAPI) Register(_ context.Context, username, email string, password []byte) (*models.User, error) {
	f.record("register")
	f.regUser, f.regEmail, f.regPass = username, email, append([]byte(nil), password...)
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "u1", Username: username}, nil
}

func (f *fakeAPI) Login(_ context.Context, username string, password []byte) (*models.SessionInfo, error) {
	f.record("login")
	f.loginUser, f.loginPass = username, append([]byte(nil), password...)
	if f.err != nil {
		return nil, f.err
	}
	return &models.SessionInfo{Message: "login successful", ExpiresIn: 1800}, nil
}

func (f *fakeAPI) Logout(context.Context) error { f.record("logout"); return f.err }

func (f *fakeAPI) LogoutAll(context.Context) (int64, error) {
	f.record("logout-all")
	return f.revoked, f.err
}

// Me reports the logged-in user as the one passed to Login unless user
// is set.
func (f *fakeAPI) Me(context.Context) (*models.User, error) {
	f.record("me")
	if f.err != nil || f.meErr != nil {
		return nil, errors.Join(f.err, f.meErr)
	}
	if f.user == nil {
		return &models.User{ID: "u1", Username: f.loginUser}, nil
	}
	return f.user, nil
}

func (f *fakeAPI) CreateTodo(_ context.Context, in models.TodoInput) (*models.Todo, error) {
	f.record("create")
	f.created = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Todo{ID: "t1", Title: in.Title}, nil
}

func (f *fakeAPI) ListTodos(_ context.Context, opts models.ListOptions) (*models.TodoPage, error) {
	f.record("list")
	f.listOpts = opts
	return f.page, f.err
}

func (f *fakeAPI) GetTodo(_ context.Context, id string) (*models.Todo, error) {
	f.record("get")
	f.lastID = id
	return f.todo, f.err
}

func (f *fakeAPI) UpdateTodo(_ context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	f.record("update")
	f.lastID, f.patch = id, patch
	return f.todo, f.err
}

func (f *fakeAPI) CompleteTodo(_ context.Context, id string) (*models.Todo, error) {
	f.record("complete")
	f.lastID = id
	return f.todo, f.err
}

func (f *fakeAPI) DeleteTodo(_ context.Context, id string) error {
	f.record("delete")
	f.lastID = id
	return f.err
}

func (f *fakeAPI) TodoStats(context.Context) (*models.TodoStats, error) {
	f.record("stats")
	return f.stats, f.err
}

func (f *fakeAPI) AttachmentUploadURL(_ context.Context, id string) (*models.Presigned, error) {
	f.record("upload-url")
	f.lastID = id
	return f.presigned, f.err
}

func (f *fakeAPI) AttachmentDownloadURL(_ context.Context, id string) (*models.Presigned, error) {
	f.record("download-url")
	f.lastID = id
	return f.presigned, f.err
}

func newTestApp(api client.Client, reader *bufio.Reader) *App {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return &App{config: cfg, api: api, logger: logging.Discard(), reader: reader}
}

// captureOutput swaps printlnFn and returns the collected lines.
func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		s := strings.TrimSuffix(fmt.Sprintln(a...), "\n")
		lines = append(lines, s)
		return len(s), nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

// stubInputs replaces the prompt helpers with scripted answers.
func stubInputs(t *testing.T, answers []string, password []byte) {
	t.Helper()
	origST, origML, origGP := getSimpleText, getMultiline, getPassword
	next := func() string {
		if len(answers) == 0 {
			return ""
		}
		s := answers[0]
		answers = answers[1:]
		return s
	}
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return next(), nil }
	getMultiline = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return next(), nil }
	getPassword = func(_ io.Writer) ([]byte, error) { return password, nil }
	t.Cleanup(func() {
		getSimpleText, getMultiline, getPassword = origST, origML, origGP
	})
}
