package cli

import (
	"bufio"
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/client/client"
	"github.com/dmitrijs2005/todokeeper/internal/client/config"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	api    client.Client
	logger logging.Logger
	reader *bufio.Reader

	mu       sync.Mutex
	userName string
	mode     Mode
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	api, err := client.New(client.Options{
		BaseURL: c.ServerURL,
		Timeout: c.RequestTimeout,
		Retry: client.RetryPolicy{
			BaseDelay:     c.RetryBaseDelay,
			Multiplier:    c.RetryMultiplier,
			MaxDelay:      c.RetryMaxDelay,
			MaxAttempts:   c.RetryMaxAttempts,
			JitterPercent: client.DefaultRetryPolicy().JitterPercent,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{config: c, api: api, logger: logger, reader: bufio.NewReader(os.Stdin)}, nil
}

// Run blocks in the REPL until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to todokeeper CLI (type 'help' for commands)")

	a.checkOnline(ctx)
	if a.config.OnlineCheckInterval > 0 {
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userName = name
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName != ""
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.userName
	if a.mode != "" {
		if s != "" {
			s += " "
		}
		s += string(a.mode)
	}
	if s != "" {
		s = "(" + s + ")"
	}
	return s
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Health(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the server every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// report prints a command failure. An authentication failure or a
// rejected access credential ends the local session so the prompt asks
// for a login again.
func (a *App) report(err error) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrAuthenticationRequired):
		a.setUser("")
		printlnFn("Session expired, please log in again.")
	case errors.As(err, &apiErr) && apiErr.Kind == client.KindInvalidCredential:
		a.setUser("")
		printlnFn("Session is no longer valid, please log in again.")
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		printlnFn("Server unavailable:", err.Error())
	case errors.As(err, &apiErr):
		printlnFn("Error:", apiErr.Message)
		names := make([]string, 0, len(apiErr.Fields))
		for name := range apiErr.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			printlnFn("  "+name+":", apiErr.Fields[name])
		}
	default:
		printlnFn("Error:", err.Error())
	}
}
