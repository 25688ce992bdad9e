package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	report(err error)

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context) error
	Me(ctx context.Context) error

	List(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Done(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Attach(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
//	Not logged in:
//	  - help           show available commands
//	  - register       create an account (starts a session)
//	  - login          authenticate
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - (l)ist [-page N] [-size N] [-priority P] [-search S] [-done|-pending]
//	  - add            create a todo
//	  - show <id>      show one todo
//	  - edit <id>      change title, description, priority or due date
//	  - done <id>      toggle completion
//	  - delete <id>    delete a todo
//	  - stats          per-user counters
//	  - attach <id> <path>   upload a file to a todo
//	  - download <id>        save a todo's attachment
//	  - me             show the current user
//	  - logout         end this session
//	  - logout-all     end every session of this user
//
// Errors returned by commands are passed to a.report.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("todo%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if cmdErr := dispatch(ctx, a, cmd, args); cmdErr != nil {
			a.report(cmdErr)
		}
		if err != nil {
			return
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn("Available commands: (l)ist, add, show, edit, done, delete, stats, attach, download, me, logout, logout-all, exit")
		} else {
			printlnFn("Available commands: register, login, exit")
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	}

	if !a.isLoggedIn() {
		if isKnownCommand(cmd) {
			printlnFn("Please log in first.")
		} else {
			printlnFn("Unknown command:", cmd)
		}
		return nil
	}

	switch cmd {
	case "l", "list":
		return a.List(ctx, args)
	case "add":
		return a.Add(ctx)
	case "show":
		return a.Show(ctx, args)
	case "edit":
		return a.Edit(ctx, args)
	case "done":
		return a.Done(ctx, args)
	case "delete":
		return a.Delete(ctx, args)
	case "stats":
		return a.Stats(ctx)
	case "attach":
		return a.Attach(ctx, args)
	case "download":
		return a.Download(ctx, args)
	case "me":
		return a.Me(ctx)
	case "logout":
		return a.Logout(ctx)
	case "logout-all":
		return a.LogoutAll(ctx)
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}

func isKnownCommand(cmd string) bool {
	switch cmd {
	case "l", "list", "add", "show", "edit", "done", "delete", "stats", "attach", "download", "me", "logout", "logout-all":
		return true
	}
	return false
}
