package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/client/models"
)

var errEmptyID = errors.New("todo id is required")

// idArg takes the todo id from the first argument or asks for it.
func (a *App) idArg(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	id, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errEmptyID
	}
	return id, nil
}

func parsePriority(s string) (*string, error) {
	if s == "" {
		return nil, nil
	}
	p := strings.ToUpper(s)
	switch p {
	case "LOW", "MEDIUM", "HIGH":
		return &p, nil
	}
	return nil, fmt.Errorf("priority must be LOW, MEDIUM or HIGH, got %q", s)
}

// parseDue accepts a calendar date or an RFC 3339 timestamp.
func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("due date must be YYYY-MM-DD or RFC 3339, got %q", s)
	}
	return &t, nil
}

func parseListArgs(args []string) (models.ListOptions, error) {
	var opts models.ListOptions

	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&opts.Page, "page", 0, "page number")
	fs.IntVar(&opts.PageSize, "size", 0, "page size")
	fs.StringVar(&opts.Priority, "priority", "", "LOW, MEDIUM or HIGH")
	fs.StringVar(&opts.Search, "search", "", "text in title or description")
	done := fs.Bool("done", false, "only completed")
	pending := fs.Bool("pending", false, "only pending")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if *done && *pending {
		return opts, errors.New("-done and -pending are mutually exclusive")
	}
	if *done || *pending {
		opts.Completed = done
	}
	if opts.Priority != "" {
		p, err := parsePriority(opts.Priority)
		if err != nil {
			return opts, err
		}
		opts.Priority = *p
	}
	return opts, nil
}

func formatTodo(t models.Todo) string {
	check := " "
	if t.Completed {
		check = "x"
	}
	s := fmt.Sprintf("[%s] %s  %s", check, t.ID, t.Title)
	if t.Priority != nil {
		s += " (" + *t.Priority + ")"
	}
	if t.DueDate != nil {
		s += " due " + t.DueDate.Local().Format(time.DateOnly)
	}
	if t.HasAttachment {
		s += " +attachment"
	}
	return s
}

func (a *App) List(ctx context.Context, args []string) error {
	opts, err := parseListArgs(args)
	if err != nil {
		return err
	}

	page, err := a.api.ListTodos(ctx, opts)
	if err != nil {
		return err
	}

	if len(page.Items) == 0 {
		printlnFn("No todos.")
	}
	for _, t := range page.Items {
		printlnFn(formatTodo(t))
	}
	printlnFn(fmt.Sprintf("page %d of %d, %d total", page.Page, page.TotalPages, page.Total))
	return nil
}

func (a *App) Add(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return err
	}
	description, err := getMultiline(a.reader, "Enter description (optional)", os.Stdout)
	if err != nil {
		return err
	}
	rawPriority, err := getSimpleText(a.reader, "Enter priority LOW/MEDIUM/HIGH (optional)", os.Stdout)
	if err != nil {
		return err
	}
	priority, err := parsePriority(rawPriority)
	if err != nil {
		return err
	}
	rawDue, err := getSimpleText(a.reader, "Enter due date YYYY-MM-DD (optional)", os.Stdout)
	if err != nil {
		return err
	}
	due, err := parseDue(rawDue)
	if err != nil {
		return err
	}

	in := models.TodoInput{Title: title, Priority: priority, DueDate: due}
	if description != "" {
		in.Description = &description
	}

	t, err := a.api.CreateTodo(ctx, in)
	if err != nil {
		return err
	}
	printlnFn("Created", t.ID)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter todo id to show")
	if err != nil {
		return err
	}

	t, err := a.api.GetTodo(ctx, id)
	if err != nil {
		return err
	}

	printlnFn(formatTodo(*t))
	if t.Description != nil {
		printlnFn(*t.Description)
	}
	printlnFn("Created:", t.CreatedAt.Local().Format(time.DateTime))
	printlnFn("Updated:", t.UpdatedAt.Local().Format(time.DateTime))
	return nil
}

// Edit asks for each field; an empty answer keeps the current value.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter todo id to edit")
	if err != nil {
		return err
	}

	var patch models.TodoPatch
	changed := false

	title, err := getSimpleText(a.reader, "New title (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if title != "" {
		patch.Title = &title
		changed = true
	}

	description, err := getMultiline(a.reader, "New description (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if description != "" {
		patch.Description = &description
		changed = true
	}

	rawPriority, err := getSimpleText(a.reader, "New priority (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if patch.Priority, err = parsePriority(rawPriority); err != nil {
		return err
	}
	changed = changed || patch.Priority != nil

	rawDue, err := getSimpleText(a.reader, "New due date (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if patch.DueDate, err = parseDue(rawDue); err != nil {
		return err
	}
	changed = changed || patch.DueDate != nil

	if !changed {
		printlnFn("Nothing to update.")
		return nil
	}

	t, err := a.api.UpdateTodo(ctx, id, patch)
	if err != nil {
		return err
	}
	printlnFn(formatTodo(*t))
	return nil
}

// Done toggles completion.
func (a *App) Done(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter todo id to toggle")
	if err != nil {
		return err
	}

	t, err := a.api.CompleteTodo(ctx, id)
	if err != nil {
		return err
	}
	printlnFn(formatTodo(*t))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter todo id to delete")
	if err != nil {
		return err
	}

	if err := a.api.DeleteTodo(ctx, id); err != nil {
		return err
	}
	printlnFn("Deleted", id)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	s, err := a.api.TodoStats(ctx)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("total %d, completed %d, pending %d", s.Total, s.Completed, s.Pending))
	for _, p := range []string{"HIGH", "MEDIUM", "LOW"} {
		printlnFn(fmt.Sprintf("  %-6s %d", p, s.ByPriority[p]))
	}
	return nil
}
