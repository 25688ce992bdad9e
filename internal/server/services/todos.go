package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/todos"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListParams selects one page of todos.
type ListParams struct {
	Page      int
	PageSize  int
	Priority  *models.Priority
	Completed *bool
	Search    string
}

type TodoPage struct {
	Items      []*models.Todo
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

type TodoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewTodoService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *TodoService {
	return &TodoService{db: db, repomanager: m, logger: logger}
}

func (s *TodoService) Create(ctx context.Context, userID string, todo *models.Todo) (*models.Todo, error) {
	todo.UserID = userID
	todo.Completed = false
	todo.AttachmentKey = ""

	created, err := s.repomanager.Todos(s.db).Create(ctx, todo)
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	s.logger.Debug(ctx, "todo created", "user_id", userID, "todo_id", created.ID)
	return created, nil
}

// List returns todos of all users. Descriptions of todos not owned by
// viewerID are blanked.
func (s *TodoService) List(ctx context.Context, viewerID string, p ListParams) (*TodoPage, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	if p.Page < 1 || p.PageSize < 1 || p.PageSize > MaxPageSize {
		return nil, fmt.Errorf("%w: page must be >= 1 and page_size within 1..%d", common.ErrorValidation, MaxPageSize)
	}

	items, total, err := s.repomanager.Todos(s.db).List(ctx, models.TodoFilter{
		Priority:  p.Priority,
		Completed: p.Completed,
		Search:    p.Search,
		Offset:    (p.Page - 1) * p.PageSize,
		Limit:     p.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	for _, t := range items {
		if t.UserID != viewerID {
			t.Description = ""
		}
	}

	return &TodoPage{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: int((total + int64(p.PageSize) - 1) / int64(p.PageSize)),
	}, nil
}

// ownedTodo loads id and checks that userID owns it.
func ownedTodo(ctx context.Context, repo todos.Repository, userID, id string) (*models.Todo, error) {
	todo, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load todo: %w", err)
	}
	if todo.UserID != userID {
		return nil, common.ErrorForbidden
	}
	return todo, nil
}

func (s *TodoService) Get(ctx context.Context, userID, id string) (*models.Todo, error) {
	return ownedTodo(ctx, s.repomanager.Todos(s.db), userID, id)
}

func (s *TodoService) Update(ctx context.Context, userID, id string, upd models.TodoUpdate) (*models.Todo, error) {
	repo := s.repomanager.Todos(s.db)
	if _, err := ownedTodo(ctx, repo, userID, id); err != nil {
		return nil, err
	}
	todo, err := repo.Update(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return todo, nil
}

// Complete flips the completed flag.
func (s *TodoService) Complete(ctx context.Context, userID, id string) (*models.Todo, error) {
	repo := s.repomanager.Todos(s.db)
	if _, err := ownedTodo(ctx, repo, userID, id); err != nil {
		return nil, err
	}
	todo, err := repo.ToggleCompleted(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("toggle todo: %w", err)
	}
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	repo := s.repomanager.Todos(s.db)
	if _, err := ownedTodo(ctx, repo, userID, id); err != nil {
		return err
	}
	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	s.logger.Debug(ctx, "todo deleted", "user_id", userID, "todo_id", id)
	return nil
}

func (s *TodoService) Stats(ctx context.Context, userID string) (*models.TodoStats, error) {
	stats, err := s.repomanager.Todos(s.db).Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("todo stats: %w", err)
	}
	return stats, nil
}
