// Package todos stores todo items.
package todos

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Repository defines persistence for todos. Ownership checks are the
// service's job; the repository only addresses rows by id.
type Repository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	GetByID(ctx context.Context, id string) (*models.Todo, error)
	// List returns one page matching filter, newest first, plus the total
	// number of matches.
	List(ctx context.Context, filter models.TodoFilter) ([]*models.Todo, int64, error)
	Update(ctx context.Context, id string, upd models.TodoUpdate) (*models.Todo, error)
	ToggleCompleted(ctx context.Context, id string) (*models.Todo, error)
	SetAttachment(ctx context.Context, id string, key string) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, userID string) (*models.TodoStats, error)
}
