// Package users stores account records.
package users

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Repository defines persistence for users. Lookups return
// common.ErrorNotFound when nothing matches; Create returns
// common.ErrorAlreadyExists on a duplicate username or email.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
