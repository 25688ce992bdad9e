package repomanager

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/todos"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/users"
)

// MemoryRepositoryManager serves process-local repositories. Outside WithTx
// the db handle passed to the factories is ignored and each repository call
// is atomic on its own. Inside WithTx, records created through the tx handle
// are removed again when fn fails.
type MemoryRepositoryManager struct {
	users         *users.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
	todos         *todos.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		refreshTokens: refreshtokens.NewMemoryRepository(),
		todos:         todos.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	if tx, ok := db.(*memoryTx); ok {
		return &txUsers{MemoryRepository: m.users, tx: tx}
	}
	return m.users
}

func (m *MemoryRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	if tx, ok := db.(*memoryTx); ok {
		return &txRefreshTokens{MemoryRepository: m.refreshTokens, tx: tx}
	}
	return m.refreshTokens
}

func (m *MemoryRepositoryManager) Todos(db dbx.DBTX) todos.Repository {
	if tx, ok := db.(*memoryTx); ok {
		return &txTodos{MemoryRepository: m.todos, tx: tx}
	}
	return m.todos
}

// WithTx runs fn with a handle that journals creations. On error or panic
// the journal is replayed in reverse; panics are rethrown afterwards.
// Updates and deletes made inside fn are not undone.
func (m *MemoryRepositoryManager) WithTx(ctx context.Context, _ *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	tx := &memoryTx{}
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
		if err != nil {
			tx.rollback()
		}
	}()
	return fn(ctx, tx)
}

// MemoryUsers exposes the concrete users store, e.g. to change a status.
func (m *MemoryRepositoryManager) MemoryUsers() *users.MemoryRepository { return m.users }

// memoryTx satisfies dbx.DBTX only so it can travel through the factory
// methods. Its SQL methods are never called by the memory repositories.
type memoryTx struct {
	dbx.DBTX
	undo []func()
}

func (tx *memoryTx) onRollback(f func()) { tx.undo = append(tx.undo, f) }

func (tx *memoryTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

type txUsers struct {
	*users.MemoryRepository
	tx *memoryTx
}

func (r *txUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	u, err := r.MemoryRepository.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	id := u.ID
	r.tx.onRollback(func() { r.MemoryRepository.Delete(id) })
	return u, nil
}

type txRefreshTokens struct {
	*refreshtokens.MemoryRepository
	tx *memoryTx
}

func (r *txRefreshTokens) Create(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) (*models.RefreshToken, error) {
	rt, err := r.MemoryRepository.Create(ctx, userID, tokenHash, expiresAt)
	if err != nil {
		return nil, err
	}
	id := rt.ID
	r.tx.onRollback(func() { r.MemoryRepository.Delete(id) })
	return rt, nil
}

type txTodos struct {
	*todos.MemoryRepository
	tx *memoryTx
}

func (r *txTodos) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	t, err := r.MemoryRepository.Create(ctx, todo)
	if err != nil {
		return nil, err
	}
	id := t.ID
	r.tx.onRollback(func() { _ = r.MemoryRepository.Delete(context.Background(), id) })
	return t, nil
}
