package todos

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Todo
	seq   map[string]int64
	next  int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]models.Todo),
		seq:   make(map[string]int64),
	}
}

func copyTodo(t models.Todo) *models.Todo {
	if t.Priority != nil {
		p := *t.Priority
		t.Priority = &p
	}
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return &t
}

func (r *MemoryRepository) Create(_ context.Context, todo *models.Todo) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	t := *copyTodo(*todo)
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	r.items[t.ID] = t
	r.next++
	r.seq[t.ID] = r.next
	return copyTodo(t), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyTodo(t), nil
}

func matches(t models.Todo, f models.TodoFilter) bool {
	if f.Priority != nil && (t.Priority == nil || *t.Priority != *f.Priority) {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		if !strings.Contains(strings.ToLower(t.Title), s) && !strings.Contains(strings.ToLower(t.Description), s) {
			return false
		}
	}
	return true
}

func (r *MemoryRepository) List(_ context.Context, filter models.TodoFilter) ([]*models.Todo, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Todo
	for _, t := range r.items {
		if matches(t, filter) {
			matched = append(matched, t)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return r.seq[matched[i].ID] > r.seq[matched[j].ID]
	})

	total := int64(len(matched))
	items := make([]*models.Todo, 0)
	for i := filter.Offset; i < len(matched) && (filter.Limit <= 0 || len(items) < filter.Limit); i++ {
		items = append(items, copyTodo(matched[i]))
	}
	return items, total, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, upd models.TodoUpdate) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Priority != nil {
		p := *upd.Priority
		t.Priority = &p
	}
	if upd.DueDate != nil {
		d := *upd.DueDate
		t.DueDate = &d
	}
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}
	t.UpdatedAt = time.Now()
	r.items[id] = t
	return copyTodo(t), nil
}

func (r *MemoryRepository) ToggleCompleted(_ context.Context, id string) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	t.Completed = !t.Completed
	t.UpdatedAt = time.Now()
	r.items[id] = t
	return copyTodo(t), nil
}

func (r *MemoryRepository) SetAttachment(_ context.Context, id string, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	t.AttachmentKey = key
	t.UpdatedAt = time.Now()
	r.items[id] = t
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.items, id)
	delete(r.seq, id)
	return nil
}

func (r *MemoryRepository) Stats(_ context.Context, userID string) (*models.TodoStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.TodoStats{ByPriority: make(map[models.Priority]int64)}
	for _, t := range r.items {
		if t.UserID != userID {
			continue
		}
		stats.Total++
		if t.Completed {
			stats.Completed++
		}
		if t.Priority != nil {
			stats.ByPriority[*t.Priority]++
		}
	}
	stats.Pending = stats.Total - stats.Completed
	return stats, nil
}
