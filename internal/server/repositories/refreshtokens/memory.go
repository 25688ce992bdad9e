package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps records in process memory. Stored records are
// replaced, never edited in place, and callers always receive copies.
type MemoryRepository struct {
	mu     sync.RWMutex
	byHash map[string]*models.RefreshToken
	byID   map[string]*models.RefreshToken
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byHash: make(map[string]*models.RefreshToken),
		byID:   make(map[string]*models.RefreshToken),
		now:    time.Now,
	}
}

func clone(rt *models.RefreshToken) *models.RefreshToken {
	c := *rt
	if rt.RevokedAt != nil {
		t := *rt.RevokedAt
		c.RevokedAt = &t
	}
	return &c
}

func (r *MemoryRepository) Create(_ context.Context, userID string, tokenHash string, expiresAt time.Time) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byHash[tokenHash]; ok {
		return nil, common.ErrorAlreadyExists
	}
	rt := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: tokenHash,
		CreatedAt: r.now(),
		ExpiresAt: expiresAt,
	}
	r.byHash[tokenHash] = rt
	r.byID[rt.ID] = rt
	return clone(rt), nil
}

func (r *MemoryRepository) Find(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.byHash[tokenHash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(rt), nil
}

func (r *MemoryRepository) FindActive(_ context.Context, tokenHash string, now time.Time) (*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.byHash[tokenHash]
	if !ok || !rt.IsActive(now) {
		return nil, common.ErrorNotFound
	}
	return clone(rt), nil
}

// Delete removes a record. Used to roll back an in-memory transaction.
func (r *MemoryRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rt, ok := r.byID[id]; ok {
		delete(r.byHash, rt.TokenHash)
		delete(r.byID, id)
	}
}

// revokeLocked swaps in a revoked copy. Caller holds r.mu.
func (r *MemoryRepository) revokeLocked(rt *models.RefreshToken, now time.Time) {
	revoked := clone(rt)
	t := now
	revoked.RevokedAt = &t
	r.byHash[rt.TokenHash] = revoked
	r.byID[rt.ID] = revoked
}

func (r *MemoryRepository) Revoke(_ context.Context, id string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.byID[id]
	if !ok || rt.IsRevoked() {
		return nil
	}
	r.revokeLocked(rt, now)
	return nil
}

func (r *MemoryRepository) RevokeAllForUser(_ context.Context, userID string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, rt := range r.byID {
		if rt.UserID == userID && !rt.IsRevoked() {
			r.revokeLocked(rt, now)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) SweepExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, rt := range r.byID {
		if !rt.ExpiresAt.After(cutoff) {
			delete(r.byID, id)
			delete(r.byHash, rt.TokenHash)
			n++
		}
	}
	return n, nil
}
