// Package refreshtokens stores refresh credential records. Records are keyed
// by the SHA-256 digest of the secret; the plaintext is never stored.
//
// Revocation and expiry are evaluated at read time: a record that is revoked
// or past its expiry is simply not returned by FindActive. Nothing is mutated
// on read.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Repository is the credential store contract. Implementations must make
// every method atomic with respect to concurrent callers.
type Repository interface {
	// Create persists a new record and returns it with ID and CreatedAt set.
	Create(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) (*models.RefreshToken, error)

	// Find returns the record for tokenHash regardless of status, or
	// common.ErrorNotFound.
	Find(ctx context.Context, tokenHash string) (*models.RefreshToken, error)

	// FindActive returns the record only when it is unrevoked and
	// now < ExpiresAt; otherwise common.ErrorNotFound.
	FindActive(ctx context.Context, tokenHash string, now time.Time) (*models.RefreshToken, error)

	// Revoke marks the record revoked at now. Revoking an already revoked or
	// unknown record is a no-op.
	Revoke(ctx context.Context, id string, now time.Time) error

	// RevokeAllForUser revokes every unrevoked record of userID and returns
	// how many were revoked.
	RevokeAllForUser(ctx context.Context, userID string, now time.Time) (int64, error)

	// SweepExpired deletes records with ExpiresAt <= cutoff and returns how
	// many were deleted.
	SweepExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
