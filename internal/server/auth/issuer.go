package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/cryptox"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/refreshtokens"
)

// Issuer mints and checks both credential kinds. Refresh operations take
// the repository explicitly so callers can run them inside a transaction.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// SetClock replaces the time source.
func (i *Issuer) SetClock(now func() time.Time) {
	i.now = now
}

func (i *Issuer) Now() time.Time { return i.now() }

func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *Issuer) IssueAccessToken(user *models.User) (string, time.Time, error) {
	return GenerateToken(user.ID, user.UserName, i.secret, i.now(), i.accessTTL)
}

// VerifyAccessToken is a pure check; it never touches the store.
func (i *Issuer) VerifyAccessToken(token string) (*Claims, error) {
	if token == "" {
		return nil, common.ErrMissingToken
	}
	return ParseToken(token, i.secret, i.now())
}

// IssueRefreshToken creates a 256-bit secret, stores its digest and returns
// the plaintext together with the stored record.
func (i *Issuer) IssueRefreshToken(ctx context.Context, repo refreshtokens.Repository, userID string) (string, *models.RefreshToken, error) {
	plaintext, err := cryptox.NewOpaqueToken()
	if err != nil {
		return "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	rt, err := repo.Create(ctx, userID, cryptox.HashToken(plaintext), i.now().Add(i.refreshTTL))
	if err != nil {
		return "", nil, fmt.Errorf("store refresh token: %w", err)
	}
	return plaintext, rt, nil
}

// VerifyRefreshToken returns the active record for plaintext. The record's
// status is checked again against the issuer clock, independently of the
// store filter. Rejections are classified as
// common.ErrRefreshTokenNotFound, ErrRefreshTokenRevoked or ErrRefreshTokenExpired.
func (i *Issuer) VerifyRefreshToken(ctx context.Context, repo refreshtokens.Repository, plaintext string) (*models.RefreshToken, error) {
	if plaintext == "" {
		return nil, common.ErrRefreshTokenNotFound
	}
	hash := cryptox.HashToken(plaintext)
	now := i.now()

	rt, err := repo.FindActive(ctx, hash, now)
	if err == nil && rt.IsActive(now) {
		return rt, nil
	}
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}

	return nil, i.classify(ctx, repo, hash, now)
}

func (i *Issuer) classify(ctx context.Context, repo refreshtokens.Repository, hash string, now time.Time) error {
	rt, err := repo.Find(ctx, hash)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrRefreshTokenNotFound
	case err != nil:
		return fmt.Errorf("lookup refresh token: %w", err)
	case rt.IsRevoked():
		return common.ErrRefreshTokenRevoked
	case rt.IsExpired(now):
		return common.ErrRefreshTokenExpired
	default:
		return common.ErrRefreshTokenNotFound
	}
}
