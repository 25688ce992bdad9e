// Package services contains server-side business logic. This file implements
// UserService, which owns the session lifecycle: registration, login,
// renewal of access credentials and revocation of refresh credentials.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/cryptox"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
)

// Session is what login and registration hand to the transport layer.
type Session struct {
	User             *models.User
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AccessGrant is the result of a renewal: a fresh access credential only.
type AccessGrant struct {
	AccessToken string
	ExpiresAt   time.Time
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer, logger logging.Logger) *UserService {
	return &UserService{db: db, repomanager: m, issuer: issuer, logger: logger}
}

// dummyHash is compared against when the user does not exist so that a
// failed login costs the same whether or not the username is known.
var dummyHash, _ = cryptox.HashPassword([]byte("todokeeper-dummy-password"))

// Register creates an active user and opens a session for it.
func (s *UserService) Register(ctx context.Context, username, email string, password []byte) (*Session, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var session *Session
	err = s.repomanager.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			UserName:     username,
			Email:        email,
			PasswordHash: hash,
			Status:       models.UserStatusActive,
		})
		if err != nil {
			return err
		}
		session, err = s.openSession(ctx, tx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", session.User.ID)
	return session, nil
}

// Login checks the password and opens a new session. Unknown users and
// wrong passwords both yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, username string, password []byte) (*Session, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.CheckPassword(dummyHash, password)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !cryptox.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}
	if !user.IsActive() {
		return nil, common.ErrorInactiveUser
	}

	session, err := s.openSession(ctx, s.db, user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return session, nil
}

func (s *UserService) openSession(ctx context.Context, db dbx.DBTX, user *models.User) (*Session, error) {
	refresh, record, err := s.issuer.IssueRefreshToken(ctx, s.repomanager.RefreshTokens(db), user.ID)
	if err != nil {
		return nil, err
	}
	access, accessExp, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &Session{
		User:             user,
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: record.ExpiresAt,
	}, nil
}

// Refresh trades a valid refresh credential for a new access credential.
// The refresh credential is left as is; it stays valid until it expires or
// is revoked.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*AccessGrant, error) {
	record, err := s.issuer.VerifyRefreshToken(ctx, s.repomanager.RefreshTokens(s.db), refreshToken)
	if err != nil {
		if common.IsRefreshFailure(err) {
			s.logger.Info(ctx, "refresh rejected", "reason", err.Error())
		}
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !user.IsActive() {
		return nil, common.ErrorInactiveUser
	}

	access, exp, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	s.logger.Debug(ctx, "access token renewed", "user_id", user.ID)
	return &AccessGrant{AccessToken: access, ExpiresAt: exp}, nil
}

// Logout revokes the refresh credential presented with the request if it
// belongs to userID. Unknown, foreign or already revoked credentials are
// ignored so logout always succeeds.
func (s *UserService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	repo := s.repomanager.RefreshTokens(s.db)

	record, err := repo.Find(ctx, cryptox.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("logout: %w", err)
	}
	if record.UserID != userID {
		s.logger.Warn(ctx, "logout with foreign refresh token", "user_id", userID)
		return nil
	}
	if err := repo.Revoke(ctx, record.ID, s.issuer.Now()); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info(ctx, "refresh token revoked", "user_id", userID)
	return nil
}

// LogoutAll revokes every refresh credential of userID.
func (s *UserService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.db).RevokeAllForUser(ctx, userID, s.issuer.Now())
	if err != nil {
		return 0, fmt.Errorf("logout all: %w", err)
	}
	s.logger.Info(ctx, "all refresh tokens revoked", "user_id", userID, "count", n)
	return n, nil
}

// Authenticate verifies an access credential and loads its user.
// Missing, expired and invalid credentials are reported with the matching
// common error; a deleted user counts as an invalid credential.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.issuer.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	user, err := s.Me(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, common.ErrorInactiveUser
	}
	return user, nil
}

// Me returns the user record for userID.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
