// Package services contains the application services of the Vimesta CLI.
// This file keeps the persisted session: the bearer token and the user
// profile stored in the local metadata table.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/vimesta/internal/common"
	"github.com/dmitrijs2005/vimesta/internal/dbx"
	"github.com/golang-jwt/jwt/v5"
)

type SessionStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

func (s *SessionStore) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// Save persists token and user in one transaction.
func (s *SessionStore) Save(ctx context.Context, sess *models.Session) error {
	if sess == nil || sess.Token == "" {
		return common.ErrInvalidToken
	}

	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, common.TokenStorageKey, []byte(sess.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, common.UserStorageKey, user)
	})
}

// Load returns the persisted session. A missing key or an expired token
// yields common.ErrNotAuthenticated; an expired session is also removed.
func (s *SessionStore) Load(ctx context.Context) (*models.Session, error) {
	repo := s.repo(s.db)

	token, err := repo.Get(ctx, common.TokenStorageKey)
	if err != nil {
		return nil, err
	}
	rawUser, err := repo.Get(ctx, common.UserStorageKey)
	if err != nil {
		return nil, err
	}
	if len(token) == 0 || len(rawUser) == 0 {
		return nil, common.ErrNotAuthenticated
	}

	if err := CheckTokenExpiry(string(token), s.now()); err != nil {
		if clearErr := s.Clear(ctx); clearErr != nil {
			return nil, clearErr
		}
		return nil, fmt.Errorf("%w: %w", common.ErrNotAuthenticated, err)
	}

	var user models.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		return nil, fmt.Errorf("%w: stored user: %v", common.ErrNotAuthenticated, err)
	}

	return &models.Session{Token: string(token), User: &user}, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return s.repo(s.db).Delete(ctx, common.TokenStorageKey, common.UserStorageKey)
}

// CheckTokenExpiry looks at the exp claim of a JWT without verifying its
// signature; the backend stays the authority on validity. Tokens that are
// not JWTs, or carry no exp, are accepted as is.
func CheckTokenExpiry(token string, now time.Time) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return common.ErrInvalidToken
	}
	if exp != nil && !now.Before(exp.Time) {
		return common.ErrTokenExpired
	}
	return nil
}

// IsNotAuthenticated reports whether err means there is no usable session.
func IsNotAuthenticated(err error) bool {
	return errors.Is(err, common.ErrNotAuthenticated)
}
