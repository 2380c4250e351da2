package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mateconpizza/sbm/internal/auth"
	"github.com/mateconpizza/sbm/pkg/db"
)

// DefaultUsername is the name of the account created on first start.
const DefaultUsername = "admin"

// Auth logs the user in and out and manages their password.
type Auth struct {
	*Options
	db       *db.SQLite
	sessions *auth.Sessions
}

// NewAuth returns the auth service backed by r, keeping sessions in s.
func NewAuth(r *db.SQLite, s *auth.Sessions, opts ...OptFn) *Auth {
	return &Auth{Options: newOptions(opts), db: r, sessions: s}
}

// EnsureDefaultUser creates the admin account with password when no user
// exists yet.
func (a *Auth) EnsureDefaultUser(ctx context.Context, password string) (*db.User, error) {
	u, err := a.db.UserFirst(ctx)
	if err == nil {
		return u, nil
	}

	if !errors.Is(err, db.ErrUserNotFound) {
		return nil, err
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u = &db.User{Username: DefaultUsername, PasswordHash: hash}
	if _, err := a.db.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	slog.Info("default user created", "username", u.Username)

	return u, nil
}

// Authenticate checks password against the account. The application has a
// single user, so only the password is asked for.
func (a *Auth) Authenticate(ctx context.Context, password string) (*db.User, error) {
	u, err := a.db.UserFirst(ctx)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if err := a.hasher.Verify(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	return u, nil
}

// ChangePassword replaces the user's password after checking the current
// one.
func (a *Auth) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	u, err := a.db.UserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := a.hasher.Verify(u.PasswordHash, current); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}

		return err
	}

	hash, err := a.hasher.Hash(next)
	if err != nil {
		return err
	}

	if err := a.db.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	slog.Info("password changed", "user_id", userID)

	return nil
}

// SetPassword replaces the user's password without checking the current
// one. Used from the command line.
func (a *Auth) SetPassword(ctx context.Context, userID int64, password string) error {
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return err
	}

	return a.db.UpdatePassword(ctx, userID, hash)
}

// Login authenticates password and starts a session, returning its cookie
// value.
func (a *Auth) Login(ctx context.Context, password string) (string, *db.User, error) {
	u, err := a.Authenticate(ctx, password)
	if err != nil {
		return "", nil, err
	}

	v, err := a.sessions.Create(u.ID)
	if err != nil {
		return "", nil, err
	}

	slog.Info("user logged in", "user_id", u.ID)

	return v, u, nil
}

// Logout ends the session of a cookie value.
func (a *Auth) Logout(value string) {
	a.sessions.Delete(value)
}

// CurrentUser returns the user of a session cookie value.
func (a *Auth) CurrentUser(ctx context.Context, value string) (*db.User, error) {
	if value == "" {
		return nil, ErrNotAuthenticated
	}

	id, err := a.sessions.Lookup(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}

	u, err := a.db.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			a.sessions.Delete(value)
			return nil, ErrNotAuthenticated
		}

		return nil, err
	}

	return u, nil
}

// Sessions returns the session store.
func (a *Auth) Sessions() *auth.Sessions {
	return a.sessions
}
