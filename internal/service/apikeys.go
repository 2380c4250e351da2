package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mateconpizza/sbm/internal/auth"
	"github.com/mateconpizza/sbm/pkg/db"
)

// NewAPIKey is a freshly created key. Key holds the raw value, which is
// never stored and can only be shown once.
type NewAPIKey struct {
	*db.APIKey

	Key string `json:"key"`
}

// APIKeys manages the API keys of a user.
type APIKeys struct {
	*Options
	db *db.SQLite
}

// NewAPIKeys returns the API key service backed by r.
func NewAPIKeys(r *db.SQLite, opts ...OptFn) *APIKeys {
	return &APIKeys{Options: newOptions(opts), db: r}
}

// Create generates and stores a new key for the user.
func (s *APIKeys) Create(ctx context.Context, userID int64, name string) (*NewAPIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: api key name is empty", ErrInvalidInput)
	}

	raw, err := auth.GenerateKey()
	if err != nil {
		return nil, err
	}

	k := &db.APIKey{
		UserID:  userID,
		Name:    name,
		Hash:    auth.HashKey(raw),
		Preview: auth.Preview(raw),
		Active:  true,
	}

	if _, err := s.db.InsertAPIKey(ctx, k); err != nil {
		return nil, err
	}

	slog.Info("api key created", "user_id", userID, "name", name)

	return &NewAPIKey{APIKey: k, Key: raw}, nil
}

// List returns the user's keys.
func (s *APIKeys) List(ctx context.Context, userID int64) ([]*db.APIKey, error) {
	return s.db.APIKeys(ctx, userID)
}

// Delete removes the user's key with the given ID.
func (s *APIKeys) Delete(ctx context.Context, userID, id int64) error {
	ok, err := s.db.DeleteAPIKey(ctx, userID, id)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: id %d", db.ErrAPIKeyNotFound, id)
	}

	return nil
}

// Authenticate returns the owner of an active raw key and records its use.
func (s *APIKeys) Authenticate(ctx context.Context, raw string) (*db.User, error) {
	if raw == "" {
		return nil, ErrAPIKeyRequired
	}

	k, err := s.db.APIKeyByHash(ctx, auth.HashKey(raw))
	if err != nil {
		if errors.Is(err, db.ErrAPIKeyNotFound) {
			return nil, ErrAPIKeyInvalid
		}

		return nil, err
	}

	if err := s.db.TouchAPIKey(ctx, k.ID, s.now()); err != nil {
		slog.Warn("api key: updating last use", "id", k.ID, "error", err)
	}

	u, err := s.db.UserByID(ctx, k.UserID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, ErrAPIKeyInvalid
		}

		return nil, err
	}

	return u, nil
}
