package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// User is an account able to log in.
type User struct {
	ID           int64  `db:"id"            json:"id"`
	Username     string `db:"username"      json:"username"`
	PasswordHash string `db:"password_hash" json:"-"`
	CreatedAt    string `db:"created_at"    json:"created_at"`
	UpdatedAt    string `db:"updated_at"    json:"updated_at"`
}

// CreateUser inserts u and sets its ID.
func (r *SQLite) CreateUser(ctx context.Context, u *User) (int64, error) {
	if u.CreatedAt == "" {
		u.CreatedAt = now()
	}
	u.UpdatedAt = u.CreatedAt

	res, err := r.DB.NamedExecContext(ctx, `
    INSERT INTO users (username, password_hash, created_at, updated_at)
    VALUES (:username, :password_hash, :created_at, :updated_at)`, u)
	if err != nil {
		return 0, fmt.Errorf("creating user %q: %w", u.Username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w", err)
	}

	u.ID = id

	return id, nil
}

// UserFirst returns the oldest user.
func (r *SQLite) UserFirst(ctx context.Context) (*User, error) {
	return r.user(ctx, "SELECT * FROM users ORDER BY id ASC LIMIT 1")
}

// UserByID returns the user with the given ID.
func (r *SQLite) UserByID(ctx context.Context, id int64) (*User, error) {
	return r.user(ctx, "SELECT * FROM users WHERE id = ?", id)
}

// UserByName returns the user with the given username.
func (r *SQLite) UserByName(ctx context.Context, name string) (*User, error) {
	return r.user(ctx, "SELECT * FROM users WHERE username = ?", name)
}

func (r *SQLite) user(ctx context.Context, q string, args ...any) (*User, error) {
	var u User
	if err := r.DB.GetContext(ctx, &u, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("%w: %w", ErrRecordScan, err)
	}

	return &u, nil
}

// UpdatePassword replaces the password hash of the user.
func (r *SQLite) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", hash, id)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
	}

	return nil
}
