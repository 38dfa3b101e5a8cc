package storefront

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users provides persistence for user accounts.
type Users interface {
	UserStore
	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.Tx, user *User) (*User, error)
}

// UsersRepository implements Users using Bun.
type UsersRepository struct {
	db bun.IDB
}

// NewUsersRepository creates a new repository.
func NewUsersRepository(db bun.IDB) *UsersRepository {
	return &UsersRepository{db: db}
}

// FindByUsername implements UserStore.
func (r *UsersRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	user := new(User)
	err := r.db.NewSelect().
		Model(user).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to query user by username")
	}
	return user, nil
}

// FindByID implements UserStore.
func (r *UsersRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	user := new(User)
	err := r.db.NewSelect().
		Model(user).
		Where("usr.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to query user by id")
	}
	return user, nil
}

// Register inserts a new user. A username collision surfaces as
// ErrUsernameTaken regardless of database backend.
func (r *UsersRepository) Register(ctx context.Context, user *User) (*User, error) {
	return register(ctx, r.db, user)
}

// RegisterTx inserts a new user inside an existing transaction.
func (r *UsersRepository) RegisterTx(ctx context.Context, tx bun.Tx, user *User) (*User, error) {
	return register(ctx, tx, user)
}

func register(ctx context.Context, db bun.IDB, user *User) (*User, error) {
	if user.CreatedAt == nil {
		now := time.Now()
		user.CreatedAt = &now
	}

	_, err := db.NewInsert().
		Model(user).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to insert user")
	}

	return user, nil
}

// isUniqueViolation detects constraint errors without binding to driver
// specific error types. Matches SQLite ("UNIQUE constraint failed") and
// Postgres ("duplicate key value violates unique constraint") messages.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
