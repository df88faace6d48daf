package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

const userSelect = `
SELECT id, username, email, first_name, last_name, password_hash, created_at, updated_at
FROM users`

func userDest(u *model.User) []any {
	return []any{&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt}
}

// UserRepository handles persistence for accounts.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateWithRole inserts a user and its initial role assignment atomically.
func (r *UserRepository) CreateWithRole(ctx context.Context, u *model.User, role model.Role) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback is a no-op once the transaction has committed.
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, username, email, first_name, last_name, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		switch {
		case isViolation(err, codeUniqueViolation, constraintUsersUsername):
			return ErrDuplicateUsername
		case isViolation(err, codeUniqueViolation, constraintUsersEmail):
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if err := assignRole(ctx, tx, u.ID, role); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByUsername returns a user or ErrNotFound.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.get(ctx, userSelect+` WHERE username = $1`, username)
}

// GetByID returns a user or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.get(ctx, userSelect+` WHERE id = $1`, id)
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(userDest(&u)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
