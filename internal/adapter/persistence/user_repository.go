package persistence

import (
	"context"
	"fmt"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/ports"
)

// UserRepository persists users
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a new user repository
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Insert(ctx context.Context, tx ports.Tx, u *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.ExecContext(ctx, r.store.q(query),
		u.ID,
		u.Name,
		u.Email,
		string(u.Role),
		u.CreatedAt.UTC(),
		u.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByID retrieves a User by its ID
func (r *UserRepository) FindByID(ctx context.Context, tx ports.Tx, id string) (*domain.User, error) {
	return r.find(ctx, tx, id, "")
}

// FindForUpdate retrieves a User and locks its row until the transaction ends
func (r *UserRepository) FindForUpdate(ctx context.Context, tx ports.Tx, id string) (*domain.User, error) {
	return r.find(ctx, tx, id, r.store.dialect.ForUpdate())
}

func (r *UserRepository) find(ctx context.Context, tx ports.Tx, id, suffix string) (*domain.User, error) {
	query := `
		SELECT id, name, email, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u domain.User
	err := tx.QueryRowContext(ctx, r.store.q(query+suffix), id).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err, domain.EntityUser, id)
	}

	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, tx ports.Tx, u *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, role = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, r.store.q(query), u.ID, u.Name, u.Email, string(u.Role), u.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return expectAffected(result, domain.EntityUser, u.ID)
}

func (r *UserRepository) Delete(ctx context.Context, tx ports.Tx, id string) error {
	result, err := tx.ExecContext(ctx, r.store.q(`DELETE FROM users WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectAffected(result, domain.EntityUser, id)
}

var _ ports.Repository[*domain.User] = (*UserRepository)(nil)
