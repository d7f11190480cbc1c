package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
)

var _ domain.UserRepository = (*UserRepo)(nil)

// UserRepo stores the client registry. PINs are sealed at rest with the
// master key, bound to the user id.
type UserRepo struct {
	pool   *pgxpool.Pool
	crypto domain.CryptoService
}

func NewUserRepo(pool *pgxpool.Pool, crypto domain.CryptoService) *UserRepo {
	return &UserRepo{pool: pool, crypto: crypto}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.UserInfo) error {
	sealedPIN, err := r.crypto.Encrypt(ctx, []byte(user.PIN), []byte(user.ID))
	if err != nil {
		return fmt.Errorf("failed to seal pin: %w", err)
	}

	const query = `
		INSERT INTO users (id, nickname, pin, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.pool.Exec(ctx, query, user.ID, user.Nickname, sealedPIN, user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.UserInfo, error) {
	const query = `SELECT id, nickname, pin, created_at FROM users WHERE id = $1`

	var user domain.UserInfo
	var sealedPIN string
	err := r.pool.QueryRow(ctx, query, id).Scan(&user.ID, &user.Nickname, &sealedPIN, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	pin, err := r.crypto.Decrypt(ctx, sealedPIN, []byte(user.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to open pin: %w", err)
	}
	user.PIN = string(pin)
	return &user, nil
}

// List returns the registry without PINs, oldest first.
func (r *UserRepo) List(ctx context.Context) ([]domain.UserInfo, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, nickname, created_at FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.UserInfo, error) {
		var u domain.UserInfo
		err := row.Scan(&u.ID, &u.Nickname, &u.CreatedAt)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	return users, nil
}

func (r *UserRepo) Nicknames(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT nickname FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to list nicknames: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
