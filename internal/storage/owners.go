package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/odomo-app/odomo/internal/model"
)

// StartingBalance is the Koban balance granted to a new owner account.
const StartingBalance = 100

// CreateOwner inserts a new owner account with the starting balance.
// Returns ErrDuplicate if the email is already registered.
func (db *DB) CreateOwner(ctx context.Context, email, passwordHash string) (model.Owner, error) {
	owner := model.Owner{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		KobanBalance: StartingBalance,
		CreatedAt:    time.Now().UTC(),
	}
	owner.UpdatedAt = owner.CreatedAt

	_, err := db.pool.Exec(ctx,
		`INSERT INTO owners (id, email, password_hash, koban_balance, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		owner.ID, owner.Email, owner.PasswordHash, owner.KobanBalance, owner.CreatedAt, owner.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Owner{}, fmt.Errorf("storage: owner %s: %w", email, ErrDuplicate)
		}
		return model.Owner{}, fmt.Errorf("storage: create owner: %w", err)
	}
	return owner, nil
}

// GetOwnerByEmail retrieves an owner account by email.
func (db *DB) GetOwnerByEmail(ctx context.Context, email string) (model.Owner, error) {
	var o model.Owner
	err := db.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, koban_balance, created_at, updated_at
		 FROM owners WHERE email = $1`, email,
	).Scan(&o.ID, &o.Email, &o.PasswordHash, &o.KobanBalance, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Owner{}, fmt.Errorf("storage: owner %s: %w", email, ErrNotFound)
		}
		return model.Owner{}, fmt.Errorf("storage: get owner by email: %w", err)
	}
	return o, nil
}

// GetOwnerByID retrieves an owner account by id.
func (db *DB) GetOwnerByID(ctx context.Context, id uuid.UUID) (model.Owner, error) {
	var o model.Owner
	err := db.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, koban_balance, created_at, updated_at
		 FROM owners WHERE id = $1`, id,
	).Scan(&o.ID, &o.Email, &o.PasswordHash, &o.KobanBalance, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Owner{}, fmt.Errorf("storage: owner %s: %w", id, ErrNotFound)
		}
		return model.Owner{}, fmt.Errorf("storage: get owner by id: %w", err)
	}
	return o, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
