package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/odomo-app/odomo/internal/model"
)

// This file is the economy transaction coordinator: every operation that
// mutates more than one record for an owner lives here and runs as a single
// transaction. Preconditions (balance sufficiency, inventory presence,
// lifecycle eligibility via the pet callback) are evaluated against rows
// locked with SELECT ... FOR UPDATE inside that same transaction, so two
// concurrent operations can never both pass a check against the same
// pre-mutation state and both commit. Lock acquisition follows a fixed
// owner → inventory → pet order to keep the lock graph acyclic.

// PurchaseItemTx debits totalCost from the owner's balance and increments the
// inventory stack for itemType by quantity, atomically. Returns the new
// balance and stack quantity. ErrInsufficientFunds leaves both untouched.
func (db *DB) PurchaseItemTx(ctx context.Context, ownerID uuid.UUID, itemType model.ItemType, quantity, totalCost int) (newBalance, newQuantity int, err error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("storage: begin purchase tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	balance, err := lockBalance(ctx, tx, ownerID)
	if err != nil {
		return 0, 0, err
	}
	if balance < totalCost {
		return 0, 0, fmt.Errorf("storage: need %d, have %d: %w", totalCost, balance, ErrInsufficientFunds)
	}

	newBalance = balance - totalCost
	if _, err := tx.Exec(ctx,
		`UPDATE owners SET koban_balance = $1, updated_at = now() WHERE id = $2`,
		newBalance, ownerID,
	); err != nil {
		return 0, 0, fmt.Errorf("storage: debit balance: %w", err)
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO inventory_entries (owner_id, item_type, quantity, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (owner_id, item_type)
		 DO UPDATE SET quantity = inventory_entries.quantity + EXCLUDED.quantity, updated_at = now()
		 RETURNING quantity`,
		ownerID, string(itemType), quantity,
	).Scan(&newQuantity); err != nil {
		return 0, 0, fmt.Errorf("storage: upsert inventory: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("storage: commit purchase tx: %w", err)
	}
	return newBalance, newQuantity, nil
}

// ConsumeItemTx decrements the owner's stack for itemType by one and applies
// the pet mutation computed by fn against the locked pet row, atomically.
// The entry is deleted when the stack reaches zero. Returns the remaining
// quantity and the rewritten pet. ErrInsufficientQuantity if no entry exists.
func (db *DB) ConsumeItemTx(ctx context.Context, ownerID uuid.UUID, itemType model.ItemType, fn func(model.Pet) (PetMutation, error)) (remaining int, pet model.Pet, err error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, model.Pet{}, fmt.Errorf("storage: begin consume tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var quantity int
	err = tx.QueryRow(ctx,
		`SELECT quantity FROM inventory_entries
		 WHERE owner_id = $1 AND item_type = $2 FOR UPDATE`,
		ownerID, string(itemType),
	).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.Pet{}, fmt.Errorf("storage: no %s in inventory: %w", itemType, ErrInsufficientQuantity)
		}
		return 0, model.Pet{}, fmt.Errorf("storage: lock inventory entry: %w", err)
	}

	stored, err := lockPet(ctx, tx, ownerID)
	if err != nil {
		return 0, model.Pet{}, err
	}

	mut, err := fn(stored)
	if err != nil {
		return 0, model.Pet{}, err
	}

	pet, err = applyPetMutation(ctx, tx, ownerID, mut)
	if err != nil {
		return 0, model.Pet{}, err
	}

	remaining = quantity - 1
	if remaining == 0 {
		if _, err := tx.Exec(ctx,
			`DELETE FROM inventory_entries WHERE owner_id = $1 AND item_type = $2`,
			ownerID, string(itemType),
		); err != nil {
			return 0, model.Pet{}, fmt.Errorf("storage: delete inventory entry: %w", err)
		}
	} else {
		if _, err := tx.Exec(ctx,
			`UPDATE inventory_entries SET quantity = $1, updated_at = now()
			 WHERE owner_id = $2 AND item_type = $3`,
			remaining, ownerID, string(itemType),
		); err != nil {
			return 0, model.Pet{}, fmt.Errorf("storage: decrement inventory: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, model.Pet{}, fmt.Errorf("storage: commit consume tx: %w", err)
	}
	return remaining, pet, nil
}

// SyncStepsTx credits kobans to the owner's balance and applies the pet
// mutation computed by fn against the locked pet row, atomically. Returns the
// new balance and the rewritten pet.
func (db *DB) SyncStepsTx(ctx context.Context, ownerID uuid.UUID, kobans int, fn func(model.Pet) (PetMutation, error)) (newBalance int, pet model.Pet, err error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, model.Pet{}, fmt.Errorf("storage: begin sync tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	balance, err := lockBalance(ctx, tx, ownerID)
	if err != nil {
		return 0, model.Pet{}, err
	}

	stored, err := lockPet(ctx, tx, ownerID)
	if err != nil {
		return 0, model.Pet{}, err
	}

	mut, err := fn(stored)
	if err != nil {
		return 0, model.Pet{}, err
	}

	newBalance = balance + kobans
	if _, err := tx.Exec(ctx,
		`UPDATE owners SET koban_balance = $1, updated_at = now() WHERE id = $2`,
		newBalance, ownerID,
	); err != nil {
		return 0, model.Pet{}, fmt.Errorf("storage: credit balance: %w", err)
	}

	pet, err = applyPetMutation(ctx, tx, ownerID, mut)
	if err != nil {
		return 0, model.Pet{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, model.Pet{}, fmt.Errorf("storage: commit sync tx: %w", err)
	}
	return newBalance, pet, nil
}

func lockBalance(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID) (int, error) {
	var balance int
	err := tx.QueryRow(ctx,
		`SELECT koban_balance FROM owners WHERE id = $1 FOR UPDATE`, ownerID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("storage: owner %s: %w", ownerID, ErrNotFound)
		}
		return 0, fmt.Errorf("storage: lock balance: %w", err)
	}
	return balance, nil
}
