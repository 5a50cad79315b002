package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/odomo-app/odomo/internal/model"
)

const petColumns = `id, owner_id, name, level, xp, stage, evolution_variant,
	hunger, happiness, hygiene, life_state, birth_date, last_interaction_at, last_step_sync_at`

// CreatePet inserts a new pet. Returns ErrDuplicate if the owner already has
// one (owner_id is unique).
func (db *DB) CreatePet(ctx context.Context, pet model.Pet) (model.Pet, error) {
	if pet.ID == uuid.Nil {
		pet.ID = uuid.New()
	}
	now := time.Now().UTC()
	if pet.BirthDate.IsZero() {
		pet.BirthDate = now
	}
	if pet.LastInteractionAt.IsZero() {
		pet.LastInteractionAt = now
	}
	if pet.LastStepSyncAt.IsZero() {
		pet.LastStepSyncAt = now
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO pets (`+petColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		pet.ID, pet.OwnerID, pet.Name, pet.Level, pet.XP, string(pet.Stage), pet.EvolutionVariant,
		pet.Hunger, pet.Happiness, pet.Hygiene, string(pet.LifeState),
		pet.BirthDate, pet.LastInteractionAt, pet.LastStepSyncAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Pet{}, fmt.Errorf("storage: pet for owner %s: %w", pet.OwnerID, ErrDuplicate)
		}
		return model.Pet{}, fmt.Errorf("storage: create pet: %w", err)
	}
	return pet, nil
}

// GetPetByOwner retrieves the pet belonging to an owner.
func (db *DB) GetPetByOwner(ctx context.Context, ownerID uuid.UUID) (model.Pet, error) {
	pet, err := scanPet(db.pool.QueryRow(ctx,
		`SELECT `+petColumns+` FROM pets WHERE owner_id = $1`, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Pet{}, fmt.Errorf("storage: pet for owner %s: %w", ownerID, ErrNotFound)
		}
		return model.Pet{}, fmt.Errorf("storage: get pet: %w", err)
	}
	return pet, nil
}

// DeletePet removes the owner's pet. Returns ErrNotFound if there is none.
func (db *DB) DeletePet(ctx context.Context, ownerID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM pets WHERE owner_id = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("storage: delete pet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage: pet for owner %s: %w", ownerID, ErrNotFound)
	}
	return nil
}

// PetMutation is the checkpoint rewrite applied by a transactional pet
// mutation. LastStepSyncAt is only written when non-nil.
type PetMutation struct {
	Level             int
	XP                int
	Stage             model.Stage
	Hunger            float64
	Happiness         float64
	Hygiene           float64
	LifeState         model.LifeState
	LastInteractionAt time.Time
	LastStepSyncAt    *time.Time
}

// MutationFromPet seeds a mutation with the pet's current stored values, so
// callers only override what the operation changes.
func MutationFromPet(pet model.Pet) PetMutation {
	return PetMutation{
		Level:             pet.Level,
		XP:                pet.XP,
		Stage:             pet.Stage,
		Hunger:            pet.Hunger,
		Happiness:         pet.Happiness,
		Hygiene:           pet.Hygiene,
		LifeState:         pet.LifeState,
		LastInteractionAt: pet.LastInteractionAt,
	}
}

// MutatePetTx locks the owner's pet row, hands the fresh stored snapshot to
// fn, and persists the mutation fn returns — all in one transaction. An error
// from fn (including domain errors) rolls everything back and is returned
// unwrapped so callers can classify it.
func (db *DB) MutatePetTx(ctx context.Context, ownerID uuid.UUID, fn func(model.Pet) (PetMutation, error)) (model.Pet, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return model.Pet{}, fmt.Errorf("storage: begin pet tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pet, err := lockPet(ctx, tx, ownerID)
	if err != nil {
		return model.Pet{}, err
	}

	mut, err := fn(pet)
	if err != nil {
		return model.Pet{}, err
	}

	updated, err := applyPetMutation(ctx, tx, ownerID, mut)
	if err != nil {
		return model.Pet{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Pet{}, fmt.Errorf("storage: commit pet tx: %w", err)
	}
	return updated, nil
}

func lockPet(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID) (model.Pet, error) {
	pet, err := scanPet(tx.QueryRow(ctx,
		`SELECT `+petColumns+` FROM pets WHERE owner_id = $1 FOR UPDATE`, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Pet{}, fmt.Errorf("storage: pet for owner %s: %w", ownerID, ErrNotFound)
		}
		return model.Pet{}, fmt.Errorf("storage: lock pet: %w", err)
	}
	return pet, nil
}

func applyPetMutation(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, mut PetMutation) (model.Pet, error) {
	pet, err := scanPet(tx.QueryRow(ctx,
		`UPDATE pets
		 SET level = $1, xp = $2, stage = $3, hunger = $4, happiness = $5, hygiene = $6,
		     life_state = $7, last_interaction_at = $8,
		     last_step_sync_at = COALESCE($9, last_step_sync_at)
		 WHERE owner_id = $10
		 RETURNING `+petColumns,
		mut.Level, mut.XP, string(mut.Stage), mut.Hunger, mut.Happiness, mut.Hygiene,
		string(mut.LifeState), mut.LastInteractionAt, mut.LastStepSyncAt, ownerID,
	))
	if err != nil {
		return model.Pet{}, fmt.Errorf("storage: apply pet mutation: %w", err)
	}
	return pet, nil
}

func scanPet(row pgx.Row) (model.Pet, error) {
	var p model.Pet
	var stage, lifeState string
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Level, &p.XP, &stage, &p.EvolutionVariant,
		&p.Hunger, &p.Happiness, &p.Hygiene, &lifeState,
		&p.BirthDate, &p.LastInteractionAt, &p.LastStepSyncAt,
	)
	if err != nil {
		return model.Pet{}, err
	}
	p.Stage = model.Stage(stage)
	p.LifeState = model.LifeState(lifeState)
	return p, nil
}
