// Package pet is the session facade: the one entry point the transport layer
// calls. It composes the decay model, lifecycle machine, progression engine,
// and item catalogue, and delegates every multi-record write to the storage
// layer's transactional methods.
//
// Every mutating operation follows the same shape: load the stored snapshot,
// recompute live stats via the decay model, validate preconditions, compute
// the checkpoint rewrite, commit atomically, and return freshly recomputed
// live stats. Deltas are never applied to a stale stored baseline.
package pet

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/odomo-app/odomo/internal/model"
	"github.com/odomo-app/odomo/internal/service/decay"
	"github.com/odomo-app/odomo/internal/service/items"
	"github.com/odomo-app/odomo/internal/service/lifecycle"
	"github.com/odomo-app/odomo/internal/service/progression"
	"github.com/odomo-app/odomo/internal/storage"
)

// DefaultName is used when a pet is created without one.
const DefaultName = "Odomo"

// Step-to-reward conversion rates.
const (
	XPPerStep         = 0.1
	KobansPer100Steps = 1
	newbornBaseline   = 100.0
	newbornLevel      = 1
)

// Service is the pet session facade.
type Service struct {
	db          *storage.DB
	decay       *decay.Model
	catalogue   *items.Catalogue
	progression *progression.Engine
	logger      *slog.Logger
	now         func() time.Time
}

// New creates the facade with production tuning unless overridden via options.
func New(db *storage.DB, dm *decay.Model, cat *items.Catalogue, prog *progression.Engine, logger *slog.Logger) *Service {
	return &Service{
		db:          db,
		decay:       dm,
		catalogue:   cat,
		progression: prog,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create births a new pet for owner. Fails with a conflict if one exists.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, name string) (model.PetStats, error) {
	if err := model.ValidatePetName(name); err != nil {
		return model.PetStats{}, model.Invalidf("%s", err)
	}
	if name == "" {
		name = DefaultName
	}

	now := s.now()
	pet, err := s.db.CreatePet(ctx, model.Pet{
		OwnerID:           ownerID,
		Name:              name,
		Level:             newbornLevel,
		XP:                0,
		Stage:             model.StageTamago,
		Hunger:            newbornBaseline,
		Happiness:         newbornBaseline,
		Hygiene:           newbornBaseline,
		LifeState:         model.LifeAlive,
		BirthDate:         now,
		LastInteractionAt: now,
		LastStepSyncAt:    now,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return model.PetStats{}, model.Conflictf("owner already has a pet")
		}
		return model.PetStats{}, err
	}

	s.logger.Info("pet created", "owner_id", ownerID, "pet_id", pet.ID, "name", pet.Name)
	return s.decay.Stats(pet, s.now()), nil
}

// Stats returns the live view of the owner's pet. Read-only: takes no locks
// and never advances the checkpoint.
func (s *Service) Stats(ctx context.Context, ownerID uuid.UUID) (model.PetStats, error) {
	pet, err := s.db.GetPetByOwner(ctx, ownerID)
	if err != nil {
		return model.PetStats{}, mapNotFound(err, "pet not found")
	}
	return s.decay.Stats(pet, s.now()), nil
}

// Interact applies a FEED, CLEAN, or HEAL interaction and returns fresh live
// stats. The checkpoint rewrite and timestamp refresh commit atomically
// against the locked pet row.
func (s *Service) Interact(ctx context.Context, ownerID uuid.UUID, kind model.InteractionType, amount float64) (model.PetStats, error) {
	now := s.now()
	pet, err := s.db.MutatePetTx(ctx, ownerID, func(stored model.Pet) (storage.PetMutation, error) {
		live := s.decay.ComputeLive(stored, now)
		ch, err := lifecycle.ApplyInteraction(live, kind, amount)
		if err != nil {
			return storage.PetMutation{}, err
		}
		mut := storage.MutationFromPet(stored)
		mut.Hunger = ch.Hunger
		mut.Happiness = ch.Happiness
		mut.Hygiene = ch.Hygiene
		mut.LifeState = ch.LifeState
		mut.LastInteractionAt = now
		return mut, nil
	})
	if err != nil {
		return model.PetStats{}, mapNotFound(err, "pet not found")
	}
	return s.decay.Stats(pet, s.now()), nil
}

// AddExperience grants XP directly (quests, minigames) and returns fresh live
// stats. Rejected for a live-DEAD pet.
func (s *Service) AddExperience(ctx context.Context, ownerID uuid.UUID, amount int) (model.PetStats, error) {
	if amount < 1 {
		return model.PetStats{}, model.Invalidf("amount must be at least 1")
	}

	now := s.now()
	pet, err := s.db.MutatePetTx(ctx, ownerID, func(stored model.Pet) (storage.PetMutation, error) {
		live := s.decay.ComputeLive(stored, now)
		if err := lifecycle.EnsureActionable(live); err != nil {
			return storage.PetMutation{}, err
		}
		res := s.progression.Apply(stored.Level, stored.XP, stored.Stage, amount)

		mut := storage.MutationFromPet(stored)
		mut.Level = res.Level
		mut.XP = res.XP
		mut.Stage = res.Stage
		mut.Hunger = live.Hunger
		mut.Happiness = clamp(live.Happiness + res.HappinessBonus)
		mut.Hygiene = live.Hygiene
		mut.LifeState = lifecycle.PersistedState(live)
		mut.LastInteractionAt = now
		return mut, nil
	})
	if err != nil {
		return model.PetStats{}, mapNotFound(err, "pet not found")
	}
	return s.decay.Stats(pet, s.now()), nil
}

// BuyItem purchases quantity units of itemType, debiting the Koban balance
// and incrementing the inventory stack atomically.
func (s *Service) BuyItem(ctx context.Context, ownerID uuid.UUID, itemType model.ItemType, quantity int) (model.BuyItemResponse, error) {
	totalCost, err := s.catalogue.Cost(itemType, quantity)
	if err != nil {
		return model.BuyItemResponse{}, err
	}

	newBalance, newQuantity, err := s.db.PurchaseItemTx(ctx, ownerID, itemType, quantity, totalCost)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInsufficientFunds):
			return model.BuyItemResponse{}, model.Preconditionf("insufficient kobans: need %d", totalCost)
		case errors.Is(err, storage.ErrNotFound):
			return model.BuyItemResponse{}, model.NotFoundf("owner account not found")
		default:
			return model.BuyItemResponse{}, err
		}
	}

	s.logger.Info("item purchased",
		"owner_id", ownerID, "item_type", itemType, "quantity", quantity, "total_cost", totalCost)
	return model.BuyItemResponse{
		ItemType:        itemType,
		QuantityBought:  quantity,
		TotalCost:       totalCost,
		NewKobanBalance: newBalance,
		NewQuantity:     newQuantity,
	}, nil
}

// UseItem consumes one unit of itemType and applies its resolved effect to
// the pet, atomically. Using the last unit removes the inventory entry.
func (s *Service) UseItem(ctx context.Context, ownerID uuid.UUID, itemType model.ItemType) (model.UseItemResponse, error) {
	if err := model.ValidateItemType(itemType); err != nil {
		return model.UseItemResponse{}, model.Invalidf("%s", err)
	}

	now := s.now()
	remaining, pet, err := s.db.ConsumeItemTx(ctx, ownerID, itemType, func(stored model.Pet) (storage.PetMutation, error) {
		live := s.decay.ComputeLive(stored, now)
		ch, err := s.catalogue.Resolve(itemType, live)
		if err != nil {
			return storage.PetMutation{}, err
		}
		mut := storage.MutationFromPet(stored)
		mut.Hunger = ch.Hunger
		mut.Happiness = ch.Happiness
		mut.Hygiene = ch.Hygiene
		mut.LifeState = ch.LifeState
		mut.LastInteractionAt = now
		return mut, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInsufficientQuantity):
			return model.UseItemResponse{}, model.Preconditionf("you don't have any %s", itemType)
		case errors.Is(err, storage.ErrNotFound):
			return model.UseItemResponse{}, model.NotFoundf("pet not found")
		default:
			return model.UseItemResponse{}, err
		}
	}

	s.logger.Info("item used", "owner_id", ownerID, "item_type", itemType, "remaining", remaining)
	return model.UseItemResponse{
		ItemUsed:          itemType,
		RemainingQuantity: remaining,
		Pet:               s.decay.Stats(pet, s.now()),
	}, nil
}

// SyncSteps converts a step count into XP and Kobans, applying the full
// progression result and the currency credit atomically. steps must be
// positive; a live-DEAD pet rejects the sync.
func (s *Service) SyncSteps(ctx context.Context, ownerID uuid.UUID, steps int) (model.SyncStepsResponse, error) {
	if steps <= 0 {
		return model.SyncStepsResponse{}, model.Invalidf("steps must be positive")
	}

	xpGained := int(math.Floor(float64(steps) * XPPerStep))
	kobansGained := (steps / 100) * KobansPer100Steps

	now := s.now()
	var res progression.Result
	newBalance, pet, err := s.db.SyncStepsTx(ctx, ownerID, kobansGained, func(stored model.Pet) (storage.PetMutation, error) {
		live := s.decay.ComputeLive(stored, now)
		if live.IsDead {
			return storage.PetMutation{}, model.Terminalf("cannot sync steps for a dead pet")
		}
		res = s.progression.Apply(stored.Level, stored.XP, stored.Stage, xpGained)

		syncAt := now
		mut := storage.MutationFromPet(stored)
		mut.Level = res.Level
		mut.XP = res.XP
		mut.Stage = res.Stage
		mut.Hunger = live.Hunger
		mut.Happiness = clamp(live.Happiness + res.HappinessBonus)
		mut.Hygiene = live.Hygiene
		mut.LifeState = lifecycle.PersistedState(live)
		mut.LastInteractionAt = now
		mut.LastStepSyncAt = &syncAt
		return mut, nil
	})
	if err != nil {
		return model.SyncStepsResponse{}, mapNotFound(err, "pet not found")
	}

	s.logger.Info("steps synced",
		"owner_id", ownerID, "steps", steps, "xp_gained", xpGained,
		"kobans_gained", kobansGained, "leveled_up", res.LeveledUp, "stage_evolved", res.StageEvolved)
	return model.SyncStepsResponse{
		XPGained:        xpGained,
		KobansGained:    kobansGained,
		NewKobanBalance: newBalance,
		LeveledUp:       res.LeveledUp,
		StageEvolved:    res.StageEvolved,
		Pet:             s.decay.Stats(pet, s.now()),
	}, nil
}

// Delete removes the owner's pet.
func (s *Service) Delete(ctx context.Context, ownerID uuid.UUID) error {
	if err := s.db.DeletePet(ctx, ownerID); err != nil {
		return mapNotFound(err, "pet not found")
	}
	s.logger.Info("pet deleted", "owner_id", ownerID)
	return nil
}

// Inventory lists the owner's inventory entries.
func (s *Service) Inventory(ctx context.Context, ownerID uuid.UUID) ([]model.InventoryEntry, error) {
	return s.db.ListInventory(ctx, ownerID)
}

func mapNotFound(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return model.NotFoundf("%s", msg)
	}
	return err
}

func clamp(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}
