package storage_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/odomo-app/odomo/internal/model"
	"github.com/odomo-app/odomo/internal/storage"
)

func TestPurchaseItemTx_DebitsAndStacks(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)

	balance, quantity, err := testDB.PurchaseItemTx(ctx, owner.ID, model.ItemOnigiri, 2, 20)
	require.NoError(t, err)
	assert.Equal(t, storage.StartingBalance-20, balance)
	assert.Equal(t, 2, quantity)

	// Second purchase stacks onto the same entry.
	balance, quantity, err = testDB.PurchaseItemTx(ctx, owner.ID, model.ItemOnigiri, 3, 30)
	require.NoError(t, err)
	assert.Equal(t, storage.StartingBalance-50, balance)
	assert.Equal(t, 5, quantity)
}

func TestPurchaseItemTx_InsufficientFundsLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)

	_, _, err := testDB.PurchaseItemTx(ctx, owner.ID, model.ItemSoulStone, 1, 200)
	require.ErrorIs(t, err, storage.ErrInsufficientFunds)

	// Balance unchanged, no inventory entry created.
	fresh, err := testDB.GetOwnerByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.StartingBalance, fresh.KobanBalance)

	entries, err := testDB.ListInventory(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPurchaseItemTx_UnknownOwner(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)
	_, _, err := testDB.PurchaseItemTx(ctx, owner.ID, model.ItemOnigiri, 1, 10)
	require.NoError(t, err)

	_, _, err = testDB.PurchaseItemTx(ctx, uuid.New(), model.ItemOnigiri, 1, 10)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestConsumeItemTx_DecrementsAndRewritesPet(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)
	newPet(t, owner.ID)

	_, _, err := testDB.PurchaseItemTx(ctx, owner.ID, model.ItemRamen, 2, 50)
	require.NoError(t, err)

	now := time.Now().UTC()
	remaining, pet, err := testDB.ConsumeItemTx(ctx, owner.ID, model.ItemRamen, func(stored model.Pet) (storage.PetMutation, error) {
		mut := storage.MutationFromPet(stored)
		mut.Hunger = 100
		mut.LastInteractionAt = now
		return mut, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, 100.0, pet.Hunger)
	assert.WithinDuration(t, now, pet.LastInteractionAt, time.Second)
}

func TestConsumeItemTx_LastUnitDeletesEntry(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)
	newPet(t, owner.ID)

	_, _, err := testDB.PurchaseItemTx(ctx, owner.ID, model.ItemSoap, 1, 15)
	require.NoError(t, err)

	remaining, _, err := testDB.ConsumeItemTx(ctx, owner.ID, model.ItemSoap, func(stored model.Pet) (storage.PetMutation, error) {
		return storage.MutationFromPet(stored), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	entries, err := testDB.ListInventory(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The stack is gone: a second consume fails cleanly.
	_, _, err = testDB.ConsumeItemTx(ctx, owner.ID, model.ItemSoap, func(stored model.Pet) (storage.PetMutation, error) {
		return storage.MutationFromPet(stored), nil
	})
	require.ErrorIs(t, err, storage.ErrInsufficientQuantity)
}

func TestConsumeItemTx_CallbackErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)
	newPet(t, owner.ID)

	_, _, err := testDB.PurchaseItemTx(ctx, owner.ID, model.ItemMedicine, 1, 40)
	require.NoError(t, err)

	_, _, err = testDB.ConsumeItemTx(ctx, owner.ID, model.ItemMedicine, func(model.Pet) (storage.PetMutation, error) {
		return storage.PetMutation{}, model.Preconditionf("pet is not sick")
	})
	var derr *model.DomainError
	require.ErrorAs(t, err, &derr)

	// The unit was not consumed.
	entries, err := testDB.ListInventory(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Quantity)
}

func TestConsumeItemTx_DoubleSpendExactlyOneSucceeds(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)
	newPet(t, owner.ID)

	// One unit, two concurrent consumers: exactly one may win.
	_, _, err := testDB.PurchaseItemTx(ctx, owner.ID, model.ItemBentoRoyal, 1, 50)
	require.NoError(t, err)

	var successes, failures atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			_, _, err := testDB.ConsumeItemTx(gctx, owner.ID, model.ItemBentoRoyal, func(stored model.Pet) (storage.PetMutation, error) {
				return storage.MutationFromPet(stored), nil
			})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, storage.ErrInsufficientQuantity):
				failures.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(1), failures.Load())
}

func TestPurchaseItemTx_ConcurrentSpendNeverOverdraws(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)

	// Balance 100; five concurrent 40-Koban purchases: at most two can commit.
	var successes atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 5; i++ {
		g.Go(func() error {
			_, _, err := testDB.PurchaseItemTx(gctx, owner.ID, model.ItemMedicine, 1, 40)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, storage.ErrInsufficientFunds):
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(2), successes.Load())

	fresh, err := testDB.GetOwnerByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, fresh.KobanBalance)
	assert.GreaterOrEqual(t, fresh.KobanBalance, 0)
}

func TestSyncStepsTx_CreditsAndRewritesAtomically(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)
	newPet(t, owner.ID)

	syncAt := time.Now().UTC()
	balance, pet, err := testDB.SyncStepsTx(ctx, owner.ID, 5, func(stored model.Pet) (storage.PetMutation, error) {
		mut := storage.MutationFromPet(stored)
		mut.XP = 50
		mut.LastInteractionAt = syncAt
		mut.LastStepSyncAt = &syncAt
		return mut, nil
	})
	require.NoError(t, err)
	assert.Equal(t, storage.StartingBalance+5, balance)
	assert.Equal(t, 50, pet.XP)
	assert.WithinDuration(t, syncAt, pet.LastStepSyncAt, time.Second)
}

func TestSyncStepsTx_CallbackErrorRollsBackCredit(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)
	newPet(t, owner.ID)

	_, _, err := testDB.SyncStepsTx(ctx, owner.ID, 10, func(model.Pet) (storage.PetMutation, error) {
		return storage.PetMutation{}, model.Terminalf("cannot sync steps for a dead pet")
	})
	var derr *model.DomainError
	require.ErrorAs(t, err, &derr)

	fresh, err := testDB.GetOwnerByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.StartingBalance, fresh.KobanBalance)
}
