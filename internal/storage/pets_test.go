package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odomo-app/odomo/internal/model"
	"github.com/odomo-app/odomo/internal/storage"
)

func TestCreatePet_OnePerOwner(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)
	newPet(t, owner.ID)

	_, err := testDB.CreatePet(ctx, model.Pet{OwnerID: owner.ID, Name: "Second"})
	require.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestGetPetByOwner_RoundTrip(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)
	created := newPet(t, owner.ID)

	got, err := testDB.GetPetByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Odomo", got.Name)
	assert.Equal(t, model.StageTamago, got.Stage)
	assert.Equal(t, model.LifeAlive, got.LifeState)
}

func TestGetPetByOwner_NotFound(t *testing.T) {
	_, err := testDB.GetPetByOwner(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMutatePetTx_PersistsRewrite(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)
	newPet(t, owner.ID)

	now := time.Now().UTC()
	updated, err := testDB.MutatePetTx(ctx, owner.ID, func(stored model.Pet) (storage.PetMutation, error) {
		mut := storage.MutationFromPet(stored)
		mut.Level = 2
		mut.XP = 42
		mut.Stage = model.StageChibi
		mut.Hunger = 55.5
		mut.LifeState = model.LifeSick
		mut.LastInteractionAt = now
		return mut, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Level)
	assert.Equal(t, 42, updated.XP)
	assert.Equal(t, model.StageChibi, updated.Stage)
	assert.Equal(t, 55.5, updated.Hunger)
	assert.Equal(t, model.LifeSick, updated.LifeState)

	// Nil LastStepSyncAt leaves the stored value alone.
	fresh, err := testDB.GetPetByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, now, fresh.LastInteractionAt, time.Second)
	assert.False(t, fresh.LastStepSyncAt.IsZero())
}

func TestMutatePetTx_CallbackErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)
	created := newPet(t, owner.ID)

	_, err := testDB.MutatePetTx(ctx, owner.ID, func(model.Pet) (storage.PetMutation, error) {
		return storage.PetMutation{}, model.Invalidf("bad amount")
	})
	var derr *model.DomainError
	require.ErrorAs(t, err, &derr)

	fresh, err := testDB.GetPetByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Hunger, fresh.Hunger)
}

func TestDeletePet(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)
	newPet(t, owner.ID)

	require.NoError(t, testDB.DeletePet(ctx, owner.ID))
	require.ErrorIs(t, testDB.DeletePet(ctx, owner.ID), storage.ErrNotFound)
}

func TestCreateOwner_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)

	_, err := testDB.CreateOwner(ctx, owner.Email, "hash")
	require.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestListInventory_Ordered(t *testing.T) {
	ctx := context.Background()
	owner := newOwner(t)

	_, _, err := testDB.PurchaseItemTx(ctx, owner.ID, model.ItemSoap, 1, 15)
	require.NoError(t, err)
	_, _, err = testDB.PurchaseItemTx(ctx, owner.ID, model.ItemOnigiri, 2, 20)
	require.NoError(t, err)

	entries, err := testDB.ListInventory(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ItemOnigiri, entries[0].ItemType)
	assert.Equal(t, 2, entries[0].Quantity)
	assert.Equal(t, model.ItemSoap, entries[1].ItemType)
}
