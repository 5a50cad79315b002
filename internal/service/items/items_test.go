package items

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odomo-app/odomo/internal/model"
	"github.com/odomo-app/odomo/internal/service/decay"
	"github.com/odomo-app/odomo/internal/service/lifecycle"
)

func aliveStats() decay.LiveStats {
	return decay.LiveStats{
		Hunger:    40,
		Happiness: 40,
		Hygiene:   40,
		LifeState: model.LifeAlive,
	}
}

func sickStats() decay.LiveStats {
	s := aliveStats()
	s.LifeState = model.LifeSick
	s.IsSick = true
	return s
}

func deadStats() decay.LiveStats {
	s := aliveStats()
	s.LifeState = model.LifeDead
	s.IsDead = true
	return s
}

func TestDefaultCatalogue_Prices(t *testing.T) {
	c := DefaultCatalogue()

	tests := []struct {
		item  model.ItemType
		price int
	}{
		{model.ItemOnigiri, 10},
		{model.ItemRamen, 25},
		{model.ItemBentoRoyal, 50},
		{model.ItemSoap, 15},
		{model.ItemMedicine, 40},
		{model.ItemSoulStone, 200},
	}
	for _, tt := range tests {
		it, ok := c.Get(tt.item)
		require.True(t, ok, "item %s", tt.item)
		assert.Equal(t, tt.price, it.Price, "item %s", tt.item)
	}
}

func TestCost(t *testing.T) {
	c := DefaultCatalogue()

	t.Run("multiplies price by quantity", func(t *testing.T) {
		cost, err := c.Cost(model.ItemRamen, 3)
		require.NoError(t, err)
		assert.Equal(t, 75, cost)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := c.Cost(model.ItemRamen, 0)
		var derr *model.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, model.CodeInvalidInput, derr.Code)
	})

	t.Run("rejects unknown item", func(t *testing.T) {
		_, err := c.Cost(model.ItemType("CHOCOLATE"), 1)
		var derr *model.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, model.CodeInvalidInput, derr.Code)
	})
}

func TestResolve_Consumable(t *testing.T) {
	c := DefaultCatalogue()

	t.Run("ramen raises hunger and happiness", func(t *testing.T) {
		ch, err := c.Resolve(model.ItemRamen, aliveStats())
		require.NoError(t, err)

		assert.Equal(t, 80.0, ch.Hunger)    // 40 + 40
		assert.Equal(t, 50.0, ch.Happiness) // 40 + 10
		assert.Equal(t, 40.0, ch.Hygiene)
		assert.Equal(t, model.LifeAlive, ch.LifeState)
	})

	t.Run("bento clamps at 100", func(t *testing.T) {
		ch, err := c.Resolve(model.ItemBentoRoyal, aliveStats())
		require.NoError(t, err)

		assert.Equal(t, 100.0, ch.Hunger) // 40 + 100 clamped
	})

	t.Run("soap raises hygiene", func(t *testing.T) {
		ch, err := c.Resolve(model.ItemSoap, aliveStats())
		require.NoError(t, err)

		assert.Equal(t, 90.0, ch.Hygiene)
		assert.Equal(t, 45.0, ch.Happiness)
	})

	t.Run("consumable does not cure sickness", func(t *testing.T) {
		ch, err := c.Resolve(model.ItemOnigiri, sickStats())
		require.NoError(t, err)

		assert.Equal(t, model.LifeSick, ch.LifeState)
	})

	t.Run("rejected for dead pet", func(t *testing.T) {
		_, err := c.Resolve(model.ItemOnigiri, deadStats())
		var derr *model.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, model.CodeTerminalState, derr.Code)
	})
}

func TestResolve_Medicine(t *testing.T) {
	c := DefaultCatalogue()

	t.Run("cures a sick pet", func(t *testing.T) {
		ch, err := c.Resolve(model.ItemMedicine, sickStats())
		require.NoError(t, err)

		assert.Equal(t, model.LifeAlive, ch.LifeState)
		assert.Equal(t, 55.0, ch.Happiness) // +15
		assert.Equal(t, 40.0, ch.Hunger)
	})

	t.Run("rejected for healthy pet", func(t *testing.T) {
		_, err := c.Resolve(model.ItemMedicine, aliveStats())
		var derr *model.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, model.CodePreconditionFailed, derr.Code)
	})

	t.Run("rejected for dead pet", func(t *testing.T) {
		_, err := c.Resolve(model.ItemMedicine, deadStats())
		var derr *model.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, model.CodeTerminalState, derr.Code)
	})
}

func TestResolve_SoulStone(t *testing.T) {
	c := DefaultCatalogue()

	t.Run("revives a dead pet to baseline", func(t *testing.T) {
		ch, err := c.Resolve(model.ItemSoulStone, deadStats())
		require.NoError(t, err)

		assert.Equal(t, lifecycle.ReviveBaseline, ch.Hunger)
		assert.Equal(t, lifecycle.ReviveBaseline, ch.Happiness)
		assert.Equal(t, lifecycle.ReviveBaseline, ch.Hygiene)
		assert.Equal(t, model.LifeAlive, ch.LifeState)
	})

	t.Run("rejected for living pet", func(t *testing.T) {
		_, err := c.Resolve(model.ItemSoulStone, aliveStats())
		var derr *model.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, model.CodePreconditionFailed, derr.Code)
	})
}

func TestResolve_UnknownItem(t *testing.T) {
	c := DefaultCatalogue()

	_, err := c.Resolve(model.ItemType("CHOCOLATE"), aliveStats())
	var derr *model.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, model.CodeInvalidInput, derr.Code)
}
