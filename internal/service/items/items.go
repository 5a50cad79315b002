// Package items holds the static item catalogue and resolves an item use
// into the checkpoint rewrite it implies.
package items

import (
	"fmt"

	"github.com/odomo-app/odomo/internal/model"
	"github.com/odomo-app/odomo/internal/service/decay"
	"github.com/odomo-app/odomo/internal/service/lifecycle"
)

// Item is one catalogue entry: price plus effect descriptor. The stat fields
// are additive deltas and only meaningful for ClassConsumable and the
// happiness side effect of ClassHealing.
type Item struct {
	Type      model.ItemType
	Price     int
	Class     model.ItemClass
	Hunger    float64
	Happiness float64
	Hygiene   float64
}

// Catalogue is an immutable price/effect table, compiled in rather than
// persisted. Injected at construction so tests can substitute tuning.
type Catalogue struct {
	items map[model.ItemType]Item
}

// DefaultCatalogue returns the production shop inventory.
func DefaultCatalogue() *Catalogue {
	return NewCatalogue([]Item{
		{Type: model.ItemOnigiri, Price: 10, Class: model.ClassConsumable, Hunger: 20},
		{Type: model.ItemRamen, Price: 25, Class: model.ClassConsumable, Hunger: 40, Happiness: 10},
		{Type: model.ItemBentoRoyal, Price: 50, Class: model.ClassConsumable, Hunger: 100, Happiness: 20},
		{Type: model.ItemSoap, Price: 15, Class: model.ClassConsumable, Hygiene: 50, Happiness: 5},
		{Type: model.ItemMedicine, Price: 40, Class: model.ClassHealing, Happiness: 15},
		{Type: model.ItemSoulStone, Price: 200, Class: model.ClassResurrection},
	})
}

// NewCatalogue builds a catalogue from entries.
func NewCatalogue(entries []Item) *Catalogue {
	m := make(map[model.ItemType]Item, len(entries))
	for _, it := range entries {
		m[it.Type] = it
	}
	return &Catalogue{items: m}
}

// Get looks up an item by type.
func (c *Catalogue) Get(t model.ItemType) (Item, bool) {
	it, ok := c.items[t]
	return it, ok
}

// Cost computes price × quantity for a purchase. Quantity must be ≥ 1 and
// the item must exist in the catalogue.
func (c *Catalogue) Cost(t model.ItemType, quantity int) (int, error) {
	if quantity < 1 {
		return 0, model.Invalidf("quantity must be at least 1")
	}
	it, ok := c.items[t]
	if !ok {
		return 0, model.Invalidf("unknown item type %q", t)
	}
	return it.Price * quantity, nil
}

// Resolve validates the lifecycle preconditions for using item t against the
// given live stats and produces the checkpoint rewrite to apply.
//
// Heal requires live-SICK; resurrection requires live-DEAD; anything else
// requires not live-DEAD. The class switch is exhaustive — an unknown class
// is a programming error, not a user error.
func (c *Catalogue) Resolve(t model.ItemType, live decay.LiveStats) (lifecycle.Change, error) {
	it, ok := c.items[t]
	if !ok {
		return lifecycle.Change{}, model.Invalidf("unknown item type %q", t)
	}

	switch it.Class {
	case model.ClassConsumable:
		if err := lifecycle.EnsureActionable(live); err != nil {
			return lifecycle.Change{}, err
		}
		return lifecycle.Change{
			Hunger:    clamp(live.Hunger + it.Hunger),
			Happiness: clamp(live.Happiness + it.Happiness),
			Hygiene:   clamp(live.Hygiene + it.Hygiene),
			LifeState: lifecycle.PersistedState(live),
		}, nil

	case model.ClassHealing:
		if live.IsDead {
			return lifecycle.Change{}, model.Terminalf("pet is dead; use a %s first", model.ItemSoulStone)
		}
		if !live.IsSick {
			return lifecycle.Change{}, model.Preconditionf("pet is not sick")
		}
		return lifecycle.Change{
			Hunger:    live.Hunger,
			Happiness: clamp(live.Happiness + it.Happiness),
			Hygiene:   live.Hygiene,
			LifeState: model.LifeAlive,
		}, nil

	case model.ClassResurrection:
		return lifecycle.Revive(live)

	default:
		return lifecycle.Change{}, fmt.Errorf("items: unhandled item class %q", it.Class)
	}
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
