// Package lifecycle guards the pet state machine (ALIVE, SICK, DEAD) and
// computes the checkpoint rewrite for each direct interaction.
//
// Downward transitions (ALIVE→SICK, ALIVE/SICK→DEAD) are decay-driven and
// happen implicitly in the decay model. This package owns the explicit,
// owner-triggered transitions: heal (SICK→ALIVE) and resurrection
// (DEAD→ALIVE), plus the stat-raising interactions that leave the state
// alone.
package lifecycle

import (
	"github.com/odomo-app/odomo/internal/model"
	"github.com/odomo-app/odomo/internal/service/decay"
)

const (
	// DefaultAmount is the stat raise applied when the caller omits one.
	DefaultAmount = 30.0
	// MinAmount and MaxAmount bound a caller-supplied raise.
	MinAmount = 1.0
	MaxAmount = 100.0

	// CareHappinessBonus is granted alongside a feed or clean.
	CareHappinessBonus = 5.0
	// HealHappinessBonus is granted by a successful heal.
	HealHappinessBonus = 10.0
	// ReviveBaseline is the condition value all three stats reset to on
	// resurrection. Death is lossy: pre-death values are not restored.
	ReviveBaseline = 50.0
)

// Change is the new stored baseline produced by an interaction. The caller
// persists it together with a refreshed interaction timestamp, which is the
// only way the decay clock resets.
type Change struct {
	Hunger    float64
	Happiness float64
	Hygiene   float64
	LifeState model.LifeState
}

// EnsureActionable rejects any non-resurrection action against a live-DEAD
// pet with a terminal-state error.
func EnsureActionable(live decay.LiveStats) error {
	if live.IsDead {
		return model.Terminalf("pet is dead; use a %s first", model.ItemSoulStone)
	}
	return nil
}

// ApplyInteraction validates and computes the checkpoint rewrite for a
// FEED, CLEAN, or HEAL interaction against the given live stats.
func ApplyInteraction(live decay.LiveStats, kind model.InteractionType, amount float64) (Change, error) {
	if err := model.ValidateInteractionType(kind); err != nil {
		return Change{}, model.Invalidf("%s", err)
	}
	if err := EnsureActionable(live); err != nil {
		return Change{}, err
	}
	if amount == 0 {
		amount = DefaultAmount
	}
	if amount < MinAmount || amount > MaxAmount {
		return Change{}, model.Invalidf("amount must be between %v and %v", MinAmount, MaxAmount)
	}

	// Feed/clean never cure: a live-SICK pet stays SICK until healed.
	ch := Change{
		Hunger:    live.Hunger,
		Happiness: live.Happiness,
		Hygiene:   live.Hygiene,
		LifeState: persistedState(live),
	}

	switch kind {
	case model.InteractFeed:
		ch.Hunger = clamp(ch.Hunger + amount)
		ch.Happiness = clamp(ch.Happiness + CareHappinessBonus)
	case model.InteractClean:
		ch.Hygiene = clamp(ch.Hygiene + amount)
		ch.Happiness = clamp(ch.Happiness + CareHappinessBonus)
	case model.InteractHeal:
		if !live.IsSick {
			return Change{}, model.Preconditionf("pet is not sick")
		}
		ch.LifeState = model.LifeAlive
		ch.Happiness = clamp(ch.Happiness + HealHappinessBonus)
	}
	return ch, nil
}

// Revive computes the resurrection rewrite. Fails unless the pet is
// live-DEAD.
func Revive(live decay.LiveStats) (Change, error) {
	if !live.IsDead {
		return Change{}, model.Preconditionf("pet is not dead")
	}
	return Change{
		Hunger:    ReviveBaseline,
		Happiness: ReviveBaseline,
		Hygiene:   ReviveBaseline,
		LifeState: model.LifeAlive,
	}, nil
}

// PersistedState returns the life state to write back for an operation that
// implies no transition: live sickness is persisted so a refreshed decay
// clock cannot silently cure the pet.
func PersistedState(live decay.LiveStats) model.LifeState {
	return persistedState(live)
}

func persistedState(live decay.LiveStats) model.LifeState {
	if live.IsSick {
		return model.LifeSick
	}
	return model.LifeAlive
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
