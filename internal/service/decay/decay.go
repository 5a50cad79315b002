// Package decay reconstructs a pet's live condition from its stored
// checkpoint and elapsed wall-clock time.
//
// Nothing here is persisted and nothing here advances the checkpoint: the
// computation is pure and idempotent, so it can be run on every read. The
// decay clock only resets when a mutating operation rewrites the checkpoint.
package decay

import (
	"fmt"
	"math"
	"time"

	"github.com/odomo-app/odomo/internal/model"
)

// Tuning holds the decay constants. Injected at construction so tests can
// substitute alternate rates instead of patching package literals.
type Tuning struct {
	HungerPerHour    float64
	HappinessPerHour float64
	HygienePerHour   float64
	SickAfter        time.Duration
	DeadAfter        time.Duration
}

// DefaultTuning returns the production decay constants.
func DefaultTuning() Tuning {
	return Tuning{
		HungerPerHour:    2.5,
		HappinessPerHour: 1.5,
		HygienePerHour:   2.0,
		SickAfter:        16 * time.Hour,
		DeadAfter:        32 * time.Hour,
	}
}

// Validate checks the tuning invariants. DeadAfter must exceed SickAfter or
// the SICK window would be unreachable.
func (t Tuning) Validate() error {
	if t.HungerPerHour < 0 || t.HappinessPerHour < 0 || t.HygienePerHour < 0 {
		return fmt.Errorf("decay: rates must be non-negative")
	}
	if t.SickAfter <= 0 || t.DeadAfter <= 0 {
		return fmt.Errorf("decay: thresholds must be positive")
	}
	if t.DeadAfter <= t.SickAfter {
		return fmt.Errorf("decay: DeadAfter (%s) must exceed SickAfter (%s)", t.DeadAfter, t.SickAfter)
	}
	return nil
}

// Model computes live stats from stored checkpoints.
type Model struct {
	tuning Tuning
}

// New creates a Model, validating the tuning.
func New(t Tuning) (*Model, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Model{tuning: t}, nil
}

// AttentionThreshold is the live-stat floor below which a pet needs attention.
const AttentionThreshold = 30.0

// LiveStats is the derived condition of a pet at a point in time.
type LiveStats struct {
	Hunger    float64
	Happiness float64
	Hygiene   float64
	LifeState model.LifeState

	HoursSinceInteraction float64
	NeedsAttention        bool
	IsSick                bool
	IsDead                bool
}

// ComputeLive derives the live condition of pet at now.
//
// Elapsed time is clamped to zero so a backwards clock skew never inflates
// stats. Decay never upgrades a stored DEAD or SICK state back to ALIVE —
// only explicit interactions rewrite the stored state.
func (m *Model) ComputeLive(pet model.Pet, now time.Time) LiveStats {
	elapsed := now.Sub(pet.LastInteractionAt)
	if elapsed < 0 {
		elapsed = 0
	}
	hours := elapsed.Hours()

	state := pet.LifeState
	if elapsed > m.tuning.DeadAfter {
		state = model.LifeDead
	} else if elapsed > m.tuning.SickAfter && state == model.LifeAlive {
		state = model.LifeSick
	}

	hunger := round1(decayed(pet.Hunger, m.tuning.HungerPerHour, hours))
	happiness := round1(decayed(pet.Happiness, m.tuning.HappinessPerHour, hours))
	hygiene := round1(decayed(pet.Hygiene, m.tuning.HygienePerHour, hours))

	return LiveStats{
		Hunger:                hunger,
		Happiness:             happiness,
		Hygiene:               hygiene,
		LifeState:             state,
		HoursSinceInteraction: round1(hours),
		NeedsAttention:        hunger < AttentionThreshold || happiness < AttentionThreshold || hygiene < AttentionThreshold,
		IsSick:                state == model.LifeSick,
		IsDead:                state == model.LifeDead,
	}
}

// Stats builds the full API stats view for pet at now.
func (m *Model) Stats(pet model.Pet, now time.Time) model.PetStats {
	live := m.ComputeLive(pet, now)
	return model.PetStats{
		ID:                pet.ID,
		OwnerID:           pet.OwnerID,
		Name:              pet.Name,
		Level:             pet.Level,
		XP:                pet.XP,
		Stage:             pet.Stage,
		EvolutionVariant:  pet.EvolutionVariant,
		Hunger:            live.Hunger,
		Happiness:         live.Happiness,
		Hygiene:           live.Hygiene,
		LifeState:         live.LifeState,
		BirthDate:         pet.BirthDate,
		LastInteractionAt: pet.LastInteractionAt,
		LastStepSyncAt:    pet.LastStepSyncAt,

		TimeSinceLastInteraction: live.HoursSinceInteraction,
		NeedsAttention:           live.NeedsAttention,
		IsSick:                   live.IsSick,
		IsDead:                   live.IsDead,
	}
}

func decayed(stored, ratePerHour, hours float64) float64 {
	v := stored - ratePerHour*hours
	if v < 0 {
		return 0
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
