package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage is the coarse evolution tier of a pet, derived purely from its level.
// Stages only ever move forward over a pet's life.
type Stage string

const (
	StageTamago Stage = "TAMAGO"
	StageChibi  Stage = "CHIBI"
	StageGenin  Stage = "GENIN"
	StageChunin Stage = "CHUNIN"
	StageJonin  Stage = "JONIN"
	StageKage   Stage = "KAGE"
)

// LifeState is the persisted health baseline of a pet. The live state derived
// from elapsed time may differ; decay only ever moves it downward.
type LifeState string

const (
	LifeAlive LifeState = "ALIVE"
	LifeSick  LifeState = "SICK"
	LifeDead  LifeState = "DEAD"
)

// Pet is the stored checkpoint for one creature. Condition values
// (hunger/happiness/hygiene) are only ever written at the moment of an
// interaction or sync; between writes the true condition is a deterministic
// function of elapsed time since LastInteractionAt.
type Pet struct {
	ID                uuid.UUID `json:"id"`
	OwnerID           uuid.UUID `json:"owner_id"`
	Name              string    `json:"name"`
	Level             int       `json:"level"`
	XP                int       `json:"xp"`
	Stage             Stage     `json:"stage"`
	EvolutionVariant  *string   `json:"evolution_variant,omitempty"`
	Hunger            float64   `json:"hunger"`
	Happiness         float64   `json:"happiness"`
	Hygiene           float64   `json:"hygiene"`
	LifeState         LifeState `json:"life_state"`
	BirthDate         time.Time `json:"birth_date"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
	LastStepSyncAt    time.Time `json:"last_step_sync_at"`
}

// InteractionType enumerates the direct owner interactions.
type InteractionType string

const (
	InteractFeed  InteractionType = "FEED"
	InteractClean InteractionType = "CLEAN"
	InteractHeal  InteractionType = "HEAL"
)

// ValidateInteractionType rejects unknown interaction kinds.
func ValidateInteractionType(t InteractionType) error {
	switch t {
	case InteractFeed, InteractClean, InteractHeal:
		return nil
	default:
		return fmt.Errorf("unknown interaction type %q", t)
	}
}

// MaxPetNameLen bounds the display name; anything longer is caller garbage.
const MaxPetNameLen = 64

// ValidatePetName checks the display name. Empty is allowed — the facade
// substitutes the default name.
func ValidatePetName(name string) error {
	if len(name) > MaxPetNameLen {
		return fmt.Errorf("name exceeds maximum length of %d characters", MaxPetNameLen)
	}
	return nil
}
