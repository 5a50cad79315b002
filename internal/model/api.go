package model

import (
	"time"

	"github.com/google/uuid"
)

// PetStats is the live view of a pet: stored checkpoint plus the condition
// values derived from elapsed time. It is recomputed on every read and never
// persisted.
type PetStats struct {
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

	TimeSinceLastInteraction float64 `json:"time_since_last_interaction"` // hours, one decimal
	NeedsAttention           bool    `json:"needs_attention"`
	IsSick                   bool    `json:"is_sick"`
	IsDead                   bool    `json:"is_dead"`
}

// CreatePetRequest is the body for POST /v1/pet.
type CreatePetRequest struct {
	Name string `json:"name"`
}

// InteractRequest is the body for POST /v1/pet/interact.
// Amount is optional; zero means "use the default".
type InteractRequest struct {
	Type   InteractionType `json:"type"`
	Amount float64         `json:"amount,omitempty"`
}

// AddExperienceRequest is the body for POST /v1/pet/xp.
type AddExperienceRequest struct {
	Amount int `json:"amount"`
}

// BuyItemRequest is the body for POST /v1/shop/buy.
type BuyItemRequest struct {
	ItemType ItemType `json:"item_type"`
	Quantity int      `json:"quantity"`
}

// BuyItemResponse reports the committed purchase.
type BuyItemResponse struct {
	ItemType        ItemType `json:"item_type"`
	QuantityBought  int      `json:"quantity_bought"`
	TotalCost       int      `json:"total_cost"`
	NewKobanBalance int      `json:"new_koban_balance"`
	NewQuantity     int      `json:"new_quantity"`
}

// UseItemRequest is the body for POST /v1/items/use.
type UseItemRequest struct {
	ItemType ItemType `json:"item_type"`
}

// UseItemResponse reports the committed consumption and the fresh live stats.
type UseItemResponse struct {
	ItemUsed          ItemType `json:"item_used"`
	RemainingQuantity int      `json:"remaining_quantity"`
	Pet               PetStats `json:"pet"`
}

// SyncStepsRequest is the body for POST /v1/sync/steps.
type SyncStepsRequest struct {
	Steps int `json:"steps"`
}

// SyncStepsResponse reports the progression and currency outcome of a sync.
type SyncStepsResponse struct {
	XPGained        int      `json:"xp_gained"`
	KobansGained    int      `json:"kobans_gained"`
	NewKobanBalance int      `json:"new_koban_balance"`
	LeveledUp       bool     `json:"leveled_up"`
	StageEvolved    bool     `json:"stage_evolved"`
	Pet             PetStats `json:"pet"`
}

// SignupRequest is the body for POST /auth/signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthTokenResponse is returned by signup and login.
type AuthTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// APIResponse is the standard success envelope.
type APIResponse struct {
	Data any          `json:"data,omitempty"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard error response envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ResponseMeta contains request metadata included in every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorCode constants for transport-level API error codes. Domain codes from
// ErrorCode are passed through verbatim.
const (
	ErrCodeInvalidInput  = string(CodeInvalidInput)
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeNotFound      = string(CodeNotFound)
	ErrCodeConflict      = string(CodeConflict)
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeRateLimited   = "RATE_LIMITED"
)
