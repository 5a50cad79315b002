package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Owner is an account holding the Koban balance. One pet per owner.
type Owner struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	KobanBalance int       `json:"koban_balance"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InventoryEntry is one (owner, item type) stack. Quantity is always positive;
// an entry that would reach zero is deleted instead of retained.
type InventoryEntry struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	ItemType  ItemType  `json:"item_type"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateEmail performs a structural check only; deliverability is not our
// problem.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email exceeds maximum length of 254 characters")
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("email is malformed")
	}
	return nil
}

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 8

// ValidatePassword enforces the minimum length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}
	return nil
}
