package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrDuplicate is returned when a uniqueness constraint rejects an insert
// (owner already has a pet, email already registered).
var ErrDuplicate = errors.New("storage: duplicate")

// ErrInsufficientFunds is returned when a debit would take a balance negative.
// The balance is left untouched.
var ErrInsufficientFunds = errors.New("storage: insufficient funds")

// ErrInsufficientQuantity is returned when a consumption finds no inventory
// entry for the item. Quantity zero is never stored, so entry presence is the
// whole check.
var ErrInsufficientQuantity = errors.New("storage: insufficient quantity")
