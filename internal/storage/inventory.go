package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/odomo-app/odomo/internal/model"
)

// ListInventory returns the owner's inventory entries ordered by item type.
// Entries always have positive quantity; zero-quantity stacks are deleted on
// consumption, never listed.
func (db *DB) ListInventory(ctx context.Context, ownerID uuid.UUID) ([]model.InventoryEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT owner_id, item_type, quantity, updated_at
		 FROM inventory_entries WHERE owner_id = $1 ORDER BY item_type ASC`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list inventory: %w", err)
	}
	defer rows.Close()

	var entries []model.InventoryEntry
	for rows.Next() {
		var e model.InventoryEntry
		var itemType string
		if err := rows.Scan(&e.OwnerID, &itemType, &e.Quantity, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan inventory entry: %w", err)
		}
		e.ItemType = model.ItemType(itemType)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
