package model

import "fmt"

// ItemType identifies a purchasable item.
type ItemType string

const (
	ItemOnigiri    ItemType = "ONIGIRI"
	ItemRamen      ItemType = "RAMEN"
	ItemBentoRoyal ItemType = "BENTO_ROYAL"
	ItemSoap       ItemType = "SOAP"
	ItemMedicine   ItemType = "MEDICINE"
	ItemSoulStone  ItemType = "SOUL_STONE"
)

// ItemClass is the effect category of an item. The resolver switches on it
// exhaustively, so adding a class without handling it is caught in review
// rather than silently ignored at runtime.
type ItemClass string

const (
	// ClassConsumable items add stat deltas and imply no life transition.
	ClassConsumable ItemClass = "consumable"
	// ClassHealing items cure a live-SICK pet.
	ClassHealing ItemClass = "healing"
	// ClassResurrection items revive a live-DEAD pet at midpoint baselines.
	ClassResurrection ItemClass = "resurrection"
)

// ValidateItemType rejects unknown item types.
func ValidateItemType(t ItemType) error {
	switch t {
	case ItemOnigiri, ItemRamen, ItemBentoRoyal, ItemSoap, ItemMedicine, ItemSoulStone:
		return nil
	default:
		return fmt.Errorf("unknown item type %q", t)
	}
}
