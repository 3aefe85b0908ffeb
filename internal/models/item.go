package models

// Item is something a player can carry
type Item string

const (
	// ItemGun can be fired once during the day and handed to other players
	ItemGun Item = "gun"
)

// Transferable reports whether the item can change hands
func (i Item) Transferable() bool {
	return i == ItemGun
}

// ParseItem maps user input to an item
func ParseItem(s string) (Item, bool) {
	switch s {
	case "gun":
		return ItemGun, true
	default:
		return "", false
	}
}
