package models

import "slices"

// Identity is how a transport names a chat user
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Player represents a seat in a running game
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Alive bool   `json:"alive"`
	Items []Item `json:"items,omitempty"`
}

// Faction returns the faction of the player's role
func (p *Player) Faction() Faction {
	return p.Role.Faction()
}

// HasItem reports whether the player carries the item
func (p *Player) HasItem(item Item) bool {
	return slices.Contains(p.Items, item)
}

// GiveItem adds an item to the player's inventory
func (p *Player) GiveItem(item Item) {
	p.Items = append(p.Items, item)
}

// TakeItem removes one copy of the item, reporting whether it was held
func (p *Player) TakeItem(item Item) bool {
	i := slices.Index(p.Items, item)
	if i < 0 {
		return false
	}
	p.Items = slices.Delete(p.Items, i, i+1)
	if len(p.Items) == 0 {
		p.Items = nil
	}
	return true
}

// TransferableItems returns the items that move to a successor on removal
func (p *Player) TransferableItems() []Item {
	var out []Item
	for _, it := range p.Items {
		if it.Transferable() {
			out = append(out, it)
		}
	}
	return out
}
