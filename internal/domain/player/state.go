package player

import "tilebot/internal/domain/world"

// Meter is a bounded gauge such as stamina. Value stays in [0, Max].
type Meter struct {
	Value int `json:"value"`
	Max   int `json:"max"`
}

// Content describes what a container currently holds.
type Content struct {
	Name  string `json:"name"`
	Units int    `json:"units"`
}

// Item is an inventory or equipment entry. LiquidContainer is a capability
// tag; Content is nil for items that hold nothing.
type Item struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	LiquidContainer bool     `json:"liquid_container"`
	Content         *Content `json:"content,omitempty"`
}

// Slot names used by the tasks.
const (
	SlotBelt = "belt"
)

// State is one agent's view of its own character. Owned by exactly one
// session; the runtime guarantees at most one task mutates it per tick.
type State struct {
	Pos       world.Coord      `json:"pos"`
	Meters    map[string]Meter `json:"meters"`
	Equipment map[string]Item  `json:"equipment"`
	// Belt holds the items inside the belt container; visible only after the
	// belt widget has been opened.
	Belt      []Item `json:"belt"`
	Inventory []Item `json:"inventory"`
	BeltOpen  bool   `json:"belt_open"`
}

func NewState() *State {
	return &State{
		Meters:    map[string]Meter{},
		Equipment: map[string]Item{},
	}
}

// Clone returns a deep copy with no shared maps, slices or content
// pointers, safe to read while the original keeps mutating.
func (s *State) Clone() *State {
	out := &State{
		Pos:       s.Pos,
		BeltOpen:  s.BeltOpen,
		Meters:    make(map[string]Meter, len(s.Meters)),
		Equipment: make(map[string]Item, len(s.Equipment)),
		Belt:      cloneItems(s.Belt),
		Inventory: cloneItems(s.Inventory),
	}
	for name, m := range s.Meters {
		out.Meters[name] = m
	}
	for slot, it := range s.Equipment {
		out.Equipment[slot] = cloneItem(it)
	}
	return out
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = cloneItem(it)
	}
	return out
}

func cloneItem(it Item) Item {
	if it.Content != nil {
		c := *it.Content
		it.Content = &c
	}
	return it
}

// Meter returns the named meter, zero-valued when absent.
func (s *State) Meter(name string) Meter {
	return s.Meters[name]
}

func (s *State) SetMeter(name string, value, max int) {
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}
	s.Meters[name] = Meter{Value: value, Max: max}
}

// ItemByID looks an item up across belt, inventory and equipment.
func (s *State) ItemByID(id int) (Item, bool) {
	for _, it := range s.Belt {
		if it.ID == id {
			return it, true
		}
	}
	for _, it := range s.Inventory {
		if it.ID == id {
			return it, true
		}
	}
	for _, it := range s.Equipment {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// ReplaceItem swaps the stored copy of an item, wherever it lives.
func (s *State) ReplaceItem(item Item) {
	for i := range s.Belt {
		if s.Belt[i].ID == item.ID {
			s.Belt[i] = item
			return
		}
	}
	for i := range s.Inventory {
		if s.Inventory[i].ID == item.ID {
			s.Inventory[i] = item
			return
		}
	}
	for slot, it := range s.Equipment {
		if it.ID == item.ID {
			s.Equipment[slot] = item
			return
		}
	}
}
