package ports

import (
	"context"

	"tilebot/internal/domain/world"
)

type ActionKind string

const (
	ActionMoveTo         ActionKind = "move_to"
	ActionUseItem        ActionKind = "use_item"
	ActionOpenContainer  ActionKind = "open_container"
	ActionCloseContainer ActionKind = "close_container"
)

// Action is one outbound command for the game server. Fields are used per
// kind: Target for move_to, ItemID for the item commands, Verb for use_item
// (e.g. "Drink", "Sip").
type Action struct {
	Kind   ActionKind  `json:"kind"`
	Target world.Coord `json:"target,omitempty"`
	ItemID int         `json:"item_id,omitempty"`
	Verb   string      `json:"verb,omitempty"`
}

// ActionSink consumes ordered action commands. Push never blocks beyond the
// transport's own limits; per-task waiting is done via task timeouts, not
// here.
type ActionSink interface {
	Push(ctx context.Context, a Action) error
}
