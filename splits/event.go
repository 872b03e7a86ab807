package splits

import (
	"fmt"

	"ffsplit/game"
)

// EventKind says what a Tracker observed.
type EventKind uint8

const (
	NoEvent EventKind = iota

	// BattleEnded fires when the battle scene unloads, the later of the two
	// battle timings.
	BattleEnded

	// BattleWon fires on the death animation of a won battle, before the
	// scene unloads.
	BattleWon

	// ItemPickup fires the first time a key item or vehicle is observed in
	// the inventory.
	ItemPickup

	// RunStart fires when a new run begins. The driver generates it from
	// the title fade, never the Tracker.
	RunStart
)

func (k EventKind) String() string {
	switch k {
	case NoEvent:
		return "NoEvent"
	case BattleEnded:
		return "BattleEnded"
	case BattleWon:
		return "BattleWon"
	case ItemPickup:
		return "ItemPickup"
	case RunStart:
		return "RunStart"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is one observation. It is comparable and doubles as the dedup key:
// a Tracker never emits the same Event twice.
type Event struct {
	Kind    EventKind
	Monster game.Monster // zero unless a battle kind
	Item    game.Pickup  // zero unless ItemPickup
}

func (e Event) String() string {
	switch e.Kind {
	case BattleEnded, BattleWon:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Monster)
	case ItemPickup:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Item)
	}
	return e.Kind.String()
}
