// Package splits turns polled game state into split events. A Tracker owns
// the edge detection and dedup for one run; the driver owns poll timing,
// event routing, and run restarts (by constructing a fresh Tracker).
package splits

import (
	"fmt"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"ffsplit/game"
	"ffsplit/process"
	"ffsplit/watcher"
)

// chaosDeathTicks is the poll count between the final death animation
// starting and the accepted end-of-run moment, at the 60 Hz poll rate.
const chaosDeathTicks = 113

// pickupBits is the width of the seen bitset. Every known pickup id fits.
const pickupBits = 64

// Source is the game state a Tracker polls each tick. *game.Data implements
// it; tests substitute their own.
type Source interface {
	BattleActive(p process.ProcessRead) (bool, error)
	Encounter(p process.ProcessRead) (game.Monster, error)
	BattleResult(p process.ProcessRead) (game.BattleResult, error)
	BattlePlaying(p process.ProcessRead) (bool, error)
	KeyItems(p process.ProcessRead, yield func(game.Pickup)) error
	Vehicles(p process.ProcessRead, yield func(game.Pickup)) error
}

// Tracker is the split state machine for one run. Any accessor error means
// "unknown this poll": the affected watcher keeps its last sample and the
// next poll tries again. Tracker state only resets by building a new one.
type Tracker struct {
	src Source
	log *logger.Logger

	battle  watcher.Watcher[bool]
	playing watcher.Watcher[bool]
	result  watcher.Watcher[game.BattleResult]
	delayed Delayed

	monster     game.Monster
	haveMonster bool

	seen  uint64
	fired map[Event]struct{}
}

func NewTracker(src Source) *Tracker {
	for _, p := range game.KnownPickups() {
		if uint32(p) >= pickupBits {
			panic(fmt.Sprintf("splits: pickup id %d does not fit the seen bitset", uint32(p)))
		}
	}
	return &Tracker{
		src:   src,
		log:   logger.NewLogger(coloransi.Color(coloransi.White, coloransi.ColorPurple, "splits")),
		fired: make(map[Event]struct{}),
	}
}

// InBattle reports the last observed battle flag. False until the first
// successful battle read.
func (t *Tracker) InBattle() bool {
	pair, ok := t.battle.Pair()
	return ok && pair.Current
}

// Encounter returns the party leader recorded for the current battle.
func (t *Tracker) Encounter() (game.Monster, bool) {
	return t.monster, t.haveMonster
}

// Poll advances the machine one tick and returns at most one event. The
// delayed action always ticks first; when it fires, everything else waits
// for the next poll.
func (t *Tracker) Poll(p process.ProcessRead) (Event, bool) {
	if ev, ok := t.delayed.Tick(); ok {
		if ev, ok := t.fire(ev); ok {
			return ev, true
		}
	}

	if ev, ok := t.pollBattle(p); ok {
		return ev, true
	}
	return t.pollInventory(p)
}

func (t *Tracker) pollBattle(p process.ProcessRead) (Event, bool) {
	active, err := t.src.BattleActive(p)
	if err != nil {
		t.log.Debugln("battle flag unreadable:", err)
		return Event{}, false
	}
	t.battle.Update(active)
	pair, _ := t.battle.Pair()

	switch {
	case !active && !pair.Changed():
		// out of battle and nothing moving

	case pair.ChangedTo(true):
		t.recordEncounter(p)

	case pair.ChangedTo(false):
		return t.battleEnd(p)

	default:
		return t.battleRunning(p)
	}
	return Event{}, false
}

// recordEncounter notes which party the battle started against. No event;
// the id is only consumed by the end-of-battle emits.
func (t *Tracker) recordEncounter(p process.ProcessRead) {
	m, err := t.src.Encounter(p)
	if err != nil {
		t.log.Warn("battle start, encounter unreadable:", err)
		t.haveMonster = false
		return
	}
	t.monster = m
	t.haveMonster = true
	t.log.Infoln("battle start:", m)
}

// battleRunning watches for the death animation: a playing true to false
// edge while the battle scene is still loaded and the result reads Win.
func (t *Tracker) battleRunning(p process.ProcessRead) (Event, bool) {
	playing, err := t.src.BattlePlaying(p)
	if err != nil {
		t.log.Debugln("playing flag unreadable:", err)
		return Event{}, false
	}
	result, err := t.src.BattleResult(p)
	if err != nil {
		t.log.Debugln("battle result unreadable:", err)
		return Event{}, false
	}

	t.playing.Update(playing)
	t.result.Update(result)
	if rpair, ok := t.result.Pair(); ok && rpair.Changed() {
		t.log.Debugln("battle result:", rpair.Current)
	}

	ppair, _ := t.playing.Pair()
	if !ppair.ChangedFromTo(true, false) || result != game.BattleResultWin {
		return Event{}, false
	}
	if !t.haveMonster {
		return Event{}, false
	}

	if t.monster == game.MonsterChaos {
		// The final split lands a fixed delay after the death animation,
		// not at the scene unload.
		if !t.delayed.Armed() {
			t.log.Infoln("Chaos death animation, final split in", chaosDeathTicks, "ticks")
			t.delayed.Arm(chaosDeathTicks, Event{Kind: BattleWon, Monster: t.monster})
		}
		return Event{}, false
	}
	return t.fire(Event{Kind: BattleWon, Monster: t.monster})
}

// battleEnd handles the scene unload edge. A playing flag that dropped on
// the same poll means the battle was reset from the menu, not finished.
func (t *Tracker) battleEnd(p process.ProcessRead) (Event, bool) {
	playing, err := t.src.BattlePlaying(p)
	if err != nil {
		t.log.Debugln("playing flag unreadable:", err)
	} else {
		t.playing.Update(playing)
		if ppair, ok := t.playing.Pair(); ok && ppair.ChangedFromTo(true, false) {
			if t.haveMonster {
				t.log.Infoln("battle reset, dropping", t.monster)
			}
			t.haveMonster = false
			return Event{}, false
		}
	}

	if !t.haveMonster {
		return Event{}, false
	}
	monster := t.monster
	t.haveMonster = false
	t.log.Infoln("battle end:", monster)

	if monster == game.MonsterChaos {
		// Chaos only ever splits through the delayed action.
		return Event{}, false
	}
	return t.fire(Event{Kind: BattleEnded, Monster: monster})
}

// pollInventory emits at most one pickup per poll: the first id in key
// item, then vehicle, order that has not been seen this run.
func (t *Tracker) pollInventory(p process.ProcessRead) (Event, bool) {
	scans := []func(process.ProcessRead, func(game.Pickup)) error{
		t.src.KeyItems,
		t.src.Vehicles,
	}
	for _, scan := range scans {
		item, ok := t.scanUnseen(p, scan)
		if !ok {
			continue
		}
		t.seen |= 1 << uint32(item)
		t.log.Infoln("pickup:", item)
		if ev, ok := t.fire(Event{Kind: ItemPickup, Item: item}); ok {
			return ev, true
		}
	}
	return Event{}, false
}

// scanUnseen walks one inventory source for the first unseen id. A failed
// walk discards its candidate; a partial inventory is never trusted.
func (t *Tracker) scanUnseen(p process.ProcessRead, scan func(process.ProcessRead, func(game.Pickup)) error) (game.Pickup, bool) {
	var found game.Pickup
	var have bool

	err := scan(p, func(item game.Pickup) {
		if have {
			return
		}
		if uint32(item) >= pickupBits {
			t.log.Warn("pickup id out of range:", item)
			return
		}
		if t.seen&(1<<uint32(item)) == 0 {
			found = item
			have = true
		}
	})
	if err != nil {
		t.log.Debugln("inventory unreadable:", err)
		return 0, false
	}
	return found, have
}

// fire passes a candidate through the dedup set. A swallowed event behaves
// as if it was never generated.
func (t *Tracker) fire(ev Event) (Event, bool) {
	if _, dup := t.fired[ev]; dup {
		t.log.Debugln("suppressing duplicate", ev)
		return Event{}, false
	}
	t.fired[ev] = struct{}{}
	return ev, true
}
