package splits

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"ffsplit/game"
	"ffsplit/process"
)

var _ = Describe("Tracker", func() {
	var (
		ctrl    *gomock.Controller
		src     *MockSource
		tracker *Tracker
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		src = NewMockSource(ctrl)
		tracker = NewTracker(src)
	})

	poll := func() (Event, bool) {
		GinkgoHelper()
		return tracker.Poll(nil)
	}

	quietPoll := func() {
		GinkgoHelper()
		_, ok := poll()
		Expect(ok).To(BeFalse())
	}

	yieldItems := func(items ...game.Pickup) func(process.ProcessRead, func(game.Pickup)) error {
		return func(_ process.ProcessRead, yield func(game.Pickup)) error {
			for _, item := range items {
				yield(item)
			}
			return nil
		}
	}

	expectInventory := func() {
		src.EXPECT().KeyItems(gomock.Any(), gomock.Any()).Return(nil)
		src.EXPECT().Vehicles(gomock.Any(), gomock.Any()).Return(nil)
	}

	expectIdle := func() {
		src.EXPECT().BattleActive(gomock.Any()).Return(false, nil)
		expectInventory()
	}

	expectBattleStart := func(m game.Monster) {
		src.EXPECT().BattleActive(gomock.Any()).Return(true, nil)
		src.EXPECT().Encounter(gomock.Any()).Return(m, nil)
		expectInventory()
	}

	expectBattleRunning := func(playing bool, result game.BattleResult) {
		src.EXPECT().BattleActive(gomock.Any()).Return(true, nil)
		src.EXPECT().BattlePlaying(gomock.Any()).Return(playing, nil)
		src.EXPECT().BattleResult(gomock.Any()).Return(result, nil)
		expectInventory()
	}

	// expectWinEdge is a running poll where the playing flag drops with the
	// result at Win. withInventory is true when no event will come out of
	// it and the poll falls through to the inventory scan.
	expectWinEdge := func(withInventory bool) {
		src.EXPECT().BattleActive(gomock.Any()).Return(true, nil)
		src.EXPECT().BattlePlaying(gomock.Any()).Return(false, nil)
		src.EXPECT().BattleResult(gomock.Any()).Return(game.BattleResultWin, nil)
		if withInventory {
			expectInventory()
		}
	}

	expectEndEdge := func(playing, withInventory bool) {
		src.EXPECT().BattleActive(gomock.Any()).Return(false, nil)
		src.EXPECT().BattlePlaying(gomock.Any()).Return(playing, nil)
		if withInventory {
			expectInventory()
		}
	}

	It("stays quiet while idle", func() {
		expectIdle()

		ev, ok := poll()
		Expect(ok).To(BeFalse())
		Expect(ev.Kind).To(Equal(NoEvent))
	})

	It("splits a boss kill at the death animation", func() {
		expectIdle()
		quietPoll()

		expectBattleStart(game.MonsterGarland)
		quietPoll()

		expectBattleRunning(true, game.BattleResultNone)
		quietPoll()

		expectWinEdge(false)
		ev, ok := poll()
		Expect(ok).To(BeTrue())
		Expect(ev).To(Equal(Event{Kind: BattleWon, Monster: game.MonsterGarland}))
	})

	It("emits the scene unload after the win", func() {
		expectIdle()
		quietPoll()
		expectBattleStart(game.MonsterGarland)
		quietPoll()
		expectBattleRunning(true, game.BattleResultNone)
		quietPoll()
		expectWinEdge(false)
		_, ok := poll()
		Expect(ok).To(BeTrue())

		expectEndEdge(false, false)
		ev, ok := poll()
		Expect(ok).To(BeTrue())
		Expect(ev).To(Equal(Event{Kind: BattleEnded, Monster: game.MonsterGarland}))
	})

	It("splits a lost or escaped battle only at the unload", func() {
		expectIdle()
		quietPoll()
		expectBattleStart(game.MonsterPirates)
		quietPoll()
		expectBattleRunning(true, game.BattleResultNone)
		quietPoll()

		// Scene unloads while the event command is still playing out.
		expectEndEdge(true, false)
		ev, ok := poll()
		Expect(ok).To(BeTrue())
		Expect(ev).To(Equal(Event{Kind: BattleEnded, Monster: game.MonsterPirates}))
	})

	It("treats both flags dropping together as a reset", func() {
		expectIdle()
		quietPoll()
		expectBattleStart(game.MonsterAstos)
		quietPoll()
		expectBattleRunning(true, game.BattleResultNone)
		quietPoll()

		expectEndEdge(false, true)
		quietPoll()

		// The rematch still splits: nothing was emitted for the reset one.
		expectBattleStart(game.MonsterAstos)
		quietPoll()
		expectBattleRunning(true, game.BattleResultNone)
		quietPoll()
		expectWinEdge(false)
		ev, ok := poll()
		Expect(ok).To(BeTrue())
		Expect(ev).To(Equal(Event{Kind: BattleWon, Monster: game.MonsterAstos}))
	})

	It("suppresses repeat events for the same encounter", func() {
		expectIdle()
		quietPoll()
		expectBattleStart(game.MonsterGarland)
		quietPoll()
		expectBattleRunning(true, game.BattleResultNone)
		quietPoll()
		expectWinEdge(false)
		_, ok := poll()
		Expect(ok).To(BeTrue())
		expectEndEdge(false, false)
		_, ok = poll()
		Expect(ok).To(BeTrue())

		// Grinding the same fight again generates nothing new.
		expectBattleStart(game.MonsterGarland)
		quietPoll()
		expectBattleRunning(true, game.BattleResultNone)
		quietPoll()
		expectWinEdge(true)
		quietPoll()
		expectEndEdge(false, true)
		quietPoll()
	})

	It("delays the Chaos split past the death animation", func() {
		expectIdle()
		quietPoll()
		expectBattleStart(game.MonsterChaos)
		quietPoll()
		expectBattleRunning(true, game.BattleResultNone)
		quietPoll()

		// Death animation: the split is armed, not emitted.
		expectWinEdge(true)
		quietPoll()

		// The animation plays out for 112 more polls.
		src.EXPECT().BattleActive(gomock.Any()).Return(true, nil).Times(112)
		src.EXPECT().BattlePlaying(gomock.Any()).Return(false, nil).Times(112)
		src.EXPECT().BattleResult(gomock.Any()).Return(game.BattleResultWin, nil).Times(112)
		src.EXPECT().KeyItems(gomock.Any(), gomock.Any()).Return(nil).Times(112)
		src.EXPECT().Vehicles(gomock.Any(), gomock.Any()).Return(nil).Times(112)
		for i := 0; i < 112; i++ {
			quietPoll()
		}

		// Tick 113 fires without touching the process at all.
		ev, ok := poll()
		Expect(ok).To(BeTrue())
		Expect(ev).To(Equal(Event{Kind: BattleWon, Monster: game.MonsterChaos}))

		// The eventual unload never produces a second event.
		expectEndEdge(false, true)
		quietPoll()
	})

	It("stays quiet when the encounter read fails", func() {
		expectIdle()
		quietPoll()

		src.EXPECT().BattleActive(gomock.Any()).Return(true, nil)
		src.EXPECT().Encounter(gomock.Any()).Return(game.Monster(0), errors.New("torn read"))
		expectInventory()
		quietPoll()

		// Without a recorded encounter the win edge cannot split.
		expectBattleRunning(true, game.BattleResultNone)
		quietPoll()
		expectWinEdge(true)
		quietPoll()
	})

	It("keeps watcher state across unreadable polls", func() {
		expectIdle()
		quietPoll()

		src.EXPECT().BattleActive(gomock.Any()).Return(false, errors.New("process gone"))
		expectInventory()
		quietPoll()

		// The start edge is still seen relative to the last good sample.
		expectBattleStart(game.MonsterGarland)
		quietPoll()
	})

	Describe("inventory", func() {
		BeforeEach(func() {
			src.EXPECT().BattleActive(gomock.Any()).Return(false, nil).AnyTimes()
		})

		It("splits pickups once each, one per poll, key items first", func() {
			src.EXPECT().KeyItems(gomock.Any(), gomock.Any()).
				DoAndReturn(yieldItems(game.PickupLute, game.PickupMysticKey)).Times(4)
			src.EXPECT().Vehicles(gomock.Any(), gomock.Any()).
				DoAndReturn(yieldItems(game.PickupShip)).Times(2)

			ev, ok := poll()
			Expect(ok).To(BeTrue())
			Expect(ev).To(Equal(Event{Kind: ItemPickup, Item: game.PickupLute}))

			ev, ok = poll()
			Expect(ok).To(BeTrue())
			Expect(ev).To(Equal(Event{Kind: ItemPickup, Item: game.PickupMysticKey}))

			ev, ok = poll()
			Expect(ok).To(BeTrue())
			Expect(ev).To(Equal(Event{Kind: ItemPickup, Item: game.PickupShip}))

			quietPoll()
		})

		It("discards candidates from a failed walk", func() {
			gomock.InOrder(
				src.EXPECT().KeyItems(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ process.ProcessRead, yield func(game.Pickup)) error {
						yield(game.PickupLute)
						return errors.New("torn read")
					}),
				src.EXPECT().KeyItems(gomock.Any(), gomock.Any()).
					DoAndReturn(yieldItems(game.PickupLute)),
			)
			src.EXPECT().Vehicles(gomock.Any(), gomock.Any()).Return(nil)

			quietPoll()

			ev, ok := poll()
			Expect(ok).To(BeTrue())
			Expect(ev).To(Equal(Event{Kind: ItemPickup, Item: game.PickupLute}))
		})

		It("ignores ids that do not fit the seen set", func() {
			src.EXPECT().KeyItems(gomock.Any(), gomock.Any()).
				DoAndReturn(yieldItems(game.Pickup(200), game.PickupLute))

			ev, ok := poll()
			Expect(ok).To(BeTrue())
			Expect(ev).To(Equal(Event{Kind: ItemPickup, Item: game.PickupLute}))
		})
	})
})

var _ = Describe("Event", func() {
	It("prints battle events with the monster", func() {
		Expect(Event{Kind: BattleWon, Monster: game.MonsterChaos}.String()).
			To(Equal("BattleWon(Chaos)"))
		Expect(Event{Kind: BattleEnded, Monster: game.MonsterLich2}.String()).
			To(Equal("BattleEnded(Lich2)"))
	})

	It("prints pickups with the item", func() {
		Expect(Event{Kind: ItemPickup, Item: game.PickupOxyale}.String()).
			To(Equal("ItemPickup(Oxyale)"))
	})

	It("prints bare kinds otherwise", func() {
		Expect(Event{Kind: RunStart}.String()).To(Equal("RunStart"))
		Expect(Event{}.String()).To(Equal("NoEvent"))
	})
})
