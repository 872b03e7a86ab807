package splits

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ffsplit/game"
)

var _ = Describe("Delayed", func() {
	var d Delayed

	ev := Event{Kind: BattleWon, Monster: game.MonsterChaos}

	BeforeEach(func() {
		d = Delayed{}
	})

	It("stays quiet until armed", func() {
		Expect(d.Armed()).To(BeFalse())
		_, ok := d.Tick()
		Expect(ok).To(BeFalse())
	})

	It("fires on the next tick when armed with zero", func() {
		d.Arm(0, ev)
		Expect(d.Armed()).To(BeTrue())

		got, ok := d.Tick()
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(ev))
	})

	It("counts down the requested ticks", func() {
		d.Arm(3, ev)

		_, ok := d.Tick()
		Expect(ok).To(BeFalse())
		_, ok = d.Tick()
		Expect(ok).To(BeFalse())

		got, ok := d.Tick()
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(ev))
	})

	It("disarms after firing", func() {
		d.Arm(0, ev)
		_, ok := d.Tick()
		Expect(ok).To(BeTrue())

		Expect(d.Armed()).To(BeFalse())
		_, ok = d.Tick()
		Expect(ok).To(BeFalse())
	})

	It("panics when armed twice", func() {
		d.Arm(10, ev)
		Expect(func() { d.Arm(5, ev) }).To(Panic())
	})
})
