package watcher

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Watcher", func() {
	var w Watcher[int]

	BeforeEach(func() {
		w = Watcher[int]{}
	})

	It("has no pair before the first update", func() {
		_, ok := w.Pair()
		Expect(ok).To(BeFalse())
	})

	It("primes both sides on the first update", func() {
		w.Update(3)

		pair, ok := w.Pair()
		Expect(ok).To(BeTrue())
		Expect(pair.Old).To(Equal(3))
		Expect(pair.Current).To(Equal(3))
		Expect(pair.Changed()).To(BeFalse())
	})

	It("shifts current to old on later updates", func() {
		w.Update(1)
		w.Update(2)

		pair, _ := w.Pair()
		Expect(pair.Old).To(Equal(1))
		Expect(pair.Current).To(Equal(2))
		Expect(pair.Changed()).To(BeTrue())
	})

	It("sees no edge while the value holds steady", func() {
		w.Update(1)
		w.Update(1)

		pair, _ := w.Pair()
		Expect(pair.Changed()).To(BeFalse())
	})

	It("primes again after a reset", func() {
		w.Update(1)
		w.Reset()

		_, ok := w.Pair()
		Expect(ok).To(BeFalse())

		w.Update(9)
		pair, _ := w.Pair()
		Expect(pair.Changed()).To(BeFalse())
	})
})

var _ = Describe("Pair", func() {
	It("reports a rising edge", func() {
		p := Pair[bool]{Old: false, Current: true}
		Expect(p.Changed()).To(BeTrue())
		Expect(p.ChangedTo(true)).To(BeTrue())
		Expect(p.ChangedFrom(false)).To(BeTrue())
		Expect(p.ChangedFromTo(false, true)).To(BeTrue())
	})

	It("rejects the opposite direction", func() {
		p := Pair[bool]{Old: true, Current: false}
		Expect(p.ChangedTo(true)).To(BeFalse())
		Expect(p.ChangedFrom(false)).To(BeFalse())
		Expect(p.ChangedFromTo(false, true)).To(BeFalse())
	})

	It("treats a steady value as no edge", func() {
		p := Pair[int]{Old: 5, Current: 5}
		Expect(p.Changed()).To(BeFalse())
		Expect(p.ChangedTo(5)).To(BeFalse())
		Expect(p.ChangedFrom(5)).To(BeFalse())
		Expect(p.ChangedFromTo(5, 5)).To(BeFalse())
	})
})
