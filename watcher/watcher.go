// Package watcher detects edges in values polled from game memory. A
// Watcher keeps the previous sample next to the current one so pollers can
// ask "did this flip from X to Y since last tick" without carrying the
// bookkeeping themselves.
package watcher

// Pair is one sample step: the value from the previous update next to the
// current one.
type Pair[T comparable] struct {
	Old     T
	Current T
}

// Changed reports whether the value moved this step.
func (p Pair[T]) Changed() bool {
	return p.Old != p.Current
}

// ChangedTo reports a transition into v.
func (p Pair[T]) ChangedTo(v T) bool {
	return p.Old != v && p.Current == v
}

// ChangedFrom reports a transition out of v.
func (p Pair[T]) ChangedFrom(v T) bool {
	return p.Old == v && p.Current != v
}

// ChangedFromTo reports the exact transition between two values.
func (p Pair[T]) ChangedFromTo(from, to T) bool {
	return p.Changed() && p.Old == from && p.Current == to
}

// Watcher tracks successive samples of one value.
type Watcher[T comparable] struct {
	pair Pair[T]
	seen bool
}

// Update records the next sample. The first update primes both sides of the
// pair with v, so merely observing a value for the first time never fires
// an edge.
func (w *Watcher[T]) Update(v T) {
	if !w.seen {
		w.pair = Pair[T]{Old: v, Current: v}
		w.seen = true
		return
	}
	w.pair = Pair[T]{Old: w.pair.Current, Current: v}
}

// Pair returns the current sample step. ok is false until the first Update.
func (w *Watcher[T]) Pair() (Pair[T], bool) {
	return w.pair, w.seen
}

// Reset forgets all samples, as after losing the target process. The next
// Update primes the watcher again.
func (w *Watcher[T]) Reset() {
	var zero Pair[T]
	w.pair = zero
	w.seen = false
}
