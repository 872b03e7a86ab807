package splits

// Delayed holds back one event for a fixed number of poll ticks. The zero
// value is disarmed. It is armed at most once per run; arming an armed
// Delayed is a programmer error and panics.
type Delayed struct {
	armed bool
	left  uint32
	event Event
}

// Arm schedules ev to fire after ticks calls to Tick. Zero ticks fires on
// the next Tick.
func (d *Delayed) Arm(ticks uint32, ev Event) {
	if d.armed {
		panic("splits: Delayed armed twice")
	}
	d.armed = true
	d.left = ticks
	d.event = ev
}

// Armed reports whether an event is pending.
func (d *Delayed) Armed() bool {
	return d.armed
}

// Tick counts down one poll and fires the event on the tick that empties
// the countdown. After firing the Delayed is disarmed.
func (d *Delayed) Tick() (Event, bool) {
	if !d.armed {
		return Event{}, false
	}
	if d.left > 0 {
		d.left--
	}
	if d.left > 0 {
		return Event{}, false
	}
	d.armed = false
	return d.event, true
}
