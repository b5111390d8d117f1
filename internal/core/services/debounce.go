package services

import "time"

// debounceState is the pending-trigger slot of the orchestrator.
// It is only touched from the orchestrator's event loop.
type debounceState struct {
	timer *time.Timer

	// reason is the most recent trigger reason; the last one wins.
	reason  string
	pending bool

	// immediate marks a manual trigger that arrived during a run and must
	// start as soon as that run completes.
	immediate bool
}

// arm records reason and (re)starts the timer for window.
func (d *debounceState) arm(window time.Duration, reason string) {
	d.reason = reason
	d.pending = true
	d.restart(window)
}

// rearm restarts the timer without touching the pending reason.
func (d *debounceState) rearm(window time.Duration) {
	d.restart(window)
}

func (d *debounceState) restart(window time.Duration) {
	d.stopTimer()
	d.timer = time.NewTimer(window)
}

// next remembers reason as the run to start once the current one completes.
func (d *debounceState) next(reason string) {
	d.stopTimer()
	d.reason = reason
	d.pending = true
	d.immediate = true
}

// fired must be called when the timer channel delivers.
func (d *debounceState) fired() {
	d.timer = nil
}

// stopTimer cancels a timer that has not fired yet. The pending reason is kept.
func (d *debounceState) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// take consumes the pending reason and cancels any timer.
func (d *debounceState) take() (string, bool) {
	d.stopTimer()
	reason, ok := d.reason, d.pending
	d.reason, d.pending, d.immediate = "", false, false
	return reason, ok
}

// C returns the timer channel, or nil when no timer is armed.
// A nil channel blocks forever in a select.
func (d *debounceState) C() <-chan time.Time {
	if d.timer == nil {
		return nil
	}
	return d.timer.C
}

// armed reports whether a timer is running.
func (d *debounceState) armed() bool {
	return d.timer != nil
}
