package dispatch

import (
	"fmt"
	"sync"
	"time"

	"github.com/philipp01105/logfan/core"
)

// reporterOrigin marks warnings injected by the overload reporter
const reporterOrigin = "logfan"

// reporter wakes on a fixed interval, derives the current overload
// mode from the live queue depth and surfaces discard activity as
// warning events. The warnings are injected directly into the queue,
// bypassing the producer path, so they can never be discarded
// themselves.
type reporter struct {
	d        *Dispatcher
	interval time.Duration

	stop     chan struct{}
	stopOnce sync.Once

	wasDiscarding bool // previous tick observed Discard mode
}

func newReporter(d *Dispatcher, interval time.Duration) *reporter {
	return &reporter{d: d, interval: interval, stop: make(chan struct{})}
}

func (r *reporter) run() {
	defer r.d.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.tick()
		case <-r.stop:
			return
		}
	}
}

func (r *reporter) halt() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *reporter) tick() {
	depth := r.d.Depth()
	mode := r.d.cfg.ModeFor(depth)

	if mode == Discard {
		if !r.wasDiscarding {
			s := r.d.cfg.snapshot()
			r.warnf("entered discard mode: queue depth %d is above discard_threshold %d, messages are being discarded",
				depth, s.discardThreshold)
		}
		r.wasDiscarding = true
		return
	}

	// The drained count is read exactly once per non-discarding tick.
	// After a discard period even a zero reading is surfaced so that
	// operators always see an exit signal.
	n := r.d.cfg.DrainDiscards()
	if n > 0 || r.wasDiscarding {
		r.warnf("attempted to log %d messages, which is below discard_threshold, messages have stopped being discarded", n)
	}
	r.wasDiscarding = false
}

func (r *reporter) warnf(msg string, args ...interface{}) {
	ev := core.GetEvent()
	ev.Level = core.WarnLevel
	ev.Origin = reporterOrigin
	ev.Message = fmt.Sprintf(msg, args...)
	r.d.Inject(ev)
}
