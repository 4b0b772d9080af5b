package dispatch

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/logfan/backend"
	"github.com/philipp01105/logfan/core"
	"github.com/philipp01105/logfan/format"
)

// item is one unit of work on the dispatcher queue: a log event, a
// flush marker, or a backend-management request. Routing everything
// through the same queue keeps management operations ordered relative
// to log events, which is what makes "flush implies prior events are
// delivered" hold.
type item struct {
	ev   *core.Event
	done chan struct{} // closed after the event is fully delivered (Sync mode)
	ctl  *control
}

type ctlKind int

const (
	ctlAdd ctlKind = iota
	ctlRemove
	ctlCall
	ctlFlush
	ctlList
)

type control struct {
	kind  ctlKind
	id    Identity
	b     backend.Backend
	args  map[string]interface{}
	req   interface{}
	flush bool
	reply chan ctlReply
}

type ctlReply struct {
	res interface{}
	err error
}

// DispatcherConfig holds construction options for a Dispatcher
type DispatcherConfig struct {
	// QueueSize is the dispatcher queue capacity (default: 1000)
	QueueSize int
	// Diag receives crash diagnostics and lifecycle errors
	// (default: error-level console logger on stderr)
	Diag *zap.Logger
	// MaxRestarts bounds crash-triggered restarts/removals across all
	// slots within RestartWindow (default: 30)
	MaxRestarts int
	// RestartWindow is the rolling budget window (default: 3s)
	RestartWindow time.Duration
	// ReportInterval is the overload reporter tick (default: 500ms,
	// negative disables the reporter)
	ReportInterval time.Duration
	// Options are the initial overload thresholds
	Options Options
}

// Dispatcher is the serializing delivery engine. One goroutine drains
// the queue and owns the backend registry; producers interact with it
// only through the queue and the lock-free discard counter.
type Dispatcher struct {
	queue chan item
	cfg   *Config
	reg   *registry
	diag  *zap.Logger
	rep   *reporter

	closing   chan struct{} // closed by Close, triggers drain and exit
	stopped   chan struct{} // closed when the run loop has exited
	closeOnce sync.Once
	wg        sync.WaitGroup

	failed   bool         // run-loop private: restart budget exhausted
	fatalErr atomic.Value // error visible to producers after shutdown
}

// New creates and starts a Dispatcher. The reserved config slot is
// registered before the first event can be delivered.
func New(cfg DispatcherConfig) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.Diag == nil {
		cfg.Diag = defaultDiag()
	}
	if cfg.MaxRestarts <= 0 {
		cfg.MaxRestarts = 30
	}
	if cfg.RestartWindow <= 0 {
		cfg.RestartWindow = 3 * time.Second
	}
	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 500 * time.Millisecond
	}

	d := &Dispatcher{
		queue:   make(chan item, cfg.QueueSize),
		cfg:     NewConfig(cfg.Options),
		reg:     newRegistry(cfg.MaxRestarts, cfg.RestartWindow),
		diag:    cfg.Diag,
		closing: make(chan struct{}),
		stopped: make(chan struct{}),
	}

	// The registry is not shared yet; registering the reserved slot
	// directly is safe here.
	d.reg.add(ConfigIdentity, &configBackend{cfg: d.cfg}, nil, true)

	d.wg.Add(1)
	go d.run()

	if cfg.ReportInterval > 0 {
		d.rep = newReporter(d, cfg.ReportInterval)
		d.wg.Add(1)
		go d.rep.run()
	}
	return d
}

func defaultDiag() *zap.Logger {
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zapcore.ErrorLevel))
}

// Log is the producer entry point. The current overload mode is
// re-derived from the live queue depth on every call:
//
//   - Normal: enqueue and return
//   - Sync: enqueue, then block until the event has been delivered
//   - Discard: count the event and return without enqueueing
//
// Ownership of ev transfers to the dispatcher.
func (d *Dispatcher) Log(ev *core.Event) {
	if ev == nil {
		return
	}
	d.prepare(ev)

	switch d.cfg.ModeFor(len(d.queue)) {
	case Discard:
		d.cfg.RecordDiscard()
		core.PutEvent(ev)
	case Sync:
		done := make(chan struct{})
		if d.send(item{ev: ev, done: done}) {
			select {
			case <-done:
			case <-d.stopped:
			}
		}
	default:
		d.send(item{ev: ev})
	}
}

// Inject enqueues an event bypassing the overload mode check. The
// reporter uses it so that discard warnings are never themselves
// discarded.
func (d *Dispatcher) Inject(ev *core.Event) {
	if ev == nil {
		return
	}
	d.prepare(ev)
	d.send(item{ev: ev})
}

// prepare applies the global message cap and timestamp policy at the
// entry point, before the event becomes immutable queue property.
func (d *Dispatcher) prepare(ev *core.Event) {
	s := d.cfg.snapshot()
	ev.Message = format.Truncate(ev.Message, s.truncateLimit)
	if s.utc {
		ev.Time = ev.Time.UTC()
	}
}

// send blocks while the queue is full; that blocking is the mechanism
// Sync mode relies on. It gives up only when the dispatcher has
// stopped, recycling the event.
func (d *Dispatcher) send(it item) bool {
	select {
	case d.queue <- it:
		return true
	case <-d.stopped:
		if it.ev != nil {
			core.PutEvent(it.ev)
		}
		return false
	}
}

// request routes a control item through the queue and waits for the
// dispatcher goroutine's reply.
func (d *Dispatcher) request(c *control) ctlReply {
	c.reply = make(chan ctlReply, 1)
	if !d.send(item{ctl: c}) {
		return ctlReply{err: d.closeErr()}
	}
	select {
	case r := <-c.reply:
		return r
	case <-d.stopped:
		return ctlReply{err: d.closeErr()}
	}
}

// AddOptions controls AddBackend behavior
type AddOptions struct {
	// InitArgs is forwarded to the backend's Init
	InitArgs map[string]interface{}
	// Flush delivers and flushes all previously posted events before
	// the new backend is started
	Flush bool
}

// AddBackend registers a backend under id. It returns
// ErrAlreadyPresent when the identity is taken, an *InitError when the
// backend's Init fails, and nil both on success and when Init declined
// with backend.ErrIgnore (in which case nothing was registered).
func (d *Dispatcher) AddBackend(id Identity, b backend.Backend, opts AddOptions) error {
	return d.request(&control{kind: ctlAdd, id: id, b: b, args: opts.InitArgs, flush: opts.Flush}).err
}

// RemoveOptions controls RemoveBackend behavior
type RemoveOptions struct {
	// Flush delivers and flushes all previously posted events before
	// the backend is terminated
	Flush bool
}

// RemoveBackend terminates and deregisters the backend under id.
// Returns ErrNotFound when no such backend is registered; repeated
// removal is safe.
func (d *Dispatcher) RemoveBackend(id Identity, opts RemoveOptions) error {
	return d.request(&control{kind: ctlRemove, id: id, flush: opts.Flush}).err
}

// Call forwards req to the named backend's HandleCall and returns its
// reply. It fails with ErrNotFound for an unregistered identity and
// with a *CrashError when the backend panics while servicing the call;
// in the latter case the backend has been torn down but the dispatcher
// and its remaining backends are unaffected.
func (d *Dispatcher) Call(id Identity, req interface{}) (interface{}, error) {
	r := d.request(&control{kind: ctlCall, id: id, req: req})
	return r.res, r.err
}

// Configure atomically replaces the subset of overload thresholds
// carried by opts. The update is routed through the queue like any
// other management operation, so it is ordered relative to events.
func (d *Dispatcher) Configure(opts Options) error {
	_, err := d.Call(ConfigIdentity, opts)
	return err
}

// Flush blocks until every event enqueued before the call has been
// delivered to all current backends and buffered output has been
// drained. The marker itself is never delivered as a log event.
func (d *Dispatcher) Flush() error {
	return d.request(&control{kind: ctlFlush}).err
}

// Backends returns the identities of the registered user backends in
// registration order.
func (d *Dispatcher) Backends() []Identity {
	r := d.request(&control{kind: ctlList})
	if r.err != nil {
		return nil
	}
	return r.res.([]Identity)
}

// Depth returns the current queue depth
func (d *Dispatcher) Depth() int {
	return len(d.queue)
}

// Mode returns the overload mode a producer would observe right now
func (d *Dispatcher) Mode() Mode {
	return d.cfg.ModeFor(len(d.queue))
}

// Close drains the queue, terminates all backends and stops the
// dispatcher. It is idempotent.
func (d *Dispatcher) Close() error {
	d.closeOnce.Do(func() {
		if d.rep != nil {
			d.rep.halt()
		}
		close(d.closing)
	})
	d.wg.Wait()
	return nil
}

func (d *Dispatcher) closeErr() error {
	if v := d.fatalErr.Load(); v != nil {
		return v.(error)
	}
	return ErrClosed
}

// run is the single serializing worker. All delivery and all registry
// mutation happens on this goroutine.
func (d *Dispatcher) run() {
	defer d.wg.Done()
	defer close(d.stopped)

	for {
		select {
		case it := <-d.queue:
			d.process(it)
			if d.failed {
				d.reg.shutdown(ErrRestartBudget)
				return
			}
		case <-d.closing:
			// Drain what is already queued, then shut down.
			for {
				select {
				case it := <-d.queue:
					d.process(it)
					if d.failed {
						d.reg.shutdown(ErrRestartBudget)
						return
					}
				default:
					d.reg.shutdown(nil)
					return
				}
			}
		}
	}
}

func (d *Dispatcher) process(it item) {
	if it.ctl != nil {
		d.control(it.ctl)
		return
	}
	d.deliver(it.ev)
	if it.done != nil {
		close(it.done)
	}
	core.PutEvent(it.ev)
}

// deliver hands one event to every live slot in registration order. A
// slot that crashes is torn down and skipped; delivery continues with
// the remaining slots.
func (d *Dispatcher) deliver(ev *core.Event) {
	for _, s := range d.reg.snapshot() {
		if d.failed {
			return
		}
		err := s.handleEvent(ev)
		if err == nil {
			continue
		}
		if ce, ok := err.(*CrashError); ok {
			d.crash(s, ce)
			continue
		}
		d.diag.Warn("backend returned error",
			zap.String("backend", s.id.String()),
			zap.Error(err))
	}
}

// crash tears down a crashed backend. The reserved config slot is
// restarted in place instead of being removed; every crash is charged
// against the rolling restart budget, and exhausting it is fatal for
// the whole dispatch subsystem.
func (d *Dispatcher) crash(s *slot, ce *CrashError) {
	d.diag.Error("backend crashed",
		zap.String("backend", s.id.String()),
		zap.Any("reason", ce.Reason),
		zap.ByteString("stack", ce.Stack))

	if !d.reg.charge(time.Now()) {
		d.failed = true
		d.fatalErr.Store(ErrRestartBudget)
		d.diag.Error("restart budget exceeded, dispatch subsystem shutting down")
		return
	}

	if s.reserved {
		if err := s.init(); err != nil {
			d.diag.Error("reserved slot restart failed",
				zap.String("backend", s.id.String()),
				zap.Error(err))
		}
		return
	}

	s.terminate(ce)
	d.reg.drop(s)
}

func (d *Dispatcher) control(c *control) {
	switch c.kind {
	case ctlAdd:
		if c.flush {
			d.flushSlots()
		}
		if c.id == ConfigIdentity {
			c.reply <- ctlReply{err: ErrAlreadyPresent}
			return
		}
		_, err := d.reg.add(c.id, c.b, c.args, false)
		c.reply <- ctlReply{err: err}

	case ctlRemove:
		if c.flush {
			d.flushSlots()
		}
		if c.id == ConfigIdentity {
			// The reserved slot is not addressable as a user backend.
			c.reply <- ctlReply{err: ErrNotFound}
			return
		}
		c.reply <- ctlReply{err: d.reg.remove(c.id, nil)}

	case ctlCall:
		s := d.reg.lookup(c.id)
		if s == nil {
			c.reply <- ctlReply{err: ErrNotFound}
			return
		}
		res, err := s.handleCall(c.req)
		if ce, ok := err.(*CrashError); ok {
			d.crash(s, ce)
		}
		c.reply <- ctlReply{res: res, err: err}

	case ctlFlush:
		d.flushSlots()
		c.reply <- ctlReply{}

	case ctlList:
		var ids []Identity
		for _, s := range d.reg.slots {
			if !s.reserved {
				ids = append(ids, s.id)
			}
		}
		c.reply <- ctlReply{res: ids}
	}
}

// flushSlots signals every backend to drain buffered output
func (d *Dispatcher) flushSlots() {
	for _, s := range d.reg.snapshot() {
		if d.failed {
			return
		}
		err := s.flush()
		if err == nil {
			continue
		}
		if ce, ok := err.(*CrashError); ok {
			d.crash(s, ce)
			continue
		}
		d.diag.Warn("backend flush failed",
			zap.String("backend", s.id.String()),
			zap.Error(err))
	}
}
