// Package core defines the event model shared across logfan.
//
// It provides the Level type with the collapse rules applied at the
// dispatch boundary (levels above Error collapse to Error, levels
// between Debug and Info collapse to Info), the Event type that
// represents a single log record, and the ordered Metadata mapping
// attached to every event.
//
// Event objects are pooled via sync.Pool to keep the producer hot
// path allocation-free. Callers get an Event with GetEvent; ownership
// transfers to the dispatcher queue, which returns it with PutEvent
// once every live backend has consumed it. Backends must therefore
// never retain an Event past HandleEvent.
//
// Now returns a cached wall-clock reading refreshed every millisecond,
// which keeps timestamping cheap for high-frequency producers.
package core
