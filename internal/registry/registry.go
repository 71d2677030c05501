package registry

import "sync"

// Conn is the write side of a live staff connection. Implementations must be
// safe for concurrent WriteText calls.
type Conn interface {
	WriteText(text string) error
}

// Registry is the process-wide directory mapping a ticket to the one live
// connection watching it. It is the only shared mutable state between
// connection goroutines; every operation runs under a single mutex and does
// no I/O while holding it.
type Registry struct {
	mu      sync.Mutex
	entries map[int64]Conn
}

func New() *Registry {
	return &Registry{
		entries: make(map[int64]Conn),
	}
}

// Register stores conn as the live connection for the ticket, unconditionally
// replacing any previous entry. The displaced connection is not closed here;
// it keeps running until its own read loop fails and is simply no longer
// reachable through the registry.
func (r *Registry) Register(ticketID int64, conn Conn) {
	r.mu.Lock()
	_, replaced := r.entries[ticketID]
	r.entries[ticketID] = conn
	size := len(r.entries)
	r.mu.Unlock()

	setLiveConnections(size)
	if replaced {
		incReplaced()
	}
}

// Lookup returns the live connection for the ticket, if any. Never blocks on
// anything but the registry mutex.
func (r *Registry) Lookup(ticketID int64) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.entries[ticketID]
	return conn, ok
}

// Deregister removes the entry only when it still belongs to conn. A stale
// connection unwinding after being displaced must not evict the newer
// registration for the same ticket.
func (r *Registry) Deregister(ticketID int64, conn Conn) {
	r.mu.Lock()
	if current, ok := r.entries[ticketID]; ok && current == conn {
		delete(r.entries, ticketID)
	}
	size := len(r.entries)
	r.mu.Unlock()

	setLiveConnections(size)
}
