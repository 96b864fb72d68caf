// Package annotations provides a clean, low-overhead annotation system for
// tracking symbol table activity and debugging information.
package annotations

import (
	"sync"
	"time"
)

// Event name constants following hierarchical naming pattern
const (
	// Table lifecycle
	TableCreated = "table/created"

	// Interning
	InternInserted = "intern/inserted"

	// Arena storage
	ArenaChunkAllocated = "arena/chunk.allocated"

	// Bulk loading (cmd/symtab)
	LoadBegin    = "load/begin"
	LoadComplete = "load/completed"
	LoadVerified = "load/verified"
)

// Event represents a single annotation event.
type Event struct {
	Name    string                 // Event name using hierarchical constants above
	Start   time.Time              // Start timestamp
	End     time.Time              // End timestamp
	Latency time.Duration          // Duration (End - Start)
	Data    map[string]interface{} // Additional event-specific data
}

// Handler processes annotation events as they occur.
type Handler func(event Event)

// Collector forwards events to a handler and keeps per-name counts.
// A symbol table lives as long as the process, so events themselves are not
// retained.
type Collector struct {
	enabled bool
	handler Handler

	mu     sync.Mutex
	counts map[string]int
}

// NewCollector creates a new annotation collector. A nil handler yields a
// disabled collector whose methods are no-ops.
func NewCollector(handler Handler) *Collector {
	return &Collector{
		enabled: handler != nil,
		handler: handler,
		counts:  make(map[string]int, 8),
	}
}

// Enabled reports whether events are being recorded. Callers use it to skip
// building event data on hot paths.
func (c *Collector) Enabled() bool {
	return c != nil && c.enabled
}

// Handler returns the underlying event handler.
func (c *Collector) Handler() Handler {
	if c == nil {
		return nil
	}
	return c.handler
}

// Add records a new event.
// Thread-safe for concurrent access.
func (c *Collector) Add(event Event) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	c.counts[event.Name]++
	c.mu.Unlock()

	// Call handler outside the lock to avoid deadlocks
	c.handler(event)
}

// AddTiming records an event with timing information.
func (c *Collector) AddTiming(name string, start time.Time, data map[string]interface{}) {
	if !c.Enabled() {
		return
	}

	end := time.Now()
	c.Add(Event{
		Name:    name,
		Start:   start,
		End:     end,
		Latency: end.Sub(start),
		Data:    data,
	})
}

// Count returns how many events with the given name have been recorded.
func (c *Collector) Count(name string) int {
	if !c.Enabled() {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

// Reset clears the counts.
// Thread-safe for concurrent access.
func (c *Collector) Reset() {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.counts {
		delete(c.counts, k)
	}
	// Don't clear handler or enabled status
}
