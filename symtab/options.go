package symtab

import (
	"github.com/wbrown/janus-symtab/symtab/annotations"
	"github.com/wbrown/janus-symtab/symtab/arena"
)

// Options configures a Table. The zero value is ready to use.
type Options struct {
	// Arena sizing
	ChunkSize    int // First arena chunk size in bytes. If 0, uses arena.DefaultChunkSize.
	MaxChunkSize int // Cap for doubled chunk sizes. If 0, uses arena.DefaultMaxChunkSize.

	// Capacity hint for the forward index and reverse table
	InitialCapacity int

	// Handler receives annotation events (table creation, inserts, arena
	// growth). Handlers run after the table lock is released; lookups that hit
	// never produce events.
	Handler annotations.Handler
}

func (o Options) arenaOptions() arena.Options {
	return arena.Options{
		ChunkSize:    o.ChunkSize,
		MaxChunkSize: o.MaxChunkSize,
	}
}
