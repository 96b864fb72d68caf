package symtab

import (
	"fmt"
	"iter"
	"math"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/wbrown/janus-symtab/symtab/annotations"
	"github.com/wbrown/janus-symtab/symtab/arena"
)

// maxSymbols bounds the reverse table so every index fits in a Symbol.
const maxSymbols uint64 = math.MaxUint32

// Table interns strings into Symbols. It is safe for concurrent use.
//
// One RWMutex covers the forward index, the reverse table and the arena
// calls made while inserting, so a symbol is visible in both directions or
// in neither. Lookups that hit take only the read lock.
//
// The write lock is held across the arena copy. Two goroutines racing to
// intern the same new string never both copy it, so no arena bytes are
// wasted; the cost is that inserts of different strings serialize.
type Table struct {
	mu    sync.RWMutex
	arena *arena.Arena
	index map[string]Symbol // keys are arena-backed
	strs  []string          // reverse table, indexed by Symbol

	hits   atomic.Uint64
	misses atomic.Uint64

	annotations *annotations.Collector
}

// New creates an empty table with default options.
func New() *Table {
	return NewWithOptions(Options{})
}

// NewWithOptions creates an empty table.
func NewWithOptions(opts Options) *Table {
	capacity := opts.InitialCapacity
	if capacity < 0 {
		capacity = 0
	}

	t := &Table{
		arena:       arena.New(opts.arenaOptions()),
		index:       make(map[string]Symbol, capacity),
		strs:        make([]string, 0, capacity),
		annotations: annotations.NewCollector(opts.Handler),
	}

	if t.annotations.Enabled() {
		ao := t.arena.Options()
		t.annotations.Add(annotations.Event{
			Name:  annotations.TableCreated,
			Start: time.Now(),
			End:   time.Now(),
			Data: map[string]interface{}{
				"arena.chunk-size":     ao.ChunkSize,
				"arena.max-chunk-size": ao.MaxChunkSize,
			},
		})
	}

	return t
}

// Intern returns the symbol for s, inserting s if it has not been seen.
// Interning the same string always returns the same symbol.
func (t *Table) Intern(s string) Symbol {
	// Fast path: read lock only
	t.mu.RLock()
	sym, ok := t.index[s]
	t.mu.RUnlock()
	if ok {
		t.hits.Add(1)
		return sym
	}

	return t.insert(s)
}

// InternBytes is Intern for a byte slice. b is copied on insert and is not
// retained; lookups of already interned content do not allocate.
func (t *Table) InternBytes(b []byte) Symbol {
	t.mu.RLock()
	sym, ok := t.index[string(b)]
	t.mu.RUnlock()
	if ok {
		t.hits.Add(1)
		return sym
	}

	// The view is only used for the lookup and the arena copy.
	return t.insert(unsafe.String(unsafe.SliceData(b), len(b)))
}

// insert is the slow path of Intern.
func (t *Table) insert(s string) Symbol {
	var start time.Time
	tracing := t.annotations.Enabled()
	if tracing {
		start = time.Now()
	}

	t.mu.Lock()
	// Another goroutine may have inserted s after our read lock was released.
	if sym, ok := t.index[s]; ok {
		t.mu.Unlock()
		t.hits.Add(1)
		return sym
	}

	if uint64(len(t.strs)) >= maxSymbols {
		t.mu.Unlock()
		panic(fmt.Sprintf("symtab: cannot represent more than %d symbols", maxSymbols))
	}

	chunksBefore := t.arena.Chunks()
	stored := t.arena.AllocateString(s)
	sym := Symbol(len(t.strs))
	t.strs = append(t.strs, stored)
	t.index[stored] = sym
	count := len(t.strs)

	// Arena growth only happens under t.mu, so this insert caused it.
	var growth map[string]interface{}
	if tracing {
		if chunks := t.arena.Chunks(); chunks > chunksBefore {
			growth = map[string]interface{}{
				"chunk.count":    chunks,
				"arena.reserved": t.arena.Reserved(),
				"arena.used":     t.arena.Used(),
			}
		}
	}
	t.mu.Unlock()

	t.misses.Add(1)

	if tracing {
		t.annotations.AddTiming(annotations.InternInserted, start, map[string]interface{}{
			"value":         stored,
			"symbol":        uint32(sym),
			"symbols.count": count,
		})
		if growth != nil {
			t.annotations.AddTiming(annotations.ArenaChunkAllocated, start, growth)
		}
	}

	return sym
}

// Lookup returns the symbol for s without inserting it.
func (t *Table) Lookup(s string) (Symbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sym, ok := t.index[s]
	return sym, ok
}

// Resolve returns the string interned as sym. The result is false when sym
// was never issued by this table.
//
// The returned string is backed by arena memory that is never modified, so it
// may be retained indefinitely.
func (t *Table) Resolve(sym Symbol) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if uint64(sym) >= uint64(len(t.strs)) {
		return "", false
	}
	return t.strs[sym], true
}

// MustResolve is like Resolve but panics if sym is unknown.
func (t *Table) MustResolve(sym Symbol) string {
	s, ok := t.Resolve(sym)
	if !ok {
		panic(fmt.Sprintf("symtab: unknown symbol %s", sym))
	}
	return s
}

// Len returns the number of distinct strings interned.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.strs)
}

// IsEmpty reports whether nothing has been interned yet.
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// All iterates over every symbol and its string in symbol order. Symbols
// interned after iteration starts are not visited.
func (t *Table) All() iter.Seq2[Symbol, string] {
	return func(yield func(Symbol, string) bool) {
		t.mu.RLock()
		// Entries below len are never rewritten, so the snapshot stays valid
		// after the lock is released even if the slice is reallocated.
		snapshot := t.strs[:len(t.strs):len(t.strs)]
		t.mu.RUnlock()

		for i, s := range snapshot {
			if !yield(Symbol(i), s) {
				return
			}
		}
	}
}
