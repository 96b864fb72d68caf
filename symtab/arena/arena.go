// Package arena provides append-only chunked byte storage for interned
// strings. Bytes written to an arena are never moved, mutated or reused, so a
// string handed out by Allocate stays byte-identical for as long as anything
// references it.
package arena

import (
	"sync"
	"unsafe"
)

const (
	// DefaultChunkSize is the size of the first chunk.
	DefaultChunkSize = 4 << 10
	// DefaultMaxChunkSize caps the doubling growth policy. Requests larger
	// than the next regular chunk get a dedicated chunk of exactly their size.
	DefaultMaxChunkSize = 1 << 20
)

// Options configures an Arena. Zero values select the defaults.
type Options struct {
	ChunkSize    int // Size of the first chunk
	MaxChunkSize int // Upper bound for doubled chunk sizes
}

// Arena is a list of byte chunks. Only the current chunk receives writes;
// full chunks and dedicated oversize chunks are retained untouched.
type Arena struct {
	mu   sync.Mutex
	opts Options

	chunks  [][]byte // every chunk ever allocated
	cur     []byte   // current chunk: len is the write offset, cap is the size
	next    int      // size of the next regular chunk
	maxSize int

	used     int64
	reserved int64
}

// New creates an empty arena. No chunk is allocated until the first
// non-empty Allocate.
func New(opts Options) *Arena {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = DefaultMaxChunkSize
	}
	if opts.MaxChunkSize < opts.ChunkSize {
		opts.MaxChunkSize = opts.ChunkSize
	}
	return &Arena{
		opts:    opts,
		next:    opts.ChunkSize,
		maxSize: opts.MaxChunkSize,
	}
}

// Allocate copies b into the arena and returns a string backed by the copy.
func (a *Arena) Allocate(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	a.mu.Lock()
	dst := a.reserve(len(b))
	copy(dst, b)
	a.mu.Unlock()

	return unsafe.String(&dst[0], len(dst))
}

// AllocateString copies s into the arena and returns a string backed by the
// copy.
func (a *Arena) AllocateString(s string) string {
	if len(s) == 0 {
		return ""
	}

	a.mu.Lock()
	dst := a.reserve(len(s))
	copy(dst, s)
	a.mu.Unlock()

	return unsafe.String(&dst[0], len(dst))
}

// reserve returns n writable bytes. Requests larger than a regular chunk
// get a dedicated chunk and leave the current chunk's free space in place.
// Caller holds a.mu.
func (a *Arena) reserve(n int) []byte {
	free := cap(a.cur) - len(a.cur)
	if n > free && n > a.next {
		chunk := make([]byte, n)
		a.chunks = append(a.chunks, chunk)
		a.reserved += int64(n)
		a.used += int64(n)
		return chunk
	}

	if free < n {
		a.grow()
	}
	start := len(a.cur)
	// cap was checked above, so this reslice never reallocates and earlier
	// bytes keep their address.
	a.cur = a.cur[:start+n]
	a.used += int64(n)
	return a.cur[start : start+n : start+n]
}

// grow starts a new current chunk of the next regular size.
func (a *Arena) grow() {
	size := a.next
	if a.next < a.maxSize {
		a.next *= 2
		if a.next > a.maxSize {
			a.next = a.maxSize
		}
	}

	chunk := make([]byte, 0, size)
	a.chunks = append(a.chunks, chunk)
	a.cur = chunk
	a.reserved += int64(size)
}

// Options returns the effective options, with defaults applied.
func (a *Arena) Options() Options {
	return a.opts
}

// Chunks returns the number of chunks allocated so far.
func (a *Arena) Chunks() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.chunks)
}

// Used returns the number of bytes handed out.
func (a *Arena) Used() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

// Reserved returns the total size of all chunks.
func (a *Arena) Reserved() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reserved
}
