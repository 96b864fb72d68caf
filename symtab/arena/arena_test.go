package arena

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate(t *testing.T) {
	t.Run("CopiesInput", func(t *testing.T) {
		a := New(Options{})
		src := []byte("hello")
		s := a.Allocate(src)

		// Mutating the source must not affect the arena copy
		src[0] = 'j'
		assert.Equal(t, "hello", s)
		assert.Equal(t, int64(5), a.Used())
	})

	t.Run("EmptyInput", func(t *testing.T) {
		a := New(Options{})
		assert.Equal(t, "", a.Allocate(nil))
		assert.Equal(t, "", a.AllocateString(""))
		assert.Equal(t, 0, a.Chunks())
		assert.Equal(t, int64(0), a.Reserved())
		assert.Equal(t, Options{ChunkSize: DefaultChunkSize, MaxChunkSize: DefaultMaxChunkSize}, a.Options())
	})

	t.Run("PacksIntoOneChunk", func(t *testing.T) {
		a := New(Options{ChunkSize: 64})
		s1 := a.AllocateString("abc")
		s2 := a.AllocateString("def")
		assert.Equal(t, 1, a.Chunks())

		// Adjacent allocations share the chunk
		p1 := uintptr(unsafe.Pointer(unsafe.StringData(s1)))
		p2 := uintptr(unsafe.Pointer(unsafe.StringData(s2)))
		assert.Equal(t, p1+3, p2)
	})
}

func TestGrowth(t *testing.T) {
	t.Run("Doubling", func(t *testing.T) {
		a := New(Options{ChunkSize: 8, MaxChunkSize: 32})
		a.AllocateString("12345678") // fills chunk 1 (8)
		a.AllocateString("x")        // chunk 2 (16)
		assert.Equal(t, 2, a.Chunks())
		assert.Equal(t, int64(24), a.Reserved())

		a.AllocateString(strings.Repeat("y", 15)) // fills chunk 2
		a.AllocateString("z")                     // chunk 3 (32)
		a.AllocateString(strings.Repeat("w", 32)) // chunk 4, capped at 32
		assert.Equal(t, 4, a.Chunks())
		assert.Equal(t, int64(8+16+32+32), a.Reserved())
	})

	t.Run("Oversize", func(t *testing.T) {
		a := New(Options{ChunkSize: 16, MaxChunkSize: 16})
		big := strings.Repeat("b", 100)
		s := a.AllocateString(big)
		assert.Equal(t, big, s)
		assert.Equal(t, 1, a.Chunks())
		assert.Equal(t, int64(100), a.Reserved())
	})

	t.Run("OversizeKeepsCurrentChunk", func(t *testing.T) {
		a := New(Options{ChunkSize: 16, MaxChunkSize: 16})
		s1 := a.AllocateString("abc")
		big := a.AllocateString(strings.Repeat("b", 100))
		s2 := a.AllocateString("def")

		assert.Equal(t, strings.Repeat("b", 100), big)
		assert.Equal(t, 2, a.Chunks())
		assert.Equal(t, int64(16+100), a.Reserved())
		assert.Equal(t, int64(106), a.Used())

		// The small allocations still share the regular chunk
		p1 := uintptr(unsafe.Pointer(unsafe.StringData(s1)))
		p2 := uintptr(unsafe.Pointer(unsafe.StringData(s2)))
		assert.Equal(t, p1+3, p2)
	})

	t.Run("MaxBelowChunkSize", func(t *testing.T) {
		a := New(Options{ChunkSize: 64, MaxChunkSize: 8})
		assert.Equal(t, Options{ChunkSize: 64, MaxChunkSize: 64}, a.Options())
		a.AllocateString("a")
		assert.Equal(t, int64(64), a.Reserved())
	})
}

// Earlier strings must survive any amount of later growth.
func TestStability(t *testing.T) {
	a := New(Options{ChunkSize: 16, MaxChunkSize: 256})

	var got []string
	for i := 0; i < 10000; i++ {
		got = append(got, a.AllocateString(fmt.Sprintf("value-%d", i)))
	}

	for i, s := range got {
		require.Equal(t, fmt.Sprintf("value-%d", i), s)
	}
	assert.Greater(t, a.Chunks(), 1)
}

func TestConcurrentAllocate(t *testing.T) {
	a := New(Options{ChunkSize: 32})

	const workers = 8
	const perWorker = 1000

	results := make([][]string, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			out := make([]string, perWorker)
			for i := range out {
				out[i] = a.AllocateString(fmt.Sprintf("w%d-%d", w, i))
			}
			results[w] = out
		}(w)
	}
	wg.Wait()

	var total int64
	for w, out := range results {
		for i, s := range out {
			want := fmt.Sprintf("w%d-%d", w, i)
			require.Equal(t, want, s)
			total += int64(len(want))
		}
	}
	assert.Equal(t, total, a.Used())
	assert.LessOrEqual(t, a.Used(), a.Reserved())
}

func BenchmarkAllocate(b *testing.B) {
	a := New(Options{})
	word := []byte("interned-string")

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			a.Allocate(word)
		}
	})
}
