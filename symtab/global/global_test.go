package global

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/janus-symtab/symtab"
)

func TestSymbol(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		text := "the quick brown fox jumps over the lazy dog the end"
		seen := make(map[string]Symbol)
		for _, w := range strings.Fields(text) {
			sym := New(w)
			if prev, ok := seen[w]; ok {
				assert.Equal(t, prev, sym)
			}
			seen[w] = sym
			assert.Equal(t, w, sym.String())
			assert.Equal(t, w, fmt.Sprint(sym))
		}
	})

	t.Run("Constructors", func(t *testing.T) {
		a := New("global-constructors")
		b := FromBytes([]byte("global-constructors"))
		c, err := Parse("global-constructors")
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, a, c)
		assert.Equal(t, a, FromID(a.ID()))
	})

	t.Run("Formatting", func(t *testing.T) {
		sym := New("say \"hi\"")
		assert.Equal(t, "say \"hi\"", fmt.Sprintf("%v", sym))
		assert.Equal(t, `"say \"hi\""`, fmt.Sprintf("%#v", sym))
	})

	t.Run("EmptyString", func(t *testing.T) {
		sym := New("")
		assert.Equal(t, "", sym.String())
		s, ok := Table().Resolve(sym.ID())
		assert.True(t, ok)
		assert.Equal(t, "", s)
	})

	t.Run("UnknownID", func(t *testing.T) {
		bogus := FromID(symtab.Symbol(1<<32 - 1))
		assert.Panics(t, func() { _ = bogus.String() })
	})

	t.Run("Ordering", func(t *testing.T) {
		first := New("global-ordering-first")
		second := New("global-ordering-second")
		assert.Equal(t, -1, Compare(first, second))
		assert.Equal(t, 1, Compare(second, first))
		assert.Equal(t, 0, Compare(first, New("global-ordering-first")))

		syms := []Symbol{second, first}
		slices.SortFunc(syms, Compare)
		assert.Equal(t, []Symbol{first, second}, syms)
	})

	t.Run("MapKey", func(t *testing.T) {
		m := map[Symbol]int{New("k"): 1}
		m[New("k")]++
		assert.Equal(t, 2, m[New("k")])
	})
}

func TestText(t *testing.T) {
	type doc struct {
		Name Symbol            `json:"name"`
		Tags []Symbol          `json:"tags"`
		Refs map[Symbol]string `json:"refs"`
	}

	in := doc{
		Name: New("widget"),
		Tags: []Symbol{New("red"), New("small")},
		Refs: map[Symbol]string{New("owner"): "alice"},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"widget","tags":["red","small"],"refs":{"owner":"alice"}}`, string(data))

	var out doc
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestSingleton(t *testing.T) {
	const n = 32
	tables := make([]*symtab.Table, n)
	syms := make([]Symbol, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tables[i] = Table()
			syms[i] = New("global-singleton")
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, tables[0], tables[i])
		assert.Equal(t, syms[0], syms[i])
	}
}
