package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/janus-symtab/symtab"
)

func TestCollector(t *testing.T) {
	table := symtab.New()
	table.Intern("foo")
	table.Intern("bar")
	table.Intern("foo")

	c := NewCollector("test", table)
	assert.Equal(t, 6, testutil.CollectAndCount(c))

	expected := `
# HELP symtab_symbols Number of distinct strings interned.
# TYPE symtab_symbols gauge
symtab_symbols{table="test"} 2
# HELP symtab_intern_hits_total Intern calls that found an existing symbol.
# TYPE symtab_intern_hits_total counter
symtab_intern_hits_total{table="test"} 1
# HELP symtab_intern_misses_total Intern calls that inserted a new symbol.
# TYPE symtab_intern_misses_total counter
symtab_intern_misses_total{table="test"} 2
# HELP symtab_arena_used_bytes Bytes of interned string data.
# TYPE symtab_arena_used_bytes gauge
symtab_arena_used_bytes{table="test"} 6
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"symtab_symbols",
		"symtab_intern_hits_total",
		"symtab_intern_misses_total",
		"symtab_arena_used_bytes",
	)
	assert.NoError(t, err)
}

func TestCollectorTracksGrowth(t *testing.T) {
	table := symtab.New()
	c := NewCollector("growth", table)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	count, err := testutil.GatherAndCount(reg, "symtab_symbols")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	table.Intern("later")
	expected := `
# HELP symtab_symbols Number of distinct strings interned.
# TYPE symtab_symbols gauge
symtab_symbols{table="growth"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "symtab_symbols"))
}

func TestMultipleTables(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewCollector("a", symtab.New())))
	require.NoError(t, reg.Register(NewCollector("b", symtab.New())))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 12, count)
}
