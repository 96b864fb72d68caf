// Package symtab provides a concurrent string interning table.
//
// A Table deduplicates strings into Symbols: small, dense, comparable
// handles. Resolving a Symbol returns a string backed by the table's
// append-only arena, so resolved strings never change and stay valid
// regardless of how many strings are interned afterwards.
//
// Symbols carry no table identity. Resolving a Symbol against a table that
// did not issue it is not detected; it either reports absence or returns
// another string of that table.
package symtab

import "strconv"

// Symbol is a handle for an interned string. Symbols are assigned densely
// from 0 in insertion order, so they compare, order and hash as integers.
type Symbol uint32

// String returns the numeric form of the symbol, e.g. "#3". Use
// Table.Resolve to get the interned string.
func (s Symbol) String() string {
	return "#" + strconv.FormatUint(uint64(s), 10)
}
