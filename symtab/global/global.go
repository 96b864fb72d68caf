// Package global provides a process-wide symbol table and a Symbol type
// bound to it.
//
// A global Symbol converts to and from strings without passing a table
// around. Strings interned here are never freed.
package global

import (
	"cmp"
	"fmt"
	"strconv"
	"sync"

	"github.com/wbrown/janus-symtab/symtab"
)

var (
	defaultOnce  sync.Once
	defaultTable *symtab.Table
)

// Table returns the default table, creating it on first use.
func Table() *symtab.Table {
	defaultOnce.Do(func() {
		defaultTable = symtab.New()
	})
	return defaultTable
}

// Symbol is an interned string in the default table. The zero value is
// whichever string was interned first in the process; construct Symbols
// with New, FromBytes or Parse.
type Symbol struct {
	sym symtab.Symbol
}

// New interns s into the default table.
func New(s string) Symbol {
	return Symbol{sym: Table().Intern(s)}
}

// FromBytes interns b into the default table.
func FromBytes(b []byte) Symbol {
	return Symbol{sym: Table().InternBytes(b)}
}

// Parse interns s. It never fails; the error exists so Parse fits APIs that
// expect a parse function.
func Parse(s string) (Symbol, error) {
	return New(s), nil
}

// FromID wraps a symbol previously obtained from Symbol.ID.
func FromID(id symtab.Symbol) Symbol {
	return Symbol{sym: id}
}

// ID returns the underlying symbol of the default table.
func (s Symbol) ID() symtab.Symbol {
	return s.sym
}

// String returns the interned string. It panics if s was built with FromID
// from a value the default table never issued.
func (s Symbol) String() string {
	str, ok := Table().Resolve(s.sym)
	if !ok {
		panic(fmt.Sprintf("global: symbol %s is not in the default table", s.sym))
	}
	return str
}

// GoString returns the interned string quoted, so %#v shows the content.
func (s Symbol) GoString() string {
	return strconv.Quote(s.String())
}

// MarshalText encodes the symbol as its string.
func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText interns text.
func (s *Symbol) UnmarshalText(text []byte) error {
	*s = FromBytes(text)
	return nil
}

// Compare orders symbols by their numeric value, which is interning order
// rather than string order.
func Compare(a, b Symbol) int {
	return cmp.Compare(a.sym, b.sym)
}
