// Package report renders symbol table statistics and contents as markdown
// tables.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/janus-symtab/symtab"
)

// Formatter provides utilities for formatting tables
type Formatter struct {
	// MaxWidth is the maximum width for a value column
	MaxWidth int
	// TruncateString is the string to append when truncating
	TruncateString string
}

// NewFormatter creates a new formatter with default settings
func NewFormatter() *Formatter {
	return &Formatter{
		MaxWidth:       50,
		TruncateString: "...",
	}
}

// FormatStats formats table statistics as a two-column markdown table.
func (f *Formatter) FormatStats(stats symtab.Stats) string {
	rows := [][]string{
		{"symbols", humanize.Comma(int64(stats.Symbols))},
		{"intern hits", humanize.Comma(int64(stats.Hits))},
		{"intern misses", humanize.Comma(int64(stats.Misses))},
		{"hit ratio", fmt.Sprintf("%.1f%%", stats.HitRatio()*100)},
		{"arena chunks", strconv.Itoa(stats.Chunks)},
		{"arena used", humanize.IBytes(uint64(stats.BytesUsed))},
		{"arena reserved", humanize.IBytes(uint64(stats.BytesReserved))},
		{"arena utilization", utilization(stats)},
	}
	return f.formatTable([]string{"metric", "value"}, rows)
}

// FormatSymbols formats up to limit symbols of t, in symbol order. A limit
// of 0 or less formats every symbol.
func (f *Formatter) FormatSymbols(t *symtab.Table, limit int) string {
	var rows [][]string
	for sym, s := range t.All() {
		if limit > 0 && len(rows) >= limit {
			break
		}
		rows = append(rows, []string{sym.String(), f.formatValue(s), strconv.Itoa(len(s))})
	}

	if len(rows) == 0 {
		return "_Empty table_"
	}
	return f.formatTable([]string{"symbol", "value", "bytes"}, rows)
}

// formatTable formats headers and rows as a markdown table
func (f *Formatter) formatTable(headers []string, rows [][]string) string {
	tableString := &strings.Builder{}

	// Create alignment array with all columns using AlignNone for simple separators
	alignment := make([]tw.Align, len(headers))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()

	tableString.WriteString(fmt.Sprintf("\n_%d rows_\n", len(rows)))

	return tableString.String()
}

// formatValue quotes a value and truncates it to MaxWidth.
func (f *Formatter) formatValue(s string) string {
	if f.MaxWidth > 0 && len(s) > f.MaxWidth {
		n := f.MaxWidth
		// Back off to a rune boundary so the quoted value stays valid UTF-8
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		s = s[:n] + f.TruncateString
	}
	q := strconv.Quote(s)
	// Markdown cells cannot contain a bare pipe
	return strings.ReplaceAll(q, "|", `\|`)
}

func utilization(stats symtab.Stats) string {
	if stats.BytesReserved == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(stats.BytesUsed)/float64(stats.BytesReserved)*100)
}

// StatsString returns the statistics of t as a markdown table.
func StatsString(t *symtab.Table) string {
	return NewFormatter().FormatStats(t.Stats())
}
