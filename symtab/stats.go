package symtab

// Stats is a point-in-time summary of a table.
type Stats struct {
	Symbols int // Distinct strings interned

	// Intern calls answered from the index vs. calls that inserted
	Hits   uint64
	Misses uint64

	// Arena usage
	Chunks        int
	BytesUsed     int64
	BytesReserved int64
}

// HitRatio returns the fraction of Intern calls that found an existing
// symbol, or 0 before the first call.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns current statistics. Fields are read individually, so under
// concurrent interning they may be mutually inconsistent by a few calls.
func (t *Table) Stats() Stats {
	return Stats{
		Symbols:       t.Len(),
		Hits:          t.hits.Load(),
		Misses:        t.misses.Load(),
		Chunks:        t.arena.Chunks(),
		BytesUsed:     t.arena.Used(),
		BytesReserved: t.arena.Reserved(),
	}
}
