package reconcile

// LedgerEntry maps an original image URL to its durable migrated URL.
type LedgerEntry struct {
	// OriginalURL is the image URL on the source site.
	OriginalURL string `json:"original_url"`
	// DurableURL is the URL of the migrated copy.
	DurableURL string `json:"durable_url"`
}

// Ledger is the append-only image ledger, keyed by original URL.
//
// Historical ledgers may hold several durable URLs for one original URL (a store that
// was concatenated run after run). Those are kept as candidates in insertion order.
// Append never adds a mapping for an original URL that is already known.
//
// A Ledger is not safe for concurrent use.
type Ledger struct {
	entries    []LedgerEntry
	byOriginal map[string][]string
	loaded     int
}

// NewLedger builds a ledger from persisted entries. Exact duplicates are dropped.
func NewLedger(entries ...LedgerEntry) *Ledger {
	l := &Ledger{byOriginal: make(map[string][]string, len(entries))}
	for _, e := range entries {
		l.add(e)
	}
	l.loaded = len(l.entries)
	return l
}

func (l *Ledger) add(e LedgerEntry) bool {
	if e.OriginalURL == "" || e.DurableURL == "" {
		return false
	}
	for _, d := range l.byOriginal[e.OriginalURL] {
		if d == e.DurableURL {
			return false
		}
	}
	l.byOriginal[e.OriginalURL] = append(l.byOriginal[e.OriginalURL], e.DurableURL)
	l.entries = append(l.entries, e)
	return true
}

// Lookup returns the first durable URL recorded for original.
func (l *Ledger) Lookup(original string) (string, bool) {
	if l == nil {
		return "", false
	}
	if d := l.byOriginal[original]; len(d) > 0 {
		return d[0], true
	}
	return "", false
}

// Candidates returns every durable URL recorded for original.
func (l *Ledger) Candidates(original string) []string {
	if l == nil {
		return nil
	}
	return l.byOriginal[original]
}

// Append records a new mapping. It reports false, leaving the ledger untouched, when
// original is already mapped or the ledger is nil.
func (l *Ledger) Append(original, durable string) bool {
	if l == nil {
		return false
	}
	if _, known := l.byOriginal[original]; known {
		return false
	}
	return l.add(LedgerEntry{OriginalURL: original, DurableURL: durable})
}

// Entries returns every entry in insertion order.
func (l *Ledger) Entries() []LedgerEntry {
	if l == nil {
		return nil
	}
	return append([]LedgerEntry(nil), l.entries...)
}

// Pending returns the entries appended since the ledger was loaded.
func (l *Ledger) Pending() []LedgerEntry {
	if l == nil {
		return nil
	}
	return append([]LedgerEntry(nil), l.entries[l.loaded:]...)
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// SharedDurables returns the durable URLs recorded for more than one original URL.
// These are not used for matching (lookups go by original URL) but point at a store
// that reused one upload for different source images.
func (l *Ledger) SharedDurables() map[string][]string {
	owners := make(map[string][]string)
	if l == nil {
		return owners
	}
	for _, e := range l.entries {
		owners[e.DurableURL] = append(owners[e.DurableURL], e.OriginalURL)
	}
	for d, originals := range owners {
		if len(originals) < 2 {
			delete(owners, d)
		}
	}
	return owners
}
