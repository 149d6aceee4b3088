package lot

// Snapshot is an ordered set of lots captured at one point in time, together with the
// columns its source carries.
type Snapshot struct {
	// Columns is the set of fields present in the source.
	Columns map[Field]struct{}
	// Records holds the lots in source order.
	Records []Lot
}

// NewSnapshot builds a snapshot that carries every column of the schema.
// Scrapes always produce complete records, so this is the constructor for them.
func NewSnapshot(records ...Lot) Snapshot {
	return NewSnapshotWithColumns(AllFields, records...)
}

// NewSnapshotWithColumns builds a snapshot that only carries the given columns.
func NewSnapshotWithColumns(columns []Field, records ...Lot) Snapshot {
	cols := make(map[Field]struct{}, len(columns))
	for _, c := range columns {
		cols[c] = struct{}{}
	}
	if records == nil {
		records = []Lot{}
	}
	return Snapshot{Columns: cols, Records: records}
}

// Has reports whether the snapshot carries column f.
func (s Snapshot) Has(f Field) bool {
	_, ok := s.Columns[f]
	return ok
}

// Missing returns the fields of want that the snapshot does not carry, in order.
func (s Snapshot) Missing(want ...Field) []Field {
	var missing []Field
	seen := make(map[Field]struct{}, len(want))
	for _, f := range want {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		if !s.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Len returns the number of records.
func (s Snapshot) Len() int {
	return len(s.Records)
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	cols := make(map[Field]struct{}, len(s.Columns))
	for k := range s.Columns {
		cols[k] = struct{}{}
	}
	records := make([]Lot, len(s.Records))
	for i, r := range s.Records {
		records[i] = r.Clone()
	}
	return Snapshot{Columns: cols, Records: records}
}
