// Package lot defines the auction lot record consumed by the reconciliation engine.
//
// A Lot is one auction item as observed on the source site. Lots are grouped into a
// Snapshot, which pairs the records with the set of columns (fields) its source carries.
// Persisted snapshots may miss columns when the backing table was created by an older
// version of the schema; the reconciliation engine validates column presence before it
// touches any record.
//
// # Fields
//
// Every logical column has a Field constant. Fields are the vocabulary of the update
// policy ("which columns are copied from a fresh scrape onto a persisted lot") and of
// the join key ("which column identifies a lot across snapshots").
//
// # Usage
//
//	snap := lot.NewSnapshot(records...)
//	if !snap.Has(lot.FieldIdentifier) {
//	    return errors.New("snapshot has no identifier column")
//	}
//	v, _ := records[0].Get(lot.FieldTitle)
package lot
