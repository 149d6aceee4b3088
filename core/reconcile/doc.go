// Package reconcile matches the lots of a persisted snapshot against a fresh scrape.
//
// The engine joins the two snapshots on a stable key and splits the result in three
// partitions:
//   - Matched: lots of the old snapshot found in the new one, updated in place
//   - New: lots of the new snapshot that no old lot claimed
//   - Removed: lots of the old snapshot that are gone (or whose match was rejected)
//
// # Update policy
//
// Only the fields named in Options.UpdateFields are copied from the fresh record onto the
// persisted one. The identifier never changes; a changed lot number is a rename and is
// reported as such, never as a removal plus an addition.
//
// # Image continuity
//
// The primary image is the identity anchor of a lot. When it changes between snapshots the
// engine asks the Image Ledger whether the new image was already migrated and whether its
// durable copy belongs to the old lot's image set. If so, the new image is accepted. If not,
// the pair is not trusted: the old lot is reported as removed and the fresh one as new.
// When the ledger offers more than one durable copy that fits, the engine refuses to guess
// and fails the whole run so the caller keeps its prior dataset.
//
// # Failure model
//
// Schema mismatches, duplicate join keys and ambiguous image identities abort the run
// before anything is returned. Inputs are never mutated; the partitions hold copies.
//
// # Usage Example
//
//	res, err := reconcile.Reconcile(old, fresh, reconcile.Options{
//	    JoinKey:      lot.FieldIdentifier,
//	    UpdateFields: reconcile.DefaultUpdateFields,
//	    Ledger:       reconcile.NewLedger(entries...),
//	    Logger:       logger,
//	})
//	if err != nil {
//	    // keep the prior dataset
//	}
package reconcile
