package reconcile

import (
	"lot-sync/core/lot"

	"go.uber.org/zap"
)

// DefaultUpdateFields are the columns refreshed on every matched lot.
var DefaultUpdateFields = []lot.Field{
	lot.FieldTitle,
	lot.FieldTitleOverflow,
	lot.FieldLocation,
	lot.FieldPrice,
	lot.FieldCurrencyCode,
	lot.FieldLotNumber,
	lot.FieldDescription,
	lot.FieldDescriptionOverflow,
}

// Options configures a reconciliation run.
type Options struct {
	// JoinKey is the field used to match lots across snapshots.
	// Defaults to lot.FieldIdentifier.
	JoinKey lot.Field

	// UpdateFields lists the fields copied from the new record onto the matched old one.
	// A nil slice selects DefaultUpdateFields; an empty one copies nothing.
	UpdateFields []lot.Field

	// Ledger resolves primary image changes. A nil ledger behaves as an empty one.
	Ledger *Ledger

	// CatalogPrefix regenerates the catalog id of renamed lots when set.
	CatalogPrefix string

	// Logger receives per-lot diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Rename records a lot number change of a matched lot.
type Rename struct {
	// Identifier is the stable key of the lot.
	Identifier string `json:"identifier"`
	// From is the lot number in the old snapshot.
	From string `json:"from"`
	// To is the lot number in the new snapshot.
	To string `json:"to"`
}

// ConflictReason explains why an image change could not be resolved.
type ConflictReason string

const (
	// ConflictNoLedgerEntry means the new primary image was never migrated.
	ConflictNoLedgerEntry ConflictReason = "no_ledger_entry"
	// ConflictNotInImages means the durable copy is not part of the old lot's images.
	ConflictNotInImages ConflictReason = "durable_not_in_images"
)

// ImageConflict records a matched pair that was downgraded to removed + new.
type ImageConflict struct {
	// Identifier is the stable key shared by both records.
	Identifier string `json:"identifier"`
	// LotNumber is the lot number of the old record.
	LotNumber string `json:"lot_number"`
	// OldImageURL is the primary image of the old record.
	OldImageURL string `json:"old_image_url"`
	// NewImageURL is the primary image of the new record.
	NewImageURL string `json:"new_image_url"`
	// Reason tells which continuity rule failed.
	Reason ConflictReason `json:"reason"`
}

// Result is the three-way partition produced by Reconcile.
type Result struct {
	// Matched holds the old lots found in the new snapshot, updated, in old order.
	Matched []lot.Lot `json:"matched"`
	// New holds the new lots that no old lot claimed, in new order.
	New []lot.Lot `json:"new"`
	// Removed holds the old lots without an accepted match, in old order.
	Removed []lot.Lot `json:"removed"`
	// Renames lists the lot number changes of matched lots.
	Renames []Rename `json:"renames"`
	// Conflicts lists the image changes that downgraded a match.
	Conflicts []ImageConflict `json:"conflicts"`
}

// Summary provides aggregate counts of a result.
type Summary struct {
	Matched   int `json:"matched"`
	New       int `json:"new"`
	Removed   int `json:"removed"`
	Renames   int `json:"renames"`
	Conflicts int `json:"conflicts"`
}

// Summary returns the partition sizes.
func (r *Result) Summary() Summary {
	return Summary{
		Matched:   len(r.Matched),
		New:       len(r.New),
		Removed:   len(r.Removed),
		Renames:   len(r.Renames),
		Conflicts: len(r.Conflicts),
	}
}
