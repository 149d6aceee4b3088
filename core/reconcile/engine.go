package reconcile

import (
	"fmt"

	"lot-sync/core/lot"

	"go.uber.org/zap"
)

// Reconcile matches old against fresh and returns the three-way partition.
//
// Neither snapshot is modified. On error no partial result is returned and the caller
// is expected to keep its prior dataset.
func Reconcile(old, fresh lot.Snapshot, opts Options) (*Result, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	log := opts.Logger

	// Step 1: column presence on both sides
	required := append([]lot.Field{opts.JoinKey, lot.FieldIdentifier, lot.FieldPrimaryImageURL}, opts.UpdateFields...)
	if missing := old.Missing(required...); len(missing) > 0 {
		return nil, &SchemaError{Snapshot: "old", Missing: missing}
	}
	if missing := fresh.Missing(required...); len(missing) > 0 {
		return nil, &SchemaError{Snapshot: "new", Missing: missing}
	}

	// Step 2: join keys must be unique on both sides
	if _, err := buildIndex("old", old, opts.JoinKey, log); err != nil {
		return nil, err
	}
	index, err := buildIndex("new", fresh, opts.JoinKey, log)
	if err != nil {
		return nil, err
	}

	for durable, originals := range opts.Ledger.SharedDurables() {
		log.Warn("Ledger maps several original images to one durable image",
			zap.String("durable_url", durable),
			zap.Strings("original_urls", originals),
		)
	}

	res := &Result{
		Matched:   []lot.Lot{},
		New:       []lot.Lot{},
		Removed:   []lot.Lot{},
		Renames:   []Rename{},
		Conflicts: []ImageConflict{},
	}
	consumed := make([]bool, len(fresh.Records))

	// Step 3: one lookup per old lot
	for _, prev := range old.Records {
		key, _ := prev.Get(opts.JoinKey)
		j, found := index[key]
		if key == "" || !found {
			res.Removed = append(res.Removed, prev.Clone())
			continue
		}
		next := fresh.Records[j]

		updated := prev.Clone()
		if prev.PrimaryImageURL != next.PrimaryImageURL {
			durable, conflict, err := resolveImage(opts.Ledger, prev, next)
			if err != nil {
				return nil, err
			}
			if conflict != nil {
				log.Warn("Primary image changed without continuity, treating lot as removed and new",
					zap.String("identifier", prev.Identifier),
					zap.String("lot_number", prev.LotNumber),
					zap.String("old_url", prev.PrimaryImageURL),
					zap.String("url", next.PrimaryImageURL),
					zap.String("reason", string(conflict.Reason)),
				)
				res.Conflicts = append(res.Conflicts, *conflict)
				res.Removed = append(res.Removed, prev.Clone())
				continue
			}
			log.Info("Primary image changed, continuity resolved through ledger",
				zap.String("identifier", prev.Identifier),
				zap.String("url", next.PrimaryImageURL),
				zap.String("durable_url", durable),
			)
			updated.PrimaryImageURL = next.PrimaryImageURL
			updated.DisplayImageURL = durable
		}

		if prev.LotNumber != next.LotNumber {
			log.Info("Lot renumbered",
				zap.String("identifier", prev.Identifier),
				zap.String("lot_number", prev.LotNumber),
				zap.String("new_lot_number", next.LotNumber),
			)
			res.Renames = append(res.Renames, Rename{Identifier: prev.Identifier, From: prev.LotNumber, To: next.LotNumber})
			updated.LotNumber = next.LotNumber
			if opts.CatalogPrefix != "" {
				updated.CatalogID = opts.CatalogPrefix + next.LotNumber
			}
		}

		for _, f := range opts.UpdateFields {
			if err := updated.CopyField(f, next); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
			}
		}

		consumed[j] = true
		res.Matched = append(res.Matched, updated)
	}

	// Step 4: whatever no old lot claimed is new
	for j, next := range fresh.Records {
		if !consumed[j] {
			res.New = append(res.New, next.Clone())
		}
	}

	s := res.Summary()
	log.Info("Reconciliation finished",
		zap.Int("old", old.Len()),
		zap.Int("new_snapshot", fresh.Len()),
		zap.Int("matched", s.Matched),
		zap.Int("new", s.New),
		zap.Int("removed", s.Removed),
		zap.Int("renames", s.Renames),
		zap.Int("conflicts", s.Conflicts),
	)
	return res, nil
}

// resolveImage decides whether next's primary image continues prev's image identity.
// It returns the durable URL to display on success, a conflict when continuity cannot be
// shown, or an error when several durable images qualify.
func resolveImage(ledger *Ledger, prev, next lot.Lot) (string, *ImageConflict, error) {
	candidates := ledger.Candidates(next.PrimaryImageURL)

	conflict := &ImageConflict{
		Identifier:  prev.Identifier,
		LotNumber:   prev.LotNumber,
		OldImageURL: prev.PrimaryImageURL,
		NewImageURL: next.PrimaryImageURL,
	}
	if len(candidates) == 0 {
		conflict.Reason = ConflictNoLedgerEntry
		return "", conflict, nil
	}

	var present []string
	for _, durable := range candidates {
		if prev.HasImage(durable) {
			present = append(present, durable)
		}
	}

	switch len(present) {
	case 0:
		conflict.Reason = ConflictNotInImages
		return "", conflict, nil
	case 1:
		return present[0], nil, nil
	default:
		return "", nil, &AmbiguousImageError{
			Identifier: prev.Identifier,
			ImageURL:   next.PrimaryImageURL,
			Candidates: present,
		}
	}
}

// buildIndex maps join key values to record positions. Records without a key value are
// left out of the index and logged.
func buildIndex(side string, snap lot.Snapshot, key lot.Field, log *zap.Logger) (map[string]int, error) {
	index := make(map[string]int, len(snap.Records))
	for i, rec := range snap.Records {
		v, _ := rec.Get(key)
		if v == "" {
			log.Warn("Lot has no join key value and cannot be matched",
				zap.String("snapshot", side),
				zap.String("join_key", string(key)),
				zap.String("lot_number", rec.LotNumber),
				zap.String("url", rec.DetailURL),
			)
			continue
		}
		if _, dup := index[v]; dup {
			return nil, &DuplicateKeyError{Snapshot: side, Field: key, Key: v}
		}
		index[v] = i
	}
	return index, nil
}

func (o Options) normalize() (Options, error) {
	if o.JoinKey == "" {
		o.JoinKey = lot.FieldIdentifier
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Ledger == nil {
		o.Ledger = NewLedger()
	}
	if o.UpdateFields == nil {
		o.UpdateFields = DefaultUpdateFields
	}

	for _, f := range o.UpdateFields {
		switch f {
		case o.JoinKey, lot.FieldIdentifier:
			return o, fmt.Errorf("%w: %s identifies the lot and cannot be updated", ErrInvalidPolicy, f)
		case lot.FieldPrimaryImageURL, lot.FieldDisplayImageURL, lot.FieldAdditionalImageURLs:
			return o, fmt.Errorf("%w: %s is governed by image continuity", ErrInvalidPolicy, f)
		}
	}
	return o, nil
}
