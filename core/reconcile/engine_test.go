package reconcile

import (
	"errors"
	"testing"

	"lot-sync/core/lot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleLot(id, number, image string) lot.Lot {
	return lot.Lot{
		Identifier:          id,
		CatalogID:           "HIL" + number,
		LotNumber:           number,
		Title:               "Lote " + number,
		Location:            "Monterrey, Nuevo León",
		PrimaryImageURL:     image,
		DisplayImageURL:     image,
		Price:               "100.00",
		CurrencyCode:        "MXN",
		DetailURL:           id,
		DetailID:            number,
		Description:         "Descripción.",
		AdditionalImageURLs: []string{},
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	snap := lot.NewSnapshot(
		sampleLot("https://x/lote/1", "1", "https://x/img/1.jpg"),
		sampleLot("https://x/lote/2", "2", "https://x/img/2.jpg"),
	)

	res, err := Reconcile(snap, snap, Options{})
	require.NoError(t, err)

	assert.Empty(t, res.New)
	assert.Empty(t, res.Removed)
	assert.Empty(t, res.Renames)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, snap.Records, res.Matched)
}

func TestReconcile_RenameKeepsLotMatched(t *testing.T) {
	old := lot.NewSnapshot(sampleLot("A1", "5", "U1"))
	next := sampleLot("A1", "9", "U1")
	next.Title = "Lote renombrado"
	fresh := lot.NewSnapshot(next)

	res, err := Reconcile(old, fresh, Options{CatalogPrefix: "HIL"})
	require.NoError(t, err)

	require.Len(t, res.Matched, 1)
	assert.Empty(t, res.New)
	assert.Empty(t, res.Removed)
	assert.Equal(t, "9", res.Matched[0].LotNumber)
	assert.Equal(t, "HIL9", res.Matched[0].CatalogID)
	assert.Equal(t, "Lote renombrado", res.Matched[0].Title)
	assert.Equal(t, []Rename{{Identifier: "A1", From: "5", To: "9"}}, res.Renames)
}

func TestReconcile_RenameWithoutPrefixKeepsCatalogID(t *testing.T) {
	old := lot.NewSnapshot(sampleLot("A1", "5", "U1"))
	fresh := lot.NewSnapshot(sampleLot("A1", "9", "U1"))

	res, err := Reconcile(old, fresh, Options{})
	require.NoError(t, err)
	require.Len(t, res.Matched, 1)
	assert.Equal(t, "HIL5", res.Matched[0].CatalogID)
}

func TestReconcile_FullTurnover(t *testing.T) {
	x := sampleLot("X", "1", "U1")
	y := sampleLot("Y", "2", "U2")

	res, err := Reconcile(lot.NewSnapshot(x), lot.NewSnapshot(y), Options{})
	require.NoError(t, err)

	assert.Empty(t, res.Matched)
	assert.Equal(t, []lot.Lot{x}, res.Removed)
	assert.Equal(t, []lot.Lot{y}, res.New)
}

func TestReconcile_EmptyNewSnapshot(t *testing.T) {
	old := lot.NewSnapshot(sampleLot("A", "1", "U1"), sampleLot("B", "2", "U2"))

	res, err := Reconcile(old, lot.NewSnapshot(), Options{})
	require.NoError(t, err)

	assert.Empty(t, res.Matched)
	assert.Empty(t, res.New)
	assert.Equal(t, old.Records, res.Removed)
}

func TestReconcile_ImageContinuity(t *testing.T) {
	tests := []struct {
		name        string
		ledger      *Ledger
		images      []string
		wantMatched bool
		wantReason  ConflictReason
	}{
		{
			name:        "ledger entry with durable in images",
			ledger:      NewLedger(LedgerEntry{OriginalURL: "U2", DurableURL: "D1"}),
			images:      []string{"D1"},
			wantMatched: true,
		},
		{
			name:       "no ledger entry",
			ledger:     NewLedger(),
			images:     []string{"D1"},
			wantReason: ConflictNoLedgerEntry,
		},
		{
			name:       "durable not in images",
			ledger:     NewLedger(LedgerEntry{OriginalURL: "U2", DurableURL: "D1"}),
			images:     []string{"D9"},
			wantReason: ConflictNotInImages,
		},
		{
			name:       "nil ledger",
			ledger:     nil,
			images:     []string{"D1"},
			wantReason: ConflictNoLedgerEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := sampleLot("A1", "5", "U1")
			prev.AdditionalImageURLs = tt.images
			next := sampleLot("A1", "5", "U2")

			res, err := Reconcile(lot.NewSnapshot(prev), lot.NewSnapshot(next), Options{Ledger: tt.ledger})
			require.NoError(t, err)

			if tt.wantMatched {
				require.Len(t, res.Matched, 1)
				assert.Equal(t, "U2", res.Matched[0].PrimaryImageURL)
				assert.Equal(t, "D1", res.Matched[0].DisplayImageURL)
				assert.Empty(t, res.New)
				assert.Empty(t, res.Removed)
				assert.Empty(t, res.Conflicts)
				return
			}

			assert.Empty(t, res.Matched)
			assert.Equal(t, []lot.Lot{prev}, res.Removed)
			assert.Equal(t, []lot.Lot{next}, res.New)
			require.Len(t, res.Conflicts, 1)
			assert.Equal(t, tt.wantReason, res.Conflicts[0].Reason)
			assert.Equal(t, "U1", res.Conflicts[0].OldImageURL)
			assert.Equal(t, "U2", res.Conflicts[0].NewImageURL)
		})
	}
}

func TestReconcile_AmbiguousImageFailsClosed(t *testing.T) {
	prev := sampleLot("A1", "5", "U1")
	prev.AdditionalImageURLs = []string{"D1", "D2"}
	ledger := NewLedger(
		LedgerEntry{OriginalURL: "U2", DurableURL: "D1"},
		LedgerEntry{OriginalURL: "U2", DurableURL: "D2"},
	)

	res, err := Reconcile(lot.NewSnapshot(prev), lot.NewSnapshot(sampleLot("A1", "5", "U2")), Options{Ledger: ledger})
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAmbiguousImage))

	var amb *AmbiguousImageError
	require.True(t, errors.As(err, &amb))
	assert.Equal(t, []string{"D1", "D2"}, amb.Candidates)
}

func TestReconcile_SingleCandidateAmongHistoricalEntries(t *testing.T) {
	prev := sampleLot("A1", "5", "U1")
	prev.AdditionalImageURLs = []string{"D2"}
	ledger := NewLedger(
		LedgerEntry{OriginalURL: "U2", DurableURL: "D1"},
		LedgerEntry{OriginalURL: "U2", DurableURL: "D2"},
	)

	res, err := Reconcile(lot.NewSnapshot(prev), lot.NewSnapshot(sampleLot("A1", "5", "U2")), Options{Ledger: ledger})
	require.NoError(t, err)
	require.Len(t, res.Matched, 1)
	assert.Equal(t, "D2", res.Matched[0].DisplayImageURL)
}

func TestReconcile_SchemaMismatch(t *testing.T) {
	full := lot.NewSnapshot(sampleLot("A", "1", "U1"))
	partial := lot.NewSnapshotWithColumns(
		[]lot.Field{lot.FieldIdentifier, lot.FieldLotNumber},
		sampleLot("A", "1", "U1"),
	)

	_, err := Reconcile(full, partial, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "new", se.Snapshot)
	assert.Contains(t, se.Missing, lot.FieldPrimaryImageURL)
	assert.Contains(t, se.Missing, lot.FieldTitle)

	_, err = Reconcile(partial, full, Options{})
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "old", se.Snapshot)
}

func TestReconcile_DuplicateJoinKey(t *testing.T) {
	dup := lot.NewSnapshot(sampleLot("A", "1", "U1"), sampleLot("A", "2", "U2"))
	single := lot.NewSnapshot(sampleLot("A", "1", "U1"))

	_, err := Reconcile(single, dup, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))

	var de *DuplicateKeyError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "new", de.Snapshot)
	assert.Equal(t, "A", de.Key)

	_, err = Reconcile(dup, single, Options{})
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "old", de.Snapshot)
}

func TestReconcile_InvalidPolicy(t *testing.T) {
	snap := lot.NewSnapshot(sampleLot("A", "1", "U1"))

	for _, f := range []lot.Field{
		lot.FieldIdentifier,
		lot.FieldPrimaryImageURL,
		lot.FieldDisplayImageURL,
		lot.FieldAdditionalImageURLs,
	} {
		t.Run(string(f), func(t *testing.T) {
			_, err := Reconcile(snap, snap, Options{UpdateFields: []lot.Field{f}})
			assert.True(t, errors.Is(err, ErrInvalidPolicy))
		})
	}

	_, err := Reconcile(snap, snap, Options{JoinKey: lot.FieldDetailID, UpdateFields: []lot.Field{lot.FieldDetailID}})
	assert.True(t, errors.Is(err, ErrInvalidPolicy))
}

func TestReconcile_CustomJoinKey(t *testing.T) {
	prev := sampleLot("https://x/lote/old", "1", "U1")
	prev.DetailID = "77"
	next := sampleLot("https://x/lote/new", "1", "U1")
	next.DetailID = "77"

	res, err := Reconcile(lot.NewSnapshot(prev), lot.NewSnapshot(next), Options{JoinKey: lot.FieldDetailID})
	require.NoError(t, err)
	require.Len(t, res.Matched, 1)
	assert.Equal(t, "https://x/lote/old", res.Matched[0].Identifier)
}

func TestReconcile_EmptyUpdateFieldsCopiesNothing(t *testing.T) {
	prev := sampleLot("A", "1", "U1")
	next := sampleLot("A", "1", "U1")
	next.Price = "200.00"

	res, err := Reconcile(lot.NewSnapshot(prev), lot.NewSnapshot(next), Options{UpdateFields: []lot.Field{}})
	require.NoError(t, err)
	require.Len(t, res.Matched, 1)
	assert.Equal(t, "100.00", res.Matched[0].Price)
}

func TestReconcile_DoesNotMutateInputs(t *testing.T) {
	prev := sampleLot("A1", "5", "U1")
	prev.AdditionalImageURLs = []string{"D1"}
	next := sampleLot("A1", "9", "U2")
	next.Title = "Nuevo"
	old := lot.NewSnapshot(prev)
	fresh := lot.NewSnapshot(next)
	oldCopy, freshCopy := old.Clone(), fresh.Clone()

	res, err := Reconcile(old, fresh, Options{
		Ledger:        NewLedger(LedgerEntry{OriginalURL: "U2", DurableURL: "D1"}),
		CatalogPrefix: "HIL",
	})
	require.NoError(t, err)
	require.Len(t, res.Matched, 1)

	res.Matched[0].AdditionalImageURLs[0] = "changed"
	assert.Equal(t, oldCopy, old)
	assert.Equal(t, freshCopy, fresh)
}

func TestReconcile_PreservesOrder(t *testing.T) {
	old := lot.NewSnapshot(sampleLot("C", "3", "U3"), sampleLot("A", "1", "U1"), sampleLot("B", "2", "U2"))
	fresh := lot.NewSnapshot(sampleLot("Z", "9", "U9"), sampleLot("B", "2", "U2"), sampleLot("Y", "8", "U8"), sampleLot("C", "3", "U3"))

	res, err := Reconcile(old, fresh, Options{})
	require.NoError(t, err)

	ids := func(lots []lot.Lot) []string {
		out := make([]string, 0, len(lots))
		for _, l := range lots {
			out = append(out, l.Identifier)
		}
		return out
	}
	assert.Equal(t, []string{"C", "B"}, ids(res.Matched))
	assert.Equal(t, []string{"Z", "Y"}, ids(res.New))
	assert.Equal(t, []string{"A"}, ids(res.Removed))
	assert.Equal(t, Summary{Matched: 2, New: 2, Removed: 1}, res.Summary())
}

func TestReconcile_Diagnostics(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	prev := sampleLot("A1", "5", "U1")
	keyless := sampleLot("", "7", "U7")
	old := lot.NewSnapshot(prev, sampleLot("B", "6", "U6"))
	fresh := lot.NewSnapshot(sampleLot("A1", "5", "U2"), keyless, sampleLot("B", "8", "U6"))

	res, err := Reconcile(old, fresh, Options{Logger: logger})
	require.NoError(t, err)

	assert.Len(t, res.New, 2)
	assert.Len(t, res.Conflicts, 1)

	conflicts := logs.FilterMessageSnippet("without continuity").All()
	require.Len(t, conflicts, 1)
	fields := conflicts[0].ContextMap()
	assert.Equal(t, "A1", fields["identifier"])
	assert.Equal(t, "5", fields["lot_number"])
	assert.Equal(t, "U2", fields["url"])

	assert.Equal(t, 1, logs.FilterMessage("Lot renumbered").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("no join key").Len())
	assert.Equal(t, 1, logs.FilterMessage("Reconciliation finished").Len())
}

func TestReconcile_LogsSharedDurables(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ledger := NewLedger(
		LedgerEntry{OriginalURL: "U1", DurableURL: "D"},
		LedgerEntry{OriginalURL: "U2", DurableURL: "D"},
	)

	snap := lot.NewSnapshot(sampleLot("A", "1", "U1"))
	_, err := Reconcile(snap, snap, Options{Ledger: ledger, Logger: zap.New(core)})
	require.NoError(t, err)

	entries := logs.FilterMessageSnippet("several original images").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "D", entries[0].ContextMap()["durable_url"])
}
