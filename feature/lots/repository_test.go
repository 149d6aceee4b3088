package lots

import (
	"context"
	"testing"
	"time"

	"lot-sync/core/lot"
	"lot-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_LoadSnapshotEmpty(t *testing.T) {
	repo := newTestRepo(t)

	snap, exists, err := repo.LoadSnapshot(context.Background(), "none")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Zero(t, snap.Len())
	assert.Empty(t, snap.Missing(lot.AllFields...))
}

func TestRepository_SaveRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	overflow := "resto del texto"
	lots := []lot.Lot{
		{
			Identifier:          "https://subastas.test/lote/1",
			CatalogID:           "HGM1",
			LotNumber:           "1",
			Title:               "Lote 1 - Torno",
			TitleOverflow:       &overflow,
			Location:            "Jalisco",
			PrimaryImageURL:     "https://subastas.test/img/1.jpg",
			DisplayImageURL:     "https://cdn.test/lots/a/1/1.png",
			Price:               "1500.00",
			CurrencyCode:        "MXN",
			DetailURL:           "https://subastas.test/lote/1",
			DetailID:            "1",
			Description:         "Torno.",
			AdditionalImageURLs: []string{"https://cdn.test/lots/a/1/1.png", "https://cdn.test/lots/a/1/2.png"},
			Labels:              lot.Labels{Auction: "Subasta", Availability: "In stock", Condition: "Used", Brand: "Hilco", CustomLabel: "x"},
		},
		{
			Identifier:          "https://subastas.test/lote/2",
			LotNumber:           "2",
			DetailID:            "2",
			AdditionalImageURLs: []string{},
		},
	}
	entries := []reconcile.LedgerEntry{{OriginalURL: "https://subastas.test/img/1.jpg", DurableURL: "https://cdn.test/lots/a/1/1.png"}}
	run := &RunRow{ID: "run-1", Auction: "a", Status: StatusSucceeded, New: 2, StartedAt: time.Now(), FinishedAt: time.Now()}
	changes := []ChangeRow{{Kind: ChangeNew, Identifier: "https://subastas.test/lote/1", LotNumber: "1"}}

	require.NoError(t, repo.Save(ctx, "a", lots, entries, run, changes))

	snap, exists, err := repo.LoadSnapshot(ctx, "a")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, lots, snap.Records)

	// other auctions are isolated
	other, err := repo.ListLots(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, other)

	ledger, err := repo.LoadLedger(ctx, "a")
	require.NoError(t, err)
	durable, ok := ledger.Lookup("https://subastas.test/img/1.jpg")
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.test/lots/a/1/1.png", durable)
	assert.Empty(t, ledger.Pending())

	gotRun, gotChanges, err := repo.GetRun(ctx, "a", "run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, gotRun.New)
	require.Len(t, gotChanges, 1)
	assert.Equal(t, "run-1", gotChanges[0].RunID)

	// a second save replaces the dataset and appends to the ledger
	more := []reconcile.LedgerEntry{{OriginalURL: "https://subastas.test/img/3.jpg", DurableURL: "https://cdn.test/lots/a/3/1.png"}}
	run2 := &RunRow{ID: "run-2", Auction: "a", Status: StatusSucceeded, StartedAt: time.Now().Add(time.Second)}
	require.NoError(t, repo.Save(ctx, "a", lots[1:], more, run2, nil))

	stored, err := repo.ListLots(ctx, "a")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "2", stored[0].LotNumber)

	ledger, err = repo.LoadLedger(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, ledger.Len())

	runs, err := repo.ListRuns(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
}

func TestRepository_SaveRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := []lot.Lot{{Identifier: "x", LotNumber: "1", AdditionalImageURLs: []string{}}}
	require.NoError(t, repo.Save(ctx, "a", first, nil, &RunRow{ID: "r1", Auction: "a", Status: StatusSucceeded}, nil))

	// duplicate identifiers violate the unique index after the delete ran
	dup := []lot.Lot{{Identifier: "y", LotNumber: "2"}, {Identifier: "y", LotNumber: "3"}}
	err := repo.Save(ctx, "a", dup, nil, &RunRow{ID: "r2", Auction: "a", Status: StatusSucceeded}, nil)
	require.Error(t, err)

	stored, err := repo.ListLots(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, first, stored)

	_, _, err = repo.GetRun(ctx, "a", "r2")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRepository_GetRunNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.RecordRun(ctx, &RunRow{ID: "r1", Auction: "a", Status: StatusSkipped}, nil))

	_, _, err := repo.GetRun(ctx, "b", "r1")
	assert.ErrorIs(t, err, ErrRunNotFound)

	run, changes, err := repo.GetRun(ctx, "a", "r1")
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, run.Status)
	assert.Empty(t, changes)
}

func TestRepository_MarkCleaned(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.RecordRun(ctx, &RunRow{ID: "r1", Auction: "a", Status: StatusSucceeded}, nil))
	require.NoError(t, repo.MarkCleaned(ctx, "r1", 4))

	run, _, err := repo.GetRun(ctx, "a", "r1")
	require.NoError(t, err)
	assert.Equal(t, 4, run.Cleaned)
}
