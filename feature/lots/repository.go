package lots

import (
	"context"
	"errors"
	"fmt"

	"lot-sync/core/database"
	"lot-sync/core/lot"
	"lot-sync/core/reconcile"

	"gorm.io/gorm"
)

// ErrRunNotFound is returned when a run id is unknown for an auction.
var ErrRunNotFound = errors.New("sync run not found")

const insertBatchSize = 200

// Repository persists lots, the image ledger and run history.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository on db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AutoMigrate creates or updates the tables.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&LotRow{}, &LedgerRow{}, &RunRow{}, &ChangeRow{}); err != nil {
		return fmt.Errorf("failed to migrate lot tables: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored dataset of auction. The snapshot columns are read
// from the live table so a table missing a column fails the reconciliation schema
// check. exists is false when the auction has never been imported.
func (r *Repository) LoadSnapshot(ctx context.Context, auction string) (snap lot.Snapshot, exists bool, err error) {
	cols, err := database.ColumnSet(r.db.WithContext(ctx), LotRow{}.TableName())
	if err != nil {
		return lot.Snapshot{}, false, fmt.Errorf("failed to inspect lots table: %w", err)
	}

	fields := make([]lot.Field, 0, len(lot.AllFields))
	for _, f := range lot.AllFields {
		if _, ok := cols[string(f)]; ok {
			fields = append(fields, f)
		}
	}

	records, err := r.ListLots(ctx, auction)
	if err != nil {
		return lot.Snapshot{}, false, err
	}
	return lot.NewSnapshotWithColumns(fields, records...), len(records) > 0, nil
}

// ListLots returns the stored lots of auction in dataset order.
func (r *Repository) ListLots(ctx context.Context, auction string) ([]lot.Lot, error) {
	var rows []LotRow
	if err := r.db.WithContext(ctx).
		Where("auction = ?", auction).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load lots: %w", err)
	}

	out := make([]lot.Lot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Lot())
	}
	return out, nil
}

// LoadLedger returns the image ledger of auction in insertion order.
func (r *Repository) LoadLedger(ctx context.Context, auction string) (*reconcile.Ledger, error) {
	var rows []LedgerRow
	if err := r.db.WithContext(ctx).
		Where("auction = ?", auction).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load image ledger: %w", err)
	}

	entries := make([]reconcile.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, reconcile.LedgerEntry{OriginalURL: row.OriginalURL, DurableURL: row.DurableURL})
	}
	return reconcile.NewLedger(entries...), nil
}

// Save replaces the dataset of auction with lots, appends the ledger entries and records
// the run in a single transaction.
func (r *Repository) Save(ctx context.Context, auction string, lots []lot.Lot, entries []reconcile.LedgerEntry, run *RunRow, changes []ChangeRow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("auction = ?", auction).Delete(&LotRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear lots: %w", err)
		}

		if len(lots) > 0 {
			rows := make([]LotRow, 0, len(lots))
			for i, l := range lots {
				rows = append(rows, toRow(auction, i, l))
			}
			if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert lots: %w", err)
			}
		}

		if len(entries) > 0 {
			rows := make([]LedgerRow, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, LedgerRow{Auction: auction, OriginalURL: e.OriginalURL, DurableURL: e.DurableURL})
			}
			if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to append image ledger: %w", err)
			}
		}

		return recordRun(tx, run, changes)
	})
}

// RecordRun stores a run that did not change the dataset.
func (r *Repository) RecordRun(ctx context.Context, run *RunRow, changes []ChangeRow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return recordRun(tx, run, changes)
	})
}

func recordRun(tx *gorm.DB, run *RunRow, changes []ChangeRow) error {
	if err := tx.Create(run).Error; err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	if len(changes) == 0 {
		return nil
	}
	for i := range changes {
		changes[i].RunID = run.ID
	}
	if err := tx.CreateInBatches(changes, insertBatchSize).Error; err != nil {
		return fmt.Errorf("failed to record run changes: %w", err)
	}
	return nil
}

// MarkCleaned sets the number of image objects deleted after run id.
func (r *Repository) MarkCleaned(ctx context.Context, id string, cleaned int) error {
	if err := r.db.WithContext(ctx).Model(&RunRow{}).Where("id = ?", id).Update("cleaned", cleaned).Error; err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// ListRuns returns the latest runs of auction, newest first.
func (r *Repository) ListRuns(ctx context.Context, auction string, limit int) ([]RunRow, error) {
	var runs []RunRow
	q := r.db.WithContext(ctx).Where("auction = ?", auction).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run of auction with its changes.
func (r *Repository) GetRun(ctx context.Context, auction, id string) (*RunRow, []ChangeRow, error) {
	var run RunRow
	err := r.db.WithContext(ctx).Where("auction = ? AND id = ?", auction, id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrRunNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load run: %w", err)
	}

	var changes []ChangeRow
	if err := r.db.WithContext(ctx).Where("run_id = ?", id).Order("id ASC").Find(&changes).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load run changes: %w", err)
	}
	return &run, changes, nil
}
