package assets

import (
	"context"
	"path"

	"lot-sync/core/lot"
	"lot-sync/core/storage"

	"go.uber.org/zap"
)

// Cleaner removes the stored images of removed lots.
type Cleaner struct {
	store  storage.Client
	bucket string
	logger *zap.Logger
}

// NewCleaner creates a cleaner for bucket.
func NewCleaner(store storage.Client, bucket string, logger *zap.Logger) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cleaner{store: store, bucket: bucket, logger: logger}
}

// RemoveFolder deletes every object of one lot folder and returns how many were removed.
func (c *Cleaner) RemoveFolder(ctx context.Context, folder, detailID string) (int, error) {
	return storage.RemovePrefix(ctx, c.store, c.bucket, path.Join(folder, detailID)+"/")
}

// RemoveLots deletes the folders of lots. Failures are logged and counted, the
// remaining lots are still processed.
func (c *Cleaner) RemoveLots(ctx context.Context, folder string, lots []lot.Lot) (removed int, failed int) {
	for _, l := range lots {
		if l.DetailID == "" {
			continue
		}
		n, err := c.RemoveFolder(ctx, folder, l.DetailID)
		removed += n
		if err != nil {
			failed++
			c.logger.Warn("Failed to clean up lot images",
				zap.String("identifier", l.Identifier),
				zap.String("lot_number", l.LotNumber),
				zap.String("folder", path.Join(folder, l.DetailID)),
				zap.Error(err),
			)
		}
	}
	return removed, failed
}
