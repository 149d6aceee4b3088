package assets

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"

	"lot-sync/core/config"
	"lot-sync/core/lot"
	"lot-sync/core/reconcile"
	"lot-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Migrator copies lot images into the object store.
type Migrator struct {
	store    storage.Client
	storeCfg storage.Config
	cfg      config.Migration
	client   *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewMigrator creates a migrator uploading into storeCfg.Bucket.
func NewMigrator(store storage.Client, storeCfg storage.Config, cfg config.Migration, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Migrator{
		store:    store,
		storeCfg: storeCfg,
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout()},
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
}

// ObjectKey is the storage key of the n-th image of a lot, taken from src.
//
// The key carries a digest of the source URL. Different source images of one detail id
// always get different keys, also across runs.
func ObjectKey(folder, detailID string, n int, src string) string {
	sum := sha256.Sum256([]byte(src))
	return path.Join(folder, detailID, strconv.Itoa(n)+"-"+hex.EncodeToString(sum[:6])+".png")
}

// Migrate uploads the images of l and records new ledger entries.
// Only a cancelled context makes it fail; per image problems end up in the outcome.
func (m *Migrator) Migrate(ctx context.Context, l lot.Lot, folder string, ledger *reconcile.Ledger) (*Outcome, error) {
	out := &Outcome{Lot: l.Clone()}
	durables := make([]string, 0, len(l.AdditionalImageURLs))

	for i, src := range l.AdditionalImageURLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := m.migrateOne(ctx, src, ObjectKey(folder, l.DetailID, i+1, src), ledger)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out.Images = append(out.Images, res)
		if !res.OK() {
			m.logger.Warn("Image not migrated",
				zap.String("identifier", l.Identifier),
				zap.String("lot_number", l.LotNumber),
				zap.String("url", src),
				zap.String("status", string(res.Status)),
				zap.String("reason", res.Reason),
			)
			continue
		}

		durables = append(durables, res.DurableURL)
		if src == l.PrimaryImageURL {
			out.Lot.DisplayImageURL = res.DurableURL
		}
	}

	out.Lot.AdditionalImageURLs = durables
	return out, nil
}

// MigrateAll migrates every lot in order and returns the migrated lots.
func (m *Migrator) MigrateAll(ctx context.Context, lots []lot.Lot, folder string, ledger *reconcile.Ledger) ([]lot.Lot, []*Outcome, Report, error) {
	var report Report
	migrated := make([]lot.Lot, 0, len(lots))
	outcomes := make([]*Outcome, 0, len(lots))

	for _, l := range lots {
		o, err := m.Migrate(ctx, l, folder, ledger)
		if err != nil {
			return nil, nil, report, err
		}
		report.Add(o)
		migrated = append(migrated, o.Lot)
		outcomes = append(outcomes, o)
	}

	m.logger.Info("Images migrated",
		zap.String("folder", folder),
		zap.Int("lots", len(lots)),
		zap.Int("uploaded", report.Uploaded),
		zap.Int("reused", report.Reused),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return migrated, outcomes, report, nil
}

func (m *Migrator) migrateOne(ctx context.Context, src, key string, ledger *reconcile.Ledger) ImageResult {
	res := ImageResult{SourceURL: src}

	if durable, ok := ledger.Lookup(src); ok {
		res.DurableURL, res.Status = durable, StatusReused
		return res
	}

	raw, err := m.download(ctx, src)
	if err != nil {
		res.Status, res.Reason = StatusFailed, err.Error()
		return res
	}
	if int64(len(raw)) > m.cfg.MaxDownloadBytes && m.cfg.MaxDownloadBytes > 0 {
		res.Status, res.Reason = StatusSkipped, fmt.Sprintf("download exceeds %d bytes", m.cfg.MaxDownloadBytes)
		return res
	}

	encoded, err := normalize(raw, m.cfg.MinSide, m.cfg.TargetSide)
	if err != nil {
		res.Status, res.Reason = StatusFailed, err.Error()
		return res
	}
	if int64(len(encoded)) > m.cfg.MaxEncodedBytes && m.cfg.MaxEncodedBytes > 0 {
		res.Status, res.Reason = StatusSkipped, fmt.Sprintf("encoded image exceeds %d bytes", m.cfg.MaxEncodedBytes)
		return res
	}

	_, err = m.store.PutObject(ctx, m.storeCfg.Bucket, key, bytes.NewReader(encoded), int64(len(encoded)), minio.PutObjectOptions{
		ContentType: "image/png",
	})
	if err != nil {
		res.Status, res.Reason = StatusFailed, fmt.Sprintf("upload %s: %v", key, err)
		return res
	}

	res.DurableURL, res.Status = m.storeCfg.ObjectURL(key), StatusUploaded
	ledger.Append(src, res.DurableURL)
	return res
}

// download fetches src, reading at most one byte past the download limit.
func (m *Migrator) download(ctx context.Context, src string) ([]byte, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image url: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if m.cfg.MaxDownloadBytes > 0 {
		body = io.LimitReader(resp.Body, m.cfg.MaxDownloadBytes+1)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	return raw, nil
}
