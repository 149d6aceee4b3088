package lots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lot-sync/core/config"
	"lot-sync/core/logger"
	"lot-sync/core/lot"
	"lot-sync/core/reconcile"
	"lot-sync/core/text"
	"lot-sync/feature/assets"
	"lot-sync/feature/classifier"
	"lot-sync/feature/scraper"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Source scrapes the raw lots of an auction listing.
type Source interface {
	Scrape(ctx context.Context, auctionURL string) ([]scraper.RawLot, error)
}

// ImageMigrator copies the images of new lots into durable storage.
type ImageMigrator interface {
	MigrateAll(ctx context.Context, lots []lot.Lot, folder string, ledger *reconcile.Ledger) ([]lot.Lot, []*assets.Outcome, assets.Report, error)
}

// FolderCleaner deletes the stored images of removed lots.
type FolderCleaner interface {
	RemoveLots(ctx context.Context, folder string, lots []lot.Lot) (removed int, failed int)
}

// Dependencies groups the collaborators of a sync run.
type Dependencies struct {
	Source     Source
	Extractor  *scraper.Extractor
	Classifier classifier.Classifier
	Migrator   ImageMigrator
	Cleaner    FolderCleaner
}

// SyncOptions tunes a single run.
type SyncOptions struct {
	// DryRun computes the run without writing lots, ledger entries or run history.
	DryRun bool
	// Cleanup deletes the stored images of removed lots after persisting.
	Cleanup bool
}

// RunReport describes the outcome of a sync run.
type RunReport struct {
	ID         string                    `json:"id"`
	Auction    string                    `json:"auction"`
	Status     string                    `json:"status"`
	Reason     string                    `json:"reason,omitempty"`
	DryRun     bool                      `json:"dry_run"`
	Initial    bool                      `json:"initial"`
	Scraped    int                       `json:"scraped"`
	Summary    reconcile.Summary         `json:"summary"`
	Renames    []reconcile.Rename        `json:"renames,omitempty"`
	Conflicts  []reconcile.ImageConflict `json:"conflicts,omitempty"`
	Images     assets.Report             `json:"images"`
	Cleaned    int                       `json:"cleaned"`
	StartedAt  time.Time                 `json:"started_at"`
	FinishedAt time.Time                 `json:"finished_at"`

	// Lots is the resulting dataset, also filled on dry runs.
	Lots []lot.Lot `json:"-"`

	result *reconcile.Result
}

// Service runs synchronizations and serves the stored datasets.
type Service struct {
	repo   *Repository
	deps   Dependencies
	cfg    config.Sync
	cache  *datasetStore
	logger *zap.Logger
}

// NewService creates a lots service. cacheTTL bounds how long ListLots serves a loaded
// dataset; zero disables caching.
func NewService(repo *Repository, deps Dependencies, cfg config.Sync, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		deps:   deps,
		cfg:    cfg,
		cache:  newDatasetStore(cacheTTL, repo.ListLots),
		logger: logger,
	}
}

// Sync synchronizes the stored dataset of auction with its listing.
//
// Runs that scrape nothing or find unrepairable text are reported as skipped with a nil
// error. Failures keep the stored dataset and are returned as errors alongside the report.
func (s *Service) Sync(ctx context.Context, auction config.Auction, opts SyncOptions) (*RunReport, error) {
	report := &RunReport{
		ID:        uuid.NewString(),
		Auction:   auction.Name,
		DryRun:    opts.DryRun,
		StartedAt: time.Now(),
	}
	log := logger.WithAuction(s.logger, auction.Name).With(zap.String("run_id", report.ID))

	// 1. Scrape the listing
	raws, err := s.deps.Source.Scrape(ctx, auction.URL)
	if err != nil {
		if ctx.Err() != nil {
			return s.fail(ctx, log, report, fmt.Errorf("scrape interrupted: %w", err))
		}
		return s.skip(ctx, log, report, err.Error())
	}
	fresh := s.deps.Extractor.BuildAll(raws, log)
	report.Scraped = len(fresh)
	if len(fresh) == 0 {
		return s.skip(ctx, log, report, "no lots scraped")
	}

	// 2. Repair broken characters
	if err := repairText(fresh, log); err != nil {
		return s.skip(ctx, log, report, err.Error())
	}

	// 3. Load the stored dataset and its ledger
	prior, exists, err := s.repo.LoadSnapshot(ctx, auction.Name)
	if err != nil {
		return s.fail(ctx, log, report, err)
	}
	ledger, err := s.repo.LoadLedger(ctx, auction.Name)
	if err != nil {
		return s.fail(ctx, log, report, err)
	}
	report.Initial = !exists

	// 4. Reconcile
	ropts, err := s.reconcileOptions(auction, ledger, log)
	if err != nil {
		return s.fail(ctx, log, report, err)
	}
	result, err := reconcile.Reconcile(prior, lot.NewSnapshot(fresh...), ropts)
	if err != nil {
		return s.fail(ctx, log, report, fmt.Errorf("reconciliation failed: %w", err))
	}
	report.result = result
	report.Summary = result.Summary()
	report.Renames = result.Renames
	report.Conflicts = result.Conflicts

	// 5. Classify locations
	if err := s.classify(ctx, result.Matched, result.New, result.Removed); err != nil {
		return s.fail(ctx, log, report, err)
	}

	// 6. Migrate images of new lots and stamp them
	migrated, _, images, err := s.deps.Migrator.MigrateAll(ctx, result.New, auction.Folder(), ledger)
	if err != nil {
		return s.fail(ctx, log, report, fmt.Errorf("image migration failed: %w", err))
	}
	report.Images = images

	labels := s.labels(auction, raws)
	for i := range migrated {
		migrated[i].CatalogID = auction.CatalogPrefix + migrated[i].LotNumber
		migrated[i].Labels = labels
	}
	result.New = migrated

	report.Lots = make([]lot.Lot, 0, len(result.Matched)+len(migrated))
	report.Lots = append(report.Lots, result.Matched...)
	report.Lots = append(report.Lots, migrated...)

	if opts.DryRun {
		return s.finish(log, report, StatusSucceeded), nil
	}

	// 7. Persist
	report.Status = StatusSucceeded
	report.FinishedAt = time.Now()
	if err := s.repo.Save(ctx, auction.Name, report.Lots, ledger.Pending(), report.row(), changesOf(result)); err != nil {
		return s.fail(ctx, log, report, err)
	}
	s.cache.invalidate(auction.Name)

	// 8. Clean up removed lots
	if gone := departed(result.Removed, report.Lots); opts.Cleanup && len(gone) > 0 {
		removed, failed := s.deps.Cleaner.RemoveLots(ctx, auction.Folder(), gone)
		report.Cleaned = removed
		if failed > 0 {
			log.Warn("Some removed lots kept their images", zap.Int("failed", failed))
		}
		if err := s.repo.MarkCleaned(ctx, report.ID, removed); err != nil {
			log.Warn("Failed to record cleanup", zap.Error(err))
		}
	}

	return s.finish(log, report, StatusSucceeded), nil
}

// ListLots returns the stored dataset of auction.
func (s *Service) ListLots(ctx context.Context, auction string) ([]lot.Lot, error) {
	cache, err := s.cache.get(ctx, auction)
	if err != nil {
		return nil, err
	}
	return cache.Lots, nil
}

// ListRuns returns the latest runs of auction.
func (s *Service) ListRuns(ctx context.Context, auction string, limit int) ([]RunRow, error) {
	return s.repo.ListRuns(ctx, auction, limit)
}

// GetRun returns one run with its per-lot changes.
func (s *Service) GetRun(ctx context.Context, auction, id string) (*RunRow, []ChangeRow, error) {
	return s.repo.GetRun(ctx, auction, id)
}

func (s *Service) reconcileOptions(auction config.Auction, ledger *reconcile.Ledger, log *zap.Logger) (reconcile.Options, error) {
	opts := reconcile.Options{
		Ledger:        ledger,
		CatalogPrefix: auction.CatalogPrefix,
		Logger:        log,
	}

	if s.cfg.JoinKey != "" {
		key, err := lot.ParseField(s.cfg.JoinKey)
		if err != nil {
			return opts, fmt.Errorf("%w: join key: %v", reconcile.ErrInvalidPolicy, err)
		}
		opts.JoinKey = key
	}

	if names := s.cfg.Fields(); len(names) > 0 {
		fields, err := lot.ParseFields(names)
		if err != nil {
			return opts, fmt.Errorf("%w: update fields: %v", reconcile.ErrInvalidPolicy, err)
		}
		opts.UpdateFields = fields
	}
	return opts, nil
}

func (s *Service) classify(ctx context.Context, partitions ...[]lot.Lot) error {
	if s.deps.Classifier == nil {
		return nil
	}

	var inputs []string
	for _, p := range partitions {
		for _, l := range p {
			inputs = append(inputs, l.Location)
		}
	}
	if len(inputs) == 0 {
		return nil
	}

	labels, err := s.deps.Classifier.Predict(ctx, inputs)
	if err != nil {
		return fmt.Errorf("location classification failed: %w", err)
	}
	if len(labels) != len(inputs) {
		return fmt.Errorf("location classification returned %d labels for %d locations", len(labels), len(inputs))
	}

	i := 0
	for _, p := range partitions {
		for j := range p {
			p[j].Location = labels[i]
			i++
		}
	}
	return nil
}

func (s *Service) labels(auction config.Auction, raws []scraper.RawLot) lot.Labels {
	name := auction.Label
	if name == "" {
		name = scraper.AuctionName(raws)
	}
	return lot.Labels{
		Auction:      name,
		Availability: s.cfg.Availability,
		Condition:    s.cfg.Condition,
		Brand:        s.cfg.Brand,
		CustomLabel:  auction.CustomLabel,
	}
}

func (s *Service) skip(ctx context.Context, log *zap.Logger, report *RunReport, reason string) (*RunReport, error) {
	report.Reason = reason
	s.record(ctx, log, s.finish(log, report, StatusSkipped))
	return report, nil
}

func (s *Service) fail(ctx context.Context, log *zap.Logger, report *RunReport, err error) (*RunReport, error) {
	report.Reason = err.Error()
	s.record(ctx, log, s.finish(log, report, StatusFailed))
	return report, err
}

// record stores a run that left the dataset untouched.
func (s *Service) record(ctx context.Context, log *zap.Logger, report *RunReport) {
	if report.DryRun {
		return
	}
	var changes []ChangeRow
	if report.result != nil {
		changes = changesOf(report.result)
	}
	// a cancelled run is still recorded
	if err := s.repo.RecordRun(context.WithoutCancel(ctx), report.row(), changes); err != nil {
		log.Error("Failed to record sync run", zap.Error(err))
	}
}

func (s *Service) finish(log *zap.Logger, report *RunReport, status string) *RunReport {
	report.Status = status
	report.FinishedAt = time.Now()
	observeRun(report)

	fields := []zap.Field{
		zap.String("status", status),
		zap.Bool("dry_run", report.DryRun),
		zap.Int("scraped", report.Scraped),
		zap.Int("matched", report.Summary.Matched),
		zap.Int("new", report.Summary.New),
		zap.Int("removed", report.Summary.Removed),
		zap.Int("renames", report.Summary.Renames),
		zap.Int("conflicts", report.Summary.Conflicts),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	}
	switch status {
	case StatusSucceeded:
		log.Info("Sync run finished", fields...)
	case StatusSkipped:
		log.Warn("Sync run skipped, dataset unchanged", append(fields, zap.String("reason", report.Reason))...)
	default:
		log.Error("Sync run failed, dataset unchanged", append(fields, zap.String("reason", report.Reason))...)
	}
	return report
}

func (r *RunReport) row() *RunRow {
	return &RunRow{
		ID:           r.ID,
		Auction:      r.Auction,
		Status:       r.Status,
		Initial:      r.Initial,
		Scraped:      r.Scraped,
		Matched:      r.Summary.Matched,
		New:          r.Summary.New,
		Removed:      r.Summary.Removed,
		Renames:      r.Summary.Renames,
		Conflicts:    r.Summary.Conflicts,
		Uploaded:     r.Images.Uploaded,
		Reused:       r.Images.Reused,
		Skipped:      r.Images.Skipped,
		FailedImages: r.Images.Failed,
		Cleaned:      r.Cleaned,
		Error:        r.Reason,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
	}
}

func changesOf(r *reconcile.Result) []ChangeRow {
	changes := make([]ChangeRow, 0, len(r.New)+len(r.Removed)+len(r.Renames)+len(r.Conflicts))
	for _, l := range r.New {
		changes = append(changes, ChangeRow{Kind: ChangeNew, Identifier: l.Identifier, LotNumber: l.LotNumber})
	}
	for _, l := range r.Removed {
		changes = append(changes, ChangeRow{Kind: ChangeRemoved, Identifier: l.Identifier, LotNumber: l.LotNumber})
	}
	for _, rn := range r.Renames {
		changes = append(changes, ChangeRow{
			Kind:       ChangeRenamed,
			Identifier: rn.Identifier,
			LotNumber:  rn.To,
			Detail:     rn.From + " -> " + rn.To,
		})
	}
	for _, c := range r.Conflicts {
		changes = append(changes, ChangeRow{
			Kind:       ChangeImageConflict,
			Identifier: c.Identifier,
			LotNumber:  c.LotNumber,
			Detail:     fmt.Sprintf("%s: %s -> %s", c.Reason, c.OldImageURL, c.NewImageURL),
		})
	}
	return changes
}

// departed returns the removed lots whose image folder is not used by the dataset.
// A lot downgraded by an image conflict is removed and new at once and keeps its folder.
func departed(removed, dataset []lot.Lot) []lot.Lot {
	kept := make(map[string]struct{}, len(dataset))
	for _, l := range dataset {
		kept[l.DetailID] = struct{}{}
	}
	var out []lot.Lot
	for _, l := range removed {
		if _, ok := kept[l.DetailID]; !ok {
			out = append(out, l)
		}
	}
	return out
}

// repairText fixes broken characters in the text columns of lots in place.
func repairText(lots []lot.Lot, log *zap.Logger) error {
	var errs []error
	for i := range lots {
		l := &lots[i]
		for _, f := range []struct {
			name  string
			value *string
		}{
			{"title", &l.Title},
			{"title_overflow", l.TitleOverflow},
			{"description", &l.Description},
			{"description_overflow", l.DescriptionOverflow},
		} {
			if f.value == nil {
				continue
			}
			fixed, err := text.Repair(*f.value)
			*f.value = fixed
			if err != nil {
				log.Warn("Lot text has broken characters",
					zap.String("identifier", l.Identifier),
					zap.String("lot_number", l.LotNumber),
					zap.String("field", f.name),
					zap.Error(err),
				)
				errs = append(errs, fmt.Errorf("lot %s %s: %w", l.LotNumber, f.name, err))
			}
		}
	}
	return errors.Join(errs...)
}
