package integrity

import (
	"context"
	"errors"
	"fmt"

	"lot-sync/core/config"
	"lot-sync/core/reconcile"
	"lot-sync/core/storage"
	"lot-sync/feature/integrity/checks"
	"lot-sync/feature/lots"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUnknownAuction is returned for auctions missing from the configuration.
var ErrUnknownAuction = errors.New("unknown auction")

// LedgerSource loads the image ledger of an auction.
type LedgerSource interface {
	LoadLedger(ctx context.Context, auction string) (*reconcile.Ledger, error)
}

// Service handles integrity checks.
type Service struct {
	client   storage.Client
	storeCfg storage.Config
	db       *gorm.DB
	ledgers  LedgerSource
	auctions []config.Auction
	logger   *zap.Logger
}

// NewService creates a new integrity service.
func NewService(client storage.Client, storeCfg storage.Config, db *gorm.DB, ledgers LedgerSource, auctions []config.Auction, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:   client,
		storeCfg: storeCfg,
		db:       db,
		ledgers:  ledgers,
		auctions: auctions,
		logger:   logger,
	}
}

// Report combines every check.
type Report struct {
	Structure []string                       `json:"missing_folders"`
	Schema    *checks.SchemaReport           `json:"schema,omitempty"`
	Images    map[string]*checks.ImageReport `json:"images"`
	Errors    []string                       `json:"errors"`
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	if len(r.Errors) > 0 || len(r.Structure) > 0 || (r.Schema != nil && !r.Schema.Matched) {
		return false
	}
	for _, img := range r.Images {
		if !img.OK() {
			return false
		}
	}
	return true
}

// CheckStructure returns the auction folders missing from the bucket.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	folders := make([]string, 0, len(s.auctions))
	for _, a := range s.auctions {
		folders = append(folders, a.Folder())
	}
	return checks.CheckStructure(ctx, s.client, s.storeCfg.Bucket, folders)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.client, s.storeCfg.Bucket, s.logger, missing)
}

// CheckSchema compares the lot tables with their models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, lots.LotRow{}, lots.LedgerRow{}, lots.RunRow{}, lots.ChangeRow{})
}

// Check compares the image ledger of auction with the objects stored for it.
func (s *Service) Check(ctx context.Context, auction string) (*checks.ImageReport, error) {
	a, ok := s.auction(auction)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAuction, auction)
	}

	ledger, err := s.ledgers.LoadLedger(ctx, a.Name)
	if err != nil {
		return nil, err
	}

	report, err := checks.CheckImages(ctx, s.client, s.storeCfg, a.Folder(), ledger.Entries())
	if err != nil {
		return nil, err
	}

	if !report.OK() {
		s.logger.Warn("Image ledger and storage disagree",
			zap.String("auction", a.Name),
			zap.Int("missing", len(report.Missing)),
			zap.Int("orphans", len(report.Orphans)),
			zap.Int("foreign", len(report.Foreign)),
		)
	}
	return report, nil
}

// CheckAll runs every check. Failures of single checks are collected in the report.
func (s *Service) CheckAll(ctx context.Context) *Report {
	report := &Report{Images: make(map[string]*checks.ImageReport, len(s.auctions))}

	if missing, err := s.CheckStructure(ctx); err != nil {
		report.Errors = append(report.Errors, "structure: "+err.Error())
	} else {
		report.Structure = missing
	}

	if s.db != nil {
		if schema, err := s.CheckSchema(); err != nil {
			report.Errors = append(report.Errors, "schema: "+err.Error())
		} else {
			report.Schema = schema
		}
	}

	for _, a := range s.auctions {
		img, err := s.Check(ctx, a.Name)
		if err != nil {
			report.Errors = append(report.Errors, a.Name+": "+err.Error())
			continue
		}
		report.Images[a.Name] = img
	}

	return report
}

func (s *Service) auction(name string) (config.Auction, bool) {
	for _, a := range s.auctions {
		if a.Name == name {
			return a, true
		}
	}
	return config.Auction{}, false
}
