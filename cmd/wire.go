package cmd

import (
	"context"
	"fmt"
	"time"

	"lot-sync/core/config"
	"lot-sync/core/database"
	"lot-sync/core/storage"
	"lot-sync/feature/assets"
	"lot-sync/feature/classifier"
	"lot-sync/feature/lots"
	"lot-sync/feature/scraper"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// pipeline holds the collaborators shared by the sync and serve commands.
type pipeline struct {
	db      *gorm.DB
	store   storage.Client
	repo    *lots.Repository
	service *lots.Service
}

func buildPipeline(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*pipeline, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}

	repo := lots.NewRepository(db)
	if err := repo.AutoMigrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate lot tables: %w", err)
	}

	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if err := storage.EnsureBucket(ctx, store, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		return nil, err
	}

	model, err := classifier.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to train location classifier: %w", err)
	}

	deps := lots.Dependencies{
		Source:     scraper.New(cfg.Scraper, logg),
		Extractor:  scraper.NewExtractor(cfg.Sync.TitleLimit, cfg.Sync.DescriptionLimit),
		Classifier: model,
		Migrator:   assets.NewMigrator(store, cfg.Storage, cfg.Migration, logg),
		Cleaner:    assets.NewCleaner(store, cfg.Storage.Bucket, logg),
	}
	ttl := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	return &pipeline{
		db:      db,
		store:   store,
		repo:    repo,
		service: lots.NewService(repo, deps, cfg.Sync, ttl, logg),
	}, nil
}

func auctionNames(auctions []config.Auction) []string {
	names := make([]string, 0, len(auctions))
	for _, a := range auctions {
		names = append(names, a.Name)
	}
	return names
}
