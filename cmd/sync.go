package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lot-sync/core/config"
	"lot-sync/core/logger"
	"lot-sync/feature/lots"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncURL     string
	syncPrefix  string
	syncLabel   string
	syncDryRun  bool
	syncCleanup bool
	syncEvery   time.Duration
	syncJSON    bool
)

// syncCmd synchronizes one or more auctions with their listings.
var syncCmd = &cobra.Command{
	Use:   "sync [auction...]",
	Short: "Synchronize auction lots with their listings",
	Long: `Scrapes the listing of every named auction (all configured auctions by default),
reconciles it with the stored snapshot and migrates the images of new lots.

With --url a single auction outside config.yaml can be synchronized; its name is the
first argument. With --every the runs repeat until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		auctions, err := selectAuctions(cfg, args, syncURL, syncPrefix, syncLabel)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// 3. Wire database, storage and the sync pipeline
		p, err := buildPipeline(ctx, cfg, logg)
		if err != nil {
			return err
		}

		opts := lots.SyncOptions{
			DryRun:  syncDryRun,
			Cleanup: syncCleanup || cfg.Sync.Cleanup,
		}

		// 4. Run once, or on every tick until interrupted
		if syncEvery <= 0 {
			return syncAll(ctx, p.service, auctions, opts, logg)
		}

		logg.Info("Scheduled sync started", zap.Duration("every", syncEvery), zap.Int("auctions", len(auctions)))
		ticker := time.NewTicker(syncEvery)
		defer ticker.Stop()
		for {
			if err := syncAll(ctx, p.service, auctions, opts, logg); err != nil {
				logg.Warn("Scheduled sync finished with failures", zap.Error(err))
			}
			select {
			case <-ctx.Done():
				logg.Info("Scheduled sync stopped")
				return nil
			case <-ticker.C:
			}
		}
	},
}

// selectAuctions resolves the auctions a sync command targets.
func selectAuctions(cfg *config.Config, names []string, url, prefix, label string) ([]config.Auction, error) {
	if url != "" {
		if len(names) != 1 {
			return nil, errors.New("--url needs exactly one auction name")
		}
		a, _ := cfg.Auction(names[0])
		a.Name = names[0]
		a.URL = url
		if prefix != "" {
			a.CatalogPrefix = prefix
		}
		if label != "" {
			a.Label = label
		}
		return []config.Auction{a}, nil
	}

	if len(names) == 0 {
		if len(cfg.Auctions) == 0 {
			return nil, errors.New("no auctions configured, add them to config.yaml or pass --url")
		}
		return cfg.Auctions, nil
	}

	out := make([]config.Auction, 0, len(names))
	for _, name := range names {
		a, ok := cfg.Auction(name)
		if !ok {
			return nil, fmt.Errorf("auction %q is not configured", name)
		}
		if prefix != "" {
			a.CatalogPrefix = prefix
		}
		if label != "" {
			a.Label = label
		}
		out = append(out, a)
	}
	return out, nil
}

// syncAll runs the auctions one after another. A failed auction does not stop the others.
func syncAll(ctx context.Context, service *lots.Service, auctions []config.Auction, opts lots.SyncOptions, logg *zap.Logger) error {
	var errs []error
	for _, a := range auctions {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		report, err := service.Sync(ctx, a, opts)
		if report != nil {
			printReport(report)
		}
		if err != nil {
			logg.Error("Sync failed", zap.String("auction", a.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", a.Name, err))
		}
	}
	return errors.Join(errs...)
}

func printReport(r *lots.RunReport) {
	if syncJSON {
		data, err := json.MarshalIndent(r, "", "  ")
		if err == nil {
			fmt.Println(string(data))
		}
		return
	}

	fmt.Printf("\n=== Sync %s (%s) ===\n", r.Auction, r.ID)
	fmt.Printf("Status: %s\n", r.Status)
	if r.Reason != "" {
		fmt.Printf("Reason: %s\n", r.Reason)
	}
	if r.DryRun {
		fmt.Println("Dry Run: nothing was written")
	}
	fmt.Printf("Scraped: %d\n", r.Scraped)
	fmt.Printf("Matched: %d  New: %d  Removed: %d\n", r.Summary.Matched, r.Summary.New, r.Summary.Removed)
	fmt.Printf("Renames: %d  Image Conflicts: %d\n", r.Summary.Renames, r.Summary.Conflicts)
	fmt.Printf("Images uploaded: %d  reused: %d  skipped: %d  failed: %d\n",
		r.Images.Uploaded, r.Images.Reused, r.Images.Skipped, r.Images.Failed)
	if r.Cleaned > 0 {
		fmt.Printf("Cleaned Objects: %d\n", r.Cleaned)
	}
	fmt.Printf("Execution Time: %s\n", r.FinishedAt.Sub(r.StartedAt).String())
}

func init() {
	syncCmd.Flags().StringVar(&syncURL, "url", "", "Listing URL of an auction missing from config.yaml")
	syncCmd.Flags().StringVar(&syncPrefix, "prefix", "", "Override the catalog id prefix of new lots")
	syncCmd.Flags().StringVar(&syncLabel, "label", "", "Override the auction label of new lots")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Reconcile and migrate without persisting")
	syncCmd.Flags().BoolVar(&syncCleanup, "cleanup", false, "Delete the stored images of removed lots")
	syncCmd.Flags().DurationVar(&syncEvery, "every", 0, "Repeat the sync on this interval until interrupted")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "Print run reports as JSON")
	RootCmd.AddCommand(syncCmd)
}
