package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lot-sync/core/config"
	"lot-sync/core/loader"
	"lot-sync/core/logger"
	"lot-sync/core/middleware/auth"
	"lot-sync/core/middleware/rayid"
	"lot-sync/feature/integrity"
	"lot-sync/feature/lots"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveSyncEvery time.Duration

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lot-sync HTTP server",
	Long:  `Starts the HTTP server exposing stored lots, run history, integrity checks and metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
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

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// 3. Connect database and storage
		p, err := buildPipeline(ctx, cfg, logg)
		if err != nil {
			logg.Fatal("Failed to initialize sync pipeline", zap.Error(err))
		}
		logg.Info("Connected to lot database", zap.String("driver", cfg.Database.Driver))

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 5. Initialize Feature Loader
		names := auctionNames(cfg.Auctions)
		mgr := loader.NewManager()
		mgr.Register(lots.NewFeature(p.service, names))
		mgr.Register(integrity.NewFeature(p.store, cfg.Storage, p.db, p.repo, cfg.Auctions, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with the RayID
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth, metrics stay public for scrapers
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/metrics"}}))

		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

		// 6. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Optional background sync
		if serveSyncEvery > 0 && len(cfg.Auctions) > 0 {
			opts := lots.SyncOptions{Cleanup: cfg.Sync.Cleanup}
			go scheduleSync(ctx, p.service, cfg.Auctions, opts, serveSyncEvery, logg)
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		cancel()
		_ = app.Shutdown()
	},
}

// scheduleSync runs syncAll on every tick until ctx is done.
func scheduleSync(ctx context.Context, service *lots.Service, auctions []config.Auction, opts lots.SyncOptions, every time.Duration, logg *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := syncAll(ctx, service, auctions, opts, logg); err != nil {
				logg.Warn("Background sync finished with failures", zap.Error(err))
			}
		}
	}
}

func init() {
	serveCmd.Flags().DurationVar(&serveSyncEvery, "sync-every", 0, "Synchronize every configured auction on this interval")
	RootCmd.AddCommand(serveCmd)
}
