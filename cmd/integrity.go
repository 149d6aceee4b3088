package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"lot-sync/core/config"
	"lot-sync/core/database"
	"lot-sync/core/logger"
	"lot-sync/core/storage"
	"lot-sync/feature/integrity"
	"lot-sync/feature/lots"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag  bool
	jsonFlag bool
)

// integrityCmd runs every integrity check.
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on storage and the lot database",
	Long: `Checks that every auction folder exists in the bucket, that the lot tables match
their models and that the image ledger agrees with the stored objects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return cmd.Help()
		}
		svc, logg, err := newIntegrityService(cmd)
		if err != nil {
			return err
		}

		startTime := time.Now()
		report := svc.CheckAll(cmd.Context())

		if fixFlag && len(report.Structure) > 0 {
			if err := svc.FixStructure(cmd.Context(), report.Structure); err != nil {
				return fmt.Errorf("failed to fix structure: %w", err)
			}
			logg.Info("Created missing auction folders", zap.Strings("folders", report.Structure))
			report.Structure = nil
		}

		if jsonFlag {
			return writeJSON("integrity", report, logg)
		}

		fmt.Println("\n=== Integrity Report ===")
		fmt.Printf("Missing Folders: %d\n", len(report.Structure))
		if report.Schema != nil {
			fmt.Printf("Schema Matched: %t\n", report.Schema.Matched)
		}
		for name, img := range report.Images {
			fmt.Printf("%s: %d ledger entries, %d objects, %d missing, %d orphans, %d foreign\n",
				name, img.Entries, img.Objects, len(img.Missing), len(img.Orphans), len(img.Foreign))
		}
		for _, e := range report.Errors {
			fmt.Printf("Error: %s\n", e)
		}
		fmt.Printf("Execution Time: %s\n", time.Since(startTime).String())

		if !report.OK() {
			return errors.New("integrity checks failed")
		}
		return nil
	},
}

// structureCmd checks and optionally fixes the folder structure.
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the auction folder structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, logg, err := newIntegrityService(cmd)
		if err != nil {
			return err
		}

		missing, err := svc.CheckStructure(cmd.Context())
		if err != nil {
			return err
		}
		if len(missing) == 0 {
			logg.Info("Structure integrity check passed")
			return nil
		}

		logg.Warn("Missing auction folders", zap.Strings("folders", missing))
		if !fixFlag {
			return fmt.Errorf("%d auction folders missing, run with --fix to create them", len(missing))
		}
		if err := svc.FixStructure(cmd.Context(), missing); err != nil {
			return err
		}
		logg.Info("Structure fixed", zap.Int("created", len(missing)))
		return nil
	},
}

// schemaCmd compares the lot tables with their models.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the lot database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, logg, err := newIntegrityService(cmd)
		if err != nil {
			return err
		}

		report, err := svc.CheckSchema()
		if err != nil {
			return err
		}
		if jsonFlag {
			return writeJSON("integrity_schema", report, logg)
		}
		for _, e := range report.Errors {
			fmt.Printf("Error: %s\n", e)
		}
		if !report.Matched {
			return errors.New("schema does not match the lot models")
		}
		logg.Info("Schema integrity check passed")
		return nil
	},
}

// imagesCmd compares the image ledger of one auction with its stored objects.
var imagesCmd = &cobra.Command{
	Use:   "images <auction>",
	Short: "Check the image ledger of an auction against storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, logg, err := newIntegrityService(cmd)
		if err != nil {
			return err
		}

		report, err := svc.Check(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonFlag {
			return writeJSON("integrity_images", report, logg)
		}

		fmt.Printf("\n=== Image Integrity %s ===\n", args[0])
		fmt.Printf("Ledger Entries: %d\n", report.Entries)
		fmt.Printf("Stored Objects: %d\n", report.Objects)
		fmt.Printf("Missing: %d\n", len(report.Missing))
		fmt.Printf("Orphans: %d\n", len(report.Orphans))
		fmt.Printf("Foreign: %d\n", len(report.Foreign))
		if !report.OK() {
			return errors.New("image ledger and storage disagree")
		}
		return nil
	},
}

func newIntegrityService(cmd *cobra.Command) (*integrity.Service, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection required: %w", err)
	}
	repo := lots.NewRepository(db)

	return integrity.NewService(client, cfg.Storage, db, repo, cfg.Auctions, logg), logg, nil
}

// writeJSON saves v to a timestamped file in the working directory.
func writeJSON(name string, v any, logg *zap.Logger) error {
	filename := fmt.Sprintf("%s_%d.json", name, time.Now().Unix())
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save JSON file: %w", err)
	}
	logg.Info("Detailed JSON report saved", zap.String("file", filename))
	fmt.Printf("Detailed JSON saved to: %s\n", filename)
	return nil
}

func init() {
	integrityCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Save the detailed report as JSON")
	integrityCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing auction folders")
	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing auction folders")

	integrityCmd.AddCommand(structureCmd)
	integrityCmd.AddCommand(schemaCmd)
	integrityCmd.AddCommand(imagesCmd)
	RootCmd.AddCommand(integrityCmd)
}
