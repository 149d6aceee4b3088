// Package config provides configuration management for lot-sync.
//
// It utilizes Viper for loading configuration from an optional config.yaml, the .env
// file and environment variables. Defaults come from the `default` struct tags of the
// partial configurations and are registered by reflection so every key can be
// overridden from the environment (SYNC_JOIN_KEY -> sync.join_key).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP port, API key and read cache TTL
//   - Database: driver (mysql, postgres, sqlite) and connection details
//   - Storage: S3/MinIO credentials, bucket and public URL of migrated images
//   - Log: Logging level and format
//   - Scraper: user agent, timeouts and domain allow list
//   - Migration: image size limits and download pacing
//   - Sync: join key, update fields, field limits and labels of new lots
//   - Auctions: the auction list, only available from config.yaml
//
// Credentials are only ever read from here and passed down explicitly.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	auction, ok := cfg.Auction("hilco-monterrey")
package config
