package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"lot-sync/core/database"
	"lot-sync/core/logger"
	"lot-sync/core/server"
	"lot-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage lot images migrate to.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Scraper holds configuration for fetching auction pages.
	Scraper Scraper `mapstructure:"scraper"`
	// Migration holds configuration for image migration.
	Migration Migration `mapstructure:"migration"`
	// Sync holds the reconciliation policy and labels applied to new lots.
	Sync Sync `mapstructure:"sync"`
	// Auctions lists the auctions synchronized by default. Only read from config.yaml.
	Auctions []Auction `mapstructure:"auctions"`
}

// LoadConfig loads configuration from an optional config.yaml, the .env file and
// environment variables, in increasing order of precedence.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// 2. Register defaults from struct tags
	bindValues(v, Config{}, "")

	// 3. Optional config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Sync.TitleLimit < 3 || c.Sync.DescriptionLimit < 3 {
		return fmt.Errorf("sync limits must be at least 3, got title=%d description=%d", c.Sync.TitleLimit, c.Sync.DescriptionLimit)
	}
	seen := make(map[string]struct{}, len(c.Auctions))
	for i, a := range c.Auctions {
		if a.Name == "" || a.URL == "" {
			return fmt.Errorf("auction #%d needs a name and a url", i+1)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("auction %q is configured twice", a.Name)
		}
		seen[a.Name] = struct{}{}
	}
	return nil
}

// Auction returns the configured auction called name.
func (c *Config) Auction(name string) (Auction, bool) {
	for _, a := range c.Auctions {
		if a.Name == name {
			return a, true
		}
	}
	return Auction{}, false
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		switch field.Type.Kind() {
		case reflect.Struct:
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		case reflect.Slice:
			// lists come from the config file only
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
