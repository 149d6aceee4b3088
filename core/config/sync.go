package config

import (
	"strings"
	"time"
)

// Auction identifies one auction site listing to synchronize.
type Auction struct {
	// Name is the stable key of the auction. Runs and lots are stored under it.
	Name string `mapstructure:"name"`
	// URL is the listing page of the auction.
	URL string `mapstructure:"url"`
	// Label overrides the auction label written on new lots.
	// Defaults to the name shown on the auction's detail pages.
	Label string `mapstructure:"label"`
	// CatalogPrefix prefixes the lot number to build catalog ids.
	CatalogPrefix string `mapstructure:"catalog_prefix"`
	// CustomLabel is written to the custom_label_0 column of new lots.
	CustomLabel string `mapstructure:"custom_label"`
}

// Folder is the storage folder holding the auction's migrated images.
func (a Auction) Folder() string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(a.Name), " ", "-"))
}

// Scraper holds configuration for the page scraper.
type Scraper struct {
	// UserAgent is sent with every request.
	UserAgent string `mapstructure:"user_agent" default:"Mozilla/5.0 (X11; Linux x86_64) lot-sync/1.0"`
	// TimeoutSeconds bounds a single page request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// DelayMillis is the pause between requests to the same domain.
	DelayMillis int `mapstructure:"delay_millis" default:"250"`
	// AllowedDomains is a comma separated domain allow list. Empty allows any host.
	AllowedDomains string `mapstructure:"allowed_domains" default:""`
}

// Timeout returns TimeoutSeconds as a duration.
func (s Scraper) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Delay returns DelayMillis as a duration.
func (s Scraper) Delay() time.Duration {
	return time.Duration(s.DelayMillis) * time.Millisecond
}

// Domains splits AllowedDomains.
func (s Scraper) Domains() []string {
	return splitList(s.AllowedDomains)
}

// Migration holds configuration for image migration.
type Migration struct {
	// MaxDownloadBytes skips source images larger than this.
	MaxDownloadBytes int64 `mapstructure:"max_download_bytes" default:"8388608"`
	// MaxEncodedBytes skips images whose encoded PNG is larger than this.
	MaxEncodedBytes int64 `mapstructure:"max_encoded_bytes" default:"10485760"`
	// MinSide is the side length both dimensions must exceed to be kept as is.
	MinSide int `mapstructure:"min_side" default:"600"`
	// TargetSide is the short side length smaller images are scaled to.
	TargetSide int `mapstructure:"target_side" default:"610"`
	// RequestsPerSecond paces image downloads.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"4"`
	// TimeoutSeconds bounds a single image download.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Timeout returns TimeoutSeconds as a duration.
func (m Migration) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// Sync holds the reconciliation policy and the constant columns of new lots.
type Sync struct {
	// JoinKey is the lot field matched across snapshots.
	JoinKey string `mapstructure:"join_key" default:"identifier"`
	// UpdateFields is a comma separated list of fields refreshed on matched lots.
	// Empty selects the engine defaults.
	UpdateFields string `mapstructure:"update_fields" default:""`
	// TitleLimit bounds the title column.
	TitleLimit int `mapstructure:"title_limit" default:"500"`
	// DescriptionLimit bounds the description column.
	DescriptionLimit int `mapstructure:"description_limit" default:"5000"`
	// Availability is written on new lots.
	Availability string `mapstructure:"availability" default:"In stock"`
	// Condition is written on new lots.
	Condition string `mapstructure:"condition" default:"Used"`
	// Brand is written on new lots.
	Brand string `mapstructure:"brand" default:"Hilco Global México"`
	// Cleanup removes the stored images of removed lots.
	Cleanup bool `mapstructure:"cleanup" default:"false"`
}

// Fields splits UpdateFields.
func (s Sync) Fields() []string {
	return splitList(s.UpdateFields)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
