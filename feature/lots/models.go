package lots

import (
	"strings"
	"time"

	"lot-sync/core/lot"
)

// Run statuses.
const (
	StatusSucceeded = "succeeded"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Change kinds recorded per lot.
const (
	ChangeNew           = "new"
	ChangeRemoved       = "removed"
	ChangeRenamed       = "renamed"
	ChangeImageConflict = "image_conflict"
)

// LotRow is one stored lot.
type LotRow struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	Auction             string    `gorm:"column:auction;size:128;not null;uniqueIndex:idx_lots_auction_identifier" json:"auction"`
	Identifier          string    `gorm:"column:identifier;size:512;not null;uniqueIndex:idx_lots_auction_identifier" json:"identifier"`
	Position            int       `gorm:"column:position" json:"position"`
	CatalogID           string    `gorm:"column:catalog_id;size:128" json:"catalog_id"`
	LotNumber           string    `gorm:"column:lot_number;size:64" json:"lot_number"`
	Title               string    `gorm:"column:title;type:text" json:"title"`
	TitleOverflow       *string   `gorm:"column:title_overflow;type:text" json:"title_overflow,omitempty"`
	Location            string    `gorm:"column:location;size:255" json:"location"`
	PrimaryImageURL     string    `gorm:"column:primary_image_url;size:1024" json:"primary_image_url"`
	DisplayImageURL     string    `gorm:"column:display_image_url;size:1024" json:"display_image_url"`
	Price               string    `gorm:"column:price;size:32" json:"price"`
	CurrencyCode        string    `gorm:"column:currency_code;size:8" json:"currency_code"`
	DetailURL           string    `gorm:"column:detail_url;size:1024" json:"detail_url"`
	DetailID            string    `gorm:"column:detail_id;size:128" json:"detail_id"`
	Description         string    `gorm:"column:description;type:text" json:"description"`
	DescriptionOverflow *string   `gorm:"column:description_overflow;type:text" json:"description_overflow,omitempty"`
	AdditionalImageURLs string    `gorm:"column:additional_image_urls;type:text" json:"additional_image_urls"`
	AuctionLabel        string    `gorm:"column:auction_label;size:255" json:"auction_label"`
	Availability        string    `gorm:"column:availability;size:64" json:"availability"`
	ItemCondition       string    `gorm:"column:item_condition;size:64" json:"condition"`
	Brand               string    `gorm:"column:brand;size:128" json:"brand"`
	CustomLabel         string    `gorm:"column:custom_label_0;size:128" json:"custom_label_0"`
	UpdatedAt           time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (LotRow) TableName() string { return "lots" }

// LedgerRow is one entry of the image ledger.
type LedgerRow struct {
	ID          uint      `gorm:"primaryKey"`
	Auction     string    `gorm:"column:auction;size:128;not null;index"`
	OriginalURL string    `gorm:"column:original_url;size:1024;not null"`
	DurableURL  string    `gorm:"column:durable_url;size:1024;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name.
func (LedgerRow) TableName() string { return "image_ledger" }

// RunRow records one sync run.
type RunRow struct {
	ID           string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Auction      string    `gorm:"column:auction;size:128;not null;index" json:"auction"`
	Status       string    `gorm:"column:status;size:16;not null" json:"status"`
	Initial      bool      `gorm:"column:initial" json:"initial"`
	Scraped      int       `gorm:"column:scraped" json:"scraped"`
	Matched      int       `gorm:"column:matched" json:"matched"`
	New          int       `gorm:"column:new" json:"new"`
	Removed      int       `gorm:"column:removed" json:"removed"`
	Renames      int       `gorm:"column:renames" json:"renames"`
	Conflicts    int       `gorm:"column:conflicts" json:"conflicts"`
	Uploaded     int       `gorm:"column:uploaded" json:"uploaded"`
	Reused       int       `gorm:"column:reused" json:"reused"`
	Skipped      int       `gorm:"column:skipped_images" json:"skipped_images"`
	FailedImages int       `gorm:"column:failed_images" json:"failed_images"`
	Cleaned      int       `gorm:"column:cleaned" json:"cleaned"`
	Error        string    `gorm:"column:error;type:text" json:"error,omitempty"`
	StartedAt    time.Time `gorm:"column:started_at" json:"started_at"`
	FinishedAt   time.Time `gorm:"column:finished_at" json:"finished_at"`
}

// TableName overrides the table name.
func (RunRow) TableName() string { return "sync_runs" }

// ChangeRow records what a run did to one lot.
type ChangeRow struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	RunID      string `gorm:"column:run_id;size:36;not null;index" json:"run_id"`
	Kind       string `gorm:"column:kind;size:16;not null" json:"kind"`
	Identifier string `gorm:"column:identifier;size:512" json:"identifier"`
	LotNumber  string `gorm:"column:lot_number;size:64" json:"lot_number"`
	Detail     string `gorm:"column:detail;type:text" json:"detail,omitempty"`
}

// TableName overrides the table name.
func (ChangeRow) TableName() string { return "sync_run_changes" }

// toRow converts a lot to its stored form.
func toRow(auction string, position int, l lot.Lot) LotRow {
	return LotRow{
		Auction:             auction,
		Identifier:          l.Identifier,
		Position:            position,
		CatalogID:           l.CatalogID,
		LotNumber:           l.LotNumber,
		Title:               l.Title,
		TitleOverflow:       l.TitleOverflow,
		Location:            l.Location,
		PrimaryImageURL:     l.PrimaryImageURL,
		DisplayImageURL:     l.DisplayImageURL,
		Price:               l.Price,
		CurrencyCode:        l.CurrencyCode,
		DetailURL:           l.DetailURL,
		DetailID:            l.DetailID,
		Description:         l.Description,
		DescriptionOverflow: l.DescriptionOverflow,
		AdditionalImageURLs: strings.Join(l.AdditionalImageURLs, ","),
		AuctionLabel:        l.Labels.Auction,
		Availability:        l.Labels.Availability,
		ItemCondition:       l.Labels.Condition,
		Brand:               l.Labels.Brand,
		CustomLabel:         l.Labels.CustomLabel,
	}
}

// Lot converts a stored row back into a lot.
func (r LotRow) Lot() lot.Lot {
	return lot.Lot{
		Identifier:          r.Identifier,
		CatalogID:           r.CatalogID,
		LotNumber:           r.LotNumber,
		Title:               r.Title,
		TitleOverflow:       r.TitleOverflow,
		Location:            r.Location,
		PrimaryImageURL:     r.PrimaryImageURL,
		DisplayImageURL:     r.DisplayImageURL,
		Price:               r.Price,
		CurrencyCode:        r.CurrencyCode,
		DetailURL:           r.DetailURL,
		DetailID:            r.DetailID,
		Description:         r.Description,
		DescriptionOverflow: r.DescriptionOverflow,
		AdditionalImageURLs: lot.SplitImages(r.AdditionalImageURLs),
		Labels: lot.Labels{
			Auction:      r.AuctionLabel,
			Availability: r.Availability,
			Condition:    r.ItemCondition,
			Brand:        r.Brand,
			CustomLabel:  r.CustomLabel,
		},
	}
}
