package assets

import "lot-sync/core/lot"

// Status is the outcome of migrating one image.
type Status string

const (
	StatusUploaded Status = "uploaded"
	StatusReused   Status = "reused"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// ImageResult describes what happened to one source image.
type ImageResult struct {
	// SourceURL is the image URL on the auction site.
	SourceURL string `json:"source_url"`
	// DurableURL is the migrated copy. Empty for skipped and failed images.
	DurableURL string `json:"durable_url,omitempty"`
	// Status is the outcome.
	Status Status `json:"status"`
	// Reason explains skipped and failed images.
	Reason string `json:"reason,omitempty"`
}

// OK reports whether the image has a durable copy.
func (r ImageResult) OK() bool {
	return r.Status == StatusUploaded || r.Status == StatusReused
}

// Outcome is the migration result of one lot.
type Outcome struct {
	// Lot is the lot with its image set replaced by durable URLs.
	Lot lot.Lot `json:"lot"`
	// Images holds one result per source image, in set order.
	Images []ImageResult `json:"images"`
}

// Report aggregates the outcomes of a batch.
type Report struct {
	Uploaded int `json:"uploaded"`
	Reused   int `json:"reused"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Add counts the images of o.
func (r *Report) Add(o *Outcome) {
	for _, img := range o.Images {
		switch img.Status {
		case StatusUploaded:
			r.Uploaded++
		case StatusReused:
			r.Reused++
		case StatusSkipped:
			r.Skipped++
		case StatusFailed:
			r.Failed++
		}
	}
}
