package lot

import (
	"fmt"
	"strings"
)

// Field names a logical column of the lot schema.
type Field string

const (
	FieldIdentifier          Field = "identifier"
	FieldCatalogID           Field = "catalog_id"
	FieldLotNumber           Field = "lot_number"
	FieldTitle               Field = "title"
	FieldTitleOverflow       Field = "title_overflow"
	FieldLocation            Field = "location"
	FieldPrimaryImageURL     Field = "primary_image_url"
	FieldDisplayImageURL     Field = "display_image_url"
	FieldPrice               Field = "price"
	FieldCurrencyCode        Field = "currency_code"
	FieldDetailURL           Field = "detail_url"
	FieldDetailID            Field = "detail_id"
	FieldDescription         Field = "description"
	FieldDescriptionOverflow Field = "description_overflow"
	FieldAdditionalImageURLs Field = "additional_image_urls"
)

// AllFields lists every column of the schema in persistence order.
var AllFields = []Field{
	FieldIdentifier,
	FieldCatalogID,
	FieldLotNumber,
	FieldTitle,
	FieldTitleOverflow,
	FieldLocation,
	FieldPrimaryImageURL,
	FieldDisplayImageURL,
	FieldPrice,
	FieldCurrencyCode,
	FieldDetailURL,
	FieldDetailID,
	FieldDescription,
	FieldDescriptionOverflow,
	FieldAdditionalImageURLs,
}

// ParseField converts a column name into a Field.
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range AllFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown lot field %q", name)
}

// ParseFields converts a list of column names into Fields.
func ParseFields(names []string) ([]Field, error) {
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		f, err := ParseField(name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Labels holds the constant columns stamped onto lots when they first enter a dataset.
type Labels struct {
	// Auction is the display name of the auction the lot belongs to.
	Auction string `json:"auction,omitempty"`
	// Availability is the stock label (e.g. "In stock").
	Availability string `json:"availability,omitempty"`
	// Condition is the item condition label (e.g. "Used").
	Condition string `json:"condition,omitempty"`
	// Brand is the seller brand.
	Brand string `json:"brand,omitempty"`
	// CustomLabel groups lots of the same auction family.
	CustomLabel string `json:"custom_label_0,omitempty"`
}

// Lot is one auction item.
type Lot struct {
	// Identifier is the stable key assigned by the source site.
	Identifier string `json:"identifier"`
	// CatalogID is the dataset id (catalog prefix + lot number).
	CatalogID string `json:"catalog_id,omitempty"`
	// LotNumber is the lot number shown on the site. It may be reassigned.
	LotNumber string `json:"lot_number"`
	// Title is the bounded title.
	Title string `json:"title"`
	// TitleOverflow holds the remainder of a truncated title.
	TitleOverflow *string `json:"title_overflow,omitempty"`
	// Location is the raw or classified location.
	Location string `json:"location"`
	// PrimaryImageURL is the listing image, the identity anchor for image continuity.
	PrimaryImageURL string `json:"primary_image_url"`
	// DisplayImageURL is the image shown to consumers, possibly a durable mirror.
	DisplayImageURL string `json:"display_image_url"`
	// Price is a two decimal string.
	Price string `json:"price"`
	// CurrencyCode is the normalized currency code.
	CurrencyCode string `json:"currency_code,omitempty"`
	// DetailURL is the detail page URL.
	DetailURL string `json:"detail_url"`
	// DetailID is the last path segment of DetailURL.
	DetailID string `json:"detail_id"`
	// Description is the bounded description.
	Description string `json:"description"`
	// DescriptionOverflow holds the remainder of a truncated description.
	DescriptionOverflow *string `json:"description_overflow,omitempty"`
	// AdditionalImageURLs is the deduplicated image set of the lot.
	AdditionalImageURLs []string `json:"additional_image_urls"`
	// Labels are the constant columns of the dataset.
	Labels Labels `json:"labels"`
}

// Clone returns a deep copy of the lot.
func (l Lot) Clone() Lot {
	c := l
	c.TitleOverflow = cloneString(l.TitleOverflow)
	c.DescriptionOverflow = cloneString(l.DescriptionOverflow)
	if l.AdditionalImageURLs != nil {
		c.AdditionalImageURLs = append(make([]string, 0, len(l.AdditionalImageURLs)), l.AdditionalImageURLs...)
	}
	return c
}

// HasImage reports whether url is part of the additional image set.
func (l Lot) HasImage(url string) bool {
	for _, u := range l.AdditionalImageURLs {
		if u == url {
			return true
		}
	}
	return false
}

// Get returns the value of a scalar field. Optional fields that are absent report ok=false.
// The image set is rendered comma separated.
func (l Lot) Get(f Field) (value string, ok bool) {
	switch f {
	case FieldIdentifier:
		return l.Identifier, true
	case FieldCatalogID:
		return l.CatalogID, true
	case FieldLotNumber:
		return l.LotNumber, true
	case FieldTitle:
		return l.Title, true
	case FieldTitleOverflow:
		return deref(l.TitleOverflow)
	case FieldLocation:
		return l.Location, true
	case FieldPrimaryImageURL:
		return l.PrimaryImageURL, true
	case FieldDisplayImageURL:
		return l.DisplayImageURL, true
	case FieldPrice:
		return l.Price, true
	case FieldCurrencyCode:
		return l.CurrencyCode, true
	case FieldDetailURL:
		return l.DetailURL, true
	case FieldDetailID:
		return l.DetailID, true
	case FieldDescription:
		return l.Description, true
	case FieldDescriptionOverflow:
		return deref(l.DescriptionOverflow)
	case FieldAdditionalImageURLs:
		return strings.Join(l.AdditionalImageURLs, ","), true
	}
	return "", false
}

// CopyField copies field f from src onto l.
func (l *Lot) CopyField(f Field, src Lot) error {
	switch f {
	case FieldIdentifier:
		l.Identifier = src.Identifier
	case FieldCatalogID:
		l.CatalogID = src.CatalogID
	case FieldLotNumber:
		l.LotNumber = src.LotNumber
	case FieldTitle:
		l.Title = src.Title
	case FieldTitleOverflow:
		l.TitleOverflow = cloneString(src.TitleOverflow)
	case FieldLocation:
		l.Location = src.Location
	case FieldPrimaryImageURL:
		l.PrimaryImageURL = src.PrimaryImageURL
	case FieldDisplayImageURL:
		l.DisplayImageURL = src.DisplayImageURL
	case FieldPrice:
		l.Price = src.Price
	case FieldCurrencyCode:
		l.CurrencyCode = src.CurrencyCode
	case FieldDetailURL:
		l.DetailURL = src.DetailURL
	case FieldDetailID:
		l.DetailID = src.DetailID
	case FieldDescription:
		l.Description = src.Description
	case FieldDescriptionOverflow:
		l.DescriptionOverflow = cloneString(src.DescriptionOverflow)
	case FieldAdditionalImageURLs:
		l.AdditionalImageURLs = Dedupe(src.AdditionalImageURLs)
	default:
		return fmt.Errorf("unknown lot field %q", f)
	}
	return nil
}

// Dedupe removes duplicate and empty URLs keeping first-seen order.
func Dedupe(urls []string) []string {
	if urls == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// SplitImages parses a comma separated image list.
func SplitImages(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return Dedupe(strings.Split(s, ","))
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
