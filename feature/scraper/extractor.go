package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"lot-sync/core/lot"
	"lot-sync/core/text"

	"go.uber.org/zap"
)

// Extractor builds normalized lot records from raw lots.
type Extractor struct {
	// TitleLimit bounds the title field.
	TitleLimit int
	// DescriptionLimit bounds the description field.
	DescriptionLimit int
}

// NewExtractor creates an extractor with the given field limits.
func NewExtractor(titleLimit, descriptionLimit int) *Extractor {
	return &Extractor{TitleLimit: titleLimit, DescriptionLimit: descriptionLimit}
}

// Build normalizes one raw lot.
func (x *Extractor) Build(raw RawLot) (lot.Lot, error) {
	if raw.DetailURL == "" {
		return lot.Lot{}, fmt.Errorf("%w: lot %s has no detail url", ErrExtraction, raw.LotNumber)
	}

	rec := lot.Lot{
		Identifier:          raw.DetailURL,
		LotNumber:           raw.LotNumber,
		Location:            text.LocationText(raw.Location),
		PrimaryImageURL:     raw.ListingImageURL,
		DisplayImageURL:     raw.ListingImageURL,
		CurrencyCode:        text.NormalizeCurrency(raw.PriceCurrency),
		DetailURL:           raw.DetailURL,
		DetailID:            DetailID(raw.DetailURL),
		AdditionalImageURLs: lot.Dedupe(raw.ImageURLs),
	}
	if rec.AdditionalImageURLs == nil {
		rec.AdditionalImageURLs = []string{}
	}

	if raw.Name != "" {
		title, overflow, err := text.TruncateWithOverflow(x.TitleLimit, "Lote "+raw.LotNumber+" - "+raw.Name)
		if err != nil {
			return lot.Lot{}, fmt.Errorf("title of lot %s: %w", raw.LotNumber, err)
		}
		rec.Title, rec.TitleOverflow = title, overflow
	}

	description, overflow, err := text.TruncateWithOverflow(x.DescriptionLimit, text.CapitalizeSentences(raw.Description))
	if err != nil {
		return lot.Lot{}, fmt.Errorf("description of lot %s: %w", raw.LotNumber, err)
	}
	rec.Description, rec.DescriptionOverflow = description, overflow

	price, err := text.NormalizePrice(raw.PriceAmount)
	if err != nil {
		return lot.Lot{}, fmt.Errorf("%w: lot %s: %v", ErrExtraction, raw.LotNumber, err)
	}
	rec.Price = price

	return rec, nil
}

// BuildAll normalizes raws, logging and skipping the lots that cannot be built.
func (x *Extractor) BuildAll(raws []RawLot, logger *zap.Logger) []lot.Lot {
	out := make([]lot.Lot, 0, len(raws))
	for _, raw := range raws {
		rec, err := x.Build(raw)
		if err != nil {
			logger.Warn("Lot could not be extracted, lot skipped",
				zap.String("lot_number", raw.LotNumber),
				zap.String("url", raw.DetailURL),
				zap.Error(err),
			)
			continue
		}
		out = append(out, rec)
	}
	return out
}

// DetailID returns the last path segment of a detail URL.
func DetailID(detailURL string) string {
	p := detailURL
	if u, err := url.Parse(detailURL); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
