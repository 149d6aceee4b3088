package scraper

// RawLot is one lot as rendered by the auction site.
type RawLot struct {
	// LotNumber is the number shown on the listing card.
	LotNumber string `json:"lot_number"`
	// Name is the card title.
	Name string `json:"name"`
	// Location is the card location line, including its leading label word.
	Location string `json:"location"`
	// ListingImageURL is the image shown on the listing card.
	ListingImageURL string `json:"listing_image_url"`
	// DetailURL is the absolute URL of the detail page.
	DetailURL string `json:"detail_url"`
	// AuctionName is the auction name printed on the detail page.
	AuctionName string `json:"auction_name"`
	// Description is the first paragraph of the detail page.
	Description string `json:"description"`
	// PriceAmount is the amount of the price line, e.g. "$12,500.00".
	PriceAmount string `json:"price_amount"`
	// PriceCurrency is the currency of the price line, e.g. "DLLS". May be empty.
	PriceCurrency string `json:"price_currency"`
	// ImageURLs are the detail page images in page order.
	ImageURLs []string `json:"image_urls"`
}
