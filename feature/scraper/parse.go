package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	listingSection = "section.fondo-gris"
	listingCard    = "div.col-md-4.col-sm-12.col-xl-3.mb-3"
	cardNumber     = "span.icon"
	cardName       = "p.p-2.bold.fs18.mt-2"
	cardLocation   = "p.pt-0.pl-2.pr-2.m-0"
	detailSection  = "div.bg-white"
	detailColumn   = "div.col-md-6.col-lg-6"
	detailImage    = "img.img-responsive"
)

// parseCard reads one listing card. ok is false when the card has no detail link.
func parseCard(card *goquery.Selection, base *url.URL) (raw RawLot, ok bool) {
	if fields := strings.Fields(card.Find(cardNumber).First().Text()); len(fields) > 0 {
		raw.LotNumber = fields[len(fields)-1]
	}
	raw.Name = strings.TrimSpace(card.Find(cardName).First().Text())
	raw.Location = strings.TrimSpace(card.Find(cardLocation).First().Text())
	if src, exists := card.Find("img").First().Attr("src"); exists {
		raw.ListingImageURL = resolve(base, src)
	}

	href, exists := card.Find("a[href]").First().Attr("href")
	if !exists || strings.TrimSpace(href) == "" {
		return raw, false
	}
	raw.DetailURL = resolve(base, href)
	return raw, true
}

// parseDetail fills the detail page fields of raw from the detail section.
func parseDetail(section *goquery.Selection, base *url.URL, raw *RawLot) {
	columns := section.Find(detailColumn)

	if columns.Length() > 1 {
		raw.AuctionName = strings.TrimSpace(columns.Eq(1).Find("div").First().Find("p").First().Text())
	}

	// "Precio de salida: $12,500.00 MXN"
	if columns.Length() > 0 {
		line := columns.Last().Find("div").Eq(1).Find("ul").Last().Find("li").First().Text()
		if i := strings.LastIndex(line, ":"); i >= 0 {
			line = line[i+1:]
		}
		parts := strings.Fields(line)
		if len(parts) > 0 {
			raw.PriceAmount = parts[0]
		}
		if len(parts) == 2 {
			raw.PriceCurrency = parts[1]
		}
	}

	raw.Description = strings.TrimSpace(section.Find("p").First().Text())

	section.Find(detailImage).Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok && strings.TrimSpace(src) != "" {
			raw.ImageURLs = append(raw.ImageURLs, resolve(base, strings.TrimSpace(src)))
		}
	})
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
