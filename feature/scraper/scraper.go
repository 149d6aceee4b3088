package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"lot-sync/core/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// ErrExtraction is returned when a listing cannot be scraped.
var ErrExtraction = errors.New("extraction failed")

// Scraper fetches auction pages.
type Scraper struct {
	cfg    config.Scraper
	logger *zap.Logger
}

// New creates a scraper.
func New(cfg config.Scraper, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{cfg: cfg, logger: logger}
}

func (s *Scraper) collector(ctx context.Context) (*colly.Collector, error) {
	opts := []colly.CollectorOption{colly.UserAgent(s.cfg.UserAgent)}
	if domains := s.cfg.Domains(); len(domains) > 0 {
		opts = append(opts, colly.AllowedDomains(domains...))
	}
	c := colly.NewCollector(opts...)

	if t := s.cfg.Timeout(); t > 0 {
		c.SetRequestTimeout(t)
	}
	if d := s.cfg.Delay(); d > 0 {
		if err := applyLimits(c, &colly.LimitRule{DomainGlob: "*", Delay: d}); err != nil {
			return nil, err
		}
	}

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		s.logger.Debug("Visiting", zap.String("url", r.URL.String()))
	})
	return c, nil
}

func applyLimits(c *colly.Collector, rules ...*colly.LimitRule) error {
	for _, rule := range rules {
		if err := c.Limit(rule); err != nil {
			return fmt.Errorf("%w: invalid request limit: %v", ErrExtraction, err)
		}
	}
	return nil
}

// Scrape returns every lot of the auction listed at auctionURL, in listing order.
// Lots whose detail page fails are logged and left out.
func (s *Scraper) Scrape(ctx context.Context, auctionURL string) ([]RawLot, error) {
	base, err := url.Parse(auctionURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("%w: invalid auction url %q", ErrExtraction, auctionURL)
	}

	// 1. Listing page
	var cards []RawLot
	found := false
	listing, err := s.collector(ctx)
	if err != nil {
		return nil, err
	}
	listing.OnHTML(listingSection, func(e *colly.HTMLElement) {
		if found {
			return
		}
		found = true
		e.DOM.Find(listingCard).Each(func(_ int, card *goquery.Selection) {
			raw, ok := parseCard(card, e.Request.URL)
			if !ok {
				s.logger.Warn("Lot card has no detail link", zap.String("lot_number", raw.LotNumber), zap.String("url", auctionURL))
				return
			}
			cards = append(cards, raw)
		})
	})

	if err := listing.Visit(auctionURL); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtraction, auctionURL, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s: lots section not found", ErrExtraction, auctionURL)
	}

	// 2. Detail page of every card
	var current *RawLot
	parsed := false
	detail, err := s.collector(ctx)
	if err != nil {
		return nil, err
	}
	detail.OnHTML(detailSection, func(e *colly.HTMLElement) {
		if parsed {
			return
		}
		parsed = true
		parseDetail(e.DOM, e.Request.URL, current)
	})

	lots := make([]RawLot, 0, len(cards))
	for i := range cards {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current, parsed = &cards[i], false

		err := detail.Visit(current.DetailURL)
		if err == nil && !parsed {
			err = errors.New("detail section not found")
		}
		if err != nil {
			s.logger.Warn("Lot detail page failed, lot skipped",
				zap.String("lot_number", current.LotNumber),
				zap.String("url", current.DetailURL),
				zap.Error(err),
			)
			continue
		}
		lots = append(lots, *current)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("Auction scraped",
		zap.String("url", auctionURL),
		zap.Int("cards", len(cards)),
		zap.Int("lots", len(lots)),
	)
	return lots, nil
}

// AuctionName returns the first auction name printed on the lots' detail pages.
func AuctionName(lots []RawLot) string {
	for _, l := range lots {
		if l.AuctionName != "" {
			return l.AuctionName
		}
	}
	return ""
}
