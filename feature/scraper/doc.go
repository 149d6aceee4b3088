// Package scraper fetches an auction's listing and detail pages and turns every lot card
// into a lot.Lot.
//
// Scraping is split in two halves. Scraper drives a colly collector over the listing page
// and the detail page of every card, producing RawLot values with the text exactly as
// the site renders it. Extractor then builds the normalized record: identifier and
// detail id from the detail URL, bounded title and description with their overflow,
// decimal price, ISO-like currency code and a de-duplicated image set.
//
// # Page Layout
//
// Listing: section.fondo-gris holds one div.col-md-4.col-sm-12.col-xl-3.mb-3 per lot with
// the lot number (span.icon), name (p.p-2.bold.fs18.mt-2), location (p.pt-0.pl-2.pr-2.m-0),
// listing image and the detail link.
//
// Detail: div.bg-white holds two div.col-md-6.col-lg-6 columns. The second one names the
// auction, the last one carries the price list. The first paragraph is the lot
// description and every img.img-responsive is a lot image.
//
// # Errors
//
// A listing without the lots section, or a listing page that cannot be fetched, fails
// with ErrExtraction. A detail page that fails is logged and its lot is dropped.
package scraper
