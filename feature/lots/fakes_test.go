package lots

import (
	"context"
	"path"
	"strings"
	"testing"
	"time"

	"lot-sync/core/config"
	"lot-sync/core/database"
	"lot-sync/core/lot"
	"lot-sync/core/reconcile"
	"lot-sync/feature/assets"
	"lot-sync/feature/scraper"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeSource struct {
	raws []scraper.RawLot
	err  error
}

func (f *fakeSource) Scrape(ctx context.Context, auctionURL string) ([]scraper.RawLot, error) {
	return f.raws, f.err
}

// fakeMigrator maps every image to a predictable durable URL through the ledger.
type fakeMigrator struct {
	calls [][]lot.Lot
	err   error
}

func (m *fakeMigrator) MigrateAll(ctx context.Context, lots []lot.Lot, folder string, ledger *reconcile.Ledger) ([]lot.Lot, []*assets.Outcome, assets.Report, error) {
	m.calls = append(m.calls, lots)
	if m.err != nil {
		return nil, nil, assets.Report{}, m.err
	}

	var report assets.Report
	out := make([]lot.Lot, 0, len(lots))
	for _, l := range lots {
		durables := make([]string, 0, len(l.AdditionalImageURLs))
		for _, src := range l.AdditionalImageURLs {
			d, ok := ledger.Lookup(src)
			if ok {
				report.Reused++
			} else {
				d = durableURL(folder, l.DetailID, src)
				ledger.Append(src, d)
				report.Uploaded++
			}
			durables = append(durables, d)
			if src == l.PrimaryImageURL {
				l.DisplayImageURL = d
			}
		}
		l.AdditionalImageURLs = durables
		out = append(out, l)
	}
	return out, nil, report, nil
}

func durableURL(folder, detailID, src string) string {
	return "https://cdn.test/lots/" + folder + "/" + detailID + "/" + path.Base(src)
}

type fakeCleaner struct {
	removed []lot.Lot
}

func (c *fakeCleaner) RemoveLots(ctx context.Context, folder string, lots []lot.Lot) (int, int) {
	c.removed = append(c.removed, lots...)
	return len(lots), 0
}

// stateClassifier keeps the text after the last comma.
type stateClassifier struct{}

func (stateClassifier) Predict(ctx context.Context, inputs []string) ([]string, error) {
	out := make([]string, len(inputs))
	for i, in := range inputs {
		parts := strings.Split(in, ",")
		out[i] = strings.TrimSpace(parts[len(parts)-1])
	}
	return out, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	return db
}

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo := NewRepository(newTestDB(t))
	require.NoError(t, repo.AutoMigrate(context.Background()))
	return repo
}

type harness struct {
	repo     *Repository
	source   *fakeSource
	migrator *fakeMigrator
	cleaner  *fakeCleaner
	service  *Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		repo:     newTestRepo(t),
		source:   &fakeSource{},
		migrator: &fakeMigrator{},
		cleaner:  &fakeCleaner{},
	}
	h.service = NewService(h.repo, Dependencies{
		Source:     h.source,
		Extractor:  scraper.NewExtractor(500, 5000),
		Classifier: stateClassifier{},
		Migrator:   h.migrator,
		Cleaner:    h.cleaner,
	}, testSyncConfig(), time.Minute, zap.NewNop())
	return h
}

func testSyncConfig() config.Sync {
	return config.Sync{
		JoinKey:          "identifier",
		TitleLimit:       500,
		DescriptionLimit: 5000,
		Availability:     "In stock",
		Condition:        "Used",
		Brand:            "Hilco Global México",
	}
}

func testAuction(name string) config.Auction {
	return config.Auction{
		Name:          name,
		URL:           "https://subastas.test/" + name,
		CatalogPrefix: "HGM",
		CustomLabel:   "industrial",
	}
}

// rawLot builds a scraped lot whose detail page is /lote/<id>.
func rawLot(number, id string, images ...string) scraper.RawLot {
	return scraper.RawLot{
		LotNumber:       number,
		Name:            "Torno paralelo",
		Location:        "Ubicación: guadalajara, jalisco",
		ListingImageURL: images[0],
		DetailURL:       "https://subastas.test/lote/" + id,
		AuctionName:     "Subasta Industrial",
		Description:     "torno en buen estado. incluye herramienta",
		PriceAmount:     "$1,500",
		PriceCurrency:   "M.N.",
		ImageURLs:       images,
	}
}
