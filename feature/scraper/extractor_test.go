package scraper

import (
	"errors"
	"strings"
	"testing"

	"lot-sync/core/text"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func rawLot() RawLot {
	return RawLot{
		LotNumber:       "12",
		Name:            "Montacargas eléctrico",
		Location:        "Ubicación: monterrey, nuevo león",
		ListingImageURL: "https://x/img/12.jpg",
		DetailURL:       "https://x/lote/detalle/4521",
		AuctionName:     "Subasta Industrial",
		Description:     "medida 12.5 mm. buen estado.",
		PriceAmount:     "$12,500.5",
		PriceCurrency:   "DLLS",
		ImageURLs:       []string{"https://x/a.jpg", "https://x/b.jpg", "https://x/a.jpg"},
	}
}

func TestExtractor_Build(t *testing.T) {
	x := NewExtractor(500, 5000)

	rec, err := x.Build(rawLot())
	require.NoError(t, err)

	assert.Equal(t, "https://x/lote/detalle/4521", rec.Identifier)
	assert.Equal(t, "4521", rec.DetailID)
	assert.Equal(t, "12", rec.LotNumber)
	assert.Equal(t, "Lote 12 - Montacargas eléctrico", rec.Title)
	assert.Nil(t, rec.TitleOverflow)
	assert.Equal(t, "Monterrey, Nuevo León", rec.Location)
	assert.Equal(t, "Medida 12.5 mm. Buen estado.", rec.Description)
	assert.Equal(t, "12500.50", rec.Price)
	assert.Equal(t, "USD", rec.CurrencyCode)
	assert.Equal(t, "https://x/img/12.jpg", rec.PrimaryImageURL)
	assert.Equal(t, rec.PrimaryImageURL, rec.DisplayImageURL)
	assert.Equal(t, []string{"https://x/a.jpg", "https://x/b.jpg"}, rec.AdditionalImageURLs)
}

func TestExtractor_BuildTruncates(t *testing.T) {
	x := NewExtractor(20, 10)
	raw := rawLot()
	raw.Description = strings.Repeat("a", 25)

	rec, err := x.Build(raw)
	require.NoError(t, err)

	assert.Equal(t, "Lote 12 - Montaca...", rec.Title)
	require.NotNil(t, rec.TitleOverflow)
	assert.Equal(t, "rgas eléctrico", *rec.TitleOverflow)
	assert.Equal(t, "Aaaaaaa...", rec.Description)
	require.NotNil(t, rec.DescriptionOverflow)
	assert.Len(t, *rec.DescriptionOverflow, 18)
}

func TestExtractor_BuildZeroPrice(t *testing.T) {
	raw := rawLot()
	raw.PriceAmount = "$0.00"

	rec, err := NewExtractor(500, 5000).Build(raw)
	require.NoError(t, err)
	assert.Equal(t, text.MinimumPrice, rec.Price)
}

func TestExtractor_BuildErrors(t *testing.T) {
	x := NewExtractor(500, 5000)

	raw := rawLot()
	raw.DetailURL = ""
	_, err := x.Build(raw)
	assert.True(t, errors.Is(err, ErrExtraction))

	raw = rawLot()
	raw.PriceAmount = "consultar"
	_, err = x.Build(raw)
	assert.True(t, errors.Is(err, ErrExtraction))

	_, err = NewExtractor(2, 5000).Build(rawLot())
	assert.True(t, errors.Is(err, text.ErrLimitTooSmall))
}

func TestExtractor_BuildAllSkipsBrokenLots(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	broken := rawLot()
	broken.PriceAmount = ""

	lots := NewExtractor(500, 5000).BuildAll([]RawLot{rawLot(), broken}, zap.New(core))
	assert.Len(t, lots, 1)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "12", logs.All()[0].ContextMap()["lot_number"])
}

func TestDetailID(t *testing.T) {
	assert.Equal(t, "4521", DetailID("https://x/lote/detalle/4521"))
	assert.Equal(t, "4521", DetailID("https://x/lote/detalle/4521/"))
	assert.Equal(t, "4521", DetailID("https://x/lote/detalle/4521?ref=home"))
	assert.Equal(t, "abc", DetailID("abc"))
}
