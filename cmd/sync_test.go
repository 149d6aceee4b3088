package cmd

import (
	"testing"

	"lot-sync/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectAuctions(t *testing.T) {
	cfg := &config.Config{Auctions: []config.Auction{
		{Name: "hilco", URL: "https://hilco.test/subasta/1", CatalogPrefix: "HGM"},
		{Name: "tools", URL: "https://hilco.test/subasta/2"},
	}}

	t.Run("AllConfigured", func(t *testing.T) {
		got, err := selectAuctions(cfg, nil, "", "", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"hilco", "tools"}, auctionNames(got))
	})

	t.Run("Named", func(t *testing.T) {
		got, err := selectAuctions(cfg, []string{"tools"}, "", "TLS", "Tools")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "TLS", got[0].CatalogPrefix)
		assert.Equal(t, "Tools", got[0].Label)
		assert.Empty(t, cfg.Auctions[1].CatalogPrefix)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := selectAuctions(cfg, []string{"missing"}, "", "", "")
		assert.ErrorContains(t, err, "not configured")
	})

	t.Run("AdHocURL", func(t *testing.T) {
		got, err := selectAuctions(cfg, []string{"hilco"}, "https://hilco.test/subasta/9", "", "")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "https://hilco.test/subasta/9", got[0].URL)
		assert.Equal(t, "HGM", got[0].CatalogPrefix)
	})

	t.Run("URLNeedsOneName", func(t *testing.T) {
		_, err := selectAuctions(cfg, nil, "https://hilco.test/subasta/9", "", "")
		assert.Error(t, err)
	})

	t.Run("NothingConfigured", func(t *testing.T) {
		_, err := selectAuctions(&config.Config{}, nil, "", "", "")
		assert.ErrorContains(t, err, "no auctions configured")
	})
}
