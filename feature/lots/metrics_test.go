package lots

import (
	"context"
	"testing"

	"lot-sync/feature/scraper"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RunCountersAndPartitions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	auction := testAuction("metrics")

	// baselines before the runs, other tests share the registry
	baseOK := testutil.ToFloat64(syncRuns.WithLabelValues("metrics", StatusSucceeded))
	baseSkip := testutil.ToFloat64(syncRuns.WithLabelValues("metrics", StatusSkipped))
	baseUp := testutil.ToFloat64(syncImages.WithLabelValues("metrics", "uploaded"))

	h.source.raws = []scraper.RawLot{rawLot("1", "100", imgA), rawLot("2", "200", imgB)}
	_, err := h.service.Sync(ctx, auction, SyncOptions{})
	require.NoError(t, err)

	h.source.raws = []scraper.RawLot{rawLot("1", "100", imgA)}
	_, err = h.service.Sync(ctx, auction, SyncOptions{})
	require.NoError(t, err)

	h.source.raws = nil
	_, err = h.service.Sync(ctx, auction, SyncOptions{})
	require.NoError(t, err)

	assert.Equal(t, baseOK+2, testutil.ToFloat64(syncRuns.WithLabelValues("metrics", StatusSucceeded)))
	assert.Equal(t, baseSkip+1, testutil.ToFloat64(syncRuns.WithLabelValues("metrics", StatusSkipped)))
	assert.Equal(t, baseUp+2, testutil.ToFloat64(syncImages.WithLabelValues("metrics", "uploaded")))

	// partitions reflect the latest successful run
	assert.Equal(t, float64(1), testutil.ToFloat64(syncLots.WithLabelValues("metrics", "matched")))
	assert.Equal(t, float64(0), testutil.ToFloat64(syncLots.WithLabelValues("metrics", "new")))
	assert.Equal(t, float64(1), testutil.ToFloat64(syncLots.WithLabelValues("metrics", "removed")))
}
