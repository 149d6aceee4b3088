package lots

import (
	"lot-sync/feature/assets"

	"github.com/prometheus/client_golang/prometheus"
)

// Label cardinality stays bounded by the configured auctions: auction is the
// configured name, status and partition are fixed sets.
var (
	// syncRuns counts finished runs by auction and status.
	syncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotsync_runs_total",
			Help: "Total number of sync runs.",
		},
		[]string{"auction", "status"},
	)

	// syncLots gauges the partition sizes of the latest run.
	syncLots = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lotsync_lots_total",
			Help: "Lots per partition in the latest sync run.",
		},
		[]string{"auction", "partition"},
	)

	// syncImages counts migrated images by outcome.
	syncImages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotsync_images_total",
			Help: "Total number of images processed by migration.",
		},
		[]string{"auction", "status"},
	)

	// syncDuration records run duration in seconds.
	syncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lotsync_run_duration_seconds",
			Help:    "Duration of sync runs in seconds.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"auction"},
	)
)

func init() {
	prometheus.MustRegister(syncRuns, syncLots, syncImages, syncDuration)
}

// observeRun records the metrics of a finished run.
func observeRun(r *RunReport) {
	syncRuns.WithLabelValues(r.Auction, r.Status).Inc()
	syncDuration.WithLabelValues(r.Auction).Observe(r.FinishedAt.Sub(r.StartedAt).Seconds())

	if r.Status != StatusSucceeded {
		return
	}

	syncLots.WithLabelValues(r.Auction, "matched").Set(float64(r.Summary.Matched))
	syncLots.WithLabelValues(r.Auction, "new").Set(float64(r.Summary.New))
	syncLots.WithLabelValues(r.Auction, "removed").Set(float64(r.Summary.Removed))

	addImages(r.Auction, assets.StatusUploaded, r.Images.Uploaded)
	addImages(r.Auction, assets.StatusReused, r.Images.Reused)
	addImages(r.Auction, assets.StatusSkipped, r.Images.Skipped)
	addImages(r.Auction, assets.StatusFailed, r.Images.Failed)
}

func addImages(auction string, status assets.Status, n int) {
	if n > 0 {
		syncImages.WithLabelValues(auction, string(status)).Add(float64(n))
	}
}

