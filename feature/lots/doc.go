// Package lots synchronizes an auction's lot dataset.
//
// A sync run scrapes the auction listing, repairs broken text, reconciles the fresh
// records against the stored snapshot and persists the outcome:
//
//	scrape ──> repair ──> reconcile(stored, fresh, ledger) ──> classify ──> migrate new ──> persist
//
// Matched lots keep their catalog id, labels and migrated images; only the update fields
// are refreshed. New lots have their images migrated to object storage and receive the
// constant labels of the dataset. Removed lots are dropped and, when cleanup is enabled,
// their stored images are deleted.
//
// A run that scrapes nothing, finds unrepairable text or fails to reconcile leaves the
// stored dataset untouched. Every run, including those, is recorded in sync_runs along
// with one sync_run_changes row per new, removed, renamed or conflicting lot.
//
// # Storage
//
// Lots live in the lots table keyed by auction and identifier. The image ledger
// (image_ledger) is append only: entries written by a run are never updated.
//
// # HTTP API
//
//	GET /auctions/:auction/lots        current dataset
//	GET /auctions/:auction/runs        latest runs
//	GET /auctions/:auction/runs/:id    one run with its changes
//
// Reads of the current dataset go through a short lived cache so concurrent requests
// share a single query.
package lots
