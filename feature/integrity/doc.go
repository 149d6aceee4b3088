// Package integrity checks that the stored datasets and their images agree.
//
// Lots reference their images by durable URL, and the image ledger records every
// upload. Objects can still disappear from the bucket or be left behind by an
// interrupted run, so this package compares both sides.
//
// # Checks Provided
//
//   - Structure: the bucket exists and every configured auction has a folder in it.
//   - Schema: the lots, image_ledger, sync_runs and sync_run_changes tables carry the
//     columns of their models.
//   - Images: every ledger entry of an auction points at an existing object (missing),
//     every object of the auction folder is referenced by the ledger (orphans) and no
//     entry points outside the bucket (foreign).
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/schema : Runs schema check.
//   - GET /integrity/images/:auction : Runs the image check of one auction.
package integrity
