// Package assets migrates lot images to the object store and keeps the image ledger.
//
// # Migration
//
// Migrator.Migrate walks the image set of one lot. Images the ledger already knows are
// reused without touching the network. Every other image is downloaded (paced by a
// token bucket), checked against the download size limit, scaled up so its short side
// reaches the target side when it is not larger than the minimum side in both
// dimensions, encoded as PNG, checked against the encoded size limit and uploaded to
// {folder}/{detail_id}/{n}-{digest}.png, where n is the image position in the set starting
// at 1 and digest is taken from the source URL. An object written for one source image is
// never written again for another. Each upload appends one ledger entry; entries are never
// overwritten.
//
// Every image produces an ImageResult (uploaded, reused, skipped or failed, with a
// reason), so nothing is silently dropped. A failed or skipped image is left out of the
// lot's image set. When the listing image is among the migrated ones the display image
// becomes its durable copy, otherwise the display image is left unchanged.
//
// # Cleanup
//
// Cleaner removes the stored images of lots that left the auction. It only runs when
// cleanup is explicitly enabled.
package assets
