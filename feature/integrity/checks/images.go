package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"lot-sync/core/reconcile"
	"lot-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// ImageReport compares an auction's image ledger with the objects of its folder.
type ImageReport struct {
	Folder string `json:"folder"`
	// Entries is the number of ledger entries checked.
	Entries int `json:"entries"`
	// Objects is the number of objects found under the folder.
	Objects int `json:"objects"`
	// Missing lists durable URLs whose object is gone.
	Missing []string `json:"missing"`
	// Orphans lists object keys no ledger entry points at.
	Orphans []string `json:"orphans"`
	// Foreign lists durable URLs that do not belong to the bucket.
	Foreign []string `json:"foreign"`
}

// OK reports whether ledger and storage agree.
func (r *ImageReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Orphans) == 0 && len(r.Foreign) == 0
}

// CheckImages verifies that every durable URL of the ledger resolves to an object of
// folder and that every object of folder is referenced by the ledger.
func CheckImages(ctx context.Context, client storage.Client, cfg storage.Config, folder string, entries []reconcile.LedgerEntry) (*ImageReport, error) {
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", cfg.Bucket)
	}

	prefix := folderPrefix(folder)
	keys, err := storage.ListKeys(ctx, client, cfg.Bucket, prefix)
	if err != nil {
		return nil, err
	}

	actual := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == prefix {
			continue // folder placeholder
		}
		actual[k] = struct{}{}
	}

	report := &ImageReport{
		Folder:  folder,
		Entries: len(entries),
		Objects: len(actual),
		Missing: []string{},
		Orphans: []string{},
		Foreign: []string{},
	}

	referenced := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		key, err := cfg.ObjectKey(e.DurableURL)
		if err != nil {
			report.Foreign = append(report.Foreign, e.DurableURL)
			continue
		}
		referenced[key] = struct{}{}
		if _, ok := actual[key]; ok {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			report.Missing = append(report.Missing, e.DurableURL)
			continue
		}

		// stored under another folder of the bucket
		found, err := objectExists(ctx, client, cfg.Bucket, key)
		if err != nil {
			return nil, err
		}
		if !found {
			report.Missing = append(report.Missing, e.DurableURL)
		}
	}

	for k := range actual {
		if _, ok := referenced[k]; !ok {
			report.Orphans = append(report.Orphans, k)
		}
	}
	sort.Strings(report.Orphans)

	return report, nil
}

func objectExists(ctx context.Context, client storage.Client, bucket, key string) (bool, error) {
	_, err := client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s/%s: %w", bucket, key, err)
}
