package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"lot-sync/core/lot"
)

var (
	// ErrSchemaMismatch is returned when a snapshot lacks a required column.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrDuplicateKey is returned when a snapshot holds the same join key twice.
	ErrDuplicateKey = errors.New("duplicate join key")

	// ErrAmbiguousImage is returned when the ledger offers several durable images for one lot.
	ErrAmbiguousImage = errors.New("ambiguous image identity")

	// ErrInvalidPolicy is returned when the update policy names a field it may not touch.
	ErrInvalidPolicy = errors.New("invalid update policy")
)

// SchemaError lists the columns a snapshot is missing.
type SchemaError struct {
	// Snapshot names the offending side ("old" or "new").
	Snapshot string
	// Missing holds the missing columns.
	Missing []lot.Field
}

func (e *SchemaError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("%s snapshot is missing columns [%s]", e.Snapshot, strings.Join(names, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchemaMismatch }

// DuplicateKeyError reports a join key seen twice in one snapshot.
type DuplicateKeyError struct {
	Snapshot string
	Field    lot.Field
	Key      string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s snapshot holds %s %q more than once", e.Snapshot, e.Field, e.Key)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

// AmbiguousImageError reports a primary image whose durable copy cannot be told apart.
type AmbiguousImageError struct {
	Identifier string
	ImageURL   string
	Candidates []string
}

func (e *AmbiguousImageError) Error() string {
	return fmt.Sprintf("lot %s: image %s maps to %d durable images in the lot [%s]",
		e.Identifier, e.ImageURL, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousImageError) Unwrap() error { return ErrAmbiguousImage }
