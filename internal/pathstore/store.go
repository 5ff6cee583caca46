package pathstore

import (
	"context"
	"errors"
	"strings"
)

// Store is a hierarchical path->document store in the shape of the realtime
// database the admin dashboard runs against: a read or write of a single path
// is atomic, and nothing spans multiple paths. Multi-path sequences in this
// service (ledger+index, ledger+wallet+marker) compensate with idempotency
// markers and the reconciliation job instead of transactions.
type Store interface {
	// Get unmarshals the document at path into dest. Returns ErrPathNotFound
	// when nothing has been written there.
	Get(ctx context.Context, path string, dest any) error

	// Set writes the document at path, replacing any previous value.
	Set(ctx context.Context, path string, value any) error

	// SetIfAbsent writes only when path does not exist yet and reports
	// whether the write happened. The webhook idempotency marker relies on
	// this conditional primitive to close the check-then-mark race.
	SetIfAbsent(ctx context.Context, path string, value any) (bool, error)

	// Merge folds fields into the document at path as one atomic write,
	// creating the document when absent. Keys not named keep their value.
	Merge(ctx context.Context, path string, fields map[string]any) error

	// Delete removes the document at path. Deleting a missing path is a no-op.
	Delete(ctx context.Context, path string) error

	// Children returns the immediate child keys under path, e.g. the store
	// ids under "ledgers/stores".
	Children(ctx context.Context, path string) ([]string, error)
}

var ErrPathNotFound = errors.New("path not found")

// Join builds a store path from segments. Segments must not contain "/".
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}
