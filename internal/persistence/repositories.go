package persistence

import "context"

// DocumentRepository is the key/value contract every backend provides.
type DocumentRepository interface {
	// Load returns the record stored under key or ErrNotFound.
	Load(ctx context.Context, key string) (Record, error)
	// Save writes the record unconditionally.
	Save(ctx context.Context, record Record) error
	// Close releases backend resources.
	Close() error
}

// Swapper is implemented by backends that can perform the version check and
// the write as one atomic step, which keeps commits safe across processes
// sharing the same backend.
type Swapper interface {
	// SaveIfNewer stores record when no record exists under its key or the
	// stored version is strictly lower. It returns the record that is stored
	// after the call and whether record was written.
	SaveIfNewer(ctx context.Context, record Record) (latest Record, saved bool, err error)
}
