package domain

import (
	"context"
)

// Repository is the durable, ordered list of submissions. Implementations
// back it with a database table, a local workbook, or a Google Sheets
// worksheet; the orchestrator never knows which.
//
// Any failure to reach the backing medium is reported as (a wrap of)
// ErrStorageUnavailable. Callers must not assume a record was saved when
// Append returns such an error.
type Repository interface {
	// List returns every appended record, oldest first. An empty store is
	// not an error.
	List(ctx context.Context) ([]Request, error)

	// Append adds one record to the end of the store. When req.PONumber is
	// blank, the store assigns the next identifier for the bucket containing
	// req.SubmittedAt; allocation and insert happen as one atomic step, so
	// concurrent appends never share a number. The record is either fully
	// visible on subsequent List calls or not at all.
	Append(ctx context.Context, req *Request) error

	// FindByIdempotencyKey returns the record previously stored under key,
	// or nil when no such record exists. Backends without idempotency
	// support always return nil.
	FindByIdempotencyKey(ctx context.Context, key string) (*Request, error)
}
