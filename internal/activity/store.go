package activity

import "context"

// Store is the durable activity log. Absence is a normal state for point
// lookups, never an error: GetValue and Exists report it through their bool
// result.
type Store interface {
	// Record upserts the (subject, actor, typ) tuple and returns the live
	// record's ID. The upsert must be a single atomic conditional write so
	// that concurrent identical submissions cannot create duplicate rows;
	// last write wins.
	Record(ctx context.Context, subject, actor string, typ Type, value string) (string, error)
	GetValue(ctx context.Context, subject, actor string, typ Type) (string, bool, error)
	Exists(ctx context.Context, subject, actor string, typ Type) (bool, error)
	// Query returns matching records in insertion order.
	Query(ctx context.Context, f Filter) ([]Record, error)
	// Remove deletes a record if present; removing an absent tuple is a no-op.
	Remove(ctx context.Context, subject, actor string, typ Type) error
}
