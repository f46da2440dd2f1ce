package partners

import "context"

// Persistence is the durable-store collaborator for partner assignments. The
// session only ever talks to this interface so the backing store stays
// swappable and the tests can run against a fake.
type Persistence interface {
	// PersistPair stores a new pair and returns it with a permanent id.
	PersistPair(ctx context.Context, p Pair) (Pair, error)
	// UpdatePair writes one slot of an existing pair.
	UpdatePair(ctx context.Context, id string, slot Slot, memberID *string) error
	DeletePair(ctx context.Context, id string) error
	ListPairs(ctx context.Context, date string) ([]Pair, error)
}
