// Package mirror replicates in-memory core state to a remote document store.
// The in-memory entities stay the source of truth; every mirror write is
// best-effort and must never block or fail the mutation that triggered it.
package mirror

import "context"

// Collection names the four mirrored document collections.
type Collection string

const (
	CollectionLeads    Collection = "leads"
	CollectionTasks    Collection = "tasks"
	CollectionUsers    Collection = "users"
	CollectionChannels Collection = "channels"
)

// Mirror is the remote store contract: insert-one and update-by-id per
// collection. Documents are plain JSON-serializable values.
type Mirror interface {
	Insert(ctx context.Context, collection Collection, id string, doc any) error
	Update(ctx context.Context, collection Collection, id string, doc any) error
}

// Noop discards every write. It stands in for the remote store in pure
// in-memory mode.
type Noop struct{}

func (Noop) Insert(context.Context, Collection, string, any) error { return nil }
func (Noop) Update(context.Context, Collection, string, any) error { return nil }
