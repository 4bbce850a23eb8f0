package ledger

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("transaction not found")
	// ErrAlreadyResolved is returned by Resolve when the row already
	// holds a terminal status. Callers treat it as "read the stored
	// resolution", never as a failure to report upstream.
	ErrAlreadyResolved = errors.New("transaction already resolved")
)

// TransactionStore is the contract the routing core is written against.
// Implementations must make Create a create-if-absent on the
// AcquirerOrderID key and Resolve an atomic update-if-unresolved, so
// the idempotent-replay and terminal-immutability properties hold under
// concurrent access regardless of the backing store.
type TransactionStore interface {
	// Create stores tx unless a row with the same AcquirerOrderID
	// exists. It returns the row now in the store and whether this
	// call created it.
	Create(ctx context.Context, tx Transaction) (Transaction, bool, error)

	// Get returns the row for the correlation id or ErrNotFound.
	Get(ctx context.Context, acquirerOrderID string) (Transaction, error)

	// Resolve atomically applies res to a still-Pending row and stamps
	// UpdatedAt. A row already terminal is left untouched and
	// ErrAlreadyResolved is returned together with the stored row.
	Resolve(ctx context.Context, acquirerOrderID string, res Resolution) (Transaction, error)
}
