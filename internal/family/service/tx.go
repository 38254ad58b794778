package service

import (
	"context"
	"sync"
	"time"

	dErrors "familytree/pkg/domain-errors"
)

// TxStores are the stores bound to one transaction.
type TxStores struct {
	Persons       PersonStore
	Relationships RelationshipStore
}

// StoreTx provides the transactional boundary for family graph mutations.
// Implementations commit when fn returns nil and roll back every write made
// through stores otherwise.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(stores TxStores) error) error
}

// checkpointer is implemented by in-memory stores that can snapshot their
// contents for rollback.
type checkpointer interface {
	Checkpoint() func()
}

const defaultTxTimeout = 5 * time.Second

// InMemoryTx serializes transactions with a mutex and restores store
// snapshots when fn fails.
type InMemoryTx struct {
	mu      sync.Mutex
	stores  TxStores
	timeout time.Duration
}

// NewInMemoryTx wraps in-memory stores. Stores that do not implement
// Checkpoint cannot be rolled back.
func NewInMemoryTx(persons PersonStore, relationships RelationshipStore) *InMemoryTx {
	return &InMemoryTx{stores: TxStores{Persons: persons, Relationships: relationships}}
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(stores TxStores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var restores []func()
	for _, store := range []any{t.stores.Persons, t.stores.Relationships} {
		if c, ok := store.(checkpointer); ok {
			restores = append(restores, c.Checkpoint())
		}
	}

	err := fn(t.stores)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}
