package main

import (
	"context"
	"database/sql"
	"time"

	familyservice "familytree/internal/family/service"
	personstore "familytree/internal/family/store/person"
	relationshipstore "familytree/internal/family/store/relationship"
	dErrors "familytree/pkg/domain-errors"
)

const defaultFamilyTxTimeout = 5 * time.Second

// familyPostgresTx runs family graph operations in one database transaction.
type familyPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newFamilyPostgresTx(db *sql.DB, timeout time.Duration) *familyPostgresTx {
	return &familyPostgresTx{db: db, timeout: timeout}
}

func (t *familyPostgresTx) RunInTx(ctx context.Context, fn func(stores familyservice.TxStores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultFamilyTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	stores := familyservice.TxStores{
		Persons:       personstore.NewPostgresTx(sqlTx),
		Relationships: relationshipstore.NewPostgresTx(sqlTx),
	}
	if err := fn(stores); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return err
	}
	return nil
}
