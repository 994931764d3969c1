// Package store carries the transactional substrate shared by all sub
// stores. Every state-mutating core operation runs inside one db
// transaction; the tx handle rides the context so nested service calls
// join the same atomic boundary.
package store

import (
	"context"
	"errors"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

// ErrOptimisticLock a version-guarded update matched no row
var ErrOptimisticLock = errors.New("optimistic lock")

type txKey struct{}

// WithTx bind a transaction to the context
func WithTx(ctx context.Context, tx *db.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txOf(ctx context.Context) (*db.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*db.DB)
	return tx, ok
}

// Update write handle; the bound transaction wins over the fallback
func Update(ctx context.Context, fallback *db.DB) *gorm.DB {
	if tx, ok := txOf(ctx); ok {
		return tx.Update()
	}
	return fallback.Update()
}

// View read handle. db.Begin keeps the read side on the root
// connection, so inside a transaction reads must go through the tx
// write handle to observe the transaction's own writes.
func View(ctx context.Context, fallback *db.DB) *gorm.DB {
	if tx, ok := txOf(ctx); ok {
		return tx.Update()
	}
	return fallback.View()
}

type runner struct {
	db *db.DB
}

// NewRunner db-backed core.TxRunner
func NewRunner(db *db.DB) core.TxRunner {
	return &runner{db: db}
}

// Tx runs fn inside one transaction. A call made while ctx already
// carries a transaction joins it instead of opening a second one, so
// services can compose without breaking the atomic boundary.
func (r *runner) Tx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txOf(ctx); ok {
		return fn(ctx)
	}

	return r.db.Tx(func(tx *db.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
