package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// Repos fall back to their own handle when Tx is nil.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// WithTx returns a copy bound to tx.
func (c Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: c.Ctx, Tx: tx}
}

// DB picks the transaction when one is bound, otherwise fallback.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	transaction := c.Tx
	if transaction == nil {
		transaction = fallback
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return transaction.WithContext(ctx)
}
