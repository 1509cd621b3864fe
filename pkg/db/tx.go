package db

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// WithTx runs fn in a transaction under the query timeout. gorm rolls back
// when fn fails or panics; failures come back classified.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	ctx, cancel := c.Bound(ctx)
	defer cancel()
	if err := c.conn.WithContext(ctx).Transaction(fn); err != nil {
		return Classify(err, "transaction")
	}
	return nil
}

// Bound applies the client's query timeout to ctx.
func (c *Client) Bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return BoundContext(ctx, c.queryTimeout)
}

// BoundContext applies timeout to ctx unless ctx already expires sooner.
func BoundContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if deadline, ok := ctx.Deadline(); timeout <= 0 || (ok && time.Until(deadline) <= timeout) {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
