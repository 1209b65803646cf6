package outbound

import "context"

// TxManager runs fn inside a single storage transaction. Repository calls made
// with the context fn receives join that transaction; any error rolls the
// whole transaction back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
