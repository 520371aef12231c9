package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchInserter bulk-inserts rows over the COPY protocol. Transfer line
// sets go in as one COPY instead of a statement per line.
type BatchInserter struct {
	txManager *TxManager
}

func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice copies rows into table. Each row must match columns in
// length and order. COPY cannot be retried halfway, so the caller must
// already be inside a transaction.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	dbTx := b.txManager.GetTx(ctx)
	if dbTx == nil {
		return 0, fmt.Errorf("CopyFromSlice requires transaction context")
	}
	return dbTx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}
