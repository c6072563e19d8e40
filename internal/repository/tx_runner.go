package repository

import (
	"context"

	"github.com/clausewise/counselai/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner provides transactional repositories using a pgx pool. Turn pairs
// and alert batches go through it so a persistence failure rolls the whole
// write back instead of leaving partial state.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}

	repos := &txRepos{tx: tx}
	if err := fn(repos); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

type txRepos struct {
	tx pgx.Tx
}

func (r *txRepos) Conversations() service.ConversationRepositoryInterface {
	return NewConversationRepositoryWithTx(r.tx)
}

func (r *txRepos) Alerts() service.AlertRepositoryInterface {
	return NewAlertRepositoryWithTx(r.tx)
}
