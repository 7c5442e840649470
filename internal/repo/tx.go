package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxRepos are repositories bound to one transaction.
type TxRepos struct {
	Tickets TicketRepo
	Riders  RiderRepo
}

// TxRunner runs fn inside a single transaction. The transaction commits when
// fn returns nil and rolls back otherwise.
type TxRunner interface {
	InTx(ctx context.Context, fn func(TxRepos) error) error
}

// beginner is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx; on a pgx.Tx
// Begin opens a savepoint.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgTxRunner struct {
	db beginner
}

// NewTxRunner creates a TxRunner over db.
func NewTxRunner(db beginner) TxRunner {
	return &pgTxRunner{db: db}
}

func (r *pgTxRunner) InTx(ctx context.Context, fn func(TxRepos) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(TxRepos{Tickets: NewTicketRepo(tx), Riders: NewRiderRepo(tx)})
	})
}
