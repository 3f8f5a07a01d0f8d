package sqlite

import (
	"context"
	"database/sql"

	"github.com/suhastanajipatil1735-oss/super-management/internal/academy/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller commits/rollbacks; outer DB stays open

// Ping is a no-op for transactions; the connection already exists.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Accounts() store.Accounts     { return &accountsRepo{q: t.tx} }
func (t *txStore) Requests() store.Requests     { return &requestsRepo{q: t.tx} }
func (t *txStore) Students() store.Students     { return &studentsRepo{q: t.tx} }
func (t *txStore) Attendance() store.Attendance { return &attendanceRepo{q: t.tx} }
func (t *txStore) Exams() store.Exams           { return &examsRepo{q: t.tx} }
func (t *txStore) Receipts() store.Receipts     { return &receiptsRepo{q: t.tx} }
func (t *txStore) Expenses() store.Expenses     { return &expensesRepo{q: t.tx} }
func (t *txStore) Session() store.Session       { return &sessionRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx starts
