package sqlite

import (
	"database/sql"

	"github.com/discoveruz/edge/internal/edge/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Users() store.Users                             { return &usersRepo{q: t.tx} }
func (t *txStore) Sessions() store.Sessions                       { return &sessionsRepo{q: t.tx} }
func (t *txStore) VerificationTokens() store.VerificationTokens   { return &verificationRepo{q: t.tx} }
func (t *txStore) PasswordResetTokens() store.PasswordResetTokens { return &resetRepo{q: t.tx} }
