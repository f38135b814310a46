// Package repomanager wires concrete repositories to a database handle and
// owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/mpetrovs/spendvault/internal/dbx"
	"github.com/mpetrovs/spendvault/internal/server/repositories/budgets"
	"github.com/mpetrovs/spendvault/internal/server/repositories/codes"
	"github.com/mpetrovs/spendvault/internal/server/repositories/expenses"
	"github.com/mpetrovs/spendvault/internal/server/repositories/sessions"
	"github.com/mpetrovs/spendvault/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to either the pool or a
// transaction, so services can compose multi-repo transactions with
// dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Codes(db dbx.DBTX) codes.Repository
	Budgets(db dbx.DBTX) budgets.Repository
	Expenses(db dbx.DBTX) expenses.Repository
}
