package data

import (
	"context"

	"github.com/mpetrovs/spendvault/internal/client/api"
	"github.com/mpetrovs/spendvault/internal/monthx"
)

// Bundle is the portable plaintext form of a vault: every record decrypted
// and stripped of server-side identifiers.
type Bundle struct {
	Budgets  []Budget  `json:"budgets"`
	Expenses []Expense `json:"expenses"`
}

// ExportAll fetches and decrypts every record into a Bundle.
func (svc *Service) ExportAll(ctx context.Context, s *Session) (*Bundle, error) {
	budgets, err := svc.FetchBudgets(ctx, s, monthx.All)
	if err != nil {
		return nil, err
	}
	expenses, err := svc.FetchExpenses(ctx, s, monthx.All)
	if err != nil {
		return nil, err
	}
	for i := range budgets {
		budgets[i].ID = ""
	}
	for i := range expenses {
		expenses[i].ID = ""
	}
	return &Bundle{Budgets: budgets, Expenses: expenses}, nil
}

// Import re-encrypts the bundle and bulk-loads it. With replace set, every
// existing record is deleted first; this is irreversible. Without it the
// bundle is merged in as-is, duplicates included. Months and dates are
// normalized the same way the save path normalizes them.
func (svc *Service) Import(ctx context.Context, s *Session, replace bool, bundle *Bundle) bool {
	if !svc.guard(ctx, "import", s) || !svc.begin(ctx, "import") {
		return false
	}
	defer svc.end()

	if replace && !svc.purge(ctx, s) {
		return false
	}

	budgets := make([]api.Budget, 0, len(bundle.Budgets))
	for _, b := range bundle.Budgets {
		b.ID = ""
		if !monthx.ValidMonth(b.Month) {
			b.Month = monthx.CurrentMonth()
		}
		wire, err := encryptBudget(b, s.DataKey)
		if err != nil {
			return svc.fail(ctx, "import", err)
		}
		budgets = append(budgets, wire)
	}
	expenses := make([]api.Expense, 0, len(bundle.Expenses))
	for _, e := range bundle.Expenses {
		e.ID = ""
		if !monthx.ValidDate(e.Date) {
			e.Date = monthx.Today()
		}
		wire, err := encryptExpense(e, s.DataKey)
		if err != nil {
			return svc.fail(ctx, "import", err)
		}
		expenses = append(expenses, wire)
	}

	if err := svc.client.ImportData(ctx, s.UserID, s.SessionID, budgets, expenses); err != nil {
		return svc.fail(ctx, "import", err)
	}
	return true
}

// purge deletes every record one by one. The server cannot batch-delete
// without a verification code, and an import replace is already an explicit
// local decision.
func (svc *Service) purge(ctx context.Context, s *Session) bool {
	expenses, err := svc.client.ListExpenses(ctx, s.UserID, s.SessionID, monthx.All)
	if err != nil {
		return svc.fail(ctx, "import", err)
	}
	for _, e := range expenses {
		if err := svc.client.DeleteExpense(ctx, s.UserID, s.SessionID, e.ID); err != nil {
			return svc.fail(ctx, "import", err)
		}
	}
	budgets, err := svc.client.ListBudgets(ctx, s.UserID, s.SessionID, monthx.All)
	if err != nil {
		return svc.fail(ctx, "import", err)
	}
	for _, b := range budgets {
		if err := svc.client.DeleteBudget(ctx, s.UserID, s.SessionID, b.ID); err != nil {
			return svc.fail(ctx, "import", err)
		}
	}
	return true
}

// CopyMonth copies every budget and every recurring expense from one month
// into another. Recurring expenses keep their day-of-month, clamped to the
// target month's length.
func (svc *Service) CopyMonth(ctx context.Context, s *Session, fromMonth, toMonth string) bool {
	if !svc.guard(ctx, "copy month", s) || !svc.begin(ctx, "copy month") {
		return false
	}
	defer svc.end()
	return svc.copyMonth(ctx, s, fromMonth, toMonth)
}

func (svc *Service) copyMonth(ctx context.Context, s *Session, fromMonth, toMonth string) bool {
	budgets, err := svc.FetchBudgets(ctx, s, fromMonth)
	if err != nil {
		return svc.fail(ctx, "copy month", err)
	}
	for _, b := range budgets {
		b.ID = ""
		b.Month = toMonth
		wire, err := encryptBudget(b, s.DataKey)
		if err != nil {
			return svc.fail(ctx, "copy month", err)
		}
		if _, err := svc.client.SaveBudget(ctx, s.UserID, s.SessionID, wire); err != nil {
			return svc.fail(ctx, "copy month", err)
		}
	}

	expenses, err := svc.FetchExpenses(ctx, s, fromMonth)
	if err != nil {
		return svc.fail(ctx, "copy month", err)
	}
	for _, e := range expenses {
		if !e.IsRecurring {
			continue
		}
		date, err := monthx.Rebase(e.Date, toMonth)
		if err != nil {
			return svc.fail(ctx, "copy month", err)
		}
		e.ID = ""
		e.Date = date
		wire, err := encryptExpense(e, s.DataKey)
		if err != nil {
			return svc.fail(ctx, "copy month", err)
		}
		if _, err := svc.client.SaveExpense(ctx, s.UserID, s.SessionID, wire); err != nil {
			return svc.fail(ctx, "copy month", err)
		}
	}
	return true
}

// MarkSynced records that the initial sync finished. Rollover stays off
// until then so a half-loaded month is not mistaken for an empty one.
func (svc *Service) MarkSynced() {
	svc.mu.Lock()
	svc.syncDone = true
	svc.mu.Unlock()
}

// EnsureMonth runs the rollover when the user enters a month that has no
// budgets yet: the previous month's budgets and recurring expenses are
// copied in. At most once per month per process. Returns true when a
// rollover actually happened.
func (svc *Service) EnsureMonth(ctx context.Context, s *Session, month string) bool {
	if s == nil || !monthx.ValidMonth(month) {
		return false
	}

	svc.mu.Lock()
	ready := svc.syncDone && !svc.rolledOver[month]
	if ready {
		svc.rolledOver[month] = true
	}
	svc.mu.Unlock()
	if !ready {
		return false
	}

	budgets, err := svc.FetchBudgets(ctx, s, month)
	if err != nil {
		return svc.fail(ctx, "rollover", err)
	}
	if len(budgets) > 0 {
		return false
	}

	prev, err := monthx.Prev(month)
	if err != nil {
		return svc.fail(ctx, "rollover", err)
	}

	if !svc.begin(ctx, "rollover") {
		return false
	}
	defer svc.end()
	return svc.copyMonth(ctx, s, prev, month)
}
