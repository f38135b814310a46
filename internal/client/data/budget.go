package data

import (
	"context"
	"strings"

	"github.com/mpetrovs/spendvault/internal/monthx"
)

// User-facing validation notices. Specific enough to act on, never carrying
// field values or error internals.
const (
	MsgNameReserved  = `"Total" is reserved and cannot be used as a budget name.`
	MsgNameRequired  = "Budget name is required."
	MsgValueInvalid  = "Budget value must be a positive number."
	MsgNameTaken     = "A budget with this name already exists for this month."
	MsgBudgetInUse   = "This budget still has expenses. Move or delete them first."
	MsgBudgetMissing = "Budget not found."
)

// SaveBudget validates, enforces per-month name uniqueness, and writes the
// budget. On a rename it re-saves every expense in the budget's month that
// referenced the old name, because expenses point at budgets by name. An
// invalid month silently defaults to the current one. Returns false on any
// failure, with the reason delivered through the Notifier.
func (svc *Service) SaveBudget(ctx context.Context, s *Session, b *Budget) bool {
	if !svc.guard(ctx, "save budget", s) || !svc.begin(ctx, "save budget") {
		return false
	}
	defer svc.end()
	return svc.saveBudget(ctx, s, b)
}

func (svc *Service) saveBudget(ctx context.Context, s *Session, b *Budget) bool {
	b.Name = strings.TrimSpace(b.Name)
	if sameName(b.Name, ReservedTotalName) {
		svc.notifier.Notify(MsgNameReserved)
		return false
	}
	if b.Name == "" {
		svc.notifier.Notify(MsgNameRequired)
		return false
	}
	if !validAmount(b.Value) {
		svc.notifier.Notify(MsgValueInvalid)
		return false
	}
	if !monthx.ValidMonth(b.Month) {
		b.Month = monthx.CurrentMonth()
	}

	existing, err := svc.FetchBudgets(ctx, s, b.Month)
	if err != nil {
		return svc.fail(ctx, "save budget", err)
	}

	var oldName string
	for _, other := range existing {
		if other.ID == b.ID {
			oldName = other.Name
			continue
		}
		if sameName(other.Name, b.Name) {
			svc.notifier.Notify(MsgNameTaken)
			return false
		}
	}

	wire, err := encryptBudget(*b, s.DataKey)
	if err != nil {
		return svc.fail(ctx, "save budget", err)
	}
	saved, err := svc.client.SaveBudget(ctx, s.UserID, s.SessionID, wire)
	if err != nil {
		return svc.fail(ctx, "save budget", err)
	}
	b.ID = saved.ID

	if oldName != "" && !sameName(oldName, b.Name) {
		if !svc.renameSweep(ctx, s, b.Month, oldName, b.Name) {
			return false
		}
	}
	return true
}

// renameSweep points every expense of month that referenced oldName at
// newName.
func (svc *Service) renameSweep(ctx context.Context, s *Session, month, oldName, newName string) bool {
	expenses, err := svc.FetchExpenses(ctx, s, month)
	if err != nil {
		return svc.fail(ctx, "rename budget", err)
	}
	for _, e := range expenses {
		if !sameName(e.Budget, oldName) {
			continue
		}
		e.Budget = newName
		wire, err := encryptExpense(e, s.DataKey)
		if err != nil {
			return svc.fail(ctx, "rename budget", err)
		}
		if _, err := svc.client.SaveExpense(ctx, s.UserID, s.SessionID, wire); err != nil {
			return svc.fail(ctx, "rename budget", err)
		}
	}
	return true
}

// DeleteBudget refuses while expenses in the budget's month still reference
// its name. The one exception: when a same-named duplicate budget exists for
// that month, those expenses still resolve after deletion, so it proceeds.
func (svc *Service) DeleteBudget(ctx context.Context, s *Session, id string) bool {
	if !svc.guard(ctx, "delete budget", s) || !svc.begin(ctx, "delete budget") {
		return false
	}
	defer svc.end()

	budgets, err := svc.FetchBudgets(ctx, s, monthx.All)
	if err != nil {
		return svc.fail(ctx, "delete budget", err)
	}

	var target *Budget
	duplicate := false
	for i, b := range budgets {
		if b.ID == id {
			target = &budgets[i]
		}
	}
	if target == nil {
		svc.notifier.Notify(MsgBudgetMissing)
		return false
	}
	for _, b := range budgets {
		if b.ID != id && b.Month == target.Month && sameName(b.Name, target.Name) {
			duplicate = true
		}
	}

	if !duplicate {
		expenses, err := svc.FetchExpenses(ctx, s, target.Month)
		if err != nil {
			return svc.fail(ctx, "delete budget", err)
		}
		for _, e := range expenses {
			if sameName(e.Budget, target.Name) {
				svc.notifier.Notify(MsgBudgetInUse)
				return false
			}
		}
	}

	if err := svc.client.DeleteBudget(ctx, s.UserID, s.SessionID, id); err != nil {
		return svc.fail(ctx, "delete budget", err)
	}
	return true
}
