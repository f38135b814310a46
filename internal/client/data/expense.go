package data

import (
	"context"
	"strings"

	"github.com/mpetrovs/spendvault/internal/monthx"
)

const (
	MsgDescriptionRequired = "Expense description is required."
	MsgCostInvalid         = "Expense cost must be a positive number."
)

// SaveExpense validates, resolves the target budget, and writes the expense.
// An invalid date defaults to today. A new expense with no budget (or the
// default one) inherits the budget of the most recent prior expense with the
// same description; if the resolved budget does not exist for the expense's
// month yet, it is auto-created with the default value. Returns false on any
// failure, with the reason delivered through the Notifier.
func (svc *Service) SaveExpense(ctx context.Context, s *Session, e *Expense) bool {
	if !svc.guard(ctx, "save expense", s) || !svc.begin(ctx, "save expense") {
		return false
	}
	defer svc.end()
	return svc.saveExpense(ctx, s, e)
}

func (svc *Service) saveExpense(ctx context.Context, s *Session, e *Expense) bool {
	e.Description = strings.TrimSpace(e.Description)
	if e.Description == "" {
		svc.notifier.Notify(MsgDescriptionRequired)
		return false
	}
	if !validAmount(e.Cost) {
		svc.notifier.Notify(MsgCostInvalid)
		return false
	}
	if !monthx.ValidDate(e.Date) {
		e.Date = monthx.Today()
	}

	e.Budget = strings.TrimSpace(e.Budget)
	if e.ID == "" && (e.Budget == "" || sameName(e.Budget, DefaultBudgetName)) {
		inferred, ok := svc.inferBudget(ctx, s, e.Description)
		if !ok {
			return false
		}
		if inferred != "" {
			e.Budget = inferred
		}
	}
	if e.Budget == "" {
		e.Budget = DefaultBudgetName
	}

	if !svc.ensureBudget(ctx, s, e.Budget, monthx.OfDate(e.Date)) {
		return false
	}

	wire, err := encryptExpense(*e, s.DataKey)
	if err != nil {
		return svc.fail(ctx, "save expense", err)
	}
	saved, err := svc.client.SaveExpense(ctx, s.UserID, s.SessionID, wire)
	if err != nil {
		return svc.fail(ctx, "save expense", err)
	}
	e.ID = saved.ID
	return true
}

// inferBudget scans expense history, newest first, for a prior expense with
// the same description and reuses its budget. Returns ok=false only on
// transport failure.
func (svc *Service) inferBudget(ctx context.Context, s *Session, description string) (string, bool) {
	history, err := svc.FetchExpenses(ctx, s, monthx.All)
	if err != nil {
		return "", svc.fail(ctx, "save expense", err)
	}
	for i := len(history) - 1; i >= 0; i-- {
		prior := history[i]
		if sameName(prior.Description, description) && prior.Budget != "" {
			return prior.Budget, true
		}
	}
	return "", true
}

// ensureBudget auto-creates the named budget for month when it is missing.
func (svc *Service) ensureBudget(ctx context.Context, s *Session, name, month string) bool {
	budgets, err := svc.FetchBudgets(ctx, s, month)
	if err != nil {
		return svc.fail(ctx, "save expense", err)
	}
	for _, b := range budgets {
		if sameName(b.Name, name) {
			return true
		}
	}

	wire, err := encryptBudget(Budget{Name: name, Month: month, Value: DefaultBudgetValue}, s.DataKey)
	if err != nil {
		return svc.fail(ctx, "save expense", err)
	}
	if _, err := svc.client.SaveBudget(ctx, s.UserID, s.SessionID, wire); err != nil {
		return svc.fail(ctx, "save expense", err)
	}
	return true
}

// DeleteExpense removes the expense unconditionally.
func (svc *Service) DeleteExpense(ctx context.Context, s *Session, id string) bool {
	if !svc.guard(ctx, "delete expense", s) || !svc.begin(ctx, "delete expense") {
		return false
	}
	defer svc.end()

	if err := svc.client.DeleteExpense(ctx, s.UserID, s.SessionID, id); err != nil {
		return svc.fail(ctx, "delete expense", err)
	}
	return true
}
