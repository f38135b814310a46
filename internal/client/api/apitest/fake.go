// Package apitest provides an in-memory stand-in for the vault server, used
// by client-side tests. Like the real server it never inspects ciphertext:
// budgets and expenses are stored and filtered by routing metadata only.
package apitest

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mpetrovs/spendvault/internal/client/api"
	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/monthx"
)

type Fake struct {
	mu sync.Mutex

	User      *api.User
	SessionID string

	Budgets  []api.Budget
	Expenses []api.Expense

	// FailWith, when set, makes every call return that error.
	FailWith error

	DeletedSessions int
	Wiped           bool
}

var _ api.Client = (*Fake)(nil)

// New returns a Fake with one registered user.
func New() *Fake {
	return &Fake{
		User: &api.User{
			ID:       "user-1",
			Email:    "user@example.com",
			Status:   common.StatusActive,
			Currency: "USD",
		},
		SessionID: "session-1",
	}
}

func (f *Fake) StartLogin(_ context.Context, email string) (*api.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, "", f.FailWith
	}
	if f.User == nil || f.User.Email != email {
		return nil, "", common.ErrUnauthorized
	}
	u := *f.User
	return &u, f.SessionID, nil
}

func (f *Fake) VerifySession(_ context.Context, _, _, code string) (*api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	if code == "" {
		return nil, common.ErrCodeInvalid
	}
	u := *f.User
	return &u, nil
}

func (f *Fake) DeleteSession(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	f.DeletedSessions++
	return nil
}

func (f *Fake) Signup(_ context.Context, email, encryptedKeyPair string) (*api.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, "", f.FailWith
	}
	f.User = &api.User{
		ID:               uuid.NewString(),
		Email:            email,
		EncryptedKeyPair: encryptedKeyPair,
		Status:           common.StatusTrial,
		Currency:         "USD",
	}
	u := *f.User
	return &u, f.SessionID, nil
}

func (f *Fake) UpdateUser(_ context.Context, params api.UpdateUserParams) (*api.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, false, f.FailWith
	}
	if params.Code == "" {
		return nil, true, nil
	}
	if params.Email != nil {
		f.User.Email = *params.Email
	}
	if params.Currency != nil {
		f.User.Currency = *params.Currency
	}
	if params.EncryptedKeyPair != nil {
		f.User.EncryptedKeyPair = *params.EncryptedKeyPair
	}
	u := *f.User
	return &u, false, nil
}

func (f *Fake) DeleteUser(_ context.Context, _, _, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return false, f.FailWith
	}
	if code == "" {
		return true, nil
	}
	f.User = nil
	f.Budgets = nil
	f.Expenses = nil
	return false, nil
}

func (f *Fake) ListBudgets(_ context.Context, _, _, month string) ([]api.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	var out []api.Budget
	for _, b := range f.Budgets {
		if month == monthx.All || b.Month == month {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *Fake) SaveBudget(_ context.Context, _, _ string, b api.Budget) (*api.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
		f.Budgets = append(f.Budgets, b)
		return &b, nil
	}
	for i := range f.Budgets {
		if f.Budgets[i].ID == b.ID {
			f.Budgets[i] = b
			return &b, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *Fake) DeleteBudget(_ context.Context, _, _, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	for i := range f.Budgets {
		if f.Budgets[i].ID == id {
			f.Budgets = append(f.Budgets[:i], f.Budgets[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *Fake) ListExpenses(_ context.Context, _, _, month string) ([]api.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	var out []api.Expense
	for _, e := range f.Expenses {
		if month == monthx.All || monthx.OfDate(e.Date) == month {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *Fake) SaveExpense(_ context.Context, _, _ string, e api.Expense) (*api.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
		f.Expenses = append(f.Expenses, e)
		return &e, nil
	}
	for i := range f.Expenses {
		if f.Expenses[i].ID == e.ID {
			f.Expenses[i] = e
			return &e, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *Fake) DeleteExpense(_ context.Context, _, _, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	for i := range f.Expenses {
		if f.Expenses[i].ID == id {
			f.Expenses = append(f.Expenses[:i], f.Expenses[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *Fake) ImportData(_ context.Context, _, _ string, budgets []api.Budget, expenses []api.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	for _, b := range budgets {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		f.Budgets = append(f.Budgets, b)
	}
	for _, e := range expenses {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		f.Expenses = append(f.Expenses, e)
	}
	return nil
}

func (f *Fake) WipeData(_ context.Context, _, _, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return false, f.FailWith
	}
	if code == "" {
		return true, nil
	}
	f.Budgets = nil
	f.Expenses = nil
	f.Wiped = true
	return false, nil
}
