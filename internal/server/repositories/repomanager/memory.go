package repomanager

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/dbx"
	"github.com/mpetrovs/spendvault/internal/server/models"
	"github.com/mpetrovs/spendvault/internal/server/repositories/budgets"
	"github.com/mpetrovs/spendvault/internal/server/repositories/codes"
	"github.com/mpetrovs/spendvault/internal/server/repositories/expenses"
	"github.com/mpetrovs/spendvault/internal/server/repositories/sessions"
	"github.com/mpetrovs/spendvault/internal/server/repositories/users"
)

// MemoryManager is a map-backed RepositoryManager for tests and local
// development. It ignores the DBTX handle: callers still drive transaction
// lifecycles on their database, but the state lives here. Not durable.
type MemoryManager struct {
	mu       sync.Mutex
	users    map[string]*models.User
	sessions map[string]*models.Session
	codes    map[string]*models.VerificationCode
	budgets  map[string]*models.Budget
	expenses map[string]*models.Expense
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		users:    map[string]*models.User{},
		sessions: map[string]*models.Session{},
		codes:    map[string]*models.VerificationCode{},
		budgets:  map[string]*models.Budget{},
		expenses: map[string]*models.Expense{},
	}
}

func (m *MemoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *MemoryManager) Users(dbx.DBTX) users.Repository              { return (*memUsers)(m) }
func (m *MemoryManager) Sessions(dbx.DBTX) sessions.Repository        { return (*memSessions)(m) }
func (m *MemoryManager) Codes(dbx.DBTX) codes.Repository              { return (*memCodes)(m) }
func (m *MemoryManager) Budgets(dbx.DBTX) budgets.Repository          { return (*memBudgets)(m) }
func (m *MemoryManager) Expenses(dbx.DBTX) expenses.Repository        { return (*memExpenses)(m) }

type memUsers MemoryManager

func (m *memUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, common.ErrEmailExists
		}
	}
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return user, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type memSessions MemoryManager

func (m *memSessions) Create(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

func (m *memSessions) GetByID(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) MarkVerified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return common.ErrNotFound
	}
	s.Verified = true
	return nil
}

func (m *memSessions) Touch(_ context.Context, id string, seenAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return common.ErrNotFound
	}
	s.LastSeenAt = seenAt
	return nil
}

func (m *memSessions) Expire(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return common.ErrNotFound
	}
	s.ExpiresAt = at
	return nil
}

func (m *memSessions) ExpireAllForUser(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UserID == userID {
			s.ExpiresAt = at
		}
	}
	return nil
}

type memCodes MemoryManager

func (m *memCodes) Create(_ context.Context, code *models.VerificationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	code.CreatedAt = time.Now()
	cp := *code
	m.codes[code.ID] = &cp
	return nil
}

func (m *memCodes) InvalidateUnused(_ context.Context, userID string, purpose common.Purpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.codes {
		if c.UserID == userID && c.Purpose == purpose && !c.Used {
			delete(m.codes, id)
		}
	}
	return nil
}

func (m *memCodes) Consume(_ context.Context, userID, code string, purpose common.Purpose, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var match *models.VerificationCode
	for _, c := range m.codes {
		if c.UserID == userID && c.Code == code {
			if match == nil || c.CreatedAt.After(match.CreatedAt) {
				match = c
			}
		}
	}
	if match == nil {
		return common.ErrCodeInvalid
	}
	switch {
	case match.Purpose != purpose:
		return common.ErrCodeWrongPurpose
	case match.Used:
		return common.ErrCodeAlreadyUsed
	case !match.ExpiresAt.After(now):
		return common.ErrCodeExpired
	}
	match.Used = true
	return nil
}

type memBudgets MemoryManager

func (m *memBudgets) Insert(_ context.Context, b *models.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.budgets[b.ID] = &cp
	return nil
}

func (m *memBudgets) Update(_ context.Context, b *models.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.budgets[b.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *b
	m.budgets[b.ID] = &cp
	return nil
}

func (m *memBudgets) GetByID(_ context.Context, userID, id string) (*models.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[id]
	if !ok || b.UserID != userID {
		return nil, common.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBudgets) ListByMonth(_ context.Context, userID, month string) ([]*models.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Budget
	for _, b := range m.budgets {
		if b.UserID == userID && b.Month == month {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memBudgets) ListAll(_ context.Context, userID string) ([]*models.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Budget
	for _, b := range m.budgets {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memBudgets) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[id]
	if !ok || b.UserID != userID {
		return common.ErrNotFound
	}
	delete(m.budgets, id)
	return nil
}

func (m *memBudgets) DeleteAllForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, b := range m.budgets {
		if b.UserID == userID {
			delete(m.budgets, id)
		}
	}
	return nil
}

type memExpenses MemoryManager

func (m *memExpenses) Insert(_ context.Context, e *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.expenses[e.ID] = &cp
	return nil
}

func (m *memExpenses) Update(_ context.Context, e *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[e.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *e
	m.expenses[e.ID] = &cp
	return nil
}

func (m *memExpenses) GetByID(_ context.Context, userID, id string) (*models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok || e.UserID != userID {
		return nil, common.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memExpenses) ListByMonth(_ context.Context, userID, month string) ([]*models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Expense
	for _, e := range m.expenses {
		if e.UserID == userID && len(e.Date) >= len(month) && e.Date[:len(month)] == month {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memExpenses) ListAll(_ context.Context, userID string) ([]*models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Expense
	for _, e := range m.expenses {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memExpenses) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok || e.UserID != userID {
		return common.ErrNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *memExpenses) DeleteAllForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.expenses {
		if e.UserID == userID {
			delete(m.expenses, id)
		}
	}
	return nil
}
