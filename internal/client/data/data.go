// Package data is the encrypted data-access layer: plaintext budgets and
// expenses on one side, ciphertext plus routing metadata on the other.
// Every encrypted field passes through the session's data key here;
// the transport below and the server behind it never see plaintext.
//
// Mutating operations report success as a bool and route failures to the
// Notifier: validation problems get a specific message and abort before any
// network call, transport problems get a generic notice with the cause
// logged. Key material and ciphertext never reach either channel.
package data

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mpetrovs/spendvault/internal/client/api"
	"github.com/mpetrovs/spendvault/internal/client/notify"
	"github.com/mpetrovs/spendvault/internal/cryptox"
	"github.com/mpetrovs/spendvault/internal/logging"
)

// ErrNoSession is returned when a call arrives without a logged-in session.
// The CLI refuses to dispatch data commands before login; this is the
// backstop for any other caller.
var ErrNoSession = errors.New("no active session")

const (
	// ReservedTotalName is synthesized as an aggregate row and may not be
	// used as a budget name.
	ReservedTotalName = "Total"

	// DefaultBudgetName receives expenses that name no budget.
	DefaultBudgetName = "Misc"

	// DefaultBudgetValue is assigned to auto-created budgets.
	DefaultBudgetValue = 100
)

// Session is the slice of a verified identity this layer needs: routing ids
// for the transport and the data key for field encryption.
type Session struct {
	UserID    string
	SessionID string
	DataKey   []byte
}

// Budget is the decrypted form. Month stays plaintext end to end.
type Budget struct {
	ID    string
	Name  string
	Month string
	Value float64
}

// Expense is the decrypted form. Budget references a Budget by name within
// the expense's month, not by id.
type Expense struct {
	ID          string
	Description string
	Cost        float64
	Budget      string
	Date        string
	IsRecurring bool
}

type Service struct {
	client   api.Client
	notifier notify.Notifier
	logger   logging.Logger

	mutating atomic.Bool

	mu         sync.Mutex
	syncDone   bool
	rolledOver map[string]bool
}

func NewService(client api.Client, notifier notify.Notifier, logger logging.Logger) *Service {
	return &Service{
		client:     client,
		notifier:   notifier,
		logger:     logger,
		rolledOver: map[string]bool{},
	}
}

// FetchBudgets returns the decrypted budgets for month (or monthx.All),
// sorted by name.
func (svc *Service) FetchBudgets(ctx context.Context, s *Session, month string) ([]Budget, error) {
	if s == nil {
		return nil, ErrNoSession
	}
	wire, err := svc.client.ListBudgets(ctx, s.UserID, s.SessionID, month)
	if err != nil {
		return nil, err
	}
	budgets := make([]Budget, 0, len(wire))
	for _, w := range wire {
		b, err := decryptBudget(w, s.DataKey)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	sort.Slice(budgets, func(i, j int) bool {
		return strings.ToLower(budgets[i].Name) < strings.ToLower(budgets[j].Name)
	})
	return budgets, nil
}

// FetchExpenses returns the decrypted expenses for month (or monthx.All),
// sorted by date.
func (svc *Service) FetchExpenses(ctx context.Context, s *Session, month string) ([]Expense, error) {
	if s == nil {
		return nil, ErrNoSession
	}
	wire, err := svc.client.ListExpenses(ctx, s.UserID, s.SessionID, month)
	if err != nil {
		return nil, err
	}
	expenses := make([]Expense, 0, len(wire))
	for _, w := range wire {
		e, err := decryptExpense(w, s.DataKey)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].Date < expenses[j].Date
	})
	return expenses, nil
}

// WithTotal appends the synthesized aggregate row summing every budget.
func WithTotal(budgets []Budget) []Budget {
	var sum float64
	for _, b := range budgets {
		sum += b.Value
	}
	return append(budgets, Budget{Name: ReservedTotalName, Value: sum})
}

// begin claims the single mutation slot; duplicate in-flight submissions are
// rejected rather than queued.
func (svc *Service) begin(ctx context.Context, op string) bool {
	if !svc.mutating.CompareAndSwap(false, true) {
		svc.logger.Debug(ctx, "mutation already in flight", "op", op)
		return false
	}
	return true
}

func (svc *Service) end() {
	svc.mutating.Store(false)
}

// guard rejects a mutation that arrives with no session.
func (svc *Service) guard(ctx context.Context, op string, s *Session) bool {
	if s != nil {
		return true
	}
	svc.fail(ctx, op, ErrNoSession)
	return false
}

// fail logs the cause and shows the generic notice. The message never
// carries the underlying error.
func (svc *Service) fail(ctx context.Context, op string, err error) bool {
	svc.logger.Error(ctx, "operation failed", "op", op, "err", err.Error())
	svc.notifier.Notify(notify.GenericFailure)
	return false
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && v > 0
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func encryptBudget(b Budget, key []byte) (api.Budget, error) {
	name, err := cryptox.Encrypt(b.Name, key)
	if err != nil {
		return api.Budget{}, err
	}
	value, err := cryptox.Encrypt(formatAmount(b.Value), key)
	if err != nil {
		return api.Budget{}, err
	}
	return api.Budget{ID: b.ID, Name: name, Month: b.Month, Value: value}, nil
}

func decryptBudget(w api.Budget, key []byte) (Budget, error) {
	name, err := cryptox.Decrypt(w.Name, key)
	if err != nil {
		return Budget{}, err
	}
	valueStr, err := cryptox.Decrypt(w.Value, key)
	if err != nil {
		return Budget{}, err
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return Budget{}, err
	}
	return Budget{ID: w.ID, Name: name, Month: w.Month, Value: value}, nil
}

func encryptExpense(e Expense, key []byte) (api.Expense, error) {
	description, err := cryptox.Encrypt(e.Description, key)
	if err != nil {
		return api.Expense{}, err
	}
	cost, err := cryptox.Encrypt(formatAmount(e.Cost), key)
	if err != nil {
		return api.Expense{}, err
	}
	budget, err := cryptox.Encrypt(e.Budget, key)
	if err != nil {
		return api.Expense{}, err
	}
	return api.Expense{
		ID:          e.ID,
		Description: description,
		Cost:        cost,
		Budget:      budget,
		Date:        e.Date,
		IsRecurring: e.IsRecurring,
	}, nil
}

func decryptExpense(w api.Expense, key []byte) (Expense, error) {
	description, err := cryptox.Decrypt(w.Description, key)
	if err != nil {
		return Expense{}, err
	}
	costStr, err := cryptox.Decrypt(w.Cost, key)
	if err != nil {
		return Expense{}, err
	}
	cost, err := strconv.ParseFloat(costStr, 64)
	if err != nil {
		return Expense{}, err
	}
	budget, err := cryptox.Decrypt(w.Budget, key)
	if err != nil {
		return Expense{}, err
	}
	return Expense{
		ID:          w.ID,
		Description: description,
		Cost:        cost,
		Budget:      budget,
		Date:        w.Date,
		IsRecurring: w.IsRecurring,
	}, nil
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
