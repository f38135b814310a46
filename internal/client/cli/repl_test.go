package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubExec struct {
	loggedIn bool
	calls    []string
}

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) isLoggedIn() bool                       { return s.loggedIn }
func (s *stubExec) Register(context.Context) error         { return s.record("register") }
func (s *stubExec) Login(context.Context) error            { return s.record("login") }
func (s *stubExec) Logout(context.Context) error           { return s.record("logout") }
func (s *stubExec) Accounts(context.Context) error         { return s.record("accounts") }
func (s *stubExec) Switch(context.Context) error           { return s.record("switch") }
func (s *stubExec) SetMonth(context.Context) error         { return s.record("month") }
func (s *stubExec) ListBudgets(context.Context) error      { return s.record("budgets") }
func (s *stubExec) ListExpenses(context.Context) error     { return s.record("expenses") }
func (s *stubExec) AddBudget(context.Context) error        { return s.record("addbudget") }
func (s *stubExec) AddExpense(context.Context) error       { return s.record("addexpense") }
func (s *stubExec) DeleteBudget(context.Context) error     { return s.record("delbudget") }
func (s *stubExec) DeleteExpense(context.Context) error    { return s.record("delexpense") }
func (s *stubExec) CopyMonth(context.Context) error        { return s.record("copymonth") }
func (s *stubExec) Export(context.Context) error           { return s.record("export") }
func (s *stubExec) Import(context.Context) error           { return s.record("import") }
func (s *stubExec) Backup(context.Context) error           { return s.record("backup") }
func (s *stubExec) Restore(context.Context) error          { return s.record("restore") }
func (s *stubExec) ChangeEmail(context.Context) error      { return s.record("email") }
func (s *stubExec) ChangeCurrency(context.Context) error   { return s.record("currency") }
func (s *stubExec) ChangePassword(context.Context) error   { return s.record("password") }
func (s *stubExec) DeleteAccount(context.Context) error    { return s.record("delete-account") }
func (s *stubExec) Wipe(context.Context) error             { return s.record("wipe") }

func runScript(t *testing.T, script string) (*stubExec, []string) {
	return runScriptWith(t, &stubExec{loggedIn: true}, script)
}

func runScriptWith(t *testing.T, stub *stubExec, script string) (*stubExec, []string) {
	t.Helper()

	var printed []string
	orig := printlnFn
	printlnFn = func(args ...any) (int, error) {
		for _, a := range args {
			if s, ok := a.(string); ok {
				printed = append(printed, s)
			}
		}
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })

	scanner := bufio.NewScanner(strings.NewReader(script))
	runREPL(context.Background(), stub, func() string { return "test" }, scanner)
	return stub, printed
}

func TestREPL_Dispatch(t *testing.T) {
	stub, _ := runScript(t, "budgets\ne\naddexpense\nmonth\nbackup\nlogout\nexit\n")
	assert.Equal(t, []string{"budgets", "expenses", "addexpense", "month", "backup", "logout"}, stub.calls)
}

func TestREPL_DataCommandsNeedLogin(t *testing.T) {
	script := "budgets\ne\naddexpense\ndelbudget\ncopymonth\nexport\nimport\nbackup\nrestore\nmonth\nemail\nwipe\nlogin\nexit\n"
	stub, printed := runScriptWith(t, &stubExec{}, script)

	// nothing identity-bound runs before login; only the login attempt goes through
	assert.Equal(t, []string{"login"}, stub.calls)
	assert.Contains(t, printed, "Not logged in. Use register or login first.")
}

func TestREPL_UnknownCommand(t *testing.T) {
	stub, printed := runScript(t, "frobnicate\nexit\n")
	assert.Empty(t, stub.calls)
	assert.Contains(t, printed, "Unknown command:")
}

func TestREPL_EmptyLineIgnored(t *testing.T) {
	stub, _ := runScript(t, "\n\nbudgets\nexit\n")
	assert.Equal(t, []string{"budgets"}, stub.calls)
}

func TestREPL_EOFStops(t *testing.T) {
	stub, _ := runScript(t, "budgets\n")
	assert.Equal(t, []string{"budgets"}, stub.calls)
}
