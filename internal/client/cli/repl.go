package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Accounts(ctx context.Context) error
	Switch(ctx context.Context) error
	SetMonth(ctx context.Context) error
	ListBudgets(ctx context.Context) error
	ListExpenses(ctx context.Context) error
	AddBudget(ctx context.Context) error
	AddExpense(ctx context.Context) error
	DeleteBudget(ctx context.Context) error
	DeleteExpense(ctx context.Context) error
	CopyMonth(ctx context.Context) error
	Export(ctx context.Context) error
	Import(ctx context.Context) error
	Backup(ctx context.Context) error
	Restore(ctx context.Context) error
	ChangeEmail(ctx context.Context) error
	ChangeCurrency(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Wipe(ctx context.Context) error
}

// loggedInOnly lists the commands that operate on the active identity.
// Dispatching them without one would hand the data layer a nil session.
var loggedInOnly = map[string]bool{
	"logout": true, "switch": true, "month": true,
	"b": true, "budgets": true, "e": true, "expenses": true,
	"addbudget": true, "addexpense": true, "delbudget": true, "delexpense": true,
	"copymonth": true, "export": true, "import": true, "backup": true, "restore": true,
	"email": true, "currency": true, "password": true, "wipe": true, "delete-account": true,
}

// Run restores a persisted identity if there is one and enters the REPL.
func (a *App) Run(ctx context.Context) {
	if ok, err := a.auth.Restore(ctx); err == nil && ok {
		a.println("Resumed session for", a.auth.Active().Email)
		a.initialSync(ctx)
	}
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

// runREPL reads a line, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on scanner EOF or when the user types "exit" or
// "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sv> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		if loggedInOnly[cmd] && !a.isLoggedIn() {
			printlnFn("Not logged in. Use register or login first.")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (b)udgets, (e)xpenses, addbudget, addexpense, delbudget, delexpense,")
				printlnFn("  month, copymonth, export, import, backup, restore, email, currency, password,")
				printlnFn("  accounts, switch, wipe, delete-account, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "accounts":
			_ = a.Accounts(ctx)
		case "switch":
			_ = a.Switch(ctx)

		case "month":
			_ = a.SetMonth(ctx)
		case "b", "budgets":
			_ = a.ListBudgets(ctx)
		case "e", "expenses":
			_ = a.ListExpenses(ctx)
		case "addbudget":
			_ = a.AddBudget(ctx)
		case "addexpense":
			_ = a.AddExpense(ctx)
		case "delbudget":
			_ = a.DeleteBudget(ctx)
		case "delexpense":
			_ = a.DeleteExpense(ctx)
		case "copymonth":
			_ = a.CopyMonth(ctx)

		case "export":
			_ = a.Export(ctx)
		case "import":
			_ = a.Import(ctx)
		case "backup":
			_ = a.Backup(ctx)
		case "restore":
			_ = a.Restore(ctx)

		case "email":
			_ = a.ChangeEmail(ctx)
		case "currency":
			_ = a.ChangeCurrency(ctx)
		case "password":
			_ = a.ChangePassword(ctx)
		case "wipe":
			_ = a.Wipe(ctx)
		case "delete-account":
			_ = a.DeleteAccount(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
