package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/mpetrovs/spendvault/internal/client/data"
	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/monthx"
)

var errAborted = errors.New("aborted")

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Choose a password", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.Signup(ctx, email, password); err != nil {
		a.println("Registration failed:", err)
		return err
	}
	return a.verify(ctx)
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.LoginRequest(ctx, email, password); err != nil {
		a.println("Login failed:", err)
		return err
	}
	return a.verify(ctx)
}

func (a *App) verify(ctx context.Context) error {
	code, err := GetSimpleText(a.reader, "A verification code was sent to your email. Enter it", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.VerifyCode(ctx, code); err != nil {
		if errors.Is(err, common.ErrDecryptionFailed) {
			a.println("Wrong password.")
		} else {
			a.println("Verification failed:", err)
		}
		return err
	}
	a.println("Logged in as", a.auth.Active().Email)
	a.initialSync(ctx)
	return nil
}

// initialSync warms the current month and unlocks the rollover.
func (a *App) initialSync(ctx context.Context) {
	s := a.session()
	if _, err := a.data.FetchBudgets(ctx, s, a.month); err != nil {
		a.logger.Warn(ctx, "initial sync failed", "err", err.Error())
		return
	}
	a.data.MarkSynced()
	a.data.EnsureMonth(ctx, s, a.month)
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		a.println("Logout failed:", err)
		return err
	}
	if identity := a.auth.Active(); identity != nil {
		a.println("Now using", identity.Email)
	} else {
		a.println("Logged out.")
	}
	return nil
}

func (a *App) Accounts(ctx context.Context) error {
	others, err := a.auth.Accounts(ctx)
	if err != nil {
		return err
	}
	if len(others) == 0 {
		a.println("No other accounts.")
		return nil
	}
	for _, o := range others {
		a.printf("%s\t%s\n", o.UserID, o.Email)
	}
	return nil
}

func (a *App) Switch(ctx context.Context) error {
	userID, err := GetSimpleText(a.reader, "User id to switch to (see accounts)", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.SwitchAccount(ctx, userID); err != nil {
		a.println("Switch failed:", err)
		return err
	}
	a.println("Now using", a.auth.Active().Email)
	return nil
}

func (a *App) SetMonth(ctx context.Context) error {
	month, err := GetSimpleText(a.reader, "Month (YYYY-MM)", a.out)
	if err != nil {
		return err
	}
	if !monthx.ValidMonth(month) {
		a.println("Invalid month.")
		return nil
	}
	a.month = month
	a.data.EnsureMonth(ctx, a.session(), month)
	return nil
}

func (a *App) ListBudgets(ctx context.Context) error {
	budgets, err := a.data.FetchBudgets(ctx, a.session(), a.month)
	if err != nil {
		a.println("Fetch failed:", err)
		return err
	}
	for _, b := range data.WithTotal(budgets) {
		a.printf("%-20s %10.2f  %s\n", b.Name, b.Value, b.ID)
	}
	return nil
}

func (a *App) ListExpenses(ctx context.Context) error {
	expenses, err := a.data.FetchExpenses(ctx, a.session(), a.month)
	if err != nil {
		a.println("Fetch failed:", err)
		return err
	}
	for _, e := range expenses {
		recurring := " "
		if e.IsRecurring {
			recurring = "R"
		}
		a.printf("%s %s %-20s %10.2f  %-15s %s\n", e.Date, recurring, e.Description, e.Cost, e.Budget, e.ID)
	}
	return nil
}

func (a *App) AddBudget(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Budget name", a.out)
	if err != nil {
		return err
	}
	value, err := GetAmount(a.reader, "Value", a.out)
	if err != nil {
		a.println(err)
		return err
	}
	b := data.Budget{Name: name, Month: a.month, Value: value}
	if a.data.SaveBudget(ctx, a.session(), &b) {
		a.println("Saved.")
	}
	return nil
}

func (a *App) AddExpense(ctx context.Context) error {
	description, err := GetSimpleText(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	cost, err := GetAmount(a.reader, "Cost", a.out)
	if err != nil {
		a.println(err)
		return err
	}
	budget, err := GetSimpleText(a.reader, "Budget (empty to infer)", a.out)
	if err != nil {
		return err
	}
	date, err := GetSimpleText(a.reader, "Date (YYYY-MM-DD, empty for today)", a.out)
	if err != nil {
		return err
	}
	recurring, err := GetYesNo(a.reader, "Recurring", a.out)
	if err != nil {
		return err
	}
	e := data.Expense{Description: description, Cost: cost, Budget: budget, Date: date, IsRecurring: recurring}
	if a.data.SaveExpense(ctx, a.session(), &e) {
		a.println("Saved. Budget:", e.Budget)
	}
	return nil
}

func (a *App) DeleteBudget(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Budget id", a.out)
	if err != nil {
		return err
	}
	if a.data.DeleteBudget(ctx, a.session(), id) {
		a.println("Deleted.")
	}
	return nil
}

func (a *App) DeleteExpense(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Expense id", a.out)
	if err != nil {
		return err
	}
	if a.data.DeleteExpense(ctx, a.session(), id) {
		a.println("Deleted.")
	}
	return nil
}

func (a *App) CopyMonth(ctx context.Context) error {
	from, err := GetSimpleText(a.reader, "Copy from month (YYYY-MM)", a.out)
	if err != nil {
		return err
	}
	if !monthx.ValidMonth(from) {
		a.println("Invalid month.")
		return nil
	}
	if a.data.CopyMonth(ctx, a.session(), from, a.month) {
		a.println("Copied", from, "into", a.month)
	}
	return nil
}

func (a *App) Export(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "Export file path", a.out)
	if err != nil {
		return err
	}
	bundle, err := a.data.ExportAll(ctx, a.session())
	if err != nil {
		a.println("Export failed:", err)
		return err
	}
	payload, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		a.println("Export failed:", err)
		return err
	}
	a.printf("Exported %d budgets, %d expenses.\n", len(bundle.Budgets), len(bundle.Expenses))
	return nil
}

func (a *App) Import(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "Import file path", a.out)
	if err != nil {
		return err
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		a.println("Import failed:", err)
		return err
	}
	var bundle data.Bundle
	if err := json.Unmarshal(payload, &bundle); err != nil {
		a.println("Import failed: invalid file")
		return err
	}
	replace, err := GetYesNo(a.reader, "Replace ALL existing data? This cannot be undone", a.out)
	if err != nil {
		return err
	}
	if a.data.Import(ctx, a.session(), replace, &bundle) {
		a.println("Imported.")
	}
	return nil
}

func (a *App) Backup(ctx context.Context) error {
	if a.backup == nil {
		a.println("Backup storage is not configured.")
		return nil
	}
	bundle, err := a.data.ExportAll(ctx, a.session())
	if err != nil {
		a.println("Backup failed:", err)
		return err
	}
	key, err := a.backup.Upload(ctx, a.session(), bundle)
	if err != nil {
		a.println("Backup failed:", err)
		return err
	}
	a.println("Snapshot stored as", key)
	return nil
}

func (a *App) Restore(ctx context.Context) error {
	if a.backup == nil {
		a.println("Backup storage is not configured.")
		return nil
	}
	key, err := GetSimpleText(a.reader, "Snapshot key", a.out)
	if err != nil {
		return err
	}
	bundle, err := a.backup.Download(ctx, a.session(), key)
	if err != nil {
		a.println("Restore failed:", err)
		return err
	}
	replace, err := GetYesNo(a.reader, "Replace ALL existing data? This cannot be undone", a.out)
	if err != nil {
		return err
	}
	if a.data.Import(ctx, a.session(), replace, bundle) {
		a.println("Restored.")
	}
	return nil
}

// twoPhase drives a sensitive operation through its verification-code
// round-trip: the first call issues the code, the second applies it.
func (a *App) twoPhase(ctx context.Context, run func(code string) (bool, error)) error {
	codeIssued, err := run("")
	if err != nil {
		a.println("Failed:", err)
		return err
	}
	if !codeIssued {
		return nil
	}
	code, err := GetSimpleText(a.reader, "A verification code was sent to your email. Enter it", a.out)
	if err != nil {
		return err
	}
	if _, err := run(code); err != nil {
		a.println("Failed:", err)
		return err
	}
	a.println("Done.")
	return nil
}

func (a *App) ChangeEmail(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "New email", a.out)
	if err != nil {
		return err
	}
	return a.twoPhase(ctx, func(code string) (bool, error) {
		return a.auth.ChangeEmail(ctx, email, code)
	})
}

func (a *App) ChangeCurrency(ctx context.Context) error {
	currency, err := GetSimpleText(a.reader, "Currency code (e.g. USD)", a.out)
	if err != nil {
		return err
	}
	return a.twoPhase(ctx, func(code string) (bool, error) {
		return a.auth.ChangeCurrency(ctx, currency, code)
	})
}

func (a *App) ChangePassword(ctx context.Context) error {
	password, err := GetPassword("New password", a.out)
	if err != nil {
		return err
	}
	confirm, err := GetPassword("Repeat new password", a.out)
	if err != nil {
		return err
	}
	if password != confirm {
		a.println("Passwords do not match.")
		return errAborted
	}
	return a.twoPhase(ctx, func(code string) (bool, error) {
		return a.auth.ChangePassword(ctx, password, code)
	})
}

func (a *App) DeleteAccount(ctx context.Context) error {
	ok, err := GetYesNo(a.reader, "Delete your account and ALL data? This cannot be undone", a.out)
	if err != nil || !ok {
		return err
	}
	return a.twoPhase(ctx, func(code string) (bool, error) {
		return a.auth.DeleteAccount(ctx, code)
	})
}

func (a *App) Wipe(ctx context.Context) error {
	ok, err := GetYesNo(a.reader, "Delete ALL budgets and expenses? This cannot be undone", a.out)
	if err != nil || !ok {
		return err
	}
	return a.twoPhase(ctx, func(code string) (bool, error) {
		return a.auth.WipeData(ctx, code)
	})
}
