package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/server/models"
)

func (s *Server) listBudgets(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	userID := c.QueryParam("user_id")
	if !s.authorized(c, sessionID, userID) {
		return nil
	}

	rows, err := s.records.ListBudgets(c.Request().Context(), userID, c.QueryParam("month"))
	if err != nil {
		return writeError(c, err)
	}

	out := make([]budgetDTO, 0, len(rows))
	for _, b := range rows {
		out = append(out, toBudgetDTO(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"budgets": out})
}

type budgetRequest struct {
	authedRequest
	Budget budgetDTO `json:"budget"`
}

func (s *Server) createBudget(c echo.Context) error {
	return s.saveBudget(c, true)
}

func (s *Server) updateBudget(c echo.Context) error {
	return s.saveBudget(c, false)
}

func (s *Server) saveBudget(c echo.Context, create bool) error {
	var req budgetRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ErrValidation)
	}
	if !s.authorized(c, req.SessionID, req.UserID) {
		return nil
	}

	b := req.Budget.toModel(req.UserID)
	if create {
		b.ID = ""
	} else if b.ID == "" {
		return writeError(c, common.ErrValidation)
	}

	saved, err := s.records.SaveBudget(c.Request().Context(), b)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "budget": toBudgetDTO(saved)})
}

type deleteRecordRequest struct {
	authedRequest
	ID string `json:"id"`
}

func (s *Server) deleteBudget(c echo.Context) error {
	var req deleteRecordRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ErrValidation)
	}
	if !s.authorized(c, req.SessionID, req.UserID) {
		return nil
	}

	if err := s.records.DeleteBudget(c.Request().Context(), req.UserID, req.ID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (s *Server) listExpenses(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	userID := c.QueryParam("user_id")
	if !s.authorized(c, sessionID, userID) {
		return nil
	}

	rows, err := s.records.ListExpenses(c.Request().Context(), userID, c.QueryParam("month"))
	if err != nil {
		return writeError(c, err)
	}

	out := make([]expenseDTO, 0, len(rows))
	for _, e := range rows {
		out = append(out, toExpenseDTO(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"expenses": out})
}

type expenseRequest struct {
	authedRequest
	Expense expenseDTO `json:"expense"`
}

func (s *Server) createExpense(c echo.Context) error {
	return s.saveExpense(c, true)
}

func (s *Server) updateExpense(c echo.Context) error {
	return s.saveExpense(c, false)
}

func (s *Server) saveExpense(c echo.Context, create bool) error {
	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ErrValidation)
	}
	if !s.authorized(c, req.SessionID, req.UserID) {
		return nil
	}

	e := req.Expense.toModel(req.UserID)
	if create {
		e.ID = ""
	} else if e.ID == "" {
		return writeError(c, common.ErrValidation)
	}

	saved, err := s.records.SaveExpense(c.Request().Context(), e)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "expense": toExpenseDTO(saved)})
}

func (s *Server) deleteExpense(c echo.Context) error {
	var req deleteRecordRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ErrValidation)
	}
	if !s.authorized(c, req.SessionID, req.UserID) {
		return nil
	}

	if err := s.records.DeleteExpense(c.Request().Context(), req.UserID, req.ID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

type importRequest struct {
	authedRequest
	Budgets  []budgetDTO  `json:"budgets"`
	Expenses []expenseDTO `json:"expenses"`
}

func (s *Server) importData(c echo.Context) error {
	var req importRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ErrValidation)
	}
	if !s.authorized(c, req.SessionID, req.UserID) {
		return nil
	}

	budgets := make([]*models.Budget, 0, len(req.Budgets))
	for _, d := range req.Budgets {
		budgets = append(budgets, d.toModel(req.UserID))
	}
	expenses := make([]*models.Expense, 0, len(req.Expenses))
	for _, d := range req.Expenses {
		expenses = append(expenses, d.toModel(req.UserID))
	}

	if err := s.data.Import(c.Request().Context(), req.UserID, budgets, expenses); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

type wipeRequest struct {
	authedRequest
	Code string `json:"code"`
}

func (s *Server) wipeData(c echo.Context) error {
	var req wipeRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ErrValidation)
	}
	if !s.authorized(c, req.SessionID, req.UserID) {
		return nil
	}

	// wipe needs the account email for code delivery
	user, err := s.sessions.UserByID(c.Request().Context(), req.UserID)
	if err != nil {
		return writeError(c, err)
	}

	codeIssued, err := s.data.Wipe(c.Request().Context(), req.UserID, user.Email, req.Code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": !codeIssued, "code_issued": codeIssued})
}
