package services

import (
	"context"
	"testing"

	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/monthx"
	"github.com/mpetrovs/spendvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveBudget_InsertAndUpdate(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	b := &models.Budget{UserID: "u1", Name: "ct-name", Month: "2024-03", Value: "ct-value"}
	saved, err := f.records.SaveBudget(ctx, b)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	saved.Value = "ct-value-2"
	_, err = f.records.SaveBudget(ctx, saved)
	require.NoError(t, err)

	list, err := f.records.ListBudgets(ctx, "u1", "2024-03")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ct-value-2", list[0].Value)
}

func TestSaveBudget_RoutingValidation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	tests := []*models.Budget{
		{UserID: "u1", Name: "", Month: "2024-03", Value: "v"},
		{UserID: "u1", Name: "n", Month: "2024-03", Value: ""},
		{UserID: "u1", Name: "n", Month: "March", Value: "v"},
	}
	for _, b := range tests {
		_, err := f.records.SaveBudget(ctx, b)
		assert.ErrorIs(t, err, common.ErrValidation)
	}
}

func TestListBudgets_MonthFiltering(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	for _, month := range []string{"2024-03", "2024-04"} {
		_, err := f.records.SaveBudget(ctx, &models.Budget{UserID: "u1", Name: "n", Month: month, Value: "v"})
		require.NoError(t, err)
	}

	list, err := f.records.ListBudgets(ctx, "u1", "2024-03")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = f.records.ListBudgets(ctx, "u1", monthx.All)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.records.ListBudgets(ctx, "u1", "bogus")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSaveExpense_AndListByMonth(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	e := &models.Expense{UserID: "u1", Description: "ct-d", Cost: "ct-c", Budget: "ct-b", Date: "2024-03-05"}
	saved, err := f.records.SaveExpense(ctx, e)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	_, err = f.records.SaveExpense(ctx, &models.Expense{UserID: "u1", Description: "d", Cost: "c", Budget: "b", Date: "2024-04-01"})
	require.NoError(t, err)

	list, err := f.records.ListExpenses(ctx, "u1", "2024-03")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.records.SaveExpense(ctx, &models.Expense{UserID: "u1", Description: "d", Cost: "c", Date: "03/05/2024"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestDeleteRecords_ScopedToOwner(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	b, err := f.records.SaveBudget(ctx, &models.Budget{UserID: "u1", Name: "n", Month: "2024-03", Value: "v"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.records.DeleteBudget(ctx, "intruder", b.ID), common.ErrNotFound)
	assert.NoError(t, f.records.DeleteBudget(ctx, "u1", b.ID))
}

func TestImport_AtomicBulkInsert(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	budgets := []*models.Budget{
		{Name: "n1", Month: "2024-03", Value: "v1"},
		{Name: "n2", Month: "2024-03", Value: "v2"},
	}
	expenses := []*models.Expense{
		{Description: "d1", Cost: "c1", Budget: "b1", Date: "2024-03-05"},
	}
	require.NoError(t, f.data.Import(ctx, "u1", budgets, expenses))

	list, err := f.records.ListBudgets(ctx, "u1", monthx.All)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, b := range list {
		assert.Equal(t, "u1", b.UserID)
		assert.NotEmpty(t, b.ID)
	}
}

func TestImport_RejectsBadRoutingFields(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	err := f.data.Import(ctx, "u1", []*models.Budget{{Name: "n", Month: "bogus", Value: "v"}}, nil)
	assert.ErrorIs(t, err, common.ErrValidation)

	err = f.data.Import(ctx, "u1", nil, []*models.Expense{{Description: "d", Cost: "c", Date: "bogus"}})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestWipe_TwoPhase(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.records.SaveBudget(ctx, &models.Budget{UserID: "u1", Name: "n", Month: "2024-03", Value: "v"})
	require.NoError(t, err)
	_, err = f.records.SaveExpense(ctx, &models.Expense{UserID: "u1", Description: "d", Cost: "c", Budget: "b", Date: "2024-03-05"})
	require.NoError(t, err)

	codeIssued, err := f.data.Wipe(ctx, "u1", "user@example.com", "")
	require.NoError(t, err)
	assert.True(t, codeIssued)

	// records survive the challenge phase
	list, err := f.records.ListBudgets(ctx, "u1", monthx.All)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	codeIssued, err = f.data.Wipe(ctx, "u1", "user@example.com", f.sender.last())
	require.NoError(t, err)
	assert.False(t, codeIssued)

	list, err = f.records.ListBudgets(ctx, "u1", monthx.All)
	require.NoError(t, err)
	assert.Empty(t, list)
	expenses, err := f.records.ListExpenses(ctx, "u1", monthx.All)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestWipe_WrongCode(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.data.Wipe(ctx, "u1", "user@example.com", "")
	require.NoError(t, err)

	_, err = f.data.Wipe(ctx, "u1", "user@example.com", "000000")
	assert.ErrorIs(t, err, common.ErrCodeInvalid)
}
