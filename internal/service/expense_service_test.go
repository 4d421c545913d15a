package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

// setupGroup creates a group with the given roster and returns its code and
// a name -> participant ID map.
func setupGroup(t *testing.T, groups *GroupService, names ...string) (string, map[string]string) {
	t.Helper()
	ctx := context.Background()

	group, err := groups.CreateGroup(ctx, GroupInput{Name: "Test Group"})
	require.NoError(t, err)

	ids := make(map[string]string, len(names))
	for _, name := range names {
		p, err := groups.AddParticipant(ctx, group.Code, name)
		require.NoError(t, err)
		ids[name] = p.ID
	}
	return group.Code, ids
}

func TestAddExpense(t *testing.T) {
	groups, expenses, _ := setupServices(t)
	ctx := context.Background()
	code, ids := setupGroup(t, groups, "Anna", "Bruno", "Carla")

	t.Run("by name", func(t *testing.T) {
		expense, err := expenses.AddExpense(ctx, code, ExpenseInput{
			Description:  " Groceries ",
			Amount:       42.5,
			Payer:        "Anna",
			Participants: []string{"Anna", "Bruno"},
			Date:         "2024-06-01",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, expense.ID)
		assert.Equal(t, "Groceries", expense.Description)
		assert.Equal(t, ids["Anna"], expense.PayerID)
		assert.Equal(t, "Anna", expense.Payer)
		assert.Equal(t, []string{ids["Anna"], ids["Bruno"]}, expense.ParticipantIDs)
		assert.Equal(t, []string{"Anna", "Bruno"}, expense.Participants)
		assert.Equal(t, "2024-06-01", expense.Date)
	})

	t.Run("by ID", func(t *testing.T) {
		expense, err := expenses.AddExpense(ctx, code, ExpenseInput{
			Description:  "Taxi",
			Amount:       18,
			Payer:        ids["Carla"],
			Participants: []string{ids["Carla"], "Bruno"},
			Date:         "2024-06-02",
		})
		require.NoError(t, err)

		assert.Equal(t, "Carla", expense.Payer)
		assert.Equal(t, []string{"Carla", "Bruno"}, expense.Participants)
	})

	t.Run("date defaults to today", func(t *testing.T) {
		fixed := time.Date(2024, 7, 14, 18, 30, 0, 0, time.UTC)
		svc := NewExpenseService(expenses.store, nil)
		svc.now = func() time.Time { return fixed }

		expense, err := svc.AddExpense(ctx, code, ExpenseInput{
			Description: "Gelato", Amount: 6, Payer: "Anna", Participants: []string{"Anna"},
		})
		require.NoError(t, err)
		assert.Equal(t, "2024-07-14", expense.Date)
	})

	t.Run("does not mutate the caller's participants", func(t *testing.T) {
		participants := []string{" Anna ", "Bruno"}
		_, err := expenses.AddExpense(ctx, code, ExpenseInput{
			Description: "Pizza", Amount: 20, Payer: "Anna", Participants: participants,
		})
		require.NoError(t, err)
		assert.Equal(t, " Anna ", participants[0])
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := expenses.AddExpense(ctx, "SPESE-NOPE0000", ExpenseInput{
			Description: "x", Amount: 1, Payer: "Anna", Participants: []string{"Anna"},
		})

		var notFound *models.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestAddExpense_Validation(t *testing.T) {
	groups, expenses, _ := setupServices(t)
	ctx := context.Background()
	code, ids := setupGroup(t, groups, "Anna", "Bruno")

	valid := func() ExpenseInput {
		return ExpenseInput{
			Description:  "Dinner",
			Amount:       30,
			Payer:        "Anna",
			Participants: []string{"Anna", "Bruno"},
			Date:         "2024-06-01",
		}
	}

	tests := []struct {
		name    string
		mutate  func(in *ExpenseInput)
		wantMsg string
	}{
		{
			name:    "blank description",
			mutate:  func(in *ExpenseInput) { in.Description = "  " },
			wantMsg: "description is a required field",
		},
		{
			name:    "zero amount",
			mutate:  func(in *ExpenseInput) { in.Amount = 0 },
			wantMsg: "amount must be greater than 0",
		},
		{
			name:    "negative amount",
			mutate:  func(in *ExpenseInput) { in.Amount = -5 },
			wantMsg: "amount must be greater than 0",
		},
		{
			name:    "missing payer",
			mutate:  func(in *ExpenseInput) { in.Payer = "" },
			wantMsg: "payer is a required field",
		},
		{
			name:    "no participants",
			mutate:  func(in *ExpenseInput) { in.Participants = nil },
			wantMsg: "participants is a required field",
		},
		{
			name:    "duplicate participants",
			mutate:  func(in *ExpenseInput) { in.Participants = []string{"Anna", "Anna"} },
			wantMsg: "participants must contain unique values",
		},
		{
			name:    "same participant by name and ID",
			mutate:  func(in *ExpenseInput) { in.Participants = []string{"Anna", ids["Anna"]} },
			wantMsg: `participant "Anna" is listed more than once`,
		},
		{
			name:    "malformed date",
			mutate:  func(in *ExpenseInput) { in.Date = "01/06/2024" },
			wantMsg: "date does not match the 2006-01-02 format",
		},
		{
			name:    "payer outside the roster",
			mutate:  func(in *ExpenseInput) { in.Payer = "Zed" },
			wantMsg: `payer "Zed" is not a participant of the group`,
		},
		{
			name:    "share holder outside the roster",
			mutate:  func(in *ExpenseInput) { in.Participants = []string{"Anna", "Zed"} },
			wantMsg: `participant "Zed" is not a participant of the group`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)

			_, err := expenses.AddExpense(ctx, code, in)

			var validation *models.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Contains(t, validation.Message, tt.wantMsg)
		})
	}

	list, err := expenses.ListExpenses(ctx, code)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateExpense(t *testing.T) {
	groups, expenses, _ := setupServices(t)
	ctx := context.Background()
	code, _ := setupGroup(t, groups, "Anna", "Bruno", "Carla")

	original, err := expenses.AddExpense(ctx, code, ExpenseInput{
		Description: "Hotel", Amount: 300, Payer: "Anna", Participants: []string{"Anna", "Bruno", "Carla"}, Date: "2024-06-01",
	})
	require.NoError(t, err)

	updated, err := expenses.UpdateExpense(ctx, code, original.ID, ExpenseInput{
		Description: "Hotel (2 nights)", Amount: 320, Payer: "Bruno", Participants: []string{"Bruno", "Carla"}, Date: "2024-06-02",
	})
	require.NoError(t, err)
	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, original.CreatedAt, updated.CreatedAt)

	got, err := expenses.GetExpense(ctx, code, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hotel (2 nights)", got.Description)
	assert.Equal(t, 320.0, got.Amount)
	assert.Equal(t, "Bruno", got.Payer)
	assert.Equal(t, []string{"Bruno", "Carla"}, got.Participants)
	assert.Equal(t, "2024-06-02", got.Date)

	t.Run("unknown expense", func(t *testing.T) {
		_, err := expenses.UpdateExpense(ctx, code, "missing", ExpenseInput{
			Description: "x", Amount: 1, Payer: "Anna", Participants: []string{"Anna"},
		})

		var notFound *models.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("invalid replacement keeps the original", func(t *testing.T) {
		_, err := expenses.UpdateExpense(ctx, code, original.ID, ExpenseInput{
			Description: "x", Amount: -1, Payer: "Anna", Participants: []string{"Anna"},
		})

		var validation *models.ValidationError
		require.ErrorAs(t, err, &validation)

		got, err := expenses.GetExpense(ctx, code, original.ID)
		require.NoError(t, err)
		assert.Equal(t, 320.0, got.Amount)
	})
}

func TestListAndDeleteExpenses(t *testing.T) {
	groups, expenses, _ := setupServices(t)
	ctx := context.Background()
	code, _ := setupGroup(t, groups, "Anna", "Bruno")

	for _, date := range []string{"2024-03-01", "2024-05-01", "2024-04-01"} {
		_, err := expenses.AddExpense(ctx, code, ExpenseInput{
			Description: date, Amount: 10, Payer: "Anna", Participants: []string{"Anna", "Bruno"}, Date: date,
		})
		require.NoError(t, err)
	}

	list, err := expenses.ListExpenses(ctx, code)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2024-05-01", list[0].Date)
	assert.Equal(t, "2024-04-01", list[1].Date)
	assert.Equal(t, "2024-03-01", list[2].Date)

	require.NoError(t, expenses.DeleteExpense(ctx, code, list[0].ID))

	list, err = expenses.ListExpenses(ctx, code)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	err = expenses.DeleteExpense(ctx, code, "missing")
	var notFound *models.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestPayments(t *testing.T) {
	groups, expenses, _ := setupServices(t)
	ctx := context.Background()
	code, ids := setupGroup(t, groups, "Anna", "Bruno")

	payment, err := expenses.RecordPayment(ctx, code, PaymentInput{From: "Bruno", To: ids["Anna"], Amount: 12.5, Note: " cash "})
	require.NoError(t, err)
	assert.Equal(t, "Bruno", payment.From)
	assert.Equal(t, "Anna", payment.To)
	assert.Equal(t, "cash", payment.Note)

	list, err := expenses.ListPayments(ctx, code)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, payment.ID, list[0].ID)

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name    string
			in      PaymentInput
			wantMsg string
		}{
			{"self payment", PaymentInput{From: "Anna", To: ids["Anna"], Amount: 5}, "sender and receiver must differ"},
			{"zero amount", PaymentInput{From: "Anna", To: "Bruno", Amount: 0}, "amount must be greater than 0"},
			{"missing receiver", PaymentInput{From: "Anna", Amount: 5}, "to is a required field"},
			{"unknown sender", PaymentInput{From: "Zed", To: "Bruno", Amount: 5}, `from "Zed" is not a participant of the group`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := expenses.RecordPayment(ctx, code, tt.in)

				var validation *models.ValidationError
				require.ErrorAs(t, err, &validation)
				assert.Contains(t, validation.Message, tt.wantMsg)
			})
		}
	})

	require.NoError(t, expenses.DeletePayment(ctx, code, payment.ID))
	err = expenses.DeletePayment(ctx, code, payment.ID)
	var notFound *models.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
