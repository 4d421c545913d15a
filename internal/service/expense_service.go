package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// ExpenseInput carries the fields of a new or replacement expense. Payer and
// Participants name group members by name or ID.
type ExpenseInput struct {
	Description  string   `json:"description" validate:"required,max=255"`
	Amount       float64  `json:"amount" validate:"gt=0"`
	Payer        string   `json:"payer" validate:"required"`
	Participants []string `json:"participants" validate:"required,min=1,unique,dive,required"`
	Date         string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// PaymentInput carries a transfer between two group members.
type PaymentInput struct {
	From   string  `json:"from" validate:"required"`
	To     string  `json:"to" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
	Note   string  `json:"note" validate:"max=255"`
}

// ExpenseService records expenses and payments within a group.
type ExpenseService struct {
	store    storage.Store
	metrics  *metrics.Metrics
	validate *inputValidator
	now      func() time.Time
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store, m *metrics.Metrics) *ExpenseService {
	return &ExpenseService{
		store:    store,
		metrics:  m,
		validate: newInputValidator(),
		now:      time.Now,
	}
}

// roster indexes a group's participants by ID and by name.
type roster struct {
	byID   map[string]*models.Participant
	byName map[string]*models.Participant
}

func (s *ExpenseService) loadRoster(ctx context.Context, groupID string) (*roster, error) {
	participants, err := s.store.ListParticipants(ctx, groupID)
	if err != nil {
		return nil, err
	}

	r := &roster{
		byID:   make(map[string]*models.Participant, len(participants)),
		byName: make(map[string]*models.Participant, len(participants)),
	}
	for _, p := range participants {
		r.byID[p.ID] = p
		r.byName[p.Name] = p
	}
	return r, nil
}

// lookup resolves ref as an ID first, then as a name.
func (r *roster) lookup(role, ref string) (*models.Participant, error) {
	if p, ok := r.byID[ref]; ok {
		return p, nil
	}
	if p, ok := r.byName[ref]; ok {
		return p, nil
	}
	return nil, models.ErrValidation("%s %q is not a participant of the group", role, ref)
}

func (s *ExpenseService) groupFor(ctx context.Context, ref string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, ref)
	if err != nil {
		slog.Error("Group lookup failed", "group", ref, "error", err)
		return nil, err
	}
	return group, nil
}

// buildExpense validates in against the group's roster.
func (s *ExpenseService) buildExpense(ctx context.Context, group *models.Group, in ExpenseInput) (*models.Expense, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.Payer = strings.TrimSpace(in.Payer)
	in.Participants = slices.Clone(in.Participants)
	for i := range in.Participants {
		in.Participants[i] = strings.TrimSpace(in.Participants[i])
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	members, err := s.loadRoster(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	payer, err := members.lookup("payer", in.Payer)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:        group.ID,
		Description:    in.Description,
		Amount:         in.Amount,
		PayerID:        payer.ID,
		Payer:          payer.Name,
		ParticipantIDs: make([]string, 0, len(in.Participants)),
		Participants:   make([]string, 0, len(in.Participants)),
		Date:           in.Date,
	}
	seen := make(map[string]bool, len(in.Participants))
	for _, ref := range in.Participants {
		p, err := members.lookup("participant", ref)
		if err != nil {
			return nil, err
		}
		if seen[p.ID] {
			return nil, models.ErrValidation("participant %q is listed more than once", p.Name)
		}
		seen[p.ID] = true
		expense.ParticipantIDs = append(expense.ParticipantIDs, p.ID)
		expense.Participants = append(expense.Participants, p.Name)
	}

	if expense.Date == "" {
		expense.Date = s.now().Format(models.DateLayout)
	}
	return expense, nil
}

// AddExpense records a new expense in a group.
func (s *ExpenseService) AddExpense(ctx context.Context, ref string, in ExpenseInput) (*models.Expense, error) {
	slog.Info("AddExpense request received",
		"group", ref,
		"amount", in.Amount,
		"participants_count", len(in.Participants),
	)

	group, err := s.groupFor(ctx, ref)
	if err != nil {
		return nil, err
	}

	expense, err := s.buildExpense(ctx, group, in)
	if err != nil {
		slog.Warn("AddExpense rejected", "group_id", group.ID, "error", err)
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddExpense failed", "group_id", group.ID, "error", err)
		return nil, err
	}

	s.metrics.ExpenseRecorded()
	slog.Info("Expense recorded", "group_id", group.ID, "expense_id", expense.ID)
	return expense, nil
}

// GetExpense retrieves one expense of a group.
func (s *ExpenseService) GetExpense(ctx context.Context, ref, expenseID string) (*models.Expense, error) {
	group, err := s.groupFor(ctx, ref)
	if err != nil {
		return nil, err
	}

	expense, err := s.store.GetExpense(ctx, group.ID, expenseID)
	if err != nil {
		slog.Error("GetExpense failed", "expense_id", expenseID, "error", err)
		return nil, err
	}
	return expense, nil
}

// ListExpenses retrieves a group's expenses, most recent first.
func (s *ExpenseService) ListExpenses(ctx context.Context, ref string) ([]*models.Expense, error) {
	group, err := s.groupFor(ctx, ref)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpenses(ctx, group.ID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", group.ID, "error", err)
		return nil, err
	}

	slog.Info("ListExpenses successful", "group_id", group.ID, "count", len(expenses))
	return expenses, nil
}

// UpdateExpense replaces an expense with in, applying the same rules as AddExpense.
func (s *ExpenseService) UpdateExpense(ctx context.Context, ref, expenseID string, in ExpenseInput) (*models.Expense, error) {
	slog.Info("UpdateExpense request received", "group", ref, "expense_id", expenseID)

	group, err := s.groupFor(ctx, ref)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetExpense(ctx, group.ID, expenseID)
	if err != nil {
		return nil, err
	}

	expense, err := s.buildExpense(ctx, group, in)
	if err != nil {
		slog.Warn("UpdateExpense rejected", "expense_id", expenseID, "error", err)
		return nil, err
	}
	expense.ID = existing.ID
	expense.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expenseID, "error", err)
		return nil, err
	}

	slog.Info("Expense updated", "expense_id", expense.ID)
	return expense, nil
}

// DeleteExpense removes an expense from a group.
func (s *ExpenseService) DeleteExpense(ctx context.Context, ref, expenseID string) error {
	slog.Info("DeleteExpense request received", "group", ref, "expense_id", expenseID)

	group, err := s.groupFor(ctx, ref)
	if err != nil {
		return err
	}

	if err := s.store.DeleteExpense(ctx, group.ID, expenseID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expenseID, "error", err)
		return err
	}

	slog.Info("Expense deleted", "expense_id", expenseID)
	return nil
}

// RecordPayment records money handed from one member to another.
func (s *ExpenseService) RecordPayment(ctx context.Context, ref string, in PaymentInput) (*models.Payment, error) {
	in.From = strings.TrimSpace(in.From)
	in.To = strings.TrimSpace(in.To)
	in.Note = strings.TrimSpace(in.Note)
	slog.Info("RecordPayment request received", "group", ref, "amount", in.Amount)

	group, err := s.groupFor(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	members, err := s.loadRoster(ctx, group.ID)
	if err != nil {
		slog.Error("RecordPayment failed - could not list participants", "group_id", group.ID, "error", err)
		return nil, err
	}
	from, err := members.lookup("from", in.From)
	if err != nil {
		return nil, err
	}
	to, err := members.lookup("to", in.To)
	if err != nil {
		return nil, err
	}
	if from.ID == to.ID {
		return nil, models.ErrValidation("payment sender and receiver must differ")
	}

	payment := &models.Payment{
		GroupID: group.ID,
		FromID:  from.ID,
		From:    from.Name,
		ToID:    to.ID,
		To:      to.Name,
		Amount:  in.Amount,
		Note:    in.Note,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		slog.Error("RecordPayment failed", "group_id", group.ID, "error", err)
		return nil, err
	}

	s.metrics.PaymentRecorded()
	slog.Info("Payment recorded", "group_id", group.ID, "payment_id", payment.ID)
	return payment, nil
}

// ListPayments retrieves a group's recorded payments, newest first.
func (s *ExpenseService) ListPayments(ctx context.Context, ref string) ([]*models.Payment, error) {
	group, err := s.groupFor(ctx, ref)
	if err != nil {
		return nil, err
	}

	payments, err := s.store.ListPayments(ctx, group.ID)
	if err != nil {
		slog.Error("ListPayments failed", "group_id", group.ID, "error", err)
		return nil, err
	}
	return payments, nil
}

// DeletePayment removes a recorded payment.
func (s *ExpenseService) DeletePayment(ctx context.Context, ref, paymentID string) error {
	slog.Info("DeletePayment request received", "group", ref, "payment_id", paymentID)

	group, err := s.groupFor(ctx, ref)
	if err != nil {
		return err
	}

	if err := s.store.DeletePayment(ctx, group.ID, paymentID); err != nil {
		slog.Error("DeletePayment failed", "payment_id", paymentID, "error", err)
		return err
	}

	slog.Info("Payment deleted", "payment_id", paymentID)
	return nil
}
