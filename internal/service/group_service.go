package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// GroupInput carries the fields of a new group.
type GroupInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type participantInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

// GroupService manages groups, their rosters and their balances.
type GroupService struct {
	store    storage.Store
	metrics  *metrics.Metrics
	codes    *codeGenerator
	validate *inputValidator
}

// NewGroupService creates a new GroupService with the given storage backend.
// An empty codePrefix falls back to DefaultCodePrefix; m may be nil.
func NewGroupService(store storage.Store, m *metrics.Metrics, codePrefix string) *GroupService {
	return &GroupService{
		store:    store,
		metrics:  m,
		codes:    newCodeGenerator(codePrefix),
		validate: newInputValidator(),
	}
}

// CreateGroup creates a new group under a freshly generated code.
func (s *GroupService) CreateGroup(ctx context.Context, in GroupInput) (*models.Group, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	slog.Info("CreateGroup request received", "name", in.Name)

	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	group := &models.Group{Name: in.Name, Description: in.Description}
	for attempt := 1; ; attempt++ {
		code, err := s.codes.next()
		if err != nil {
			slog.Error("CreateGroup failed", "error", err)
			return nil, err
		}
		group.Code = code

		err = s.store.CreateGroup(ctx, group)
		if err == nil {
			break
		}

		var conflict *models.ConflictError
		if errors.As(err, &conflict) && attempt < maxCodeRetries {
			slog.Warn("Group code collision, retrying", "code", code, "attempt", attempt)
			continue
		}
		slog.Error("CreateGroup failed", "error", err)
		return nil, err
	}

	s.metrics.GroupCreated()
	slog.Info("Group created", "group_id", group.ID, "code", group.Code)
	return group, nil
}

// GetGroup retrieves a group by code or ID.
func (s *GroupService) GetGroup(ctx context.Context, ref string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, ref)
	if err != nil {
		slog.Error("GetGroup failed", "group", ref, "error", err)
		return nil, err
	}
	return group, nil
}

// GetGroupDetail retrieves a group together with its roster and expenses.
func (s *GroupService) GetGroupDetail(ctx context.Context, ref string) (*models.GroupDetail, error) {
	slog.Info("GetGroupDetail request received", "group", ref)

	group, err := s.GetGroup(ctx, ref)
	if err != nil {
		return nil, err
	}

	participants, err := s.store.ListParticipants(ctx, group.ID)
	if err != nil {
		slog.Error("GetGroupDetail failed - could not list participants", "group_id", group.ID, "error", err)
		return nil, err
	}

	expenses, err := s.store.ListExpenses(ctx, group.ID)
	if err != nil {
		slog.Error("GetGroupDetail failed - could not list expenses", "group_id", group.ID, "error", err)
		return nil, err
	}

	return &models.GroupDetail{Group: group, Participants: participants, Expenses: expenses}, nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, err
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return groups, nil
}

// DeleteGroup removes a group and everything recorded in it.
func (s *GroupService) DeleteGroup(ctx context.Context, ref string) error {
	slog.Info("DeleteGroup request received", "group", ref)

	group, err := s.GetGroup(ctx, ref)
	if err != nil {
		return err
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", group.ID, "error", err)
		return err
	}

	slog.Info("Group deleted", "group_id", group.ID, "code", group.Code)
	return nil
}

// AddParticipant adds a named member to a group's roster.
func (s *GroupService) AddParticipant(ctx context.Context, ref, name string) (*models.Participant, error) {
	in := participantInput{Name: strings.TrimSpace(name)}
	slog.Info("AddParticipant request received", "group", ref, "name", in.Name)

	group, err := s.GetGroup(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	participant := &models.Participant{GroupID: group.ID, Name: in.Name}
	if err := s.store.AddParticipant(ctx, participant); err != nil {
		slog.Error("AddParticipant failed", "group_id", group.ID, "error", err)
		return nil, err
	}

	slog.Info("Participant added", "group_id", group.ID, "participant_id", participant.ID)
	return participant, nil
}

// ListParticipants retrieves a group's roster ordered by name.
func (s *GroupService) ListParticipants(ctx context.Context, ref string) ([]*models.Participant, error) {
	group, err := s.GetGroup(ctx, ref)
	if err != nil {
		return nil, err
	}

	participants, err := s.store.ListParticipants(ctx, group.ID)
	if err != nil {
		slog.Error("ListParticipants failed", "group_id", group.ID, "error", err)
		return nil, err
	}
	return participants, nil
}

// RenameParticipant changes the name of a participant identified by ID or name.
func (s *GroupService) RenameParticipant(ctx context.Context, ref, participantRef, newName string) (*models.Participant, error) {
	in := participantInput{Name: strings.TrimSpace(newName)}
	slog.Info("RenameParticipant request received", "group", ref, "participant", participantRef, "name", in.Name)

	group, err := s.GetGroup(ctx, ref)
	if err != nil {
		return nil, err
	}
	participant, err := s.store.GetParticipant(ctx, group.ID, participantRef)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	if err := s.store.RenameParticipant(ctx, group.ID, participant.ID, in.Name); err != nil {
		slog.Error("RenameParticipant failed", "participant_id", participant.ID, "error", err)
		return nil, err
	}

	slog.Info("Participant renamed", "participant_id", participant.ID, "from", participant.Name, "to", in.Name)
	participant.Name = in.Name
	return participant, nil
}

// RemoveParticipant drops a participant from the roster along with the
// expenses they paid and the payments they took part in.
func (s *GroupService) RemoveParticipant(ctx context.Context, ref, participantRef string) (*models.RemovalSummary, error) {
	slog.Info("RemoveParticipant request received", "group", ref, "participant", participantRef)

	group, err := s.GetGroup(ctx, ref)
	if err != nil {
		return nil, err
	}
	participant, err := s.store.GetParticipant(ctx, group.ID, participantRef)
	if err != nil {
		return nil, err
	}

	summary, err := s.store.RemoveParticipant(ctx, group.ID, participant.ID)
	if err != nil {
		slog.Error("RemoveParticipant failed", "participant_id", participant.ID, "error", err)
		return nil, err
	}

	slog.Info("Participant removed",
		"participant_id", participant.ID,
		"deleted_expenses", summary.DeletedExpenses,
		"trimmed_expenses", summary.TrimmedExpenses,
		"deleted_payments", summary.DeletedPayments,
	)
	return summary, nil
}

// GetBalances calculates net balances and suggested settlements for a group.
func (s *GroupService) GetBalances(ctx context.Context, ref string) (*models.Balances, error) {
	slog.Info("GetBalances request received", "group", ref)

	group, err := s.GetGroup(ctx, ref)
	if err != nil {
		return nil, err
	}

	participants, err := s.store.ListParticipants(ctx, group.ID)
	if err != nil {
		slog.Error("GetBalances failed - could not list participants", "group_id", group.ID, "error", err)
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, group.ID)
	if err != nil {
		slog.Error("GetBalances failed - could not list expenses", "group_id", group.ID, "error", err)
		return nil, err
	}
	payments, err := s.store.ListPayments(ctx, group.ID)
	if err != nil {
		slog.Error("GetBalances failed - could not list payments", "group_id", group.ID, "error", err)
		return nil, err
	}

	// Convert to calculator format
	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.Name
	}
	calcExpenses := make([]calculator.Expense, len(expenses))
	for i, e := range expenses {
		calcExpenses[i] = calculator.Expense{Amount: e.Amount, Payer: e.Payer, Shares: e.Participants}
	}
	calcPayments := make([]calculator.Transfer, len(payments))
	for i, p := range payments {
		calcPayments[i] = calculator.Transfer{From: p.From, To: p.To, Amount: p.Amount}
	}

	result := calculator.CalculateGroupBalances(names, calcExpenses, calcPayments)

	settlements := make([]models.Settlement, len(result.Settlements))
	for i, t := range result.Settlements {
		settlements[i] = models.Settlement{From: t.From, To: t.To, Amount: t.Amount}
	}
	s.metrics.SettlementComputed(len(settlements))

	slog.Info("GetBalances successful",
		"group_id", group.ID,
		"participants", len(names),
		"expenses", len(expenses),
		"settlements", len(settlements),
	)

	return &models.Balances{
		Balances:    result.Balances,
		Settlements: settlements,
		TotalAmount: result.Total,
	}, nil
}
