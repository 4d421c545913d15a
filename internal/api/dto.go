package api

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

type groupJSON struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"created_at"`
}

type groupDetailJSON struct {
	groupJSON
	Participants []string      `json:"participants"`
	Expenses     []expenseJSON `json:"expenses"`
}

type participantJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	JoinedAt int64  `json:"joined_at"`
}

type expenseJSON struct {
	ID             string             `json:"id"`
	Description    string             `json:"description"`
	Amount         float64            `json:"amount"`
	Payer          string             `json:"payer"`
	PayerID        string             `json:"payer_id"`
	Participants   []string           `json:"participants"`
	ParticipantIDs []string           `json:"participant_ids"`
	Shares         map[string]float64 `json:"shares"`
	Date           string             `json:"date"`
	CreatedAt      int64              `json:"created_at"`
}

type paymentJSON struct {
	ID        string  `json:"id"`
	From      string  `json:"from"`
	FromID    string  `json:"from_id"`
	To        string  `json:"to"`
	ToID      string  `json:"to_id"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note,omitempty"`
	CreatedAt int64   `json:"created_at"`
}

type settlementJSON struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type balancesJSON struct {
	Balances    map[string]float64 `json:"balances"`
	Settlements []settlementJSON   `json:"settlements"`
	TotalAmount float64            `json:"total_amount"`
}

type removalJSON struct {
	Message         string `json:"message"`
	DeletedExpenses int    `json:"deleted_expenses"`
	TrimmedExpenses int    `json:"trimmed_expenses"`
	DeletedPayments int    `json:"deleted_payments"`
}

type nameRequest struct {
	Name string `json:"name"`
}

func toGroupJSON(g *models.Group) groupJSON {
	return groupJSON{
		ID:          g.ID,
		Code:        g.Code,
		Name:        g.Name,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
	}
}

func toParticipantJSON(p *models.Participant) participantJSON {
	return participantJSON{ID: p.ID, Name: p.Name, JoinedAt: p.JoinedAt}
}

func toExpenseJSON(e *models.Expense) expenseJSON {
	shares := map[string]float64{}
	if split, err := calculator.EqualSplit(e.Amount, e.Participants); err == nil {
		for name, portion := range split {
			shares[name] = calculator.Round2(portion)
		}
	}

	return expenseJSON{
		ID:             e.ID,
		Description:    e.Description,
		Amount:         e.Amount,
		Payer:          e.Payer,
		PayerID:        e.PayerID,
		Participants:   nonNil(e.Participants),
		ParticipantIDs: nonNil(e.ParticipantIDs),
		Shares:         shares,
		Date:           e.Date,
		CreatedAt:      e.CreatedAt,
	}
}

func toExpensesJSON(expenses []*models.Expense) []expenseJSON {
	out := make([]expenseJSON, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseJSON(e)
	}
	return out
}

func toPaymentJSON(p *models.Payment) paymentJSON {
	return paymentJSON{
		ID:        p.ID,
		From:      p.From,
		FromID:    p.FromID,
		To:        p.To,
		ToID:      p.ToID,
		Amount:    p.Amount,
		Note:      p.Note,
		CreatedAt: p.CreatedAt,
	}
}

func toBalancesJSON(b *models.Balances) balancesJSON {
	settlements := make([]settlementJSON, len(b.Settlements))
	for i, s := range b.Settlements {
		settlements[i] = settlementJSON{From: s.From, To: s.To, Amount: s.Amount}
	}
	balances := b.Balances
	if balances == nil {
		balances = map[string]float64{}
	}
	return balancesJSON{Balances: balances, Settlements: settlements, TotalAmount: b.TotalAmount}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
