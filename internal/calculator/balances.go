package calculator

import (
	"cmp"
	"slices"
)

// Expense represents an expense with the minimal information needed for balance calculations.
type Expense struct {
	Amount float64
	Payer  string
	Shares []string
}

// Transfer represents money moving from one person to another.
// It is used both for recorded payments and for suggested settlements.
type Transfer struct {
	From   string // Person who pays
	To     string // Person who receives
	Amount float64
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	Name       string
	NetBalance float64 // Positive = owed money, Negative = owes money
	TotalPaid  float64 // Expenses paid plus payments sent
	TotalOwed  float64 // Expense shares plus payments received
}

// Result is the outcome of CalculateGroupBalances.
type Result struct {
	// Balances maps each roster member to their net balance, rounded to cents.
	Balances map[string]float64

	// Members holds unrounded per-member figures in roster order.
	Members []MemberBalance

	// Settlements is the greedy transfer list with amounts rounded to cents.
	Settlements []Transfer

	// Total is the sum of all expense amounts, rounded to cents.
	Total float64
}

// CalculateGroupBalances computes net balances and suggested settlements for a group.
//
// Algorithm:
//   - For each expense: payer contributed +amount, each share holder owes amount/len(shares)
//   - For each payment: sender's balance improves, receiver's balance decreases
//   - Names outside participants are skipped; their portion is not redistributed
//   - Settlements: greedy matching of largest debts with largest credits
//
// Accumulation is unrounded. Only reported values are rounded.
func CalculateGroupBalances(participants []string, expenses []Expense, payments []Transfer) Result {
	members := make(map[string]*MemberBalance, len(participants))
	order := make([]string, 0, len(participants))
	for _, name := range participants {
		if _, exists := members[name]; exists {
			continue
		}
		members[name] = &MemberBalance{Name: name}
		order = append(order, name)
	}

	// An empty roster reports nothing, not even the expense total.
	if len(order) == 0 {
		return Result{
			Balances:    map[string]float64{},
			Members:     []MemberBalance{},
			Settlements: []Transfer{},
		}
	}

	var total float64
	for _, e := range expenses {
		total += e.Amount

		if payer, ok := members[e.Payer]; ok {
			payer.TotalPaid += e.Amount
		}

		// Unvalidated expense with no share holders: nothing to divide.
		if len(e.Shares) == 0 {
			continue
		}
		share := e.Amount / float64(len(e.Shares))
		for _, name := range e.Shares {
			if m, ok := members[name]; ok {
				m.TotalOwed += share
			}
		}
	}

	for _, p := range payments {
		if from, ok := members[p.From]; ok {
			from.TotalPaid += p.Amount
		}
		if to, ok := members[p.To]; ok {
			to.TotalOwed += p.Amount
		}
	}

	net := make(map[string]float64, len(order))
	result := Result{
		Balances:    make(map[string]float64, len(order)),
		Members:     make([]MemberBalance, 0, len(order)),
		Settlements: []Transfer{},
		Total:       Round2(total),
	}
	for _, name := range order {
		m := members[name]
		m.NetBalance = m.TotalPaid - m.TotalOwed
		net[name] = m.NetBalance
		result.Balances[name] = Round2(m.NetBalance)
		result.Members = append(result.Members, *m)
	}

	result.Settlements = Settle(net)
	return result
}

// party is one side of the greedy matching with its remaining magnitude.
type party struct {
	name      string
	remaining float64
}

// Settle computes the transfers that zero out the given net balances.
//
// Creditors (balance > Epsilon) and debtors (balance < -Epsilon) are each
// sorted by magnitude, largest first, ties broken by name. The largest debtor
// pays the largest creditor min(debt, credit); whichever side drops to
// Epsilon or below is done. Residue below Epsilon is ignored.
func Settle(balances map[string]float64) []Transfer {
	var creditors, debtors []party
	for name, bal := range balances {
		if bal > Epsilon {
			creditors = append(creditors, party{name: name, remaining: bal})
		} else if bal < -Epsilon {
			debtors = append(debtors, party{name: name, remaining: -bal})
		}
	}
	slices.SortFunc(creditors, byLargest)
	slices.SortFunc(debtors, byLargest)

	transfers := []Transfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := min(debtor.remaining, creditor.remaining)
		if amount > Epsilon {
			transfers = append(transfers, Transfer{
				From:   debtor.name,
				To:     creditor.name,
				Amount: Round2(amount),
			})
		}

		debtor.remaining -= amount
		creditor.remaining -= amount

		if debtor.remaining <= Epsilon {
			i++
		}
		if creditor.remaining <= Epsilon {
			j++
		}
	}

	return transfers
}

func byLargest(a, b party) int {
	if c := cmp.Compare(b.remaining, a.remaining); c != 0 {
		return c
	}
	return cmp.Compare(a.name, b.name)
}
