package calculator

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateGroupBalances(t *testing.T) {
	tests := []struct {
		name            string
		participants    []string
		expenses        []Expense
		payments        []Transfer
		wantBalances    map[string]float64
		wantSettlements []Transfer
		wantTotal       float64
	}{
		{
			name:         "one payer three-way split",
			participants: []string{"A", "B", "C"},
			expenses: []Expense{
				{Amount: 90, Payer: "A", Shares: []string{"A", "B", "C"}},
			},
			wantBalances: map[string]float64{"A": 60, "B": -30, "C": -30},
			wantSettlements: []Transfer{
				{From: "B", To: "A", Amount: 30},
				{From: "C", To: "A", Amount: 30},
			},
			wantTotal: 90,
		},
		{
			name:         "two expenses net out",
			participants: []string{"A", "B"},
			expenses: []Expense{
				{Amount: 100, Payer: "A", Shares: []string{"A", "B"}},
				{Amount: 50, Payer: "B", Shares: []string{"A", "B"}},
			},
			wantBalances: map[string]float64{"A": 25, "B": -25},
			wantSettlements: []Transfer{
				{From: "B", To: "A", Amount: 25},
			},
			wantTotal: 150,
		},
		{
			name:            "empty group",
			participants:    nil,
			wantBalances:    map[string]float64{},
			wantSettlements: []Transfer{},
			wantTotal:       0,
		},
		{
			name:         "empty roster reports a zero total",
			participants: nil,
			expenses: []Expense{
				{Amount: 90, Payer: "A", Shares: []string{"A", "B"}},
			},
			payments:        []Transfer{{From: "A", To: "B", Amount: 10}},
			wantBalances:    map[string]float64{},
			wantSettlements: []Transfer{},
			wantTotal:       0,
		},
		{
			name:         "roster without expenses is all zero",
			participants: []string{"A", "B"},
			wantBalances: map[string]float64{"A": 0, "B": 0},
			wantSettlements: []Transfer{},
		},
		{
			name:         "balance exactly at epsilon is settled",
			participants: []string{"A", "B"},
			expenses: []Expense{
				{Amount: 0.02, Payer: "A", Shares: []string{"A", "B"}},
			},
			wantBalances:    map[string]float64{"A": 0.01, "B": -0.01},
			wantSettlements: []Transfer{},
			wantTotal:       0.02,
		},
		{
			name:         "names off the roster are skipped",
			participants: []string{"A", "B"},
			expenses: []Expense{
				// Ghost pays; A and B still owe their thirds.
				{Amount: 30, Payer: "Ghost", Shares: []string{"A", "B", "Ghost"}},
				// A pays; Ghost's third is simply not booked.
				{Amount: 30, Payer: "A", Shares: []string{"A", "Ghost", "B"}},
			},
			wantBalances: map[string]float64{"A": 10, "B": -20},
			wantSettlements: []Transfer{
				{From: "B", To: "A", Amount: 10},
			},
			wantTotal: 60,
		},
		{
			name:         "recorded payment reduces debt",
			participants: []string{"A", "B", "C"},
			expenses: []Expense{
				{Amount: 90, Payer: "A", Shares: []string{"A", "B", "C"}},
			},
			payments: []Transfer{
				{From: "B", To: "A", Amount: 30},
			},
			wantBalances: map[string]float64{"A": 30, "B": 0, "C": -30},
			wantSettlements: []Transfer{
				{From: "C", To: "A", Amount: 30},
			},
			wantTotal: 90,
		},
		{
			name:         "equal magnitudes break ties by name",
			participants: []string{"Zoe", "Yan", "Bea", "Abe"},
			expenses: []Expense{
				{Amount: 20, Payer: "Zoe", Shares: []string{"Bea", "Abe"}},
				{Amount: 20, Payer: "Yan", Shares: []string{"Bea", "Abe"}},
			},
			wantBalances: map[string]float64{"Zoe": 20, "Yan": 20, "Bea": -20, "Abe": -20},
			wantSettlements: []Transfer{
				{From: "Abe", To: "Yan", Amount: 20},
				{From: "Bea", To: "Zoe", Amount: 20},
			},
			wantTotal: 40,
		},
		{
			name:         "thirds round for display only",
			participants: []string{"A", "B", "C"},
			expenses: []Expense{
				{Amount: 10, Payer: "A", Shares: []string{"A", "B", "C"}},
			},
			wantBalances: map[string]float64{"A": 6.67, "B": -3.33, "C": -3.33},
			wantSettlements: []Transfer{
				{From: "B", To: "A", Amount: 3.33},
				{From: "C", To: "A", Amount: 3.33},
			},
			wantTotal: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateGroupBalances(tt.participants, tt.expenses, tt.payments)
			assert.Equal(t, tt.wantBalances, got.Balances)
			assert.Equal(t, tt.wantSettlements, got.Settlements)
			assert.Equal(t, tt.wantTotal, got.Total)
		})
	}
}

func TestCalculateGroupBalances_MemberTotals(t *testing.T) {
	got := CalculateGroupBalances(
		[]string{"A", "B"},
		[]Expense{{Amount: 100, Payer: "A", Shares: []string{"A", "B"}}},
		[]Transfer{{From: "B", To: "A", Amount: 20}},
	)

	require.Len(t, got.Members, 2)
	assert.Equal(t, MemberBalance{Name: "A", NetBalance: 30, TotalPaid: 100, TotalOwed: 70}, got.Members[0])
	assert.Equal(t, MemberBalance{Name: "B", NetBalance: -30, TotalPaid: 20, TotalOwed: 50}, got.Members[1])
}

func TestCalculateGroupBalances_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank"}

	for round := range 50 {
		t.Run(fmt.Sprintf("round %d", round), func(t *testing.T) {
			var expenses []Expense
			for range 1 + rng.Intn(30) {
				perm := rng.Perm(len(names))
				shares := make([]string, 1+rng.Intn(len(names)))
				for k := range shares {
					shares[k] = names[perm[k]]
				}
				expenses = append(expenses, Expense{
					Amount: float64(1+rng.Intn(50000)) / 100,
					Payer:  names[rng.Intn(len(names))],
					Shares: shares,
				})
			}

			got := CalculateGroupBalances(names, expenses, nil)

			// Every amount is fully allocated, so the unrounded nets cancel out.
			var netSum, positive float64
			for _, m := range got.Members {
				netSum += m.NetBalance
				if m.NetBalance > 0 {
					positive += m.NetBalance
				}
			}
			assert.InDelta(t, 0, netSum, Epsilon)

			var settled float64
			for _, s := range got.Settlements {
				assert.Greater(t, s.Amount, Epsilon)
				assert.NotEqual(t, s.From, s.To)
				settled += s.Amount
			}
			// Transfers are rounded to cents and sub-epsilon balances never
			// move, so allow a cent per transfer and per member.
			slack := Epsilon * float64(len(got.Settlements)+len(names)+1)
			assert.InDelta(t, positive, settled, slack)

			again := CalculateGroupBalances(names, expenses, nil)
			assert.Equal(t, got, again)
		})
	}
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name     string
		balances map[string]float64
		want     []Transfer
	}{
		{
			name:     "nothing to settle",
			balances: map[string]float64{},
			want:     []Transfer{},
		},
		{
			name:     "epsilon residue ignored",
			balances: map[string]float64{"A": 0.01, "B": -0.005, "C": -0.005},
			want:     []Transfer{},
		},
		{
			name:     "largest debtor pays largest creditor first",
			balances: map[string]float64{"A": 70, "B": 30, "C": -80, "D": -20},
			want: []Transfer{
				{From: "C", To: "A", Amount: 70},
				{From: "C", To: "B", Amount: 10},
				{From: "D", To: "B", Amount: 20},
			},
		},
		{
			name:     "both cursors advance on exact match",
			balances: map[string]float64{"A": 50, "B": 25, "C": -50, "D": -25},
			want: []Transfer{
				{From: "C", To: "A", Amount: 50},
				{From: "D", To: "B", Amount: 25},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Settle(tt.balances))
		})
	}
}
