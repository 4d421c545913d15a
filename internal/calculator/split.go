package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Epsilon is the smallest balance treated as outstanding. Anything at or
// below it in magnitude counts as settled.
const Epsilon = 0.01

// EqualSplit computes each share holder's portion of an expense.
// The amount is divided evenly; portions are not rounded.
func EqualSplit(amount float64, shares []string) (map[string]float64, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}

	portion := amount / float64(len(shares))
	splits := make(map[string]float64, len(shares))
	for _, p := range shares {
		splits[p] += portion
	}
	return splits, nil
}

// Round2 rounds to cents, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
