package common

import (
	"fmt"
	"math"
	"strings"
)

// RoundCents rounds a monetary value to 2 decimal places.
// All ledger arithmetic that produces new amounts goes through this,
// so a reconciled batch replays to the exact same balances.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatBRL formats a monetary value in Brazilian convention: "R$ 1.234,56".
// Negative values keep the sign before the currency symbol.
func FormatBRL(v float64) string {
	neg := v < 0
	v = math.Abs(RoundCents(v))

	whole := int64(v)
	cents := int64(math.Round((v - float64(whole)) * 100))
	if cents == 100 { // rounding pushed the cents over
		whole++
		cents = 0
	}

	digits := fmt.Sprintf("%d", whole)
	var sb strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(d)
	}

	out := fmt.Sprintf("R$ %s,%02d", sb.String(), cents)
	if neg {
		return "-" + out
	}
	return out
}
