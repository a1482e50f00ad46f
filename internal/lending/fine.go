package lending

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	DefaultFineRate = decimal.RequireFromString("0.50")
	DefaultFineCap  = decimal.RequireFromString("50.00")
)

// ComputeFine charges ratePerSecond for every whole second between dueAt and
// returnedAt, capped at maxFine and rounded to cents. Callers only invoke it
// when returnedAt is after dueAt.
func ComputeFine(dueAt, returnedAt time.Time, ratePerSecond, maxFine decimal.Decimal) decimal.Decimal {
	fine := ratePerSecond.Mul(decimal.NewFromInt(lateSeconds(dueAt, returnedAt)))
	if fine.GreaterThan(maxFine) {
		fine = maxFine
	}
	return fine.Round(2)
}

// sub-second remainder is dropped
func lateSeconds(dueAt, returnedAt time.Time) int64 {
	return int64(returnedAt.Sub(dueAt) / time.Second)
}
