package lending

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"lendingdesk/internal/platform/db"
)

const (
	DefaultLoanPeriod    = 30 * time.Second
	DefaultMaxLoanPeriod = 365 * 24 * time.Hour
)

type Policy struct {
	FineRate          decimal.Decimal
	FineCap           decimal.Decimal
	DefaultLoanPeriod time.Duration
	// MaxLoanPeriod bounds the per-item loan period accepted by AddItem.
	MaxLoanPeriod     time.Duration
	Limits            map[Family]int
}

// DefaultPolicy: one open device loan, two open book loans, 0.50 per second late up to 50.00.
func DefaultPolicy() Policy {
	return Policy{
		FineRate:          DefaultFineRate,
		FineCap:           DefaultFineCap,
		DefaultLoanPeriod: DefaultLoanPeriod,
		MaxLoanPeriod:     DefaultMaxLoanPeriod,
		Limits: map[Family]int{
			FamilyDevice: 1,
			FamilyBook:   2,
		},
	}
}

// Limit is the number of loans of family a borrower may hold open at once.
func (p Policy) Limit(f Family) int {
	return p.Limits[f]
}

// PolicyFromConfig overlays the configured values on DefaultPolicy. Blank or
// zero fields keep the default.
func PolicyFromConfig(c db.PolicyConfig) (Policy, error) {
	p := DefaultPolicy()

	if c.FineRatePerSecond != "" {
		v, err := decimal.NewFromString(c.FineRatePerSecond)
		if err != nil || v.IsNegative() {
			return Policy{}, fmt.Errorf("policy.fine_rate_per_second: invalid value %q", c.FineRatePerSecond)
		}
		p.FineRate = v
	}
	if c.FineCap != "" {
		v, err := decimal.NewFromString(c.FineCap)
		if err != nil || v.IsNegative() {
			return Policy{}, fmt.Errorf("policy.fine_cap: invalid value %q", c.FineCap)
		}
		p.FineCap = v
	}
	if c.DefaultLoanPeriod < 0 {
		return Policy{}, fmt.Errorf("policy.default_loan_period must not be negative")
	}
	if c.DefaultLoanPeriod > 0 {
		p.DefaultLoanPeriod = c.DefaultLoanPeriod
	}
	if c.MaxLoanPeriod < 0 {
		return Policy{}, fmt.Errorf("policy.max_loan_period must not be negative")
	}
	if c.MaxLoanPeriod > 0 {
		p.MaxLoanPeriod = c.MaxLoanPeriod
	}
	if p.DefaultLoanPeriod > p.MaxLoanPeriod {
		return Policy{}, fmt.Errorf("policy.default_loan_period %s exceeds max_loan_period %s", p.DefaultLoanPeriod, p.MaxLoanPeriod)
	}
	if c.DeviceLoanLimit < 0 || c.BookLoanLimit < 0 {
		return Policy{}, fmt.Errorf("policy loan limits must not be negative")
	}
	if c.DeviceLoanLimit > 0 {
		p.Limits[FamilyDevice] = c.DeviceLoanLimit
	}
	if c.BookLoanLimit > 0 {
		p.Limits[FamilyBook] = c.BookLoanLimit
	}
	return p, nil
}
