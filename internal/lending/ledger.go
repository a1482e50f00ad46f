package lending

import (
	"context"
	"fmt"
	"strings"
)

func (s *Service) GetLoan(ctx context.Context, loanULID string) (*Loan, error) {
	loanULID = strings.ToUpper(strings.TrimSpace(loanULID))
	if loanULID == "" {
		return nil, ErrInvalid("loan_ulid is required")
	}
	var out *Loan
	err := s.view(ctx, "get_loan", func(ctx context.Context, tx Tx) error {
		l, err := tx.LoanByULID(ctx, loanULID)
		if err != nil {
			return notFound(err, fmt.Sprintf("loan %s not found", loanULID))
		}
		out = l
		return nil
	})
	return out, err
}

// ListLoans returns loans in borrow order.
func (s *Service) ListLoans(ctx context.Context, f LoanFilter) ([]Loan, error) {
	if f.Family != "" {
		family, err := ParseFamily(string(f.Family))
		if err != nil {
			return nil, err
		}
		f.Family = family
	}
	var out []Loan
	err := s.view(ctx, "list_loans", func(ctx context.Context, tx Tx) error {
		var err error
		out, err = tx.ListLoans(ctx, f)
		return err
	})
	return out, err
}
