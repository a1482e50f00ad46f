package lending

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BorrowItem lends one copy of an item. Checks run in a fixed order and the
// first failure wins: borrower exists, borrower active, family limit not
// reached, item exists, a copy is available.
func (s *Service) BorrowItem(ctx context.Context, borrowerID, itemID int64, family Family) (*BorrowResult, error) {
	family, err := ParseFamily(string(family))
	if err != nil {
		return nil, err
	}

	var res BorrowResult
	err = s.update(ctx, "borrow", func(ctx context.Context, tx Tx) error {
		b, err := tx.Borrower(ctx, borrowerID)
		if err != nil {
			return notFound(err, fmt.Sprintf("borrower %d not found", borrowerID))
		}
		if !b.Active {
			return ErrInvalidState(fmt.Sprintf("borrower %s is deactivated", b.Username))
		}

		open, err := tx.CountLoans(ctx, LoanFilter{BorrowerID: b.ID, Family: family, OpenOnly: true})
		if err != nil {
			return err
		}
		if limit := s.policy.Limit(family); open >= limit {
			return ErrInvalidState(fmt.Sprintf("borrower %s already holds %d open %s loan(s), the limit is %d", b.Username, open, family, limit))
		}

		it, err := tx.Item(ctx, family, itemID)
		if err != nil {
			return notFound(err, fmt.Sprintf("%s %d not found", family, itemID))
		}
		if it.Available <= 0 {
			return ErrInvalidState(fmt.Sprintf("%s %q is out of stock", family, it.Name))
		}

		if err := tx.AdjustItem(ctx, it.ID, 0, -1); err != nil {
			return err
		}

		now := s.now()
		loan := Loan{
			ULID:        s.id.NewULID(now),
			Family:      family,
			BorrowerID:  b.ID,
			ItemID:      it.ID,
			BorrowedAt:  now,
			DueAt:       now.Add(it.LoanPeriod),
			FineCharged: decimal.Zero,
		}
		if err := tx.InsertLoan(ctx, &loan); err != nil {
			return err
		}

		res = BorrowResult{Loan: loan, QuantityAvailable: it.Available - 1}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("item borrowed",
		zap.String("loan_ulid", res.Loan.ULID),
		zap.Int64("borrower_id", borrowerID),
		zap.String("family", string(family)),
		zap.Int64("item_id", itemID),
		zap.Time("due_at", res.Loan.DueAt),
	)
	s.metrics.Borrowed(string(family))
	return &res, nil
}

// ReturnItem closes the borrower's oldest open loan of the item. A return
// strictly after the due time is charged a fine, which is added to the
// borrower's balance.
func (s *Service) ReturnItem(ctx context.Context, borrowerID, itemID int64, family Family) (*ReturnResult, error) {
	family, err := ParseFamily(string(family))
	if err != nil {
		return nil, err
	}

	var res ReturnResult
	err = s.update(ctx, "return", func(ctx context.Context, tx Tx) error {
		b, err := tx.Borrower(ctx, borrowerID)
		if err != nil {
			return notFound(err, fmt.Sprintf("borrower %d not found", borrowerID))
		}
		it, err := tx.Item(ctx, family, itemID)
		if err != nil {
			return notFound(err, fmt.Sprintf("%s %d not found", family, itemID))
		}
		loan, err := tx.OldestOpenLoan(ctx, b.ID, it.ID)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return ErrInvalidState(fmt.Sprintf("borrower %s has no open loan of %s %q", b.Username, family, it.Name))
			}
			return err
		}

		now := s.now()
		fine := decimal.Zero
		late := now.After(loan.DueAt)
		if late {
			fine = ComputeFine(loan.DueAt, now, s.policy.FineRate, s.policy.FineCap)
		}

		if err := tx.CloseLoan(ctx, loan.ID, now, fine); err != nil {
			return err
		}
		if err := tx.AdjustItem(ctx, it.ID, 0, 1); err != nil {
			return err
		}
		if fine.IsPositive() {
			b.Fines = b.Fines.Add(fine)
			if err := tx.UpdateBorrower(ctx, b); err != nil {
				return err
			}
		}

		loan.ReturnedAt = &now
		loan.FineCharged = fine
		res = ReturnResult{
			Loan:              *loan,
			OnTime:            !late,
			Fine:              fine,
			QuantityAvailable: it.Available + 1,
			BorrowerFines:     b.Fines,
		}
		if late {
			res.Lateness = now.Sub(loan.DueAt)
			res.LateSeconds = lateSeconds(loan.DueAt, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("item returned",
		zap.String("loan_ulid", res.Loan.ULID),
		zap.Int64("borrower_id", borrowerID),
		zap.String("family", string(family)),
		zap.Int64("item_id", itemID),
		zap.Bool("on_time", res.OnTime),
		zap.Int64("late_seconds", res.LateSeconds),
		zap.String("fine", res.Fine.StringFixed(2)),
	)
	s.metrics.Returned(string(family), !res.OnTime, res.LateSeconds, res.Fine.InexactFloat64())
	return &res, nil
}

func (s *Service) ActivateBorrower(ctx context.Context, id int64) (*Borrower, error) {
	return s.setActive(ctx, "activate", id, true)
}

// DeactivateBorrower keeps any open loans; it only blocks new borrows.
func (s *Service) DeactivateBorrower(ctx context.Context, id int64) (*Borrower, error) {
	return s.setActive(ctx, "deactivate", id, false)
}

func (s *Service) setActive(ctx context.Context, op string, id int64, active bool) (*Borrower, error) {
	var out *Borrower
	err := s.update(ctx, op, func(ctx context.Context, tx Tx) error {
		b, err := tx.Borrower(ctx, id)
		if err != nil {
			return notFound(err, fmt.Sprintf("borrower %d not found", id))
		}
		if b.Active == active {
			if active {
				return ErrInvalidState(fmt.Sprintf("borrower %s is already active", b.Username))
			}
			return ErrInvalidState(fmt.Sprintf("borrower %s is already deactivated", b.Username))
		}
		b.Active = active
		if err := tx.UpdateBorrower(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("borrower status changed", zap.Int64("borrower_id", id), zap.Bool("active", active))
	return out, nil
}

// PayFine reduces the borrower's balance. Amounts must be positive, carry
// at most two decimals and not exceed the balance.
func (s *Service) PayFine(ctx context.Context, id int64, amount decimal.Decimal) (*PaymentResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalid("amount must be greater than zero")
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, ErrInvalid("amount must not have more than two decimal places")
	}

	var res PaymentResult
	err := s.update(ctx, "pay_fine", func(ctx context.Context, tx Tx) error {
		b, err := tx.Borrower(ctx, id)
		if err != nil {
			return notFound(err, fmt.Sprintf("borrower %d not found", id))
		}
		if !b.Fines.IsPositive() {
			return ErrInvalidState(fmt.Sprintf("borrower %s has no outstanding fines", b.Username))
		}
		if amount.GreaterThan(b.Fines) {
			return ErrInvalidState(fmt.Sprintf("amount %s exceeds the outstanding balance %s", amount.StringFixed(2), b.Fines.StringFixed(2)))
		}
		b.Fines = b.Fines.Sub(amount)
		if err := tx.UpdateBorrower(ctx, b); err != nil {
			return err
		}
		res = PaymentResult{BorrowerID: b.ID, Paid: amount, Remaining: b.Fines}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("fine paid", zap.Int64("borrower_id", id), zap.String("amount", amount.StringFixed(2)), zap.String("remaining", res.Remaining.StringFixed(2)))
	return &res, nil
}

// DeleteBorrower removes a borrower with no loan records at all, open or closed.
func (s *Service) DeleteBorrower(ctx context.Context, id int64) error {
	err := s.update(ctx, "delete_borrower", func(ctx context.Context, tx Tx) error {
		b, err := tx.Borrower(ctx, id)
		if err != nil {
			return notFound(err, fmt.Sprintf("borrower %d not found", id))
		}
		n, err := tx.CountLoans(ctx, LoanFilter{BorrowerID: b.ID})
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrRefIntegrity(fmt.Sprintf("borrower %s still has %d loan record(s)", b.Username, n))
		}
		return tx.DeleteBorrower(ctx, b.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info("borrower deleted", zap.Int64("borrower_id", id))
	return nil
}

// RemoveItem removes an item no loan record refers to.
func (s *Service) RemoveItem(ctx context.Context, family Family, id int64) error {
	family, err := ParseFamily(string(family))
	if err != nil {
		return err
	}
	err = s.update(ctx, "remove_item", func(ctx context.Context, tx Tx) error {
		it, err := tx.Item(ctx, family, id)
		if err != nil {
			return notFound(err, fmt.Sprintf("%s %d not found", family, id))
		}
		n, err := tx.CountLoans(ctx, LoanFilter{ItemID: it.ID})
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrRefIntegrity(fmt.Sprintf("%s %q still has %d loan record(s)", family, it.Name, n))
		}
		return tx.DeleteItem(ctx, it.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info("item removed", zap.String("family", string(family)), zap.Int64("item_id", id))
	return nil
}

// PurgeBorrowerLoans deletes every loan record of the borrower. Open loans
// are deleted too and their copies are not given back to the catalog; the
// count is reported in OpenLoansPurged.
func (s *Service) PurgeBorrowerLoans(ctx context.Context, id int64) (*PurgeResult, error) {
	return s.purge(ctx, "purge_borrower_loans", func(ctx context.Context, tx Tx) (LoanFilter, error) {
		b, err := tx.Borrower(ctx, id)
		if err != nil {
			return LoanFilter{}, notFound(err, fmt.Sprintf("borrower %d not found", id))
		}
		return LoanFilter{BorrowerID: b.ID}, nil
	}, zap.Int64("borrower_id", id))
}

// PurgeItemLoans is PurgeBorrowerLoans keyed by item.
func (s *Service) PurgeItemLoans(ctx context.Context, family Family, id int64) (*PurgeResult, error) {
	family, err := ParseFamily(string(family))
	if err != nil {
		return nil, err
	}
	return s.purge(ctx, "purge_item_loans", func(ctx context.Context, tx Tx) (LoanFilter, error) {
		it, err := tx.Item(ctx, family, id)
		if err != nil {
			return LoanFilter{}, notFound(err, fmt.Sprintf("%s %d not found", family, id))
		}
		return LoanFilter{ItemID: it.ID}, nil
	}, zap.String("family", string(family)), zap.Int64("item_id", id))
}

func (s *Service) purge(ctx context.Context, op string, target func(ctx context.Context, tx Tx) (LoanFilter, error), fields ...zap.Field) (*PurgeResult, error) {
	var res PurgeResult
	err := s.update(ctx, op, func(ctx context.Context, tx Tx) error {
		f, err := target(ctx, tx)
		if err != nil {
			return err
		}
		open := f
		open.OpenOnly = true
		if res.OpenLoansPurged, err = tx.CountLoans(ctx, open); err != nil {
			return err
		}
		res.Deleted, err = tx.DeleteLoans(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}

	fields = append(fields, zap.Int64("deleted", res.Deleted), zap.Int("open_loans_purged", res.OpenLoansPurged))
	if res.OpenLoansPurged > 0 {
		s.log.Warn("loan history purged with open loans, availability counters no longer match", fields...)
	} else {
		s.log.Info("loan history purged", fields...)
	}
	return &res, nil
}
