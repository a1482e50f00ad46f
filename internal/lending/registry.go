package lending

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RegisterBorrower creates an active borrower with a zero balance. Username
// and email are unique regardless of case.
func (s *Service) RegisterBorrower(ctx context.Context, req RegisterBorrowerRequest) (*Borrower, error) {
	b := Borrower{
		Username:  strings.TrimSpace(req.Username),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Active:    true,
		Fines:     decimal.Zero,
	}
	if b.Username == "" {
		return nil, ErrInvalid("username is required")
	}
	for _, f := range []struct {
		name, v string
		max     int
	}{
		{"username", b.Username, maxUsernameLen},
		{"first_name", b.FirstName, maxPersonNameLen},
		{"last_name", b.LastName, maxPersonNameLen},
		{"email", b.Email, maxEmailLen},
	} {
		if err := checkLen(f.name, f.v, f.max); err != nil {
			return nil, err
		}
	}
	if _, err := mail.ParseAddress(b.Email); err != nil {
		return nil, ErrInvalid("email is not a valid address")
	}

	err := s.update(ctx, "register_borrower", func(ctx context.Context, tx Tx) error {
		taken, err := tx.BorrowerIdentityTaken(ctx, b.Username, b.Email)
		if err != nil {
			return err
		}
		if taken {
			return ErrConflict(fmt.Sprintf("username %q or email %q is already registered", b.Username, b.Email))
		}
		b.CreatedAt = s.now()
		return tx.InsertBorrower(ctx, &b)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("borrower registered", zap.Int64("borrower_id", b.ID), zap.String("username", b.Username))
	return &b, nil
}

func (s *Service) GetBorrower(ctx context.Context, id int64) (*Borrower, error) {
	var out *Borrower
	err := s.view(ctx, "get_borrower", func(ctx context.Context, tx Tx) error {
		b, err := tx.Borrower(ctx, id)
		if err != nil {
			return notFound(err, fmt.Sprintf("borrower %d not found", id))
		}
		out = b
		return nil
	})
	return out, err
}

func (s *Service) ListBorrowers(ctx context.Context, f BorrowerFilter) ([]Borrower, error) {
	var out []Borrower
	err := s.view(ctx, "list_borrowers", func(ctx context.Context, tx Tx) error {
		var err error
		out, err = tx.ListBorrowers(ctx, f)
		return err
	})
	return out, err
}
