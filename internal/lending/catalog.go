package lending

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const maxImportBatch = 1000

// AddItem adds a device or book. A name already used in the same family,
// compared without case, grows that item's stock instead of creating a new one.
func (s *Service) AddItem(ctx context.Context, req AddItemRequest) (*AddItemResult, error) {
	family, err := ParseFamily(string(req.Family))
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	author := strings.TrimSpace(req.Author)
	genre := strings.TrimSpace(req.Genre)
	if name == "" {
		return nil, ErrInvalid("name is required")
	}
	if err := checkLen("name", name, maxNameLen); err != nil {
		return nil, err
	}
	if err := checkLen("author", author, maxAuthorLen); err != nil {
		return nil, err
	}
	if err := checkLen("genre", genre, maxGenreLen); err != nil {
		return nil, err
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 || qty > MaxStock {
		return nil, ErrInvalid(fmt.Sprintf("quantity must be between 1 and %d", MaxStock))
	}
	maxPeriod := s.policy.MaxLoanPeriod
	if maxPeriod <= 0 {
		maxPeriod = DefaultMaxLoanPeriod
	}
	maxSeconds := int64(maxPeriod / time.Second)
	if req.LoanPeriodSeconds < 0 || req.LoanPeriodSeconds > maxSeconds {
		return nil, ErrInvalid(fmt.Sprintf("loan_period_seconds must be between 1 and %d", maxSeconds))
	}
	if req.Pages < 0 || req.Pages > MaxStock {
		return nil, ErrInvalid(fmt.Sprintf("pages must be between 0 and %d", MaxStock))
	}
	period := s.policy.DefaultLoanPeriod
	if req.LoanPeriodSeconds > 0 {
		period = time.Duration(req.LoanPeriodSeconds) * time.Second
	}

	var res AddItemResult
	err = s.update(ctx, "add_item", func(ctx context.Context, tx Tx) error {
		existing, err := tx.ItemByName(ctx, family, name)
		switch {
		case err == nil:
			if existing.Stock > MaxStock-qty {
				return ErrInvalid(fmt.Sprintf("%s %q would exceed the maximum stock of %d", family, existing.Name, MaxStock))
			}
			if err := tx.AdjustItem(ctx, existing.ID, qty, qty); err != nil {
				return err
			}
			existing.Stock += qty
			existing.Available += qty
			res = AddItemResult{Item: *existing, Merged: true}
			return nil
		case !errors.Is(err, ErrRecordNotFound):
			return err
		}

		it := Item{
			Family:     family,
			Name:       name,
			Stock:      qty,
			Available:  qty,
			LoanPeriod: period,
			Author:     author,
			Genre:      genre,
			Pages:      req.Pages,
			CreatedAt:  s.now(),
		}
		if err := tx.InsertItem(ctx, &it); err != nil {
			return err
		}
		res = AddItemResult{Item: it}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("item added",
		zap.Int64("item_id", res.Item.ID),
		zap.String("family", string(family)),
		zap.String("name", res.Item.Name),
		zap.Int("quantity", qty),
		zap.Bool("merged", res.Merged),
	)
	return &res, nil
}

// ImportItems adds records one at a time, each in its own transaction. A
// failing record is reported and the rest of the batch still runs.
func (s *Service) ImportItems(ctx context.Context, reqs []AddItemRequest) (*ImportReport, error) {
	if len(reqs) > maxImportBatch {
		return nil, ErrInvalid(fmt.Sprintf("at most %d records per import", maxImportBatch))
	}

	rep := &ImportReport{Records: make([]ImportRecord, 0, len(reqs))}
	for i, req := range reqs {
		rec := ImportRecord{Index: i, Name: req.Name}
		res, err := s.AddItem(ctx, req)
		switch {
		case err != nil:
			rec.Status = ImportFailed
			rec.Code = CodeOf(err)
			rec.Error = err.Error()
			var api *APIError
			if errors.As(err, &api) {
				rec.Error = api.Message
			}
			rep.Failed++
		case res.Merged:
			rec.Status, rec.ItemID = ImportMerged, res.Item.ID
			rep.Merged++
		default:
			rec.Status, rec.ItemID = ImportAdded, res.Item.ID
			rep.Added++
		}
		rep.Records = append(rep.Records, rec)
	}

	s.log.Info("import finished", zap.Int("added", rep.Added), zap.Int("merged", rep.Merged), zap.Int("failed", rep.Failed))
	return rep, nil
}

func (s *Service) GetItem(ctx context.Context, family Family, id int64) (*Item, error) {
	family, err := ParseFamily(string(family))
	if err != nil {
		return nil, err
	}
	var out *Item
	err = s.view(ctx, "get_item", func(ctx context.Context, tx Tx) error {
		it, err := tx.Item(ctx, family, id)
		if err != nil {
			return notFound(err, fmt.Sprintf("%s %d not found", family, id))
		}
		out = it
		return nil
	})
	return out, err
}

func (s *Service) ListItems(ctx context.Context, f ItemFilter) ([]Item, error) {
	if f.Family != "" {
		family, err := ParseFamily(string(f.Family))
		if err != nil {
			return nil, err
		}
		f.Family = family
	}
	var out []Item
	err := s.view(ctx, "list_items", func(ctx context.Context, tx Tx) error {
		var err error
		out, err = tx.ListItems(ctx, f)
		return err
	})
	return out, err
}

func checkLen(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return ErrInvalid(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}
