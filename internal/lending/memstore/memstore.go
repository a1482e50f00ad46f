// Package memstore is a lending.Store kept in process memory. Transactions
// are serialised by one mutex and work on a private copy of the state that
// replaces the live state only on commit.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"lendingdesk/internal/lending"
)

var errReadOnly = errors.New("memstore: write in read-only transaction")

type state struct {
	borrowers map[int64]lending.Borrower
	items     map[int64]lending.Item
	loans     map[int64]lending.Loan

	borrowerSeq int64
	itemSeq     int64
	loanSeq     int64
}

func newState() *state {
	return &state{
		borrowers: make(map[int64]lending.Borrower),
		items:     make(map[int64]lending.Item),
		loans:     make(map[int64]lending.Loan),
	}
}

func (s *state) clone() *state {
	c := &state{
		borrowers:   make(map[int64]lending.Borrower, len(s.borrowers)),
		items:       make(map[int64]lending.Item, len(s.items)),
		loans:       make(map[int64]lending.Loan, len(s.loans)),
		borrowerSeq: s.borrowerSeq,
		itemSeq:     s.itemSeq,
		loanSeq:     s.loanSeq,
	}
	for k, v := range s.borrowers {
		c.borrowers[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.loans {
		c.loans[k] = v
	}
	return c
}

type Store struct {
	mu         sync.Mutex
	cur        *state
	commitErrs []error
}

func New() *Store {
	return &Store{cur: newState()}
}

// FailNextCommit makes the next RunInTx discard its work and return err
// instead of committing. Calls queue up.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErrs = append(s.commitErrs, err)
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx lending.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.cur.clone()
	if err := fn(ctx, &tx{st: work}); err != nil {
		return err
	}
	if len(s.commitErrs) > 0 {
		err := s.commitErrs[0]
		s.commitErrs = s.commitErrs[1:]
		return fmt.Errorf("memstore: commit: %w", err)
	}
	s.cur = work
	return nil
}

func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context, tx lending.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, &tx{st: s.cur, readOnly: true})
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

type tx struct {
	st       *state
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

// ---------- borrowers ----------

func (t *tx) Borrower(_ context.Context, id int64) (*lending.Borrower, error) {
	b, ok := t.st.borrowers[id]
	if !ok {
		return nil, lending.ErrRecordNotFound
	}
	return &b, nil
}

func (t *tx) BorrowerIdentityTaken(_ context.Context, username, email string) (bool, error) {
	uk, ek := lending.FoldKey(username), lending.FoldKey(email)
	for _, b := range t.st.borrowers {
		if lending.FoldKey(b.Username) == uk || lending.FoldKey(b.Email) == ek {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) InsertBorrower(ctx context.Context, b *lending.Borrower) error {
	if err := t.writable(); err != nil {
		return err
	}
	taken, err := t.BorrowerIdentityTaken(ctx, b.Username, b.Email)
	if err != nil {
		return err
	}
	if taken {
		return lending.ErrDuplicate
	}
	t.st.borrowerSeq++
	b.ID = t.st.borrowerSeq
	t.st.borrowers[b.ID] = *b
	return nil
}

func (t *tx) UpdateBorrower(_ context.Context, b *lending.Borrower) error {
	if err := t.writable(); err != nil {
		return err
	}
	cur, ok := t.st.borrowers[b.ID]
	if !ok {
		return lending.ErrRecordNotFound
	}
	cur.Active = b.Active
	cur.Fines = b.Fines
	t.st.borrowers[b.ID] = cur
	return nil
}

func (t *tx) DeleteBorrower(_ context.Context, id int64) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.borrowers[id]; !ok {
		return lending.ErrRecordNotFound
	}
	for _, l := range t.st.loans {
		if l.BorrowerID == id {
			return lending.ErrReferenced
		}
	}
	delete(t.st.borrowers, id)
	return nil
}

func (t *tx) ListBorrowers(_ context.Context, f lending.BorrowerFilter) ([]lending.Borrower, error) {
	out := make([]lending.Borrower, 0, len(t.st.borrowers))
	for _, b := range t.st.borrowers {
		if f.OutstandingFinesOnly && !b.Fines.IsPositive() {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---------- items ----------

func (t *tx) Item(_ context.Context, family lending.Family, id int64) (*lending.Item, error) {
	it, ok := t.st.items[id]
	if !ok || it.Family != family {
		return nil, lending.ErrRecordNotFound
	}
	return &it, nil
}

func (t *tx) ItemByName(_ context.Context, family lending.Family, name string) (*lending.Item, error) {
	key := lending.FoldKey(name)
	for _, it := range t.st.items {
		if it.Family == family && lending.FoldKey(it.Name) == key {
			return &it, nil
		}
	}
	return nil, lending.ErrRecordNotFound
}

func (t *tx) InsertItem(ctx context.Context, it *lending.Item) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, err := t.ItemByName(ctx, it.Family, it.Name); err == nil {
		return lending.ErrDuplicate
	}
	t.st.itemSeq++
	it.ID = t.st.itemSeq
	t.st.items[it.ID] = *it
	return nil
}

func (t *tx) AdjustItem(_ context.Context, id int64, stockDelta, availableDelta int) error {
	if err := t.writable(); err != nil {
		return err
	}
	it, ok := t.st.items[id]
	if !ok {
		return lending.ErrRecordNotFound
	}
	if stockDelta > 0 && it.Stock > lending.MaxStock-stockDelta {
		return fmt.Errorf("memstore: item %d stock: %w", id, lending.ErrOutOfRange)
	}
	it.Stock += stockDelta
	it.Available += availableDelta
	if it.Available < 0 || it.Stock < 0 {
		return fmt.Errorf("memstore: item %d would go negative", id)
	}
	t.st.items[id] = it
	return nil
}

func (t *tx) DeleteItem(_ context.Context, id int64) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.items[id]; !ok {
		return lending.ErrRecordNotFound
	}
	for _, l := range t.st.loans {
		if l.ItemID == id {
			return lending.ErrReferenced
		}
	}
	delete(t.st.items, id)
	return nil
}

func (t *tx) ListItems(_ context.Context, f lending.ItemFilter) ([]lending.Item, error) {
	out := make([]lending.Item, 0, len(t.st.items))
	for _, it := range t.st.items {
		if f.Family != "" && it.Family != f.Family {
			continue
		}
		if f.AvailableOnly && it.Available <= 0 {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---------- loans ----------

func (t *tx) InsertLoan(_ context.Context, l *lending.Loan) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.borrowers[l.BorrowerID]; !ok {
		return lending.ErrReferenced
	}
	if _, ok := t.st.items[l.ItemID]; !ok {
		return lending.ErrReferenced
	}
	for _, other := range t.st.loans {
		if other.ULID == l.ULID {
			return lending.ErrDuplicate
		}
	}
	t.st.loanSeq++
	l.ID = t.st.loanSeq
	t.st.loans[l.ID] = *l
	return nil
}

func (t *tx) OldestOpenLoan(_ context.Context, borrowerID, itemID int64) (*lending.Loan, error) {
	var found *lending.Loan
	for _, l := range t.st.loans {
		if l.BorrowerID != borrowerID || l.ItemID != itemID || !l.Open() {
			continue
		}
		if found == nil || l.ID < found.ID {
			l := l
			found = &l
		}
	}
	if found == nil {
		return nil, lending.ErrRecordNotFound
	}
	return found, nil
}

func (t *tx) CloseLoan(_ context.Context, id int64, returnedAt time.Time, fine decimal.Decimal) error {
	if err := t.writable(); err != nil {
		return err
	}
	l, ok := t.st.loans[id]
	if !ok || !l.Open() {
		return lending.ErrRecordNotFound
	}
	l.ReturnedAt = &returnedAt
	l.FineCharged = fine
	t.st.loans[id] = l
	return nil
}

func (t *tx) LoanByULID(_ context.Context, ulid string) (*lending.Loan, error) {
	for _, l := range t.st.loans {
		if l.ULID == ulid {
			return &l, nil
		}
	}
	return nil, lending.ErrRecordNotFound
}

func matches(l lending.Loan, f lending.LoanFilter) bool {
	switch {
	case f.BorrowerID != 0 && l.BorrowerID != f.BorrowerID:
		return false
	case f.ItemID != 0 && l.ItemID != f.ItemID:
		return false
	case f.Family != "" && l.Family != f.Family:
		return false
	case f.OpenOnly && !l.Open():
		return false
	}
	return true
}

func (t *tx) CountLoans(_ context.Context, f lending.LoanFilter) (int, error) {
	n := 0
	for _, l := range t.st.loans {
		if matches(l, f) {
			n++
		}
	}
	return n, nil
}

func (t *tx) ListLoans(_ context.Context, f lending.LoanFilter) ([]lending.Loan, error) {
	out := make([]lending.Loan, 0)
	for _, l := range t.st.loans {
		if matches(l, f) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tx) DeleteLoans(_ context.Context, f lending.LoanFilter) (int64, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	var n int64
	for id, l := range t.st.loans {
		if matches(l, f) {
			delete(t.st.loans, id)
			n++
		}
	}
	return n, nil
}

var _ lending.Store = (*Store)(nil)
