package mysqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lendingdesk/internal/lending"
	"lendingdesk/internal/platform/db"
)

type tx struct {
	q    db.DBTX
	lock bool
}

func (t *tx) forUpdate(q string) string {
	if t.lock {
		return q + " FOR UPDATE"
	}
	return q
}

// exec runs a statement that must touch exactly one row.
func (t *tx) execOne(ctx context.Context, q string, args ...any) error {
	res, err := t.q.ExecContext(ctx, q, args...)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return lending.ErrRecordNotFound
	}
	return nil
}

// ---------- borrowers ----------

const borrowerCols = `borrower_id, username, first_name, last_name, email, active, fines, created_at`

type scanner interface{ Scan(dest ...any) error }

func scanBorrower(row scanner) (*lending.Borrower, error) {
	var b lending.Borrower
	if err := row.Scan(&b.ID, &b.Username, &b.FirstName, &b.LastName, &b.Email, &b.Active, &b.Fines, &b.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (t *tx) Borrower(ctx context.Context, id int64) (*lending.Borrower, error) {
	q := t.forUpdate(`SELECT ` + borrowerCols + ` FROM borrowers WHERE borrower_id = ?`)
	return scanBorrower(t.q.QueryRowContext(ctx, q, id))
}

func (t *tx) BorrowerIdentityTaken(ctx context.Context, username, email string) (bool, error) {
	const q = `SELECT COUNT(*) FROM borrowers WHERE username_key = ? OR email_key = ?`
	var n int
	if err := t.q.QueryRowContext(ctx, q, lending.FoldKey(username), lending.FoldKey(email)).Scan(&n); err != nil {
		return false, mapErr(err)
	}
	return n > 0, nil
}

func (t *tx) InsertBorrower(ctx context.Context, b *lending.Borrower) error {
	const q = `INSERT INTO borrowers (username, username_key, first_name, last_name, email, email_key, active, fines, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := t.q.ExecContext(ctx, q,
		b.Username, lending.FoldKey(b.Username), b.FirstName, b.LastName,
		b.Email, lending.FoldKey(b.Email), b.Active, b.Fines, b.CreatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (t *tx) UpdateBorrower(ctx context.Context, b *lending.Borrower) error {
	const q = `UPDATE borrowers SET active = ?, fines = ? WHERE borrower_id = ?`
	res, err := t.q.ExecContext(ctx, q, b.Active, b.Fines, b.ID)
	if err != nil {
		return mapErr(err)
	}
	// MySQL reports 0 affected rows when nothing changed, so only errors count here
	_, _ = res.RowsAffected()
	return nil
}

func (t *tx) DeleteBorrower(ctx context.Context, id int64) error {
	return t.execOne(ctx, `DELETE FROM borrowers WHERE borrower_id = ?`, id)
}

func (t *tx) ListBorrowers(ctx context.Context, f lending.BorrowerFilter) ([]lending.Borrower, error) {
	q := `SELECT ` + borrowerCols + ` FROM borrowers`
	if f.OutstandingFinesOnly {
		q += ` WHERE fines > 0`
	}
	q += ` ORDER BY borrower_id`

	rows, err := t.q.QueryContext(ctx, q)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []lending.Borrower{}
	for rows.Next() {
		b, err := scanBorrower(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, mapErr(rows.Err())
}

// ---------- items ----------

const itemCols = `item_id, family, name, stock, quantity_available, loan_period_seconds, author, genre, pages, created_at`

func scanItem(row scanner) (*lending.Item, error) {
	var (
		it     lending.Item
		period int64
	)
	if err := row.Scan(&it.ID, &it.Family, &it.Name, &it.Stock, &it.Available, &period, &it.Author, &it.Genre, &it.Pages, &it.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	it.LoanPeriod = time.Duration(period) * time.Second
	return &it, nil
}

func (t *tx) Item(ctx context.Context, family lending.Family, id int64) (*lending.Item, error) {
	q := t.forUpdate(`SELECT ` + itemCols + ` FROM items WHERE item_id = ? AND family = ?`)
	return scanItem(t.q.QueryRowContext(ctx, q, id, string(family)))
}

func (t *tx) ItemByName(ctx context.Context, family lending.Family, name string) (*lending.Item, error) {
	q := t.forUpdate(`SELECT ` + itemCols + ` FROM items WHERE family = ? AND name_key = ?`)
	return scanItem(t.q.QueryRowContext(ctx, q, string(family), lending.FoldKey(name)))
}

func (t *tx) InsertItem(ctx context.Context, it *lending.Item) error {
	const q = `INSERT INTO items (family, name, name_key, stock, quantity_available, loan_period_seconds, author, genre, pages, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := t.q.ExecContext(ctx, q,
		string(it.Family), it.Name, lending.FoldKey(it.Name), it.Stock, it.Available,
		int64(it.LoanPeriod/time.Second), it.Author, it.Genre, it.Pages, it.CreatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = id
	return nil
}

func (t *tx) AdjustItem(ctx context.Context, id int64, stockDelta, availableDelta int) error {
	const q = `UPDATE items SET stock = stock + ?, quantity_available = quantity_available + ? WHERE item_id = ?`
	return t.execOne(ctx, q, stockDelta, availableDelta, id)
}

func (t *tx) DeleteItem(ctx context.Context, id int64) error {
	return t.execOne(ctx, `DELETE FROM items WHERE item_id = ?`, id)
}

func (t *tx) ListItems(ctx context.Context, f lending.ItemFilter) ([]lending.Item, error) {
	var (
		where []string
		args  []any
	)
	if f.Family != "" {
		where = append(where, `family = ?`)
		args = append(args, string(f.Family))
	}
	if f.AvailableOnly {
		where = append(where, `quantity_available > 0`)
	}
	q := `SELECT ` + itemCols + ` FROM items` + whereClause(where) + ` ORDER BY item_id`

	rows, err := t.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []lending.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, mapErr(rows.Err())
}

// ---------- loans ----------

const loanCols = `loan_id, loan_ulid, family, borrower_id, item_id, borrowed_at, due_at, returned_at, fine_charged`

func scanLoan(row scanner) (*lending.Loan, error) {
	var (
		l        lending.Loan
		returned sql.NullTime
	)
	if err := row.Scan(&l.ID, &l.ULID, &l.Family, &l.BorrowerID, &l.ItemID, &l.BorrowedAt, &l.DueAt, &returned, &l.FineCharged); err != nil {
		return nil, mapErr(err)
	}
	if returned.Valid {
		at := returned.Time
		l.ReturnedAt = &at
	}
	return &l, nil
}

func (t *tx) InsertLoan(ctx context.Context, l *lending.Loan) error {
	const q = `INSERT INTO loans (loan_ulid, family, borrower_id, item_id, borrowed_at, due_at, fine_charged) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := t.q.ExecContext(ctx, q, l.ULID, string(l.Family), l.BorrowerID, l.ItemID, l.BorrowedAt, l.DueAt, l.FineCharged)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

func (t *tx) OldestOpenLoan(ctx context.Context, borrowerID, itemID int64) (*lending.Loan, error) {
	q := t.forUpdate(`SELECT ` + loanCols + ` FROM loans WHERE borrower_id = ? AND item_id = ? AND returned_at IS NULL ORDER BY loan_id LIMIT 1`)
	return scanLoan(t.q.QueryRowContext(ctx, q, borrowerID, itemID))
}

func (t *tx) CloseLoan(ctx context.Context, id int64, returnedAt time.Time, fine decimal.Decimal) error {
	const q = `UPDATE loans SET returned_at = ?, fine_charged = ? WHERE loan_id = ? AND returned_at IS NULL`
	return t.execOne(ctx, q, returnedAt, fine, id)
}

func (t *tx) LoanByULID(ctx context.Context, ulid string) (*lending.Loan, error) {
	q := `SELECT ` + loanCols + ` FROM loans WHERE loan_ulid = ?`
	return scanLoan(t.q.QueryRowContext(ctx, q, ulid))
}

func loanWhere(f lending.LoanFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.BorrowerID != 0 {
		where = append(where, `borrower_id = ?`)
		args = append(args, f.BorrowerID)
	}
	if f.ItemID != 0 {
		where = append(where, `item_id = ?`)
		args = append(args, f.ItemID)
	}
	if f.Family != "" {
		where = append(where, `family = ?`)
		args = append(args, string(f.Family))
	}
	if f.OpenOnly {
		where = append(where, `returned_at IS NULL`)
	}
	return whereClause(where), args
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return ` WHERE ` + strings.Join(conds, ` AND `)
}

func (t *tx) CountLoans(ctx context.Context, f lending.LoanFilter) (int, error) {
	where, args := loanWhere(f)
	var n int
	if err := t.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM loans`+where, args...).Scan(&n); err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (t *tx) ListLoans(ctx context.Context, f lending.LoanFilter) ([]lending.Loan, error) {
	where, args := loanWhere(f)
	rows, err := t.q.QueryContext(ctx, `SELECT `+loanCols+` FROM loans`+where+` ORDER BY loan_id`, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []lending.Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, mapErr(rows.Err())
}

// DeleteLoans refuses an empty filter rather than truncating the table.
func (t *tx) DeleteLoans(ctx context.Context, f lending.LoanFilter) (int64, error) {
	where, args := loanWhere(f)
	if where == "" {
		return 0, lending.ErrInvalid("refusing to delete loans without a filter")
	}
	res, err := t.q.ExecContext(ctx, `DELETE FROM loans`+where, args...)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected()
}
