package lending

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinels a Store wraps around its own failures so the service can tell
// them apart without knowing the backend.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate key")
	ErrReferenced     = errors.New("row is referenced by loans")
	ErrOutOfRange     = errors.New("value out of range")
	// ErrSerialization marks lock waits and deadlocks. Retrying the whole
	// transaction is safe.
	ErrSerialization = errors.New("serialization failure")
)

// Store runs units of work. RunInTx commits when fn returns nil and rolls
// back otherwise; nothing fn wrote is visible after a rollback. Reads inside
// RunInTx lock the rows they return until the end of the transaction.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	ReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
}

type Tx interface {
	Borrower(ctx context.Context, id int64) (*Borrower, error)
	// BorrowerIdentityTaken reports whether username or email already belong to someone, ignoring case.
	BorrowerIdentityTaken(ctx context.Context, username, email string) (bool, error)
	InsertBorrower(ctx context.Context, b *Borrower) error
	// UpdateBorrower writes Active and Fines.
	UpdateBorrower(ctx context.Context, b *Borrower) error
	DeleteBorrower(ctx context.Context, id int64) error
	ListBorrowers(ctx context.Context, f BorrowerFilter) ([]Borrower, error)

	Item(ctx context.Context, family Family, id int64) (*Item, error)
	ItemByName(ctx context.Context, family Family, name string) (*Item, error)
	InsertItem(ctx context.Context, it *Item) error
	AdjustItem(ctx context.Context, id int64, stockDelta, availableDelta int) error
	DeleteItem(ctx context.Context, id int64) error
	ListItems(ctx context.Context, f ItemFilter) ([]Item, error)

	InsertLoan(ctx context.Context, l *Loan) error
	// OldestOpenLoan returns the earliest unreturned loan of item by borrower.
	OldestOpenLoan(ctx context.Context, borrowerID, itemID int64) (*Loan, error)
	CloseLoan(ctx context.Context, id int64, returnedAt time.Time, fine decimal.Decimal) error
	LoanByULID(ctx context.Context, ulid string) (*Loan, error)
	CountLoans(ctx context.Context, f LoanFilter) (int, error)
	ListLoans(ctx context.Context, f LoanFilter) ([]Loan, error)
	DeleteLoans(ctx context.Context, f LoanFilter) (int64, error)
}
