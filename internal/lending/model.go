package lending

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Family is one of the two lendable item categories.
type Family string

const (
	FamilyDevice Family = "device"
	FamilyBook   Family = "book"
)

func ParseFamily(s string) (Family, error) {
	switch f := Family(strings.ToLower(strings.TrimSpace(s))); f {
	case FamilyDevice, FamilyBook:
		return f, nil
	default:
		return "", ErrInvalid("family must be device or book")
	}
}

type Borrower struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Email     string
	Active    bool
	Fines     decimal.Decimal
	CreatedAt time.Time
}

// Item is a device or a book. Available always equals Stock minus the open
// loans that reference the item.
type Item struct {
	ID         int64
	Family     Family
	Name       string
	Stock      int
	Available  int
	LoanPeriod time.Duration
	Author     string
	Genre      string
	Pages      int
	CreatedAt  time.Time
}

// Loan is open while ReturnedAt is nil.
type Loan struct {
	ID          int64
	ULID        string
	Family      Family
	BorrowerID  int64
	ItemID      int64
	BorrowedAt  time.Time
	DueAt       time.Time
	ReturnedAt  *time.Time
	FineCharged decimal.Decimal
}

func (l Loan) Open() bool { return l.ReturnedAt == nil }

type BorrowerFilter struct {
	OutstandingFinesOnly bool
}

type ItemFilter struct {
	Family        Family // empty means both
	AvailableOnly bool
}

// LoanFilter zero values match everything.
type LoanFilter struct {
	BorrowerID int64
	ItemID     int64
	Family     Family
	OpenOnly   bool
}

// Field bounds follow the MySQL column sizes. Lengths count characters.
const (
	// MaxStock is the largest stock an item may reach, INT UNSIGNED capped to int32.
	MaxStock = 1<<31 - 1

	maxNameLen       = 255
	maxAuthorLen     = 255
	maxGenreLen      = 64
	maxUsernameLen   = 64
	maxPersonNameLen = 64
	maxEmailLen      = 255
)

// FoldKey is the comparison key behind the case-insensitive uniqueness of
// usernames, emails and item names.
func FoldKey(s string) string {
	// a Caser keeps state, so one per call
	return cases.Fold().String(strings.TrimSpace(s))
}
