package lending

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------- requests ----------

type RegisterBorrowerRequest struct {
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"required"`
}

// AddItemRequest: Quantity defaults to 1, LoanPeriodSeconds to the policy default.
// No binding tags, an import batch is validated record by record.
type AddItemRequest struct {
	Family            Family `json:"family"`
	Name              string `json:"name"`
	Quantity          int    `json:"quantity"`
	LoanPeriodSeconds int64  `json:"loan_period_seconds"`
	Author            string `json:"author,omitempty"`
	Genre             string `json:"genre,omitempty"`
	Pages             int    `json:"pages,omitempty"`
}

type LoanRequest struct {
	BorrowerID int64  `json:"borrower_id" binding:"required"`
	ItemID     int64  `json:"item_id" binding:"required"`
	Family     Family `json:"family" binding:"required"`
}

type PaymentRequest struct {
	// string so that amounts never pass through a float
	Amount string `json:"amount" binding:"required"`
}

// ---------- results ----------

type BorrowResult struct {
	Loan              Loan
	QuantityAvailable int
}

type ReturnResult struct {
	Loan              Loan
	OnTime            bool
	Lateness          time.Duration
	LateSeconds       int64
	Fine              decimal.Decimal
	QuantityAvailable int
	BorrowerFines     decimal.Decimal
}

type PaymentResult struct {
	BorrowerID int64
	Paid       decimal.Decimal
	Remaining  decimal.Decimal
}

type PurgeResult struct {
	Deleted         int64
	OpenLoansPurged int
}

type AddItemResult struct {
	Item   Item
	Merged bool
}

type ImportStatus string

const (
	ImportAdded  ImportStatus = "added"
	ImportMerged ImportStatus = "merged"
	ImportFailed ImportStatus = "failed"
)

type ImportRecord struct {
	Index  int          `json:"index"`
	Name   string       `json:"name"`
	Status ImportStatus `json:"status"`
	ItemID int64        `json:"item_id,omitempty"`
	Code   Code         `json:"code,omitempty"`
	Error  string       `json:"error,omitempty"`
}

type ImportReport struct {
	Added   int            `json:"added"`
	Merged  int            `json:"merged"`
	Failed  int            `json:"failed"`
	Records []ImportRecord `json:"records"`
}

// ---------- responses ----------

type BorrowerResponse struct {
	BorrowerID int64     `json:"borrower_id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Active     bool      `json:"active"`
	Fines      string    `json:"fines"`
	CreatedAt  time.Time `json:"created_at"`
}

type ItemResponse struct {
	ItemID            int64     `json:"item_id"`
	Family            Family    `json:"family"`
	Name              string    `json:"name"`
	Stock             int       `json:"stock"`
	QuantityAvailable int       `json:"quantity_available"`
	LoanPeriodSeconds int64     `json:"loan_period_seconds"`
	Author            string    `json:"author,omitempty"`
	Genre             string    `json:"genre,omitempty"`
	Pages             int       `json:"pages,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type LoanResponse struct {
	LoanULID    string     `json:"loan_ulid"`
	Family      Family     `json:"family"`
	BorrowerID  int64      `json:"borrower_id"`
	ItemID      int64      `json:"item_id"`
	BorrowedAt  time.Time  `json:"borrowed_at"`
	DueAt       time.Time  `json:"due_at"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
	FineCharged string     `json:"fine_charged"`
	Open        bool       `json:"open"`
}

type BorrowResponse struct {
	Loan              LoanResponse `json:"loan"`
	QuantityAvailable int          `json:"quantity_available"`
}

type ReturnResponse struct {
	Loan              LoanResponse `json:"loan"`
	OnTime            bool         `json:"on_time"`
	LateSeconds       int64        `json:"late_seconds"`
	Lateness          string       `json:"lateness"`
	Fine              string       `json:"fine"`
	QuantityAvailable int          `json:"quantity_available"`
	BorrowerFines     string       `json:"borrower_fines"`
}

type PaymentResponse struct {
	BorrowerID int64  `json:"borrower_id"`
	Paid       string `json:"paid"`
	Remaining  string `json:"remaining"`
}

type PurgeResponse struct {
	Deleted         int64 `json:"deleted"`
	OpenLoansPurged int   `json:"open_loans_purged"`
}

type AddItemResponse struct {
	Item   ItemResponse `json:"item"`
	Merged bool         `json:"merged"`
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func buildBorrowerResponse(b *Borrower) BorrowerResponse {
	return BorrowerResponse{
		BorrowerID: b.ID,
		Username:   b.Username,
		FirstName:  b.FirstName,
		LastName:   b.LastName,
		Email:      b.Email,
		Active:     b.Active,
		Fines:      money(b.Fines),
		CreatedAt:  b.CreatedAt,
	}
}

func buildItemResponse(it *Item) ItemResponse {
	return ItemResponse{
		ItemID:            it.ID,
		Family:            it.Family,
		Name:              it.Name,
		Stock:             it.Stock,
		QuantityAvailable: it.Available,
		LoanPeriodSeconds: int64(it.LoanPeriod / time.Second),
		Author:            it.Author,
		Genre:             it.Genre,
		Pages:             it.Pages,
		CreatedAt:         it.CreatedAt,
	}
}

func buildLoanResponse(l *Loan) LoanResponse {
	return LoanResponse{
		LoanULID:    l.ULID,
		Family:      l.Family,
		BorrowerID:  l.BorrowerID,
		ItemID:      l.ItemID,
		BorrowedAt:  l.BorrowedAt,
		DueAt:       l.DueAt,
		ReturnedAt:  l.ReturnedAt,
		FineCharged: money(l.FineCharged),
		Open:        l.Open(),
	}
}

func buildReturnResponse(r *ReturnResult) ReturnResponse {
	return ReturnResponse{
		Loan:              buildLoanResponse(&r.Loan),
		OnTime:            r.OnTime,
		LateSeconds:       r.LateSeconds,
		Lateness:          r.Lateness.String(),
		Fine:              money(r.Fine),
		QuantityAvailable: r.QuantityAvailable,
		BorrowerFines:     money(r.BorrowerFines),
	}
}
