package lending_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendingdesk/internal/lending"
)

var testSecret = []byte("handler-secret")

type api struct {
	t      *testing.T
	f      *fixture
	router *gin.Engine
	staff  string
	admin  string
}

func newAPI(t *testing.T) *api {
	t.Helper()

	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	r := gin.New()
	lending.RegisterRoutes(r.Group("/api/v1"), f.svc, testSecret)

	return &api{
		t:      t,
		f:      f,
		router: r,
		staff:  mint(t, "clerk", "staff"),
		admin:  mint(t, "boss", "admin"),
	}
}

func mint(t *testing.T, sub, role string) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(testSecret)
	require.NoError(t, err)
	return tok
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errResp struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestHandler_LendingFlow(t *testing.T) {
	a := newAPI(t)

	// register
	w := a.do(http.MethodPost, "/api/v1/borrowers", a.staff, gin.H{"username": "ana", "email": "ana@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decode[lending.BorrowerResponse](t, w)
	assert.Equal(t, "0.00", b.Fines)
	assert.Equal(t, "/api/v1/borrowers/1", w.Header().Get("Location"))

	// add and merge
	w = a.do(http.MethodPost, "/api/v1/items", a.staff, gin.H{"family": "book", "name": "Dune", "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = a.do(http.MethodPost, "/api/v1/items", a.staff, gin.H{"family": "book", "name": "dune"})
	require.Equal(t, http.StatusOK, w.Code)
	added := decode[lending.AddItemResponse](t, w)
	assert.True(t, added.Merged)
	assert.Equal(t, 2, added.Item.Stock)

	// borrow
	loanReq := gin.H{"borrower_id": b.BorrowerID, "item_id": added.Item.ItemID, "family": "book"}
	w = a.do(http.MethodPost, "/api/v1/loans", a.staff, loanReq)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	borrowed := decode[lending.BorrowResponse](t, w)
	assert.Equal(t, 1, borrowed.QuantityAvailable)
	assert.True(t, borrowed.Loan.Open)

	w = a.do(http.MethodGet, "/api/v1/loans/"+borrowed.Loan.LoanULID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// late return
	a.f.clock.Advance(40 * time.Second)
	w = a.do(http.MethodPost, "/api/v1/returns", a.staff, loanReq)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ret := decode[lending.ReturnResponse](t, w)
	assert.False(t, ret.OnTime)
	assert.Equal(t, int64(10), ret.LateSeconds)
	assert.Equal(t, "5.00", ret.Fine)
	assert.Equal(t, "5.00", ret.BorrowerFines)
	assert.Equal(t, 2, ret.QuantityAvailable)

	// outstanding fines report
	w = a.do(http.MethodGet, "/api/v1/borrowers?outstanding_fines=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]lending.BorrowerResponse](t, w)["borrowers"], 1)

	// pay
	w = a.do(http.MethodPost, "/api/v1/borrowers/1/payments", a.staff, gin.H{"amount": "2.50"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2.50", decode[lending.PaymentResponse](t, w).Remaining)

	// history
	w = a.do(http.MethodGet, "/api/v1/loans?borrower_id=1&family=book", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	loans := decode[map[string][]lending.LoanResponse](t, w)["loans"]
	require.Len(t, loans, 1)
	assert.Equal(t, "5.00", loans[0].FineCharged)
}

func TestHandler_ErrorMapping(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodPost, "/api/v1/borrowers", a.staff, gin.H{"username": "ana", "email": "ana@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		code   string
	}{
		{"malformed json", http.MethodPost, "/api/v1/loans", a.staff, "nope", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"bad path id", http.MethodGet, "/api/v1/borrowers/abc", "", nil, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"unknown borrower", http.MethodGet, "/api/v1/borrowers/99", "", nil, http.StatusNotFound, "NOT_FOUND"},
		{"unknown family", http.MethodGet, "/api/v1/items/vinyl/1", "", nil, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"already active", http.MethodPost, "/api/v1/borrowers/1/activate", a.staff, nil, http.StatusConflict, "INVALID_STATE"},
		{"duplicate", http.MethodPost, "/api/v1/borrowers", a.staff, gin.H{"username": "ANA", "email": "x@example.com"}, http.StatusConflict, "CONFLICT"},
		{"bad amount", http.MethodPost, "/api/v1/borrowers/1/payments", a.staff, gin.H{"amount": "ten"}, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"return of unknown item", http.MethodPost, "/api/v1/returns", a.staff, gin.H{"borrower_id": 1, "item_id": 1, "family": "book"}, http.StatusNotFound, "NOT_FOUND"},
		{"no token", http.MethodPost, "/api/v1/items", "", gin.H{"family": "book", "name": "Dune"}, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"not admin", http.MethodDelete, "/api/v1/borrowers/1", a.staff, nil, http.StatusForbidden, "FORBIDDEN"},
		{"malformed borrower filter", http.MethodGet, "/api/v1/loans?borrower_id=l", "", nil, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"zero item filter", http.MethodGet, "/api/v1/loans?item_id=0", "", nil, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"empty borrower filter", http.MethodGet, "/api/v1/loans?borrower_id=", "", nil, http.StatusBadRequest, "INVALID_ARGUMENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(tt.method, tt.path, tt.token, tt.body)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[errResp](t, w).Error.Code)
		})
	}
}

func TestHandler_OversizedInputIsNotRetryable(t *testing.T) {
	a := newAPI(t)

	for name, body := range map[string]gin.H{
		"loan period": {"family": "device", "name": "Laptop", "loan_period_seconds": int64(9223372037)},
		"quantity":    {"family": "book", "name": "Dune", "quantity": lending.MaxStock + 1},
		"name":        {"family": "book", "name": strings.Repeat("x", 300)},
	} {
		t.Run(name, func(t *testing.T) {
			w := a.do(http.MethodPost, "/api/v1/items", a.staff, body)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, "INVALID_ARGUMENT", decode[errResp](t, w).Error.Code)
			assert.Empty(t, w.Header().Get("Retry-After"))
		})
	}
}

func TestHandler_PersistenceFailureIsRetryable(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodPost, "/api/v1/borrowers", a.staff, gin.H{"username": "ana", "email": "ana@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	a.f.store.FailNextCommit(assert.AnError)

	w = a.do(http.MethodPost, "/api/v1/borrowers/1/deactivate", a.staff, nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "PERSISTENCE_FAILURE", decode[errResp](t, w).Error.Code)
}

func TestHandler_AdminRoutes(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodPost, "/api/v1/borrowers", a.staff, gin.H{"username": "ana", "email": "ana@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = a.do(http.MethodPost, "/api/v1/items", a.staff, gin.H{"family": "device", "name": "Laptop"})
	require.Equal(t, http.StatusCreated, w.Code)
	loanReq := gin.H{"borrower_id": 1, "item_id": 1, "family": "device"}
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/v1/loans", a.staff, loanReq).Code)

	w = a.do(http.MethodDelete, "/api/v1/items/device/1", a.admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "REFERENTIAL_INTEGRITY_VIOLATION", decode[errResp](t, w).Error.Code)

	w = a.do(http.MethodDelete, "/api/v1/borrowers/1/loans", a.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, lending.PurgeResponse{Deleted: 1, OpenLoansPurged: 1}, decode[lending.PurgeResponse](t, w))

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/v1/items/device/1", a.admin, nil).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/v1/borrowers/1", a.admin, nil).Code)
}

func TestHandler_Import(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/api/v1/items/import", a.staff, []gin.H{
		{"family": "book", "name": "Emma", "author": "Austen"},
		{"family": "book", "name": ""},
		{"family": "device", "name": "Projector", "quantity": 2},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rep := decode[lending.ImportReport](t, w)
	assert.Equal(t, 2, rep.Added)
	assert.Equal(t, 1, rep.Failed)

	w = a.do(http.MethodGet, "/api/v1/items?family=device&available=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[map[string][]lending.ItemResponse](t, w)["items"]
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].QuantityAvailable)
}
