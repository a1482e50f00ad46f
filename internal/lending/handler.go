package lending

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"lendingdesk/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the lending API. Reads are open, writes need a
// bearer token and destructive admin routes need the admin role.
func RegisterRoutes(r gin.IRoutes, svc *Service, secret []byte) {
	h := &Handler{svc: svc}
	authn := auth.RequireAuth(secret)
	admin := auth.RequireRole(auth.RoleAdmin)

	// borrowers
	r.POST("/borrowers", authn, h.RegisterBorrower)
	r.GET("/borrowers", h.ListBorrowers)
	r.GET("/borrowers/:id", h.GetBorrower)
	r.POST("/borrowers/:id/activate", authn, h.ActivateBorrower)
	r.POST("/borrowers/:id/deactivate", authn, h.DeactivateBorrower)
	r.POST("/borrowers/:id/payments", authn, h.PayFine)
	r.DELETE("/borrowers/:id", authn, admin, h.DeleteBorrower)
	r.DELETE("/borrowers/:id/loans", authn, admin, h.PurgeBorrowerLoans)

	// catalog
	r.POST("/items", authn, h.AddItem)
	r.POST("/items/import", authn, h.ImportItems)
	r.GET("/items", h.ListItems)
	r.GET("/items/:family/:id", h.GetItem)
	r.DELETE("/items/:family/:id", authn, admin, h.RemoveItem)
	r.DELETE("/items/:family/:id/loans", authn, admin, h.PurgeItemLoans)

	// loans
	r.POST("/loans", authn, h.BorrowItem)
	r.POST("/returns", authn, h.ReturnItem)
	r.GET("/loans", h.ListLoans)
	r.GET("/loans/:loan_ulid", h.GetLoan)
}

// ---------- borrowers ----------

// RegisterBorrower godoc
// @Summary  Register a borrower
// @Tags     borrowers
// @Accept   json
// @Produce  json
// @Param    body body RegisterBorrowerRequest true "borrower"
// @Success  201 {object} BorrowerResponse
// @Failure  400,409 {object} errorDTO
// @Security BearerAuth
// @Router   /borrowers [post]
func (h *Handler) RegisterBorrower(c *gin.Context) {
	var req RegisterBorrowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	b, err := h.svc.RegisterBorrower(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Location", "/api/v1/borrowers/"+strconv.FormatInt(b.ID, 10))
	c.JSON(http.StatusCreated, buildBorrowerResponse(b))
}

// ListBorrowers godoc
// @Summary  List borrowers
// @Tags     borrowers
// @Produce  json
// @Param    outstanding_fines query bool false "only borrowers that owe fines"
// @Success  200 {object} map[string][]BorrowerResponse
// @Router   /borrowers [get]
func (h *Handler) ListBorrowers(c *gin.Context) {
	f := BorrowerFilter{OutstandingFinesOnly: parseBool(c.Query("outstanding_fines"))}
	list, err := h.svc.ListBorrowers(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]BorrowerResponse, 0, len(list))
	for i := range list {
		out = append(out, buildBorrowerResponse(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"borrowers": out})
}

// GetBorrower godoc
// @Summary  Get a borrower
// @Tags     borrowers
// @Produce  json
// @Param    id path int true "borrower id"
// @Success  200 {object} BorrowerResponse
// @Failure  400,404 {object} errorDTO
// @Router   /borrowers/{id} [get]
func (h *Handler) GetBorrower(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.svc.GetBorrower(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, buildBorrowerResponse(b))
}

// ActivateBorrower godoc
// @Summary  Activate a borrower
// @Tags     borrowers
// @Produce  json
// @Param    id path int true "borrower id"
// @Success  200 {object} BorrowerResponse
// @Failure  400,404,409 {object} errorDTO
// @Security BearerAuth
// @Router   /borrowers/{id}/activate [post]
func (h *Handler) ActivateBorrower(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.svc.ActivateBorrower(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, buildBorrowerResponse(b))
}

// DeactivateBorrower godoc
// @Summary  Deactivate a borrower
// @Tags     borrowers
// @Produce  json
// @Param    id path int true "borrower id"
// @Success  200 {object} BorrowerResponse
// @Failure  400,404,409 {object} errorDTO
// @Security BearerAuth
// @Router   /borrowers/{id}/deactivate [post]
func (h *Handler) DeactivateBorrower(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.svc.DeactivateBorrower(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, buildBorrowerResponse(b))
}

// PayFine godoc
// @Summary  Pay part or all of a borrower's fines
// @Tags     borrowers
// @Accept   json
// @Produce  json
// @Param    id   path int            true "borrower id"
// @Param    body body PaymentRequest true "amount as a decimal string"
// @Success  200 {object} PaymentResponse
// @Failure  400,404,409 {object} errorDTO
// @Security BearerAuth
// @Router   /borrowers/{id}/payments [post]
func (h *Handler) PayFine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "amount is required"))
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "amount must be a decimal number"))
		return
	}
	res, err := h.svc.PayFine(c.Request.Context(), id, amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, PaymentResponse{BorrowerID: res.BorrowerID, Paid: money(res.Paid), Remaining: money(res.Remaining)})
}

// DeleteBorrower godoc
// @Summary  Delete a borrower with no loan history
// @Tags     borrowers
// @Param    id path int true "borrower id"
// @Success  204
// @Failure  400,404,409 {object} errorDTO
// @Security BearerAuth
// @Router   /borrowers/{id} [delete]
func (h *Handler) DeleteBorrower(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteBorrower(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PurgeBorrowerLoans godoc
// @Summary  Delete all loan records of a borrower
// @Tags     borrowers
// @Produce  json
// @Param    id path int true "borrower id"
// @Success  200 {object} PurgeResponse
// @Failure  400,404 {object} errorDTO
// @Security BearerAuth
// @Router   /borrowers/{id}/loans [delete]
func (h *Handler) PurgeBorrowerLoans(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.PurgeBorrowerLoans(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, PurgeResponse{Deleted: res.Deleted, OpenLoansPurged: res.OpenLoansPurged})
}

// ---------- catalog ----------

// AddItem godoc
// @Summary  Add a device or book, merging into an existing item of the same name
// @Tags     items
// @Accept   json
// @Produce  json
// @Param    body body AddItemRequest true "item"
// @Success  201 {object} AddItemResponse
// @Success  200 {object} AddItemResponse "merged into an existing item"
// @Failure  400 {object} errorDTO
// @Security BearerAuth
// @Router   /items [post]
func (h *Handler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.AddItem(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusCreated
	if res.Merged {
		status = http.StatusOK
	}
	c.Header("Location", "/api/v1/items/"+string(res.Item.Family)+"/"+strconv.FormatInt(res.Item.ID, 10))
	c.JSON(status, AddItemResponse{Item: buildItemResponse(&res.Item), Merged: res.Merged})
}

// ImportItems godoc
// @Summary  Import items in bulk, one transaction per record
// @Tags     items
// @Accept   json
// @Produce  json
// @Param    body body []AddItemRequest true "items"
// @Success  200 {object} ImportReport
// @Failure  400 {object} errorDTO
// @Security BearerAuth
// @Router   /items/import [post]
func (h *Handler) ImportItems(c *gin.Context) {
	var reqs []AddItemRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "body must be a JSON array of items"))
		return
	}
	rep, err := h.svc.ImportItems(c.Request.Context(), reqs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// ListItems godoc
// @Summary  List items
// @Tags     items
// @Produce  json
// @Param    family    query string false "device or book"
// @Param    available query bool   false "only items with a copy available"
// @Success  200 {object} map[string][]ItemResponse
// @Failure  400 {object} errorDTO
// @Router   /items [get]
func (h *Handler) ListItems(c *gin.Context) {
	f := ItemFilter{
		Family:        Family(c.Query("family")),
		AvailableOnly: parseBool(c.Query("available")),
	}
	list, err := h.svc.ListItems(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]ItemResponse, 0, len(list))
	for i := range list {
		out = append(out, buildItemResponse(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

// GetItem godoc
// @Summary  Get an item
// @Tags     items
// @Produce  json
// @Param    family path string true "device or book"
// @Param    id     path int    true "item id"
// @Success  200 {object} ItemResponse
// @Failure  400,404 {object} errorDTO
// @Router   /items/{family}/{id} [get]
func (h *Handler) GetItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	it, err := h.svc.GetItem(c.Request.Context(), Family(c.Param("family")), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, buildItemResponse(it))
}

// RemoveItem godoc
// @Summary  Remove an item with no loan history
// @Tags     items
// @Param    family path string true "device or book"
// @Param    id     path int    true "item id"
// @Success  204
// @Failure  400,404,409 {object} errorDTO
// @Security BearerAuth
// @Router   /items/{family}/{id} [delete]
func (h *Handler) RemoveItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveItem(c.Request.Context(), Family(c.Param("family")), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PurgeItemLoans godoc
// @Summary  Delete all loan records of an item
// @Tags     items
// @Produce  json
// @Param    family path string true "device or book"
// @Param    id     path int    true "item id"
// @Success  200 {object} PurgeResponse
// @Failure  400,404 {object} errorDTO
// @Security BearerAuth
// @Router   /items/{family}/{id}/loans [delete]
func (h *Handler) PurgeItemLoans(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.PurgeItemLoans(c.Request.Context(), Family(c.Param("family")), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, PurgeResponse{Deleted: res.Deleted, OpenLoansPurged: res.OpenLoansPurged})
}

// ---------- loans ----------

// BorrowItem godoc
// @Summary  Lend one copy of an item
// @Tags     loans
// @Accept   json
// @Produce  json
// @Param    body body LoanRequest true "borrower, item and family"
// @Success  201 {object} BorrowResponse
// @Failure  400,404,409 {object} errorDTO
// @Failure  503 {object} errorDTO
// @Security BearerAuth
// @Router   /loans [post]
func (h *Handler) BorrowItem(c *gin.Context) {
	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.BorrowItem(c.Request.Context(), req.BorrowerID, req.ItemID, req.Family)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Location", "/api/v1/loans/"+res.Loan.ULID)
	c.JSON(http.StatusCreated, BorrowResponse{Loan: buildLoanResponse(&res.Loan), QuantityAvailable: res.QuantityAvailable})
}

// ReturnItem godoc
// @Summary  Return an item, charging a fine when late
// @Tags     loans
// @Accept   json
// @Produce  json
// @Param    body body LoanRequest true "borrower, item and family"
// @Success  200 {object} ReturnResponse
// @Failure  400,404,409 {object} errorDTO
// @Failure  503 {object} errorDTO
// @Security BearerAuth
// @Router   /returns [post]
func (h *Handler) ReturnItem(c *gin.Context) {
	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.ReturnItem(c.Request.Context(), req.BorrowerID, req.ItemID, req.Family)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, buildReturnResponse(res))
}

// ListLoans godoc
// @Summary  List loans
// @Tags     loans
// @Produce  json
// @Param    borrower_id query int    false "borrower id"
// @Param    item_id     query int    false "item id"
// @Param    family      query string false "device or book"
// @Param    open        query bool   false "only open loans"
// @Success  200 {object} map[string][]LoanResponse
// @Failure  400 {object} errorDTO
// @Router   /loans [get]
func (h *Handler) ListLoans(c *gin.Context) {
	borrowerID, ok := queryID(c, "borrower_id")
	if !ok {
		return
	}
	itemID, ok := queryID(c, "item_id")
	if !ok {
		return
	}
	f := LoanFilter{
		BorrowerID: borrowerID,
		ItemID:     itemID,
		Family:     Family(c.Query("family")),
		OpenOnly:   parseBool(c.Query("open")),
	}
	list, err := h.svc.ListLoans(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]LoanResponse, 0, len(list))
	for i := range list {
		out = append(out, buildLoanResponse(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"loans": out})
}

// GetLoan godoc
// @Summary  Get a loan by its ULID
// @Tags     loans
// @Produce  json
// @Param    loan_ulid path string true "loan ULID"
// @Success  200 {object} LoanResponse
// @Failure  400,404 {object} errorDTO
// @Router   /loans/{loan_ulid} [get]
func (h *Handler) GetLoan(c *gin.Context) {
	l, err := h.svc.GetLoan(c.Request.Context(), c.Param("loan_ulid"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, buildLoanResponse(l))
}

// ---------- helpers ----------

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

// queryID reads an optional id filter. Absent means 0 (no filter); present
// but not a positive integer is a 400.
func queryID(c *gin.Context, name string) (int64, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func fail(c *gin.Context, err error) {
	var api *APIError
	if !errors.As(err, &api) {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorBody(CodeInternal, "internal error"))
		return
	}
	if api.Retryable() {
		c.Header("Retry-After", "1")
	}
	if api.Err != nil {
		_ = c.Error(api.Err)
	}
	c.JSON(ToHTTPStatus(err), errorBody(api.Code, api.Message))
}
