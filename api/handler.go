package api

import (
	"errors"
	"net/http"
	"time"

	"api_pos/internal/drawer"
	"api_pos/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// posHandler holds the sales service and the drawer manager and
// implements the HTTP handlers for both.
type posHandler struct {
	salesService *sales.Service
	drawers      *drawer.Manager
	logger       *zap.Logger
}

// NewPOSHandler creates a new handler for the POS endpoints.
func NewPOSHandler(salesService *sales.Service, drawers *drawer.Manager, logger *zap.Logger) *posHandler {
	return &posHandler{
		salesService: salesService,
		drawers:      drawers,
		logger:       logger,
	}
}

// writeError maps engine errors onto HTTP status codes. Validation
// problems go back to the user, conflicts tell the client to re-read,
// anything else is a 500 with the detail kept in the log.
func (h *posHandler) writeError(ctx *gin.Context, err error) {
	var vErr *sales.ValidationError
	switch {
	case errors.As(err, &vErr):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": vErr.Msg})
	case errors.Is(err, sales.ErrNotFound), errors.Is(err, drawer.ErrNoSession):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, sales.ErrInvalidStatus):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, sales.ErrConflict), errors.Is(err, sales.ErrInvalidTransition),
		errors.Is(err, drawer.ErrSessionClosed):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// handleCreateSale handles the POST /sales endpoint.
func (h *posHandler) handleCreateSale(ctx *gin.Context) {
	var req struct {
		StoreID    string           `json:"store_id"`
		OperatorID string           `json:"operator_id"`
		Items      []sales.LineItem `json:"items"`
		Discount   float64          `json:"discount"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sale, err := h.salesService.Create(req.StoreID, req.OperatorID, req.Items, req.Discount)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, sale)
}

// handleFinalizeSale handles POST /sales/:id/finalize: the cashier
// collects payment and attaches the tender descriptor.
func (h *posHandler) handleFinalizeSale(ctx *gin.Context) {
	var req struct {
		Descriptor     string  `json:"descriptor"`
		AmountTendered float64 `json:"amount_tendered"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sale, err := h.salesService.Finalize(ctx.Param("id"), req.Descriptor, req.AmountTendered)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sale)
}

// handleCancelSale handles POST /sales/:id/cancel.
func (h *posHandler) handleCancelSale(ctx *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	event, err := h.salesService.Cancel(ctx.Param("id"), req.Reason)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, event)
}

// handleSearchSales handles GET /sales with optional store_id, status,
// from and to (RFC 3339) filters. The response carries the matching
// records plus the aggregated totals as metadata.
func (h *posHandler) handleSearchSales(ctx *gin.Context) {
	f := sales.Filter{
		StoreID: ctx.Query("store_id"),
		Status:  sales.Status(ctx.Query("status")),
	}
	if v := ctx.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be RFC 3339"})
			return
		}
		f.From = t
	}
	if v := ctx.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "'to' must be RFC 3339"})
			return
		}
		f.To = t
	}

	results, totals, err := h.salesService.Search(f)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"results": results, "totals": totals})
}

type drawerKeyRequest struct {
	OperatorID string `json:"operator_id"`
	StoreID    string `json:"store_id"`
	Date       string `json:"date"`
}

// handleOpenDrawer handles POST /drawer/open. Re-opening an existing
// session for the same day is allowed and updates its opening float.
func (h *posHandler) handleOpenDrawer(ctx *gin.Context) {
	var req struct {
		drawerKeyRequest
		OpeningFloat float64 `json:"opening_float"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	session, err := h.drawers.Open(req.OperatorID, req.StoreID, req.Date, req.OpeningFloat)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, session)
}

// handleWithdrawal handles POST /drawer/withdrawals.
func (h *posHandler) handleWithdrawal(ctx *gin.Context) {
	var req struct {
		drawerKeyRequest
		Amount float64 `json:"amount"`
		Reason string  `json:"reason"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	w, err := h.drawers.RecordWithdrawal(req.OperatorID, req.StoreID, req.Date, req.Amount, req.Reason)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, w)
}

// handleCloseDrawer handles POST /drawer/close: aggregates the store's
// business day, closes the session and returns the closing report.
func (h *posHandler) handleCloseDrawer(ctx *gin.Context) {
	var req struct {
		drawerKeyRequest
		CountedCash float64 `json:"counted_cash"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	totals, err := h.dayTotals(req.StoreID, req.Date)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	if _, err := h.drawers.Close(req.OperatorID, req.StoreID, req.Date, req.CountedCash, totals); err != nil {
		h.writeError(ctx, err)
		return
	}

	report, err := h.drawers.Report(req.OperatorID, req.StoreID, req.Date, totals)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// handleDrawerReport handles GET /drawer/report: the live
// reconciliation view for a session, open or closed.
func (h *posHandler) handleDrawerReport(ctx *gin.Context) {
	operatorID := ctx.Query("operator_id")
	storeID := ctx.Query("store_id")
	date := ctx.Query("date")

	totals, err := h.dayTotals(storeID, date)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	report, err := h.drawers.Report(operatorID, storeID, date, totals)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, report)
}

func (h *posHandler) dayTotals(storeID, date string) (sales.DailyTotals, error) {
	day, err := time.ParseInLocation(drawer.DateLayout, date, time.Local)
	if err != nil {
		return sales.DailyTotals{}, &sales.ValidationError{Msg: "date must be YYYY-MM-DD"}
	}
	return h.salesService.DayTotals(storeID, day)
}
