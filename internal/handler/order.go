package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/procafees/cafe-pos/internal/model"
	"github.com/procafees/cafe-pos/internal/queue"
	"github.com/procafees/cafe-pos/internal/repository"
	queue_publisher "github.com/procafees/cafe-pos/internal/service"
	"github.com/procafees/cafe-pos/internal/utils"
)

// OrderHandler groups the repositories the order coordinator needs.
// All methods assume JWT authentication and role validation have
// already been performed by middleware.  Each write runs inside a
// transaction so an order is never visible without its items or a
// ticket without its order.
type OrderHandler struct {
	OrderRepo   *repository.OrderRepo       // orders and order items
	TableRepo   *repository.TableRepo       // table occupation CAS
	TicketRepo  *repository.BarTicketRepo   // derived bar tickets
	SessionRepo *repository.CashSessionRepo // active session lookup at payment
}

// NewOrderHandler constructs a new OrderHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewOrderHandler(orderRepo *repository.OrderRepo, tableRepo *repository.TableRepo, ticketRepo *repository.BarTicketRepo, sessionRepo *repository.CashSessionRepo) *OrderHandler {
	if orderRepo == nil || tableRepo == nil || ticketRepo == nil || sessionRepo == nil {
		panic("nil repository passed to NewOrderHandler")
	}
	return &OrderHandler{
		OrderRepo:   orderRepo,
		TableRepo:   tableRepo,
		TicketRepo:  ticketRepo,
		SessionRepo: sessionRepo,
	}
}

// createOrderItem is one requested line of a new order.  The subtotal
// is recomputed server-side; any client-sent amount is ignored.
type createOrderItem struct {
	ProductID   uint64               `json:"product_id"`
	ProductName string               `json:"product_name"`
	UnitPrice   int64                `json:"unit_price"`
	Quantity    uint32               `json:"quantity"`
	Modifiers   []model.ItemModifier `json:"modifiers"`
	Notes       string               `json:"notes"`
	SendsToBar  bool                 `json:"sends_to_bar"`
}

type createOrderRequest struct {
	Type             string            `json:"type"`
	TableID          *uint64           `json:"table_id"`
	CustomerName     string            `json:"customer_name"`
	CustomerPhone    string            `json:"customer_phone"`
	CustomerAddress  string            `json:"customer_address"`
	AddressReference string            `json:"address_reference"`
	Discount         int64             `json:"discount"`
	ClientRequestID  string            `json:"client_request_id"`
	Items            []createOrderItem `json:"items"`
}

// validateCreateOrder checks the request against the intake rules.
// Returns an error message for the client, or "" when valid.
func validateCreateOrder(req *createOrderRequest) string {
	switch req.Type {
	case model.OrderTypeTable, model.OrderTypeTakeout, model.OrderTypeDelivery:
	default:
		return "type must be table, takeout or delivery"
	}
	if len(req.Items) == 0 {
		return "order must contain at least one item"
	}
	for _, it := range req.Items {
		if strings.TrimSpace(it.ProductName) == "" {
			return "every item needs a product name"
		}
		if it.Quantity < 1 {
			return "item quantity must be at least 1"
		}
		if it.UnitPrice < 0 {
			return "item unit price cannot be negative"
		}
	}
	if req.Discount < 0 {
		return "discount cannot be negative"
	}
	switch req.Type {
	case model.OrderTypeTable:
		if req.TableID == nil || *req.TableID == 0 {
			return "table orders require a table_id"
		}
	case model.OrderTypeTakeout:
		if strings.TrimSpace(req.CustomerName) == "" {
			return "takeout orders require a customer name"
		}
		if !utils.ValidPhone(req.CustomerPhone) {
			return "customer phone must contain 7 to 10 digits"
		}
	case model.OrderTypeDelivery:
		if strings.TrimSpace(req.CustomerName) == "" {
			return "delivery orders require a customer name"
		}
		if !utils.ValidPhone(req.CustomerPhone) {
			return "customer phone must contain 7 to 10 digits"
		}
		if strings.TrimSpace(req.CustomerAddress) == "" {
			return "delivery orders require a customer address"
		}
	}
	return ""
}

// buildOrderLines converts the requested items into order lines with
// server-computed subtotals and returns them with the order total.
// The total is the plain sum of the line subtotals; the discount is
// recorded on the order but never folded into the total.  Lines
// flagged sends_to_bar start in preparing with the send stamp set.
func buildOrderLines(reqItems []createOrderItem, tenantID uint64, now time.Time) ([]model.OrderItem, int64) {
	items := make([]model.OrderItem, 0, len(reqItems))
	var total int64
	for _, it := range reqItems {
		sub := utils.ItemSubtotal(it.UnitPrice, it.Quantity, it.Modifiers)
		total += sub
		item := model.OrderItem{
			TenantID:    tenantID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Modifiers:   it.Modifiers,
			Subtotal:    sub,
			Notes:       it.Notes,
			SendsToBar:  it.SendsToBar,
			BarStatus:   model.BarPending,
		}
		if it.SendsToBar {
			item.BarStatus = model.BarPreparing
			t := now
			item.SentToBarAt = &t
		}
		items = append(items, item)
	}
	return items, total
}

// deriveBarTickets returns exactly one ticket per sends_to_bar line,
// sharing the line's id and carrying the order's routing context plus
// the flattened modifier text for the bar display.  Lines that do not
// send to the bar never produce a ticket.
func deriveBarTickets(order *model.Order, items []model.OrderItem, now time.Time) []model.BarTicket {
	tickets := make([]model.BarTicket, 0, len(items))
	for _, it := range items {
		if !it.SendsToBar {
			continue
		}
		tickets = append(tickets, model.BarTicket{
			ID:              it.ID,
			TenantID:        order.TenantID,
			OrderID:         order.ID,
			OrderType:       order.Type,
			TableName:       order.TableName,
			CustomerName:    order.CustomerName,
			CustomerPhone:   order.CustomerPhone,
			CustomerAddress: order.CustomerAddress,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			Modifiers:       utils.FlattenModifiers(it.Modifiers),
			Notes:           it.Notes,
			Status:          model.TicketPreparing,
			SentToBarAt:     now,
		})
	}
	return tickets
}

// CreateOrder handles POST /v1/orders.  One transaction spans the
// table occupation, the order insert, its items and any derived bar
// tickets, so none of them is ever visible without the others.  A
// request retried with the same client_request_id returns the original
// order instead of placing a duplicate.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	act, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := validateCreateOrder(&req); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx := c.Request().Context()

	// Resolve the idempotency key before writing anything.  A retry of
	// an already-committed create resolves here.
	if req.ClientRequestID != "" {
		if existing, err := h.OrderRepo.GetByClientRequestID(ctx, act.TenantID, req.ClientRequestID); err == nil {
			return c.JSON(http.StatusOK, existing)
		} else if err != sql.ErrNoRows {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	} else {
		req.ClientRequestID = uuid.NewString()
	}

	// Table orders snapshot the table name onto the order; the CAS
	// inside the transaction is what actually protects the occupation.
	var table *model.Table
	if req.Type == model.OrderTypeTable {
		table, err = h.TableRepo.GetByID(ctx, act.TenantID, *req.TableID)
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}

	now := time.Now().UTC()
	order := model.Order{
		TenantID:        act.TenantID,
		Type:            req.Type,
		Discount:        req.Discount,
		ItemsTotal:      len(req.Items),
		CreatedBy:       act.ID,
		CreatedByName:   act.Name,
		ClientRequestID: req.ClientRequestID,
	}
	if table != nil {
		order.TableID = &table.ID
		order.TableName = &table.Name
	}
	if req.Type != model.OrderTypeTable {
		name := strings.TrimSpace(req.CustomerName)
		phone := strings.TrimSpace(req.CustomerPhone)
		order.CustomerName = &name
		order.CustomerPhone = &phone
		if req.Type == model.OrderTypeDelivery {
			addr := strings.TrimSpace(req.CustomerAddress)
			order.CustomerAddress = &addr
			if ref := strings.TrimSpace(req.AddressReference); ref != "" {
				order.AddressReference = &ref
			}
		}
	}

	items, total := buildOrderLines(req.Items, act.TenantID, now)
	order.TotalAmount = total

	tx, err := h.OrderRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.OrderRepo.CreateTx(ctx, tx, &order); err != nil {
		// A racing retry may have committed the same key between the
		// lookup above and this insert; resolve it the same way.
		if existing, lookupErr := h.OrderRepo.GetByClientRequestID(ctx, act.TenantID, order.ClientRequestID); lookupErr == nil {
			return c.JSON(http.StatusOK, existing)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order"})
	}

	if table != nil {
		if err := h.TableRepo.OccupyTx(ctx, tx, act.TenantID, table.ID, order.ID); err != nil {
			if errors.Is(err, repository.ErrTableNotAvailable) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "table is not available"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to occupy table"})
		}
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	items, err = h.OrderRepo.CreateItemsTx(ctx, tx, items)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order items"})
	}

	tickets := deriveBarTickets(&order, items, now)
	if err := h.TicketRepo.CreateBulkTx(ctx, tx, tickets); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create bar tickets"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit order"})
	}
	committed = true

	ev := queue.ChangeEvent{
		Action:   queue.ActionOrderCreated,
		TenantID: act.TenantID,
		Order:    &order,
		Items:    items,
		Tickets:  tickets,
	}
	if table != nil {
		occupied := *table
		occupied.Status = model.TableOccupied
		occupied.CurrentOrderID = &order.ID
		ev.Table = &occupied
	}
	_ = queue_publisher.PublishChange(ctx, ev)

	return c.JSON(http.StatusCreated, echo.Map{
		"order":   order,
		"items":   items,
		"tickets": tickets,
	})
}

// PayOrder handles POST /v1/orders/:id/pay.  The open → paid
// transition is a guarded conditional UPDATE; the currently active cash
// session is locked and attached so the sale is counted when the drawer
// is reconciled.  Payment with no session open is accepted and the
// order simply carries no session id.
func (h *OrderHandler) PayOrder(c echo.Context) error {
	act, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req struct {
		Method string `json:"method"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	switch req.Method {
	case model.MethodCash, model.MethodNequi, model.MethodQR:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "method must be cash, nequi or qr"})
	}

	ctx := c.Request().Context()
	tx, err := h.OrderRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var sessionID *uint64
	session, err := h.SessionRepo.ActiveForUpdateTx(ctx, tx, act.TenantID)
	switch {
	case err == nil:
		sessionID = &session.ID
	case errors.Is(err, repository.ErrNoActiveSession):
		c.Logger().Warnf("payment with no active cash session: tenant=%d order=%d", act.TenantID, orderID)
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if err := h.OrderRepo.PayTx(ctx, tx, act.TenantID, orderID, req.Method, act.ID, sessionID); err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "order is not open"})
		}
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to pay order"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit payment"})
	}
	committed = true

	order, err := h.OrderRepo.GetByID(ctx, act.TenantID, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	_ = queue_publisher.PublishChange(ctx, queue.ChangeEvent{
		Action:   queue.ActionOrderPaid,
		TenantID: act.TenantID,
		Order:    order,
	})
	return c.JSON(http.StatusOK, order)
}

// CancelOrder handles POST /v1/orders/:id/cancel (open → cancelled).
// An occupied table is not released automatically; the floor decides
// when the table frees up via the explicit status endpoint.
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	return h.transition(c, model.OrderCancelled, queue.ActionOrderCancelled)
}

// MarkDelivered handles POST /v1/orders/:id/deliver (open|paid →
// delivered).
func (h *OrderHandler) MarkDelivered(c echo.Context) error {
	return h.transition(c, model.OrderDelivered, queue.ActionOrderDelivered)
}

func (h *OrderHandler) transition(c echo.Context, to, action string) error {
	act, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx := c.Request().Context()
	if err := h.OrderRepo.Transition(ctx, act.TenantID, orderID, to); err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "transition not allowed"})
		}
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update order"})
	}
	order, err := h.OrderRepo.GetByID(ctx, act.TenantID, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	_ = queue_publisher.PublishChange(ctx, queue.ChangeEvent{
		Action:   action,
		TenantID: act.TenantID,
		Order:    order,
	})
	return c.JSON(http.StatusOK, order)
}

// ListOpen handles GET /v1/orders/open, newest first.
func (h *OrderHandler) ListOpen(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.OrderRepo.ListOpen(c.Request().Context(), tenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// GetOrderItems handles GET /v1/orders/:id/items.
func (h *OrderHandler) GetOrderItems(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx := c.Request().Context()
	if _, err := h.OrderRepo.GetByID(ctx, tenantID, orderID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items, err := h.OrderRepo.ListItems(ctx, tenantID, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// SalesReport handles GET /v1/reports/orders?start=&end=.  Accepts
// RFC3339 timestamps or plain dates.  The range is [start, end): a
// date-only end covers that whole day by snapping to the start of the
// next one.  Totals and the per-method breakdown are computed over
// orders paid in the range.
func (h *OrderHandler) SalesReport(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	start, err := parseReportTime(c.QueryParam("start"), false)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start"})
	}
	end, err := parseReportTime(c.QueryParam("end"), true)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end"})
	}
	if !end.After(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must be after start"})
	}
	orders, err := h.OrderRepo.ListPaidBetween(c.Request().Context(), tenantID, start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	var totalSales int64
	var byMethod model.MethodTotals
	for _, o := range orders {
		totalSales += o.TotalAmount
		if o.PaymentMethod != nil {
			byMethod.Add(*o.PaymentMethod, o.TotalAmount)
		}
	}
	var avg int64
	if len(orders) > 0 {
		avg = totalSales / int64(len(orders))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"orders":          orders,
		"orders_count":    len(orders),
		"total_sales":     totalSales,
		"total_by_method": byMethod,
		"average_ticket":  avg,
	})
}

// parseReportTime parses a report boundary.  Date-only values snap to
// the start of the day; an end boundary snaps to the start of the next
// day so the exclusive range covers the full final day, including its
// last second.
func parseReportTime(s string, exclusiveEnd bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if exclusiveEnd {
		t = t.AddDate(0, 0, 1)
	}
	return t.UTC(), nil
}
