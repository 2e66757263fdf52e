package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procafees/cafe-pos/internal/model"
	"github.com/procafees/cafe-pos/internal/repository"
)

func newTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func authed(c echo.Context) {
	c.Set("user_id", float64(7))
	c.Set("user_name", "Laura")
	c.Set("tenant_id", float64(3))
}

func newOrderHandler() *OrderHandler {
	return NewOrderHandler(
		repository.NewOrderRepo(nil),
		repository.NewTableRepo(nil),
		repository.NewBarTicketRepo(nil),
		repository.NewCashSessionRepo(nil),
	)
}

func TestCreateOrderRejectsUnauthenticated(t *testing.T) {
	h := newOrderHandler()
	c, rec := newTestContext(http.MethodPost, "/v1/orders", `{}`)
	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrderValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "unknown type",
			body: `{"type":"drive_thru","items":[{"product_name":"Latte","unit_price":4000,"quantity":1}]}`,
			want: "type must be",
		},
		{
			name: "no items",
			body: `{"type":"takeout","customer_name":"Ana","customer_phone":"3001234567","items":[]}`,
			want: "at least one item",
		},
		{
			name: "zero quantity",
			body: `{"type":"takeout","customer_name":"Ana","customer_phone":"3001234567","items":[{"product_name":"Latte","unit_price":4000,"quantity":0}]}`,
			want: "quantity must be at least 1",
		},
		{
			name: "negative unit price",
			body: `{"type":"takeout","customer_name":"Ana","customer_phone":"3001234567","items":[{"product_name":"Latte","unit_price":-1,"quantity":1}]}`,
			want: "unit price cannot be negative",
		},
		{
			name: "table order without table",
			body: `{"type":"table","items":[{"product_name":"Latte","unit_price":4000,"quantity":1}]}`,
			want: "table_id",
		},
		{
			name: "takeout without customer name",
			body: `{"type":"takeout","customer_phone":"3001234567","items":[{"product_name":"Latte","unit_price":4000,"quantity":1}]}`,
			want: "customer name",
		},
		{
			name: "takeout with short phone",
			body: `{"type":"takeout","customer_name":"Ana","customer_phone":"300-12","items":[{"product_name":"Latte","unit_price":4000,"quantity":1}]}`,
			want: "7 to 10 digits",
		},
		{
			name: "delivery without address",
			body: `{"type":"delivery","customer_name":"Ana","customer_phone":"3001234567","items":[{"product_name":"Latte","unit_price":4000,"quantity":1}]}`,
			want: "customer address",
		},
		{
			name: "negative discount",
			body: `{"type":"takeout","customer_name":"Ana","customer_phone":"3001234567","discount":-500,"items":[{"product_name":"Latte","unit_price":4000,"quantity":1}]}`,
			want: "discount",
		},
	}
	h := newOrderHandler()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodPost, "/v1/orders", tc.body)
			authed(c)
			require.NoError(t, h.CreateOrder(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestValidateCreateOrderAcceptsFormattedPhone(t *testing.T) {
	req := &createOrderRequest{
		Type:          model.OrderTypeTakeout,
		CustomerName:  "Ana",
		CustomerPhone: "(300) 123-4567",
		Items: []createOrderItem{
			{ProductName: "Latte", UnitPrice: 4000, Quantity: 2},
		},
	}
	assert.Empty(t, validateCreateOrder(req))
}

func TestPayOrderRejectsUnknownMethod(t *testing.T) {
	h := newOrderHandler()
	c, rec := newTestContext(http.MethodPost, "/v1/orders/12/pay", `{"method":"check"}`)
	c.SetParamNames("id")
	c.SetParamValues("12")
	authed(c)
	require.NoError(t, h.PayOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cash, nequi or qr")
}

func TestTransitionRejectsBadOrderID(t *testing.T) {
	h := newOrderHandler()
	c, rec := newTestContext(http.MethodPost, "/v1/orders/abc/cancel", ``)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	authed(c)
	require.NoError(t, h.CancelOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseReportTime(t *testing.T) {
	start, err := parseReportTime("2026-02-10", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), start)

	// A date-only end snaps to the start of the next day: the
	// exclusive range then includes a payment at 23:59:59.
	end, err := parseReportTime("2026-02-10", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC), end)
	lastSecond := time.Date(2026, 2, 10, 23, 59, 59, 0, time.UTC)
	assert.True(t, lastSecond.Before(end))

	exact, err := parseReportTime("2026-02-10T13:45:00Z", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 10, 13, 45, 0, 0, time.UTC), exact)

	_, err = parseReportTime("10/02/2026", false)
	assert.Error(t, err)
}

func TestBuildOrderLinesTotalIsSumOfSubtotals(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	reqItems := []createOrderItem{
		{ProductName: "Latte", UnitPrice: 4000, Quantity: 2},
		{
			ProductName: "Mocha", UnitPrice: 5000, Quantity: 1,
			Modifiers: []model.ItemModifier{
				{GroupID: 1, GroupName: "Leche", Options: []model.ModifierOption{
					{ID: 10, Name: "Avena", PriceDelta: 1500},
				}},
			},
		},
	}
	items, total := buildOrderLines(reqItems, 3, now)
	require.Len(t, items, 2)
	assert.Equal(t, int64(8000), items[0].Subtotal)
	assert.Equal(t, int64(6500), items[1].Subtotal)

	var sum int64
	for _, it := range items {
		sum += it.Subtotal
	}
	assert.Equal(t, sum, total)
	assert.Equal(t, int64(14500), total)
}

func TestOrderTotalUnaffectedByDiscount(t *testing.T) {
	// A requested discount is recorded on the order but the stored
	// total stays the plain sum of the line subtotals.
	reqItems := []createOrderItem{{ProductName: "Latte", UnitPrice: 4000, Quantity: 2}}
	now := time.Now().UTC()

	_, total := buildOrderLines(reqItems, 3, now)
	assert.Equal(t, int64(8000), total)

	req := &createOrderRequest{
		Type:          model.OrderTypeTakeout,
		CustomerName:  "Ana",
		CustomerPhone: "3001234567",
		Discount:      500,
		Items:         reqItems,
	}
	assert.Empty(t, validateCreateOrder(req))
	// The assembly never sees the discount, so the total above is what
	// the order stores regardless of it.
	_, again := buildOrderLines(req.Items, 3, now)
	assert.Equal(t, total, again)
}

func TestDeriveBarTicketsFanOut(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tableName := "Mesa 4"
	order := &model.Order{
		ID:        21,
		TenantID:  3,
		Type:      model.OrderTypeTable,
		TableName: &tableName,
	}
	items, _ := buildOrderLines([]createOrderItem{
		{ProductName: "Latte", UnitPrice: 4000, Quantity: 2, SendsToBar: true,
			Modifiers: []model.ItemModifier{
				{GroupName: "Leche", Options: []model.ModifierOption{{Name: "Avena"}}},
				{GroupName: "Tamaño", Options: []model.ModifierOption{{Name: "Grande"}}},
			}},
		{ProductName: "Croissant", UnitPrice: 6000, Quantity: 1, SendsToBar: false},
		{ProductName: "Capuchino", UnitPrice: 4500, Quantity: 1, SendsToBar: true},
	}, 3, now)
	items[0].ID, items[1].ID, items[2].ID = 101, 102, 103
	for i := range items {
		items[i].OrderID = order.ID
	}

	tickets := deriveBarTickets(order, items, now)
	require.Len(t, tickets, 2)

	// Exactly one ticket per sends_to_bar line, sharing the line's id.
	assert.Equal(t, uint64(101), tickets[0].ID)
	assert.Equal(t, uint64(103), tickets[1].ID)
	for _, tk := range tickets {
		assert.Equal(t, order.ID, tk.OrderID)
		assert.Equal(t, model.TicketPreparing, tk.Status)
		assert.Equal(t, now, tk.SentToBarAt)
		require.NotNil(t, tk.TableName)
		assert.Equal(t, tableName, *tk.TableName)
	}
	assert.Equal(t, "Leche: Avena; Tamaño: Grande", tickets[0].Modifiers)
	assert.Empty(t, tickets[1].Modifiers)

	// Lines kept out of the bar start pending with no send stamp.
	assert.Equal(t, model.BarPending, items[1].BarStatus)
	assert.Nil(t, items[1].SentToBarAt)
	assert.Equal(t, model.BarPreparing, items[0].BarStatus)
	require.NotNil(t, items[0].SentToBarAt)
}
