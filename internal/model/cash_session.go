package model

import "time"

// MethodTotals breaks session sales down by payment method.  Amounts
// are whole COP.
type MethodTotals struct {
	Cash  int64 `json:"cash"`  // total paid in cash
	Nequi int64 `json:"nequi"` // total paid via Nequi
	QR    int64 `json:"qr"`    // total paid via QR
}

// Add accumulates an order total under the given payment method.
// Unknown methods are ignored, matching how the register treats
// historical rows with no method set.
func (t *MethodTotals) Add(method string, amount int64) {
	switch method {
	case MethodCash:
		t.Cash += amount
	case MethodNequi:
		t.Nequi += amount
	case MethodQR:
		t.QR += amount
	}
}

// CashSession is one cashier shift, bounded by an open/close pair.  At
// most one session per tenant is active at a time.  A session is
// mutated exactly once, on close, and is a frozen historical record
// afterwards.
//
// Fields:
//
//	OpenedAt/OpenedBy/OpenedByName – opening stamp.
//	InitialCash      – cash counted into the drawer at open.
//	ClosedAt/ClosedBy/ClosedByName – closing stamp, null while active.
//	FinalCash        – cash counted at close.
//	ExpectedCash     – initial cash plus cash-method sales.
//	CashDifference   – final minus expected; positive is a surplus,
//	                   negative a shortage.
//	TotalSales       – sum of all paid order totals in the session.
//	TotalByMethod    – sales broken down by payment method.
//	OrdersCount      – number of paid orders reconciled.
//	IsActive         – true for the single open session of a tenant.
type CashSession struct {
	ID             uint64       `json:"id"`              // cash_sessions.id
	TenantID       uint64       `json:"tenant_id"`       // cash_sessions.tenant_id
	OpenedAt       time.Time    `json:"opened_at"`       // cash_sessions.opened_at
	OpenedBy       uint64       `json:"opened_by"`       // cash_sessions.opened_by
	OpenedByName   string       `json:"opened_by_name"`  // cash_sessions.opened_by_name
	InitialCash    int64        `json:"initial_cash"`    // cash_sessions.initial_cash (whole COP)
	ClosedAt       *time.Time   `json:"closed_at"`       // cash_sessions.closed_at (nullable)
	ClosedBy       *uint64      `json:"closed_by"`       // cash_sessions.closed_by (nullable)
	ClosedByName   *string      `json:"closed_by_name"`  // cash_sessions.closed_by_name (nullable)
	FinalCash      *int64       `json:"final_cash"`      // cash_sessions.final_cash (nullable)
	ExpectedCash   *int64       `json:"expected_cash"`   // cash_sessions.expected_cash (nullable)
	CashDifference *int64       `json:"cash_difference"` // cash_sessions.cash_difference (nullable)
	TotalSales     int64        `json:"total_sales"`     // cash_sessions.total_sales
	TotalByMethod  MethodTotals `json:"total_by_method"` // cash_sessions.total_cash/nequi/qr
	OrdersCount    int          `json:"orders_count"`    // cash_sessions.orders_count
	Notes          string       `json:"notes"`           // cash_sessions.notes
	IsActive       bool         `json:"is_active"`       // cash_sessions.is_active
}

// Reconcile computes the closing figures for a session from the counted
// drawer amount and the aggregated method totals.  Expected cash is the
// opening float plus every cash-method sale; the difference is signed
// (positive means the drawer holds more than expected).
func Reconcile(initialCash, finalCash int64, byMethod MethodTotals) (expected, difference int64) {
	expected = initialCash + byMethod.Cash
	difference = finalCash - expected
	return expected, difference
}
