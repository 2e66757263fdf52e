package model

import "time"

// Order types.  Table orders reference a table; takeout and delivery
// orders carry customer contact details instead.
const (
	OrderTypeTable    = "table"
	OrderTypeTakeout  = "takeout"
	OrderTypeDelivery = "delivery"
)

// Order statuses.  The allowed transitions are open → paid, open →
// cancelled, open → delivered and paid → delivered; everything else is
// rejected.  See CanTransition.
const (
	OrderOpen      = "open"
	OrderPaid      = "paid"
	OrderCancelled = "cancelled"
	OrderDelivered = "delivered"
)

// Payment statuses for an order.
const (
	PaymentPending = "pending"
	PaymentPartial = "partial"
	PaymentPaid    = "paid"
)

// Payment methods accepted at the register.
const (
	MethodCash  = "cash"
	MethodNequi = "nequi"
	MethodQR    = "qr"
)

// Order is a customer's tab for a table, takeout or delivery.  Financial
// fields are fixed at creation; only the status fields and timestamps
// mutate afterwards (append-only ledger semantics).
//
// Fields:
//
//	ID               – primary key identifier.
//	TenantID         – owning tenant.
//	Type             – table, takeout or delivery.
//	TableID/TableName – referenced table, set only for table orders.
//	CustomerName/Phone/Address/AddressReference – contact details for
//	                   takeout and delivery orders.
//	Status           – open, paid, cancelled or delivered.
//	PaymentStatus    – pending, partial or paid.
//	PaymentMethod    – cash, nequi or qr; set only at payment time.
//	ItemsTotal       – number of item lines on the order.
//	TotalAmount      – sum of item subtotals in whole COP; never
//	                   recomputed after creation.  The discount is
//	                   recorded alongside, never folded into the total.
//	Discount         – discount in whole COP.
//	CreatedBy/CreatedByName – actor who placed the order.
//	PaidAt/PaidBy    – payment stamp, null while open.
//	CashSessionID    – cash session the payment was attributed to; null
//	                   when paid with no session open.
//	ClientRequestID  – idempotency key supplied by (or generated for) the
//	                   terminal; retrying a create with the same key
//	                   returns the original order instead of a duplicate.
type Order struct {
	ID               uint64     `json:"id"`                // orders.id
	TenantID         uint64     `json:"tenant_id"`         // orders.tenant_id
	Type             string     `json:"type"`              // orders.type
	TableID          *uint64    `json:"table_id"`          // orders.table_id (nullable)
	TableName        *string    `json:"table_name"`        // orders.table_name (nullable)
	CustomerName     *string    `json:"customer_name"`     // orders.customer_name (nullable)
	CustomerPhone    *string    `json:"customer_phone"`    // orders.customer_phone (nullable)
	CustomerAddress  *string    `json:"customer_address"`  // orders.customer_address (nullable)
	AddressReference *string    `json:"address_reference"` // orders.address_reference (nullable)
	Status           string     `json:"status"`            // orders.status
	PaymentStatus    string     `json:"payment_status"`    // orders.payment_status
	PaymentMethod    *string    `json:"payment_method"`    // orders.payment_method (nullable)
	ItemsTotal       int        `json:"items_total"`       // orders.items_total
	TotalAmount      int64      `json:"total_amount"`      // orders.total_amount (whole COP)
	Discount         int64      `json:"discount"`          // orders.discount
	CreatedBy        uint64     `json:"created_by"`        // orders.created_by
	CreatedByName    string     `json:"created_by_name"`   // orders.created_by_name
	PaidAt           *time.Time `json:"paid_at"`           // orders.paid_at (nullable)
	PaidBy           *uint64    `json:"paid_by"`           // orders.paid_by (nullable)
	CashSessionID    *uint64    `json:"cash_session_id"`   // orders.cash_session_id (nullable)
	ClientRequestID  string     `json:"client_request_id"` // orders.client_request_id
	CreatedAt        time.Time  `json:"created_at"`        // orders.created_at
	UpdatedAt        time.Time  `json:"updated_at"`        // orders.updated_at
}

// CanTransition reports whether an order may move from one status to
// another.  Open orders can be paid, cancelled or delivered directly
// (a bar-only tab handed over without payment first); paid orders can
// still be marked delivered.  Cancelled and delivered are terminal.
func CanTransition(from, to string) bool {
	switch from {
	case OrderOpen:
		return to == OrderPaid || to == OrderCancelled || to == OrderDelivered
	case OrderPaid:
		return to == OrderDelivered
	default:
		return false
	}
}
