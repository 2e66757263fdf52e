package model

import "time"

// Bar ticket statuses.  The transition preparing → ready is reversible:
// bar staff can push a ticket back when it was marked ready by mistake.
const (
	TicketPreparing = "preparing"
	TicketReady     = "ready"
)

// BarTicket is the bar-facing work item derived from one order item
// flagged with sends_to_bar.  It shares its identifier with the
// originating item for direct correlation and is created in the same
// atomic write as the order and its items.
//
// Fields:
//
//	ID          – identifier, equal to the originating order item's id.
//	OrderID     – order the item belongs to.
//	OrderType   – table, takeout or delivery; shown on the bar display.
//	TableName/Customer fields – routing context for the bar display,
//	              copied from the order at creation.
//	Modifiers   – flattened human-readable rendering of the item's
//	              modifiers ("Milk: oat; Size: large").
//	Status      – preparing or ready.
//	SentToBarAt – set at creation; tickets are displayed oldest first.
//	ReadyAt     – set on the transition to ready, cleared on reversal.
type BarTicket struct {
	ID              uint64     `json:"id"`               // bar_tickets.id
	TenantID        uint64     `json:"tenant_id"`        // bar_tickets.tenant_id
	OrderID         uint64     `json:"order_id"`         // bar_tickets.order_id
	OrderType       string     `json:"order_type"`       // bar_tickets.order_type
	TableName       *string    `json:"table_name"`       // bar_tickets.table_name (nullable)
	CustomerName    *string    `json:"customer_name"`    // bar_tickets.customer_name (nullable)
	CustomerPhone   *string    `json:"customer_phone"`   // bar_tickets.customer_phone (nullable)
	CustomerAddress *string    `json:"customer_address"` // bar_tickets.customer_address (nullable)
	ProductName     string     `json:"product_name"`     // bar_tickets.product_name
	Quantity        uint32     `json:"quantity"`         // bar_tickets.quantity
	Modifiers       string     `json:"modifiers"`        // bar_tickets.modifiers (flattened text)
	Notes           string     `json:"notes"`            // bar_tickets.notes
	Status          string     `json:"status"`           // bar_tickets.status
	SentToBarAt     time.Time  `json:"sent_to_bar_at"`   // bar_tickets.sent_to_bar_at
	ReadyAt         *time.Time `json:"ready_at"`         // bar_tickets.ready_at (nullable)
	CreatedAt       time.Time  `json:"created_at"`       // bar_tickets.created_at
}
