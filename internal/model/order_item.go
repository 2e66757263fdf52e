package model

import "time"

// Bar statuses for an order item.  Only items with SendsToBar set ever
// leave pending.
const (
	BarPending   = "pending"
	BarPreparing = "preparing"
	BarReady     = "ready"
	BarDelivered = "delivered"
)

// ModifierOption is one selected option inside a modifier group, with
// the price delta it contributes to the item subtotal.
type ModifierOption struct {
	ID         uint64 `json:"id"`          // catalog option id
	Name       string `json:"name"`        // option display name
	PriceDelta int64  `json:"price_delta"` // delta in whole COP, may be negative
}

// ItemModifier is one modifier group applied to an order item together
// with the options the customer selected.  The full structure is stored
// on the item so later catalog edits never change a placed order.
type ItemModifier struct {
	GroupID   uint64           `json:"group_id"`   // catalog group id
	GroupName string           `json:"group_name"` // group display name
	Options   []ModifierOption `json:"options"`    // selected options, in order
}

// OrderItem is one line on an order.  Items are created together with
// their order and are immutable in their financial fields afterwards;
// only the bar status and its timestamps change.
//
// Fields:
//
//	ID          – primary key identifier, shared with the bar ticket when
//	              the item is sent to the bar.
//	OrderID     – owning order.
//	ProductID/ProductName/UnitPrice – copied from the catalog at order
//	              time so the item survives catalog edits.
//	Quantity    – number of units, at least 1.
//	Modifiers   – selected modifier groups and options.
//	Subtotal    – (unit price + sum of option deltas) × quantity.
//	SendsToBar  – copied from the product; fixed at creation.
//	BarStatus   – pending, preparing, ready or delivered.
type OrderItem struct {
	ID          uint64         `json:"id"`             // order_items.id
	TenantID    uint64         `json:"tenant_id"`      // order_items.tenant_id
	OrderID     uint64         `json:"order_id"`       // order_items.order_id
	ProductID   uint64         `json:"product_id"`     // order_items.product_id
	ProductName string         `json:"product_name"`   // order_items.product_name
	UnitPrice   int64          `json:"unit_price"`     // order_items.unit_price (whole COP)
	Quantity    uint32         `json:"quantity"`       // order_items.quantity
	Modifiers   []ItemModifier `json:"modifiers"`      // order_items.modifiers (JSON column)
	Subtotal    int64          `json:"subtotal"`       // order_items.subtotal (whole COP)
	Notes       string         `json:"notes"`          // order_items.notes
	SendsToBar  bool           `json:"sends_to_bar"`   // order_items.sends_to_bar
	BarStatus   string         `json:"bar_status"`     // order_items.bar_status
	SentToBarAt *time.Time     `json:"sent_to_bar_at"` // order_items.sent_to_bar_at (nullable)
	ReadyAt     *time.Time     `json:"ready_at"`       // order_items.ready_at (nullable)
}
