// Package queue defines the change events exchanged over the message
// broker.  Every committed write publishes exactly one event carrying
// the full entities touched by that write, so a subscriber rebuilding
// its views never observes items without their order or a ticket
// without its item.
package queue

import "github.com/procafees/cafe-pos/internal/model"

// Change actions.  One action per coordinator operation; the payload
// fields set on the event depend on the action.
const (
	ActionOrderCreated    = "order.created"
	ActionOrderPaid       = "order.paid"
	ActionOrderCancelled  = "order.cancelled"
	ActionOrderDelivered  = "order.delivered"
	ActionTicketReady     = "ticket.ready"
	ActionTicketPreparing = "ticket.preparing"
	ActionTableUpdated    = "table.updated"
	ActionSessionOpened   = "session.opened"
	ActionSessionClosed   = "session.closed"
)

// ChangeEvent is published to the pos.changes queue after a write
// commits.  Only the payload fields relevant to the action are set;
// an order.created event for a table order carries the order, its
// items, any derived bar tickets and the newly occupied table in one
// message.
type ChangeEvent struct {
	Action     string             `json:"action"`
	TenantID   uint64             `json:"tenant_id"`
	Order      *model.Order       `json:"order,omitempty"`
	Items      []model.OrderItem  `json:"items,omitempty"`
	Tickets    []model.BarTicket  `json:"tickets,omitempty"`
	Table      *model.Table       `json:"table,omitempty"`
	Session    *model.CashSession `json:"session,omitempty"`
	OccurredAt string             `json:"occurred_at"`
}
