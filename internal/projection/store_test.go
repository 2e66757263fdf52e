package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procafees/cafe-pos/internal/model"
	"github.com/procafees/cafe-pos/internal/queue"
)

const tenant = uint64(7)

func openOrder(id uint64, createdAt time.Time) *model.Order {
	return &model.Order{
		ID:        id,
		TenantID:  tenant,
		Type:      model.OrderTypeTable,
		Status:    model.OrderOpen,
		CreatedAt: createdAt,
	}
}

func ticket(id uint64, status string, sentAt time.Time) model.BarTicket {
	return model.BarTicket{
		ID:          id,
		TenantID:    tenant,
		OrderID:     id,
		Status:      status,
		SentToBarAt: sentAt,
	}
}

func TestOpenOrdersView(t *testing.T) {
	s := NewStore()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	s.Apply(queue.ChangeEvent{Action: queue.ActionOrderCreated, TenantID: tenant, Order: openOrder(1, base)})
	s.Apply(queue.ChangeEvent{Action: queue.ActionOrderCreated, TenantID: tenant, Order: openOrder(2, base.Add(time.Minute))})

	orders := s.OpenOrders(tenant)
	require.Len(t, orders, 2)
	// newest first
	assert.Equal(t, uint64(2), orders[0].ID)
	assert.Equal(t, uint64(1), orders[1].ID)

	// paying an order removes it from the open view
	paid := openOrder(2, base.Add(time.Minute))
	paid.Status = model.OrderPaid
	s.Apply(queue.ChangeEvent{Action: queue.ActionOrderPaid, TenantID: tenant, Order: paid})

	orders = s.OpenOrders(tenant)
	require.Len(t, orders, 1)
	assert.Equal(t, uint64(1), orders[0].ID)

	// other tenants see nothing
	assert.Empty(t, s.OpenOrders(tenant+1))
}

func TestTicketPartitionsOrderedOldestFirst(t *testing.T) {
	s := NewStore()
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// one atomic order.created carrying two tickets
	s.Apply(queue.ChangeEvent{
		Action:   queue.ActionOrderCreated,
		TenantID: tenant,
		Order:    openOrder(1, base),
		Tickets: []model.BarTicket{
			ticket(11, model.TicketPreparing, base.Add(2*time.Minute)),
			ticket(12, model.TicketPreparing, base),
		},
	})
	s.Apply(queue.ChangeEvent{
		Action:   queue.ActionOrderCreated,
		TenantID: tenant,
		Order:    openOrder(2, base.Add(time.Minute)),
		Tickets:  []model.BarTicket{ticket(13, model.TicketPreparing, base.Add(time.Minute))},
	})

	preparing, ready := s.Tickets(tenant)
	require.Len(t, preparing, 3)
	assert.Empty(t, ready)
	// oldest first regardless of arrival order
	assert.Equal(t, []uint64{12, 13, 11}, []uint64{preparing[0].ID, preparing[1].ID, preparing[2].ID})

	// ready moves the ticket across partitions
	rdy := ticket(12, model.TicketReady, base)
	now := base.Add(10 * time.Minute)
	rdy.ReadyAt = &now
	s.Apply(queue.ChangeEvent{Action: queue.ActionTicketReady, TenantID: tenant, Tickets: []model.BarTicket{rdy}})

	preparing, ready = s.Tickets(tenant)
	assert.Len(t, preparing, 2)
	require.Len(t, ready, 1)
	assert.Equal(t, uint64(12), ready[0].ID)

	// reversal brings it back and the re-applied event is idempotent
	prep := ticket(12, model.TicketPreparing, base)
	ev := queue.ChangeEvent{Action: queue.ActionTicketPreparing, TenantID: tenant, Tickets: []model.BarTicket{prep}}
	s.Apply(ev)
	s.Apply(ev) // at-least-once delivery
	preparing, ready = s.Tickets(tenant)
	assert.Len(t, preparing, 3)
	assert.Empty(t, ready)
}

func TestTableCounts(t *testing.T) {
	s := NewStore()
	s.SeedTables(tenant, []model.Table{
		{ID: 1, TenantID: tenant, Number: 1, Status: model.TableAvailable},
		{ID: 2, TenantID: tenant, Number: 2, Status: model.TableAvailable},
		{ID: 3, TenantID: tenant, Number: 3, Status: model.TableReserved},
	})

	available, occupied := s.TableCounts(tenant)
	assert.Equal(t, 2, available)
	assert.Equal(t, 0, occupied)

	orderID := uint64(9)
	s.Apply(queue.ChangeEvent{
		Action:   queue.ActionTableUpdated,
		TenantID: tenant,
		Table:    &model.Table{ID: 2, TenantID: tenant, Number: 2, Status: model.TableOccupied, CurrentOrderID: &orderID},
	})

	available, occupied = s.TableCounts(tenant)
	assert.Equal(t, 1, available)
	assert.Equal(t, 1, occupied)
}

func TestActiveSessionView(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.ActiveSession(tenant))

	s.Apply(queue.ChangeEvent{
		Action:   queue.ActionSessionOpened,
		TenantID: tenant,
		Session:  &model.CashSession{ID: 5, TenantID: tenant, InitialCash: 50000, IsActive: true},
	})
	sess := s.ActiveSession(tenant)
	require.NotNil(t, sess)
	assert.Equal(t, uint64(5), sess.ID)
	assert.Equal(t, int64(50000), sess.InitialCash)

	// closing clears the view
	s.Apply(queue.ChangeEvent{
		Action:   queue.ActionSessionClosed,
		TenantID: tenant,
		Session:  &model.CashSession{ID: 5, TenantID: tenant, IsActive: false},
	})
	assert.Nil(t, s.ActiveSession(tenant))

	// closing a stale session id never clears a newer one
	s.Apply(queue.ChangeEvent{
		Action:   queue.ActionSessionOpened,
		TenantID: tenant,
		Session:  &model.CashSession{ID: 6, TenantID: tenant, IsActive: true},
	})
	s.Apply(queue.ChangeEvent{
		Action:   queue.ActionSessionClosed,
		TenantID: tenant,
		Session:  &model.CashSession{ID: 5, TenantID: tenant, IsActive: false},
	})
	require.NotNil(t, s.ActiveSession(tenant))
	assert.Equal(t, uint64(6), s.ActiveSession(tenant).ID)
}
