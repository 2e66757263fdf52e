// Package projection maintains the in-memory live views each terminal
// renders: open orders, the bar's preparing/ready ticket lists, the
// table map with availability counts and the active cash session.  The
// views are pure read-side derivations of the change-event feed; they
// are never written to directly and the store never talks to the
// database.
package projection

import (
	"sort"
	"sync"

	"github.com/procafees/cafe-pos/internal/model"
	"github.com/procafees/cafe-pos/internal/queue"
)

// tenantViews holds the derived state of one tenant.  All entity maps
// are keyed by entity ID.
type tenantViews struct {
	openOrders    map[uint64]model.Order
	tickets       map[uint64]model.BarTicket
	tables        map[uint64]model.Table
	activeSession *model.CashSession
}

func newTenantViews() *tenantViews {
	return &tenantViews{
		openOrders: make(map[uint64]model.Order),
		tickets:    make(map[uint64]model.BarTicket),
		tables:     make(map[uint64]model.Table),
	}
}

// Store derives and serves the live views.  Apply is called with every
// change event, either by the broker consumer or directly in tests;
// because one event carries every entity touched by one atomic write,
// a reader never sees a ticket whose order is missing from the views.
// All methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	tenants map[uint64]*tenantViews
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{tenants: make(map[uint64]*tenantViews)}
}

func (s *Store) views(tenantID uint64) *tenantViews {
	v, ok := s.tenants[tenantID]
	if !ok {
		v = newTenantViews()
		s.tenants[tenantID] = v
	}
	return v
}

// Apply folds one change event into the views.  Events are applied
// atomically under the store lock: a reader observes either none or
// all of an event's entities.  Delivery is at-least-once, so applying
// the same event twice must land in the same state; every branch below
// is an upsert or an idempotent removal.
func (s *Store) Apply(ev queue.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.views(ev.TenantID)

	if ev.Order != nil {
		if ev.Order.Status == model.OrderOpen {
			v.openOrders[ev.Order.ID] = *ev.Order
		} else {
			delete(v.openOrders, ev.Order.ID)
		}
	}
	for _, t := range ev.Tickets {
		v.tickets[t.ID] = t
	}
	if ev.Table != nil {
		v.tables[ev.Table.ID] = *ev.Table
	}
	if ev.Session != nil {
		if ev.Session.IsActive {
			sess := *ev.Session
			v.activeSession = &sess
		} else if v.activeSession != nil && v.activeSession.ID == ev.Session.ID {
			v.activeSession = nil
		}
	}
}

// SeedTables primes the table view from a database read at startup,
// before the event feed takes over.
func (s *Store) SeedTables(tenantID uint64, tables []model.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.views(tenantID)
	for _, t := range tables {
		v.tables[t.ID] = t
	}
}

// OpenOrders returns the tenant's open orders newest first.
func (s *Store) OpenOrders(tenantID uint64) []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.tenants[tenantID]
	if !ok {
		return []model.Order{}
	}
	orders := make([]model.Order, 0, len(v.openOrders))
	for _, o := range v.openOrders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}

// Tickets returns the tenant's bar tickets partitioned into preparing
// and ready, each ordered by sent_to_bar_at ascending (oldest first,
// the order the bar works through them).
func (s *Store) Tickets(tenantID uint64) (preparing, ready []model.BarTicket) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	preparing = make([]model.BarTicket, 0)
	ready = make([]model.BarTicket, 0)
	v, ok := s.tenants[tenantID]
	if !ok {
		return preparing, ready
	}
	for _, t := range v.tickets {
		switch t.Status {
		case model.TicketPreparing:
			preparing = append(preparing, t)
		case model.TicketReady:
			ready = append(ready, t)
		}
	}
	byAge := func(list []model.BarTicket) func(i, j int) bool {
		return func(i, j int) bool {
			return list[i].SentToBarAt.Before(list[j].SentToBarAt)
		}
	}
	sort.Slice(preparing, byAge(preparing))
	sort.Slice(ready, byAge(ready))
	return preparing, ready
}

// TableCounts returns the number of available and occupied tables.
// The counts are pure projections over the live table set, never
// stored values.
func (s *Store) TableCounts(tenantID uint64) (available, occupied int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.tenants[tenantID]
	if !ok {
		return 0, 0
	}
	for _, t := range v.tables {
		switch t.Status {
		case model.TableAvailable:
			available++
		case model.TableOccupied:
			occupied++
		}
	}
	return available, occupied
}

// ActiveSession returns the tenant's active cash session view, or nil
// when no drawer is open.
func (s *Store) ActiveSession(tenantID uint64) *model.CashSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.tenants[tenantID]
	if !ok || v.activeSession == nil {
		return nil
	}
	sess := *v.activeSession
	return &sess
}
