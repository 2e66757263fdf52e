package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procafees/cafe-pos/internal/model"
	"github.com/procafees/cafe-pos/internal/projection"
	"github.com/procafees/cafe-pos/internal/queue"
)

func TestLiveOverviewRejectsUnauthenticated(t *testing.T) {
	h := NewLiveHandler(projection.NewStore())
	c, rec := newTestContext(http.MethodGet, "/v1/live/overview", "")

	require.NoError(t, h.Overview(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLiveOverviewServesAppliedEvents(t *testing.T) {
	store := projection.NewStore()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.Apply(queue.ChangeEvent{
		Action:   queue.ActionOrderCreated,
		TenantID: 3,
		Order: &model.Order{
			ID: 21, TenantID: 3, Type: model.OrderTypeTakeout,
			Status: model.OrderOpen, TotalAmount: 8000, CreatedAt: now,
		},
		Tickets: []model.BarTicket{
			{ID: 101, TenantID: 3, OrderID: 21, ProductName: "Latte",
				Status: model.TicketPreparing, SentToBarAt: now},
		},
	})
	store.SeedTables(3, []model.Table{
		{ID: 1, TenantID: 3, Status: model.TableAvailable},
		{ID: 2, TenantID: 3, Status: model.TableOccupied},
	})

	h := NewLiveHandler(store)
	c, rec := newTestContext(http.MethodGet, "/v1/live/overview", "")
	authed(c)

	require.NoError(t, h.Overview(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"total_amount":8000`)
	assert.Contains(t, body, `"product_name":"Latte"`)
	assert.Contains(t, body, `"available":1`)
	assert.Contains(t, body, `"occupied":1`)
	assert.Contains(t, body, `"session":null`)
}
