package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/procafees/cafe-pos/internal/projection"
)

// LiveHandler serves the event-derived views straight from memory.
// The overview answers without touching MySQL, which makes it both a
// cheap polling target for terminals and a way to inspect what the
// change feed has actually delivered.
type LiveHandler struct {
	Store *projection.Store
}

// NewLiveHandler constructs a new LiveHandler.
func NewLiveHandler(store *projection.Store) *LiveHandler {
	if store == nil {
		panic("nil store passed to NewLiveHandler")
	}
	return &LiveHandler{Store: store}
}

// Overview handles GET /v1/live/overview: the tenant's open orders,
// bar ticket columns, table availability counts and active session as
// derived from the change feed.
func (h *LiveHandler) Overview(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	preparing, ready := h.Store.Tickets(tenantID)
	available, occupied := h.Store.TableCounts(tenantID)
	return c.JSON(http.StatusOK, echo.Map{
		"open_orders": h.Store.OpenOrders(tenantID),
		"tickets":     echo.Map{"preparing": preparing, "ready": ready},
		"tables":      echo.Map{"available": available, "occupied": occupied},
		"session":     h.Store.ActiveSession(tenantID),
	})
}
