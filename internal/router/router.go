package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/procafees/cafe-pos/internal/handler"
	"github.com/procafees/cafe-pos/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// Handlers bundles every authenticated handler the API mounts.
type Handlers struct {
	Orders    *handler.OrderHandler
	Tables    *handler.TableHandler
	Bar       *handler.BarHandler
	Cash      *handler.CashHandler
	Inventory *handler.InventoryHandler
	Live      *handler.LiveHandler
}

// RegisterAPI registers the authenticated surface under /v1.  The rate
// limiter wraps the whole group; the response cache only wraps the live
// read views the terminals poll.  Roles: waiters place and deliver
// orders and work the bar display, cashiers additionally handle money,
// admins additionally provision tables and manage inventory.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, cache, ratelimit echo.MiddlewareFunc) {
	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("admin", "cashier", "waiter"),
		ratelimit,
	)

	// ---- Orders ----
	g.POST("/orders", h.Orders.CreateOrder)
	g.GET("/orders/open", h.Orders.ListOpen, cache)
	g.GET("/orders/:id/items", h.Orders.GetOrderItems)
	g.POST("/orders/:id/cancel", h.Orders.CancelOrder)
	g.POST("/orders/:id/deliver", h.Orders.MarkDelivered)

	// ---- Tables ----
	g.GET("/tables", h.Tables.ListTables, cache)
	g.PATCH("/tables/:id/status", h.Tables.UpdateTableStatus)

	// ---- Live views (in-memory, no cache layer needed) ----
	g.GET("/live/overview", h.Live.Overview)

	// ---- Bar display ----
	g.GET("/bar/tickets", h.Bar.ListTickets, cache)
	g.POST("/bar/tickets/:id/ready", h.Bar.MarkReady)
	g.POST("/bar/tickets/:id/preparing", h.Bar.MarkPreparing)

	// ---- Money: cashier and admin only ----
	money := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("admin", "cashier"),
		ratelimit,
	)
	money.POST("/orders/:id/pay", h.Orders.PayOrder)
	money.GET("/reports/orders", h.Orders.SalesReport)
	money.POST("/cash/sessions", h.Cash.OpenSession)
	money.POST("/cash/sessions/close", h.Cash.CloseSession)
	money.GET("/cash/sessions", h.Cash.ListSessions)
	money.GET("/cash/sessions/active", h.Cash.GetActive)
	money.GET("/cash/sessions/:id/summary", h.Cash.GetSummary)

	// ---- Admin: provisioning and stock ----
	admin := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("admin"),
		ratelimit,
	)
	admin.POST("/tables", h.Tables.CreateTable)
	admin.POST("/inventory/items", h.Inventory.CreateItem)
	admin.GET("/inventory/items", h.Inventory.ListItems)
	admin.POST("/inventory/items/:id/movements", h.Inventory.RecordMovement)
	admin.GET("/inventory/items/:id/movements", h.Inventory.ListMovements)
}
