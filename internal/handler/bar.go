package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/procafees/cafe-pos/internal/model"
	"github.com/procafees/cafe-pos/internal/queue"
	"github.com/procafees/cafe-pos/internal/repository"
	queue_publisher "github.com/procafees/cafe-pos/internal/service"
)

// BarHandler exposes the bar display: the ticket queue and the
// preparing/ready toggles.  A ticket's status is mirrored onto its
// originating order item inside the same transaction so the two views
// never disagree.
type BarHandler struct {
	TicketRepo *repository.BarTicketRepo
	OrderRepo  *repository.OrderRepo
}

// NewBarHandler constructs a new BarHandler.
func NewBarHandler(ticketRepo *repository.BarTicketRepo, orderRepo *repository.OrderRepo) *BarHandler {
	if ticketRepo == nil || orderRepo == nil {
		panic("nil repository passed to NewBarHandler")
	}
	return &BarHandler{TicketRepo: ticketRepo, OrderRepo: orderRepo}
}

// ListTickets handles GET /v1/bar/tickets.  Tickets come back oldest
// first and partitioned into the two columns the bar display shows.
func (h *BarHandler) ListTickets(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tickets, err := h.TicketRepo.ListByTenant(c.Request().Context(), tenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	preparing := make([]model.BarTicket, 0, len(tickets))
	ready := make([]model.BarTicket, 0, len(tickets))
	for _, t := range tickets {
		switch t.Status {
		case model.TicketReady:
			ready = append(ready, t)
		default:
			preparing = append(preparing, t)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"preparing": preparing,
		"ready":     ready,
	})
}

// MarkReady handles POST /v1/bar/tickets/:id/ready.  Already-ready
// tickets are a no-op and keep their original ready stamp.
func (h *BarHandler) MarkReady(c echo.Context) error {
	return h.toggle(c, model.TicketReady)
}

// MarkPreparing handles POST /v1/bar/tickets/:id/preparing, the
// reversal.  Clears the ready stamp.
func (h *BarHandler) MarkPreparing(c echo.Context) error {
	return h.toggle(c, model.TicketPreparing)
}

func (h *BarHandler) toggle(c echo.Context, target string) error {
	act, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ctx := c.Request().Context()
	tx, err := h.OrderRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := h.TicketRepo.GetTx(ctx, tx, act.TenantID, ticketID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	changed := false
	if target == model.TicketReady {
		readyAt, err := h.TicketRepo.MarkReadyTx(ctx, tx, act.TenantID, ticketID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update ticket"})
		}
		if readyAt != nil {
			changed = true
			// The ticket id is the order item id.
			if err := h.OrderRepo.UpdateItemBarStatusTx(ctx, tx, act.TenantID, ticketID, model.BarReady, readyAt); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update order item"})
			}
		}
	} else {
		reverted, err := h.TicketRepo.MarkPreparingTx(ctx, tx, act.TenantID, ticketID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update ticket"})
		}
		if reverted {
			changed = true
			if err := h.OrderRepo.UpdateItemBarStatusTx(ctx, tx, act.TenantID, ticketID, model.BarPreparing, nil); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update order item"})
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit"})
	}
	committed = true

	// Return the full ticket as the bar display renders it.
	tickets, err := h.TicketRepo.ListByTenant(ctx, act.TenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	var ticket *model.BarTicket
	for i := range tickets {
		if tickets[i].ID == ticketID {
			ticket = &tickets[i]
			break
		}
	}
	if ticket == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	}

	if changed {
		action := queue.ActionTicketReady
		if target == model.TicketPreparing {
			action = queue.ActionTicketPreparing
		}
		_ = queue_publisher.PublishChange(ctx, queue.ChangeEvent{
			Action:   action,
			TenantID: act.TenantID,
			Tickets:  []model.BarTicket{*ticket},
		})
	}
	return c.JSON(http.StatusOK, ticket)
}
