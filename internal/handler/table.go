package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/procafees/cafe-pos/internal/model"
	"github.com/procafees/cafe-pos/internal/queue"
	"github.com/procafees/cafe-pos/internal/repository"
	queue_publisher "github.com/procafees/cafe-pos/internal/service"
)

// TableHandler exposes the floor plan: provisioning, listing with
// availability counts and the explicit status changes.
type TableHandler struct {
	TableRepo *repository.TableRepo
}

// NewTableHandler constructs a new TableHandler.
func NewTableHandler(tableRepo *repository.TableRepo) *TableHandler {
	if tableRepo == nil {
		panic("nil repository passed to NewTableHandler")
	}
	return &TableHandler{TableRepo: tableRepo}
}

// CreateTable handles POST /v1/tables (admin provisioning).
func (h *TableHandler) CreateTable(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		Number uint32 `json:"number"`
		Name   string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Number == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number must be positive"})
	}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = "Mesa " + strconv.Itoa(int(req.Number))
	}
	table := model.Table{TenantID: tenantID, Number: req.Number, Name: req.Name}
	if err := h.TableRepo.Create(c.Request().Context(), &table); err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "table number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create table"})
	}
	return c.JSON(http.StatusCreated, table)
}

// ListTables handles GET /v1/tables: every table ordered by number
// plus the availability counts the floor plan header shows.
func (h *TableHandler) ListTables(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tables, err := h.TableRepo.ListByTenant(c.Request().Context(), tenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	var available, occupied int
	for _, t := range tables {
		switch t.Status {
		case model.TableAvailable:
			available++
		case model.TableOccupied:
			occupied++
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"tables":    tables,
		"available": available,
		"occupied":  occupied,
	})
}

// UpdateTableStatus handles PATCH /v1/tables/:id/status.  Releasing a
// table to available clears the current-order back-reference.
// Occupying through this endpoint goes through the same conditional
// write as order creation, so it loses the race against any concurrent
// occupation.
func (h *TableHandler) UpdateTableStatus(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tableID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	var req struct {
		Status         string  `json:"status"`
		CurrentOrderID *uint64 `json:"current_order_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()

	switch req.Status {
	case model.TableAvailable, model.TableReserved:
		// Only occupied tables carry a current-order back-reference.
		if err := h.TableRepo.UpdateStatus(ctx, tenantID, tableID, req.Status, nil); err != nil {
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update table"})
		}
	case model.TableOccupied:
		if req.CurrentOrderID == nil || *req.CurrentOrderID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "occupying requires a current_order_id"})
		}
		tx, err := h.TableRepo.DB().BeginTx(ctx, nil)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()
		if err := h.TableRepo.OccupyTx(ctx, tx, tenantID, tableID, *req.CurrentOrderID); err != nil {
			if errors.Is(err, repository.ErrTableNotAvailable) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "table is not available"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to occupy table"})
		}
		if err := tx.Commit(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit"})
		}
		committed = true
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be available, occupied or reserved"})
	}

	table, err := h.TableRepo.GetByID(ctx, tenantID, tableID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	_ = queue_publisher.PublishChange(ctx, queue.ChangeEvent{
		Action:   queue.ActionTableUpdated,
		TenantID: tenantID,
		Table:    table,
	})
	return c.JSON(http.StatusOK, table)
}
