package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/procafees/cafe-pos/internal/model"
	"github.com/procafees/cafe-pos/internal/repository"
)

// InventoryHandler exposes the stock ledger.  Inventory has no
// transactional link to order flow; movements only adjust stock levels
// and append to the ledger.
type InventoryHandler struct {
	InventoryRepo *repository.InventoryRepo
}

// NewInventoryHandler constructs a new InventoryHandler.
func NewInventoryHandler(inventoryRepo *repository.InventoryRepo) *InventoryHandler {
	if inventoryRepo == nil {
		panic("nil repository passed to NewInventoryHandler")
	}
	return &InventoryHandler{InventoryRepo: inventoryRepo}
}

// CreateItem handles POST /v1/inventory/items.
func (h *InventoryHandler) CreateItem(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		Name         string `json:"name"`
		Unit         string `json:"unit"`
		CurrentStock int64  `json:"current_stock"`
		MinStock     int64  `json:"min_stock"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	switch req.Unit {
	case model.UnitUnit, model.UnitML, model.UnitGR, model.UnitOZ:
	case "":
		req.Unit = model.UnitUnit
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unit must be unit, ml, gr or oz"})
	}
	if req.CurrentStock < 0 || req.MinStock < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stock levels cannot be negative"})
	}
	item := model.InventoryItem{
		TenantID:     tenantID,
		Name:         strings.TrimSpace(req.Name),
		Unit:         req.Unit,
		CurrentStock: req.CurrentStock,
		MinStock:     req.MinStock,
	}
	if err := h.InventoryRepo.CreateItem(c.Request().Context(), &item); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create item"})
	}
	return c.JSON(http.StatusCreated, item)
}

// ListItems handles GET /v1/inventory/items.
func (h *InventoryHandler) ListItems(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.InventoryRepo.ListItems(c.Request().Context(), tenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// RecordMovement handles POST /v1/inventory/items/:id/movements.
// "in" adds to stock, "out" subtracts, "adjustment" replaces the level
// with the given quantity.
func (h *InventoryHandler) RecordMovement(c echo.Context) error {
	act, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req struct {
		Type     string `json:"type"`
		Quantity int64  `json:"quantity"`
		Reason   string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	switch req.Type {
	case model.MovementIn, model.MovementOut:
		if req.Quantity <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
		}
	case model.MovementAdjustment:
		if req.Quantity < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "adjustment quantity cannot be negative"})
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be in, out or adjustment"})
	}
	movement := model.InventoryMovement{
		TenantID:  act.TenantID,
		ItemID:    itemID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		CreatedBy: act.ID,
	}
	if err := h.InventoryRepo.RecordMovement(c.Request().Context(), &movement); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record movement"})
	}
	return c.JSON(http.StatusCreated, movement)
}

// ListMovements handles GET /v1/inventory/items/:id/movements, newest
// first.
func (h *InventoryHandler) ListMovements(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	movements, err := h.InventoryRepo.ListMovements(c.Request().Context(), tenantID, itemID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"movements": movements})
}
