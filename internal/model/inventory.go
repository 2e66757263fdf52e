package model

import "time"

// Inventory units of measure.
const (
	UnitUnit = "unit"
	UnitML   = "ml"
	UnitGR   = "gr"
	UnitOZ   = "oz"
)

// Inventory movement types.  Adjustments replace the stock level with
// the movement quantity instead of adding or subtracting it.
const (
	MovementIn         = "in"
	MovementOut        = "out"
	MovementAdjustment = "adjustment"
)

// InventoryItem is one stocked ingredient or supply.  Stock levels are
// tracked as an independent ledger with no transactional link to order
// flow.
type InventoryItem struct {
	ID           uint64    `json:"id"`            // inventory_items.id
	TenantID     uint64    `json:"tenant_id"`     // inventory_items.tenant_id
	Name         string    `json:"name"`          // inventory_items.name
	Unit         string    `json:"unit"`          // inventory_items.unit
	CurrentStock int64     `json:"current_stock"` // inventory_items.current_stock
	MinStock     int64     `json:"min_stock"`     // inventory_items.min_stock
	CreatedAt    time.Time `json:"created_at"`    // inventory_items.created_at
}

// InventoryMovement is one entry in the stock ledger.
type InventoryMovement struct {
	ID        uint64    `json:"id"`         // inventory_movements.id
	TenantID  uint64    `json:"tenant_id"`  // inventory_movements.tenant_id
	ItemID    uint64    `json:"item_id"`    // inventory_movements.item_id
	Type      string    `json:"type"`       // inventory_movements.type
	Quantity  int64     `json:"quantity"`   // inventory_movements.quantity
	Reason    string    `json:"reason"`     // inventory_movements.reason
	CreatedBy uint64    `json:"created_by"` // inventory_movements.created_by
	CreatedAt time.Time `json:"created_at"` // inventory_movements.created_at
}
