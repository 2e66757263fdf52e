package model

// Table statuses.  A table is occupied exactly while an open order points
// at it; reserved is a manual marker set from the floor plan screen.
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

// Table represents one physical table on the floor.  Tables are
// provisioned once and never deleted; only the status, the display
// name and the back-reference to the current order change afterwards.
//
// Fields:
//
//	ID             – primary key identifier.
//	TenantID       – owning tenant (data partition).
//	Number         – table number, unique within a tenant.
//	Name           – mutable display label shown on the floor plan.
//	Status         – availability status (available, occupied, reserved).
//	CurrentOrderID – open order currently seated at this table, if any.
//	                 A back-reference only, never an ownership edge.
type Table struct {
	ID             uint64  `json:"id"`               // tables.id
	TenantID       uint64  `json:"tenant_id"`        // tables.tenant_id
	Number         uint32  `json:"number"`           // tables.number
	Name           string  `json:"name"`             // tables.name
	Status         string  `json:"status"`           // tables.status
	CurrentOrderID *uint64 `json:"current_order_id"` // tables.current_order_id (nullable)
}
