package repository

import (
	"context"
	"database/sql"

	"github.com/procafees/cafe-pos/internal/model"
)

// InventoryRepo provides data access to the stock ledger.  Inventory
// is tracked independently of order flow: movements never participate
// in order transactions, they only adjust the running stock level of
// an item together with an append-only ledger row.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo returns a new InventoryRepo bound to the given database.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// DB exposes the underlying handle so handlers can start transactions.
func (r *InventoryRepo) DB() *sql.DB { return r.db }

// CreateItem adds a stocked item for the tenant and populates its
// generated ID.
func (r *InventoryRepo) CreateItem(ctx context.Context, it *model.InventoryItem) error {
	const q = `INSERT INTO inventory_items (tenant_id, name, unit, current_stock, min_stock)
               VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, it.TenantID, it.Name, it.Unit, it.CurrentStock, it.MinStock)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	const sel = `SELECT created_at FROM inventory_items WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, it.ID).Scan(&it.CreatedAt)
}

// ListItems returns the tenant's stocked items ordered by name.
func (r *InventoryRepo) ListItems(ctx context.Context, tenantID uint64) ([]model.InventoryItem, error) {
	const q = `SELECT id, tenant_id, name, unit, current_stock, min_stock, created_at
               FROM inventory_items WHERE tenant_id = ? ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.InventoryItem, 0)
	for rows.Next() {
		var it model.InventoryItem
		if err := rows.Scan(&it.ID, &it.TenantID, &it.Name, &it.Unit, &it.CurrentStock, &it.MinStock, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// RecordMovement appends a ledger row and adjusts the item's stock in
// one transaction.  "in" adds, "out" subtracts, "adjustment" replaces
// the stock level with the movement quantity.  sql.ErrNoRows when the
// item does not belong to the tenant.
func (r *InventoryRepo) RecordMovement(ctx context.Context, m *model.InventoryMovement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var current int64
	err = tx.QueryRowContext(ctx,
		`SELECT current_stock FROM inventory_items WHERE id = ? AND tenant_id = ? FOR UPDATE`,
		m.ItemID, m.TenantID,
	).Scan(&current)
	if err != nil {
		return err
	}
	next := current
	switch m.Type {
	case model.MovementIn:
		next = current + m.Quantity
	case model.MovementOut:
		next = current - m.Quantity
	case model.MovementAdjustment:
		next = m.Quantity
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE inventory_items SET current_stock = ? WHERE id = ? AND tenant_id = ?`,
		next, m.ItemID, m.TenantID,
	); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO inventory_movements (tenant_id, item_id, type, quantity, reason, created_by)
         VALUES (?, ?, ?, ?, ?, ?)`,
		m.TenantID, m.ItemID, m.Type, m.Quantity, m.Reason, m.CreatedBy,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListMovements returns an item's ledger newest first.
func (r *InventoryRepo) ListMovements(ctx context.Context, tenantID, itemID uint64) ([]model.InventoryMovement, error) {
	const q = `SELECT id, tenant_id, item_id, type, quantity, reason, created_by, created_at
               FROM inventory_movements WHERE tenant_id = ? AND item_id = ?
               ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movements := make([]model.InventoryMovement, 0)
	for rows.Next() {
		var m model.InventoryMovement
		if err := rows.Scan(&m.ID, &m.TenantID, &m.ItemID, &m.Type, &m.Quantity, &m.Reason, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movements, nil
}
