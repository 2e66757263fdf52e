package repository

import (
	"context"
	"database/sql"

	"github.com/procafees/cafe-pos/internal/model"
)

// TableRepo provides data access to the tables collection.  Tables are
// provisioned once per tenant; afterwards only their status, display
// name and current-order back-reference change.  Status changes that
// protect an invariant (occupying a free table) are conditional writes
// so that two terminals racing for the same table cannot both win.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// DB exposes the underlying handle so handlers can start transactions.
func (r *TableRepo) DB() *sql.DB { return r.db }

// Create provisions a new table for the tenant.  The generated ID is
// populated on the passed model.  Table numbers are unique per tenant;
// the caller receives the driver's duplicate-key error unchanged.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	const q = `INSERT INTO tables (tenant_id, number, name, status) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.TenantID, t.Number, t.Name, model.TableAvailable)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.Status = model.TableAvailable
	return nil
}

// ListByTenant returns every table of the tenant ordered by number
// ascending, the order the floor plan displays them in.
func (r *TableRepo) ListByTenant(ctx context.Context, tenantID uint64) ([]model.Table, error) {
	const q = `SELECT id, tenant_id, number, name, status, current_order_id
               FROM tables WHERE tenant_id = ? ORDER BY number ASC`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		var orderID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Number, &t.Name, &t.Status, &orderID); err != nil {
			return nil, err
		}
		if orderID.Valid {
			oid := uint64(orderID.Int64)
			t.CurrentOrderID = &oid
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

// GetByID returns a single table of the tenant.  sql.ErrNoRows is
// returned when it does not exist.
func (r *TableRepo) GetByID(ctx context.Context, tenantID, tableID uint64) (*model.Table, error) {
	const q = `SELECT id, tenant_id, number, name, status, current_order_id
               FROM tables WHERE id = ? AND tenant_id = ?`
	var t model.Table
	var orderID sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, tableID, tenantID).Scan(
		&t.ID, &t.TenantID, &t.Number, &t.Name, &t.Status, &orderID,
	)
	if err != nil {
		return nil, err
	}
	if orderID.Valid {
		oid := uint64(orderID.Int64)
		t.CurrentOrderID = &oid
	}
	return &t, nil
}

// OccupyTx atomically transitions a table from available to occupied
// and links the order to it.  The WHERE clause on the current status
// makes the write a compare-and-swap: when the table is already
// occupied or reserved, zero rows are affected and ErrTableNotAvailable
// is returned.  Run inside the same transaction as the order insert so
// a failed occupation rolls the whole order back.
func (r *TableRepo) OccupyTx(ctx context.Context, tx *sql.Tx, tenantID, tableID, orderID uint64) error {
	const q = `UPDATE tables SET status = ?, current_order_id = ?
               WHERE id = ? AND tenant_id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, model.TableOccupied, orderID, tableID, tenantID, model.TableAvailable)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTableNotAvailable
	}
	return nil
}

// UpdateStatus overwrites a table's status and current-order link.
// Releasing a table passes a nil order ID which clears the
// back-reference.  Occupation must go through OccupyTx; this method is
// for the explicit release/reserve actions on the floor plan screen.
// sql.ErrNoRows is returned when the table does not exist.
func (r *TableRepo) UpdateStatus(ctx context.Context, tenantID, tableID uint64, status string, currentOrderID *uint64) error {
	const q = `UPDATE tables SET status = ?, current_order_id = ?
               WHERE id = ? AND tenant_id = ?`
	var orderID interface{}
	if currentOrderID != nil {
		orderID = *currentOrderID
	}
	res, err := r.db.ExecContext(ctx, q, status, orderID, tableID, tenantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "no such table" from "no change needed".
		var exists uint64
		err := r.db.QueryRowContext(ctx,
			`SELECT id FROM tables WHERE id = ? AND tenant_id = ?`, tableID, tenantID,
		).Scan(&exists)
		if err != nil {
			return err
		}
	}
	return nil
}
