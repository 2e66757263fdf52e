package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/procafees/cafe-pos/internal/model"
)

// OrderRepo provides data access to orders and their items.  Orders,
// items and any derived bar tickets are created together inside one
// transaction driven by the handler; this repository exposes the
// Tx-scoped pieces of that write plus the guarded status transitions
// and the read-side queries.  Financial fields are written once at
// creation and never updated.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle so handlers can start transactions.
func (r *OrderRepo) DB() *sql.DB { return r.db }

// orderColumns is the scan list shared by every order query.
const orderColumns = `id, tenant_id, type, table_id, table_name,
    customer_name, customer_phone, customer_address, address_reference,
    status, payment_status, payment_method, items_total, total_amount, discount,
    created_by, created_by_name, paid_at, paid_by, cash_session_id,
    client_request_id, created_at, updated_at`

// scanOrder reads one order row into a model.Order.  The row must have
// been selected with orderColumns.
func scanOrder(row interface{ Scan(...interface{}) error }) (*model.Order, error) {
	var o model.Order
	var tableID, paidBy, sessionID sql.NullInt64
	var tableName, custName, custPhone, custAddr, addrRef, method sql.NullString
	var paidAt sql.NullTime
	err := row.Scan(
		&o.ID, &o.TenantID, &o.Type, &tableID, &tableName,
		&custName, &custPhone, &custAddr, &addrRef,
		&o.Status, &o.PaymentStatus, &method, &o.ItemsTotal, &o.TotalAmount, &o.Discount,
		&o.CreatedBy, &o.CreatedByName, &paidAt, &paidBy, &sessionID,
		&o.ClientRequestID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tableID.Valid {
		v := uint64(tableID.Int64)
		o.TableID = &v
	}
	if tableName.Valid {
		v := tableName.String
		o.TableName = &v
	}
	if custName.Valid {
		v := custName.String
		o.CustomerName = &v
	}
	if custPhone.Valid {
		v := custPhone.String
		o.CustomerPhone = &v
	}
	if custAddr.Valid {
		v := custAddr.String
		o.CustomerAddress = &v
	}
	if addrRef.Valid {
		v := addrRef.String
		o.AddressReference = &v
	}
	if method.Valid {
		v := method.String
		o.PaymentMethod = &v
	}
	if paidAt.Valid {
		v := paidAt.Time
		o.PaidAt = &v
	}
	if paidBy.Valid {
		v := uint64(paidBy.Int64)
		o.PaidBy = &v
	}
	if sessionID.Valid {
		v := uint64(sessionID.Int64)
		o.CashSessionID = &v
	}
	return &o, nil
}

// CreateTx inserts a new order within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// passed model.  The caller must commit or roll back the transaction.
// The order is always inserted as open/pending.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders (tenant_id, type, table_id, table_name,
        customer_name, customer_phone, customer_address, address_reference,
        status, payment_status, items_total, total_amount, discount,
        created_by, created_by_name, client_request_id)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		o.TenantID, o.Type, nullableUint(o.TableID), nullableStr(o.TableName),
		nullableStr(o.CustomerName), nullableStr(o.CustomerPhone),
		nullableStr(o.CustomerAddress), nullableStr(o.AddressReference),
		model.OrderOpen, model.PaymentPending, o.ItemsTotal, o.TotalAmount, o.Discount,
		o.CreatedBy, o.CreatedByName, o.ClientRequestID,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	o.Status = model.OrderOpen
	o.PaymentStatus = model.PaymentPending
	// Query back the row to populate DB-generated timestamps.
	const sel = `SELECT created_at, updated_at FROM orders WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, o.ID).Scan(&o.CreatedAt, &o.UpdatedAt)
}

// CreateItemsTx inserts the order's items within the transaction and
// populates the generated ID of each item.  Items are inserted one at
// a time because bar tickets reuse the item IDs and need them before
// the transaction commits.  Passing an empty slice has no effect.
func (r *OrderRepo) CreateItemsTx(ctx context.Context, tx *sql.Tx, items []model.OrderItem) ([]model.OrderItem, error) {
	const q = `INSERT INTO order_items (tenant_id, order_id, product_id, product_name,
        unit_price, quantity, modifiers, subtotal, notes, sends_to_bar,
        bar_status, sent_to_bar_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		mods, err := json.Marshal(it.Modifiers)
		if err != nil {
			return nil, err
		}
		var sentAt interface{}
		if it.SentToBarAt != nil {
			sentAt = it.SentToBarAt.UTC()
		}
		res, err := tx.ExecContext(ctx, q,
			it.TenantID, it.OrderID, it.ProductID, it.ProductName,
			it.UnitPrice, it.Quantity, string(mods), it.Subtotal, it.Notes,
			it.SendsToBar, it.BarStatus, sentAt,
		)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		it.ID = uint64(id)
		out = append(out, it)
	}
	return out, nil
}

// GetByID returns a single order of the tenant.  sql.ErrNoRows is
// returned when it does not exist.
func (r *OrderRepo) GetByID(ctx context.Context, tenantID, orderID uint64) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = ? AND tenant_id = ?`
	return scanOrder(r.db.QueryRowContext(ctx, q, orderID, tenantID))
}

// GetByClientRequestID looks an order up by the terminal's idempotency
// key.  Used to resolve a retried create to the original order instead
// of placing a duplicate.  sql.ErrNoRows when no order carries the key.
func (r *OrderRepo) GetByClientRequestID(ctx context.Context, tenantID uint64, key string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE tenant_id = ? AND client_request_id = ?`
	return scanOrder(r.db.QueryRowContext(ctx, q, tenantID, key))
}

// ListOpen returns the tenant's open orders newest first, the way the
// register screen displays them.
func (r *OrderRepo) ListOpen(ctx context.Context, tenantID uint64) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders
          WHERE tenant_id = ? AND status = ? ORDER BY created_at DESC`
	return r.listOrders(ctx, q, tenantID, model.OrderOpen)
}

// ListPaidBetween returns orders paid within [start, end), newest
// payment first.  The end bound is exclusive so adjacent ranges never
// double-count a payment landing exactly on the boundary.  Feeds the
// daily report screen; the report formatter itself lives outside the
// core.
func (r *OrderRepo) ListPaidBetween(ctx context.Context, tenantID uint64, start, end time.Time) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders
          WHERE tenant_id = ? AND status = ? AND paid_at >= ? AND paid_at < ?
          ORDER BY paid_at DESC`
	return r.listOrders(ctx, q, tenantID, model.OrderPaid, start.UTC(), end.UTC())
}

func (r *OrderRepo) listOrders(ctx context.Context, q string, args ...interface{}) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListItems returns every item of an order.  The modifiers JSON column
// is decoded back into the structured form.
func (r *OrderRepo) ListItems(ctx context.Context, tenantID, orderID uint64) ([]model.OrderItem, error) {
	const q = `SELECT id, tenant_id, order_id, product_id, product_name,
                      unit_price, quantity, modifiers, subtotal, notes,
                      sends_to_bar, bar_status, sent_to_bar_at, ready_at
               FROM order_items WHERE order_id = ? AND tenant_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, orderID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		var mods string
		var sentAt, readyAt sql.NullTime
		if err := rows.Scan(
			&it.ID, &it.TenantID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.UnitPrice, &it.Quantity, &mods, &it.Subtotal, &it.Notes,
			&it.SendsToBar, &it.BarStatus, &sentAt, &readyAt,
		); err != nil {
			return nil, err
		}
		if mods != "" {
			if err := json.Unmarshal([]byte(mods), &it.Modifiers); err != nil {
				return nil, err
			}
		}
		if sentAt.Valid {
			v := sentAt.Time
			it.SentToBarAt = &v
		}
		if readyAt.Valid {
			v := readyAt.Time
			it.ReadyAt = &v
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// PayTx marks an open order paid within the transaction: status,
// payment status, method, payment stamp and the cash session the sale
// is attributed to (nil when no session is open).  The UPDATE is
// guarded on status = open; when zero rows are affected the order is
// re-read to distinguish a missing order (sql.ErrNoRows) from a
// forbidden transition (ErrInvalidTransition).
func (r *OrderRepo) PayTx(ctx context.Context, tx *sql.Tx, tenantID, orderID uint64, method string, paidBy uint64, sessionID *uint64) error {
	const q = `UPDATE orders SET status = ?, payment_status = ?, payment_method = ?,
                   paid_at = UTC_TIMESTAMP(), paid_by = ?, cash_session_id = ?,
                   updated_at = UTC_TIMESTAMP()
               WHERE id = ? AND tenant_id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q,
		model.OrderPaid, model.PaymentPaid, method, paidBy, nullableUint(sessionID),
		orderID, tenantID, model.OrderOpen,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = ? AND tenant_id = ?`, orderID, tenantID,
		).Scan(&status)
		if err != nil {
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}

// Transition performs a guarded status change (cancel, deliver).  The
// allowed source statuses are derived from the order state machine, so
// the guard and model.CanTransition can never drift apart.  Zero
// affected rows are resolved to sql.ErrNoRows or ErrInvalidTransition
// by re-reading the order.
func (r *OrderRepo) Transition(ctx context.Context, tenantID, orderID uint64, to string) error {
	from := make([]string, 0, 2)
	for _, s := range []string{model.OrderOpen, model.OrderPaid, model.OrderCancelled, model.OrderDelivered} {
		if model.CanTransition(s, to) {
			from = append(from, s)
		}
	}
	if len(from) == 0 {
		return ErrInvalidTransition
	}
	args := make([]interface{}, 0, len(from)+3)
	args = append(args, to, orderID, tenantID)
	placeholders := make([]string, 0, len(from))
	for _, s := range from {
		placeholders = append(placeholders, "?")
		args = append(args, s)
	}
	q := `UPDATE orders SET status = ?, updated_at = UTC_TIMESTAMP()
          WHERE id = ? AND tenant_id = ? AND status IN (` + strings.Join(placeholders, ",") + `)`
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var status string
		err := r.db.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = ? AND tenant_id = ?`, orderID, tenantID,
		).Scan(&status)
		if err != nil {
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}

// UpdateItemBarStatusTx mirrors a bar ticket's status onto its
// originating order item inside the same transaction.  A nil readyAt
// clears the ready stamp (the preparing reversal).
func (r *OrderRepo) UpdateItemBarStatusTx(ctx context.Context, tx *sql.Tx, tenantID, itemID uint64, status string, readyAt *time.Time) error {
	const q = `UPDATE order_items SET bar_status = ?, ready_at = ?
               WHERE id = ? AND tenant_id = ?`
	var stamp interface{}
	if readyAt != nil {
		stamp = readyAt.UTC()
	}
	_, err := tx.ExecContext(ctx, q, status, stamp, itemID, tenantID)
	return err
}

// nullableUint converts an optional id into a driver-friendly value.
func nullableUint(v *uint64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// nullableStr converts an optional string into a driver-friendly value.
func nullableStr(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
