package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/procafees/cafe-pos/internal/model"
)

// BarTicketRepo provides data access to bar tickets.  A ticket shares
// its identifier with the order item it was derived from, so the two
// never need a join to correlate.  Tickets are created inside the
// order-creation transaction and afterwards only toggle between
// preparing and ready.
type BarTicketRepo struct {
	db *sql.DB
}

// NewBarTicketRepo returns a new BarTicketRepo bound to the given database.
func NewBarTicketRepo(db *sql.DB) *BarTicketRepo { return &BarTicketRepo{db: db} }

// CreateBulkTx inserts bar tickets within the provided transaction.
// The ID of each ticket must already be set to the originating order
// item's ID.  Passing an empty slice has no effect and returns nil.
func (r *BarTicketRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, tickets []model.BarTicket) error {
	if len(tickets) == 0 {
		return nil
	}
	query := `INSERT INTO bar_tickets (id, tenant_id, order_id, order_type, table_name,
        customer_name, customer_phone, customer_address, product_name, quantity,
        modifiers, notes, status, sent_to_bar_at) VALUES `
	args := make([]interface{}, 0, len(tickets)*14)
	for i, t := range tickets {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			t.ID, t.TenantID, t.OrderID, t.OrderType, nullableStr(t.TableName),
			nullableStr(t.CustomerName), nullableStr(t.CustomerPhone), nullableStr(t.CustomerAddress),
			t.ProductName, t.Quantity, t.Modifiers, t.Notes,
			model.TicketPreparing, t.SentToBarAt.UTC(),
		)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListByTenant returns every ticket of the tenant ordered by
// sent_to_bar_at ascending, oldest first, the order the bar works
// through them.  Callers partition the result into preparing and ready
// subsets for display.
func (r *BarTicketRepo) ListByTenant(ctx context.Context, tenantID uint64) ([]model.BarTicket, error) {
	const q = `SELECT id, tenant_id, order_id, order_type, table_name,
                      customer_name, customer_phone, customer_address,
                      product_name, quantity, modifiers, notes, status,
                      sent_to_bar_at, ready_at, created_at
               FROM bar_tickets WHERE tenant_id = ?
               ORDER BY sent_to_bar_at ASC`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]model.BarTicket, 0)
	for rows.Next() {
		var t model.BarTicket
		var tableName, custName, custPhone, custAddr sql.NullString
		var readyAt sql.NullTime
		if err := rows.Scan(
			&t.ID, &t.TenantID, &t.OrderID, &t.OrderType, &tableName,
			&custName, &custPhone, &custAddr,
			&t.ProductName, &t.Quantity, &t.Modifiers, &t.Notes, &t.Status,
			&t.SentToBarAt, &readyAt, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		if tableName.Valid {
			v := tableName.String
			t.TableName = &v
		}
		if custName.Valid {
			v := custName.String
			t.CustomerName = &v
		}
		if custPhone.Valid {
			v := custPhone.String
			t.CustomerPhone = &v
		}
		if custAddr.Valid {
			v := custAddr.String
			t.CustomerAddress = &v
		}
		if readyAt.Valid {
			v := readyAt.Time
			t.ReadyAt = &v
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetTx loads one ticket of the tenant within the transaction.
// sql.ErrNoRows when it does not exist.
func (r *BarTicketRepo) GetTx(ctx context.Context, tx *sql.Tx, tenantID, ticketID uint64) (*model.BarTicket, error) {
	const q = `SELECT id, tenant_id, order_id, status, sent_to_bar_at, ready_at
               FROM bar_tickets WHERE id = ? AND tenant_id = ?`
	var t model.BarTicket
	var readyAt sql.NullTime
	err := tx.QueryRowContext(ctx, q, ticketID, tenantID).Scan(
		&t.ID, &t.TenantID, &t.OrderID, &t.Status, &t.SentToBarAt, &readyAt,
	)
	if err != nil {
		return nil, err
	}
	if readyAt.Valid {
		v := readyAt.Time
		t.ReadyAt = &v
	}
	return &t, nil
}

// MarkReadyTx transitions a ticket to ready and stamps ready_at.  The
// guard on the current status makes a repeated call a no-op: a ticket
// already ready keeps its original stamp.  Returns the new ready
// timestamp, or nil when the write was a no-op.
func (r *BarTicketRepo) MarkReadyTx(ctx context.Context, tx *sql.Tx, tenantID, ticketID uint64) (*time.Time, error) {
	const q = `UPDATE bar_tickets SET status = ?, ready_at = UTC_TIMESTAMP()
               WHERE id = ? AND tenant_id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, model.TicketReady, ticketID, tenantID, model.TicketPreparing)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	var readyAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT ready_at FROM bar_tickets WHERE id = ? AND tenant_id = ?`, ticketID, tenantID,
	).Scan(&readyAt)
	if err != nil {
		return nil, err
	}
	return &readyAt, nil
}

// MarkPreparingTx reverses a ticket back to preparing and clears the
// ready stamp.  Like MarkReadyTx it is an idempotent no-op when the
// ticket is already preparing.  Returns true when a row changed.
func (r *BarTicketRepo) MarkPreparingTx(ctx context.Context, tx *sql.Tx, tenantID, ticketID uint64) (bool, error) {
	const q = `UPDATE bar_tickets SET status = ?, ready_at = NULL
               WHERE id = ? AND tenant_id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, model.TicketPreparing, ticketID, tenantID, model.TicketReady)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
