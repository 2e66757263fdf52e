package repository

import (
	"context"
	"database/sql"

	"github.com/procafees/cafe-pos/internal/model"
)

// CashSessionRepo provides data access to cash sessions and the
// paid-order aggregation they are reconciled from.  Session
// singularity (at most one active session per tenant) is enforced by a
// conditional insert backed by a unique key on (tenant_id,
// active_flag), where active_flag is 1 while active and NULL once
// closed.  A session is written once at open and once at close.
type CashSessionRepo struct {
	db *sql.DB
}

// NewCashSessionRepo returns a new CashSessionRepo bound to the given database.
func NewCashSessionRepo(db *sql.DB) *CashSessionRepo { return &CashSessionRepo{db: db} }

// DB exposes the underlying handle so handlers can start transactions.
func (r *CashSessionRepo) DB() *sql.DB { return r.db }

// sessionColumns is the scan list shared by every session query.
const sessionColumns = `id, tenant_id, opened_at, opened_by, opened_by_name, initial_cash,
    closed_at, closed_by, closed_by_name, final_cash, expected_cash, cash_difference,
    total_sales, total_cash, total_nequi, total_qr, orders_count, notes, is_active`

func scanSession(row interface{ Scan(...interface{}) error }) (*model.CashSession, error) {
	var s model.CashSession
	var closedAt sql.NullTime
	var closedBy sql.NullInt64
	var closedByName sql.NullString
	var finalCash, expectedCash, cashDiff sql.NullInt64
	err := row.Scan(
		&s.ID, &s.TenantID, &s.OpenedAt, &s.OpenedBy, &s.OpenedByName, &s.InitialCash,
		&closedAt, &closedBy, &closedByName, &finalCash, &expectedCash, &cashDiff,
		&s.TotalSales, &s.TotalByMethod.Cash, &s.TotalByMethod.Nequi, &s.TotalByMethod.QR,
		&s.OrdersCount, &s.Notes, &s.IsActive,
	)
	if err != nil {
		return nil, err
	}
	if closedAt.Valid {
		v := closedAt.Time
		s.ClosedAt = &v
	}
	if closedBy.Valid {
		v := uint64(closedBy.Int64)
		s.ClosedBy = &v
	}
	if closedByName.Valid {
		v := closedByName.String
		s.ClosedByName = &v
	}
	if finalCash.Valid {
		s.FinalCash = &finalCash.Int64
	}
	if expectedCash.Valid {
		s.ExpectedCash = &expectedCash.Int64
	}
	if cashDiff.Valid {
		s.CashDifference = &cashDiff.Int64
	}
	return &s, nil
}

// Open creates a new active session for the tenant.  The insert is
// conditional: the SELECT source row only materializes when no active
// session exists, so two terminals racing the open produce exactly one
// session.  The unique (tenant_id, active_flag) key backs the same
// invariant against any writer that bypasses this method.  Returns
// ErrSessionAlreadyActive when the tenant already has an open drawer.
func (r *CashSessionRepo) Open(ctx context.Context, s *model.CashSession) error {
	const q = `INSERT INTO cash_sessions
        (tenant_id, opened_at, opened_by, opened_by_name, initial_cash, notes, is_active, active_flag)
        SELECT ?, UTC_TIMESTAMP(), ?, ?, ?, ?, 1, 1
        FROM DUAL
        WHERE NOT EXISTS (
            SELECT 1 FROM cash_sessions WHERE tenant_id = ? AND is_active = 1
        )`
	res, err := r.db.ExecContext(ctx, q,
		s.TenantID, s.OpenedBy, s.OpenedByName, s.InitialCash, s.Notes, s.TenantID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionAlreadyActive
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	s.IsActive = true
	const sel = `SELECT opened_at FROM cash_sessions WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.OpenedAt)
}

// Active returns the tenant's active session, or ErrNoActiveSession.
func (r *CashSessionRepo) Active(ctx context.Context, tenantID uint64) (*model.CashSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM cash_sessions
          WHERE tenant_id = ? AND is_active = 1`
	s, err := scanSession(r.db.QueryRowContext(ctx, q, tenantID))
	if err == sql.ErrNoRows {
		return nil, ErrNoActiveSession
	}
	return s, err
}

// ActiveForUpdateTx locks and returns the tenant's active session
// within the transaction.  The row lock serializes a close against any
// concurrent payment attaching itself to the session mid-aggregation.
// Returns ErrNoActiveSession when none is open.
func (r *CashSessionRepo) ActiveForUpdateTx(ctx context.Context, tx *sql.Tx, tenantID uint64) (*model.CashSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM cash_sessions
          WHERE tenant_id = ? AND is_active = 1 FOR UPDATE`
	s, err := scanSession(tx.QueryRowContext(ctx, q, tenantID))
	if err == sql.ErrNoRows {
		return nil, ErrNoActiveSession
	}
	return s, err
}

// GetByID returns one session of the tenant.  sql.ErrNoRows when it
// does not exist.
func (r *CashSessionRepo) GetByID(ctx context.Context, tenantID, sessionID uint64) (*model.CashSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM cash_sessions
          WHERE id = ? AND tenant_id = ?`
	return scanSession(r.db.QueryRowContext(ctx, q, sessionID, tenantID))
}

// ListByTenant returns the tenant's sessions newest first, for the
// shift history screen.
func (r *CashSessionRepo) ListByTenant(ctx context.Context, tenantID uint64) ([]model.CashSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM cash_sessions
          WHERE tenant_id = ? ORDER BY opened_at DESC`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]model.CashSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SessionSummary is the paid-order aggregation of one session: total
// sales, the per-method breakdown and the number of orders counted.
// It is computed for the mid-shift preview and recomputed at close;
// the two always agree because they share this query.
type SessionSummary struct {
	TotalSales    int64              `json:"total_sales"`
	TotalByMethod model.MethodTotals `json:"total_by_method"`
	OrdersCount   int                `json:"orders_count"`
}

// Summarize aggregates the session's paid orders grouped by payment
// method.  Orders are attributed to a session at payment time via
// cash_session_id, so the scan is bounded by the shift's own volume.
func (r *CashSessionRepo) Summarize(ctx context.Context, tenantID, sessionID uint64) (*SessionSummary, error) {
	return summarize(ctx, r.db, tenantID, sessionID)
}

// SummarizeTx is Summarize within an existing transaction, used at
// close so the aggregation and the closing write are one atomic unit.
func (r *CashSessionRepo) SummarizeTx(ctx context.Context, tx *sql.Tx, tenantID, sessionID uint64) (*SessionSummary, error) {
	return summarize(ctx, tx, tenantID, sessionID)
}

// querier is the subset of *sql.DB / *sql.Tx the aggregation needs.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func summarize(ctx context.Context, q querier, tenantID, sessionID uint64) (*SessionSummary, error) {
	const query = `SELECT payment_method, COUNT(*), COALESCE(SUM(total_amount), 0)
                   FROM orders
                   WHERE tenant_id = ? AND cash_session_id = ? AND status = ?
                   GROUP BY payment_method`
	rows, err := q.QueryContext(ctx, query, tenantID, sessionID, model.OrderPaid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sum SessionSummary
	for rows.Next() {
		var method sql.NullString
		var count int
		var total int64
		if err := rows.Scan(&method, &count, &total); err != nil {
			return nil, err
		}
		sum.TotalSales += total
		sum.OrdersCount += count
		if method.Valid {
			sum.TotalByMethod.Add(method.String, total)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sum, nil
}

// CloseTx writes the closing reconciliation in a single conditional
// UPDATE guarded on is_active, and retires the active_flag so the
// unique key frees up for the next shift.  A session already closed by
// a concurrent terminal yields ErrNoActiveSession; once closed the row
// is never mutated again.
func (r *CashSessionRepo) CloseTx(ctx context.Context, tx *sql.Tx, tenantID, sessionID uint64, closedBy uint64, closedByName string, finalCash, expectedCash, cashDifference int64, sum *SessionSummary, notes string) error {
	const q = `UPDATE cash_sessions SET
                   closed_at = UTC_TIMESTAMP(), closed_by = ?, closed_by_name = ?,
                   final_cash = ?, expected_cash = ?, cash_difference = ?,
                   total_sales = ?, total_cash = ?, total_nequi = ?, total_qr = ?,
                   orders_count = ?, notes = ?, is_active = 0, active_flag = NULL
               WHERE id = ? AND tenant_id = ? AND is_active = 1`
	res, err := tx.ExecContext(ctx, q,
		closedBy, closedByName,
		finalCash, expectedCash, cashDifference,
		sum.TotalSales, sum.TotalByMethod.Cash, sum.TotalByMethod.Nequi, sum.TotalByMethod.QR,
		sum.OrdersCount, notes,
		sessionID, tenantID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoActiveSession
	}
	return nil
}
