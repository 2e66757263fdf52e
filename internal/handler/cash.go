package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/procafees/cafe-pos/internal/model"
	"github.com/procafees/cafe-pos/internal/queue"
	"github.com/procafees/cafe-pos/internal/repository"
	queue_publisher "github.com/procafees/cafe-pos/internal/service"
)

// CashHandler exposes the drawer lifecycle: open, close with
// reconciliation, the mid-shift summary and the shift history.
type CashHandler struct {
	SessionRepo *repository.CashSessionRepo
}

// NewCashHandler constructs a new CashHandler.
func NewCashHandler(sessionRepo *repository.CashSessionRepo) *CashHandler {
	if sessionRepo == nil {
		panic("nil repository passed to NewCashHandler")
	}
	return &CashHandler{SessionRepo: sessionRepo}
}

// OpenSession handles POST /v1/cash/sessions.  The conditional insert
// guarantees at most one active session per tenant; losing the race
// yields a 409.
func (h *CashHandler) OpenSession(c echo.Context) error {
	act, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		InitialCash int64  `json:"initial_cash"`
		Notes       string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.InitialCash < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "initial_cash cannot be negative"})
	}
	session := model.CashSession{
		TenantID:     act.TenantID,
		OpenedBy:     act.ID,
		OpenedByName: act.Name,
		InitialCash:  req.InitialCash,
		Notes:        req.Notes,
	}
	ctx := c.Request().Context()
	if err := h.SessionRepo.Open(ctx, &session); err != nil {
		if errors.Is(err, repository.ErrSessionAlreadyActive) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a cash session is already active"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to open session"})
	}
	_ = queue_publisher.PublishChange(ctx, queue.ChangeEvent{
		Action:   queue.ActionSessionOpened,
		TenantID: act.TenantID,
		Session:  &session,
	})
	return c.JSON(http.StatusCreated, session)
}

// CloseSession handles POST /v1/cash/sessions/close.  The active
// session is locked, its paid orders aggregated, the drawer reconciled
// and the close written in one transaction.  Closed sessions are never
// mutated again.
func (h *CashHandler) CloseSession(c echo.Context) error {
	act, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		FinalCash int64  `json:"final_cash"`
		Notes     string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.FinalCash < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "final_cash cannot be negative"})
	}

	ctx := c.Request().Context()
	tx, err := h.SessionRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	session, err := h.SessionRepo.ActiveForUpdateTx(ctx, tx, act.TenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSession) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "no active cash session"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	sum, err := h.SessionRepo.SummarizeTx(ctx, tx, act.TenantID, session.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to aggregate session"})
	}
	expected, difference := model.Reconcile(session.InitialCash, req.FinalCash, sum.TotalByMethod)

	notes := session.Notes
	if req.Notes != "" {
		notes = req.Notes
	}
	if err := h.SessionRepo.CloseTx(ctx, tx, act.TenantID, session.ID, act.ID, act.Name, req.FinalCash, expected, difference, sum, notes); err != nil {
		if errors.Is(err, repository.ErrNoActiveSession) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "no active cash session"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to close session"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit"})
	}
	committed = true

	closed, err := h.SessionRepo.GetByID(ctx, act.TenantID, session.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	_ = queue_publisher.PublishChange(ctx, queue.ChangeEvent{
		Action:   queue.ActionSessionClosed,
		TenantID: act.TenantID,
		Session:  closed,
	})
	return c.JSON(http.StatusOK, closed)
}

// GetSummary handles GET /v1/cash/sessions/:id/summary.  Active
// sessions aggregate live; closed sessions answer from the frozen
// closing figures, which share the same aggregation query, so the
// preview and the close always agree.
func (h *CashHandler) GetSummary(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	ctx := c.Request().Context()
	session, err := h.SessionRepo.GetByID(ctx, tenantID, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	var sum *repository.SessionSummary
	if session.IsActive {
		sum, err = h.SessionRepo.Summarize(ctx, tenantID, sessionID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to aggregate session"})
		}
	} else {
		sum = &repository.SessionSummary{
			TotalSales:    session.TotalSales,
			TotalByMethod: session.TotalByMethod,
			OrdersCount:   session.OrdersCount,
		}
	}

	resp := echo.Map{
		"session": session,
		"summary": sum,
	}
	if session.IsActive {
		// Preview of the reconciliation so far: what the drawer should
		// hold if it were counted right now.
		resp["expected_cash"] = session.InitialCash + sum.TotalByMethod.Cash
	}
	return c.JSON(http.StatusOK, resp)
}

// ListSessions handles GET /v1/cash/sessions, newest first.
func (h *CashHandler) ListSessions(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sessions, err := h.SessionRepo.ListByTenant(c.Request().Context(), tenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": sessions})
}

// GetActive handles GET /v1/cash/sessions/active.
func (h *CashHandler) GetActive(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	session, err := h.SessionRepo.Active(c.Request().Context(), tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSession) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active cash session"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, session)
}
