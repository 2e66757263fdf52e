// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios: a
// business precondition that failed (table already taken, a second
// cash session, a forbidden order transition) is surfaced to the
// operator with a specific message, while plain sql.ErrNoRows maps to
// a not-found response.
package repository

import "errors"

// ErrTableNotAvailable is returned when a conditional table occupation
// finds the table in any status other than available.  Two terminals
// racing for the same table produce exactly one winner; the loser sees
// this error and no partial order state.  Handlers should translate it
// into an HTTP 409 response.
var ErrTableNotAvailable = errors.New("table not available")

// ErrSessionAlreadyActive is returned when opening a cash session while
// the tenant already has an active one.  The check is enforced by a
// conditional insert, not a read-then-write, so concurrent opens from
// two terminals cannot both succeed.  Maps to HTTP 409.
var ErrSessionAlreadyActive = errors.New("cash session already active")

// ErrNoActiveSession is returned when closing or summarizing the active
// cash session of a tenant that has none open.  Maps to HTTP 409.
var ErrNoActiveSession = errors.New("no active cash session")

// ErrInvalidTransition is returned when an order status change is not
// permitted by the order state machine (for example paying a cancelled
// order).  The order is left untouched.  Maps to HTTP 409.
var ErrInvalidTransition = errors.New("invalid order transition")
