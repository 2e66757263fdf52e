package middleware

// identity.go defines helper functions shared across middleware files:
// identifier extraction from the context values JWTAuth stores.  The
// helpers normalize the loose types claims arrive as (float64 from
// JSON numbers, strings from older token issuers) so cache keys and
// rate-limit keys stay stable across issuer versions.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a stable string form of the authenticated
// actor's id, or "anon" when no user is authenticated.
func currentUserID(c echo.Context) string {
	return contextID(c, "user_id", "anon")
}

// currentTenantID returns a stable string form of the tenant claim, or
// "none" when missing.  Every cache key includes it so live views of
// one tenant can never be served to another.
func currentTenantID(c echo.Context) string {
	return contextID(c, "tenant_id", "none")
}

func contextID(c echo.Context, key, fallback string) string {
	v := c.Get(key)
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return fmt.Sprintf("%.0f", t)
	case uint64:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	}
	return fallback
}
