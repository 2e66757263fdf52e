package handler // handler defines the HTTP handlers of the core

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  Claims arrive as float64 when decoded from JSON and as
// strings from older token issuers.
func getUserID(c echo.Context) (uint64, error) {
	return contextUint(c, "user_id")
}

// getTenantID extracts the tenant_id claim.  Every read and write is
// scoped by it; a token without a tenant cannot touch any data.
func getTenantID(c echo.Context) (uint64, error) {
	return contextUint(c, "tenant_id")
}

// getUserName returns the display name claim, or an empty string when
// the token carries none.
func getUserName(c echo.Context) string {
	if v, ok := c.Get("user_name").(string); ok {
		return v
	}
	return ""
}

func contextUint(c echo.Context, key string) (uint64, error) {
	v := c.Get(key)
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid " + key + " in context")
}

// actor bundles the identity fields stamped onto writes.
type actor struct {
	ID       uint64
	Name     string
	TenantID uint64
}

// getActor resolves the authenticated actor and tenant from the
// context, or an error when the token is missing either claim.
func getActor(c echo.Context) (actor, error) {
	id, err := getUserID(c)
	if err != nil {
		return actor{}, err
	}
	tenant, err := getTenantID(c)
	if err != nil {
		return actor{}, err
	}
	return actor{ID: id, Name: getUserName(c), TenantID: tenant}, nil
}

// pathID parses a numeric path parameter.  Zero is never a valid id.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
