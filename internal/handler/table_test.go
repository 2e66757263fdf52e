package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procafees/cafe-pos/internal/repository"
)

func TestUpdateTableStatusValidation(t *testing.T) {
	h := NewTableHandler(repository.NewTableRepo(nil))

	c, rec := newTestContext(http.MethodPatch, "/v1/tables/2/status", `{"status":"broken"}`)
	c.SetParamNames("id")
	c.SetParamValues("2")
	authed(c)
	require.NoError(t, h.UpdateTableStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Occupying without an order to link is rejected before any write.
	c, rec = newTestContext(http.MethodPatch, "/v1/tables/2/status", `{"status":"occupied"}`)
	c.SetParamNames("id")
	c.SetParamValues("2")
	authed(c)
	require.NoError(t, h.UpdateTableStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "current_order_id")
}
