package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procafees/cafe-pos/internal/repository"
)

func TestRecordMovementValidation(t *testing.T) {
	h := NewInventoryHandler(repository.NewInventoryRepo(nil))
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown type", `{"type":"waste","quantity":5}`, "in, out or adjustment"},
		{"zero quantity in", `{"type":"in","quantity":0}`, "quantity must be positive"},
		{"negative adjustment", `{"type":"adjustment","quantity":-3}`, "cannot be negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodPost, "/v1/inventory/items/4/movements", tc.body)
			c.SetParamNames("id")
			c.SetParamValues("4")
			authed(c)
			require.NoError(t, h.RecordMovement(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}
