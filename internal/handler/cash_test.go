package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procafees/cafe-pos/internal/repository"
)

func TestOpenSessionRejectsNegativeFloat(t *testing.T) {
	h := NewCashHandler(repository.NewCashSessionRepo(nil))
	c, rec := newTestContext(http.MethodPost, "/v1/cash/sessions", `{"initial_cash":-100}`)
	authed(c)
	require.NoError(t, h.OpenSession(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "initial_cash")
}

func TestCloseSessionRejectsNegativeCount(t *testing.T) {
	h := NewCashHandler(repository.NewCashSessionRepo(nil))
	c, rec := newTestContext(http.MethodPost, "/v1/cash/sessions/close", `{"final_cash":-1}`)
	authed(c)
	require.NoError(t, h.CloseSession(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "final_cash")
}

func TestOpenSessionRejectsUnauthenticated(t *testing.T) {
	h := NewCashHandler(repository.NewCashSessionRepo(nil))
	c, rec := newTestContext(http.MethodPost, "/v1/cash/sessions", `{"initial_cash":50000}`)
	require.NoError(t, h.OpenSession(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
