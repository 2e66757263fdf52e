package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	// allowed
	assert.True(t, CanTransition(OrderOpen, OrderPaid))
	assert.True(t, CanTransition(OrderOpen, OrderCancelled))
	assert.True(t, CanTransition(OrderOpen, OrderDelivered))
	assert.True(t, CanTransition(OrderPaid, OrderDelivered))

	// cancelled and delivered are terminal
	assert.False(t, CanTransition(OrderCancelled, OrderOpen))
	assert.False(t, CanTransition(OrderCancelled, OrderPaid))
	assert.False(t, CanTransition(OrderDelivered, OrderOpen))
	assert.False(t, CanTransition(OrderDelivered, OrderPaid))

	// paying twice, or reopening, is rejected
	assert.False(t, CanTransition(OrderPaid, OrderPaid))
	assert.False(t, CanTransition(OrderPaid, OrderOpen))
	assert.False(t, CanTransition(OrderPaid, OrderCancelled))
}

func TestReconcile(t *testing.T) {
	// one cash order of 12000 against a 50000 float, drawer counts clean
	expected, diff := Reconcile(50000, 62000, MethodTotals{Cash: 12000})
	assert.Equal(t, int64(62000), expected)
	assert.Equal(t, int64(0), diff)

	// non-cash methods never contribute to expected drawer cash
	expected, diff = Reconcile(50000, 50000, MethodTotals{Nequi: 30000, QR: 8000})
	assert.Equal(t, int64(50000), expected)
	assert.Equal(t, int64(0), diff)

	// shortage is negative, surplus positive
	_, diff = Reconcile(20000, 18500, MethodTotals{Cash: 0})
	assert.Equal(t, int64(-1500), diff)
	_, diff = Reconcile(20000, 21000, MethodTotals{})
	assert.Equal(t, int64(1000), diff)
}

func TestMethodTotalsAdd(t *testing.T) {
	var tot MethodTotals
	tot.Add(MethodCash, 12000)
	tot.Add(MethodNequi, 8000)
	tot.Add(MethodQR, 5000)
	tot.Add(MethodCash, 3000)
	tot.Add("", 9999)        // orders with no method recorded are skipped
	tot.Add("unknown", 9999) // unknown methods are skipped

	assert.Equal(t, MethodTotals{Cash: 15000, Nequi: 8000, QR: 5000}, tot)
}
