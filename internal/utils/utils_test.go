package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/procafees/cafe-pos/internal/model"
)

func TestItemSubtotal(t *testing.T) {
	// plain item, no modifiers
	assert.Equal(t, int64(8000), ItemSubtotal(4000, 2, nil))

	// option deltas apply per unit, before the quantity multiplier
	mods := []model.ItemModifier{
		{
			GroupID:   1,
			GroupName: "Leche",
			Options: []model.ModifierOption{
				{ID: 10, Name: "Avena", PriceDelta: 1500},
			},
		},
		{
			GroupID:   2,
			GroupName: "Tamaño",
			Options: []model.ModifierOption{
				{ID: 20, Name: "Grande", PriceDelta: 2000},
				{ID: 21, Name: "Extra shot", PriceDelta: 500},
			},
		},
	}
	assert.Equal(t, int64((4000+1500+2000+500)*3), ItemSubtotal(4000, 3, mods))

	// negative deltas are allowed (e.g. "sin crema" promos)
	neg := []model.ItemModifier{{
		GroupName: "Promo",
		Options:   []model.ModifierOption{{Name: "Descuento", PriceDelta: -1000}},
	}}
	assert.Equal(t, int64(3000), ItemSubtotal(4000, 1, neg))
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("3001234567"))
	assert.True(t, ValidPhone("300 123 4567"))
	assert.True(t, ValidPhone("(1) 234-5678"))
	assert.True(t, ValidPhone("1234567")) // 7-digit landline

	assert.False(t, ValidPhone(""))
	assert.False(t, ValidPhone("123456"))      // too short
	assert.False(t, ValidPhone("12345678901")) // too long
	assert.False(t, ValidPhone("sin telefono"))
}

func TestFlattenModifiers(t *testing.T) {
	mods := []model.ItemModifier{
		{
			GroupName: "Leche",
			Options: []model.ModifierOption{
				{Name: "Avena"},
				{Name: "Deslactosada"},
			},
		},
		{GroupName: "Vacio"}, // no options selected, skipped
		{
			GroupName: "Tamaño",
			Options:   []model.ModifierOption{{Name: "Grande"}},
		},
	}
	assert.Equal(t, "Leche: Avena, Deslactosada; Tamaño: Grande", FlattenModifiers(mods))
	assert.Equal(t, "", FlattenModifiers(nil))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$0", FormatPrice(0))
	assert.Equal(t, "$4.000", FormatPrice(4000))
	assert.Equal(t, "$12.000", FormatPrice(12000))
	assert.Equal(t, "$1.250.000", FormatPrice(1250000))
	assert.Equal(t, "-$500", FormatPrice(-500))
}
