// Package utils provides small pure helpers shared by the handlers:
// money math for order items, phone validation for takeout/delivery
// orders and the flattened modifier rendering sent to the bar display.
package utils

import (
	"fmt"
	"strings"

	"github.com/procafees/cafe-pos/internal/model"
)

// ItemSubtotal computes the price of one order line: the unit price
// plus the sum of every selected option's delta, multiplied by the
// quantity.  This formula is fixed; the stored subtotal of an item is
// never recomputed after the order is placed.
func ItemSubtotal(unitPrice int64, quantity uint32, modifiers []model.ItemModifier) int64 {
	var delta int64
	for _, m := range modifiers {
		for _, o := range m.Options {
			delta += o.PriceDelta
		}
	}
	return (unitPrice + delta) * int64(quantity)
}

// ValidPhone reports whether a phone number contains between 7 and 10
// digits once every non-digit character is stripped.  Matches the
// Colombian landline/mobile lengths the register accepts.
func ValidPhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 10
}

// FlattenModifiers renders an item's modifiers as a single line for the
// bar display: "GroupName: option1, option2; GroupName2: option3".
// Groups with no selected options are skipped.
func FlattenModifiers(modifiers []model.ItemModifier) string {
	parts := make([]string, 0, len(modifiers))
	for _, m := range modifiers {
		if len(m.Options) == 0 {
			continue
		}
		names := make([]string, 0, len(m.Options))
		for _, o := range m.Options {
			names = append(names, o.Name)
		}
		parts = append(parts, m.GroupName+": "+strings.Join(names, ", "))
	}
	return strings.Join(parts, "; ")
}

// FormatPrice renders a whole-COP amount with thousands separators,
// e.g. 12000 -> "$12.000".  Negative amounts keep the sign in front of
// the currency symbol.
func FormatPrice(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
