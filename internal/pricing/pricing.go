package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// Money represents a monetary value stored in minor units (centavos).
type Money = int64

// PixDiscountBPS is the default PIX discount rate in basis points (5%).
const PixDiscountBPS = 500

// ErrNegativeQty is returned when a line total is requested for a negative quantity.
var ErrNegativeQty = errors.New("pricing: quantity must not be negative")

// Item describes a line item used for total calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// LineTotal computes unitPrice multiplied by qty.
func LineTotal(unitPrice Money, qty int) (Money, error) {
	if qty < 0 {
		return 0, ErrNegativeQty
	}
	if unitPrice < 0 {
		unitPrice = 0
	}
	return Money(qty) * unitPrice, nil
}

// CartTotal sums line totals over all items. An empty slice yields zero.
func CartTotal(items []Item) Money {
	var total Money
	for _, it := range items {
		if it.Qty <= 0 || it.UnitPrice <= 0 {
			continue
		}
		total += Money(it.Qty) * it.UnitPrice
	}
	return total
}

// PixDiscount returns the discount for the given total at the provided rate,
// rounded half-up to the nearest centavo. The discount is computed once here
// and every derived figure must reuse it so totals reconcile to the cent.
func PixDiscount(total Money, bps int) Money {
	if total <= 0 || bps <= 0 {
		return 0
	}
	return (total*Money(bps) + 5000) / 10000
}

// TotalWithPixDiscount derives the discounted total by subtracting the rounded
// discount from the original total, never by an independent computation.
func TotalWithPixDiscount(total Money, bps int) Money {
	if total <= 0 {
		return 0
	}
	return total - PixDiscount(total, bps)
}

// Installment is a single entry of an installment plan.
type Installment struct {
	Count          int    `json:"count"`
	PerInstallment Money  `json:"perInstallment"`
	Total          Money  `json:"total"`
	HasInterest    bool   `json:"hasInterest"`
	InterestRate   int    `json:"interestRate"`
	Label          string `json:"label"`
}

// InstallmentPlan builds the schedule offered for card payments. Every plan is
// interest-free by business policy; HasInterest and InterestRate are kept
// separate because the flag marks which counts would carry interest once a
// non-zero rate is configured.
func InstallmentPlan(total Money, max int) []Installment {
	if max < 1 {
		max = 1
	}
	plan := make([]Installment, 0, max)
	for i := 1; i <= max; i++ {
		per := Money(0)
		if total > 0 {
			per = total / Money(i)
		}
		entry := Installment{
			Count:          i,
			PerInstallment: per,
			Total:          total,
			HasInterest:    i > 1,
			InterestRate:   0,
		}
		if i == 1 {
			entry.Label = "À vista"
		} else {
			entry.Label = fmt.Sprintf("%dx de %s sem juros", i, FormatBRL(per))
		}
		plan = append(plan, entry)
	}
	return plan
}

// FormatBRL renders a minor-unit amount as a Brazilian currency string,
// e.g. 119700 -> "R$ 1.197,00".
func FormatBRL(amount Money) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	reais := amount / 100
	cents := amount % 100

	digits := fmt.Sprintf("%d", reais)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte('.')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte('.')
		}
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), cents)
}
