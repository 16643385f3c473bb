package utils

import (
	"github.com/shopspring/decimal"
)

// CalculateLineTotal returns unitPrice * qty * (1 + taxRatePercent/100).
// Pure decimal arithmetic; callers reject negative qty/price before this point.
func CalculateLineTotal(unitPrice decimal.Decimal, qty decimal.Decimal, taxRatePercent decimal.Decimal) decimal.Decimal {
	taxFactor := decimal.NewFromInt(1).Add(taxRatePercent.Div(decimal.NewFromInt(100)))
	return unitPrice.Mul(qty).Mul(taxFactor)
}

// CalculateDocumentTotal sums line totals and adds stamp duty (zero for
// purchase orders). No intermediate rounding; RoundMoney is applied only at
// display boundaries.
func CalculateDocumentTotal(lineTotals []decimal.Decimal, stampDuty decimal.Decimal) decimal.Decimal {
	total := stampDuty
	for _, lt := range lineTotals {
		total = total.Add(lt)
	}
	return total
}

// RoundMoney rounds to 2 decimal places for output. Never call between
// intermediate additions within one document total.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
