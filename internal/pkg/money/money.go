package money

import "github.com/shopspring/decimal"

// Net derives the take-home amount of a payroll record.
// net = gross - deductions + bonuses
func Net(gross, deductions, bonuses decimal.Decimal) decimal.Decimal {
	return gross.Sub(deductions).Add(bonuses)
}

// Sum adds amounts with exact decimal arithmetic.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// SumBreakdown totals a category->amount breakdown map.
func SumBreakdown(detail map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range detail {
		total = total.Add(a)
	}
	return total
}
