// Package amortize implements fixed-rate loan arithmetic. The functions are
// pure so quoting can be tested without any workflow state.
package amortize

import "math"

// Quote is the result of amortizing a loan. Monetary values are rounded to
// two decimals for display; the underlying schedule is computed without
// intermediate rounding. LoanToValuePercent and DownPaymentPercent are nil
// for pre-approval quotes where no property is attached - not-applicable is
// distinct from zero.
type Quote struct {
	MonthlyPayment     float64
	TotalInterest      float64
	TotalPayment       float64
	LoanToValuePercent *float64
	DownPaymentPercent *float64
}

// Round2 rounds a monetary value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func monthlyPayment(principal, annualRatePercent float64, months int) float64 {
	monthlyRate := annualRatePercent / 100 / 12
	if monthlyRate == 0 {
		// Zero-rate loans divide the principal evenly; the closed-form
		// formula would divide by zero here.
		return principal / float64(months)
	}
	factor := math.Pow(1+monthlyRate, float64(months))
	return principal * monthlyRate * factor / (factor - 1)
}

// Loan amortizes a principal directly, as used for pre-approval requests
// where no property value is known.
func Loan(principal, annualRatePercent float64, termYears int) Quote {
	months := termYears * 12
	payment := monthlyPayment(principal, annualRatePercent, months)
	total := payment * float64(months)
	return Quote{
		MonthlyPayment: Round2(payment),
		TotalInterest:  Round2(total - principal),
		TotalPayment:   Round2(total),
	}
}

// Purchase amortizes a property purchase: the principal is the property value
// minus the down payment, and the quote carries loan-to-value and
// down-payment ratios.
func Purchase(propertyValue, downPayment, annualRatePercent float64, termYears int) Quote {
	principal := propertyValue - downPayment
	quote := Loan(principal, annualRatePercent, termYears)
	ltv := Round2(principal / propertyValue * 100)
	down := Round2(downPayment / propertyValue * 100)
	quote.LoanToValuePercent = &ltv
	quote.DownPaymentPercent = &down
	return quote
}
