package calculator

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fooddept/fdbms/internal/money"
)

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// numberToWords spells n using the lakh and crore grouping.
func numberToWords(n int64) string {
	switch {
	case n < 20:
		return ones[n]
	case n < 100:
		return strings.TrimSpace(tens[n/10] + " " + ones[n%10])
	case n < 1000:
		if n%100 == 0 {
			return ones[n/100] + " Hundred"
		}
		return ones[n/100] + " Hundred And " + numberToWords(n%100)
	case n < 100000:
		return group(n, 1000, "Thousand")
	case n < 10000000:
		return group(n, 100000, "Lakh")
	default:
		return group(n, 10000000, "Crore")
	}
}

func group(n, unit int64, name string) string {
	head := numberToWords(n/unit) + " " + name
	if n%unit == 0 {
		return head
	}
	return head + " " + numberToWords(n%unit)
}

// AmountInWords spells a rupee amount the way it is printed on a bill,
// for example "One Thousand Two Hundred And Five Rupees And Fifty Paisa
// Only". Paisa are rounded to the nearest whole paisa.
func AmountInWords(amount float64) string {
	d := decimal.NewFromFloat(money.Finite(amount)).Round(2)
	if d.IsZero() {
		return "Zero"
	}

	prefix := ""
	if d.IsNegative() {
		prefix = "Minus "
		d = d.Neg()
	}

	rupees := d.Truncate(0)
	paisa := d.Sub(rupees).Shift(2).IntPart()

	words := numberToWords(rupees.IntPart())
	if words == "" {
		words = "Zero"
	}
	words += " Rupees"
	if paisa > 0 {
		words += " And " + numberToWords(paisa) + " Paisa"
	}
	return prefix + words + " Only"
}
