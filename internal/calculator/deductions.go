package calculator

import (
	"strings"

	"github.com/fooddept/fdbms/internal/models"
	"github.com/fooddept/fdbms/internal/money"
)

// Deductions is the outcome of the transportation deduction pipeline.
type Deductions struct {
	Set             models.DeductionSet `json:"deductions"`
	TotalDeductions float64             `json:"totalDeductions"`
	NetAmount       float64             `json:"netAmount"`
}

// ComputeDeductions derives the statutory deductions of a transportation
// bill from its grand total.
//
// Each line is computed from grandTotal and rounded on its own, except
// education cess which is a fraction of the rounded income tax line. The
// penalty depends only on delayDays. Totals are sums of rounded lines.
// NetAmount may be negative.
func ComputeDeductions(grandTotal float64, delayDays int, rates RateConfig, custom []models.CustomDeduction) Deductions {
	grandTotal = money.Finite(grandTotal)

	incomeTax := money.Round2(grandTotal * rates.IncomeTaxRate)
	set := models.DeductionSet{
		Penalty:           money.Round2(float64(delayDays) * rates.PenaltyPerDay),
		IncomeTax:         incomeTax,
		TajveedUlQuran:    money.Round2(grandTotal / 1000 * rates.TajveedPer1000),
		EducationCess:     money.Round2(incomeTax * rates.EducationCessRate),
		KLC:               money.Round2(grandTotal * rates.KLCRate),
		SDCurrent:         money.Round2(grandTotal * rates.SDRate),
		GSTCurrent:        money.Round2(grandTotal * rates.GSTRate),
		Others:            CustomTotal(custom),
		OthersDescription: CustomLabels(custom),
	}

	total := money.Sum(
		set.Penalty,
		set.IncomeTax,
		set.TajveedUlQuran,
		set.EducationCess,
		set.KLC,
		set.SDCurrent,
		set.GSTCurrent,
		set.Others,
	)

	return Deductions{
		Set:             set,
		TotalDeductions: total,
		NetAmount:       money.Sub(grandTotal, total),
	}
}

// CustomTotal is the rounded sum of the custom deduction values.
func CustomTotal(custom []models.CustomDeduction) float64 {
	values := make([]float64, len(custom))
	for i, d := range custom {
		values[i] = d.Value
	}
	return money.Round2(money.Sum(values...))
}

// CustomLabels joins the non-empty custom deduction labels.
func CustomLabels(custom []models.CustomDeduction) string {
	labels := make([]string, 0, len(custom))
	for _, d := range custom {
		if d.Label != "" {
			labels = append(labels, d.Label)
		}
	}
	return strings.Join(labels, ", ")
}

// ApplyTransport recomputes every derived field of a transportation bill:
// items, grand total, deductions, net amount and the amount in words.
func ApplyTransport(bill models.TransportBill, mode ModeConfig, rates RateConfig) models.TransportBill {
	items, grandTotal := ComputeLineItems(bill.Items, mode)
	d := ComputeDeductions(grandTotal, bill.DelayDays, rates, bill.CustomDeductions)

	bill.Items = items
	bill.GrandTotal = grandTotal
	bill.Deductions = d.Set
	bill.TotalDeductions = d.TotalDeductions
	bill.NetAmount = d.NetAmount
	bill.AmountInWords = AmountInWords(d.NetAmount)
	return bill
}
