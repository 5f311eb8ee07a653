package calculator

import (
	"github.com/fooddept/fdbms/internal/models"
	"github.com/fooddept/fdbms/internal/money"
)

// ComputeCommodity recomputes a commodity row's amount from its quantity
// and rate per 100 kg.
func ComputeCommodity(c models.Commodity) models.Commodity {
	c.QuantityKgs = money.Finite(c.QuantityKgs)
	c.RatePer100Kg = money.Finite(c.RatePer100Kg)
	c.Amount = money.Round2(c.QuantityKgs * c.RatePer100Kg / 100)
	return c
}

// DefaultCommodities returns the three commodity rows of a new grinding
// bill priced at the configured rates.
func DefaultCommodities(rates GrindingRateConfig, newID func() string) []models.Commodity {
	names := []string{models.CommodityWholeMeal, models.CommodityFineAtta, models.CommodityBran}
	out := make([]models.Commodity, len(names))
	for i, name := range names {
		out[i] = models.Commodity{ID: newID(), Name: name, RatePer100Kg: rates.CommodityRates[name]}
	}
	return out
}

// ComputeGrindingDeductions derives the statutory deductions of a grinding
// bill from its total amount. Education cess is taken from the rounded
// income tax line.
func ComputeGrindingDeductions(totalAmount float64, rates GrindingRateConfig) models.GrindingDeductions {
	totalAmount = money.Finite(totalAmount)
	incomeTax := money.Round2(totalAmount * rates.IncomeTaxRate)
	return models.GrindingDeductions{
		IncomeTax:      incomeTax,
		TajveedUlQuran: money.Round2(totalAmount / 1000 * rates.TajveedPer1000),
		EducationCess:  money.Round2(incomeTax * rates.EducationCessRate),
		KLC:            money.Round2(totalAmount / 1000 * rates.KLCPer1000),
		StumpDuty:      money.Round2(totalAmount * rates.StumpDutyRate),
	}
}

// ApplyGrinding recomputes every derived field of a grinding bill.
//
// The bran quantity is taken from the Bran commodity row. The e-bags
// and bran price amounts are paid to the director and come off the
// amount the mill receives. Rates already on the bill win over the
// configured defaults; a zero rate falls back to the default.
func ApplyGrinding(bill models.GrindingBill, rates GrindingRateConfig) models.GrindingBill {
	commodities := make([]models.Commodity, len(bill.Commodities))
	amounts := make([]float64, len(bill.Commodities))
	var branQty float64
	for i, c := range bill.Commodities {
		commodities[i] = ComputeCommodity(c)
		amounts[i] = commodities[i].Amount
		if c.Name == models.CommodityBran && branQty == 0 {
			branQty = commodities[i].QuantityKgs
		}
	}
	total := money.Sum(amounts...)

	deductions := ComputeGrindingDeductions(total, rates)
	totalDeduction := money.Sum(
		deductions.IncomeTax,
		deductions.TajveedUlQuran,
		deductions.EducationCess,
		deductions.KLC,
		deductions.StumpDuty,
		CustomTotal(bill.CustomDeductions),
	)
	net := money.Sub(total, totalDeduction)

	eBags := bill.OtherDeductions.EBags
	eBags.Bags = money.Finite(eBags.Bags)
	eBags.Rate = rateOrDefault(eBags.Rate, rates.EBagsRate)
	eBags.Amount = money.Round2(eBags.Bags * eBags.Rate)

	bran := bill.OtherDeductions.BranPrice
	bran.Quantity = branQty
	bran.Rate = rateOrDefault(bran.Rate, rates.BranPriceRate)
	bran.Amount = money.Round2(branQty * bran.Rate)

	toDirector := money.Sum(eBags.Amount, bran.Amount)
	final := money.Sub(net, toDirector)

	bill.Commodities = commodities
	bill.TotalAmount = total
	bill.Deductions = deductions
	bill.TotalDeduction = totalDeduction
	bill.NetAmountAfterTaxes = net
	bill.OtherDeductions = models.OtherDeductions{EBags: eBags, BranPrice: bran}
	bill.AmountToDirector = toDirector
	bill.FinalAmountToMill = final
	bill.AmountInWords = AmountInWords(final)
	return bill
}

func rateOrDefault(rate, fallback float64) float64 {
	rate = money.Finite(rate)
	if rate == 0 {
		return fallback
	}
	return rate
}
