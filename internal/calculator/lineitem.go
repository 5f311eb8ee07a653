package calculator

import (
	"github.com/fooddept/fdbms/internal/models"
	"github.com/fooddept/fdbms/internal/money"
)

// ComputeLineItem recomputes every derived field of a bill item.
//
// Normal mode: grossKgs = netKgs = bags * KgPerBag, and all Bardana-only
// fields are cleared. Bardana mode: bags = ppBags + juteBags, bardanaKgs
// counts only the flagged bag types, and grossKgs = netKgs + bardanaKgs
// with netKgs taken as entered. Any mode other than Bardana is Normal.
//
// Non-finite numbers are treated as 0. The input is not modified and the
// function is idempotent.
func ComputeLineItem(item models.BillItem, cfg ModeConfig) models.BillItem {
	out := item
	out.RatePerKg = money.Finite(item.RatePerKg)
	out.Bags = money.Finite(item.Bags)
	out.PPBags = money.Finite(item.PPBags)
	out.JuteBags = money.Finite(item.JuteBags)
	out.NetKgs = money.Finite(item.NetKgs)

	if item.Mode == models.ModeBardana {
		out.BagTypes = append([]string{}, item.BagTypes...)
		out.Bags = out.PPBags + out.JuteBags

		var bardana float64
		if item.HasBagType(models.BagPP) {
			bardana += out.PPBags * cfg.PPBagBardanaKg
		}
		if item.HasBagType(models.BagJute) {
			bardana += out.JuteBags * cfg.JuteBagBardanaKg
		}
		out.BardanaKgs = bardana
		out.GrossKgs = out.NetKgs + out.BardanaKgs
	} else {
		out.Mode = models.ModeNormal
		out.GrossKgs = out.Bags * cfg.KgPerBag
		out.NetKgs = out.GrossKgs
		out.BardanaKgs = 0
		out.PPBags = 0
		out.JuteBags = 0
		out.BagTypes = []string{}
	}

	out.Amount = money.Round2(out.NetKgs * out.RatePerKg)
	return out
}

// ComputeLineItems applies ComputeLineItem to each item and returns the
// computed items with their grand total.
func ComputeLineItems(items []models.BillItem, cfg ModeConfig) ([]models.BillItem, float64) {
	out := make([]models.BillItem, len(items))
	amounts := make([]float64, len(items))
	for i, item := range items {
		out[i] = ComputeLineItem(item, cfg)
		amounts[i] = out[i].Amount
	}
	return out, money.Sum(amounts...)
}
