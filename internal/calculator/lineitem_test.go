package calculator

import (
	"math"
	"reflect"
	"testing"

	"github.com/fooddept/fdbms/internal/models"
)

func TestComputeLineItem(t *testing.T) {
	cfg := DefaultModeConfig()

	tests := []struct {
		name         string
		item         models.BillItem
		wantBags     float64
		wantGross    float64
		wantBardana  float64
		wantNet      float64
		wantAmount   float64
		wantBagTypes []string
	}{
		{
			name:         "normal mode derives weight from bags",
			item:         models.BillItem{Mode: models.ModeNormal, Bags: 100, RatePerKg: 4.2155},
			wantBags:     100,
			wantGross:    2000,
			wantNet:      2000,
			wantAmount:   8431,
			wantBagTypes: []string{},
		},
		{
			name:         "normal mode ignores entered net weight",
			item:         models.BillItem{Mode: models.ModeNormal, Bags: 10, NetKgs: 999, RatePerKg: 1},
			wantBags:     10,
			wantGross:    200,
			wantNet:      200,
			wantAmount:   200,
			wantBagTypes: []string{},
		},
		{
			name: "bardana counts only flagged bag types",
			item: models.BillItem{
				Mode:      models.ModeBardana,
				BagTypes:  []string{models.BagPP},
				PPBags:    200,
				JuteBags:  50,
				NetKgs:    5000,
				RatePerKg: 2,
			},
			wantBags:     250,
			wantGross:    5023,
			wantBardana:  23,
			wantNet:      5000,
			wantAmount:   10000,
			wantBagTypes: []string{models.BagPP},
		},
		{
			name: "bardana with both bag types",
			item: models.BillItem{
				Mode:      models.ModeBardana,
				BagTypes:  []string{models.BagPP, models.BagJute},
				PPBags:    200,
				JuteBags:  50,
				NetKgs:    5000,
				RatePerKg: 0.5,
			},
			wantBags:     250,
			wantGross:    5073,
			wantBardana:  73,
			wantNet:      5000,
			wantAmount:   2500,
			wantBagTypes: []string{models.BagPP, models.BagJute},
		},
		{
			name:         "non-finite inputs become zero",
			item:         models.BillItem{Mode: models.ModeNormal, Bags: math.NaN(), RatePerKg: math.Inf(1)},
			wantBagTypes: []string{},
		},
		{
			name:         "unknown mode is normal",
			item:         models.BillItem{Mode: "Sideways", Bags: 1, RatePerKg: 1},
			wantBags:     1,
			wantGross:    20,
			wantNet:      20,
			wantAmount:   20,
			wantBagTypes: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLineItem(tt.item, cfg)

			if got.Bags != tt.wantBags {
				t.Errorf("Bags = %v, want %v", got.Bags, tt.wantBags)
			}
			if math.Abs(got.GrossKgs-tt.wantGross) > 1e-9 {
				t.Errorf("GrossKgs = %v, want %v", got.GrossKgs, tt.wantGross)
			}
			if math.Abs(got.BardanaKgs-tt.wantBardana) > 1e-9 {
				t.Errorf("BardanaKgs = %v, want %v", got.BardanaKgs, tt.wantBardana)
			}
			if got.NetKgs != tt.wantNet {
				t.Errorf("NetKgs = %v, want %v", got.NetKgs, tt.wantNet)
			}
			if got.Amount != tt.wantAmount {
				t.Errorf("Amount = %v, want %v", got.Amount, tt.wantAmount)
			}
			if !reflect.DeepEqual(got.BagTypes, tt.wantBagTypes) {
				t.Errorf("BagTypes = %v, want %v", got.BagTypes, tt.wantBagTypes)
			}
		})
	}
}

func TestComputeLineItemIsIdempotent(t *testing.T) {
	cfg := DefaultModeConfig()
	inputs := []models.BillItem{
		{Mode: models.ModeNormal, Bags: 37, RatePerKg: 4.4599},
		{Mode: models.ModeBardana, BagTypes: []string{models.BagJute}, PPBags: 3, JuteBags: 11, NetKgs: 1234.5, RatePerKg: 5.1455},
		{Mode: models.ModeBardana, BagTypes: []string{models.BagPP, models.BagJute}, PPBags: 7, NetKgs: 140, RatePerKg: 6.3399},
		{Mode: "", Bags: math.NaN()},
	}

	for _, in := range inputs {
		once := ComputeLineItem(in, cfg)
		twice := ComputeLineItem(once, cfg)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("ComputeLineItem not idempotent for %+v:\nonce  %+v\ntwice %+v", in, once, twice)
		}
	}
}

func TestComputeLineItemModeSwitchResetsBardanaFields(t *testing.T) {
	cfg := DefaultModeConfig()
	bardana := ComputeLineItem(models.BillItem{
		Mode:     models.ModeBardana,
		BagTypes: []string{models.BagPP, models.BagJute},
		PPBags:   40,
		JuteBags: 10,
		NetKgs:   1000,
	}, cfg)

	bardana.Mode = models.ModeNormal
	got := ComputeLineItem(bardana, cfg)

	if got.PPBags != 0 || got.JuteBags != 0 || got.BardanaKgs != 0 {
		t.Errorf("Bardana fields not reset: pp=%v jute=%v bardana=%v", got.PPBags, got.JuteBags, got.BardanaKgs)
	}
	if len(got.BagTypes) != 0 {
		t.Errorf("BagTypes = %v, want empty", got.BagTypes)
	}
	// Bags carried over from the Bardana sum now drive the weight.
	if got.NetKgs != 1000 {
		t.Errorf("NetKgs = %v, want 1000", got.NetKgs)
	}
}

func TestComputeLineItemDoesNotMutateInput(t *testing.T) {
	in := models.BillItem{Mode: models.ModeBardana, BagTypes: []string{models.BagPP}, PPBags: 1, NetKgs: 10}
	out := ComputeLineItem(in, DefaultModeConfig())
	out.BagTypes[0] = "changed"

	if in.BagTypes[0] != models.BagPP {
		t.Errorf("input BagTypes mutated: %v", in.BagTypes)
	}
}

func TestComputeLineItems(t *testing.T) {
	items, total := ComputeLineItems([]models.BillItem{
		{Mode: models.ModeNormal, Bags: 1, RatePerKg: 0.105},
		{Mode: models.ModeNormal, Bags: 2, RatePerKg: 0.205},
	}, DefaultModeConfig())

	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Amount != 2.1 || items[1].Amount != 8.2 {
		t.Errorf("amounts = %v, %v; want 2.1, 8.2", items[0].Amount, items[1].Amount)
	}
	if total != 10.3 {
		t.Errorf("total = %v, want 10.3", total)
	}
}
