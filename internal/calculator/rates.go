package calculator

import "github.com/fooddept/fdbms/internal/models"

// ModeConfig holds the weights used to derive a bill item's kilograms.
type ModeConfig struct {
	KgPerBag         float64 `json:"kgPerBag"`
	PPBagBardanaKg   float64 `json:"ppBagBardanaKg"`
	JuteBagBardanaKg float64 `json:"juteBagBardanaKg"`
}

// RateConfig is the statutory deduction schedule for transportation bills.
// Rates are fractions of the grand total except where the name says
// otherwise.
type RateConfig struct {
	IncomeTaxRate     float64 `json:"incomeTaxRate"`
	TajveedPer1000    float64 `json:"tajveedPer1000"`
	EducationCessRate float64 `json:"educationCessRate"` // fraction of income tax
	KLCRate           float64 `json:"klcRate"`
	SDRate            float64 `json:"sdRate"`
	GSTRate           float64 `json:"gstRate"`
	PenaltyPerDay     float64 `json:"penaltyPerDay"`
}

// GrindingRateConfig is the deduction and settlement schedule for grinding
// bills.
type GrindingRateConfig struct {
	IncomeTaxRate     float64 `json:"incomeTaxRate"`
	TajveedPer1000    float64 `json:"tajveedPer1000"`
	EducationCessRate float64 `json:"educationCessRate"` // fraction of income tax
	KLCPer1000        float64 `json:"klcPer1000"`
	StumpDutyRate     float64 `json:"stumpDutyRate"`
	EBagsRate         float64 `json:"eBagsRate"`
	BranPriceRate     float64 `json:"branPriceRate"`

	// CommodityRates are the default rates per 100 kg keyed by commodity
	// name.
	CommodityRates map[string]float64 `json:"commodityRates"`
}

// Settings is the full rate schedule the billing office maintains.
type Settings struct {
	Mode                ModeConfig                  `json:"mode"`
	Transport           RateConfig                  `json:"transport"`
	Grinding            GrindingRateConfig          `json:"grinding"`
	CertificationPoints []models.CertificationPoint `json:"certificationPoints"`
}

// DefaultModeConfig returns the standard bag weights.
func DefaultModeConfig() ModeConfig {
	return ModeConfig{
		KgPerBag:         20,
		PPBagBardanaKg:   0.115,
		JuteBagBardanaKg: 1.0,
	}
}

// DefaultRateConfig returns the standard transportation deduction schedule.
func DefaultRateConfig() RateConfig {
	return RateConfig{
		IncomeTaxRate:     0.06,
		TajveedPer1000:    10,
		EducationCessRate: 0.10,
		KLCRate:           0.001,
		SDRate:            0.0025,
		GSTRate:           0.15,
		PenaltyPerDay:     100,
	}
}

// DefaultGrindingRateConfig returns the standard grinding schedule.
func DefaultGrindingRateConfig() GrindingRateConfig {
	return GrindingRateConfig{
		IncomeTaxRate:     0.08,
		TajveedPer1000:    5,
		EducationCessRate: 0.10,
		KLCPer1000:        1,
		StumpDutyRate:     0.0025,
		EBagsRate:         200,
		BranPriceRate:     45,
		CommodityRates: map[string]float64{
			models.CommodityWholeMeal: 0,
			models.CommodityFineAtta:  233.64,
			models.CommodityBran:      230.32,
		},
	}
}

// DefaultCertificationPoints returns the certificate printed under a new
// transportation bill.
func DefaultCertificationPoints() []models.CertificationPoint {
	return []models.CertificationPoint{
		{ID: "1", Text: "The amount claimed in the bill is claimed for the first time."},
		{ID: "2", Text: "The Amount of this bill was not claimed previously"},
		{ID: "3", Text: "The above mentioned Qty has actually been lifted by the Contractor."},
		{ID: "4", Text: "Verified statements are attached"},
		{ID: "5", Text: "The bill prepared is correct."},
		{ID: "6", Text: "The bill prepared have been claimed in accordance with the sanctioned rates."},
		{ID: "7", Text: "The amount of shortage has been recovered from the bill in full from contractor (if any)."},
		{ID: "8", Text: "If any deduction in the taxes imposed by this bill is required, the Department should be informed accordingly"},
	}
}

// DefaultSettings returns the schedule used until the office stores its
// own.
func DefaultSettings() Settings {
	return Settings{
		Mode:                DefaultModeConfig(),
		Transport:           DefaultRateConfig(),
		Grinding:            DefaultGrindingRateConfig(),
		CertificationPoints: DefaultCertificationPoints(),
	}
}
