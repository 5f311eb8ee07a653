package models

// Commodity names ground by the flour mills.
const (
	CommodityWholeMeal = "W/M Atta"
	CommodityFineAtta  = "Fine Atta"
	CommodityBran      = "Bran"
)

// Commodity is one product row on a grinding bill.
type Commodity struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	QuantityKgs  float64 `json:"quantityKgs"`
	RatePer100Kg float64 `json:"ratePer100Kg"`

	// Amount is round2(QuantityKgs * RatePer100Kg / 100).
	Amount float64 `json:"amount"`
}

// GrindingDeductions is the statutory deduction breakdown of a grinding
// bill.
type GrindingDeductions struct {
	IncomeTax      float64 `json:"incomeTax"`
	TajveedUlQuran float64 `json:"tajveedUlQuran"`
	EducationCess  float64 `json:"educationCess"`
	KLC            float64 `json:"klc"`
	StumpDuty      float64 `json:"stumpDuty"`
}

// EBags is the charge for empty bags returned to the directorate.
type EBags struct {
	Month  string  `json:"month"`
	Bags   float64 `json:"bags"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// BranPrice is the price of bran retained by the mill.
type BranPrice struct {
	Quantity float64 `json:"quantity"`
	Rate     float64 `json:"rate"`
	Amount   float64 `json:"amount"`
}

// OtherDeductions are amounts paid to the director rather than the mill.
type OtherDeductions struct {
	EBags     EBags     `json:"eBags"`
	BranPrice BranPrice `json:"branPrice"`
}

// GrindingBill is a grinding-charges bill raised for a flour mill.
type GrindingBill struct {
	ID                         string             `json:"id"`
	BillNumber                 string             `json:"billNumber"`
	BillDate                   string             `json:"billDate"`
	BillPeriod                 string             `json:"billPeriod"`
	BillPeriodStart            string             `json:"billPeriodStart"`
	BillPeriodEnd              string             `json:"billPeriodEnd"`
	DistrictForTax             string             `json:"districtForTax"`
	SanctionedNo               string             `json:"sanctionedNo"`
	SanctionedDate             string             `json:"sanctionedDate"`
	FlourMillID                *int64             `json:"flourMillId"`
	FlourMillName              string             `json:"flourMillName"`
	Commodities                []Commodity        `json:"commodities"`
	TotalAmount                float64            `json:"totalAmount"`
	Deductions                 GrindingDeductions `json:"deductions"`
	CustomDeductions           []CustomDeduction  `json:"customDeductions"`
	TotalDeduction             float64            `json:"totalDeduction"`
	NetAmountAfterTaxes        float64            `json:"netAmountAfterTaxes"`
	OtherDeductions            OtherDeductions    `json:"otherDeductions"`
	AmountToDirector           float64            `json:"amountToDirector"`
	FinalAmountToMill          float64            `json:"finalAmountToMill"`
	AmountInWords              string             `json:"amountInWords"`
	CertificationHeader        string             `json:"certificationHeader"`
	CertificationHeaderDetails string             `json:"certificationHeaderDetails"`
	Attachments                []Attachment       `json:"attachments"`
	Lifecycle
}

// Number returns the bill number.
func (b GrindingBill) Number() string { return b.BillNumber }

// LifecycleState returns the hand-off state of the bill.
func (b GrindingBill) LifecycleState() Lifecycle { return b.Lifecycle }

// WithLifecycle returns a copy of the bill in the given state.
func (b GrindingBill) WithLifecycle(l Lifecycle) GrindingBill {
	b.Lifecycle = l
	return b
}

// WithoutAttachmentPayloads returns a copy of the bill whose attachments
// keep their metadata but carry no data.
func (b GrindingBill) WithoutAttachmentPayloads() GrindingBill {
	b.Attachments = stripPayloads(b.Attachments)
	return b
}
