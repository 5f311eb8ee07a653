package models

// Mode selects how a bill item's weight is derived.
type Mode string

const (
	// ModeNormal derives weight from a fixed kg per bag.
	ModeNormal Mode = "Normal"
	// ModeBardana takes net weight as entered and adds packaging weight.
	ModeBardana Mode = "Bardana"
)

// Bag types that may be flagged on a Bardana item.
const (
	BagPP   = "PP Bags"
	BagJute = "Jute Bags"
)

// BillItem is one transported consignment on a transportation bill.
type BillItem struct {
	ID         string   `json:"id"`
	ContractID *int64   `json:"contract_id"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Bags       float64  `json:"bags"`
	Mode       Mode     `json:"mode"`
	BagTypes   []string `json:"bagTypes"`
	PPBags     float64  `json:"ppBags"`
	JuteBags   float64  `json:"juteBags"`
	RatePerKg  float64  `json:"rate_per_kg"`
	GrossKgs   float64  `json:"grossKgs"`
	BardanaKgs float64  `json:"bardanaKgs"`
	NetKgs     float64  `json:"netKgs"`

	// Amount is round2(NetKgs * RatePerKg).
	Amount float64 `json:"rs"`
}

// HasBagType reports whether the bag type is flagged on the item.
func (i BillItem) HasBagType(bagType string) bool {
	for _, t := range i.BagTypes {
		if t == bagType {
			return true
		}
	}
	return false
}

// DeductionSet is the statutory deduction breakdown of a transportation
// bill. Others is the rounded total of the custom deductions.
type DeductionSet struct {
	Penalty           float64 `json:"penalty"`
	IncomeTax         float64 `json:"income_tax"`
	TajveedUlQuran    float64 `json:"tajveed_ul_quran"`
	EducationCess     float64 `json:"education_cess"`
	KLC               float64 `json:"klc"`
	SDCurrent         float64 `json:"sd_current"`
	GSTCurrent        float64 `json:"gst_current"`
	Others            float64 `json:"others"`
	OthersDescription string  `json:"others_description"`
}

// TransportBill is a transportation bill raised against a contractor.
type TransportBill struct {
	ID                  string               `json:"id"`
	BillNumber          string               `json:"bill_number"`
	BillDate            string               `json:"bill_date"`
	BillPeriod          string               `json:"bill_period"`
	SanctionedNo        string               `json:"sanctioned_no"`
	ContractID          *int64               `json:"contract_id"`
	ContractorID        int64                `json:"contractor_id"`
	ContractorName      string               `json:"contractor_name"`
	Items               []BillItem           `json:"bill_items"`
	DelayDays           int                  `json:"delay_days"`
	Deductions          DeductionSet         `json:"deductions"`
	CustomDeductions    []CustomDeduction    `json:"custom_deductions"`
	CertificationPoints []CertificationPoint `json:"certification_points"`
	GrandTotal          float64              `json:"grandTotal"`
	TotalDeductions     float64              `json:"totalDeductions"`
	NetAmount           float64              `json:"netAmount"`
	AmountInWords       string               `json:"amountInWords"`
	Attachments         []Attachment         `json:"attachments"`
	Lifecycle
}

// Number returns the bill number.
func (b TransportBill) Number() string { return b.BillNumber }

// LifecycleState returns the hand-off state of the bill.
func (b TransportBill) LifecycleState() Lifecycle { return b.Lifecycle }

// WithLifecycle returns a copy of the bill in the given state.
func (b TransportBill) WithLifecycle(l Lifecycle) TransportBill {
	b.Lifecycle = l
	return b
}

// WithoutAttachmentPayloads returns a copy of the bill whose attachments
// keep their metadata but carry no data.
func (b TransportBill) WithoutAttachmentPayloads() TransportBill {
	b.Attachments = stripPayloads(b.Attachments)
	return b
}
