package service

import (
	"github.com/fooddept/fdbms/internal/calculator"
	"github.com/fooddept/fdbms/internal/importer"
	"github.com/fooddept/fdbms/internal/lifecycle"
	"github.com/fooddept/fdbms/internal/models"
	"github.com/fooddept/fdbms/internal/persist"
)

type ComputeLineItemRequest struct {
	Item models.BillItem `json:"item"`
}

type ComputeLineItemResponse struct {
	Item models.BillItem `json:"item"`
}

type ComputeDeductionsRequest struct {
	GrandTotal       float64                  `json:"grandTotal"`
	DelayDays        int                      `json:"delayDays"`
	CustomDeductions []models.CustomDeduction `json:"customDeductions"`
}

type ComputeDeductionsResponse struct {
	calculator.Deductions
	AmountInWords string `json:"amountInWords"`
}

// ComputeGrindingBillRequest carries a draft grinding bill. A bill without
// commodities gets the three default rows priced at the current rates.
type ComputeGrindingBillRequest struct {
	Bill models.GrindingBill `json:"bill"`
}

type ComputeGrindingBillResponse struct {
	Bill models.GrindingBill `json:"bill"`
}

// NextBillNumberRequest asks for the next number of a period. Date is
// YYYY-MM-DD and defaults to today.
type NextBillNumberRequest struct {
	BillType models.BillType `json:"billType"`
	Date     string          `json:"date"`
}

type NextBillNumberResponse struct {
	BillNumber string `json:"billNumber"`
}

// SaveTransportBillRequest creates a bill when Bill.ID is empty and
// updates the draft with that ID otherwise.
type SaveTransportBillRequest struct {
	Bill models.TransportBill `json:"bill"`
}

type SaveTransportBillResponse struct {
	Bill   models.TransportBill `json:"bill"`
	Result persist.Result       `json:"result"`
}

type SaveGrindingBillRequest struct {
	Bill models.GrindingBill `json:"bill"`
}

type SaveGrindingBillResponse struct {
	Bill   models.GrindingBill `json:"bill"`
	Result persist.Result      `json:"result"`
}

// BillRef names a bill of either kind.
type BillRef struct {
	BillType models.BillType `json:"billType"`
	ID       string          `json:"id"`
}

type SendToAGRequest struct {
	Bill BillRef `json:"bill"`
}

type SendToAGResponse struct {
	Bill lifecycle.UnifiedBill `json:"bill"`
}

type ProcessBatchRequest struct {
	Bills []BillRef `json:"bills"`
}

// ProcessBatchResponse lists the bills marked processed. Rejected holds
// one message per selected bill that was not with the AG Office.
type ProcessBatchResponse struct {
	Processed     []lifecycle.UnifiedBill `json:"processed"`
	Rejected      []string                `json:"rejected"`
	Printed       int                     `json:"printed"`
	PrintFailures int                     `json:"printFailures"`
}

// QueueRequest filters the AG Office queue by status. An empty status
// returns every bill that has been sent.
type QueueRequest struct {
	Status models.Status `json:"status"`
}

type QueueResponse struct {
	Bills []lifecycle.UnifiedBill `json:"bills"`
}

type ReportRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type ReportResponse struct {
	Report lifecycle.Report `json:"report"`
}

// StatementRequest summarises the bills of one kind.
type StatementRequest struct {
	BillType models.BillType       `json:"billType"`
	Filter   calculator.BillFilter `json:"filter"`
}

type StatementResponse struct {
	Statement calculator.Statement `json:"statement"`
}

type GetSettingsRequest struct{}

type SettingsResponse struct {
	Settings calculator.Settings `json:"settings"`
}

type UpdateSettingsRequest struct {
	Settings calculator.Settings `json:"settings"`
}

// Import modes.
const (
	ImportMerge   = "merge"
	ImportReplace = "replace"
)

// ImportRequest carries a spreadsheet upload. FileName selects the
// format; Data is the raw file, base64 encoded on the wire.
type ImportRequest struct {
	FileName     string `json:"fileName"`
	Data         []byte `json:"data"`
	Mode         string `json:"mode"`
	Confirmation string `json:"confirmation"`
}

// ImportSummary counts the outcome of an import.
type ImportSummary struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

func summarize[T any](r importer.Result[T]) ImportSummary {
	return ImportSummary{
		Added:   r.Added,
		Updated: r.Updated,
		Removed: r.Removed,
		Skipped: r.Skipped,
		Total:   len(r.Records),
	}
}

type ImportResponse struct {
	Summary ImportSummary `json:"summary"`
}

type RestoreBackupRequest struct {
	Data         []byte `json:"data"`
	Confirmation string `json:"confirmation"`
}

type RestoreBackupResponse struct {
	Bills     ImportSummary `json:"bills"`
	Discarded int           `json:"discarded"`
	Contracts ImportSummary `json:"contracts"`
	Users     ImportSummary `json:"users"`
}
