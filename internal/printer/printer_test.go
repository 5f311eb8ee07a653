package printer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fooddept/fdbms/internal/lifecycle"
	"github.com/fooddept/fdbms/internal/models"
)

func TestRenderTransport(t *testing.T) {
	bill := lifecycle.FromTransport(models.TransportBill{
		ID:             "t1",
		BillNumber:     "M-1/Jan 2025/3",
		ContractorName: "Khan & Sons",
		Items: []models.BillItem{
			{From: "Depot", To: "Mill", Bags: 100, NetKgs: 10000, RatePerKg: 0.5, Amount: 5000},
		},
		Deductions:          models.DeductionSet{IncomeTax: 300, OthersDescription: "Shortage", Others: 10},
		GrandTotal:          5000,
		TotalDeductions:     310,
		NetAmount:           4690,
		AmountInWords:       "Four Thousand Six Hundred And Ninety Rupees Only",
		CertificationPoints: []models.CertificationPoint{{ID: "p1", Text: "Work done <as agreed>."}},
		Lifecycle:           models.Lifecycle{Status: models.StatusSentToAG},
	})

	var buf bytes.Buffer
	if err := Render(&buf, bill); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"Transportation Bill",
		"M-1/Jan 2025/3",
		"Khan &amp; Sons",
		"Sanctioned No: N/A",
		"<td>1</td><td>Depot</td><td>Mill</td>",
		"4690.00",
		"Others: Shortage",
		"Four Thousand Six Hundred And Ninety Rupees Only",
		"Work done &lt;as agreed&gt;.",
		"Sent to AG",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected rendered bill to contain %q", want)
		}
	}
	if strings.Contains(html, "Flour mill") {
		t.Error("expected no grinding section on a transportation bill")
	}
}

func TestRenderGrinding(t *testing.T) {
	bill := lifecycle.FromGrinding(models.GrindingBill{
		ID:            "g1",
		BillNumber:    "(02/2025/1)",
		FlourMillName: "Crescent Mills",
		Commodities: []models.Commodity{
			{Name: models.CommodityFineAtta, QuantityKgs: 10000, RatePer100Kg: 233.64, Amount: 23364},
		},
		TotalAmount:       23364,
		FinalAmountToMill: 10525.57,
	})

	var buf bytes.Buffer
	if err := Render(&buf, bill); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	html := buf.String()

	for _, want := range []string{"Flour Grinding Bill", "Crescent Mills", "Fine Atta", "233.64", "10525.57", "Draft"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected rendered bill to contain %q", want)
		}
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		bill lifecycle.UnifiedBill
		want string
	}{
		{lifecycle.FromTransport(models.TransportBill{ID: "t1", BillNumber: "M-1/Jan 2025/3"}), "transportation_M-1-Jan-2025-3.pdf"},
		{lifecycle.FromGrinding(models.GrindingBill{ID: "g1", BillNumber: "(02/2025/1)"}), "grinding_02-2025-1.pdf"},
		{lifecycle.FromGrinding(models.GrindingBill{ID: "g2"}), "grinding_g2.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FileName(tt.bill); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLogPrinter(t *testing.T) {
	var p lifecycle.Printer = Log{}
	if err := p.Print(context.Background(), lifecycle.FromTransport(models.TransportBill{BillNumber: "x"})); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
