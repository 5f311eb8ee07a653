package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/fooddept/fdbms/internal/lifecycle"
	"github.com/fooddept/fdbms/internal/metrics"
	"github.com/fooddept/fdbms/internal/middleware"
	"github.com/fooddept/fdbms/internal/models"
	"github.com/fooddept/fdbms/internal/storage/sqlite"
)

var testNow = time.Date(2025, time.October, 15, 10, 0, 0, 0, time.UTC)

// recordingPrinter remembers the bills it printed and fails for the
// numbers listed in fail.
type recordingPrinter struct {
	mu      sync.Mutex
	printed []string
	fail    map[string]bool
}

func (p *recordingPrinter) Print(_ context.Context, bill lifecycle.UnifiedBill) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail[bill.Number()] {
		return errors.New("printer jammed")
	}
	p.printed = append(p.printed, bill.Number())
	return nil
}

type testEnv struct {
	client  *BillingServiceClient
	server  *httptest.Server
	printer *recordingPrinter
	metrics *metrics.Metrics
}

// setupTestServer creates a test server backed by a temporary SQLite database
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "fdbms-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := sqlite.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	printer := &recordingPrinter{fail: map[string]bool{}}

	svc := NewBillingService(store, Options{
		Metrics: m,
		Printer: printer,
		Logger:  logger,
		Now:     func() time.Time { return testNow },
		Sleep:   func(time.Duration) {},
	})
	path, handler := NewBillingServiceHandler(svc,
		connect.WithInterceptors(middleware.LoggingInterceptor(logger, m)))

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	mux.Handle("/backup.xlsx", svc.BackupHandler())

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		client:  NewBillingServiceClient(http.DefaultClient, server.URL),
		server:  server,
		printer: printer,
		metrics: m,
	}
}

func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("Expected code %v, got %v (%v)", want, got, err)
	}
}

func transportDraft() models.TransportBill {
	return models.TransportBill{
		ContractorID:   12,
		ContractorName: "Khan & Sons",
		BillDate:       "2025-10-15",
		Items: []models.BillItem{
			{ID: "i1", Mode: models.ModeNormal, Bags: 2500, RatePerKg: 2},
		},
	}
}

func TestComputeLineItem(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.client.ComputeLineItem(context.Background(), connect.NewRequest(&ComputeLineItemRequest{
		Item: models.BillItem{Mode: models.ModeNormal, Bags: 100, RatePerKg: 4.2155},
	}))
	if err != nil {
		t.Fatalf("ComputeLineItem failed: %v", err)
	}

	item := resp.Msg.Item
	if item.NetKgs != 2000 || item.GrossKgs != 2000 {
		t.Errorf("Expected 2000 kg, got gross %v net %v", item.GrossKgs, item.NetKgs)
	}
	if item.Amount != 8431 {
		t.Errorf("Expected amount 8431, got %v", item.Amount)
	}
}

func TestComputeDeductions(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	resp, err := env.client.ComputeDeductions(ctx, connect.NewRequest(&ComputeDeductionsRequest{GrandTotal: 100000}))
	if err != nil {
		t.Fatalf("ComputeDeductions failed: %v", err)
	}
	if resp.Msg.NetAmount != 77050 {
		t.Errorf("Expected net amount 77050, got %v", resp.Msg.NetAmount)
	}
	if resp.Msg.Set.IncomeTax != 6000 || resp.Msg.Set.EducationCess != 600 {
		t.Errorf("Unexpected deductions: %+v", resp.Msg.Set)
	}
	if resp.Msg.AmountInWords != "Seventy Seven Thousand Fifty Rupees Only" {
		t.Errorf("Unexpected amount in words: %q", resp.Msg.AmountInWords)
	}

	t.Run("negative delay lowers deductions", func(t *testing.T) {
		resp, err := env.client.ComputeDeductions(ctx, connect.NewRequest(&ComputeDeductionsRequest{GrandTotal: 100000, DelayDays: -2}))
		if err != nil {
			t.Fatalf("ComputeDeductions failed: %v", err)
		}
		if resp.Msg.Set.Penalty != -200 {
			t.Errorf("Expected penalty -200, got %v", resp.Msg.Set.Penalty)
		}
		if resp.Msg.NetAmount != 77250 {
			t.Errorf("Expected net amount 77250, got %v", resp.Msg.NetAmount)
		}
	})
}

func TestSettingsDriveCalculations(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	got, err := env.client.GetSettings(ctx, connect.NewRequest(&GetSettingsRequest{}))
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	set := got.Msg.Settings
	if set.Mode.KgPerBag != 20 || set.Transport.IncomeTaxRate != 0.06 {
		t.Fatalf("Expected default settings, got %+v", set)
	}

	set.Mode.KgPerBag = 50
	if _, err := env.client.UpdateSettings(ctx, connect.NewRequest(&UpdateSettingsRequest{Settings: set})); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	resp, err := env.client.ComputeLineItem(ctx, connect.NewRequest(&ComputeLineItemRequest{
		Item: models.BillItem{Mode: models.ModeNormal, Bags: 10, RatePerKg: 1},
	}))
	if err != nil {
		t.Fatalf("ComputeLineItem failed: %v", err)
	}
	if resp.Msg.Item.NetKgs != 500 {
		t.Errorf("Expected the stored kg per bag to be used, got %v kg", resp.Msg.Item.NetKgs)
	}

	set.Mode.KgPerBag = 0
	_, err = env.client.UpdateSettings(ctx, connect.NewRequest(&UpdateSettingsRequest{Settings: set}))
	expectCode(t, err, connect.CodeInvalidArgument)
}

func TestSaveTransportBill(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	first, err := env.client.SaveTransportBill(ctx, connect.NewRequest(&SaveTransportBillRequest{Bill: transportDraft()}))
	if err != nil {
		t.Fatalf("SaveTransportBill failed: %v", err)
	}
	bill := first.Msg.Bill
	if bill.ID == "" {
		t.Fatal("Expected a generated bill ID")
	}
	if bill.BillNumber != "M-1/Oct 2025/1" {
		t.Errorf("Expected M-1/Oct 2025/1, got %s", bill.BillNumber)
	}
	if bill.Current() != models.StatusDraft {
		t.Errorf("Expected a draft, got %s", bill.Current())
	}
	if bill.GrandTotal != 100000 || bill.NetAmount != 77050 {
		t.Errorf("Expected totals 100000/77050, got %v/%v", bill.GrandTotal, bill.NetAmount)
	}
	if len(bill.CertificationPoints) != 8 {
		t.Errorf("Expected the default certification points, got %d", len(bill.CertificationPoints))
	}
	if first.Msg.Result.StrippedAttachments {
		t.Error("Expected a small bill to keep its attachments")
	}

	t.Run("next bill takes the next number", func(t *testing.T) {
		next, err := env.client.NextBillNumber(ctx, connect.NewRequest(&NextBillNumberRequest{BillType: models.BillTypeTransportation}))
		if err != nil {
			t.Fatalf("NextBillNumber failed: %v", err)
		}
		if next.Msg.BillNumber != "M-1/Oct 2025/2" {
			t.Errorf("Expected M-1/Oct 2025/2, got %s", next.Msg.BillNumber)
		}

		second, err := env.client.SaveTransportBill(ctx, connect.NewRequest(&SaveTransportBillRequest{Bill: transportDraft()}))
		if err != nil {
			t.Fatalf("SaveTransportBill failed: %v", err)
		}
		if second.Msg.Bill.BillNumber != "M-1/Oct 2025/2" {
			t.Errorf("Expected M-1/Oct 2025/2, got %s", second.Msg.Bill.BillNumber)
		}
	})

	t.Run("editing a draft keeps its number", func(t *testing.T) {
		edit := bill
		edit.BillNumber = "M-1/Oct 2025/99"
		edit.Items = []models.BillItem{{ID: "i1", Mode: models.ModeNormal, Bags: 100, RatePerKg: 1}}

		resp, err := env.client.SaveTransportBill(ctx, connect.NewRequest(&SaveTransportBillRequest{Bill: edit}))
		if err != nil {
			t.Fatalf("SaveTransportBill failed: %v", err)
		}
		if resp.Msg.Bill.ID != bill.ID || resp.Msg.Bill.BillNumber != bill.BillNumber {
			t.Errorf("Expected id and number to be kept, got %s %s", resp.Msg.Bill.ID, resp.Msg.Bill.BillNumber)
		}
		if resp.Msg.Bill.GrandTotal != 2000 {
			t.Errorf("Expected recomputed grand total 2000, got %v", resp.Msg.Bill.GrandTotal)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		missing := transportDraft()
		missing.ID = "nonexistent-id"
		_, err := env.client.SaveTransportBill(ctx, connect.NewRequest(&SaveTransportBillRequest{Bill: missing}))
		expectCode(t, err, connect.CodeNotFound)
	})
}

func TestSaveTransportBillStripsOversizedAttachments(t *testing.T) {
	env := setupTestServer(t)

	bill := transportDraft()
	payload := make([]byte, 5*1024*1024)
	for i := range payload {
		payload[i] = 'A'
	}
	bill.Attachments = []models.Attachment{{ID: "a1", Name: "scan.png", Type: "image/png", DataURL: "data:image/png;base64," + string(payload)}}

	resp, err := env.client.SaveTransportBill(context.Background(), connect.NewRequest(&SaveTransportBillRequest{Bill: bill}))
	if err != nil {
		t.Fatalf("SaveTransportBill failed: %v", err)
	}
	if !resp.Msg.Result.StrippedAttachments {
		t.Fatal("Expected attachment data to be stripped")
	}
	att := resp.Msg.Bill.Attachments
	if len(att) != 1 || att[0].DataURL != "" || att[0].Name != "scan.png" {
		t.Errorf("Expected attachment metadata without data, got %+v", att)
	}
}

func TestSaveGrindingBill(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	bill := models.GrindingBill{
		FlourMillName:   "Crescent Mills",
		BillPeriodStart: "2025-09-01",
		BillPeriodEnd:   "2025-09-30",
	}
	resp, err := env.client.SaveGrindingBill(ctx, connect.NewRequest(&SaveGrindingBillRequest{Bill: bill}))
	if err != nil {
		t.Fatalf("SaveGrindingBill failed: %v", err)
	}
	saved := resp.Msg.Bill
	if saved.BillNumber != "(09/2025/1)" {
		t.Errorf("Expected the period's own month, got %s", saved.BillNumber)
	}
	if len(saved.Commodities) != 3 {
		t.Fatalf("Expected the default commodities, got %d", len(saved.Commodities))
	}
	if saved.Commodities[1].RatePer100Kg != 233.64 {
		t.Errorf("Expected the default fine atta rate, got %v", saved.Commodities[1].RatePer100Kg)
	}

	computed, err := env.client.ComputeGrindingBill(ctx, connect.NewRequest(&ComputeGrindingBillRequest{Bill: models.GrindingBill{
		Commodities: []models.Commodity{
			{ID: "c1", Name: models.CommodityWholeMeal, QuantityKgs: 5000},
			{ID: "c2", Name: models.CommodityFineAtta, QuantityKgs: 10000, RatePer100Kg: 233.64},
			{ID: "c3", Name: models.CommodityBran, QuantityKgs: 200, RatePer100Kg: 230.32},
		},
	}}))
	if err != nil {
		t.Fatalf("ComputeGrindingBill failed: %v", err)
	}
	if computed.Msg.Bill.TotalAmount != 23824.64 {
		t.Errorf("Expected total 23824.64, got %v", computed.Msg.Bill.TotalAmount)
	}

	next, err := env.client.NextBillNumber(ctx, connect.NewRequest(&NextBillNumberRequest{BillType: models.BillTypeGrinding, Date: "2025-09-20"}))
	if err != nil {
		t.Fatalf("NextBillNumber failed: %v", err)
	}
	if next.Msg.BillNumber != "(09/2025/2)" {
		t.Errorf("Expected (09/2025/2), got %s", next.Msg.BillNumber)
	}

	_, err = env.client.NextBillNumber(ctx, connect.NewRequest(&NextBillNumberRequest{BillType: "invoice"}))
	expectCode(t, err, connect.CodeInvalidArgument)
}

func TestHandOffToAGOffice(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	saved, err := env.client.SaveTransportBill(ctx, connect.NewRequest(&SaveTransportBillRequest{Bill: transportDraft()}))
	if err != nil {
		t.Fatalf("SaveTransportBill failed: %v", err)
	}
	transport := saved.Msg.Bill
	ref := BillRef{BillType: models.BillTypeTransportation, ID: transport.ID}

	grinding, err := env.client.SaveGrindingBill(ctx, connect.NewRequest(&SaveGrindingBillRequest{Bill: models.GrindingBill{FlourMillName: "Crescent Mills"}}))
	if err != nil {
		t.Fatalf("SaveGrindingBill failed: %v", err)
	}
	draftRef := BillRef{BillType: models.BillTypeGrinding, ID: grinding.Msg.Bill.ID}

	sent, err := env.client.SendToAG(ctx, connect.NewRequest(&SendToAGRequest{Bill: ref}))
	if err != nil {
		t.Fatalf("SendToAG failed: %v", err)
	}
	state := sent.Msg.Bill.LifecycleState()
	if state.Status != models.StatusSentToAG || state.SentAt == nil || !state.SentAt.Equal(testNow) {
		t.Errorf("Expected Sent to AG at %v, got %+v", testNow, state)
	}

	t.Run("sending twice is rejected", func(t *testing.T) {
		_, err := env.client.SendToAG(ctx, connect.NewRequest(&SendToAGRequest{Bill: ref}))
		expectCode(t, err, connect.CodeFailedPrecondition)
	})

	t.Run("a sent bill can no longer be edited", func(t *testing.T) {
		_, err := env.client.SaveTransportBill(ctx, connect.NewRequest(&SaveTransportBillRequest{Bill: transport}))
		expectCode(t, err, connect.CodeFailedPrecondition)
	})

	t.Run("queue lists sent bills only", func(t *testing.T) {
		resp, err := env.client.Queue(ctx, connect.NewRequest(&QueueRequest{}))
		if err != nil {
			t.Fatalf("Queue failed: %v", err)
		}
		if len(resp.Msg.Bills) != 1 || resp.Msg.Bills[0].ID() != transport.ID {
			t.Errorf("Expected only the sent bill, got %+v", resp.Msg.Bills)
		}
		if resp.Msg.Bills[0].Type != models.BillTypeTransportation {
			t.Errorf("Expected a transportation bill, got %s", resp.Msg.Bills[0].Type)
		}

		_, err = env.client.Queue(ctx, connect.NewRequest(&QueueRequest{Status: "Lost"}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("batch processes and prints eligible bills", func(t *testing.T) {
		resp, err := env.client.ProcessBatch(ctx, connect.NewRequest(&ProcessBatchRequest{Bills: []BillRef{ref, draftRef}}))
		if err != nil {
			t.Fatalf("ProcessBatch failed: %v", err)
		}
		if len(resp.Msg.Processed) != 1 || resp.Msg.Processed[0].ID() != transport.ID {
			t.Fatalf("Expected the sent bill to be processed, got %+v", resp.Msg.Processed)
		}
		if len(resp.Msg.Rejected) != 1 {
			t.Errorf("Expected the draft to be rejected, got %v", resp.Msg.Rejected)
		}
		if resp.Msg.Printed != 1 || resp.Msg.PrintFailures != 0 {
			t.Errorf("Expected 1 print, got %d printed %d failed", resp.Msg.Printed, resp.Msg.PrintFailures)
		}
		if len(env.printer.printed) != 1 || env.printer.printed[0] != transport.BillNumber {
			t.Errorf("Unexpected prints: %v", env.printer.printed)
		}

		processed, err := env.client.Queue(ctx, connect.NewRequest(&QueueRequest{Status: models.StatusProcessed}))
		if err != nil {
			t.Fatalf("Queue failed: %v", err)
		}
		if len(processed.Msg.Bills) != 1 {
			t.Fatalf("Expected 1 processed bill, got %d", len(processed.Msg.Bills))
		}
		at := processed.Msg.Bills[0].LifecycleState().ProcessedAt
		if at == nil || !at.Equal(testNow) {
			t.Errorf("Expected processedAt %v, got %v", testNow, at)
		}

		pending, err := env.client.Queue(ctx, connect.NewRequest(&QueueRequest{Status: models.StatusSentToAG}))
		if err != nil {
			t.Fatalf("Queue failed: %v", err)
		}
		if len(pending.Msg.Bills) != 0 {
			t.Errorf("Expected no pending bills, got %d", len(pending.Msg.Bills))
		}
	})

	t.Run("report covers the day", func(t *testing.T) {
		resp, err := env.client.Report(ctx, connect.NewRequest(&ReportRequest{StartDate: "2025-10-15", EndDate: "2025-10-15"}))
		if err != nil {
			t.Fatalf("Report failed: %v", err)
		}
		if len(resp.Msg.Report.Sent) != 1 || len(resp.Msg.Report.Processed) != 1 {
			t.Errorf("Expected 1 sent and 1 processed, got %d and %d", len(resp.Msg.Report.Sent), len(resp.Msg.Report.Processed))
		}

		empty, err := env.client.Report(ctx, connect.NewRequest(&ReportRequest{StartDate: "2025-10-16", EndDate: "2025-10-31"}))
		if err != nil {
			t.Fatalf("Report failed: %v", err)
		}
		if len(empty.Msg.Report.Sent) != 0 {
			t.Errorf("Expected an empty report, got %d sent", len(empty.Msg.Report.Sent))
		}

		_, err = env.client.Report(ctx, connect.NewRequest(&ReportRequest{StartDate: "2025-10-31", EndDate: "2025-10-01"}))
		expectCode(t, err, connect.CodeInvalidArgument)
		_, err = env.client.Report(ctx, connect.NewRequest(&ReportRequest{StartDate: "15/10/2025", EndDate: "2025-10-31"}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("unknown bill", func(t *testing.T) {
		_, err := env.client.ProcessBatch(ctx, connect.NewRequest(&ProcessBatchRequest{
			Bills: []BillRef{{BillType: models.BillTypeGrinding, ID: "nonexistent-id"}},
		}))
		expectCode(t, err, connect.CodeNotFound)

		_, err = env.client.ProcessBatch(ctx, connect.NewRequest(&ProcessBatchRequest{}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestProcessBatchContinuesAfterPrintFailure(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	var refs []BillRef
	for i := 0; i < 3; i++ {
		saved, err := env.client.SaveTransportBill(ctx, connect.NewRequest(&SaveTransportBillRequest{Bill: transportDraft()}))
		if err != nil {
			t.Fatalf("SaveTransportBill failed: %v", err)
		}
		ref := BillRef{BillType: models.BillTypeTransportation, ID: saved.Msg.Bill.ID}
		if _, err := env.client.SendToAG(ctx, connect.NewRequest(&SendToAGRequest{Bill: ref})); err != nil {
			t.Fatalf("SendToAG failed: %v", err)
		}
		refs = append(refs, ref)
	}
	env.printer.fail["M-1/Oct 2025/2"] = true

	resp, err := env.client.ProcessBatch(ctx, connect.NewRequest(&ProcessBatchRequest{Bills: refs}))
	if err != nil {
		t.Fatalf("ProcessBatch failed: %v", err)
	}
	if len(resp.Msg.Processed) != 3 {
		t.Errorf("Expected all 3 bills processed, got %d", len(resp.Msg.Processed))
	}
	if resp.Msg.Printed != 2 || resp.Msg.PrintFailures != 1 {
		t.Errorf("Expected 2 printed and 1 failure, got %d and %d", resp.Msg.Printed, resp.Msg.PrintFailures)
	}
	want := []string{"M-1/Oct 2025/1", "M-1/Oct 2025/3"}
	if len(env.printer.printed) != 2 || env.printer.printed[0] != want[0] || env.printer.printed[1] != want[1] {
		t.Errorf("Expected prints in selection order %v, got %v", want, env.printer.printed)
	}
}

func TestStatement(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := env.client.SaveTransportBill(ctx, connect.NewRequest(&SaveTransportBillRequest{Bill: transportDraft()})); err != nil {
			t.Fatalf("SaveTransportBill failed: %v", err)
		}
	}

	resp, err := env.client.Statement(ctx, connect.NewRequest(&StatementRequest{BillType: models.BillTypeTransportation}))
	if err != nil {
		t.Fatalf("Statement failed: %v", err)
	}
	st := resp.Msg.Statement
	if st.GrandTotal != 200000 || st.NetAmount != 154100 {
		t.Errorf("Expected totals 200000/154100, got %v/%v", st.GrandTotal, st.NetAmount)
	}
	if len(st.ByParty) != 1 || st.ByParty[0].TotalBills != 2 {
		t.Errorf("Expected one contractor with 2 bills, got %+v", st.ByParty)
	}
}
