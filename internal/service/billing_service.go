package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/fooddept/fdbms/internal/billno"
	"github.com/fooddept/fdbms/internal/calculator"
	"github.com/fooddept/fdbms/internal/importer"
	"github.com/fooddept/fdbms/internal/lifecycle"
	"github.com/fooddept/fdbms/internal/metrics"
	"github.com/fooddept/fdbms/internal/models"
	"github.com/fooddept/fdbms/internal/persist"
	"github.com/fooddept/fdbms/internal/storage"
)

// settingsKey is where the office's rate schedule is stored.
const settingsKey = "rates"

const dateLayout = "2006-01-02"

// Options configures a BillingService. The zero value is usable: no
// metrics, no printing, the default save budget and the wall clock.
type Options struct {
	Metrics    *metrics.Metrics
	Printer    lifecycle.Printer
	PrintPause time.Duration
	SaveBudget int
	Logger     *slog.Logger

	// Now and Sleep replace the clock, mostly for tests.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// BillingService implements the Connect BillingService.
type BillingService struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
	machine lifecycle.Machine
	handoff lifecycle.HandOff
	guard   persist.Guard
}

var _ BillingServiceHandler = (*BillingService)(nil)

// NewBillingService creates a new BillingService with the given storage backend.
func NewBillingService(store storage.Store, opts Options) *BillingService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	machine := lifecycle.Machine{Now: now}

	return &BillingService{
		store:   store,
		metrics: opts.Metrics,
		logger:  logger,
		now:     now,
		machine: machine,
		handoff: lifecycle.HandOff{
			Machine: machine,
			Printer: opts.Printer,
			Pause:   opts.PrintPause,
			Sleep:   opts.Sleep,
			Logger:  logger,
		},
		guard: persist.Guard{Budget: opts.SaveBudget, Logger: logger},
	}
}

// settings returns the stored rate schedule laid over the defaults.
func (s *BillingService) settings(ctx context.Context) (calculator.Settings, error) {
	set := calculator.DefaultSettings()
	if _, err := s.store.GetSetting(ctx, settingsKey, &set); err != nil {
		return set, fmt.Errorf("failed to load settings: %w", err)
	}
	return set, nil
}

// toConnectError maps domain and storage errors onto connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, lifecycle.ErrInvalidTransition), errors.Is(err, importer.ErrConfirmationRequired):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, importer.ErrInvalidBackup), errors.Is(err, importer.ErrUnsupportedFormat):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("%s must be a YYYY-MM-DD date, got %q", field, value))
	}
	return t, nil
}

// ComputeLineItem derives the weights and amount of one bill item.
func (s *BillingService) ComputeLineItem(
	ctx context.Context,
	req *connect.Request[ComputeLineItemRequest],
) (*connect.Response[ComputeLineItemResponse], error) {
	set, err := s.settings(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	item := calculator.ComputeLineItem(req.Msg.Item, set.Mode)
	return connect.NewResponse(&ComputeLineItemResponse{Item: item}), nil
}

// ComputeDeductions runs the transportation deduction pipeline on a grand
// total.
func (s *BillingService) ComputeDeductions(
	ctx context.Context,
	req *connect.Request[ComputeDeductionsRequest],
) (*connect.Response[ComputeDeductionsResponse], error) {
	set, err := s.settings(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	d := calculator.ComputeDeductions(req.Msg.GrandTotal, req.Msg.DelayDays, set.Transport, req.Msg.CustomDeductions)
	return connect.NewResponse(&ComputeDeductionsResponse{
		Deductions:    d,
		AmountInWords: calculator.AmountInWords(d.NetAmount),
	}), nil
}

// ComputeGrindingBill recomputes every derived field of a grinding bill
// without saving it.
func (s *BillingService) ComputeGrindingBill(
	ctx context.Context,
	req *connect.Request[ComputeGrindingBillRequest],
) (*connect.Response[ComputeGrindingBillResponse], error) {
	set, err := s.settings(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	bill := req.Msg.Bill
	if len(bill.Commodities) == 0 {
		bill.Commodities = calculator.DefaultCommodities(set.Grinding, uuid.NewString)
	}
	bill = calculator.ApplyGrinding(bill, set.Grinding)
	return connect.NewResponse(&ComputeGrindingBillResponse{Bill: bill}), nil
}

// NextBillNumber returns the number the next bill of a period will get.
func (s *BillingService) NextBillNumber(
	ctx context.Context,
	req *connect.Request[NextBillNumberRequest],
) (*connect.Response[NextBillNumberResponse], error) {
	period := s.now()
	if req.Msg.Date != "" {
		d, err := parseDate("date", req.Msg.Date)
		if err != nil {
			return nil, err
		}
		period = d
	}

	var number string
	switch req.Msg.BillType {
	case models.BillTypeTransportation:
		bills, err := s.store.ListTransportBills(ctx)
		if err != nil {
			return nil, toConnectError(err)
		}
		number = billno.NextFor(billno.Transport, bills, period)
	case models.BillTypeGrinding:
		bills, err := s.store.ListGrindingBills(ctx)
		if err != nil {
			return nil, toConnectError(err)
		}
		number = billno.NextFor(billno.Grinding, bills, period)
	default:
		return nil, unknownBillType(req.Msg.BillType)
	}
	return connect.NewResponse(&NextBillNumberResponse{BillNumber: number}), nil
}

func unknownBillType(t models.BillType) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown bill type %q", t))
}

// notEditable rejects changes to a bill that has left the office.
func (s *BillingService) notEditable(number string, status models.Status) error {
	s.metrics.Rejected("edit", 1)
	return connect.NewError(connect.CodeFailedPrecondition,
		fmt.Errorf("bill %q is %s and can no longer be edited", number, status))
}

// SaveTransportBill recomputes and stores a transportation bill. A new
// bill is numbered in the current month unless it already carries a
// number; an existing bill keeps its id, number and lifecycle, and only
// drafts may be changed.
func (s *BillingService) SaveTransportBill(
	ctx context.Context,
	req *connect.Request[SaveTransportBillRequest],
) (*connect.Response[SaveTransportBillResponse], error) {
	set, err := s.settings(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	bill := req.Msg.Bill
	if bill.ID == "" {
		existing, err := s.store.ListTransportBills(ctx)
		if err != nil {
			return nil, toConnectError(err)
		}
		bill.ID = uuid.NewString()
		bill.Lifecycle = s.machine.Create()
		if strings.TrimSpace(bill.BillNumber) == "" {
			bill.BillNumber = billno.NextFor(billno.Transport, existing, s.now())
		}
	} else {
		stored, err := s.store.GetTransportBill(ctx, bill.ID)
		if err != nil {
			return nil, toConnectError(err)
		}
		if st := stored.Current(); st != models.StatusDraft {
			return nil, s.notEditable(stored.BillNumber, st)
		}
		bill.BillNumber = stored.BillNumber
		bill.Lifecycle = stored.Lifecycle
	}
	if len(bill.CertificationPoints) == 0 {
		bill.CertificationPoints = set.CertificationPoints
	}
	bill = calculator.ApplyTransport(bill, set.Mode, set.Transport)

	saved := bill
	result, err := persist.Save(s.guard, bill, func(b models.TransportBill) error {
		saved = b
		return s.store.SaveTransportBills(ctx, b)
	})
	if err != nil {
		return nil, toConnectError(fmt.Errorf("failed to save bill: %w", err))
	}
	s.metrics.Saved(string(models.BillTypeTransportation), result.StrippedAttachments)

	s.logger.Info("Bill saved",
		"bill_type", models.BillTypeTransportation,
		"bill_id", saved.ID,
		"bill_number", saved.BillNumber,
		"size_bytes", result.Bytes,
		"stripped_attachments", result.StrippedAttachments,
	)
	return connect.NewResponse(&SaveTransportBillResponse{Bill: saved, Result: result}), nil
}

// grindingPeriod is the month a grinding bill is numbered in: its period
// start, else its bill date, else now.
func (s *BillingService) grindingPeriod(b models.GrindingBill) time.Time {
	for _, v := range []string{b.BillPeriodStart, b.BillDate} {
		if t, err := time.Parse(dateLayout, strings.TrimSpace(v)); err == nil {
			return t
		}
	}
	return s.now()
}

// SaveGrindingBill recomputes and stores a grinding bill with the same
// rules as SaveTransportBill. New bills are numbered in their own period.
func (s *BillingService) SaveGrindingBill(
	ctx context.Context,
	req *connect.Request[SaveGrindingBillRequest],
) (*connect.Response[SaveGrindingBillResponse], error) {
	set, err := s.settings(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	bill := req.Msg.Bill
	if bill.ID == "" {
		existing, err := s.store.ListGrindingBills(ctx)
		if err != nil {
			return nil, toConnectError(err)
		}
		bill.ID = uuid.NewString()
		bill.Lifecycle = s.machine.Create()
		if strings.TrimSpace(bill.BillNumber) == "" {
			bill.BillNumber = billno.NextFor(billno.Grinding, existing, s.grindingPeriod(bill))
		}
	} else {
		stored, err := s.store.GetGrindingBill(ctx, bill.ID)
		if err != nil {
			return nil, toConnectError(err)
		}
		if st := stored.Current(); st != models.StatusDraft {
			return nil, s.notEditable(stored.BillNumber, st)
		}
		bill.BillNumber = stored.BillNumber
		bill.Lifecycle = stored.Lifecycle
	}
	if len(bill.Commodities) == 0 {
		bill.Commodities = calculator.DefaultCommodities(set.Grinding, uuid.NewString)
	}
	if len(bill.CertificationPoints) == 0 {
		bill.CertificationPoints = set.CertificationPoints
	}
	bill = calculator.ApplyGrinding(bill, set.Grinding)

	saved := bill
	result, err := persist.Save(s.guard, bill, func(b models.GrindingBill) error {
		saved = b
		return s.store.SaveGrindingBills(ctx, b)
	})
	if err != nil {
		return nil, toConnectError(fmt.Errorf("failed to save bill: %w", err))
	}
	s.metrics.Saved(string(models.BillTypeGrinding), result.StrippedAttachments)

	s.logger.Info("Bill saved",
		"bill_type", models.BillTypeGrinding,
		"bill_id", saved.ID,
		"bill_number", saved.BillNumber,
		"size_bytes", result.Bytes,
		"stripped_attachments", result.StrippedAttachments,
	)
	return connect.NewResponse(&SaveGrindingBillResponse{Bill: saved, Result: result}), nil
}

// loadBill fetches the bill a reference names.
func (s *BillingService) loadBill(ctx context.Context, ref BillRef) (lifecycle.UnifiedBill, error) {
	switch ref.BillType {
	case models.BillTypeTransportation:
		b, err := s.store.GetTransportBill(ctx, ref.ID)
		if err != nil {
			return lifecycle.UnifiedBill{}, toConnectError(err)
		}
		return lifecycle.FromTransport(b), nil
	case models.BillTypeGrinding:
		b, err := s.store.GetGrindingBill(ctx, ref.ID)
		if err != nil {
			return lifecycle.UnifiedBill{}, toConnectError(err)
		}
		return lifecycle.FromGrinding(b), nil
	default:
		return lifecycle.UnifiedBill{}, unknownBillType(ref.BillType)
	}
}

// commit stores bills of both kinds, one transaction per kind.
func (s *BillingService) commit(ctx context.Context, bills []lifecycle.UnifiedBill) error {
	var transport []models.TransportBill
	var grinding []models.GrindingBill
	for _, u := range bills {
		switch {
		case u.Transport != nil:
			transport = append(transport, *u.Transport)
		case u.Grinding != nil:
			grinding = append(grinding, *u.Grinding)
		}
	}
	if len(transport) > 0 {
		if err := s.store.SaveTransportBills(ctx, transport...); err != nil {
			return err
		}
	}
	if len(grinding) > 0 {
		if err := s.store.SaveGrindingBills(ctx, grinding...); err != nil {
			return err
		}
	}
	return nil
}

// countByType counts bills per kind.
func countByType(bills []lifecycle.UnifiedBill) map[models.BillType]int {
	counts := make(map[models.BillType]int, 2)
	for _, u := range bills {
		counts[u.Type]++
	}
	return counts
}

// SendToAG hands a draft bill to the AG Office.
func (s *BillingService) SendToAG(
	ctx context.Context,
	req *connect.Request[SendToAGRequest],
) (*connect.Response[SendToAGResponse], error) {
	bill, err := s.loadBill(ctx, req.Msg.Bill)
	if err != nil {
		return nil, err
	}

	sent, err := lifecycle.SendToAG(s.machine, bill)
	if err != nil {
		s.metrics.Rejected("send_to_ag", 1)
		return nil, toConnectError(err)
	}
	if err := s.commit(ctx, []lifecycle.UnifiedBill{sent}); err != nil {
		return nil, toConnectError(fmt.Errorf("failed to save bill: %w", err))
	}
	s.metrics.Transitioned(string(sent.Type), string(models.StatusSentToAG), 1)

	s.logger.Info("Bill sent to AG Office",
		"bill_type", sent.Type,
		"bill_id", sent.ID(),
		"bill_number", sent.Number(),
	)
	return connect.NewResponse(&SendToAGResponse{Bill: sent}), nil
}

// ProcessBatch marks the selected AG Office bills processed, stores them
// and prints them in order. Selected bills that are not with the AG
// Office are reported and left as they are.
func (s *BillingService) ProcessBatch(
	ctx context.Context,
	req *connect.Request[ProcessBatchRequest],
) (*connect.Response[ProcessBatchResponse], error) {
	if len(req.Msg.Bills) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("no bills selected"))
	}

	bills := make([]lifecycle.UnifiedBill, 0, len(req.Msg.Bills))
	for _, ref := range req.Msg.Bills {
		u, err := s.loadBill(ctx, ref)
		if err != nil {
			return nil, err
		}
		bills = append(bills, u)
	}

	result, err := s.handoff.Process(ctx, bills, func(processed []lifecycle.UnifiedBill) error {
		return s.commit(ctx, processed)
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	for kind, n := range countByType(result.Processed) {
		s.metrics.Transitioned(string(kind), string(models.StatusProcessed), n)
	}
	s.metrics.Rejected("process", len(result.Rejected))
	s.metrics.Printed(result.Printed, result.PrintFailures)

	resp := &ProcessBatchResponse{
		Processed:     result.Processed,
		Rejected:      make([]string, len(result.Rejected)),
		Printed:       result.Printed,
		PrintFailures: result.PrintFailures,
	}
	if resp.Processed == nil {
		resp.Processed = []lifecycle.UnifiedBill{}
	}
	for i, r := range result.Rejected {
		resp.Rejected[i] = r.Error()
	}
	return connect.NewResponse(resp), nil
}

// queue builds the AG Office queue over every stored bill.
func (s *BillingService) queue(ctx context.Context) ([]lifecycle.UnifiedBill, error) {
	transport, err := s.store.ListTransportBills(ctx)
	if err != nil {
		return nil, err
	}
	grinding, err := s.store.ListGrindingBills(ctx)
	if err != nil {
		return nil, err
	}
	return lifecycle.UnifiedQueue(transport, grinding), nil
}

// Queue lists the bills at or past the AG Office, newest first.
func (s *BillingService) Queue(
	ctx context.Context,
	req *connect.Request[QueueRequest],
) (*connect.Response[QueueResponse], error) {
	queue, err := s.queue(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	var bills []lifecycle.UnifiedBill
	switch req.Msg.Status {
	case "":
		bills = make([]lifecycle.UnifiedBill, 0, len(queue))
		for _, u := range queue {
			if u.LifecycleState().Current() != models.StatusDraft {
				bills = append(bills, u)
			}
		}
	case models.StatusSentToAG:
		bills = lifecycle.Pending(queue)
	case models.StatusProcessed:
		bills = lifecycle.Processed(queue)
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("queue status must be %q or %q, got %q", models.StatusSentToAG, models.StatusProcessed, req.Msg.Status))
	}
	return connect.NewResponse(&QueueResponse{Bills: bills}), nil
}

// Report lists the bills sent and processed between two dates, inclusive.
func (s *BillingService) Report(
	ctx context.Context,
	req *connect.Request[ReportRequest],
) (*connect.Response[ReportResponse], error) {
	start, err := parseDate("start date", req.Msg.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end date", req.Msg.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("end date is before start date"))
	}

	queue, err := s.queue(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ReportResponse{Report: lifecycle.ReportInRange(queue, start, end)}), nil
}

// Statement summarises the bills of one kind per party and per month.
func (s *BillingService) Statement(
	ctx context.Context,
	req *connect.Request[StatementRequest],
) (*connect.Response[StatementResponse], error) {
	var st calculator.Statement
	switch req.Msg.BillType {
	case models.BillTypeTransportation:
		bills, err := s.store.ListTransportBills(ctx)
		if err != nil {
			return nil, toConnectError(err)
		}
		st = calculator.SummarizeTransport(bills, req.Msg.Filter)
	case models.BillTypeGrinding:
		bills, err := s.store.ListGrindingBills(ctx)
		if err != nil {
			return nil, toConnectError(err)
		}
		st = calculator.SummarizeGrinding(bills, req.Msg.Filter)
	default:
		return nil, unknownBillType(req.Msg.BillType)
	}
	return connect.NewResponse(&StatementResponse{Statement: st}), nil
}

// GetSettings returns the rate schedule in force.
func (s *BillingService) GetSettings(
	ctx context.Context,
	_ *connect.Request[GetSettingsRequest],
) (*connect.Response[SettingsResponse], error) {
	set, err := s.settings(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SettingsResponse{Settings: set}), nil
}

// UpdateSettings replaces the rate schedule. Saved bills keep the amounts
// they were computed with.
func (s *BillingService) UpdateSettings(
	ctx context.Context,
	req *connect.Request[UpdateSettingsRequest],
) (*connect.Response[SettingsResponse], error) {
	set := req.Msg.Settings
	if set.Mode.KgPerBag <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("kg per bag must be positive"))
	}
	if err := s.store.PutSetting(ctx, settingsKey, set); err != nil {
		return nil, toConnectError(fmt.Errorf("failed to save settings: %w", err))
	}
	s.logger.Info("Settings updated")
	return connect.NewResponse(&SettingsResponse{Settings: set}), nil
}
