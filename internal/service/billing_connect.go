package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// BillingServiceName is the fully-qualified name of the billing service.
const BillingServiceName = "fdbms.v1.BillingService"

// Procedure paths of the billing service.
const (
	ComputeLineItemProcedure     = "/" + BillingServiceName + "/ComputeLineItem"
	ComputeDeductionsProcedure   = "/" + BillingServiceName + "/ComputeDeductions"
	ComputeGrindingBillProcedure = "/" + BillingServiceName + "/ComputeGrindingBill"
	NextBillNumberProcedure      = "/" + BillingServiceName + "/NextBillNumber"
	SaveTransportBillProcedure   = "/" + BillingServiceName + "/SaveTransportBill"
	SaveGrindingBillProcedure    = "/" + BillingServiceName + "/SaveGrindingBill"
	SendToAGProcedure            = "/" + BillingServiceName + "/SendToAG"
	ProcessBatchProcedure        = "/" + BillingServiceName + "/ProcessBatch"
	QueueProcedure               = "/" + BillingServiceName + "/Queue"
	ReportProcedure              = "/" + BillingServiceName + "/Report"
	StatementProcedure           = "/" + BillingServiceName + "/Statement"
	GetSettingsProcedure         = "/" + BillingServiceName + "/GetSettings"
	UpdateSettingsProcedure      = "/" + BillingServiceName + "/UpdateSettings"
	ImportContractsProcedure     = "/" + BillingServiceName + "/ImportContracts"
	ImportUsersProcedure         = "/" + BillingServiceName + "/ImportUsers"
	RestoreBackupProcedure       = "/" + BillingServiceName + "/RestoreBackup"
)

// BillingServiceHandler is implemented by the billing service.
type BillingServiceHandler interface {
	ComputeLineItem(context.Context, *connect.Request[ComputeLineItemRequest]) (*connect.Response[ComputeLineItemResponse], error)
	ComputeDeductions(context.Context, *connect.Request[ComputeDeductionsRequest]) (*connect.Response[ComputeDeductionsResponse], error)
	ComputeGrindingBill(context.Context, *connect.Request[ComputeGrindingBillRequest]) (*connect.Response[ComputeGrindingBillResponse], error)
	NextBillNumber(context.Context, *connect.Request[NextBillNumberRequest]) (*connect.Response[NextBillNumberResponse], error)
	SaveTransportBill(context.Context, *connect.Request[SaveTransportBillRequest]) (*connect.Response[SaveTransportBillResponse], error)
	SaveGrindingBill(context.Context, *connect.Request[SaveGrindingBillRequest]) (*connect.Response[SaveGrindingBillResponse], error)
	SendToAG(context.Context, *connect.Request[SendToAGRequest]) (*connect.Response[SendToAGResponse], error)
	ProcessBatch(context.Context, *connect.Request[ProcessBatchRequest]) (*connect.Response[ProcessBatchResponse], error)
	Queue(context.Context, *connect.Request[QueueRequest]) (*connect.Response[QueueResponse], error)
	Report(context.Context, *connect.Request[ReportRequest]) (*connect.Response[ReportResponse], error)
	Statement(context.Context, *connect.Request[StatementRequest]) (*connect.Response[StatementResponse], error)
	GetSettings(context.Context, *connect.Request[GetSettingsRequest]) (*connect.Response[SettingsResponse], error)
	UpdateSettings(context.Context, *connect.Request[UpdateSettingsRequest]) (*connect.Response[SettingsResponse], error)
	ImportContracts(context.Context, *connect.Request[ImportRequest]) (*connect.Response[ImportResponse], error)
	ImportUsers(context.Context, *connect.Request[ImportRequest]) (*connect.Response[ImportResponse], error)
	RestoreBackup(context.Context, *connect.Request[RestoreBackupRequest]) (*connect.Response[RestoreBackupResponse], error)
}

// NewBillingServiceHandler builds an HTTP handler serving every procedure
// of svc with the JSON codec. It returns the path to mount it on.
func NewBillingServiceHandler(svc BillingServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ComputeLineItemProcedure, connect.NewUnaryHandler(ComputeLineItemProcedure, svc.ComputeLineItem, opts...))
	mux.Handle(ComputeDeductionsProcedure, connect.NewUnaryHandler(ComputeDeductionsProcedure, svc.ComputeDeductions, opts...))
	mux.Handle(ComputeGrindingBillProcedure, connect.NewUnaryHandler(ComputeGrindingBillProcedure, svc.ComputeGrindingBill, opts...))
	mux.Handle(NextBillNumberProcedure, connect.NewUnaryHandler(NextBillNumberProcedure, svc.NextBillNumber, opts...))
	mux.Handle(SaveTransportBillProcedure, connect.NewUnaryHandler(SaveTransportBillProcedure, svc.SaveTransportBill, opts...))
	mux.Handle(SaveGrindingBillProcedure, connect.NewUnaryHandler(SaveGrindingBillProcedure, svc.SaveGrindingBill, opts...))
	mux.Handle(SendToAGProcedure, connect.NewUnaryHandler(SendToAGProcedure, svc.SendToAG, opts...))
	mux.Handle(ProcessBatchProcedure, connect.NewUnaryHandler(ProcessBatchProcedure, svc.ProcessBatch, opts...))
	mux.Handle(QueueProcedure, connect.NewUnaryHandler(QueueProcedure, svc.Queue, opts...))
	mux.Handle(ReportProcedure, connect.NewUnaryHandler(ReportProcedure, svc.Report, opts...))
	mux.Handle(StatementProcedure, connect.NewUnaryHandler(StatementProcedure, svc.Statement, opts...))
	mux.Handle(GetSettingsProcedure, connect.NewUnaryHandler(GetSettingsProcedure, svc.GetSettings, opts...))
	mux.Handle(UpdateSettingsProcedure, connect.NewUnaryHandler(UpdateSettingsProcedure, svc.UpdateSettings, opts...))
	mux.Handle(ImportContractsProcedure, connect.NewUnaryHandler(ImportContractsProcedure, svc.ImportContracts, opts...))
	mux.Handle(ImportUsersProcedure, connect.NewUnaryHandler(ImportUsersProcedure, svc.ImportUsers, opts...))
	mux.Handle(RestoreBackupProcedure, connect.NewUnaryHandler(RestoreBackupProcedure, svc.RestoreBackup, opts...))

	return "/" + BillingServiceName + "/", mux
}

// BillingServiceClient calls a remote billing service.
type BillingServiceClient struct {
	computeLineItem     *connect.Client[ComputeLineItemRequest, ComputeLineItemResponse]
	computeDeductions   *connect.Client[ComputeDeductionsRequest, ComputeDeductionsResponse]
	computeGrindingBill *connect.Client[ComputeGrindingBillRequest, ComputeGrindingBillResponse]
	nextBillNumber      *connect.Client[NextBillNumberRequest, NextBillNumberResponse]
	saveTransportBill   *connect.Client[SaveTransportBillRequest, SaveTransportBillResponse]
	saveGrindingBill    *connect.Client[SaveGrindingBillRequest, SaveGrindingBillResponse]
	sendToAG            *connect.Client[SendToAGRequest, SendToAGResponse]
	processBatch        *connect.Client[ProcessBatchRequest, ProcessBatchResponse]
	queue               *connect.Client[QueueRequest, QueueResponse]
	report              *connect.Client[ReportRequest, ReportResponse]
	statement           *connect.Client[StatementRequest, StatementResponse]
	getSettings         *connect.Client[GetSettingsRequest, SettingsResponse]
	updateSettings      *connect.Client[UpdateSettingsRequest, SettingsResponse]
	importContracts     *connect.Client[ImportRequest, ImportResponse]
	importUsers         *connect.Client[ImportRequest, ImportResponse]
	restoreBackup       *connect.Client[RestoreBackupRequest, RestoreBackupResponse]
}

// NewBillingServiceClient returns a client for the service at baseURL,
// e.g. http://localhost:8080.
func NewBillingServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillingServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &BillingServiceClient{
		computeLineItem:     connect.NewClient[ComputeLineItemRequest, ComputeLineItemResponse](httpClient, baseURL+ComputeLineItemProcedure, opts...),
		computeDeductions:   connect.NewClient[ComputeDeductionsRequest, ComputeDeductionsResponse](httpClient, baseURL+ComputeDeductionsProcedure, opts...),
		computeGrindingBill: connect.NewClient[ComputeGrindingBillRequest, ComputeGrindingBillResponse](httpClient, baseURL+ComputeGrindingBillProcedure, opts...),
		nextBillNumber:      connect.NewClient[NextBillNumberRequest, NextBillNumberResponse](httpClient, baseURL+NextBillNumberProcedure, opts...),
		saveTransportBill:   connect.NewClient[SaveTransportBillRequest, SaveTransportBillResponse](httpClient, baseURL+SaveTransportBillProcedure, opts...),
		saveGrindingBill:    connect.NewClient[SaveGrindingBillRequest, SaveGrindingBillResponse](httpClient, baseURL+SaveGrindingBillProcedure, opts...),
		sendToAG:            connect.NewClient[SendToAGRequest, SendToAGResponse](httpClient, baseURL+SendToAGProcedure, opts...),
		processBatch:        connect.NewClient[ProcessBatchRequest, ProcessBatchResponse](httpClient, baseURL+ProcessBatchProcedure, opts...),
		queue:               connect.NewClient[QueueRequest, QueueResponse](httpClient, baseURL+QueueProcedure, opts...),
		report:              connect.NewClient[ReportRequest, ReportResponse](httpClient, baseURL+ReportProcedure, opts...),
		statement:           connect.NewClient[StatementRequest, StatementResponse](httpClient, baseURL+StatementProcedure, opts...),
		getSettings:         connect.NewClient[GetSettingsRequest, SettingsResponse](httpClient, baseURL+GetSettingsProcedure, opts...),
		updateSettings:      connect.NewClient[UpdateSettingsRequest, SettingsResponse](httpClient, baseURL+UpdateSettingsProcedure, opts...),
		importContracts:     connect.NewClient[ImportRequest, ImportResponse](httpClient, baseURL+ImportContractsProcedure, opts...),
		importUsers:         connect.NewClient[ImportRequest, ImportResponse](httpClient, baseURL+ImportUsersProcedure, opts...),
		restoreBackup:       connect.NewClient[RestoreBackupRequest, RestoreBackupResponse](httpClient, baseURL+RestoreBackupProcedure, opts...),
	}
}

func (c *BillingServiceClient) ComputeLineItem(ctx context.Context, req *connect.Request[ComputeLineItemRequest]) (*connect.Response[ComputeLineItemResponse], error) {
	return c.computeLineItem.CallUnary(ctx, req)
}

func (c *BillingServiceClient) ComputeDeductions(ctx context.Context, req *connect.Request[ComputeDeductionsRequest]) (*connect.Response[ComputeDeductionsResponse], error) {
	return c.computeDeductions.CallUnary(ctx, req)
}

func (c *BillingServiceClient) ComputeGrindingBill(ctx context.Context, req *connect.Request[ComputeGrindingBillRequest]) (*connect.Response[ComputeGrindingBillResponse], error) {
	return c.computeGrindingBill.CallUnary(ctx, req)
}

func (c *BillingServiceClient) NextBillNumber(ctx context.Context, req *connect.Request[NextBillNumberRequest]) (*connect.Response[NextBillNumberResponse], error) {
	return c.nextBillNumber.CallUnary(ctx, req)
}

func (c *BillingServiceClient) SaveTransportBill(ctx context.Context, req *connect.Request[SaveTransportBillRequest]) (*connect.Response[SaveTransportBillResponse], error) {
	return c.saveTransportBill.CallUnary(ctx, req)
}

func (c *BillingServiceClient) SaveGrindingBill(ctx context.Context, req *connect.Request[SaveGrindingBillRequest]) (*connect.Response[SaveGrindingBillResponse], error) {
	return c.saveGrindingBill.CallUnary(ctx, req)
}

func (c *BillingServiceClient) SendToAG(ctx context.Context, req *connect.Request[SendToAGRequest]) (*connect.Response[SendToAGResponse], error) {
	return c.sendToAG.CallUnary(ctx, req)
}

func (c *BillingServiceClient) ProcessBatch(ctx context.Context, req *connect.Request[ProcessBatchRequest]) (*connect.Response[ProcessBatchResponse], error) {
	return c.processBatch.CallUnary(ctx, req)
}

func (c *BillingServiceClient) Queue(ctx context.Context, req *connect.Request[QueueRequest]) (*connect.Response[QueueResponse], error) {
	return c.queue.CallUnary(ctx, req)
}

func (c *BillingServiceClient) Report(ctx context.Context, req *connect.Request[ReportRequest]) (*connect.Response[ReportResponse], error) {
	return c.report.CallUnary(ctx, req)
}

func (c *BillingServiceClient) Statement(ctx context.Context, req *connect.Request[StatementRequest]) (*connect.Response[StatementResponse], error) {
	return c.statement.CallUnary(ctx, req)
}

func (c *BillingServiceClient) GetSettings(ctx context.Context, req *connect.Request[GetSettingsRequest]) (*connect.Response[SettingsResponse], error) {
	return c.getSettings.CallUnary(ctx, req)
}

func (c *BillingServiceClient) UpdateSettings(ctx context.Context, req *connect.Request[UpdateSettingsRequest]) (*connect.Response[SettingsResponse], error) {
	return c.updateSettings.CallUnary(ctx, req)
}

func (c *BillingServiceClient) ImportContracts(ctx context.Context, req *connect.Request[ImportRequest]) (*connect.Response[ImportResponse], error) {
	return c.importContracts.CallUnary(ctx, req)
}

func (c *BillingServiceClient) ImportUsers(ctx context.Context, req *connect.Request[ImportRequest]) (*connect.Response[ImportResponse], error) {
	return c.importUsers.CallUnary(ctx, req)
}

func (c *BillingServiceClient) RestoreBackup(ctx context.Context, req *connect.Request[RestoreBackupRequest]) (*connect.Response[RestoreBackupResponse], error) {
	return c.restoreBackup.CallUnary(ctx, req)
}
