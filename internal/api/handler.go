package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// TaxServiceName is the fully-qualified name of the TaxService.
const TaxServiceName = "taxpilot.v1.TaxService"

// Procedure paths served by NewTaxServiceHandler.
const (
	TaxServiceCreateAccountProcedure                = "/" + TaxServiceName + "/CreateAccount"
	TaxServiceGetAccountProcedure                   = "/" + TaxServiceName + "/GetAccount"
	TaxServiceListAccountsProcedure                 = "/" + TaxServiceName + "/ListAccounts"
	TaxServiceAddAccountMemberProcedure             = "/" + TaxServiceName + "/AddAccountMember"
	TaxServiceSyncCalendarProcedure                 = "/" + TaxServiceName + "/SyncCalendar"
	TaxServiceProcessScheduledCalendarSyncProcedure = "/" + TaxServiceName + "/ProcessScheduledCalendarSync"
	TaxServiceListCalendarEventsProcedure           = "/" + TaxServiceName + "/ListCalendarEvents"
	TaxServiceCompleteCalendarEventProcedure        = "/" + TaxServiceName + "/CompleteCalendarEvent"
	TaxServiceCreateScenarioProcedure               = "/" + TaxServiceName + "/CreateScenario"
	TaxServiceListScenariosProcedure                = "/" + TaxServiceName + "/ListScenarios"
	TaxServiceSaveScenarioInputProcedure            = "/" + TaxServiceName + "/SaveScenarioInput"
	TaxServiceRunScenarioProcedure                  = "/" + TaxServiceName + "/RunScenario"
	TaxServiceGetScenarioResultProcedure            = "/" + TaxServiceName + "/GetScenarioResult"
	TaxServiceCalculateScenarioProcedure            = "/" + TaxServiceName + "/CalculateScenario"
	TaxServiceCreateExpenseProcedure                = "/" + TaxServiceName + "/CreateExpense"
	TaxServiceListExpensesProcedure                 = "/" + TaxServiceName + "/ListExpenses"
	TaxServiceDeleteExpenseProcedure                = "/" + TaxServiceName + "/DeleteExpense"
	TaxServiceSearchExpensesProcedure               = "/" + TaxServiceName + "/SearchExpenses"
	TaxServiceUploadReceiptProcedure                = "/" + TaxServiceName + "/UploadReceipt"
	TaxServiceGetReceiptProcedure                   = "/" + TaxServiceName + "/GetReceipt"
	TaxServiceExportReceiptsProcedure               = "/" + TaxServiceName + "/ExportReceipts"
	TaxServiceUploadTaxCardProcedure                = "/" + TaxServiceName + "/UploadTaxCard"
	TaxServiceListTaxCardsProcedure                 = "/" + TaxServiceName + "/ListTaxCards"
	TaxServiceGetJobProcedure                       = "/" + TaxServiceName + "/GetJob"
	TaxServiceChatProcedure                         = "/" + TaxServiceName + "/Chat"
	TaxServiceUpsertTaxRegimeProcedure              = "/" + TaxServiceName + "/UpsertTaxRegime"
	TaxServiceUpsertEventTemplateProcedure          = "/" + TaxServiceName + "/UpsertEventTemplate"
)

// TaxServiceHandler is implemented by service.TaxService.
type TaxServiceHandler interface {
	CreateAccount(context.Context, *connect.Request[CreateAccountRequest]) (*connect.Response[CreateAccountResponse], error)
	GetAccount(context.Context, *connect.Request[GetAccountRequest]) (*connect.Response[GetAccountResponse], error)
	ListAccounts(context.Context, *connect.Request[ListAccountsRequest]) (*connect.Response[ListAccountsResponse], error)
	AddAccountMember(context.Context, *connect.Request[AddAccountMemberRequest]) (*connect.Response[AddAccountMemberResponse], error)
	SyncCalendar(context.Context, *connect.Request[SyncCalendarRequest]) (*connect.Response[SyncCalendarResponse], error)
	ProcessScheduledCalendarSync(context.Context, *connect.Request[ProcessScheduledCalendarSyncRequest]) (*connect.Response[ProcessScheduledCalendarSyncResponse], error)
	ListCalendarEvents(context.Context, *connect.Request[ListCalendarEventsRequest]) (*connect.Response[ListCalendarEventsResponse], error)
	CompleteCalendarEvent(context.Context, *connect.Request[CompleteCalendarEventRequest]) (*connect.Response[CompleteCalendarEventResponse], error)
	CreateScenario(context.Context, *connect.Request[CreateScenarioRequest]) (*connect.Response[CreateScenarioResponse], error)
	ListScenarios(context.Context, *connect.Request[ListScenariosRequest]) (*connect.Response[ListScenariosResponse], error)
	SaveScenarioInput(context.Context, *connect.Request[SaveScenarioInputRequest]) (*connect.Response[SaveScenarioInputResponse], error)
	RunScenario(context.Context, *connect.Request[RunScenarioRequest]) (*connect.Response[RunScenarioResponse], error)
	GetScenarioResult(context.Context, *connect.Request[GetScenarioResultRequest]) (*connect.Response[GetScenarioResultResponse], error)
	CalculateScenario(context.Context, *connect.Request[CalculateScenarioRequest]) (*connect.Response[CalculateScenarioResponse], error)
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	SearchExpenses(context.Context, *connect.Request[SearchExpensesRequest]) (*connect.Response[SearchExpensesResponse], error)
	UploadReceipt(context.Context, *connect.Request[UploadDocumentRequest]) (*connect.Response[UploadReceiptResponse], error)
	GetReceipt(context.Context, *connect.Request[GetReceiptRequest]) (*connect.Response[GetReceiptResponse], error)
	ExportReceipts(context.Context, *connect.Request[ExportReceiptsRequest]) (*connect.Response[ExportReceiptsResponse], error)
	UploadTaxCard(context.Context, *connect.Request[UploadDocumentRequest]) (*connect.Response[UploadTaxCardResponse], error)
	ListTaxCards(context.Context, *connect.Request[ListTaxCardsRequest]) (*connect.Response[ListTaxCardsResponse], error)
	GetJob(context.Context, *connect.Request[GetJobRequest]) (*connect.Response[GetJobResponse], error)
	Chat(context.Context, *connect.Request[ChatRequest]) (*connect.Response[ChatResponse], error)
	UpsertTaxRegime(context.Context, *connect.Request[UpsertTaxRegimeRequest]) (*connect.Response[UpsertTaxRegimeResponse], error)
	UpsertEventTemplate(context.Context, *connect.Request[UpsertEventTemplateRequest]) (*connect.Response[UpsertEventTemplateResponse], error)
}

// NewTaxServiceHandler builds an HTTP handler for every TaxService procedure.
// It returns the path prefix to mount the handler on.
func NewTaxServiceHandler(svc TaxServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	handlers := map[string]http.Handler{
		TaxServiceCreateAccountProcedure:                connect.NewUnaryHandler(TaxServiceCreateAccountProcedure, svc.CreateAccount, opts...),
		TaxServiceGetAccountProcedure:                   connect.NewUnaryHandler(TaxServiceGetAccountProcedure, svc.GetAccount, opts...),
		TaxServiceListAccountsProcedure:                 connect.NewUnaryHandler(TaxServiceListAccountsProcedure, svc.ListAccounts, opts...),
		TaxServiceAddAccountMemberProcedure:             connect.NewUnaryHandler(TaxServiceAddAccountMemberProcedure, svc.AddAccountMember, opts...),
		TaxServiceSyncCalendarProcedure:                 connect.NewUnaryHandler(TaxServiceSyncCalendarProcedure, svc.SyncCalendar, opts...),
		TaxServiceProcessScheduledCalendarSyncProcedure: connect.NewUnaryHandler(TaxServiceProcessScheduledCalendarSyncProcedure, svc.ProcessScheduledCalendarSync, opts...),
		TaxServiceListCalendarEventsProcedure:           connect.NewUnaryHandler(TaxServiceListCalendarEventsProcedure, svc.ListCalendarEvents, opts...),
		TaxServiceCompleteCalendarEventProcedure:        connect.NewUnaryHandler(TaxServiceCompleteCalendarEventProcedure, svc.CompleteCalendarEvent, opts...),
		TaxServiceCreateScenarioProcedure:               connect.NewUnaryHandler(TaxServiceCreateScenarioProcedure, svc.CreateScenario, opts...),
		TaxServiceListScenariosProcedure:                connect.NewUnaryHandler(TaxServiceListScenariosProcedure, svc.ListScenarios, opts...),
		TaxServiceSaveScenarioInputProcedure:            connect.NewUnaryHandler(TaxServiceSaveScenarioInputProcedure, svc.SaveScenarioInput, opts...),
		TaxServiceRunScenarioProcedure:                  connect.NewUnaryHandler(TaxServiceRunScenarioProcedure, svc.RunScenario, opts...),
		TaxServiceGetScenarioResultProcedure:            connect.NewUnaryHandler(TaxServiceGetScenarioResultProcedure, svc.GetScenarioResult, opts...),
		TaxServiceCalculateScenarioProcedure:            connect.NewUnaryHandler(TaxServiceCalculateScenarioProcedure, svc.CalculateScenario, opts...),
		TaxServiceCreateExpenseProcedure:                connect.NewUnaryHandler(TaxServiceCreateExpenseProcedure, svc.CreateExpense, opts...),
		TaxServiceListExpensesProcedure:                 connect.NewUnaryHandler(TaxServiceListExpensesProcedure, svc.ListExpenses, opts...),
		TaxServiceDeleteExpenseProcedure:                connect.NewUnaryHandler(TaxServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...),
		TaxServiceSearchExpensesProcedure:               connect.NewUnaryHandler(TaxServiceSearchExpensesProcedure, svc.SearchExpenses, opts...),
		TaxServiceUploadReceiptProcedure:                connect.NewUnaryHandler(TaxServiceUploadReceiptProcedure, svc.UploadReceipt, opts...),
		TaxServiceGetReceiptProcedure:                   connect.NewUnaryHandler(TaxServiceGetReceiptProcedure, svc.GetReceipt, opts...),
		TaxServiceExportReceiptsProcedure:               connect.NewUnaryHandler(TaxServiceExportReceiptsProcedure, svc.ExportReceipts, opts...),
		TaxServiceUploadTaxCardProcedure:                connect.NewUnaryHandler(TaxServiceUploadTaxCardProcedure, svc.UploadTaxCard, opts...),
		TaxServiceListTaxCardsProcedure:                 connect.NewUnaryHandler(TaxServiceListTaxCardsProcedure, svc.ListTaxCards, opts...),
		TaxServiceGetJobProcedure:                       connect.NewUnaryHandler(TaxServiceGetJobProcedure, svc.GetJob, opts...),
		TaxServiceChatProcedure:                         connect.NewUnaryHandler(TaxServiceChatProcedure, svc.Chat, opts...),
		TaxServiceUpsertTaxRegimeProcedure:              connect.NewUnaryHandler(TaxServiceUpsertTaxRegimeProcedure, svc.UpsertTaxRegime, opts...),
		TaxServiceUpsertEventTemplateProcedure:          connect.NewUnaryHandler(TaxServiceUpsertEventTemplateProcedure, svc.UpsertEventTemplate, opts...),
	}

	return "/" + TaxServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}
