package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	// ExpenseServiceName is the fully-qualified name of the ExpenseService.
	ExpenseServiceName = "tripledger.v1.ExpenseService"
	// SettlementServiceName is the fully-qualified name of the SettlementService.
	SettlementServiceName = "tripledger.v1.SettlementService"
)

// Procedure paths, as they appear in the URL.
const (
	ExpenseServiceCreateExpenseProcedure         = "/tripledger.v1.ExpenseService/CreateExpense"
	ExpenseServiceGetExpenseProcedure            = "/tripledger.v1.ExpenseService/GetExpense"
	ExpenseServiceListExpensesProcedure          = "/tripledger.v1.ExpenseService/ListExpenses"
	ExpenseServiceUpdateExpenseProcedure         = "/tripledger.v1.ExpenseService/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure         = "/tripledger.v1.ExpenseService/DeleteExpense"
	SettlementServiceMarkSplitSettledProcedure   = "/tripledger.v1.SettlementService/MarkSplitSettled"
	SettlementServiceMarkSplitUnsettledProcedure = "/tripledger.v1.SettlementService/MarkSplitUnsettled"
	SettlementServiceGetTripBalancesProcedure    = "/tripledger.v1.SettlementService/GetTripBalances"
)

// NewExpenseServiceHandler builds an HTTP handler for svc and returns the
// path to mount it on.
func NewExpenseServiceHandler(svc *ExpenseService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec())}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ExpenseServiceCreateExpenseProcedure,
		connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...))
	mux.Handle(ExpenseServiceGetExpenseProcedure,
		connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...))
	mux.Handle(ExpenseServiceListExpensesProcedure,
		connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(ExpenseServiceUpdateExpenseProcedure,
		connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...))
	mux.Handle(ExpenseServiceDeleteExpenseProcedure,
		connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))

	return "/" + ExpenseServiceName + "/", mux
}

// NewSettlementServiceHandler builds an HTTP handler for svc and returns the
// path to mount it on.
func NewSettlementServiceHandler(svc *SettlementService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec())}, opts...)

	mux := http.NewServeMux()
	mux.Handle(SettlementServiceMarkSplitSettledProcedure,
		connect.NewUnaryHandler(SettlementServiceMarkSplitSettledProcedure, svc.MarkSplitSettled, opts...))
	mux.Handle(SettlementServiceMarkSplitUnsettledProcedure,
		connect.NewUnaryHandler(SettlementServiceMarkSplitUnsettledProcedure, svc.MarkSplitUnsettled, opts...))
	mux.Handle(SettlementServiceGetTripBalancesProcedure,
		connect.NewUnaryHandler(SettlementServiceGetTripBalancesProcedure, svc.GetTripBalances, opts...))

	return "/" + SettlementServiceName + "/", mux
}

// ExpenseServiceClient calls the ExpenseService.
type ExpenseServiceClient struct {
	createExpense *connect.Client[CreateExpenseRequest, ExpenseResponse]
	getExpense    *connect.Client[GetExpenseRequest, ExpenseResponse]
	listExpenses  *connect.Client[ListExpensesRequest, ListExpensesResponse]
	updateExpense *connect.Client[UpdateExpenseRequest, ExpenseResponse]
	deleteExpense *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
}

// NewExpenseServiceClient creates a client for the ExpenseService at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec())}, opts...)
	return &ExpenseServiceClient{
		createExpense: connect.NewClient[CreateExpenseRequest, ExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		getExpense:    connect.NewClient[GetExpenseRequest, ExpenseResponse](httpClient, baseURL+ExpenseServiceGetExpenseProcedure, opts...),
		listExpenses:  connect.NewClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
		updateExpense: connect.NewClient[UpdateExpenseRequest, ExpenseResponse](httpClient, baseURL+ExpenseServiceUpdateExpenseProcedure, opts...),
		deleteExpense: connect.NewClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
	}
}

func (c *ExpenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[GetExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

// SettlementServiceClient calls the SettlementService.
type SettlementServiceClient struct {
	markSplitSettled   *connect.Client[MarkSplitRequest, SplitResponse]
	markSplitUnsettled *connect.Client[MarkSplitRequest, SplitResponse]
	getTripBalances    *connect.Client[GetTripBalancesRequest, GetTripBalancesResponse]
}

// NewSettlementServiceClient creates a client for the SettlementService at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec())}, opts...)
	return &SettlementServiceClient{
		markSplitSettled:   connect.NewClient[MarkSplitRequest, SplitResponse](httpClient, baseURL+SettlementServiceMarkSplitSettledProcedure, opts...),
		markSplitUnsettled: connect.NewClient[MarkSplitRequest, SplitResponse](httpClient, baseURL+SettlementServiceMarkSplitUnsettledProcedure, opts...),
		getTripBalances:    connect.NewClient[GetTripBalancesRequest, GetTripBalancesResponse](httpClient, baseURL+SettlementServiceGetTripBalancesProcedure, opts...),
	}
}

func (c *SettlementServiceClient) MarkSplitSettled(ctx context.Context, req *connect.Request[MarkSplitRequest]) (*connect.Response[SplitResponse], error) {
	return c.markSplitSettled.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) MarkSplitUnsettled(ctx context.Context, req *connect.Request[MarkSplitRequest]) (*connect.Response[SplitResponse], error) {
	return c.markSplitUnsettled.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GetTripBalances(ctx context.Context, req *connect.Request[GetTripBalancesRequest]) (*connect.Response[GetTripBalancesResponse], error) {
	return c.getTripBalances.CallUnary(ctx, req)
}
