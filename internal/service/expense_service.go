package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tripledger/internal/apperr"
	"github.com/mmynk/tripledger/internal/ledger"
	"github.com/mmynk/tripledger/internal/middleware"
	"github.com/mmynk/tripledger/internal/models"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	engine *ledger.Engine
}

// NewExpenseService creates a new ExpenseService backed by engine.
func NewExpenseService(engine *ledger.Engine) *ExpenseService {
	return &ExpenseService{engine: engine}
}

// CreateExpense records an expense and its splits.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	slog.Debug("CreateExpense request received",
		"trip_id", req.Msg.TripID,
		"amount", req.Msg.Amount.String(),
		"category", req.Msg.Category,
	)

	res, err := s.engine.CreateExpense(ctx, userID, ledger.CreateExpenseInput{
		TripID:      req.Msg.TripID,
		PayerID:     req.Msg.PayerID,
		ActivityID:  req.Msg.ActivityID,
		Amount:      req.Msg.Amount,
		Currency:    req.Msg.Currency,
		Category:    models.Category(req.Msg.Category),
		Description: req.Msg.Description,
		ExpenseDate: req.Msg.ExpenseDate,
		Splits:      toPlan(req.Msg.Splits),
	})
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&ExpenseResponse{Expense: toExpense(res)}), nil
}

// GetExpense returns one expense with its splits.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[GetExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ExpenseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("expense_id required"))
	}

	res, err := s.engine.GetExpense(ctx, userID, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&ExpenseResponse{Expense: toExpense(res)}), nil
}

// ListExpenses returns every expense of a trip.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.TripID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("trip_id required"))
	}

	list, err := s.engine.ListExpenses(ctx, userID, req.Msg.TripID)
	if err != nil {
		return nil, connectError(err)
	}

	out := make([]Expense, len(list))
	for i := range list {
		out[i] = toExpense(&list[i])
	}
	return connect.NewResponse(&ListExpensesResponse{Expenses: out}), nil
}

// UpdateExpense changes the supplied fields; supplied splits replace all existing ones.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ExpenseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("expense_id required"))
	}

	in := ledger.UpdateExpenseInput{
		Amount:      req.Msg.Amount,
		Currency:    req.Msg.Currency,
		Description: req.Msg.Description,
		ExpenseDate: req.Msg.ExpenseDate,
		ActivityID:  req.Msg.ActivityID,
	}
	if req.Msg.Category != nil {
		category := models.Category(*req.Msg.Category)
		in.Category = &category
	}
	if req.Msg.Splits != nil {
		plan := toPlan(req.Msg.Splits)
		in.Splits = &plan
	}

	res, err := s.engine.UpdateExpense(ctx, userID, req.Msg.ExpenseID, in)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&ExpenseResponse{Expense: toExpense(res)}), nil
}

// DeleteExpense removes an expense and its splits.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ExpenseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("expense_id required"))
	}

	if err := s.engine.DeleteExpense(ctx, userID, req.Msg.ExpenseID); err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&DeleteExpenseResponse{}), nil
}

// actor returns the authenticated user of the request.
func actor(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}
	return userID, nil
}

// connectError maps the ledger error taxonomy to Connect codes.
func connectError(err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return connect.NewError(connect.CodeInvalidArgument, err)
	case apperr.KindAuthorization:
		return connect.NewError(connect.CodePermissionDenied, err)
	case apperr.KindNotFound:
		return connect.NewError(connect.CodeNotFound, err)
	case apperr.KindPersistence:
		return connect.NewError(connect.CodeInternal, err)
	default:
		slog.Error("Unclassified ledger error", "error", err)
		return connect.NewError(connect.CodeInternal, fmt.Errorf("internal error"))
	}
}
