package service

import (
	"context"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/tripledger/internal/ledger"
	"github.com/mmynk/tripledger/internal/models"
)

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	engine *ledger.Engine
}

// NewSettlementService creates a new SettlementService backed by engine.
func NewSettlementService(engine *ledger.Engine) *SettlementService {
	return &SettlementService{engine: engine}
}

// MarkSplitSettled marks one split as paid back.
func (s *SettlementService) MarkSplitSettled(ctx context.Context, req *connect.Request[MarkSplitRequest]) (*connect.Response[SplitResponse], error) {
	return s.mark(ctx, req.Msg.SplitID, s.engine.MarkSettled)
}

// MarkSplitUnsettled reverts one split to unsettled.
func (s *SettlementService) MarkSplitUnsettled(ctx context.Context, req *connect.Request[MarkSplitRequest]) (*connect.Response[SplitResponse], error) {
	return s.mark(ctx, req.Msg.SplitID, s.engine.MarkUnsettled)
}

func (s *SettlementService) mark(
	ctx context.Context,
	splitID string,
	op func(ctx context.Context, actorID, splitID string) (*models.ExpenseSplit, error),
) (*connect.Response[SplitResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if splitID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("split_id required"))
	}

	split, err := op(ctx, userID, splitID)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&SplitResponse{Split: toSplit(split)}), nil
}

// GetTripBalances computes the balance sheet of a trip.
func (s *SettlementService) GetTripBalances(ctx context.Context, req *connect.Request[GetTripBalancesRequest]) (*connect.Response[GetTripBalancesResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.TripID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("trip_id required"))
	}

	sheet, err := s.engine.ComputeBalances(ctx, userID, req.Msg.TripID)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(toBalances(sheet)), nil
}
