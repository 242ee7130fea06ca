package service

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
)

// SettlementServiceInterface is consumed by the settlement handlers.
type SettlementServiceInterface interface {
	GetOptions(ctx context.Context, tripID, payerID, payeeID int64) (*types.SettlementOptions, error)
	CreateSettlement(ctx context.Context, tripID, payerID int64, req *types.CreateSettlementRequest) (*types.Settlement, error)
	ListSettlements(ctx context.Context, tripID, userID int64) ([]*types.Settlement, error)
	ConfirmSettlement(ctx context.Context, tripID, actorID, settlementID int64) (*types.Settlement, error)
	CancelSettlement(ctx context.Context, tripID, actorID, settlementID int64) (*types.Settlement, error)
}
