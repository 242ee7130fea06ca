package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/internal/events"
	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/logger"
	expenseservice "github.com/NomadCrew/crewtrip-backend/models/expense/service"
	"github.com/NomadCrew/crewtrip-backend/pkg/paymentlinks"
	"github.com/NomadCrew/crewtrip-backend/pkg/sanitize"
	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/prometheus/client_golang/prometheus"
)

const maxMemoLength = 140

// SettlementService lets a debtor pay a creditor outside the app and records
// the payment. The app never moves money; confirmation is attested by the
// payee or a trip admin.
type SettlementService struct {
	tx          store.Transactor
	trips       store.TripStore
	members     store.MemberStore
	users       store.UserStore
	settlements store.SettlementStore
	balances    expenseservice.BalanceSource
	gate        types.MemberGate
	events      types.EventPublisher
	metrics     *SettlementMetrics
	now         func() time.Time
}

var _ SettlementServiceInterface = (*SettlementService)(nil)

func NewSettlementService(
	tx store.Transactor,
	trips store.TripStore,
	members store.MemberStore,
	users store.UserStore,
	settlements store.SettlementStore,
	balances expenseservice.BalanceSource,
	gate types.MemberGate,
	eventPublisher types.EventPublisher,
) *SettlementService {
	return NewSettlementServiceWithRegistry(tx, trips, members, users, settlements, balances, gate, eventPublisher, prometheus.DefaultRegisterer)
}

func NewSettlementServiceWithRegistry(
	tx store.Transactor,
	trips store.TripStore,
	members store.MemberStore,
	users store.UserStore,
	settlements store.SettlementStore,
	balances expenseservice.BalanceSource,
	gate types.MemberGate,
	eventPublisher types.EventPublisher,
	reg prometheus.Registerer,
) *SettlementService {
	return &SettlementService{
		tx:          tx,
		trips:       trips,
		members:     members,
		users:       users,
		settlements: settlements,
		balances:    balances,
		gate:        gate,
		events:      eventPublisher,
		metrics:     newSettlementMetrics(reg),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// outstanding is the most payer can still send payee: the smaller of the
// payer's debt (less pending settlements) and the payee's credit.
func outstanding(b *types.TripBalances, pending []*types.Settlement, payerID, payeeID int64) (debt, limit int64) {
	if payer := b.Find(payerID); payer != nil {
		debt = -payer.NetBalance.Cents()
	}
	for _, s := range pending {
		if s.PayerID == payerID && s.Status == types.SettlementStatusPending {
			debt -= s.Amount.Cents()
		}
	}
	var credit int64
	if payee := b.Find(payeeID); payee != nil {
		credit = payee.NetBalance.Cents()
	}
	limit = min(debt, credit)
	if limit < 0 {
		limit = 0
	}
	return debt, limit
}

func centsToAmount(cents int64) valueobjects.Amount {
	return valueobjects.NewAmount(valueobjects.USDFromCents(cents).Amount())
}

// GetOptions reports how the caller can pay payeeID and how much is owed.
// Former members still resolve so old debts can be paid off.
func (s *SettlementService) GetOptions(ctx context.Context, tripID, payerID, payeeID int64) (*types.SettlementOptions, error) {
	mc, err := s.gate.RequireConfirmedMember(ctx, tripID, payerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.members.GetMember(ctx, tripID, payeeID); err != nil {
		return nil, store.ToAppError(err, "Member", payeeID)
	}
	payee, err := s.users.GetUserByID(ctx, payeeID)
	if err != nil {
		return nil, store.ToAppError(err, "User", payeeID)
	}
	balances, err := s.balances.ComputeBalances(ctx, mc.Trip)
	if err != nil {
		return nil, err
	}
	all, err := s.settlements.ListSettlements(ctx, tripID)
	if err != nil {
		return nil, store.ToAppError(err, "Settlement", tripID)
	}
	_, limit := outstanding(balances, all, payerID, payeeID)

	return &types.SettlementOptions{
		PayeeID:                   payeeID,
		PayeeName:                 payee.Name(),
		OutstandingAmount:         centsToAmount(limit),
		Methods:                   paymentlinks.AvailableMethods(payee),
		NoPaymentMethodsAvailable: !payee.HasPaymentHandle(),
	}, nil
}

// CreateSettlement records a pending payment from the caller to the payee.
// The trip row is locked so two concurrent settlements cannot both spend
// the same debt.
func (s *SettlementService) CreateSettlement(ctx context.Context, tripID, payerID int64, req *types.CreateSettlementRequest) (*types.Settlement, error) {
	mc, err := s.gate.RequireConfirmedMember(ctx, tripID, payerID)
	if err != nil {
		return nil, err
	}
	if req.PayeeID == payerID {
		return nil, apperrors.ValidationFailed("invalid payee", "you cannot settle with yourself")
	}
	if !req.Method.IsValid() {
		return nil, apperrors.ValidationFailed("invalid payment method", string(req.Method))
	}
	amount, err := valueobjects.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	memo := strings.TrimSpace(sanitize.Text(req.Memo))
	if memo == "" {
		memo = fmt.Sprintf("%s settlement", mc.Trip.Name)
	}
	if r := []rune(memo); len(r) > maxMemoLength {
		memo = string(r[:maxMemoLength])
	}

	payee, err := s.users.GetUserByID(ctx, req.PayeeID)
	if err != nil {
		return nil, store.ToAppError(err, "User", req.PayeeID)
	}
	link, err := paymentlinks.Build(req.Method, payee, amount, memo)
	if err != nil {
		if errors.Is(err, paymentlinks.ErrNoHandle) {
			s.metrics.rejected.WithLabelValues("no_handle").Inc()
			return nil, apperrors.NoPaymentMethods(string(req.Method))
		}
		return nil, apperrors.ValidationFailed("invalid payment method", err.Error())
	}

	settlement := &types.Settlement{
		TripID:      tripID,
		PayerID:     payerID,
		PayeeID:     req.PayeeID,
		Amount:      amount,
		Method:      req.Method,
		PaymentLink: link.AppURL,
		WebLink:     link.WebURL,
		Memo:        memo,
		Status:      types.SettlementStatusPending,
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		trip, err := s.trips.LockTrip(ctx, tripID)
		if err != nil {
			return err
		}
		balances, err := s.balances.ComputeBalances(ctx, trip)
		if err != nil {
			return err
		}
		existing, err := s.settlements.ListSettlements(ctx, tripID)
		if err != nil {
			return err
		}
		debt, limit := outstanding(balances, existing, payerID, req.PayeeID)
		if debt <= 0 || centsToAmount(debt).IsSettled() {
			s.metrics.rejected.WithLabelValues("no_balance").Inc()
			return apperrors.ValidationFailed("no outstanding balance", "you do not owe anything on this trip")
		}
		if amount.Cents() > limit {
			s.metrics.rejected.WithLabelValues("over_limit").Inc()
			return apperrors.ValidationFailed("amount exceeds outstanding balance",
				fmt.Sprintf("at most %s can be paid to this member", centsToAmount(limit)))
		}
		return s.settlements.CreateSettlement(ctx, settlement)
	})
	if err != nil {
		return nil, store.ToAppError(err, "Settlement", tripID)
	}

	s.metrics.transitions.WithLabelValues(string(types.SettlementStatusPending), string(settlement.Method)).Inc()
	logger.GetLogger().Infow("Settlement created",
		"tripId", tripID,
		"settlementId", settlement.ID,
		"payerId", payerID,
		"payeeId", req.PayeeID,
		"amount", amount.String(),
		"method", settlement.Method)
	events.Emit(ctx, s.events, types.EventTypeSettlementCreated, tripID, payerID, settlement)
	return settlement, nil
}

func (s *SettlementService) ListSettlements(ctx context.Context, tripID, userID int64) ([]*types.Settlement, error) {
	if _, err := s.gate.RequireConfirmedMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	list, err := s.settlements.ListSettlements(ctx, tripID)
	if err != nil {
		return nil, store.ToAppError(err, "Settlement", tripID)
	}
	return list, nil
}

// ConfirmSettlement marks the payment as received. Only the payee or a trip
// admin can confirm; terminal settlements are never reopened.
func (s *SettlementService) ConfirmSettlement(ctx context.Context, tripID, actorID, settlementID int64) (*types.Settlement, error) {
	mc, err := s.gate.RequireMember(ctx, tripID, actorID)
	if err != nil {
		return nil, err
	}
	settlement, err := s.transition(ctx, tripID, settlementID, func(st *types.Settlement) error {
		if st.PayeeID != actorID && !mc.IsAdmin() {
			return apperrors.Forbidden("Only the payee or a trip admin can confirm this settlement", "")
		}
		now := s.now()
		st.Status = types.SettlementStatusConfirmed
		st.ConfirmedAt = &now
		st.ConfirmedBy = &actorID
		return nil
	}, func(ctx context.Context) error {
		return s.balances.ReconcileSettled(ctx, mc.Trip)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.amountCents.WithLabelValues(string(settlement.Method)).Add(float64(settlement.Amount.Cents()))
	events.Emit(ctx, s.events, types.EventTypeSettlementConfirmed, tripID, actorID, settlement)
	return settlement, nil
}

// CancelSettlement aborts a pending settlement. Either party may cancel.
func (s *SettlementService) CancelSettlement(ctx context.Context, tripID, actorID, settlementID int64) (*types.Settlement, error) {
	if _, err := s.gate.RequireMember(ctx, tripID, actorID); err != nil {
		return nil, err
	}
	settlement, err := s.transition(ctx, tripID, settlementID, func(st *types.Settlement) error {
		if st.PayerID != actorID && st.PayeeID != actorID {
			return apperrors.Forbidden("Only the payer or payee can cancel this settlement", "")
		}
		now := s.now()
		st.Status = types.SettlementStatusCancelled
		st.CancelledAt = &now
		st.CancelledBy = &actorID
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.events, types.EventTypeSettlementCancelled, tripID, actorID, settlement)
	return settlement, nil
}

// transition locks the settlement, lets apply move it out of pending and
// persists the result. afterUpdate, when set, runs in the same transaction.
func (s *SettlementService) transition(
	ctx context.Context,
	tripID, settlementID int64,
	apply func(*types.Settlement) error,
	afterUpdate func(ctx context.Context) error,
) (*types.Settlement, error) {
	var updated *types.Settlement
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		st, err := s.settlements.LockSettlement(ctx, settlementID)
		if err != nil {
			return err
		}
		if st.TripID != tripID {
			return apperrors.NotFound("Settlement", settlementID)
		}
		if st.Status.IsTerminal() {
			return apperrors.NewConflictError("Settlement already closed", fmt.Sprintf("settlement is %s", st.Status))
		}
		if err := apply(st); err != nil {
			return err
		}
		if err := s.settlements.UpdateSettlementStatus(ctx, st); err != nil {
			return err
		}
		if afterUpdate != nil {
			if err := afterUpdate(ctx); err != nil {
				return err
			}
		}
		updated = st
		return nil
	})
	if err != nil {
		return nil, store.ToAppError(err, "Settlement", settlementID)
	}

	s.metrics.transitions.WithLabelValues(string(updated.Status), string(updated.Method)).Inc()
	logger.GetLogger().Infow("Settlement closed",
		"tripId", tripID,
		"settlementId", settlementID,
		"status", updated.Status)
	return updated, nil
}
