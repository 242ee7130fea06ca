package service

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/types"
)

// FlagChanges lists the paid and settled flags that differ from what is
// stored.
type FlagChanges struct {
	Splits   []SplitFlag
	Expenses []ExpenseFlag
}

type SplitFlag struct {
	ExpenseID int64
	UserID    int64
	Paid      bool
}

type ExpenseFlag struct {
	ExpenseID int64
	Settled   bool
}

func (c FlagChanges) Empty() bool {
	return len(c.Splits) == 0 && len(c.Expenses) == 0
}

type debtPair struct {
	debtor, creditor int64
}

// ReconcileFlags works out which splits are paid and which expenses are
// settled. Confirmed payments from a debtor to the member who fronted an
// expense pay off that debtor's splits oldest first; a split is only marked
// once it is covered in full. When every position in the trip is settled all
// splits count as paid, whoever the money actually went through.
//
// Expenses must be ordered oldest first. A payer's own split is always paid.
func ReconcileFlags(in BalanceInput, balances *types.TripBalances) FlagChanges {
	tripSettled := true
	for _, b := range balances.Balances {
		if !b.NetBalance.IsSettled() {
			tripSettled = false
			break
		}
	}

	credit := map[debtPair]int64{}
	for _, s := range in.Settlements {
		if s.Status == types.SettlementStatusConfirmed {
			credit[debtPair{s.PayerID, s.PayeeID}] += s.Amount.Cents()
		}
	}
	exhausted := map[debtPair]bool{}

	var changes FlagChanges
	for _, exp := range in.Expenses {
		allPaid := true
		for _, sp := range exp.Splits {
			paid := sp.UserID == exp.PaidBy || tripSettled
			if !paid {
				pair := debtPair{sp.UserID, exp.PaidBy}
				cents := sp.Amount.Cents()
				if !exhausted[pair] && credit[pair] >= cents {
					credit[pair] -= cents
					paid = true
				} else {
					exhausted[pair] = true
				}
			}
			if paid != sp.IsPaid {
				changes.Splits = append(changes.Splits, SplitFlag{ExpenseID: exp.ID, UserID: sp.UserID, Paid: paid})
			}
			allPaid = allPaid && paid
		}
		if allPaid != exp.IsSettled {
			changes.Expenses = append(changes.Expenses, ExpenseFlag{ExpenseID: exp.ID, Settled: allPaid})
		}
	}
	return changes
}

// ReconcileSettled brings the stored paid and settled flags in line with the
// trip's confirmed settlements. Callers run it inside their transaction.
func (s *ExpenseService) ReconcileSettled(ctx context.Context, trip *types.Trip) error {
	in, err := s.loadLedger(ctx, trip)
	if err != nil {
		return err
	}
	changes := ReconcileFlags(*in, CalculateBalances(*in))
	if changes.Empty() {
		return nil
	}

	for _, sp := range changes.Splits {
		if err := s.expenses.SetSplitPaid(ctx, sp.ExpenseID, sp.UserID, sp.Paid); err != nil {
			return store.ToAppError(err, "Expense", sp.ExpenseID)
		}
	}
	for _, e := range changes.Expenses {
		if err := s.expenses.SetSettled(ctx, e.ExpenseID, e.Settled); err != nil {
			return store.ToAppError(err, "Expense", e.ExpenseID)
		}
	}
	logger.GetLogger().Infow("Expense flags reconciled",
		"tripId", trip.ID,
		"splits", len(changes.Splits),
		"expenses", len(changes.Expenses))
	return nil
}
