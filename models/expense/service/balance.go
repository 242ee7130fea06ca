package service

import (
	"sort"

	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
)

const settledCents = valueobjects.SettledCents

// BalanceInput is everything the calculator reads. Members must include
// removed rows so former members can still be named.
type BalanceInput struct {
	Trip        *types.Trip
	Members     []*types.TripMember
	Users       map[int64]*types.User
	Expenses    []*types.Expense
	Settlements []*types.Settlement
}

type ledgerEntry struct {
	paid, owed, settledOut, settledIn int64
}

func (e *ledgerEntry) net() int64 {
	return e.paid - e.owed + e.settledOut - e.settledIn
}

// CalculateBalances derives every member's position from stored rows. All
// sums run in integer cents. Only confirmed settlements count.
//
// A confirmed member always shows up, at zero if untouched. Anyone else with
// ledger activity shows up while still a member; after leaving they stay
// only while their net is non-zero, flagged IsLegacyRemoved.
func CalculateBalances(in BalanceInput) *types.TripBalances {
	ledger := make(map[int64]*ledgerEntry)
	entry := func(userID int64) *ledgerEntry {
		e, ok := ledger[userID]
		if !ok {
			e = &ledgerEntry{}
			ledger[userID] = e
		}
		return e
	}

	var totalCents int64
	for _, exp := range in.Expenses {
		cents := exp.Amount.Cents()
		totalCents += cents
		entry(exp.PaidBy).paid += cents
		for _, split := range exp.Splits {
			entry(split.UserID).owed += split.Amount.Cents()
		}
	}
	for _, s := range in.Settlements {
		if s.Status != types.SettlementStatusConfirmed {
			continue
		}
		cents := s.Amount.Cents()
		entry(s.PayerID).settledOut += cents
		entry(s.PayeeID).settledIn += cents
	}

	members := make(map[int64]*types.TripMember, len(in.Members))
	confirmed := 0
	for _, m := range in.Members {
		members[m.UserID] = m
		if types.IsConfirmedMember(in.Trip, m) {
			confirmed++
			if _, ok := ledger[m.UserID]; !ok {
				ledger[m.UserID] = &ledgerEntry{}
			}
		}
	}

	balances := make([]types.MemberBalance, 0, len(ledger))
	for userID, e := range ledger {
		member := members[userID]
		user := in.Users[userID]
		current := member.IsActive() && member.RSVPStatus != types.RSVPStatusDeclined
		if !current && e.net() == 0 {
			continue
		}
		balances = append(balances, types.MemberBalance{
			UserID:              userID,
			Name:                displayName(userID, user, member),
			TotalPaid:           centsToAmount(e.paid),
			TotalOwed:           centsToAmount(e.owed),
			SettlementsPaid:     centsToAmount(e.settledOut),
			SettlementsReceived: centsToAmount(e.settledIn),
			NetBalance:          centsToAmount(e.net()),
			IsCurrentMember:     current,
			IsLegacyRemoved:     !current || (user != nil && user.IsLegacyRemoved),
		})
	}

	sort.Slice(balances, func(i, j int) bool {
		ni, nj := balances[i].NetBalance.Cents(), balances[j].NetBalance.Cents()
		if ni != nj {
			return ni > nj
		}
		return balances[i].UserID < balances[j].UserID
	})

	var tripID int64
	if in.Trip != nil {
		tripID = in.Trip.ID
	}
	total := valueobjects.USDFromCents(totalCents)
	return &types.TripBalances{
		TripID:               tripID,
		Currency:             string(valueobjects.DefaultCurrency),
		TotalSpent:           centsToAmount(totalCents),
		ConfirmedMemberCount: confirmed,
		PerPersonCost:        valueobjects.NewAmount(total.DivideSafe(confirmed).Amount()),
		Balances:             balances,
		Suggestions:          SuggestTransfers(balances),
	}
}

type position struct {
	userID int64
	cents  int64
}

// SuggestTransfers pairs the largest debtor with the largest creditor until
// every position is within a cent of zero.
func SuggestTransfers(balances []types.MemberBalance) []types.SuggestedTransfer {
	var creditors, debtors []position
	for _, b := range balances {
		cents := b.NetBalance.Cents()
		switch {
		case cents > settledCents:
			creditors = append(creditors, position{b.UserID, cents})
		case cents < -settledCents:
			debtors = append(debtors, position{b.UserID, -cents})
		}
	}
	byAmount := func(p []position) {
		sort.Slice(p, func(i, j int) bool {
			if p[i].cents != p[j].cents {
				return p[i].cents > p[j].cents
			}
			return p[i].userID < p[j].userID
		})
	}
	byAmount(creditors)
	byAmount(debtors)

	transfers := []types.SuggestedTransfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := min(debtors[i].cents, creditors[j].cents)
		if amount > settledCents {
			transfers = append(transfers, types.SuggestedTransfer{
				FromUserID: debtors[i].userID,
				ToUserID:   creditors[j].userID,
				Amount:     centsToAmount(amount),
			})
		}
		debtors[i].cents -= amount
		creditors[j].cents -= amount
		if debtors[i].cents <= settledCents {
			i++
		}
		if creditors[j].cents <= settledCents {
			j++
		}
	}
	return transfers
}

func centsToAmount(cents int64) valueobjects.Amount {
	return valueobjects.NewAmount(valueobjects.USDFromCents(cents).Amount())
}

func displayName(userID int64, user *types.User, member *types.TripMember) string {
	if user != nil {
		return user.Name()
	}
	if member != nil {
		if member.DisplayName != "" {
			return member.DisplayName
		}
		if member.Username != "" {
			return member.Username
		}
	}
	return (&types.User{ID: userID}).Name()
}
