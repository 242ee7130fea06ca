package service

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
)

// BuildSplits divides amount according to req. Every participant must be a
// confirmed member of trip. Equal splits hand the leftover cents to the
// first participants; custom splits must add up to amount exactly.
func BuildSplits(trip *types.Trip, req *types.CreateExpenseRequest, amount valueobjects.Amount, members []*types.TripMember) ([]types.ExpenseSplit, error) {
	confirmed := make(map[int64]bool, len(members))
	for _, m := range members {
		if types.IsConfirmedMember(trip, m) {
			confirmed[m.UserID] = true
		}
	}

	mode := req.SplitMode
	if mode == "" {
		mode = types.SplitModeEqual
		if len(req.Splits) > 0 {
			mode = types.SplitModeCustom
		}
	}

	switch mode {
	case types.SplitModeEqual:
		return equalSplits(req.Participants, amount, confirmed)
	case types.SplitModeCustom:
		return customSplits(req.Splits, amount, confirmed)
	}
	return nil, apperrors.ValidationFailed("invalid split mode", string(mode))
}

func equalSplits(participants []int64, amount valueobjects.Amount, confirmed map[int64]bool) ([]types.ExpenseSplit, error) {
	ids := make([]int64, 0, len(participants))
	seen := make(map[int64]bool, len(participants))
	for _, id := range participants {
		if seen[id] {
			continue
		}
		if !confirmed[id] {
			return nil, notParticipant(id)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(participants) == 0 {
		for id := range confirmed {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	if len(ids) == 0 {
		return nil, apperrors.ValidationFailed("no participants", "split the expense between at least one confirmed member")
	}

	parts, err := valueobjects.USDFromCents(amount.Cents()).Split(len(ids))
	if err != nil {
		return nil, err
	}
	splits := make([]types.ExpenseSplit, len(ids))
	for i, id := range ids {
		splits[i] = types.ExpenseSplit{UserID: id, Amount: valueobjects.NewAmount(parts[i].Amount())}
	}
	return splits, nil
}

func customSplits(inputs []types.SplitInput, amount valueobjects.Amount, confirmed map[int64]bool) ([]types.ExpenseSplit, error) {
	if len(inputs) == 0 {
		return nil, apperrors.ValidationFailed("no splits", "custom splits need at least one share")
	}

	var problems []string
	seen := make(map[int64]bool, len(inputs))
	splits := make([]types.ExpenseSplit, 0, len(inputs))
	var sum int64
	for _, in := range inputs {
		if seen[in.UserID] {
			problems = append(problems, fmt.Sprintf("user %d appears more than once", in.UserID))
			continue
		}
		seen[in.UserID] = true
		if !confirmed[in.UserID] {
			problems = append(problems, fmt.Sprintf("user %d is not a confirmed member of this trip", in.UserID))
			continue
		}
		share, err := valueobjects.ParseAmount(in.Amount)
		if err != nil {
			problems = append(problems, fmt.Sprintf("share for user %d must be a positive amount with at most 2 decimals", in.UserID))
			continue
		}
		sum += share.Cents()
		splits = append(splits, types.ExpenseSplit{UserID: in.UserID, Amount: share})
	}
	if len(problems) > 0 {
		return nil, apperrors.ValidationFailed("Invalid expense splits", strings.Join(problems, "; "))
	}
	if sum != amount.Cents() {
		return nil, apperrors.ValidationFailed("split amounts do not add up",
			fmt.Sprintf("splits total %s but the expense is %s", centsToAmount(sum), amount))
	}
	return splits, nil
}

func notParticipant(userID int64) error {
	return apperrors.ValidationFailed("invalid participant", fmt.Sprintf("user %d is not a confirmed member of this trip", userID))
}
