package mocks

import "github.com/NomadCrew/crewtrip-backend/internal/store"

var (
	_ store.Transactor      = (*Transactor)(nil)
	_ store.UserStore       = (*UserStore)(nil)
	_ store.TripStore       = (*TripStore)(nil)
	_ store.MemberStore     = (*MemberStore)(nil)
	_ store.InvitationStore = (*InvitationStore)(nil)
	_ store.ExpenseStore    = (*ExpenseStore)(nil)
	_ store.SettlementStore = (*SettlementStore)(nil)
	_ store.ActivityStore   = (*ActivityStore)(nil)
	_ store.PollStore       = (*PollStore)(nil)
	_ store.ChatStore       = (*ChatStore)(nil)
	_ store.FlightStore     = (*FlightStore)(nil)
)
