package store

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
)

// Transactor runs fn inside a database transaction carried by the context.
// Stores called with that context join the transaction; nested calls reuse it.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserStore handles user-related data operations
type UserStore interface {
	// EnsureUser upserts the user identified by the token subject.
	EnsureUser(ctx context.Context, identity types.AuthIdentity) (*types.User, error)
	GetUserByID(ctx context.Context, id int64) (*types.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*types.User, error)
	// FindByUsernames matches case-insensitively; keys are lower-cased.
	FindByUsernames(ctx context.Context, usernames []string) (map[string]*types.User, error)
	UpdateProfile(ctx context.Context, id int64, update types.UserProfileUpdate) (*types.User, error)
	MarkLegacyRemoved(ctx context.Context, id int64) error
}

// TripStore handles trip-related data operations
type TripStore interface {
	CreateTrip(ctx context.Context, trip *types.Trip) error
	GetTrip(ctx context.Context, id int64) (*types.Trip, error)
	// LockTrip reads the trip with SELECT ... FOR UPDATE; it must run inside a transaction.
	LockTrip(ctx context.Context, id int64) (*types.Trip, error)
	UpdateTrip(ctx context.Context, id int64, update types.TripUpdate) (*types.Trip, error)
	SetBackgroundImage(ctx context.Context, id int64, url string) error
	ArchiveTrip(ctx context.Context, id int64) error
	ListTripsForUser(ctx context.Context, userID int64) ([]*types.TripWithMembership, error)
}

// MemberStore handles trip_members rows. Reads return removed rows too so
// callers can tell a former member from a stranger.
type MemberStore interface {
	GetMember(ctx context.Context, tripID, userID int64) (*types.TripMember, error)
	ListMembers(ctx context.Context, tripID int64, includeRemoved bool) ([]*types.TripMember, error)
	// AddMember inserts the row, or reactivates a removed one with fresh state.
	AddMember(ctx context.Context, member *types.TripMember) error
	UpdateMember(ctx context.Context, member *types.TripMember) error
	RemoveMember(ctx context.Context, tripID, userID int64) error
	// CountAdmins counts active members that are admins or the organizer.
	CountAdmins(ctx context.Context, tripID int64) (int, error)
}

type InvitationStore interface {
	CreateLink(ctx context.Context, link *types.InvitationLink) error
	GetLinkByToken(ctx context.Context, token string) (*types.InvitationLink, error)
	ListLinks(ctx context.Context, tripID int64) ([]*types.InvitationLink, error)
	RevokeLink(ctx context.Context, tripID, linkID int64) error
}

type ExpenseStore interface {
	// CreateExpense inserts the expense and its splits.
	CreateExpense(ctx context.Context, expense *types.Expense) error
	GetExpense(ctx context.Context, id int64) (*types.Expense, error)
	GetExpenseByActivity(ctx context.Context, activityID int64) (*types.Expense, error)
	ListExpenses(ctx context.Context, tripID int64) ([]*types.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	SetSettled(ctx context.Context, id int64, settled bool) error
	SetSplitPaid(ctx context.Context, expenseID, userID int64, paid bool) error
	// UpsertSplit adds or replaces userID's share and recomputes the expense total.
	UpsertSplit(ctx context.Context, expenseID, userID int64, amount valueobjects.Amount) error
	// RemoveSplit drops userID's share and recomputes the expense total.
	RemoveSplit(ctx context.Context, expenseID, userID int64) error
}

type SettlementStore interface {
	CreateSettlement(ctx context.Context, s *types.Settlement) error
	GetSettlement(ctx context.Context, id int64) (*types.Settlement, error)
	// LockSettlement reads with SELECT ... FOR UPDATE inside a transaction.
	LockSettlement(ctx context.Context, id int64) (*types.Settlement, error)
	ListSettlements(ctx context.Context, tripID int64) ([]*types.Settlement, error)
	UpdateSettlementStatus(ctx context.Context, s *types.Settlement) error
}

type ActivityStore interface {
	CreateActivity(ctx context.Context, a *types.Activity) error
	GetActivity(ctx context.Context, id int64) (*types.Activity, error)
	LockActivity(ctx context.Context, id int64) (*types.Activity, error)
	ListActivities(ctx context.Context, tripID int64) ([]*types.Activity, error)
	DeleteActivity(ctx context.Context, id int64) error
	GetRSVP(ctx context.Context, activityID, userID int64) (*types.ActivityRSVP, error)
	UpsertRSVP(ctx context.Context, rsvp *types.ActivityRSVP) error
	ListRSVPs(ctx context.Context, activityID int64) ([]*types.ActivityRSVP, error)
}

type PollStore interface {
	CreatePoll(ctx context.Context, poll *types.Poll) error
	GetPoll(ctx context.Context, id, viewerID int64) (*types.Poll, error)
	ListPolls(ctx context.Context, tripID, viewerID int64) ([]*types.Poll, error)
	// Vote records or changes viewer's choice.
	Vote(ctx context.Context, pollID, optionID, userID int64) error
	ClosePoll(ctx context.Context, id int64) error
}

type ChatStore interface {
	CreateMessage(ctx context.Context, msg *types.ChatMessage) error
	// ListMessages returns up to limit messages older than before (if set), newest first.
	ListMessages(ctx context.Context, tripID int64, before *int64, limit int) ([]*types.ChatMessage, error)
	DeleteMessage(ctx context.Context, tripID, messageID int64) error
	GetMessage(ctx context.Context, tripID, messageID int64) (*types.ChatMessage, error)
}

type FlightStore interface {
	UpsertFlight(ctx context.Context, f *types.FlightInfo) error
	ListFlights(ctx context.Context, tripID int64) ([]*types.FlightInfo, error)
	DeleteFlight(ctx context.Context, tripID, userID int64, direction types.FlightDirection) error
}
