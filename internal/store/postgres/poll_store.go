package postgres

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/types"
)

var _ store.PollStore = (*PollStore)(nil)

type PollStore struct {
	base
}

func NewPollStore(pool Pool) *PollStore {
	return &PollStore{base{pool: pool}}
}

// CreatePoll inserts the poll and its options; run it inside a transaction.
func (s *PollStore) CreatePoll(ctx context.Context, p *types.Poll) error {
	db := s.db(ctx)
	err := db.QueryRow(ctx, `
		INSERT INTO polls (trip_id, question, created_by, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		p.TripID, p.Question, p.CreatedBy, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return mapError("create poll", err)
	}

	for i := range p.Options {
		opt := &p.Options[i]
		opt.PollID = p.ID
		opt.Position = i
		if err := db.QueryRow(ctx, `
			INSERT INTO poll_options (poll_id, text, position)
			VALUES ($1, $2, $3)
			RETURNING id`, opt.PollID, opt.Text, opt.Position,
		).Scan(&opt.ID); err != nil {
			return mapError("create poll option", err)
		}
	}
	return nil
}

const pollColumns = `p.id, p.trip_id, p.question, p.status, p.created_by, p.created_at, p.closed_at,
	(SELECT v.option_id FROM poll_votes v WHERE v.poll_id = p.id AND v.user_id = $2) AS my_vote`

func (s *PollStore) GetPoll(ctx context.Context, id, viewerID int64) (*types.Poll, error) {
	p := &types.Poll{}
	err := s.db(ctx).QueryRow(ctx, `SELECT `+pollColumns+` FROM polls p WHERE p.id = $1`, id, viewerID).
		Scan(&p.ID, &p.TripID, &p.Question, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.ClosedAt, &p.MyVote)
	if err != nil {
		return nil, mapError("get poll", err)
	}
	if err := s.attachOptions(ctx, []*types.Poll{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PollStore) ListPolls(ctx context.Context, tripID, viewerID int64) ([]*types.Poll, error) {
	rows, err := s.db(ctx).Query(ctx,
		`SELECT `+pollColumns+` FROM polls p WHERE p.trip_id = $1 ORDER BY p.created_at DESC, p.id DESC`,
		tripID, viewerID)
	if err != nil {
		return nil, mapError("list polls", err)
	}
	defer rows.Close()

	var out []*types.Poll
	for rows.Next() {
		p := &types.Poll{}
		if err := rows.Scan(&p.ID, &p.TripID, &p.Question, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.ClosedAt, &p.MyVote); err != nil {
			return nil, mapError("scan poll", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate polls", err)
	}
	if err := s.attachOptions(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PollStore) attachOptions(ctx context.Context, polls []*types.Poll) error {
	if len(polls) == 0 {
		return nil
	}
	ids := make([]int64, len(polls))
	byID := make(map[int64]*types.Poll, len(polls))
	for i, p := range polls {
		ids[i] = p.ID
		byID[p.ID] = p
		p.Options = []types.PollOption{}
	}

	rows, err := s.db(ctx).Query(ctx, `
		SELECT o.id, o.poll_id, o.text, o.position,
			(SELECT COUNT(*) FROM poll_votes v WHERE v.option_id = o.id) AS votes
		FROM poll_options o
		WHERE o.poll_id = ANY($1)
		ORDER BY o.poll_id, o.position`, ids)
	if err != nil {
		return mapError("list poll options", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o types.PollOption
		if err := rows.Scan(&o.ID, &o.PollID, &o.Text, &o.Position, &o.Votes); err != nil {
			return mapError("scan poll option", err)
		}
		if p, ok := byID[o.PollID]; ok {
			p.Options = append(p.Options, o)
		}
	}
	return mapError("iterate poll options", rows.Err())
}

// Vote fails with ErrNotFound when optionID does not belong to pollID.
func (s *PollStore) Vote(ctx context.Context, pollID, optionID, userID int64) error {
	tag, err := s.db(ctx).Exec(ctx, `
		INSERT INTO poll_votes (poll_id, user_id, option_id)
		SELECT $1, $3, o.id FROM poll_options o WHERE o.id = $2 AND o.poll_id = $1
		ON CONFLICT (poll_id, user_id) DO UPDATE
		SET option_id = EXCLUDED.option_id, created_at = NOW()`,
		pollID, optionID, userID)
	if err != nil {
		return mapError("vote", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *PollStore) ClosePoll(ctx context.Context, id int64) error {
	tag, err := s.db(ctx).Exec(ctx,
		`UPDATE polls SET status = 'closed', closed_at = NOW() WHERE id = $1 AND status = 'open'`, id)
	if err != nil {
		return mapError("close poll", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrConflict
	}
	return nil
}
