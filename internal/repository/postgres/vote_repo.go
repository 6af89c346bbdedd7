package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"pollboard/internal/domain/vote"
)

type VoteRepo struct {
	db *sql.DB
}

func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

// Create relies on the (poll_id, voter_id) unique constraint for
// de-duplication, so two simultaneous ballots cannot both land.
func (r *VoteRepo) Create(ctx context.Context, b *vote.Ballot) error {
	query := `
        INSERT INTO votes (poll_id, option_index, voter_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `
	err := r.db.QueryRowContext(ctx, query, b.PollID, b.OptionIndex, b.VoterID).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return vote.ErrAlreadyVoted
		}
		return err
	}
	return nil
}

func (r *VoteRepo) CountByPoll(ctx context.Context, pollID string) (map[int]int64, int64, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT option_index, COUNT(*)
        FROM votes
        WHERE poll_id = $1
        GROUP BY option_index
    `, pollID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return scanCounts(rows)
}

func (r *VoteRepo) AggregatedByPoll(ctx context.Context, pollID string) (map[int]int64, int64, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT option_index, votes_count
        FROM aggregated_tallies
        WHERE poll_id = $1
    `, pollID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return scanCounts(rows)
}

func (r *VoteRepo) IncrementAggregated(ctx context.Context, pollID string, optionIndex int) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO aggregated_tallies (poll_id, option_index, votes_count)
        VALUES ($1, $2, 1)
        ON CONFLICT (poll_id, option_index) DO UPDATE
        SET votes_count = aggregated_tallies.votes_count + 1,
            updated_at = now()
    `, pollID, optionIndex)
	return err
}

func scanCounts(rows *sql.Rows) (map[int]int64, int64, error) {
	res := make(map[int]int64)
	var total int64
	for rows.Next() {
		var idx int
		var c int64
		if err := rows.Scan(&idx, &c); err != nil {
			return nil, 0, err
		}
		res[idx] = c
		total += c
	}
	return res, total, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
