package vote

import (
	"context"
	"time"
)

type Ballot struct {
	ID          int64     `json:"id"`
	PollID      string    `json:"poll_id"`
	OptionIndex int       `json:"option_index"`
	VoterID     string    `json:"voter_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, b *Ballot) error
	CountByPoll(ctx context.Context, pollID string) (map[int]int64, int64, error)
	AggregatedByPoll(ctx context.Context, pollID string) (map[int]int64, int64, error)
	IncrementAggregated(ctx context.Context, pollID string, optionIndex int) error
}
