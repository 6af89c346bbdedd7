package worker

import (
	"context"
	"log/slog"
	"time"

	"pollboard/internal/retry"
)

type VoteEvent struct {
	PollID      string
	OptionIndex int
}

// Aggregator is the slice of the vote repository the worker needs.
type Aggregator interface {
	IncrementAggregated(ctx context.Context, pollID string, optionIndex int) error
}

// TallyWorker drains vote events and maintains the denormalized tally table.
// The handler enqueues without blocking; a dropped event only delays the
// aggregate, the authoritative counts live in the votes table.
type TallyWorker struct {
	ch   <-chan VoteEvent
	repo Aggregator
}

func NewTallyWorker(ch <-chan VoteEvent, repo Aggregator) *TallyWorker {
	return &TallyWorker{ch: ch, repo: repo}
}

func (w *TallyWorker) Run(ctx context.Context) {
	slog.Info("tally worker started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("tally worker stopped")
			return
		case ev := <-w.ch:
			err := retry.DoWithRetry(ctx, 3, 100*time.Millisecond, func() error {
				return w.repo.IncrementAggregated(ctx, ev.PollID, ev.OptionIndex)
			})
			if err != nil {
				slog.Error("tally aggregation failed",
					"poll_id", ev.PollID,
					"option_index", ev.OptionIndex,
					"error", err,
				)
			}
		}
	}
}
