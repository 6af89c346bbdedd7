package vote

import (
	"context"
	"errors"
	"sync"
	"time"

	"pollboard/internal/domain/poll"
	"pollboard/internal/platform/apperr"
)

var (
	ErrAlreadyVoted = errors.New("voter already voted in this poll")
)

// PollGetter is the slice of the poll repository the vote service needs to
// validate the ballot against the live poll row.
type PollGetter interface {
	GetByID(ctx context.Context, id string) (*poll.Poll, error)
}

type Service struct {
	repo  Repository
	polls PollGetter

	mu       sync.Mutex
	cache    map[string]cachedTally
	cacheTTL time.Duration
}

type cachedTally struct {
	results []Result
	total   int64
	expires time.Time
}

func NewService(repo Repository, polls PollGetter) *Service {
	return &Service{
		repo:     repo,
		polls:    polls,
		cache:    make(map[string]cachedTally),
		cacheTTL: 5 * time.Second,
	}
}

// Cast records one ballot. The option index is validated against the poll
// fetched server-side; a second ballot for the same (poll, voter) is
// rejected rather than overwritten.
func (s *Service) Cast(ctx context.Context, pollID string, optionIndex int, voterID string) error {
	p, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		return err
	}

	if optionIndex < 0 || optionIndex >= len(p.Options) {
		return apperr.BadRequest("invalid_option", "option index out of range", nil)
	}

	b := &Ballot{
		PollID:      pollID,
		OptionIndex: optionIndex,
		VoterID:     voterID,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return err
	}

	s.invalidate(pollID)
	return nil
}

type Result struct {
	OptionIndex int     `json:"option_index"`
	Label       string  `json:"label"`
	Votes       int64   `json:"votes"`
	Percentage  float64 `json:"percentage"`
}

// Results returns per-option tallies in ballot order, zero-filled for
// options nobody picked. Counts are served from a short-lived cache to keep
// hot polls from hammering the store.
func (s *Service) Results(ctx context.Context, pollID string) ([]Result, int64, error) {
	if res, total, ok := s.cached(pollID); ok {
		return res, total, nil
	}

	p, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		return nil, 0, err
	}

	counts, total, err := s.repo.CountByPoll(ctx, pollID)
	if err != nil {
		return nil, 0, err
	}

	results := make([]Result, len(p.Options))
	for i, label := range p.Options {
		c := counts[i]
		var pct float64
		if total > 0 {
			pct = float64(c) * 100.0 / float64(total)
		}
		results[i] = Result{
			OptionIndex: i,
			Label:       label,
			Votes:       c,
			Percentage:  pct,
		}
	}

	s.store(pollID, results, total)
	return results, total, nil
}

func (s *Service) cached(pollID string) ([]Result, int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[pollID]
	if !ok || time.Now().After(entry.expires) {
		return nil, 0, false
	}
	return entry.results, entry.total, true
}

func (s *Service) store(pollID string, results []Result, total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[pollID] = cachedTally{
		results: results,
		total:   total,
		expires: time.Now().Add(s.cacheTTL),
	}
}

func (s *Service) invalidate(pollID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, pollID)
}
