package poll

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"pollboard/internal/authz"
	"pollboard/internal/platform/apperr"
)

var (
	ErrNotFound = errors.New("poll not found")
)

type Service struct {
	repo Repository
	az   *authz.Authorizer
}

func NewService(repo Repository, az *authz.Authorizer) *Service {
	return &Service{repo: repo, az: az}
}

func (s *Service) Create(ctx context.Context, ownerID, question string, options []string) (*Poll, error) {
	question, options, err := validateBallot(question, options)
	if err != nil {
		return nil, err
	}

	p := &Poll{
		ID:       uuid.NewString(),
		Question: question,
		Options:  options,
		OwnerID:  ownerID,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Poll, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Poll, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListAll(ctx context.Context) ([]Poll, error) {
	return s.repo.ListAll(ctx)
}

// Update is owner-only; there is no admin override for edits.
func (s *Service) Update(ctx context.Context, id, callerID, question string, options []string) (*Poll, error) {
	question, options, err := validateBallot(question, options)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != callerID {
		return nil, apperr.Forbidden("forbidden", "only the poll owner can edit it", nil)
	}

	if err := s.repo.Update(ctx, id, question, options); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete is allowed for the poll owner or an admin. The admin check runs
// against the role store for the caller resolved by the session gate, never
// against anything client-supplied.
func (s *Service) Delete(ctx context.Context, id, callerID string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if p.OwnerID != callerID {
		isAdmin, err := s.az.IsAdmin(ctx, callerID)
		if err != nil {
			return err
		}
		if !isAdmin {
			return apperr.Forbidden("forbidden", "only the poll owner or an admin can delete it", nil)
		}
	}

	return s.repo.Delete(ctx, id)
}

func validateBallot(question string, options []string) (string, []string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", nil, apperr.BadRequest("invalid_input", "question is required", nil)
	}

	cleaned := make([]string, 0, len(options))
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return "", nil, apperr.BadRequest("invalid_input", "options must be non-empty", nil)
		}
		cleaned = append(cleaned, opt)
	}
	if len(cleaned) < 2 {
		return "", nil, apperr.BadRequest("invalid_input", "poll must have at least 2 options", nil)
	}

	return question, cleaned, nil
}
