package poll

import (
	"context"
	"time"
)

// Poll options are an ordered sequence; the option's index is the ballot
// choice, so order is preserved everywhere the slice travels.
type Poll struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Options   []string  `json:"options"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Repository interface {
	Create(ctx context.Context, p *Poll) error
	GetByID(ctx context.Context, id string) (*Poll, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Poll, error)
	ListAll(ctx context.Context) ([]Poll, error)
	Update(ctx context.Context, id, question string, options []string) error
	Delete(ctx context.Context, id string) error
}
