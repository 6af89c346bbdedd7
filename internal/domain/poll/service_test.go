package poll

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollboard/internal/authz"
	"pollboard/internal/platform/apperr"
)

type memoryPollRepo struct {
	mu    sync.Mutex
	polls map[string]*Poll
	seq   int
}

func newMemoryPollRepo() *memoryPollRepo {
	return &memoryPollRepo{polls: make(map[string]*Poll)}
}

func (r *memoryPollRepo) Create(ctx context.Context, p *Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	p.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	p.UpdatedAt = p.CreatedAt
	copyPoll := *p
	copyPoll.Options = append([]string(nil), p.Options...)
	r.polls[p.ID] = &copyPoll
	return nil
}

func (r *memoryPollRepo) GetByID(ctx context.Context, id string) (*Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[id]
	if !ok {
		return nil, ErrNotFound
	}
	copyPoll := *p
	copyPoll.Options = append([]string(nil), p.Options...)
	return &copyPoll, nil
}

func (r *memoryPollRepo) ListByOwner(ctx context.Context, ownerID string) ([]Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := []Poll{}
	for _, p := range r.polls {
		if p.OwnerID == ownerID {
			res = append(res, *p)
		}
	}
	sortNewestFirst(res)
	return res, nil
}

func (r *memoryPollRepo) ListAll(ctx context.Context) ([]Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := []Poll{}
	for _, p := range r.polls {
		res = append(res, *p)
	}
	sortNewestFirst(res)
	return res, nil
}

func (r *memoryPollRepo) Update(ctx context.Context, id, question string, options []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[id]
	if !ok {
		return ErrNotFound
	}
	p.Question = question
	p.Options = append([]string(nil), options...)
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memoryPollRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.polls[id]; !ok {
		return ErrNotFound
	}
	delete(r.polls, id)
	return nil
}

func sortNewestFirst(polls []Poll) {
	sort.Slice(polls, func(i, j int) bool {
		return polls[i].CreatedAt.After(polls[j].CreatedAt)
	})
}

func newTestService(admins ...string) (*Service, *memoryPollRepo) {
	repo := newMemoryPollRepo()
	roles := authz.StaticStore{}
	for _, id := range admins {
		roles[id] = []authz.Role{authz.RoleAdmin}
	}
	return NewService(repo, authz.NewAuthorizer(roles)), repo
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "", []string{"a", "b"})
	assert.True(t, apperr.IsStatus(err, http.StatusBadRequest))

	_, err = svc.Create(ctx, "alice", "Question?", []string{"only one"})
	assert.True(t, apperr.IsStatus(err, http.StatusBadRequest))

	_, err = svc.Create(ctx, "alice", "Question?", []string{"a", "  "})
	assert.True(t, apperr.IsStatus(err, http.StatusBadRequest))
}

func TestCreateAndGetPreservesOwnerAndOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "Which fruit is best?", []string{"Apple", "Banana"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.OwnerID)
	assert.Equal(t, []string{"Apple", "Banana"}, got.Options)
}

func TestUpdateOwnerOnly(t *testing.T) {
	svc, repo := newTestService("admin")
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "Question?", []string{"a", "b"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, "bob", "Hijacked?", []string{"x", "y"})
	assert.True(t, apperr.IsStatus(err, http.StatusForbidden))

	// No admin override for edits either.
	_, err = svc.Update(ctx, created.ID, "admin", "Hijacked?", []string{"x", "y"})
	assert.True(t, apperr.IsStatus(err, http.StatusForbidden))

	unchanged, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Question?", unchanged.Question)

	updated, err := svc.Update(ctx, created.ID, "alice", "Better question?", []string{"x", "y", "z"})
	require.NoError(t, err)
	assert.Equal(t, "Better question?", updated.Question)
	assert.Equal(t, []string{"x", "y", "z"}, updated.Options)
	assert.Equal(t, "alice", updated.OwnerID)
}

func TestDeleteOwnerOrAdmin(t *testing.T) {
	svc, repo := newTestService("admin")
	ctx := context.Background()

	p1, err := svc.Create(ctx, "alice", "First?", []string{"a", "b"})
	require.NoError(t, err)
	p2, err := svc.Create(ctx, "alice", "Second?", []string{"a", "b"})
	require.NoError(t, err)

	err = svc.Delete(ctx, p1.ID, "bob")
	assert.True(t, apperr.IsStatus(err, http.StatusForbidden))
	_, err = repo.GetByID(ctx, p1.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p1.ID, "alice"))
	require.NoError(t, svc.Delete(ctx, p2.ID, "admin"))

	_, err = svc.Get(ctx, p2.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAndDeleteNotFound(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Update(ctx, "missing", "alice", "Question?", []string{"a", "b"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(ctx, "missing", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByOwnerNewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "Older?", []string{"a", "b"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "bob", "Someone else's?", []string{"a", "b"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", "Newer?", []string{"a", "b"})
	require.NoError(t, err)

	own, err := svc.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, "Newer?", own[0].Question)
	assert.Equal(t, "Older?", own[1].Question)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
