package user

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUserRepo struct {
	mu     sync.Mutex
	users  map[string]*User
	byMail map[string]string
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		users:  make(map[string]*User),
		byMail: make(map[string]string),
	}
}

func (r *memoryUserRepo) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copyUser := *u
	r.users[u.ID] = &copyUser
	r.byMail[u.Email] = u.ID
	return nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byMail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copyUser := *r.users[id]
	return &copyUser, nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copyUser := *u
	return &copyUser, nil
}

func TestSignUpAndSignIn(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "John@Example.com", "John", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "john@example.com", u.Email)
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.NotEmpty(t, u.PasswordHash)

	signedIn, err := svc.SignIn(ctx, "john@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, signedIn.ID)
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "john@example.com", "John", "s3cret")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "john@example.com", "Johnny", "another")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignUpRequiresCredentials(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "", "John", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SignUp(ctx, "john@example.com", "John", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSignInFailures(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "john@example.com", "John", "s3cret")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "john@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetByIDMapsNotFound(t *testing.T) {
	svc := NewService(newMemoryUserRepo())

	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
