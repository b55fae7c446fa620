package account_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/larder/internal/account"
	"github.com/kode4food/larder/internal/mail"
	"github.com/kode4food/larder/internal/store"
	"github.com/kode4food/larder/internal/tokens"
	"github.com/kode4food/larder/pkg/api"
)

type (
	memUsers struct {
		byID map[api.UserID]*api.User
		mu   sync.Mutex
	}

	testEnv struct {
		Service *account.Service
		Users   *memUsers
		Outbox  *mail.Outbox
		Redis   *miniredis.Miniredis
	}
)

const baseURL = "https://larder.example.com/"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client, err := tokens.Connect(context.Background(),
		&redis.Options{Addr: server.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	users := &memUsers{byID: map[api.UserID]*api.User{}}
	outbox := &mail.Outbox{}
	return &testEnv{
		Service: account.NewService(
			users, tokens.NewStore(client, "test"), outbox, baseURL,
		),
		Users:  users,
		Outbox: outbox,
		Redis:  server,
	}
}

func (e *testEnv) createUser(t *testing.T, name, password string) *api.User {
	t.Helper()
	u, err := e.Service.CreateUser(context.Background(), &account.NewUser{
		Username: name,
		Email:    name + "@example.com",
		Password: password,
	})
	require.NoError(t, err)
	return u
}

func tokenFromLink(t *testing.T, body, path string) string {
	t.Helper()
	_, token, ok := strings.Cut(body, path)
	require.True(t, ok, body)
	return token
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "anna", "Secret99")

	assert.NotEmpty(t, u.ID)
	assert.Len(t, u.Token, 64)
	assert.True(t, u.EmailConfirmed)
	assert.False(t, u.IsAdmin)
	assert.True(t, account.VerifyPassword(u.PasswordHash, "Secret99"))

	_, err := env.Service.CreateUser(context.Background(), &account.NewUser{
		Username: "bad name", Email: "x@example.com", Password: "pw",
	})
	assert.ErrorIs(t, err, api.ErrUsernameInvalid)

	_, err = env.Service.CreateUser(context.Background(), &account.NewUser{
		Username: "bob", Email: "not-an-email", Password: "pw",
	})
	assert.ErrorIs(t, err, api.ErrEmailInvalid)

	_, err = env.Service.CreateUser(context.Background(), &account.NewUser{
		Username: "anna", Email: "other@example.com", Password: "pw",
	})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "anna", "Secret99")

	err := env.Service.ChangePassword(ctx, u, "wrong", "NewPass1", "NewPass1")
	assert.ErrorIs(t, err, account.ErrWrongPassword)

	err = env.Service.ChangePassword(ctx, u, "Secret99", "NewPass1", "NewPass2")
	assert.ErrorIs(t, err, account.ErrPasswordsDoNotMatch)

	err = env.Service.ChangePassword(ctx, u, "Secret99", "abc", "abc")
	assert.ErrorIs(t, err, account.ErrPasswordTooWeak)

	err = env.Service.ChangePassword(ctx, u, "Secret99", "NewPass1", "NewPass1")
	require.NoError(t, err)
	stored, err := env.Users.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, account.VerifyPassword(stored.PasswordHash, "NewPass1"))
}

func TestPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "anna", "Secret99")

	err := env.Service.RequestReset(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, account.ErrUnknownEmail)
	assert.Empty(t, env.Outbox.Messages())

	require.NoError(t, env.Service.RequestReset(ctx, "Anna@Example.com"))
	msg, ok := env.Outbox.Last()
	require.True(t, ok)
	assert.Equal(t, "anna@example.com", msg.To)
	assert.Equal(t, "Reset your password on Larder", msg.Subject)
	assert.Contains(t, msg.Body,
		"https://larder.example.com/api/users/reset-password-complete/")
	token := tokenFromLink(t, msg.Body, account.ResetPasswordPath)

	err = env.Service.CompleteReset(ctx, token, "abc", "abc")
	assert.ErrorIs(t, err, account.ErrPasswordTooWeak)

	require.NoError(t, env.Service.CompleteReset(ctx, token, "Fresh123", "Fresh123"))
	stored, err := env.Users.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, account.VerifyPassword(stored.PasswordHash, "Fresh123"))

	err = env.Service.CompleteReset(ctx, token, "Fresh123", "Fresh123")
	assert.ErrorIs(t, err, tokens.ErrTokenNotFound)
}

func TestResetTokenCannotConfirmEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "anna", "Secret99")

	require.NoError(t, env.Service.RequestReset(ctx, "anna@example.com"))
	msg, _ := env.Outbox.Last()
	token := tokenFromLink(t, msg.Body, account.ResetPasswordPath)

	err := env.Service.ConfirmEmail(ctx, token)
	assert.ErrorIs(t, err, tokens.ErrTokenNotFound)
}

func TestEmailConfirmation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "anna", "Secret99")

	err := env.Service.SendConfirmation(ctx, u)
	assert.ErrorIs(t, err, account.ErrAlreadyConfirmed)

	u.EmailConfirmed = false
	require.NoError(t, env.Users.UpdateUser(ctx, u))

	require.NoError(t, env.Service.SendConfirmation(ctx, u))
	msg, ok := env.Outbox.Last()
	require.True(t, ok)
	assert.Equal(t, "Confirm your email", msg.Subject)
	token := tokenFromLink(t, msg.Body, account.ConfirmEmailPath)

	require.NoError(t, env.Service.ConfirmEmail(ctx, token))
	stored, err := env.Users.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailConfirmed)

	err = env.Service.ConfirmEmail(ctx, token)
	assert.ErrorIs(t, err, tokens.ErrTokenNotFound)
}

func (m *memUsers) CreateUser(_ context.Context, u *api.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.byID {
		if ex.Username == u.Username || ex.Email == u.Email {
			return store.ErrConflict
		}
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) UserByID(_ context.Context, id api.UserID) (*api.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) UserByEmail(
	_ context.Context, email string,
) (*api.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) UpdateUser(_ context.Context, u *api.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}
