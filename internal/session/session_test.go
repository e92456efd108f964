package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAuth struct {
	tokens     map[string]User // token -> user
	passwords  map[string]string
	registered []string
	meCalls    int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		tokens:    map[string]User{"tok-1": {ID: 1, Email: "ana@till.test", IsActive: true}},
		passwords: map[string]string{"ana@till.test": "secret"},
	}
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (string, error) {
	if f.passwords[email] != password {
		return "", ErrInvalidCredentials
	}
	return "tok-1", nil
}

func (f *fakeAuth) Register(_ context.Context, email, password string) (User, error) {
	f.registered = append(f.registered, email)
	return User{ID: 2, Email: email, IsActive: true}, nil
}

func (f *fakeAuth) Me(_ context.Context, token string) (User, error) {
	f.meCalls++
	u, ok := f.tokens[token]
	if !ok {
		return User{}, errors.New("401")
	}
	return u, nil
}

func TestRestoreWithValidToken(t *testing.T) {
	store := NewMemoryTokenStore()
	require.NoError(t, store.Save(context.Background(), "tok-1"))

	g := NewGate(newFakeAuth(), store, zap.NewNop())
	require.NoError(t, g.Restore(context.Background()))

	u, err := g.Require()
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "tok-1", g.Token())
}

func TestRestoreDiscardsRejectedToken(t *testing.T) {
	store := NewMemoryTokenStore()
	require.NoError(t, store.Save(context.Background(), "stale"))

	g := NewGate(newFakeAuth(), store, zap.NewNop())
	err := g.Restore(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = g.Require()
	assert.ErrorIs(t, err, ErrNoSession)
	stored, _ := store.Load(context.Background())
	assert.Empty(t, stored)
}

func TestRestoreWithoutToken(t *testing.T) {
	auth := newFakeAuth()
	g := NewGate(auth, NewMemoryTokenStore(), zap.NewNop())

	require.NoError(t, g.Restore(context.Background()))
	assert.Zero(t, auth.meCalls)
	assert.Empty(t, g.Token())
}

func TestLogin(t *testing.T) {
	store := NewMemoryTokenStore()
	g := NewGate(newFakeAuth(), store, zap.NewNop())

	_, err := g.Login(context.Background(), "ana@till.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = g.Login(context.Background(), "  ", "secret")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	u, err := g.Login(context.Background(), " ana@till.test ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ana@till.test", u.Email)

	stored, _ := store.Load(context.Background())
	assert.Equal(t, "tok-1", stored)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	auth := newFakeAuth()
	g := NewGate(auth, NewMemoryTokenStore(), zap.NewNop())

	_, err := g.Register(context.Background(), "new@till.test", "a", "b")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Empty(t, auth.registered)

	u, err := g.Register(context.Background(), "new@till.test", "a", "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.ID)
	_, ok := g.Current()
	assert.False(t, ok, "register does not log in")
}

func TestLogoutRunsHooks(t *testing.T) {
	g := NewGate(newFakeAuth(), NewMemoryTokenStore(), zap.NewNop())
	calls := 0
	g.OnLogout(func(context.Context) { calls++ })

	g.Logout(context.Background())
	assert.Zero(t, calls, "no session, nothing to end")

	_, err := g.Login(context.Background(), "ana@till.test", "secret")
	require.NoError(t, err)
	g.Invalidate(context.Background())
	assert.Zero(t, calls, "expiry keeps terminal state")
	_, err = g.Require()
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = g.Login(context.Background(), "ana@till.test", "secret")
	require.NoError(t, err)
	g.Logout(context.Background())
	assert.Equal(t, 1, calls)
	assert.Empty(t, g.Token())
}

func TestFileTokenStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "token")
	s := NewFileTokenStore(path)

	tok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Save(ctx, "abc"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, s.Erase(ctx))
	require.NoError(t, s.Erase(ctx))
	tok, _ = s.Load(ctx)
	assert.Empty(t, tok)
}

func TestRedisTokenStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	s := NewRedisTokenStore(client, "till-1", time.Minute)

	tok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Save(ctx, "abc"))
	assert.True(t, mr.Exists("pos:session:till-1"))
	tok, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	mr.FastForward(2 * time.Minute)
	tok, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok, "token expires with its TTL")
}
