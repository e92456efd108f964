package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrNoSession          = errors.New("no session")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrUserExists         = errors.New("user already exists")
)

type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	IsVerified  bool   `json:"is_verified"`
}

// Authenticator is the auth side of the remote API.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string) (User, error)
	// Me resolves the profile behind token.
	Me(ctx context.Context, token string) (User, error)
}

// Gate holds the credential for the terminal and the user it resolves to.
// Downstream code only ever observes "session" or "no session".
type Gate struct {
	api    Authenticator
	store  TokenStore
	logger *zap.Logger

	mu       sync.RWMutex
	token    string
	user     *User
	onLogout []func(context.Context)
}

func NewGate(api Authenticator, store TokenStore, logger *zap.Logger) *Gate {
	return &Gate{
		api:    api,
		store:  store,
		logger: logger.With(zap.String("component", "session")),
	}
}

// OnLogout registers fn to run on an explicit logout. An expired session
// keeps the terminal's state so the next login can pick it up.
func (g *Gate) OnLogout(fn func(context.Context)) {
	g.mu.Lock()
	g.onLogout = append(g.onLogout, fn)
	g.mu.Unlock()
}

// Restore loads a stored token and eagerly resolves its profile. A token
// that no longer resolves is discarded.
func (g *Gate) Restore(ctx context.Context) error {
	token, err := g.store.Load(ctx)
	if err != nil {
		g.logger.Warn("load stored token failed", zap.Error(err))
		return nil
	}
	if token == "" {
		return nil
	}
	return g.establish(ctx, token)
}

func (g *Gate) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, ErrMissingCredentials
	}
	token, err := g.api.Login(ctx, email, password)
	if err != nil {
		return User{}, err
	}
	if err := g.establish(ctx, token); err != nil {
		return User{}, err
	}
	u, _ := g.Current()
	g.logger.Info("logged in", zap.Int64("user_id", u.ID))
	return u, nil
}

// Register creates an account. It does not log in.
func (g *Gate) Register(ctx context.Context, email, password, confirm string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, ErrMissingCredentials
	}
	if password != confirm {
		return User{}, ErrPasswordMismatch
	}
	u, err := g.api.Register(ctx, email, password)
	if err != nil {
		return User{}, err
	}
	g.logger.Info("account registered", zap.Int64("user_id", u.ID))
	return u, nil
}

func (g *Gate) Logout(ctx context.Context) {
	g.end(ctx, "logout", true)
}

// Invalidate ends the session after the API rejected the credential.
func (g *Gate) Invalidate(ctx context.Context) {
	g.end(ctx, "expired", false)
}

// Token returns the bearer credential, or "" without a session.
func (g *Gate) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

func (g *Gate) Current() (User, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return User{}, false
	}
	return *g.user, true
}

// Require returns the current user or ErrNoSession.
func (g *Gate) Require() (User, error) {
	u, ok := g.Current()
	if !ok {
		return User{}, ErrNoSession
	}
	return u, nil
}

func (g *Gate) establish(ctx context.Context, token string) error {
	u, err := g.api.Me(ctx, token)
	if err != nil {
		g.logger.Info("stored token rejected, discarding", zap.Error(err))
		g.clear(ctx)
		return ErrNoSession
	}

	g.mu.Lock()
	g.token = token
	g.user = &u
	g.mu.Unlock()

	if err := g.store.Save(ctx, token); err != nil {
		g.logger.Warn("persist token failed", zap.Error(err))
	}
	return nil
}

func (g *Gate) end(ctx context.Context, reason string, runHooks bool) {
	g.mu.RLock()
	had := g.token != ""
	hooks := append([]func(context.Context){}, g.onLogout...)
	g.mu.RUnlock()

	g.clear(ctx)
	if !had {
		return
	}
	g.logger.Info("session ended", zap.String("reason", reason))
	if !runHooks {
		return
	}
	for _, fn := range hooks {
		fn(ctx)
	}
}

func (g *Gate) clear(ctx context.Context) {
	g.mu.Lock()
	g.token = ""
	g.user = nil
	g.mu.Unlock()

	if err := g.store.Erase(ctx); err != nil {
		g.logger.Warn("erase stored token failed", zap.Error(err))
	}
}
