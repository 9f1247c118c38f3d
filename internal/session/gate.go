package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fjod/shopdesk/internal/domain"
	"github.com/fjod/shopdesk/internal/storage"
)

// StorageKey holds "true" while a user is logged in. No credential is ever persisted.
const StorageKey = "isAuthenticated"

const authenticatedFlag = "true"

// DefaultUser is the display user restored on rehydration
var DefaultUser = domain.User{Email: "admin@gmail.com", Name: "Admin"}

// Gate tracks whether the shop is logged in.
// It starts Unknown and resolves exactly once, in Rehydrate.
type Gate struct {
	mu     sync.RWMutex
	kv     storage.Store
	logger *slog.Logger
	state  domain.SessionState
	user   *domain.User

	ready     chan struct{}
	readyOnce sync.Once
}

func NewGate(kv storage.Store, logger *slog.Logger) *Gate {
	return &Gate{
		kv:     kv,
		logger: logger,
		state:  domain.SessionUnknown,
		ready:  make(chan struct{}),
	}
}

// Rehydrate resolves the Unknown state from the persisted flag. A storage failure still
// resolves the gate, to Unauthenticated, so dependents are never held forever.
// Calls after the first are no-ops.
func (g *Gate) Rehydrate(ctx context.Context) error {
	var err error
	g.readyOnce.Do(func() {
		var flag string
		flag, err = g.kv.Get(ctx, StorageKey)
		if errors.Is(err, storage.ErrNotFound) {
			err = nil
		}

		g.mu.Lock()
		if err == nil && flag == authenticatedFlag {
			u := DefaultUser
			g.user = &u
			g.state = domain.SessionAuthenticated
		} else {
			g.state = domain.SessionUnauthenticated
		}
		state := g.state
		g.mu.Unlock()

		close(g.ready)
		if err != nil {
			err = fmt.Errorf("failed to read session flag: %w", err)
		}
		g.logger.Info("session rehydrated", "state", state.String())
	})
	return err
}

// Ready is closed once rehydration has finished
func (g *Gate) Ready() <-chan struct{} {
	return g.ready
}

// Wait holds the caller until the gate is resolved or ctx is done
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gate) State() domain.SessionState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// User returns the logged in user, if any
func (g *Gate) User() (domain.User, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return domain.User{}, false
	}
	return *g.user, true
}

// Login accepts any non-empty email and password pair
func (g *Gate) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.state.IsResolved() {
		return domain.User{}, ErrNotReady
	}
	if err := g.kv.Set(ctx, StorageKey, authenticatedFlag); err != nil {
		return domain.User{}, fmt.Errorf("failed to persist session: %w", err)
	}

	u := domain.User{Email: email, Name: DefaultUser.Name}
	g.user = &u
	g.state = domain.SessionAuthenticated
	g.logger.Info("user logged in", "email", email)
	return u, nil
}

func (g *Gate) Logout(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.state.IsResolved() {
		return ErrNotReady
	}
	if err := g.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	g.user = nil
	g.state = domain.SessionUnauthenticated
	g.logger.Info("user logged out")
	return nil
}
