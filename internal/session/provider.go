package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"medilink-client/internal/domain"
	"medilink-client/internal/logger"
	"medilink-client/internal/security"
	"medilink-client/internal/storage"
)

type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Snapshot is the view of the session handed to subscribers.
type Snapshot struct {
	State    State
	Identity *domain.Identity
}

// Provider owns the bearer token and the identity decoded from it.
// Identity is non-nil exactly when a stored, unexpired, decodable token exists.
type Provider struct {
	store    storage.TokenStore
	resolver security.IdentityResolver

	// transition serializes state changes so subscribers see them in order
	transition sync.Mutex

	mu       sync.RWMutex
	token    string
	identity *domain.Identity

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Snapshot)
}

func NewProvider(store storage.TokenStore, resolver security.IdentityResolver) *Provider {
	return &Provider{
		store:    store,
		resolver: resolver,
		subs:     make(map[int]func(Snapshot)),
	}
}

// Init loads the persisted token. Expired or undecodable tokens are purged.
func (p *Provider) Init(ctx context.Context) error {
	logger.EnterMethod("session.Init")
	p.transition.Lock()
	defer p.transition.Unlock()

	token, err := p.store.Load(ctx)
	if errors.Is(err, storage.ErrNoToken) {
		p.set("", nil)
		logger.ExitMethod("session.Init", "state", Anonymous)
		return nil
	}
	if err != nil {
		p.set("", nil)
		logger.ExitMethodWithError("session.Init", err)
		return fmt.Errorf("failed to load session: %w", err)
	}

	if p.resolver.IsExpired(token) {
		logger.Info("Stored session expired, discarding")
		return p.purgeLocked(ctx)
	}
	identity, err := p.resolver.Decode(token)
	if err != nil {
		logger.Warn("Stored session token unreadable, discarding", "error", err)
		return p.purgeLocked(ctx)
	}

	p.set(token, identity)
	p.notify(Snapshot{State: Authenticated, Identity: identity})
	logger.ExitMethod("session.Init", "state", Authenticated, "user_id", identity.ID)
	return nil
}

// Login persists token and derives the identity from it. A token that cannot
// be decoded or has already expired leaves the session anonymous with nothing stored.
func (p *Provider) Login(ctx context.Context, token string) (*domain.Identity, error) {
	logger.EnterMethod("session.Login")
	p.transition.Lock()
	defer p.transition.Unlock()

	identity, err := p.resolver.Decode(token)
	if err == nil && p.resolver.IsExpired(token) {
		err = security.ErrTokenExpired
	}
	if err != nil {
		if perr := p.purgeLocked(ctx); perr != nil {
			logger.Warn("Failed to purge session after bad login token", "error", perr)
		}
		logger.ExitMethodWithError("session.Login", err)
		return nil, err
	}
	if err := p.store.Save(ctx, token); err != nil {
		logger.ExitMethodWithError("session.Login", err)
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	p.set(token, identity)
	p.notify(Snapshot{State: Authenticated, Identity: identity})
	logger.ExitMethod("session.Login", "user_id", identity.ID, "role", identity.Role)
	return identity, nil
}

// Logout clears the session. Logging out while anonymous does nothing.
func (p *Provider) Logout(ctx context.Context) error {
	p.transition.Lock()
	defer p.transition.Unlock()

	if p.Token() == "" {
		return nil
	}
	return p.purgeLocked(ctx)
}

// Invalidate clears the session only if token is still the current one and
// reports whether this call performed the transition.
func (p *Provider) Invalidate(ctx context.Context, token string) bool {
	p.transition.Lock()
	defer p.transition.Unlock()

	current := p.Token()
	if current == "" || current != token {
		return false
	}
	if err := p.purgeLocked(ctx); err != nil {
		logger.Error("Failed to clear stored token", "error", err)
	}
	return true
}

// RecheckExpiry purges the session when its token has expired since it was
// loaded. Returns true when a purge happened.
func (p *Provider) RecheckExpiry(ctx context.Context) bool {
	p.transition.Lock()
	defer p.transition.Unlock()

	token := p.Token()
	if token == "" || !p.resolver.IsExpired(token) {
		return false
	}
	logger.Info("Session token expired")
	if err := p.purgeLocked(ctx); err != nil {
		logger.Error("Failed to clear stored token", "error", err)
	}
	return true
}

func (p *Provider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

func (p *Provider) Identity() *domain.Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.identity
}

func (p *Provider) State() State {
	return p.Snapshot().State
}

func (p *Provider) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.identity == nil {
		return Snapshot{State: Anonymous}
	}
	return Snapshot{State: Authenticated, Identity: p.identity}
}

// Subscribe registers fn for every transition. Notifications are delivered
// synchronously before the mutating call returns.
func (p *Provider) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	p.subMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.subMu.Unlock()

	return func() {
		p.subMu.Lock()
		delete(p.subs, id)
		p.subMu.Unlock()
	}
}

// purgeLocked requires p.transition to be held
func (p *Provider) purgeLocked(ctx context.Context) error {
	err := p.store.Clear(ctx)
	p.set("", nil)
	p.notify(Snapshot{State: Anonymous})
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (p *Provider) set(token string, identity *domain.Identity) {
	p.mu.Lock()
	p.token = token
	p.identity = identity
	p.mu.Unlock()
}

func (p *Provider) notify(s Snapshot) {
	p.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
