// Package session owns the authentication lifecycle of the client: it resolves
// the persisted credential once at startup and publishes the current identity.
package session

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"HealthMate/internal/cli/auth"
	"HealthMate/internal/cli/model"
	"HealthMate/internal/cli/repo"
)

// DefaultTTL is the lifetime of a credential persisted by SignIn.
const DefaultTTL = 7 * 24 * time.Hour

// Status is the tag of State.
type Status int

const (
	Loading Status = iota
	Authenticated
	Unauthenticated
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// State is an immutable snapshot of the session.
// The identity is only present when Status is Authenticated.
type State struct {
	Status   Status
	identity model.Identity
}

// LoadingState, AuthenticatedState and UnauthenticatedState build snapshots.
func LoadingState() State         { return State{Status: Loading} }
func UnauthenticatedState() State { return State{Status: Unauthenticated} }
func AuthenticatedState(id model.Identity) State {
	return State{Status: Authenticated, identity: id}
}

// Identity returns the signed-in identity, ok is false unless authenticated.
func (s State) Identity() (model.Identity, bool) {
	if s.Status != Authenticated {
		return model.Identity{}, false
	}
	return s.identity, true
}

// UserResolver resolves a bearer token to the identity behind it (GET /api/user).
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (*model.Identity, error)
}

type subscriber struct {
	id int
	fn func(State)
}

// Gate holds the session state. Only Gate mutates it; readers get snapshots.
type Gate struct {
	store repo.CredentialStore
	users UserResolver
	log   *zap.SugaredLogger
	ttl   time.Duration
	now   func() time.Time

	once sync.Once

	mu     sync.Mutex
	state  State
	gen    uint64
	subs   []subscriber
	nextID int
}

// NewGate returns a gate in the Loading state. A zero ttl means DefaultTTL.
func NewGate(store repo.CredentialStore, users UserResolver, log *zap.SugaredLogger, ttl time.Duration) *Gate {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gate{
		store: store,
		users: users,
		log:   log,
		ttl:   ttl,
		now:   time.Now,
		state: LoadingState(),
	}
}

// State returns the current snapshot.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Bootstrap resolves the persisted credential. It runs at most once; later
// calls return immediately. Failures end in Unauthenticated and are only logged.
func (g *Gate) Bootstrap(ctx context.Context) {
	g.once.Do(func() { g.bootstrap(ctx) })
}

func (g *Gate) bootstrap(ctx context.Context) {
	g.mu.Lock()
	if g.state.Status != Loading {
		// уже разрешено через SignIn/SignOut
		g.mu.Unlock()
		return
	}
	gen := g.gen
	g.mu.Unlock()

	cred, err := g.store.Load()
	if err != nil {
		if !errors.Is(err, repo.ErrNoCredential) {
			g.log.Warnw("session: credential read failed", "err", err)
		}
		g.resolve(gen, UnauthenticatedState())
		return
	}
	if !cred.Valid(g.now()) {
		g.log.Infow("session: stored credential expired")
		if err := g.store.Clear(); err != nil {
			g.log.Warnw("session: clear expired credential", "err", err)
		}
		g.resolve(gen, UnauthenticatedState())
		return
	}

	id, err := g.users.CurrentUser(ctx, cred.Token)
	if err != nil {
		g.log.Warnw("session: bootstrap failed", "err", err)
		g.resolve(gen, UnauthenticatedState())
		return
	}
	g.resolve(gen, AuthenticatedState(*id))
}

// resolve applies a bootstrap result unless SignIn/SignOut ran in the meantime.
func (g *Gate) resolve(gen uint64, st State) {
	g.mu.Lock()
	if g.gen != gen {
		g.mu.Unlock()
		g.log.Debugw("session: stale bootstrap result dropped", "status", st.Status.String())
		return
	}
	g.setLocked(st)
}

// SignIn persists the token with the gate TTL and switches to Authenticated.
// The state changes even if persisting fails; the error is returned to the caller.
func (g *Gate) SignIn(id model.Identity, token string) error {
	cred := auth.NewCredential(token, g.ttl, g.now())
	if cred.Token == "" {
		return errors.New("empty credential")
	}
	err := g.store.Save(cred)

	g.mu.Lock()
	g.gen++
	g.setLocked(AuthenticatedState(id))
	return err
}

// SignOut clears every persisted credential and switches to Unauthenticated.
// Calling it again is a no-op.
func (g *Gate) SignOut() error {
	err := g.store.Clear()

	g.mu.Lock()
	g.gen++
	g.setLocked(UnauthenticatedState())
	return err
}

// setLocked must be called with mu held; it releases mu before notifying.
func (g *Gate) setLocked(st State) {
	if reflect.DeepEqual(g.state, st) {
		g.mu.Unlock()
		return
	}
	g.state = st
	subs := make([]subscriber, len(g.subs))
	copy(subs, g.subs)
	g.mu.Unlock()

	for _, s := range subs {
		s.fn(st)
	}
}

// Subscribe registers fn for every state change. The returned func unsubscribes.
func (g *Gate) Subscribe(fn func(State)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	id := g.nextID
	g.subs = append(g.subs, subscriber{id: id, fn: fn})
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for i, s := range g.subs {
			if s.id == id {
				g.subs = append(g.subs[:i], g.subs[i+1:]...)
				return
			}
		}
	}
}
